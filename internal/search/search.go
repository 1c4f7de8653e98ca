// Package search keeps a full-text index of documents. The index only ranks
// candidates; callers must still apply the access gate to every hit.
package search

import (
	"time"
	"unicode/utf8"

	"docvault/internal/model"
)

// DocumentRecord is the data we index for a document
type DocumentRecord struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Content      string `json:"content"`
	Urgency      string `json:"urgency"`
	DepartmentID string `json:"departmentId"`
	UploadedBy   string `json:"uploadedBy"`
	FileName     string `json:"fileName"`
	CreatedAt    int64  `json:"createdAt"`
}

// Query describes a search request
type Query struct {
	Text  string
	Limit int
}

// Index can push documents into a search index and query it
type Index interface {
	IndexDocument(doc DocumentRecord) error
	IndexDocuments(docs []DocumentRecord) error
	DeleteDocument(id string) error
	// Search returns matching document ids, best match first
	Search(q Query) ([]string, error)
	Healthy() bool
}

// RecordFromDocument flattens a document for indexing
func RecordFromDocument(d *model.Document) DocumentRecord {
	rec := DocumentRecord{
		ID:         d.ID.Hex(),
		Title:      d.Title,
		Summary:    d.Summary,
		Content:    truncate(d.Content, maxIndexedContent),
		Urgency:    string(d.Urgency),
		UploadedBy: d.UploadedBy.Hex(),
		FileName:   d.FileName,
		CreatedAt:  d.CreatedAt.UTC().Truncate(time.Second).Unix(),
	}
	if d.DepartmentID != nil {
		rec.DepartmentID = d.DepartmentID.Hex()
	}
	return rec
}

// maxIndexedContent caps the indexed body; Meilisearch rejects very large payloads
const maxIndexedContent = 64 << 10

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
