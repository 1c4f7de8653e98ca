package model

import (
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Urgency of a document
type Urgency string

const (
	UrgencyHigh   Urgency = "high"
	UrgencyMedium Urgency = "medium"
	UrgencyLow    Urgency = "low"
)

// Valid reports whether u is one of the known levels
func (u Urgency) Valid() bool {
	switch u {
	case UrgencyHigh, UrgencyMedium, UrgencyLow:
		return true
	}
	return false
}

// Document is an uploaded document. UploadedBy is the owner.
type Document struct {
	ID           primitive.ObjectID     `bson:"_id,omitempty" json:"_id"`
	Title        string                 `bson:"title" json:"title"`
	Summary      string                 `bson:"summary,omitempty" json:"summary,omitempty"`
	Content      string                 `bson:"content" json:"content"`
	Urgency      Urgency                `bson:"urgency" json:"urgency"`
	DepartmentID *primitive.ObjectID    `bson:"department_id,omitempty" json:"department_id,omitempty"`
	UploadedBy   primitive.ObjectID     `bson:"uploaded_by" json:"uploaded_by"`
	FileURL      string                 `bson:"file_url,omitempty" json:"file_url,omitempty"`
	FileKey      string                 `bson:"file_key,omitempty" json:"-"`
	FileName     string                 `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileType     string                 `bson:"file_type,omitempty" json:"file_type,omitempty"`
	FileSize     int64                  `bson:"file_size,omitempty" json:"file_size,omitempty"`
	Metadata     map[string]interface{} `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt    time.Time              `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time              `bson:"updatedAt" json:"updatedAt"`

	// Owner is populated on read, never stored.
	Owner *UserSummary `bson:"-" json:"owner,omitempty"`
}

func (d *Document) GetID() primitive.ObjectID   { return d.ID }
func (d *Document) SetID(id primitive.ObjectID) { d.ID = id }

// OwnedBy reports whether userID uploaded the document
func (d *Document) OwnedBy(userID primitive.ObjectID) bool {
	return !userID.IsZero() && d.UploadedBy == userID
}

// FileUpload is a file payload attached to a create or update
type FileUpload struct {
	Name        string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// DocumentInput is the create/update payload. Nil fields are left untouched on update.
type DocumentInput struct {
	Title         *string
	Summary       *string
	Content       *string
	Urgency       *string
	DepartmentID  *string
	Metadata      map[string]interface{}
	ChangeSummary string
	File          *FileUpload
}
