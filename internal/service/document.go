package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"docvault/internal/access"
	"docvault/internal/apperr"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/search"
	"docvault/pkg/storage"
	"docvault/pkg/timer"
	"docvault/pkg/util"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// searchLimit caps results from either search path
const searchLimit = 50

// DocumentService owns the document lifecycle: create, read, update with
// versioning, delete with cascade, search and file access
type DocumentService struct {
	repos         *repository.Repositories
	gate          *access.Gate
	files         storage.FileStore
	index         search.Index // nil when search is not configured
	notifications *NotificationService
	cfg           *config.Config
	log           zerolog.Logger
}

func NewDocumentService(
	repos *repository.Repositories,
	gate *access.Gate,
	files storage.FileStore,
	index search.Index,
	notifications *NotificationService,
	cfg *config.Config,
	log zerolog.Logger,
) *DocumentService {
	return &DocumentService{
		repos:         repos,
		gate:          gate,
		files:         files,
		index:         index,
		notifications: notifications,
		cfg:           cfg,
		log:           log.With().Str("component", "documents").Logger(),
	}
}

// Create stores a new document owned by userID. The owner gets an admin
// permission record and version 1 holds the initial content.
func (s *DocumentService) Create(ctx context.Context, userID primitive.ObjectID, in model.DocumentInput) (*model.Document, error) {
	defer timer.Track(ctx, "document.create")()

	if in.Title == nil {
		return nil, apperr.Validation("title is required")
	}
	doc := &model.Document{ID: primitive.NewObjectID(), UploadedBy: userID, Urgency: model.UrgencyMedium}
	if err := s.apply(ctx, doc, in); err != nil {
		return nil, err
	}

	if in.File != nil {
		if err := s.attach(ctx, doc, in.File); err != nil {
			return nil, err
		}
	}

	if _, err := s.repos.Documents.Create(ctx, doc); err != nil {
		s.discard(doc.FileKey)
		return nil, storeErr(err, "create", "document")
	}
	if _, err := s.repos.Permissions.Upsert(ctx, doc.ID, userID, model.AccessAdmin, userID); err != nil {
		return nil, fmt.Errorf("failed to grant owner permission: %w", err)
	}
	if _, err := s.repos.Versions.Create(ctx, &model.DocumentVersion{
		DocumentID:    doc.ID,
		VersionNumber: 1,
		Content:       doc.Content,
		ChangedBy:     userID,
		ChangeSummary: model.InitialVersionSummary,
	}); err != nil {
		return nil, storeErr(err, "create", "version")
	}

	s.reindex(doc)
	s.announce(ctx, doc)

	s.log.Info().Str("document", doc.ID.Hex()).Str("owner", userID.Hex()).Msg("document created")
	return s.withOwner(ctx, doc)
}

// Get returns a document the caller may access, owner populated
func (s *DocumentService) Get(ctx context.Context, userID primitive.ObjectID, documentID string) (*model.Document, error) {
	id, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	doc, err := s.gate.Authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.withOwner(ctx, doc)
}

// List returns the documents the caller owns plus those explicitly shared, newest first
func (s *DocumentService) List(ctx context.Context, userID primitive.ObjectID) ([]*model.Document, error) {
	permitted, err := s.gate.AccessibleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	docs, err := s.repos.Documents.ListAccessible(ctx, userID, permitted)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	if err := s.populateOwners(ctx, docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// Update applies the non-nil fields. Changed content appends a version; a
// new file replaces the stored one.
func (s *DocumentService) Update(ctx context.Context, userID primitive.ObjectID, documentID string, in model.DocumentInput) (*model.Document, error) {
	defer timer.Track(ctx, "document.update")()

	id, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	doc, err := s.gate.Authorize(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	previous := doc.Content
	oldKey := doc.FileKey
	if err := s.apply(ctx, doc, in); err != nil {
		return nil, err
	}

	if in.File != nil {
		if err := s.attach(ctx, doc, in.File); err != nil {
			return nil, err
		}
	}

	if in.Content != nil && doc.Content != previous {
		next := 2
		latest, err := s.repos.Versions.Latest(ctx, doc.ID)
		switch {
		case err == nil:
			next = latest.VersionNumber + 1
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("failed to load latest version: %w", err)
		}
		summary := strings.TrimSpace(in.ChangeSummary)
		if summary == "" {
			summary = model.DefaultChangeSummary
		}
		if _, err := s.repos.Versions.Create(ctx, &model.DocumentVersion{
			DocumentID:    doc.ID,
			VersionNumber: next,
			Content:       doc.Content,
			ChangedBy:     userID,
			ChangeSummary: summary,
		}); err != nil {
			if doc.FileKey != oldKey {
				s.discard(doc.FileKey)
			}
			if errors.Is(err, repository.ErrDuplicate) {
				return nil, apperr.Conflict("document was changed concurrently, retry")
			}
			return nil, fmt.Errorf("failed to create version: %w", err)
		}
	}

	if err := s.repos.Documents.Update(ctx, doc); err != nil {
		if doc.FileKey != oldKey {
			s.discard(doc.FileKey)
		}
		return nil, storeErr(err, "update", "document")
	}
	if doc.FileKey != oldKey {
		s.discard(oldKey)
	}

	s.reindex(doc)
	return s.withOwner(ctx, doc)
}

// Delete removes a document. Only the owner may delete. Permission records go
// first; the rest of the cascade is best effort.
func (s *DocumentService) Delete(ctx context.Context, userID primitive.ObjectID, documentID string) error {
	id, err := parseID(documentID, "document id")
	if err != nil {
		return err
	}
	doc, err := s.gate.AuthorizeOwner(ctx, id, userID)
	if err != nil {
		return err
	}

	if _, err := s.repos.Permissions.DeleteByDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("failed to delete permissions: %w", err)
	}
	if err := s.repos.Documents.Delete(ctx, doc.ID); err != nil {
		return storeErr(err, "delete", "document")
	}

	cascade := []struct {
		what string
		fn   func(context.Context, primitive.ObjectID) (int64, error)
	}{
		{"versions", s.repos.Versions.DeleteByDocument},
		{"comments", s.repos.Comments.DeleteByDocument},
		{"notes", s.repos.Notes.DeleteByDocument},
		{"highlights", s.repos.Highlights.DeleteByDocument},
		{"bookmarks", s.repos.Bookmarks.DeleteByDocument},
	}
	for _, step := range cascade {
		if _, err := step.fn(ctx, doc.ID); err != nil {
			s.log.Warn().Err(err).Str("document", doc.ID.Hex()).Msgf("failed to delete %s", step.what)
		}
	}
	s.discard(doc.FileKey)
	if s.index != nil {
		if err := s.index.DeleteDocument(doc.ID.Hex()); err != nil {
			s.log.Warn().Err(err).Str("document", doc.ID.Hex()).Msg("failed to remove document from index")
		}
	}

	s.log.Info().Str("document", doc.ID.Hex()).Msg("document deleted")
	return nil
}

// Search matches documents the caller may access. The search index ranks
// candidates when available; every hit is re-checked against the caller's
// accessible set. Without an index the database does a case-insensitive scan.
func (s *DocumentService) Search(ctx context.Context, userID primitive.ObjectID, query string) ([]*model.Document, error) {
	terms, err := util.ParseSearchQuery(query)
	if err != nil {
		return nil, apperr.Validation("invalid search query: %s", err.Error())
	}
	if len(terms) == 0 {
		return nil, apperr.Validation("search query is required")
	}

	permitted, err := s.gate.AccessibleIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.index != nil && s.index.Healthy() {
		docs, err := s.searchIndex(ctx, userID, permitted, strings.Join(terms, " "))
		if err == nil {
			return docs, s.populateOwners(ctx, docs)
		}
		s.log.Warn().Err(err).Msg("search index failed, falling back to database")
	}

	docs, err := s.repos.Documents.Search(ctx, userID, permitted, terms, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search documents: %w", err)
	}
	return docs, s.populateOwners(ctx, docs)
}

// OpenFile returns the stored file of a document the caller may access
func (s *DocumentService) OpenFile(ctx context.Context, userID primitive.ObjectID, documentID string) (*model.Document, io.ReadCloser, error) {
	id, err := parseID(documentID, "document id")
	if err != nil {
		return nil, nil, err
	}
	doc, err := s.gate.Authorize(ctx, id, userID)
	if err != nil {
		return nil, nil, err
	}
	if doc.FileKey == "" {
		return nil, nil, apperr.NotFound("document has no file")
	}
	rc, err := s.files.Get(ctx, doc.FileKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, apperr.NotFound("file not found")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	return doc, rc, nil
}

// ListVersions returns every version of a document, newest first
func (s *DocumentService) ListVersions(ctx context.Context, userID primitive.ObjectID, documentID string) ([]*model.DocumentVersion, error) {
	id, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.Authorize(ctx, id, userID); err != nil {
		return nil, err
	}
	versions, err := s.repos.Versions.ListByDocument(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	return versions, nil
}

// GetVersion returns one version by number
func (s *DocumentService) GetVersion(ctx context.Context, userID primitive.ObjectID, documentID, number string) (*model.DocumentVersion, error) {
	id, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	n, err := strconv.Atoi(number)
	if err != nil || n < 1 {
		return nil, apperr.Validation("invalid version number")
	}
	if _, err := s.gate.Authorize(ctx, id, userID); err != nil {
		return nil, err
	}
	v, err := s.repos.Versions.FindByNumber(ctx, id, n)
	if err != nil {
		return nil, storeErr(err, "get", "version")
	}
	return v, nil
}

// Reindex pushes every document into the search index
func (s *DocumentService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, apperr.Unavailable("search is not configured")
	}
	docs, err := s.repos.Documents.All(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load documents: %w", err)
	}
	records := make([]search.DocumentRecord, 0, len(docs))
	for _, d := range docs {
		records = append(records, search.RecordFromDocument(d))
	}
	if len(records) == 0 {
		return 0, nil
	}
	if err := s.index.IndexDocuments(records); err != nil {
		return 0, fmt.Errorf("failed to index documents: %w", err)
	}
	return len(records), nil
}

func (s *DocumentService) searchIndex(ctx context.Context, userID primitive.ObjectID, permitted []primitive.ObjectID, text string) ([]*model.Document, error) {
	ids, err := s.index.Search(search.Query{Text: text, Limit: searchLimit})
	if err != nil {
		return nil, err
	}
	allowed := make(map[primitive.ObjectID]bool, len(permitted))
	for _, id := range permitted {
		allowed[id] = true
	}

	docs := make([]*model.Document, 0, len(ids))
	for _, hex := range ids {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			continue
		}
		doc, err := s.repos.Documents.FindByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			// stale index entry
			continue
		}
		if err != nil {
			return nil, err
		}
		if doc.OwnedBy(userID) || allowed[doc.ID] {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// apply validates and copies the non-nil input fields onto doc
func (s *DocumentService) apply(ctx context.Context, doc *model.Document, in model.DocumentInput) error {
	if in.Title != nil {
		title, err := required(*in.Title, "title")
		if err != nil {
			return err
		}
		if err := checkLength(title, "title", config.MaxTitleLength); err != nil {
			return err
		}
		doc.Title = title
	}
	if in.Summary != nil {
		doc.Summary = strings.TrimSpace(*in.Summary)
	}
	if in.Content != nil {
		if err := checkLength(*in.Content, "content", config.MaxContentLength); err != nil {
			return err
		}
		doc.Content = *in.Content
	}
	if in.Urgency != nil && *in.Urgency != "" {
		u := model.Urgency(strings.ToLower(strings.TrimSpace(*in.Urgency)))
		if !u.Valid() {
			return apperr.Validation("urgency must be high, medium or low")
		}
		doc.Urgency = u
	}
	if in.DepartmentID != nil {
		dept, err := parseOptionalID(*in.DepartmentID, "department id")
		if err != nil {
			return err
		}
		if dept != nil {
			if _, err := s.repos.Departments.FindByID(ctx, *dept); err != nil {
				return storeErr(err, "get", "department")
			}
		}
		doc.DepartmentID = dept
	}
	if in.Metadata != nil {
		doc.Metadata = in.Metadata
	}
	return nil
}

// attach stores the upload and points doc at it
func (s *DocumentService) attach(ctx context.Context, doc *model.Document, f *model.FileUpload) error {
	if f.Size > s.cfg.Storage.MaxUploadBytes() {
		return apperr.Validation("file exceeds the %d MB limit", s.cfg.Storage.MaxUploadBytes()>>20)
	}
	obj, err := s.files.Put(ctx, f.Name, f.ContentType, f.Reader, f.Size)
	if err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	doc.FileKey = obj.Key
	doc.FileURL = obj.URL
	if doc.FileURL == "" {
		doc.FileURL = "/api/documents/" + doc.ID.Hex() + "/file"
	}
	doc.FileName = f.Name
	doc.FileType = obj.ContentType
	doc.FileSize = obj.Size
	return nil
}

// discard removes a stored file, logging failures
func (s *DocumentService) discard(key string) {
	if key == "" {
		return
	}
	if err := s.files.Delete(context.Background(), key); err != nil && !errors.Is(err, storage.ErrNotFound) {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to delete stored file")
	}
}

func (s *DocumentService) reindex(doc *model.Document) {
	if s.index == nil {
		return
	}
	if err := s.index.IndexDocument(search.RecordFromDocument(doc)); err != nil {
		s.log.Warn().Err(err).Str("document", doc.ID.Hex()).Msg("failed to index document")
	}
}

// announce tells every other user about a new document
func (s *DocumentService) announce(ctx context.Context, doc *model.Document) {
	others, err := s.repos.Users.ListIDsExcept(ctx, doc.UploadedBy)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to list users for notification")
		return
	}
	related := doc.ID
	err = s.notifications.NotifyMany(ctx, others, model.Notification{
		Title:     "New document uploaded",
		Message:   fmt.Sprintf("%q was uploaded", doc.Title),
		Type:      model.NotificationNewDocument,
		RelatedID: &related,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("document", doc.ID.Hex()).Msg("failed to notify users")
	}
}

func (s *DocumentService) withOwner(ctx context.Context, doc *model.Document) (*model.Document, error) {
	if err := s.populateOwners(ctx, []*model.Document{doc}); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentService) populateOwners(ctx context.Context, docs []*model.Document) error {
	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.UploadedBy)
	}
	owners, err := userSummaries(ctx, s.repos.Users, ids)
	if err != nil {
		return err
	}
	for _, d := range docs {
		d.Owner = owners[d.UploadedBy]
	}
	return nil
}
