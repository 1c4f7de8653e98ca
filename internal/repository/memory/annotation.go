package memory

import (
	"context"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CommentRepository struct {
	base *generic.MemoryBaseRepository[*model.Comment]
}

var _ repository.ICommentRepository = (*CommentRepository)(nil)

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{base: generic.NewMemoryBaseRepository[*model.Comment]()}
}

func (r *CommentRepository) Create(ctx context.Context, c *model.Comment) (*model.Comment, error) {
	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := r.base.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CommentRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.Comment, error) {
	comments, err := r.base.Find(ctx, func(c *model.Comment) bool { return c.DocumentID == documentID })
	if err != nil {
		return nil, err
	}
	newestFirst(comments, func(c *model.Comment) time.Time { return c.CreatedAt })
	return comments, nil
}

func (r *CommentRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, func(c *model.Comment) bool { return c.DocumentID == documentID })
}

type NoteRepository struct {
	base *generic.MemoryBaseRepository[*model.Note]
}

var _ repository.INoteRepository = (*NoteRepository)(nil)

func NewNoteRepository() *NoteRepository {
	return &NoteRepository{base: generic.NewMemoryBaseRepository[*model.Note]()}
}

func (r *NoteRepository) Create(ctx context.Context, n *model.Note) (*model.Note, error) {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := r.base.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NoteRepository) ListByDocumentAndUser(ctx context.Context, documentID, userID primitive.ObjectID) ([]*model.Note, error) {
	notes, err := r.base.Find(ctx, func(n *model.Note) bool {
		return n.DocumentID == documentID && n.UserID == userID
	})
	if err != nil {
		return nil, err
	}
	newestFirst(notes, func(n *model.Note) time.Time { return n.CreatedAt })
	return notes, nil
}

func (r *NoteRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, func(n *model.Note) bool { return n.DocumentID == documentID })
}

type HighlightRepository struct {
	base *generic.MemoryBaseRepository[*model.Highlight]
}

var _ repository.IHighlightRepository = (*HighlightRepository)(nil)

func NewHighlightRepository() *HighlightRepository {
	return &HighlightRepository{base: generic.NewMemoryBaseRepository[*model.Highlight]()}
}

func (r *HighlightRepository) Create(ctx context.Context, h *model.Highlight) (*model.Highlight, error) {
	now := time.Now()
	h.CreatedAt = now
	h.UpdatedAt = now
	if err := r.base.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

// ListByDocumentAndUser keeps insertion order, which is creation order
func (r *HighlightRepository) ListByDocumentAndUser(ctx context.Context, documentID, userID primitive.ObjectID) ([]*model.Highlight, error) {
	return r.base.Find(ctx, func(h *model.Highlight) bool {
		return h.DocumentID == documentID && h.UserID == userID
	})
}

func (r *HighlightRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, func(h *model.Highlight) bool { return h.DocumentID == documentID })
}
