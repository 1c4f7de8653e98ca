package repository

import (
	"context"
	"time"

	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

// ICommentRepository defines comment persistence
type ICommentRepository interface {
	Create(ctx context.Context, c *model.Comment) (*model.Comment, error)
	ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.Comment, error)
	DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
}

type CommentRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Comment]
}

func NewCommentRepository(cfg *config.Config, db *mongo.Database) ICommentRepository {
	return &CommentRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Comment](db.Collection(CommentsCollection))}
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
	return r.base.Find(ctx, bson.M{"document_id": documentID}, options.Find().SetSort(newestFirst))
}

func (r *CommentRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, bson.M{"document_id": documentID})
}

// INoteRepository defines private note persistence
type INoteRepository interface {
	Create(ctx context.Context, n *model.Note) (*model.Note, error)
	ListByDocumentAndUser(ctx context.Context, documentID, userID primitive.ObjectID) ([]*model.Note, error)
	DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
}

type NoteRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Note]
}

func NewNoteRepository(cfg *config.Config, db *mongo.Database) INoteRepository {
	return &NoteRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Note](db.Collection(NotesCollection))}
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
	filter := bson.M{"document_id": documentID, "user_id": userID}
	return r.base.Find(ctx, filter, options.Find().SetSort(newestFirst))
}

func (r *NoteRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, bson.M{"document_id": documentID})
}

// IHighlightRepository defines private highlight persistence
type IHighlightRepository interface {
	Create(ctx context.Context, h *model.Highlight) (*model.Highlight, error)
	ListByDocumentAndUser(ctx context.Context, documentID, userID primitive.ObjectID) ([]*model.Highlight, error)
	DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
}

type HighlightRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Highlight]
}

func NewHighlightRepository(cfg *config.Config, db *mongo.Database) IHighlightRepository {
	return &HighlightRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Highlight](db.Collection(HighlightsCollection))}
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

// ListByDocumentAndUser returns highlights in creation order
func (r *HighlightRepository) ListByDocumentAndUser(ctx context.Context, documentID, userID primitive.ObjectID) ([]*model.Highlight, error) {
	filter := bson.M{"document_id": documentID, "user_id": userID}
	return r.base.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

func (r *HighlightRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, bson.M{"document_id": documentID})
}
