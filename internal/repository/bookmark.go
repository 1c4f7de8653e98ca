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

// IBookmarkRepository defines bookmark persistence, unique per (user, document)
type IBookmarkRepository interface {
	Find(ctx context.Context, userID, documentID primitive.ObjectID) (*model.Bookmark, error)
	Create(ctx context.Context, b *model.Bookmark) (*model.Bookmark, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Bookmark, error)
	DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
}

type BookmarkRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Bookmark]
}

func NewBookmarkRepository(cfg *config.Config, db *mongo.Database) IBookmarkRepository {
	return &BookmarkRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Bookmark](db.Collection(BookmarksCollection))}
}

func (r *BookmarkRepository) Find(ctx context.Context, userID, documentID primitive.ObjectID) (*model.Bookmark, error) {
	return r.base.FindOne(ctx, bson.M{"user_id": userID, "document_id": documentID})
}

func (r *BookmarkRepository) Create(ctx context.Context, b *model.Bookmark) (*model.Bookmark, error) {
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := r.base.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (r *BookmarkRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.base.Delete(ctx, id)
}

func (r *BookmarkRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]*model.Bookmark, error) {
	return r.base.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(newestFirst))
}

func (r *BookmarkRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, bson.M{"document_id": documentID})
}
