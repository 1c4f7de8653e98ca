package memory

import (
	"context"
	"sync"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookmarkRepository struct {
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.Bookmark]
}

var _ repository.IBookmarkRepository = (*BookmarkRepository)(nil)

func NewBookmarkRepository() *BookmarkRepository {
	return &BookmarkRepository{base: generic.NewMemoryBaseRepository[*model.Bookmark]()}
}

func (r *BookmarkRepository) Find(ctx context.Context, userID, documentID primitive.ObjectID) (*model.Bookmark, error) {
	return r.base.FindOne(ctx, func(b *model.Bookmark) bool {
		return b.UserID == userID && b.DocumentID == documentID
	})
}

func (r *BookmarkRepository) Create(ctx context.Context, b *model.Bookmark) (*model.Bookmark, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.Find(ctx, b.UserID, b.DocumentID); err == nil {
		return nil, repository.ErrDuplicate
	}
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
	bookmarks, err := r.base.Find(ctx, func(b *model.Bookmark) bool { return b.UserID == userID })
	if err != nil {
		return nil, err
	}
	newestFirst(bookmarks, func(b *model.Bookmark) time.Time { return b.CreatedAt })
	return bookmarks, nil
}

func (r *BookmarkRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, func(b *model.Bookmark) bool { return b.DocumentID == documentID })
}
