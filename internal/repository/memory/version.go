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

type VersionRepository struct {
	// mu enforces the (document, number) uniqueness the Mongo index provides
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.DocumentVersion]
}

var _ repository.IVersionRepository = (*VersionRepository)(nil)

func NewVersionRepository() *VersionRepository {
	return &VersionRepository{base: generic.NewMemoryBaseRepository[*model.DocumentVersion]()}
}

func (r *VersionRepository) Create(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.FindByNumber(ctx, v.DocumentID, v.VersionNumber); err == nil {
		return nil, repository.ErrDuplicate
	}
	v.CreatedAt = time.Now()
	if err := r.base.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VersionRepository) Latest(ctx context.Context, documentID primitive.ObjectID) (*model.DocumentVersion, error) {
	versions, err := r.ListByDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, repository.ErrNotFound
	}
	return versions[0], nil
}

func (r *VersionRepository) FindByNumber(ctx context.Context, documentID primitive.ObjectID, number int) (*model.DocumentVersion, error) {
	return r.base.FindOne(ctx, func(v *model.DocumentVersion) bool {
		return v.DocumentID == documentID && v.VersionNumber == number
	})
}

func (r *VersionRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.DocumentVersion, error) {
	versions, err := r.base.Find(ctx, func(v *model.DocumentVersion) bool { return v.DocumentID == documentID })
	if err != nil {
		return nil, err
	}
	generic.SortBy(versions, func(a, b *model.DocumentVersion) bool { return a.VersionNumber > b.VersionNumber })
	return versions, nil
}

func (r *VersionRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, func(v *model.DocumentVersion) bool { return v.DocumentID == documentID })
}
