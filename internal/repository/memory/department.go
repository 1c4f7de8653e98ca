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

type DepartmentRepository struct {
	mu   sync.Mutex
	base *generic.MemoryBaseRepository[*model.Department]
}

var _ repository.IDepartmentRepository = (*DepartmentRepository)(nil)

func NewDepartmentRepository() *DepartmentRepository {
	return &DepartmentRepository{base: generic.NewMemoryBaseRepository[*model.Department]()}
}

func (r *DepartmentRepository) Create(ctx context.Context, dep *model.Department) (*model.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, err := r.base.Count(ctx, func(d *model.Department) bool { return d.Name == dep.Name })
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, repository.ErrDuplicate
	}
	now := time.Now()
	dep.CreatedAt = now
	dep.UpdatedAt = now
	if err := r.base.Create(ctx, dep); err != nil {
		return nil, err
	}
	return dep, nil
}

func (r *DepartmentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Department, error) {
	return r.base.GetByID(ctx, id)
}

func (r *DepartmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	deps, err := r.base.Find(ctx, nil)
	if err != nil {
		return nil, err
	}
	generic.SortBy(deps, func(a, b *model.Department) bool { return a.Name < b.Name })
	return deps, nil
}
