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

// IDepartmentRepository defines department persistence
type IDepartmentRepository interface {
	Create(ctx context.Context, dep *model.Department) (*model.Department, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Department, error)
	List(ctx context.Context) ([]*model.Department, error)
}

// DepartmentRepository implements department persistence
type DepartmentRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Department]
}

func NewDepartmentRepository(cfg *config.Config, db *mongo.Database) IDepartmentRepository {
	return &DepartmentRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Department](db.Collection(DepartmentsCollection))}
}

func (r *DepartmentRepository) Create(ctx context.Context, dep *model.Department) (*model.Department, error) {
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

// List returns departments ordered by name
func (r *DepartmentRepository) List(ctx context.Context) ([]*model.Department, error) {
	return r.base.Find(ctx, nil, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}
