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

// IVersionRepository defines the append-only version log.
// (document_id, version_number) is unique; a clash surfaces as ErrDuplicate.
type IVersionRepository interface {
	Create(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error)
	Latest(ctx context.Context, documentID primitive.ObjectID) (*model.DocumentVersion, error)
	FindByNumber(ctx context.Context, documentID primitive.ObjectID, number int) (*model.DocumentVersion, error)
	ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.DocumentVersion, error)
	DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
}

// VersionRepository implements version persistence
type VersionRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.DocumentVersion]
}

func NewVersionRepository(cfg *config.Config, db *mongo.Database) IVersionRepository {
	return &VersionRepository{cfg: cfg, base: generic.NewBaseRepository[*model.DocumentVersion](db.Collection(VersionsCollection))}
}

func (r *VersionRepository) Create(ctx context.Context, v *model.DocumentVersion) (*model.DocumentVersion, error) {
	v.CreatedAt = time.Now()
	if err := r.base.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VersionRepository) Latest(ctx context.Context, documentID primitive.ObjectID) (*model.DocumentVersion, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "version_number", Value: -1}})
	return r.base.FindOne(ctx, bson.M{"document_id": documentID}, opts)
}

func (r *VersionRepository) FindByNumber(ctx context.Context, documentID primitive.ObjectID, number int) (*model.DocumentVersion, error) {
	return r.base.FindOne(ctx, bson.M{"document_id": documentID, "version_number": number})
}

// ListByDocument returns versions newest first
func (r *VersionRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.DocumentVersion, error) {
	opts := options.Find().SetSort(bson.D{{Key: "version_number", Value: -1}})
	return r.base.Find(ctx, bson.M{"document_id": documentID}, opts)
}

func (r *VersionRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, bson.M{"document_id": documentID})
}
