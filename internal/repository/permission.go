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

// IPermissionRepository defines document permission persistence.
// There is at most one record per (document, user).
type IPermissionRepository interface {
	// Upsert creates the (document, user) grant or updates its level and grantor
	Upsert(ctx context.Context, documentID, userID primitive.ObjectID, level model.AccessLevel, grantedBy primitive.ObjectID) (*model.DocumentPermission, error)
	Find(ctx context.Context, documentID, userID primitive.ObjectID) (*model.DocumentPermission, error)
	ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.DocumentPermission, error)
	// DocumentIDsForUser returns the distinct ids of documents userID holds any grant on
	DocumentIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
	Delete(ctx context.Context, documentID, userID primitive.ObjectID) error
	DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error)
}

// PermissionRepository implements permission persistence
type PermissionRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.DocumentPermission]
}

func NewPermissionRepository(cfg *config.Config, db *mongo.Database) IPermissionRepository {
	return &PermissionRepository{cfg: cfg, base: generic.NewBaseRepository[*model.DocumentPermission](db.Collection(PermissionsCollection))}
}

func (r *PermissionRepository) Upsert(ctx context.Context, documentID, userID primitive.ObjectID, level model.AccessLevel, grantedBy primitive.ObjectID) (*model.DocumentPermission, error) {
	now := time.Now()
	filter := bson.M{"document_id": documentID, "user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"permission_level": level,
			"granted_by":       grantedBy,
			"updatedAt":        now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var perm *model.DocumentPermission
	if err := r.base.Collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&perm); err != nil {
		return nil, generic.Translate(err)
	}
	return perm, nil
}

func (r *PermissionRepository) Find(ctx context.Context, documentID, userID primitive.ObjectID) (*model.DocumentPermission, error) {
	return r.base.FindOne(ctx, bson.M{"document_id": documentID, "user_id": userID})
}

func (r *PermissionRepository) ListByDocument(ctx context.Context, documentID primitive.ObjectID) ([]*model.DocumentPermission, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}})
	return r.base.Find(ctx, bson.M{"document_id": documentID}, opts)
}

func (r *PermissionRepository) DocumentIDsForUser(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	values, err := r.base.Collection.Distinct(ctx, "document_id", bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if oid, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, oid)
		}
	}
	return ids, nil
}

func (r *PermissionRepository) Delete(ctx context.Context, documentID, userID primitive.ObjectID) error {
	n, err := r.base.DeleteMany(ctx, bson.M{"document_id": documentID, "user_id": userID})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PermissionRepository) DeleteByDocument(ctx context.Context, documentID primitive.ObjectID) (int64, error) {
	return r.base.DeleteMany(ctx, bson.M{"document_id": documentID})
}
