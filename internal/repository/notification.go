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

// INotificationRepository defines notification persistence
type INotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) (*model.Notification, error)
	CreateMany(ctx context.Context, ns []*model.Notification) error
	ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*model.Notification, error)
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error)
	// MarkRead flags one notification; ErrNotFound unless it belongs to userID
	MarkRead(ctx context.Context, userID, id primitive.ObjectID) error
}

type NotificationRepository struct {
	cfg  *config.Config
	base *generic.MongoBaseRepository[*model.Notification]
}

func NewNotificationRepository(cfg *config.Config, db *mongo.Database) INotificationRepository {
	return &NotificationRepository{cfg: cfg, base: generic.NewBaseRepository[*model.Notification](db.Collection(NotificationsCollection))}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) (*model.Notification, error) {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	if err := r.base.Create(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) CreateMany(ctx context.Context, ns []*model.Notification) error {
	if len(ns) == 0 {
		return nil
	}
	now := time.Now()
	docs := make([]interface{}, len(ns))
	for i, n := range ns {
		if n.ID.IsZero() {
			n.ID = primitive.NewObjectID()
		}
		n.CreatedAt = now
		n.UpdatedAt = now
		docs[i] = n
	}
	_, err := r.base.Collection.InsertMany(ctx, docs)
	return generic.Translate(err)
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*model.Notification, error) {
	opts := options.Find().SetSort(newestFirst)
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return r.base.Find(ctx, bson.M{"user_id": userID}, opts)
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	res, err := r.base.Collection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := r.base.Collection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true, "updatedAt": time.Now()}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
