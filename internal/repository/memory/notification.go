package memory

import (
	"context"
	"time"

	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/pkg/generic"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationRepository struct {
	base *generic.MemoryBaseRepository[*model.Notification]
}

var _ repository.INotificationRepository = (*NotificationRepository)(nil)

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{base: generic.NewMemoryBaseRepository[*model.Notification]()}
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
	for _, n := range ns {
		if _, err := r.Create(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int) ([]*model.Notification, error) {
	ns, err := r.base.Find(ctx, func(n *model.Notification) bool { return n.UserID == userID })
	if err != nil {
		return nil, err
	}
	newestFirst(ns, func(n *model.Notification) time.Time { return n.CreatedAt })
	if limit > 0 && len(ns) > limit {
		ns = ns[:limit]
	}
	return ns, nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := time.Now()
	return r.base.Mutate(ctx,
		func(n *model.Notification) bool { return n.UserID == userID && !n.IsRead },
		func(n *model.Notification) {
			n.IsRead = true
			n.UpdatedAt = now
		},
	)
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	now := time.Now()
	n, err := r.base.Mutate(ctx,
		func(n *model.Notification) bool { return n.ID == id && n.UserID == userID },
		func(n *model.Notification) {
			n.IsRead = true
			n.UpdatedAt = now
		},
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
