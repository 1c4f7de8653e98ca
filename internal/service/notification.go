package service

import (
	"context"
	"fmt"

	"docvault/internal/apperr"
	"docvault/internal/broker"
	"docvault/internal/config"
	"docvault/internal/model"
	"docvault/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService stores notifications and pushes them to live subscribers.
// The broker is optional; without one notifications are only stored.
type NotificationService struct {
	repo   repository.INotificationRepository
	users  repository.IUserRepository
	broker broker.Broker
	log    zerolog.Logger
}

func NewNotificationService(repos *repository.Repositories, b broker.Broker, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repos.Notifications, users: repos.Users, broker: b, log: log}
}

// Notify stores one notification and publishes it
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) error {
	if n.Type == "" {
		n.Type = model.NotificationGeneral
	}
	if _, err := s.repo.Create(ctx, n); err != nil {
		return fmt.Errorf("failed to create notification: %w", err)
	}
	s.publish(ctx, n)
	return nil
}

// NotifyMany stores the same notification for every recipient
func (s *NotificationService) NotifyMany(ctx context.Context, recipients []primitive.ObjectID, tmpl model.Notification) error {
	if len(recipients) == 0 {
		return nil
	}
	if tmpl.Type == "" {
		tmpl.Type = model.NotificationGeneral
	}
	batch := make([]*model.Notification, 0, len(recipients))
	for _, id := range recipients {
		n := tmpl
		n.ID = primitive.NilObjectID
		n.UserID = id
		batch = append(batch, &n)
	}
	if err := s.repo.CreateMany(ctx, batch); err != nil {
		return fmt.Errorf("failed to create notifications: %w", err)
	}
	for _, n := range batch {
		s.publish(ctx, n)
	}
	return nil
}

// Create is the API form of Notify; the recipient must exist
func (s *NotificationService) Create(ctx context.Context, req model.CreateNotificationRequest) (*model.Notification, error) {
	userID, err := parseID(req.UserID, "user id")
	if err != nil {
		return nil, err
	}
	title, err := required(req.Title, "title")
	if err != nil {
		return nil, err
	}
	if err := checkLength(title, "title", config.MaxTitleLength); err != nil {
		return nil, err
	}
	related, err := parseOptionalID(req.RelatedID, "related id")
	if err != nil {
		return nil, err
	}
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return nil, storeErr(err, "get", "user")
	}

	n := &model.Notification{
		UserID:    userID,
		Title:     title,
		Message:   req.Message,
		Type:      req.Type,
		RelatedID: related,
	}
	if err := s.Notify(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}

// List returns the caller's latest notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID primitive.ObjectID) ([]*model.Notification, error) {
	ns, err := s.repo.ListByUser(ctx, userID, config.NotificationPageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return ns, nil
}

// MarkAllRead marks every unread notification of the caller read
func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}

// MarkRead marks one of the caller's notifications read
func (s *NotificationService) MarkRead(ctx context.Context, userID primitive.ObjectID, notificationID string) error {
	id, err := parseID(notificationID, "notification id")
	if err != nil {
		return err
	}
	return storeErr(s.repo.MarkRead(ctx, userID, id), "update", "notification")
}

// Subscribe opens a live feed of the caller's notifications
func (s *NotificationService) Subscribe(ctx context.Context, userID primitive.ObjectID) (<-chan *model.Notification, func(), error) {
	if s.broker == nil {
		return nil, nil, apperr.Unavailable("live notifications are not enabled")
	}
	ch, cancel, err := s.broker.Subscribe(ctx, userID.Hex())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return ch, cancel, nil
}

func (s *NotificationService) publish(ctx context.Context, n *model.Notification) {
	if s.broker == nil {
		return
	}
	if err := s.broker.Publish(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("user", n.UserID.Hex()).Msg("failed to publish notification")
	}
}
