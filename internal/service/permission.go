package service

import (
	"context"
	"fmt"
	"strings"

	"docvault/internal/access"
	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PermissionService manages explicit grants. Every operation is owner-only.
type PermissionService struct {
	permissions   repository.IPermissionRepository
	users         repository.IUserRepository
	gate          *access.Gate
	notifications *NotificationService
	log           zerolog.Logger
}

func NewPermissionService(repos *repository.Repositories, gate *access.Gate, notifications *NotificationService, log zerolog.Logger) *PermissionService {
	return &PermissionService{
		permissions:   repos.Permissions,
		users:         repos.Users,
		gate:          gate,
		notifications: notifications,
		log:           log,
	}
}

// Grant creates or updates the grantee's permission on a document. The level
// defaults to view.
func (s *PermissionService) Grant(ctx context.Context, ownerID primitive.ObjectID, req model.GrantPermissionRequest) (*model.DocumentPermission, error) {
	docID, err := parseID(req.DocumentID, "document id")
	if err != nil {
		return nil, err
	}
	granteeID, err := parseID(req.UserID, "user id")
	if err != nil {
		return nil, err
	}
	level := model.AccessLevel(strings.ToLower(strings.TrimSpace(req.PermissionLevel)))
	if level == "" {
		level = model.AccessView
	}
	if !level.Valid() {
		return nil, apperr.Validation("permission level must be view, edit or admin")
	}

	doc, err := s.gate.AuthorizeOwner(ctx, docID, ownerID)
	if err != nil {
		return nil, err
	}
	if granteeID == doc.UploadedBy {
		return nil, apperr.Validation("the owner always has admin access")
	}
	grantee, err := s.users.FindByID(ctx, granteeID)
	if err != nil {
		return nil, storeErr(err, "get", "user")
	}

	perm, err := s.permissions.Upsert(ctx, doc.ID, grantee.ID, level, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to grant permission: %w", err)
	}
	perm.User = grantee.Summary()

	related := doc.ID
	if err := s.notifications.Notify(ctx, &model.Notification{
		UserID:    grantee.ID,
		Title:     "Document shared with you",
		Message:   fmt.Sprintf("You now have %s access to %q", level, doc.Title),
		Type:      model.NotificationShared,
		RelatedID: &related,
	}); err != nil {
		s.log.Warn().Err(err).Str("document", doc.ID.Hex()).Msg("failed to notify grantee")
	}
	return perm, nil
}

// List returns every grant on a document with the grantee populated
func (s *PermissionService) List(ctx context.Context, ownerID primitive.ObjectID, documentID string) ([]*model.DocumentPermission, error) {
	docID, err := parseID(documentID, "document id")
	if err != nil {
		return nil, err
	}
	if _, err := s.gate.AuthorizeOwner(ctx, docID, ownerID); err != nil {
		return nil, err
	}
	return s.listRecords(ctx, docID)
}

// Revoke removes the grantee's permission on a document
func (s *PermissionService) Revoke(ctx context.Context, ownerID primitive.ObjectID, documentID, userID string) error {
	docID, err := parseID(documentID, "document id")
	if err != nil {
		return err
	}
	granteeID, err := parseID(userID, "user id")
	if err != nil {
		return err
	}
	doc, err := s.gate.AuthorizeOwner(ctx, docID, ownerID)
	if err != nil {
		return err
	}
	if granteeID == doc.UploadedBy {
		return apperr.Validation("the owner always has admin access")
	}
	return storeErr(s.permissions.Delete(ctx, docID, granteeID), "delete", "permission")
}

// listRecords returns the grants for a document with grantees populated
func (s *PermissionService) listRecords(ctx context.Context, docID primitive.ObjectID) ([]*model.DocumentPermission, error) {
	perms, err := s.permissions.ListByDocument(ctx, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions: %w", err)
	}
	ids := make([]primitive.ObjectID, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.UserID)
	}
	users, err := userSummaries(ctx, s.users, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range perms {
		p.User = users[p.UserID]
	}
	return perms, nil
}
