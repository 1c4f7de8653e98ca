package service

import (
	"context"
	"testing"

	"docvault/internal/apperr"
	"docvault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestGrantIsAnUpsert(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	grantee := env.user(t, "grantee@example.com")
	doc := env.document(t, owner.ID, "plan", "")

	env.grant(t, doc, grantee.ID, model.AccessView)
	env.grant(t, doc, grantee.ID, model.AccessEdit)

	perms, err := env.Permissions.List(ctx, owner.ID, doc.ID.Hex())
	require.NoError(t, err)

	var records []*model.DocumentPermission
	for _, p := range perms {
		if p.UserID == grantee.ID {
			records = append(records, p)
		}
	}
	require.Len(t, records, 1)
	assert.Equal(t, model.AccessEdit, records[0].PermissionLevel)
	require.NotNil(t, records[0].User)
	assert.Equal(t, "grantee@example.com", records[0].User.Email)
}

func TestGrantDefaultsAndNotifies(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	grantee := env.user(t, "grantee@example.com")
	doc := env.document(t, owner.ID, "plan", "")

	perm, err := env.Permissions.Grant(ctx, owner.ID, model.GrantPermissionRequest{
		DocumentID: doc.ID.Hex(),
		UserID:     grantee.ID.Hex(),
	})
	require.NoError(t, err)
	assert.Equal(t, model.AccessView, perm.PermissionLevel)
	assert.Equal(t, owner.ID, perm.GrantedBy)

	notes, err := env.Notifications.List(ctx, grantee.ID)
	require.NoError(t, err)
	require.NotEmpty(t, notes)
	assert.Equal(t, model.NotificationShared, notes[0].Type)
}

func TestPermissionManagementIsOwnerOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	admin := env.user(t, "admin@example.com")
	third := env.user(t, "third@example.com")
	doc := env.document(t, owner.ID, "plan", "")
	env.grant(t, doc, admin.ID, model.AccessAdmin)

	_, err := env.Permissions.Grant(ctx, admin.ID, model.GrantPermissionRequest{
		DocumentID: doc.ID.Hex(),
		UserID:     third.ID.Hex(),
	})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = env.Permissions.List(ctx, admin.ID, doc.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = env.Permissions.Revoke(ctx, admin.ID, doc.ID.Hex(), admin.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestGrantValidation(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	doc := env.document(t, owner.ID, "plan", "")

	tests := []struct {
		name string
		req  model.GrantPermissionRequest
		want error
	}{
		{"bad level", model.GrantPermissionRequest{DocumentID: doc.ID.Hex(), UserID: primitive.NewObjectID().Hex(), PermissionLevel: "owner"}, apperr.ErrValidation},
		{"bad user id", model.GrantPermissionRequest{DocumentID: doc.ID.Hex(), UserID: "x"}, apperr.ErrValidation},
		{"unknown user", model.GrantPermissionRequest{DocumentID: doc.ID.Hex(), UserID: primitive.NewObjectID().Hex()}, apperr.ErrNotFound},
		{"unknown document", model.GrantPermissionRequest{DocumentID: primitive.NewObjectID().Hex(), UserID: owner.ID.Hex()}, apperr.ErrNotFound},
		{"owner as grantee", model.GrantPermissionRequest{DocumentID: doc.ID.Hex(), UserID: owner.ID.Hex()}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Permissions.Grant(ctx, owner.ID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestRevokeRemovesAccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	viewer := env.user(t, "viewer@example.com")
	doc := env.document(t, owner.ID, "plan", "")
	env.grant(t, doc, viewer.ID, model.AccessView)

	_, err := env.Documents.Get(ctx, viewer.ID, doc.ID.Hex())
	require.NoError(t, err)

	require.NoError(t, env.Permissions.Revoke(ctx, owner.ID, doc.ID.Hex(), viewer.ID.Hex()))

	_, err = env.Documents.Get(ctx, viewer.ID, doc.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = env.Permissions.Revoke(ctx, owner.ID, doc.ID.Hex(), viewer.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
