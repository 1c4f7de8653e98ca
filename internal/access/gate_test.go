package access

import (
	"context"
	"testing"

	"docvault/internal/apperr"
	"docvault/internal/model"
	"docvault/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	gate  *Gate
	doc   *model.Document
	owner primitive.ObjectID
	perms *memory.PermissionRepository
}

func setup(t *testing.T) fixture {
	t.Helper()
	docs := memory.NewDocumentRepository()
	perms := memory.NewPermissionRepository()
	owner := primitive.NewObjectID()
	doc, err := docs.Create(context.Background(), &model.Document{Title: "Q1 Report", UploadedBy: owner})
	require.NoError(t, err)
	return fixture{gate: NewGate(docs, perms), doc: doc, owner: owner, perms: perms}
}

func TestAccessIffOwnerOrExplicitPermission(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		owner   bool
		grant   model.AccessLevel
		allowed bool
	}{
		{"owner without record", true, "", true},
		{"owner with record", true, model.AccessAdmin, true},
		{"stranger", false, "", false},
		{"view grant", false, model.AccessView, true},
		{"edit grant", false, model.AccessEdit, true},
		{"admin grant", false, model.AccessAdmin, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setup(t)
			user := primitive.NewObjectID()
			if tt.owner {
				user = f.owner
			}
			if tt.grant != "" {
				_, err := f.perms.Upsert(ctx, f.doc.ID, user, tt.grant, f.owner)
				require.NoError(t, err)
			}

			doc, err := f.gate.Authorize(ctx, f.doc.ID, user)
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, f.doc.ID, doc.ID)
			} else {
				assert.ErrorIs(t, err, apperr.ErrForbidden)
			}
		})
	}
}

func TestGrantOnOtherDocumentDoesNotLeak(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	user := primitive.NewObjectID()
	_, err := f.perms.Upsert(ctx, primitive.NewObjectID(), user, model.AccessAdmin, f.owner)
	require.NoError(t, err)

	_, err = f.gate.Authorize(ctx, f.doc.ID, user)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestMissingDocumentIsNotFound(t *testing.T) {
	f := setup(t)
	_, err := f.gate.Authorize(context.Background(), primitive.NewObjectID(), f.owner)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.gate.AuthorizeOwner(context.Background(), primitive.NewObjectID(), f.owner)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestOwnerOnlyIgnoresAdminGrant(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	admin := primitive.NewObjectID()
	_, err := f.perms.Upsert(ctx, f.doc.ID, admin, model.AccessAdmin, f.owner)
	require.NoError(t, err)

	_, err = f.gate.AuthorizeOwner(ctx, f.doc.ID, admin)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.gate.AuthorizeOwner(ctx, f.doc.ID, f.owner)
	assert.NoError(t, err)
}

func TestLevel(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	level, ok, err := f.gate.Level(ctx, f.doc, f.owner)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.AccessAdmin, level)

	viewer := primitive.NewObjectID()
	_, err = f.perms.Upsert(ctx, f.doc.ID, viewer, model.AccessView, f.owner)
	require.NoError(t, err)
	level, ok, err = f.gate.Level(ctx, f.doc, viewer)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, model.AccessView, level)

	_, ok, err = f.gate.Level(ctx, f.doc, primitive.NewObjectID())
	require.NoError(t, err)
	assert.False(t, ok)
}
