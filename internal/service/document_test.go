package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"docvault/internal/apperr"
	"docvault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateDocumentSetsUpOwnerAndFirstVersion(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	other := env.user(t, "other@example.com")

	doc := env.document(t, owner.ID, "Q1 Report", "revenue up")

	assert.Equal(t, model.UrgencyMedium, doc.Urgency)
	require.NotNil(t, doc.Owner)
	assert.Equal(t, "owner@example.com", doc.Owner.Email)

	perm, err := env.repos.Permissions.Find(ctx, doc.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AccessAdmin, perm.PermissionLevel)

	versions, err := env.repos.Versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, "revenue up", versions[0].Content)
	assert.Equal(t, model.InitialVersionSummary, versions[0].ChangeSummary)

	// every other user is told about the upload, the owner is not
	notes, err := env.Notifications.List(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationNewDocument, notes[0].Type)
	assert.Equal(t, doc.ID, *notes[0].RelatedID)

	mine, err := env.Notifications.List(ctx, owner.ID)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreateDocumentValidation(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")

	tests := []struct {
		name string
		in   model.DocumentInput
	}{
		{"missing title", model.DocumentInput{Content: strPtr("x")}},
		{"blank title", model.DocumentInput{Title: strPtr("   ")}},
		{"bad urgency", model.DocumentInput{Title: strPtr("t"), Urgency: strPtr("urgent")}},
		{"bad department", model.DocumentInput{Title: strPtr("t"), DepartmentID: strPtr("nope")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.Documents.Create(context.Background(), owner.ID, tt.in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := env.Documents.Create(context.Background(), owner.ID, model.DocumentInput{
		Title:        strPtr("t"),
		DepartmentID: strPtr(primitive.NewObjectID().Hex()),
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestAccessGrantedIffOwnerOrPermitted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	viewer := env.user(t, "viewer@example.com")
	stranger := env.user(t, "stranger@example.com")
	doc := env.document(t, owner.ID, "plan", "body")
	env.grant(t, doc, viewer.ID, model.AccessView)

	tests := []struct {
		name    string
		user    primitive.ObjectID
		allowed bool
	}{
		{"owner", owner.ID, true},
		{"explicit permission", viewer.ID, true},
		{"neither", stranger.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := env.Documents.Get(ctx, tt.user, doc.ID.Hex())
			if tt.allowed {
				require.NoError(t, err)
				assert.Equal(t, doc.ID, got.ID)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrForbidden)
		})
	}

	_, err := env.Documents.Get(ctx, owner.ID, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = env.Documents.Get(ctx, owner.ID, "not-an-id")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListIsUnionOfOwnedAndPermitted(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	a := env.user(t, "a@example.com")
	b := env.user(t, "b@example.com")

	own := env.document(t, a.ID, "own", "")
	shared := env.document(t, b.ID, "shared", "")
	env.document(t, b.ID, "private", "")
	env.grant(t, shared, a.ID, model.AccessEdit)

	// a second grant on the same document must not duplicate it in the list
	env.grant(t, shared, a.ID, model.AccessView)

	docs, err := env.Documents.List(ctx, a.ID)
	require.NoError(t, err)

	ids := map[primitive.ObjectID]int{}
	for _, d := range docs {
		ids[d.ID]++
	}
	assert.Equal(t, map[primitive.ObjectID]int{own.ID: 1, shared.ID: 1}, ids)
}

func TestUpdateAppendsVersionOnlyWhenContentChanges(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	doc := env.document(t, owner.ID, "Design notes", "v1 text")

	_, err := env.Documents.Update(ctx, owner.ID, doc.ID.Hex(), model.DocumentInput{Content: strPtr("v1 text")})
	require.NoError(t, err)
	versions, err := env.repos.Versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1, "same content must not add a version")

	updated, err := env.Documents.Update(ctx, owner.ID, doc.ID.Hex(), model.DocumentInput{
		Content:       strPtr("v2 text"),
		ChangeSummary: "rewrote intro",
	})
	require.NoError(t, err)
	assert.Equal(t, "v2 text", updated.Content)

	_, err = env.Documents.Update(ctx, owner.ID, doc.ID.Hex(), model.DocumentInput{Content: strPtr("v3 text")})
	require.NoError(t, err)

	versions, err = env.Documents.ListVersions(ctx, owner.ID, doc.ID.Hex())
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].VersionNumber)
	assert.Equal(t, model.DefaultChangeSummary, versions[0].ChangeSummary)
	assert.Equal(t, 2, versions[1].VersionNumber)
	assert.Equal(t, "rewrote intro", versions[1].ChangeSummary)

	v2, err := env.Documents.GetVersion(ctx, owner.ID, doc.ID.Hex(), "2")
	require.NoError(t, err)
	assert.Equal(t, "v2 text", v2.Content)

	_, err = env.Documents.GetVersion(ctx, owner.ID, doc.ID.Hex(), "9")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = env.Documents.GetVersion(ctx, owner.ID, doc.ID.Hex(), "zero")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateWithoutContentKeepsVersions(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	doc := env.document(t, owner.ID, "Design notes", "text")

	updated, err := env.Documents.Update(ctx, owner.ID, doc.ID.Hex(), model.DocumentInput{
		Title:   strPtr("renamed"),
		Urgency: strPtr("HIGH"),
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)
	assert.Equal(t, model.UrgencyHigh, updated.Urgency)
	assert.Equal(t, "text", updated.Content)

	versions, err := env.repos.Versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Len(t, versions, 1)
}

func TestUpdateRequiresAccess(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	stranger := env.user(t, "stranger@example.com")
	doc := env.document(t, owner.ID, "Design notes", "text")

	_, err := env.Documents.Update(context.Background(), stranger.ID, doc.ID.Hex(), model.DocumentInput{Content: strPtr("x")})
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestUpdateReplacesFile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")

	doc, err := env.Documents.Create(ctx, owner.ID, model.DocumentInput{
		Title: strPtr("scan"),
		File:  upload("scan.txt", "first"),
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/documents/"+doc.ID.Hex()+"/file", doc.FileURL)
	assert.Equal(t, "scan.txt", doc.FileName)
	assert.EqualValues(t, 5, doc.FileSize)
	firstKey := doc.FileKey

	updated, err := env.Documents.Update(ctx, owner.ID, doc.ID.Hex(), model.DocumentInput{File: upload("scan-v2.txt", "second!")})
	require.NoError(t, err)
	assert.NotEqual(t, firstKey, updated.FileKey)
	assert.Equal(t, "scan-v2.txt", updated.FileName)
	assert.Equal(t, 1, env.files.Len(), "the replaced file is removed")

	_, rc, err := env.Documents.OpenFile(ctx, owner.ID, doc.ID.Hex())
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "second!", string(body))
}

func TestOpenFileWithoutFile(t *testing.T) {
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	doc := env.document(t, owner.ID, "text only", "x")

	_, _, err := env.Documents.OpenFile(context.Background(), owner.ID, doc.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteIsOwnerOnlyAndCascades(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := env.user(t, "owner@example.com")
	admin := env.user(t, "admin@example.com")

	doc, err := env.Documents.Create(ctx, owner.ID, model.DocumentInput{
		Title:   strPtr("plan"),
		Content: strPtr("a"),
		File:    upload("plan.txt", "body"),
	})
	require.NoError(t, err)
	env.grant(t, doc, admin.ID, model.AccessAdmin)

	_, err = env.Comments.Create(ctx, admin.ID, model.CreateCommentRequest{DocumentID: doc.ID.Hex(), Content: "nice"})
	require.NoError(t, err)
	_, err = env.Bookmarks.Toggle(ctx, admin.ID, doc.ID.Hex())
	require.NoError(t, err)

	// an admin grant still cannot delete
	err = env.Documents.Delete(ctx, admin.ID, doc.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	require.NoError(t, env.Documents.Delete(ctx, owner.ID, doc.ID.Hex()))

	perms, err := env.repos.Permissions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	versions, err := env.repos.Versions.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, versions)

	comments, err := env.repos.Comments.ListByDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)

	bookmarks, err := env.repos.Bookmarks.ListByUser(ctx, admin.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)

	assert.Equal(t, 0, env.files.Len())

	_, err = env.Documents.Get(ctx, owner.ID, doc.ID.Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSearchFallsBackToDatabase(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	a := env.user(t, "a@example.com")
	b := env.user(t, "b@example.com")

	env.document(t, a.ID, "Quarterly budget", "numbers")
	hidden := env.document(t, b.ID, "Budget for b", "numbers")
	env.document(t, a.ID, "Roadmap", "budget appendix")

	docs, err := env.Documents.Search(ctx, a.ID, "budget")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.NotEqual(t, hidden.ID, d.ID)
	}

	docs, err = env.Documents.Search(ctx, a.ID, `"quarterly budget"`)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	_, err = env.Documents.Search(ctx, a.ID, "   ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestSearchIndexHitsAreGated(t *testing.T) {
	ctx := context.Background()
	index := newStubIndex()
	env := newTestEnv(t, index)
	a := env.user(t, "a@example.com")
	b := env.user(t, "b@example.com")

	mine := env.document(t, a.ID, "mine", "x")
	theirs := env.document(t, b.ID, "theirs", "x")
	shared := env.document(t, b.ID, "shared", "x")
	env.grant(t, shared, a.ID, model.AccessView)

	assert.Len(t, index.indexed, 3)

	index.ids = []string{theirs.ID.Hex(), shared.ID.Hex(), primitive.NewObjectID().Hex(), mine.ID.Hex()}
	docs, err := env.Documents.Search(ctx, a.ID, "x")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, shared.ID, docs[0].ID)
	assert.Equal(t, mine.ID, docs[1].ID)

	// index failures fall back to the database
	index.err = errors.New("boom")
	docs, err = env.Documents.Search(ctx, a.ID, "mine")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, mine.ID, docs[0].ID)

	require.NoError(t, env.Documents.Delete(ctx, a.ID, mine.ID.Hex()))
	assert.Equal(t, []string{mine.ID.Hex()}, index.deleted)
}

func TestReindex(t *testing.T) {
	ctx := context.Background()
	index := newStubIndex()
	env := newTestEnv(t, index)
	a := env.user(t, "a@example.com")
	env.document(t, a.ID, "one", "")
	env.document(t, a.ID, "two", "")
	index.indexed = map[string]searchRecord{}

	n, err := env.Documents.Reindex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, index.indexed, 2)

	_, err = newTestEnv(t, nil).Documents.Reindex(ctx)
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}
