package service

import (
	"context"
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"testing"

	"docvault/internal/apperr"
	"docvault/internal/mail"
	"docvault/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// connect runs the consent flow for a new google account and returns its user
func connect(t *testing.T, env *testEnv, email string) *model.User {
	t.Helper()
	ctx := context.Background()
	env.provider.Accounts["code-"+email] = &mail.Identity{Email: email, Name: "Mail User", AvatarURL: "http://img.test/p.png"}

	authURL, err := env.Mail.AuthURL(ctx)
	require.NoError(t, err)
	u, err := url.Parse(authURL)
	require.NoError(t, err)

	redirect, err := env.Mail.Callback(ctx, u.Query().Get("state"), "code-"+email)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(redirect, "http://frontend.test/auth-callback?"))

	user, err := env.repos.Users.FindByEmail(ctx, email)
	require.NoError(t, err)
	return user
}

func TestCallbackRedirectCarriesTokenAndProfile(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	env.provider.Accounts["abc"] = &mail.Identity{Email: "g@example.com", Name: "G User", AvatarURL: "http://img.test/g.png"}

	authURL, err := env.Mail.AuthURL(ctx)
	require.NoError(t, err)
	parsed, err := url.Parse(authURL)
	require.NoError(t, err)
	state := parsed.Query().Get("state")
	require.NotEmpty(t, state)

	redirect, err := env.Mail.Callback(ctx, state, "abc")
	require.NoError(t, err)

	r, err := url.Parse(redirect)
	require.NoError(t, err)
	assert.Equal(t, "/auth-callback", r.Path)

	_, userID, err := env.Users.Authenticate(ctx, r.Query().Get("token"))
	require.NoError(t, err)

	var profile map[string]string
	require.NoError(t, json.Unmarshal([]byte(r.Query().Get("profile")), &profile))
	assert.Equal(t, userID.Hex(), profile["id"])
	assert.Equal(t, "g@example.com", profile["email"])
	assert.Equal(t, "G User", profile["full_name"])
	assert.Equal(t, "http://img.test/g.png", profile["avatar_url"])

	tok, err := env.repos.GmailTokens.FindByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "access-abc", tok.AccessToken)
	assert.Equal(t, "refresh-abc", tok.RefreshToken)

	// states are single use
	_, err = env.Mail.Callback(ctx, state, "abc")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestCallbackRejectsUnknownState(t *testing.T) {
	env := newTestEnv(t, nil)
	env.provider.Accounts["abc"] = &mail.Identity{Email: "g@example.com"}

	_, err := env.Mail.Callback(context.Background(), "forged", "abc")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = env.Mail.Callback(context.Background(), "forged", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestFetchRequiresConnectedAccount(t *testing.T) {
	env := newTestEnv(t, nil)
	u := env.user(t, "plain@example.com")

	_, err := env.Mail.Fetch(context.Background(), u.ID, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestFetchIsIdempotentAndCursorDriven(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	user := connect(t, env, "inbox@example.com")

	box := env.provider.Box
	box.Pages[""] = &mail.Page{
		Messages: []mail.Message{{
			ID:      "m1",
			From:    "boss@example.com",
			Subject: "reports",
			Attachments: []mail.Attachment{
				{AttachmentID: "a1", Filename: "q1.pdf", MimeType: "application/pdf"},
				{PartID: "2", Filename: "inline.txt", MimeType: "text/plain", Data: []byte("inline body")},
				{AttachmentID: "sig", Filename: ""},
			},
		}},
		NextPageToken: "p2",
	}
	box.Pages["p2"] = &mail.Page{
		Messages: []mail.Message{{
			ID:          "m2",
			Attachments: []mail.Attachment{{AttachmentID: "a2", Filename: "q2.pdf"}},
		}},
	}
	box.Bodies["a1"] = []byte("%PDF-q1")
	box.Bodies["a2"] = []byte("%PDF-q2")

	res, err := env.Mail.Fetch(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Messages)
	assert.Len(t, res.Saved, 3)
	assert.Zero(t, res.Skipped)
	assert.Empty(t, res.NextPageToken)
	assert.True(t, box.IsRead("m1"))
	assert.True(t, box.IsRead("m2"))
	assert.Equal(t, 3, env.mailBox.Len())

	// a retry of the same pages stores nothing new
	res, err = env.Mail.Fetch(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Empty(t, res.Saved)
	assert.Equal(t, 3, res.Skipped)
	assert.Equal(t, 3, env.mailBox.Len())

	// resuming from a cursor only reads that page
	res, err = env.Mail.Fetch(ctx, user.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Messages)

	files, err := env.Mail.ListFiles(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, files, 3)

	notes, err := env.Notifications.List(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, model.NotificationMail, notes[0].Type)
}

func TestFetchStopsAtMaxPages(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	user := connect(t, env, "busy@example.com")

	box := env.provider.Box
	box.Pages[""] = &mail.Page{NextPageToken: "p1"}
	box.Pages["p1"] = &mail.Page{NextPageToken: "p2"}
	box.Pages["p2"] = &mail.Page{NextPageToken: "p3"}
	box.Pages["p3"] = &mail.Page{}

	res, err := env.Mail.Fetch(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "p3", res.NextPageToken)
	assert.Equal(t, 3, box.Listings)
}

func TestFetchLeavesFailedMessagesUnread(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	user := connect(t, env, "flaky@example.com")

	box := env.provider.Box
	box.Pages[""] = &mail.Page{Messages: []mail.Message{
		{ID: "bad", Attachments: []mail.Attachment{
			{AttachmentID: "ok", Filename: "ok.txt"},
			{AttachmentID: "broken", Filename: "broken.txt"},
		}},
		{ID: "good", Attachments: []mail.Attachment{{AttachmentID: "fine", Filename: "fine.txt"}}},
	}}
	box.Bodies["ok"] = []byte("ok")
	box.Bodies["fine"] = []byte("fine")
	box.FailOn = "broken"

	res, err := env.Mail.Fetch(ctx, user.ID, "")
	require.NoError(t, err)
	assert.Len(t, res.Saved, 2)
	assert.False(t, box.IsRead("bad"))
	assert.True(t, box.IsRead("good"))

	// once the backend recovers only the missing attachment is stored
	box.FailOn = ""
	box.Bodies["broken"] = []byte("recovered")
	res, err = env.Mail.Fetch(ctx, user.ID, "")
	require.NoError(t, err)
	require.Len(t, res.Saved, 1)
	assert.Equal(t, "broken.txt", res.Saved[0].Filename)
	assert.Equal(t, 2, res.Skipped)
	assert.True(t, box.IsRead("bad"))
}

func TestOpenAttachmentIsOwnerScoped(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, nil)
	owner := connect(t, env, "owner@example.com")
	other := env.user(t, "other@example.com")

	env.provider.Box.Pages[""] = &mail.Page{Messages: []mail.Message{
		{ID: "m", Attachments: []mail.Attachment{{AttachmentID: "a", Filename: "a.txt", MimeType: "text/plain"}}},
	}}
	env.provider.Box.Bodies["a"] = []byte("secret body")

	res, err := env.Mail.Fetch(ctx, owner.ID, "")
	require.NoError(t, err)
	require.Len(t, res.Saved, 1)
	id := res.Saved[0].ID.Hex()

	att, rc, err := env.Mail.Open(ctx, owner.ID, id)
	require.NoError(t, err)
	defer rc.Close()
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "secret body", string(body))
	assert.Equal(t, "text/plain", att.ContentType)

	_, _, err = env.Mail.Open(ctx, other.ID, id)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, _, err = env.Mail.Open(ctx, owner.ID, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestMailDisabledWithoutProvider(t *testing.T) {
	env := newTestEnv(t, nil)
	svc := NewMailService(nil, env.repos, env.Users, env.sessions, env.mailBox, env.Notifications, env.cfg, env.Users.log)

	_, err := svc.AuthURL(context.Background())
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
	_, err = svc.Fetch(context.Background(), primitive.NewObjectID(), "")
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}
