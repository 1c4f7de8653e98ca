package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.New()
	cfg.Database.Driver = "memory"
	cfg.Storage.Provider = "memory"
	cfg.Redis.URL = ""
	cfg.Search.MeiliURL = ""
	cfg.Google = config.GoogleConfig{}
	cfg.Auth.BCryptCost = bcrypt.MinCost
	cfg.Auth.JWTSecret = "server-test-secret"

	srv, err := New(context.Background(), cfg, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

type client struct {
	t *testing.T
	h http.Handler
}

func (c client) do(method, path, token string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.h.ServeHTTP(w, req)
	return w
}

func (c client) signup(email string) (token, id string) {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/auth/signup", "", gin.H{"email": email, "password": "secret123"})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"_id"`
		} `json:"user"`
	}
	decode(c.t, w, &resp)
	return resp.Token, resp.User.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type versionView struct {
	VersionNumber int    `json:"version_number"`
	Content       string `json:"content"`
}

func TestDocumentLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	c := client{t: t, h: srv.Handler()}

	alice, _ := c.signup("alice@example.com")
	bob, bobID := c.signup("bob@example.com")

	w := c.do(http.MethodPost, "/api/documents", alice, gin.H{
		"title":   "Q1 Report",
		"content": "Revenue grew",
		"urgency": "high",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		ID      string `json:"_id"`
		Title   string `json:"title"`
		Urgency string `json:"urgency"`
	}
	decode(t, w, &doc)
	assert.Equal(t, "high", doc.Urgency)

	w = c.do(http.MethodGet, "/api/documents/"+doc.ID+"/versions", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var versions []versionView
	decode(t, w, &versions)
	require.Len(t, versions, 1)
	assert.Equal(t, 1, versions[0].VersionNumber)
	assert.Equal(t, "Revenue grew", versions[0].Content)

	w = c.do(http.MethodGet, "/api/documents/"+doc.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodPost, "/api/permissions", alice, gin.H{
		"document_id":      doc.ID,
		"user_id":          bobID,
		"permission_level": "view",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/documents/"+doc.ID, bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var read struct {
		Title string `json:"title"`
	}
	decode(t, w, &read)
	assert.Equal(t, "Q1 Report", read.Title)

	w = c.do(http.MethodPut, "/api/documents/"+doc.ID, alice, gin.H{"content": "Revenue grew 12%"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/documents/"+doc.ID+"/versions", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	versions = nil
	decode(t, w, &versions)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].VersionNumber)
	assert.Equal(t, "Revenue grew 12%", versions[0].Content)

	w = c.do(http.MethodDelete, "/api/documents/"+doc.ID, bob, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = c.do(http.MethodDelete, "/api/documents/"+doc.ID, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = c.do(http.MethodGet, "/api/permissions/"+doc.ID, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	docID, err := primitive.ObjectIDFromHex(doc.ID)
	require.NoError(t, err)
	perms, err := srv.Repositories().Permissions.ListByDocument(context.Background(), docID)
	require.NoError(t, err)
	assert.Empty(t, perms)

	// bob was told about the share
	w = c.do(http.MethodGet, "/api/notifications", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []map[string]any
	decode(t, w, &notes)
	assert.NotEmpty(t, notes)
}

func TestBookmarkToggleOverHTTP(t *testing.T) {
	c := client{t: t, h: newTestServer(t).Handler()}
	token, _ := c.signup("carol@example.com")

	w := c.do(http.MethodPost, "/api/documents", token, gin.H{"title": "Handbook"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var doc struct {
		ID string `json:"_id"`
	}
	decode(t, w, &doc)

	w = c.do(http.MethodPost, "/api/bookmarks", token, gin.H{"document_id": doc.ID})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = c.do(http.MethodPost, "/api/bookmarks", token, gin.H{"document_id": doc.ID})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"removed":true`)

	w = c.do(http.MethodGet, "/api/bookmarks/"+doc.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"bookmarked":false}`, w.Body.String())
}

func TestPublicRoutes(t *testing.T) {
	c := client{t: t, h: newTestServer(t).Handler()}

	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/health", "", nil).Code)
	assert.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/version", "", nil).Code)

	w := c.do(http.MethodGet, "/api/ready", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":"ok"`)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/documents", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/documents", "garbage", nil).Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	c := client{t: t, h: newTestServer(t).Handler()}
	token, _ := c.signup("dave@example.com")

	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/profile/me", token, nil).Code)
	require.Equal(t, http.StatusOK, c.do(http.MethodPost, "/api/auth/logout", token, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/profile/me", token, nil).Code)
}

func TestMailDisabledWithoutGoogle(t *testing.T) {
	c := client{t: t, h: newTestServer(t).Handler()}
	token, _ := c.signup("erin@example.com")

	w := c.do(http.MethodGet, "/api/mail/google", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestNewRejectsUnsafeJWTSecret(t *testing.T) {
	for _, secret := range []string{"", config.DevJWTSecret} {
		cfg := config.New()
		cfg.Database.Driver = "mongo"
		// never dialed: validation fails first
		cfg.Database.URI = "mongodb://127.0.0.1:1/docvault"
		cfg.Auth.JWTSecret = secret

		srv, err := New(context.Background(), cfg, logger.Nop())
		require.Error(t, err, "secret %q", secret)
		assert.Nil(t, srv)
		assert.Contains(t, err.Error(), "JWT_SECRET")
	}
}

func TestTokenSignedWithDevSecretIsRejected(t *testing.T) {
	c := client{t: t, h: newTestServer(t).Handler()}
	token, id := c.signup("frank@example.com")
	require.Equal(t, http.StatusOK, c.do(http.MethodGet, "/api/profile/me", token, nil).Code)

	userID, err := primitive.ObjectIDFromHex(id)
	require.NoError(t, err)
	forged, _, err := auth.NewTokenManager(config.DevJWTSecret, time.Hour).Issue(userID, "frank@example.com")
	require.NoError(t, err)

	assert.Equal(t, http.StatusUnauthorized, c.do(http.MethodGet, "/api/profile/me", forged, nil).Code)
}
