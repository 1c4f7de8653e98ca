package service

import (
	"context"
	"strings"
	"testing"

	"docvault/internal/access"
	"docvault/internal/auth"
	"docvault/internal/broker"
	"docvault/internal/config"
	"docvault/internal/mail"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/repository/memory"
	"docvault/internal/search"
	"docvault/internal/session"
	"docvault/pkg/logger"
	"docvault/pkg/storage"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	cfg      *config.Config
	repos    *repository.Repositories
	files    *storage.MemoryStore
	mailBox  *storage.MemoryStore
	broker   *broker.MemoryBroker
	sessions *session.MemoryStore
	provider *mail.FakeProvider

	Users         *UserService
	Departments   *DepartmentService
	Notifications *NotificationService
	Documents     *DocumentService
	Permissions   *PermissionService
	Comments      *CommentService
	Notes         *NoteService
	Bookmarks     *BookmarkService
	Mail          *MailService
}

func newTestEnv(t *testing.T, index search.Index) *testEnv {
	t.Helper()

	cfg := config.New()
	cfg.Auth.BCryptCost = bcrypt.MinCost
	cfg.Auth.JWTSecret = "service-test-secret"
	cfg.Google.FrontendURL = "http://frontend.test"
	cfg.Mail.MaxPages = 3

	env := &testEnv{
		cfg:      cfg,
		repos:    memory.NewRepositories(),
		files:    storage.NewMemoryStore(),
		mailBox:  storage.NewMemoryStore(),
		broker:   broker.NewMemoryBroker(),
		sessions: session.NewMemoryStore(),
		provider: mail.NewFakeProvider(),
	}
	log := logger.Nop()
	gate := access.NewGate(env.repos.Documents, env.repos.Permissions)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	env.Users = NewUserService(env.repos, tokens, env.sessions, cfg, log)
	env.Departments = NewDepartmentService(env.repos.Departments)
	env.Notifications = NewNotificationService(env.repos, env.broker, log)
	env.Documents = NewDocumentService(env.repos, gate, env.files, index, env.Notifications, cfg, log)
	env.Permissions = NewPermissionService(env.repos, gate, env.Notifications, log)
	env.Comments = NewCommentService(env.repos, gate)
	env.Notes = NewNoteService(env.repos, gate)
	env.Bookmarks = NewBookmarkService(env.repos, gate)
	env.Mail = NewMailService(env.provider, env.repos, env.Users, env.sessions, env.mailBox, env.Notifications, cfg, log)
	return env
}

func (e *testEnv) user(t *testing.T, email string) *model.User {
	t.Helper()
	u, err := e.Users.CreateUser(context.Background(), NewAccount{Email: email, Password: "secret123"})
	require.NoError(t, err)
	return u
}

func (e *testEnv) document(t *testing.T, owner primitive.ObjectID, title, content string) *model.Document {
	t.Helper()
	doc, err := e.Documents.Create(context.Background(), owner, model.DocumentInput{Title: &title, Content: &content})
	require.NoError(t, err)
	return doc
}

func (e *testEnv) grant(t *testing.T, doc *model.Document, to primitive.ObjectID, level model.AccessLevel) {
	t.Helper()
	_, err := e.Permissions.Grant(context.Background(), doc.UploadedBy, model.GrantPermissionRequest{
		DocumentID:      doc.ID.Hex(),
		UserID:          to.Hex(),
		PermissionLevel: string(level),
	})
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func upload(name, body string) *model.FileUpload {
	return &model.FileUpload{Name: name, ContentType: "text/plain", Size: int64(len(body)), Reader: strings.NewReader(body)}
}

type searchRecord = search.DocumentRecord

// stubIndex is a search.Index that returns fixed ids
type stubIndex struct {
	ids     []string
	err     error
	indexed map[string]search.DocumentRecord
	deleted []string
}

func newStubIndex() *stubIndex {
	return &stubIndex{indexed: make(map[string]search.DocumentRecord)}
}

func (s *stubIndex) IndexDocument(doc search.DocumentRecord) error {
	s.indexed[doc.ID] = doc
	return nil
}

func (s *stubIndex) IndexDocuments(docs []search.DocumentRecord) error {
	for _, d := range docs {
		s.indexed[d.ID] = d
	}
	return nil
}

func (s *stubIndex) DeleteDocument(id string) error {
	s.deleted = append(s.deleted, id)
	delete(s.indexed, id)
	return nil
}

func (s *stubIndex) Search(search.Query) ([]string, error) { return s.ids, s.err }

func (s *stubIndex) Healthy() bool { return true }
