package server

import (
	"context"
	"fmt"
	"net/http"

	"docvault/internal/access"
	"docvault/internal/auth"
	"docvault/internal/broker"
	"docvault/internal/config"
	"docvault/internal/handler"
	"docvault/internal/mail"
	"docvault/internal/repository"
	"docvault/internal/repository/memory"
	"docvault/internal/search"
	"docvault/internal/service"
	"docvault/internal/session"
	"docvault/pkg/storage"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Infra holds the external systems the services run on. Nil Index, Broker
// and Mail disable search indexing, live notifications and Gmail import.
type Infra struct {
	DB        *mongo.Database
	Sessions  session.Store
	Broker    broker.Broker
	Index     search.Index
	Files     storage.FileStore
	MailFiles storage.FileStore
	Mail      mail.Provider
}

// Services groups every service the handlers depend on
type Services struct {
	Users         *service.UserService
	Departments   *service.DepartmentService
	Documents     *service.DocumentService
	Permissions   *service.PermissionService
	Comments      *service.CommentService
	Notes         *service.NoteService
	Bookmarks     *service.BookmarkService
	Notifications *service.NotificationService
	Mail          *service.MailService
}

// Handlers groups every HTTP handler
type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	Department   *handler.DepartmentHandler
	Document     *handler.DocumentHandler
	Permission   *handler.PermissionHandler
	Annotation   *handler.AnnotationHandler
	Bookmark     *handler.BookmarkHandler
	Notification *handler.NotificationHandler
	Mail         *handler.MailHandler
	Health       *handler.HealthHandler
}

// InitRepositories picks the store set for the configured driver. db is only
// used by the mongo driver.
func InitRepositories(ctx context.Context, cfg *config.Config, db *mongo.Database) (*repository.Repositories, error) {
	switch cfg.Database.Driver {
	case "memory":
		return memory.NewRepositories(), nil
	case "mongo", "":
		if db == nil {
			return nil, fmt.Errorf("mongo driver requires a database connection")
		}
		if err := repository.EnsureIndexes(ctx, db); err != nil {
			return nil, err
		}
		return repository.NewMongoRepositories(cfg, db), nil
	default:
		return nil, fmt.Errorf("unknown database driver: %s", cfg.Database.Driver)
	}
}

func InitServices(cfg *config.Config, repos *repository.Repositories, infra *Infra, log zerolog.Logger) *Services {
	gate := access.NewGate(repos.Documents, repos.Permissions)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	notifications := service.NewNotificationService(repos, infra.Broker, log)
	users := service.NewUserService(repos, tokens, infra.Sessions, cfg, log)

	return &Services{
		Users:         users,
		Departments:   service.NewDepartmentService(repos.Departments),
		Documents:     service.NewDocumentService(repos, gate, infra.Files, infra.Index, notifications, cfg, log),
		Permissions:   service.NewPermissionService(repos, gate, notifications, log),
		Comments:      service.NewCommentService(repos, gate),
		Notes:         service.NewNoteService(repos, gate),
		Bookmarks:     service.NewBookmarkService(repos, gate),
		Notifications: notifications,
		Mail:          service.NewMailService(infra.Mail, repos, users, infra.Sessions, infra.MailFiles, notifications, cfg, log),
	}
}

func InitHandlers(cfg *config.Config, s *Services, checks map[string]handler.Check, log zerolog.Logger) *Handlers {
	return &Handlers{
		Auth:         handler.NewAuthHandler(s.Users, log),
		User:         handler.NewUserHandler(s.Users, log),
		Department:   handler.NewDepartmentHandler(s.Departments, log),
		Document:     handler.NewDocumentHandler(s.Documents, cfg.Storage.MaxUploadBytes(), log),
		Permission:   handler.NewPermissionHandler(s.Permissions, log),
		Annotation:   handler.NewAnnotationHandler(s.Comments, s.Notes, log),
		Bookmark:     handler.NewBookmarkHandler(s.Bookmarks, log),
		Notification: handler.NewNotificationHandler(s.Notifications, originChecker(cfg.Server.CORSOrigins), log),
		Mail:         handler.NewMailHandler(s.Mail, log),
		Health:       handler.NewHealthHandler(checks),
	}
}

// originChecker admits websocket upgrades from the CORS origins. Requests
// without an Origin header are not from a browser and pass.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			return nil
		}
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin]
	}
}
