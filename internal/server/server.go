package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"docvault/internal/broker"
	"docvault/internal/config"
	"docvault/internal/handler"
	"docvault/internal/mail"
	"docvault/internal/middleware"
	"docvault/internal/repository"
	"docvault/internal/search"
	"docvault/internal/session"
	"docvault/pkg/storage"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

// Server represents the HTTP server
type Server struct {
	cfg      *config.Config
	log      zerolog.Logger
	router   *gin.Engine
	mongo    *mongo.Client
	repos    *repository.Repositories
	infra    *Infra
	services *Services
}

// New connects every configured backend and builds the router
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	s := &Server{cfg: cfg, log: log}

	var db *mongo.Database
	if cfg.Database.Driver != "memory" || cfg.Storage.Provider == "gridfs" {
		client, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		s.mongo = client
		db = client.Database(cfg.Database.Database)
	}

	repos, err := InitRepositories(ctx, cfg, db)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	s.repos = repos

	infra, err := initInfra(ctx, cfg, db, log)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.infra = infra

	s.services = InitServices(cfg, repos, infra, log)
	handlers := InitHandlers(cfg, s.services, s.readyChecks(), log)
	s.router = setupRouter(cfg, handlers, s.services, log)

	log.Info().
		Str("db", cfg.Database.Driver).
		Str("storage", cfg.Storage.Provider).
		Bool("redis", cfg.Redis.URL != "").
		Bool("search", infra.Index != nil).
		Bool("gmail", infra.Mail != nil).
		Msg("server initialized")
	return s, nil
}

func Connect(ctx context.Context, cfg *config.Config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Database.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	return client, nil
}

func initInfra(ctx context.Context, cfg *config.Config, db *mongo.Database, log zerolog.Logger) (*Infra, error) {
	infra := &Infra{DB: db}

	if cfg.Redis.URL != "" {
		store, err := session.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		infra.Sessions = store
		infra.Broker = broker.NewRedisBroker(store.Client(), log)
	} else {
		infra.Sessions = session.NewMemoryStore()
		// without Redis, live notifications only work when everything is in process
		if cfg.Database.Driver == "memory" {
			infra.Broker = broker.NewMemoryBroker()
		}
	}

	files, err := storage.NewFromConfig(ctx, cfg.Storage, db, storage.Options{Bucket: cfg.Storage.GridFSBucket, Public: true})
	if err != nil {
		return nil, fmt.Errorf("failed to init document storage: %w", err)
	}
	infra.Files = files

	mailFiles, err := storage.NewFromConfig(ctx, cfg.Storage, db, storage.Options{Bucket: cfg.Storage.MailBucket})
	if err != nil {
		return nil, fmt.Errorf("failed to init mail storage: %w", err)
	}
	infra.MailFiles = mailFiles

	if cfg.Search.MeiliURL != "" {
		infra.Index = search.NewMeili(cfg.Search.MeiliURL, cfg.Search.MeiliKey, log)
	}
	if cfg.GoogleEnabled() {
		infra.Mail = mail.NewGmail(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURL)
	}
	return infra, nil
}

func (s *Server) readyChecks() map[string]handler.Check {
	checks := map[string]handler.Check{
		"sessions": s.infra.Sessions.Ping,
	}
	if s.mongo != nil {
		checks["database"] = func(ctx context.Context) error { return s.mongo.Ping(ctx, nil) }
	}
	return checks
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) Services() *Services { return s.services }

func (s *Server) Repositories() *repository.Repositories { return s.repos }

// Index returns the search index, nil when search is not configured
func (s *Server) Index() search.Index {
	if s.infra == nil {
		return nil
	}
	return s.infra.Index
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Address(),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("docvault server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return <-errCh
}

// Close releases every backend connection
func (s *Server) Close() error {
	var errs []error
	if s.infra != nil {
		if m, ok := s.infra.Index.(*search.Meili); ok {
			m.Close()
		}
		if s.infra.Broker != nil {
			errs = append(errs, s.infra.Broker.Close())
		}
		if s.infra.Sessions != nil {
			errs = append(errs, s.infra.Sessions.Close())
		}
	}
	if s.mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		errs = append(errs, s.mongo.Disconnect(ctx))
	}
	return errors.Join(errs...)
}

func setupRouter(cfg *config.Config, h *Handlers, s *Services, log zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.SetTrustedProxies(nil)
	r.Use(gin.Recovery(), middleware.RequestLogger(log), middleware.CORS(cfg.Server.CORSOrigins))

	// Local uploads are also reachable directly
	if cfg.Storage.Provider == "local" || cfg.Storage.Provider == "" {
		r.Static(cfg.Storage.UploadsRoute, filepath.Join(cfg.Storage.UploadsDir, cfg.Storage.GridFSBucket))
	}

	api := r.Group("/api")

	api.GET("/health", h.Health.Health)
	api.GET("/ready", h.Health.Ready)
	api.GET("/version", h.Health.Version)

	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/signup", h.Auth.Signup)
		authRoutes.POST("/login", h.Auth.Login)
	}
	// The consent redirect lands here without a bearer token
	api.GET("/mail/google/callback", h.Mail.Callback)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(s.Users))

	protected.POST("/auth/logout", h.Auth.Logout)
	protected.GET("/profile/me", h.User.Me)
	protected.PUT("/profile/me", h.User.UpdateMe)

	departments := protected.Group("/departments")
	{
		departments.GET("", h.Department.List)
		departments.POST("", h.Department.Create)
	}

	documents := protected.Group("/documents")
	{
		documents.GET("", h.Document.List)
		documents.POST("", h.Document.Create)
		documents.GET("/search", h.Document.Search)
		documents.GET("/:id", h.Document.Get)
		documents.PUT("/:id", h.Document.Update)
		documents.DELETE("/:id", h.Document.Delete)
		documents.GET("/:id/file", h.Document.Download)
		documents.GET("/:id/versions", h.Document.Versions)
		documents.GET("/:id/versions/:number", h.Document.Version)
	}

	permissions := protected.Group("/permissions")
	{
		permissions.POST("", h.Permission.Grant)
		permissions.GET("/:documentId", h.Permission.List)
		permissions.DELETE("/:documentId/:userId", h.Permission.Revoke)
	}

	protected.POST("/comments", h.Annotation.CreateComment)
	protected.GET("/comments/:documentId", h.Annotation.ListComments)
	protected.POST("/notes", h.Annotation.CreateNote)
	protected.GET("/notes/:documentId", h.Annotation.ListNotes)
	protected.POST("/highlights", h.Annotation.CreateHighlight)
	protected.GET("/highlights/:documentId", h.Annotation.ListHighlights)

	bookmarks := protected.Group("/bookmarks")
	{
		bookmarks.GET("", h.Bookmark.List)
		bookmarks.POST("", h.Bookmark.Toggle)
		bookmarks.GET("/:documentId", h.Bookmark.Status)
	}

	notifications := protected.Group("/notifications")
	{
		notifications.GET("", h.Notification.List)
		notifications.POST("", h.Notification.Create)
		notifications.GET("/stream", h.Notification.Stream)
		notifications.PUT("/mark-read", h.Notification.MarkAllRead)
		notifications.PUT("/:id/read", h.Notification.MarkRead)
	}

	mailRoutes := protected.Group("/mail")
	{
		mailRoutes.GET("/google", h.Mail.AuthURL)
		mailRoutes.POST("/fetch", h.Mail.Fetch)
		mailRoutes.GET("/files", h.Mail.Files)
		mailRoutes.GET("/download/:id", h.Mail.Download)
	}

	return r
}
