package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Server configuration
type ServerConfig struct {
	Port        string   `toml:"port"`
	Host        string   `toml:"host"`
	CORSOrigins []string `toml:"cors_origins"`
}

// Database configuration.
// Driver selects the backend: "mongo" (default) or "memory".
type DatabaseConfig struct {
	Driver   string `toml:"driver"`
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Auth configuration
type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"`
	TokenTTL   time.Duration `toml:"token_ttl"`
	BCryptCost int           `toml:"bcrypt_cost"`
}

// Storage configuration.
// Provider selects the backend; only the fields for that provider are read.
type StorageConfig struct {
	Provider      string `toml:"provider"` // "local", "gridfs", "s3", "minio" or "memory"
	UploadsDir    string `toml:"uploads_dir"`
	UploadsRoute  string `toml:"uploads_route"`
	MaxUploadMB   int    `toml:"max_upload_mb"`
	GridFSBucket  string `toml:"gridfs_bucket"`
	MailBucket    string `toml:"mail_bucket"`
	S3Bucket      string `toml:"s3_bucket"`
	S3Region      string `toml:"s3_region"`
	S3Endpoint    string `toml:"s3_endpoint"`
	S3AccessKey   string `toml:"s3_access_key"`
	S3SecretKey   string `toml:"s3_secret_key"`
	S3BaseURL     string `toml:"s3_base_url"`
	MinioEndpoint string `toml:"minio_endpoint"`
	MinioAccess   string `toml:"minio_access_key"`
	MinioSecret   string `toml:"minio_secret_key"`
	MinioBucket   string `toml:"minio_bucket"`
	MinioUseSSL   bool   `toml:"minio_use_ssl"`
}

// Redis configuration. Empty URL disables Redis-backed features.
type RedisConfig struct {
	URL string `toml:"url"`
}

// Search configuration. Empty URL falls back to database search.
type SearchConfig struct {
	MeiliURL string `toml:"meili_url"`
	MeiliKey string `toml:"meili_key"`
}

// Google OAuth configuration
type GoogleConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`
	FrontendURL  string `toml:"frontend_url"`
}

// Mail ingestion configuration
type MailConfig struct {
	Query    string `toml:"query"`
	PageSize int    `toml:"page_size"`
	MaxPages int    `toml:"max_pages"`
}

// Log configuration
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Search   SearchConfig   `toml:"search"`
	Google   GoogleConfig   `toml:"google"`
	Mail     MailConfig     `toml:"mail"`
	Log      LogConfig      `toml:"log"`
}

// Default configuration values
const (
	DefaultServerPort     = "5000"
	DefaultServerHost     = ""
	DefaultDatabaseDriver = "mongo"
	DefaultMongoURI       = "mongodb://localhost:27017/docvault"
	DefaultMongoDB        = "docvault"
	DevJWTSecret          = "docvault-dev-secret"
	DefaultTokenTTL       = 7 * 24 * time.Hour
	DefaultBCryptCost     = 10
	DefaultStorage        = "local"
	DefaultUploadsDir     = "./uploads"
	DefaultUploadsRoute   = "/uploads"
	DefaultMaxUploadMB    = 50
	DefaultGridFSBucket   = "documents"
	DefaultMailBucket     = "mailUploads"
	DefaultS3Region       = "us-east-1"
	DefaultFrontendURL    = "http://localhost:5173"
	DefaultMailQuery      = "is:unread has:attachment"
	DefaultMailPageSize   = 10
	DefaultMailMaxPages   = 5
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	// Pagination defaults
	DefaultPageSize      = 20
	MaxPageSize          = 100
	NotificationPageSize = 20
)

// Field limits
const (
	MaxTitleLength   = 300
	MaxContentLength = 1 << 20
	MaxCommentLength = 10000
	MaxNameLength    = 100
	MaxEmailLength   = 254
	MinPasswordLen   = 6
)

// New returns a new Config with default values overridden by the environment
func New() *Config {
	cfg := defaults()
	cfg.applyEnv()
	return cfg
}

// Load reads a TOML file on top of the defaults, then applies the environment.
// An empty path behaves like New.
func Load(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// Validate rejects settings that are unsafe to serve with. A missing JWT
// secret falls back to DevJWTSecret only for the in-memory driver; any
// persistent deployment must configure its own.
func (c *Config) Validate() error {
	if c.Database.Driver == "memory" {
		if c.Auth.JWTSecret == "" {
			c.Auth.JWTSecret = DevJWTSecret
		}
		return nil
	}
	switch c.Auth.JWTSecret {
	case "":
		return fmt.Errorf("JWT_SECRET is required for the %s driver", c.Database.Driver)
	case DevJWTSecret:
		return fmt.Errorf("JWT_SECRET must not be the development secret for the %s driver", c.Database.Driver)
	}
	return nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        DefaultServerPort,
			Host:        DefaultServerHost,
			CORSOrigins: []string{"*"},
		},
		Database: DatabaseConfig{
			Driver:   DefaultDatabaseDriver,
			URI:      DefaultMongoURI,
			Database: DefaultMongoDB,
		},
		Auth: AuthConfig{
			TokenTTL:   DefaultTokenTTL,
			BCryptCost: DefaultBCryptCost,
		},
		Storage: StorageConfig{
			Provider:     DefaultStorage,
			UploadsDir:   DefaultUploadsDir,
			UploadsRoute: DefaultUploadsRoute,
			MaxUploadMB:  DefaultMaxUploadMB,
			GridFSBucket: DefaultGridFSBucket,
			MailBucket:   DefaultMailBucket,
			S3Region:     DefaultS3Region,
		},
		Google: GoogleConfig{
			FrontendURL: DefaultFrontendURL,
		},
		Mail: MailConfig{
			Query:    DefaultMailQuery,
			PageSize: DefaultMailPageSize,
			MaxPages: DefaultMailMaxPages,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.Host = getEnv("SERVER_HOST", c.Server.Host)
	c.Server.CORSOrigins = getEnvList("CORS_ORIGINS", c.Server.CORSOrigins)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.URI = getEnv("MONGODB_URI", c.Database.URI)
	c.Database.Database = getEnv("MONGODB_DB", c.Database.Database)

	c.Auth.JWTSecret = getEnv("JWT_SECRET", c.Auth.JWTSecret)
	c.Auth.TokenTTL = getEnvDuration("JWT_TTL", c.Auth.TokenTTL)
	c.Auth.BCryptCost = getEnvInt("BCRYPT_COST", c.Auth.BCryptCost)

	c.Storage.Provider = getEnv("FILE_UPLOAD_PROVIDER", c.Storage.Provider)
	c.Storage.UploadsDir = getEnv("UPLOADS_DIR", c.Storage.UploadsDir)
	c.Storage.MaxUploadMB = getEnvInt("MAX_UPLOAD_MB", c.Storage.MaxUploadMB)
	c.Storage.GridFSBucket = getEnv("GRIDFS_BUCKET", c.Storage.GridFSBucket)
	c.Storage.MailBucket = getEnv("MAIL_BUCKET", c.Storage.MailBucket)
	c.Storage.S3Bucket = getEnv("S3_BUCKET", c.Storage.S3Bucket)
	c.Storage.S3Region = getEnv("S3_REGION", c.Storage.S3Region)
	c.Storage.S3Endpoint = getEnv("S3_ENDPOINT", c.Storage.S3Endpoint)
	c.Storage.S3AccessKey = getEnv("S3_ACCESS_KEY_ID", c.Storage.S3AccessKey)
	c.Storage.S3SecretKey = getEnv("S3_SECRET_ACCESS_KEY", c.Storage.S3SecretKey)
	c.Storage.S3BaseURL = getEnv("S3_BASE_URL", c.Storage.S3BaseURL)
	c.Storage.MinioEndpoint = getEnv("MINIO_ENDPOINT", c.Storage.MinioEndpoint)
	c.Storage.MinioAccess = getEnv("MINIO_ACCESS_KEY", c.Storage.MinioAccess)
	c.Storage.MinioSecret = getEnv("MINIO_SECRET_KEY", c.Storage.MinioSecret)
	c.Storage.MinioBucket = getEnv("MINIO_BUCKET", c.Storage.MinioBucket)
	c.Storage.MinioUseSSL = getEnvBool("MINIO_USE_SSL", c.Storage.MinioUseSSL)

	c.Redis.URL = getEnv("REDIS_URL", c.Redis.URL)

	c.Search.MeiliURL = getEnv("MEILI_URL", c.Search.MeiliURL)
	c.Search.MeiliKey = getEnv("MEILI_MASTER_KEY", c.Search.MeiliKey)

	c.Google.ClientID = getEnv("GOOGLE_CLIENT_ID", c.Google.ClientID)
	c.Google.ClientSecret = getEnv("GOOGLE_CLIENT_SECRET", c.Google.ClientSecret)
	c.Google.RedirectURL = getEnv("GOOGLE_REDIRECT_URI", c.Google.RedirectURL)
	c.Google.FrontendURL = getEnv("FRONTEND_URL", c.Google.FrontendURL)

	c.Mail.Query = getEnv("MAIL_QUERY", c.Mail.Query)
	c.Mail.PageSize = getEnvInt("MAIL_PAGE_SIZE", c.Mail.PageSize)
	c.Mail.MaxPages = getEnvInt("MAIL_MAX_PAGES", c.Mail.MaxPages)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// MaxUploadBytes returns the multipart size limit in bytes
func (c *StorageConfig) MaxUploadBytes() int64 {
	mb := c.MaxUploadMB
	if mb <= 0 {
		mb = DefaultMaxUploadMB
	}
	return int64(mb) << 20
}

// GoogleEnabled reports whether the Gmail integration has credentials
func (c *Config) GoogleEnabled() bool {
	return c.Google.ClientID != "" && c.Google.ClientSecret != "" && c.Google.RedirectURL != ""
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		switch strings.ToLower(value) {
		case "1", "true", "t", "yes", "y", "on":
			return true
		case "0", "false", "f", "no", "n", "off":
			return false
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping blanks
func getEnvList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
