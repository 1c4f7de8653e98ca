package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"docvault/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
)

// Options selects one logical bucket inside the configured provider
type Options struct {
	// Bucket separates document uploads from mail attachments. It is the GridFS
	// bucket name, the local subdirectory and the object-store key prefix.
	Bucket string
	// Public asks for a direct URL on each stored object where the provider has one
	Public bool
}

// NewFromConfig creates a FileStore for the configured provider.
// db is only required by the gridfs provider.
func NewFromConfig(ctx context.Context, cfg config.StorageConfig, db *mongo.Database, opts Options) (FileStore, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("storage bucket is required")
	}

	switch cfg.Provider {
	case "memory":
		return NewMemoryStore(), nil
	case "local", "":
		if cfg.UploadsDir == "" {
			return nil, fmt.Errorf("local storage requires uploads_dir to be set")
		}
		baseURL := ""
		if opts.Public {
			baseURL = cfg.UploadsRoute
		}
		return NewLocalStore(filepath.Join(cfg.UploadsDir, opts.Bucket), baseURL)
	case "gridfs":
		if db == nil {
			return nil, fmt.Errorf("gridfs storage requires a mongo database")
		}
		return NewGridFSStore(db, opts.Bucket)
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("s3 storage requires s3_bucket to be set")
		}
		baseURL := ""
		if opts.Public {
			baseURL = cfg.S3BaseURL
		}
		return NewS3Store(ctx, S3Options{
			Bucket:    cfg.S3Bucket,
			Prefix:    opts.Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			BaseURL:   baseURL,
		})
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
			return nil, fmt.Errorf("minio storage requires minio_endpoint and minio_bucket to be set")
		}
		return NewMinioStore(ctx, MinioOptions{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccess,
			SecretKey: cfg.MinioSecret,
			Bucket:    cfg.MinioBucket,
			Prefix:    opts.Bucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	default:
		return nil, fmt.Errorf("unknown storage provider: %s", cfg.Provider)
	}
}
