package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStore keeps bodies in a MongoDB GridFS bucket. Keys are the hex file ids.
type GridFSStore struct {
	bucket *gridfs.Bucket
}

var _ FileStore = (*GridFSStore)(nil)

func NewGridFSStore(db *mongo.Database, name string) (*GridFSStore, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(name))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket %s: %w", name, err)
	}
	return &GridFSStore{bucket: bucket}, nil
}

func (s *GridFSStore) Put(_ context.Context, name, contentType string, r io.Reader, size int64) (*Object, error) {
	counter := &countingReader{r: r}
	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType, "originalName": name})
	id, err := s.bucket.UploadFromStream(NewKey(name), counter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to upload to gridfs: %w", err)
	}
	if size >= 0 && counter.n != size {
		_ = s.bucket.Delete(id)
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d", size, counter.n)
	}
	return &Object{Key: id.Hex(), Size: counter.n, ContentType: contentType}, nil
}

func (s *GridFSStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	id, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return nil, ErrNotFound
	}
	stream, err := s.bucket.OpenDownloadStream(id)
	if errors.Is(err, gridfs.ErrFileNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs file: %w", err)
	}
	return stream, nil
}

func (s *GridFSStore) Delete(ctx context.Context, key string) error {
	id, err := primitive.ObjectIDFromHex(key)
	if err != nil {
		return nil
	}
	err = s.bucket.DeleteContext(ctx, id)
	if err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
		return fmt.Errorf("failed to delete gridfs file: %w", err)
	}
	return nil
}

func (s *GridFSStore) Provider() string { return "gridfs" }
