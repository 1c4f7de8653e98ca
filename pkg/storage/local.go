package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"docvault/pkg/timer"
)

// LocalStore writes bodies under a directory. When baseURL is set each object
// gets baseURL/key, which the server exposes as a static route.
type LocalStore struct {
	root    string
	baseURL string
}

var _ FileStore = (*LocalStore)(nil)

// NewLocalStore creates root if needed
func NewLocalStore(root, baseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalStore{root: root, baseURL: baseURL}, nil
}

// Root returns the directory bodies are written to
func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Object, error) {
	defer timer.Track(ctx, "LocalStore.Put")()

	key := NewKey(name)
	dest := filepath.Join(s.root, key)

	// Write to a temp file first so a failed copy never leaves a partial body under key
	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("failed to write content: %w", err)
	}
	if size >= 0 && written != size {
		return nil, fmt.Errorf("size mismatch: expected %d bytes, got %d", size, written)
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	obj := &Object{Key: key, Size: written, ContentType: contentType}
	if s.baseURL != "" {
		obj.URL = path.Join(s.baseURL, key)
	}
	return obj, nil
}

func (s *LocalStore) Get(_ context.Context, key string) (io.ReadCloser, error) {
	if !validKey(key) {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.root, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return f, nil
}

func (s *LocalStore) Delete(_ context.Context, key string) error {
	if !validKey(key) {
		return nil
	}
	err := os.Remove(filepath.Join(s.root, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

func (s *LocalStore) Provider() string { return "local" }
