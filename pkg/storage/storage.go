// Package storage keeps uploaded file bodies. Every backend stores opaque
// keys produced by NewKey; callers keep the key next to their own metadata.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"

	"docvault/pkg/util"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has no stored body
var ErrNotFound = errors.New("file not found")

// Object describes a stored body. URL is empty when the backend has no
// public address and the file must be served through the API.
type Object struct {
	Key         string `json:"key"`
	URL         string `json:"url,omitempty"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// FileStore is implemented by every storage backend.
// size may be -1 when unknown.
type FileStore interface {
	Put(ctx context.Context, name, contentType string, r io.Reader, size int64) (*Object, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	// Provider names the backend, e.g. "local"
	Provider() string
}

// NewKey returns a unique storage key that keeps the original file name readable
func NewKey(name string) string {
	return uuid.NewString() + "-" + util.SanitizeFilename(name)
}

// validKey rejects keys that could escape a directory or prefix
func validKey(key string) bool {
	return key != "" && !strings.ContainsAny(key, `/\`) && key != "." && key != ".."
}

// countingReader tracks how many bytes were read through it
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
