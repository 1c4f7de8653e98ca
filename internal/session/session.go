// Package session keeps short-lived auth state: revoked access-token ids and
// pending OAuth states.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrStateNotFound is returned when an OAuth state is unknown, expired or already used
var ErrStateNotFound = errors.New("oauth state not found or expired")

// Store is implemented by the Redis and in-memory backends
type Store interface {
	// Revoke marks a token id as unusable until the token itself expires
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	// SaveState records an OAuth state with the user who started the flow (may be empty)
	SaveState(ctx context.Context, state, userID string, ttl time.Duration) error
	// ConsumeState returns and deletes a state in one step
	ConsumeState(ctx context.Context, state string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}
