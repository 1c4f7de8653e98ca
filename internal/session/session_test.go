package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store, s
}

func TestNewRedisStoreBadURL(t *testing.T) {
	_, err := NewRedisStore("not a url")
	assert.Error(t, err)
}

func TestRedisRevoke(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Now().Add(time.Hour)))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// the marker lives only as long as the token would have
	s.FastForward(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	// already expired tokens need no marker
	require.NoError(t, store.Revoke(ctx, "jti-2", time.Now().Add(-time.Minute)))
	assert.False(t, s.Exists(revokedPrefix+"jti-2"))
}

func TestRedisStateIsSingleUse(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, store.SaveState(ctx, "abc", "user-1", time.Minute))
	userID, err := store.ConsumeState(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = store.ConsumeState(ctx, "abc")
	assert.ErrorIs(t, err, ErrStateNotFound)

	require.NoError(t, store.SaveState(ctx, "late", "", time.Minute))
	s.FastForward(2 * time.Minute)
	_, err = store.ConsumeState(ctx, "late")
	assert.ErrorIs(t, err, ErrStateNotFound)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	now := time.Now()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "jti", now.Add(time.Hour)))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	require.NoError(t, store.SaveState(ctx, "st", "u", time.Minute))
	userID, err := store.ConsumeState(ctx, "st")
	require.NoError(t, err)
	assert.Equal(t, "u", userID)
	_, err = store.ConsumeState(ctx, "st")
	assert.ErrorIs(t, err, ErrStateNotFound)

	now = now.Add(2 * time.Hour)
	revoked, err = store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)
}
