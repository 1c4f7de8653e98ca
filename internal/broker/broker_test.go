package broker

import (
	"context"
	"testing"
	"time"

	"docvault/internal/model"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func receive(t *testing.T, ch <-chan *model.Notification) *model.Notification {
	t.Helper()
	select {
	case n, ok := <-ch:
		require.True(t, ok, "channel closed")
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return nil
	}
}

func testBroker(t *testing.T, b Broker) {
	ctx := context.Background()
	alice, bob := primitive.NewObjectID(), primitive.NewObjectID()

	ch, cancel, err := b.Subscribe(ctx, alice.Hex())
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, &model.Notification{UserID: bob, Title: "for bob"}))
	require.NoError(t, b.Publish(ctx, &model.Notification{UserID: alice, Title: "for alice"}))

	n := receive(t, ch)
	assert.Equal(t, "for alice", n.Title)
	assert.Equal(t, alice, n.UserID)

	cancel()
	cancel()
	for range ch {
	}
}

func TestMemoryBroker(t *testing.T) {
	b := NewMemoryBroker()
	testBroker(t, b)

	ch, _, err := b.Subscribe(context.Background(), "x")
	require.NoError(t, err)
	require.NoError(t, b.Close())
	_, ok := <-ch
	assert.False(t, ok)
}

func TestRedisBroker(t *testing.T) {
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { client.Close() })

	testBroker(t, NewRedisBroker(client, zerolog.Nop()))
}
