package events_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eringen/contentdesk/events"
)

func newPublisher(t *testing.T) (*events.Publisher, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return events.NewPublisher(client, nil), client
}

func TestPublisher_NewPublisher_RequiresClient(t *testing.T) {
	assert.Nil(t, events.NewPublisher(nil, nil))
}

func TestPublisher_NilReceiverIsNoOp(t *testing.T) {
	var pub *events.Publisher
	assert.NoError(t, pub.Publish(context.Background(), events.DocumentEvent{Type: events.DocumentCreated}))
	pub.PublishAsync(events.DocumentEvent{Type: events.DocumentCreated})
	assert.NoError(t, pub.Close())
}

func TestPublisher_Publish_WritesStreamEntry(t *testing.T) {
	pub, client := newPublisher(t)
	ctx := context.Background()

	err := pub.Publish(ctx, events.DocumentEvent{
		Type:       events.DocumentUpdated,
		Collection: "portfolio",
		DocumentID: 42,
	})
	require.NoError(t, err)

	msgs, err := client.XRange(ctx, events.StreamName, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "document.updated", msgs[0].Values["event_type"])

	var got events.DocumentEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["event"].(string)), &got))
	assert.NotEqual(t, uuid.Nil, got.EventID)
	assert.False(t, got.Timestamp.IsZero())
	assert.Equal(t, "portfolio", got.Collection)
	assert.Equal(t, int64(42), got.DocumentID)
}

func TestPublisher_PublishAsync(t *testing.T) {
	pub, client := newPublisher(t)
	id := uuid.New()
	pub.PublishAsync(events.DocumentEvent{EventID: id, Type: events.DocumentDeleted, Collection: "blogs", DocumentID: 7})

	assert.Eventually(t, func() bool {
		n, err := client.XLen(context.Background(), events.StreamName).Result()
		return err == nil && n == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestPublisher_Publish_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	pub := events.NewPublisher(client, nil)
	mr.Close()

	err := pub.Publish(context.Background(), events.DocumentEvent{Type: events.DocumentCreated})
	assert.ErrorContains(t, err, "events: publish to stream")
}
