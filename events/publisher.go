// Package events publishes document lifecycle events to a Redis stream so
// other services can rebuild caches or trigger site builds.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/eringen/contentdesk/logger"
)

// StreamName is the Redis stream every event is appended to.
const StreamName = "contentdesk:content-events"

// asyncPublishTimeout bounds a PublishAsync call.
const asyncPublishTimeout = 5 * time.Second

type EventType string

const (
	DocumentCreated EventType = "document.created"
	DocumentUpdated EventType = "document.updated"
	DocumentDeleted EventType = "document.deleted"
)

// DocumentEvent describes one write to the document store.
type DocumentEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	Type       EventType `json:"event_type"`
	Collection string    `json:"collection"`
	DocumentID int64     `json:"document_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// Publisher appends events to StreamName. A nil *Publisher is a valid
// no-op publisher.
type Publisher struct {
	client *redis.Client
	log    logger.Logger
}

// NewPublisher returns nil if client is nil.
func NewPublisher(client *redis.Client, log logger.Logger) *Publisher {
	if client == nil {
		return nil
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Publisher{client: client, log: log}
}

// Publish sends an event, filling EventID and Timestamp when unset.
func (p *Publisher) Publish(ctx context.Context, event DocumentEvent) error {
	if p == nil || p.client == nil {
		return nil
	}
	if event.EventID == uuid.Nil {
		event.EventID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: marshal: %w", err)
	}
	result := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamName,
		Values: map[string]any{
			"event_type": string(event.Type),
			"event":      string(payload),
		},
	})
	if err := result.Err(); err != nil {
		return fmt.Errorf("events: publish to stream: %w", err)
	}

	p.log.Debug("Published content event",
		logger.String("event_type", string(event.Type)),
		logger.String("collection", event.Collection),
		logger.Int64("document_id", event.DocumentID),
		logger.String("stream_id", result.Val()),
	)
	return nil
}

// PublishAsync publishes in the background. Failures are logged.
func (p *Publisher) PublishAsync(event DocumentEvent) {
	if p == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncPublishTimeout)
		defer cancel()
		if err := p.Publish(ctx, event); err != nil {
			p.log.Error("Async publish failed",
				logger.String("event_type", string(event.Type)),
				logger.String("collection", event.Collection),
				logger.Int64("document_id", event.DocumentID),
				logger.Error(err),
			)
		}
	}()
}

// Close closes the Redis client.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	return p.client.Close()
}
