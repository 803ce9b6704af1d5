// Package store persists dashboard documents. A document is a JSON object
// in a named collection; the store owns its id, created_at and updated_at
// keys and merges them into the body on every read.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotFound is returned when no document has the requested id.
var ErrNotFound = errors.New("store: document not found")

// OrderBy selects the sort of SelectAll. Field is "created_at", "updated_at"
// or "id".
type OrderBy struct {
	Field string
	Desc  bool
}

// Newest orders by creation time, most recent first.
var Newest = OrderBy{Field: "created_at", Desc: true}

// DocumentStore is the remote structured-data service behind the dashboard.
// Every method is a single fire-once call.
type DocumentStore interface {
	SelectAll(ctx context.Context, collection string, order OrderBy) ([]json.RawMessage, error)
	SelectOne(ctx context.Context, collection string, id int64) (json.RawMessage, error)
	Insert(ctx context.Context, collection string, doc json.RawMessage) (json.RawMessage, error)
	// Update replaces the whole document body.
	Update(ctx context.Context, collection string, id int64, doc json.RawMessage) (json.RawMessage, error)
	Delete(ctx context.Context, collection string, id int64) error
	Close() error
}

// All fetches a collection newest first and decodes every document into T.
func All[T any](ctx context.Context, s DocumentStore, collection string) ([]T, error) {
	raws, err := s.SelectAll(ctx, collection, Newest)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raws))
	for _, raw := range raws {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("store: decode %s: %w", collection, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// One fetches and decodes a single document.
func One[T any](ctx context.Context, s DocumentStore, collection string, id int64) (T, error) {
	var v T
	raw, err := s.SelectOne(ctx, collection, id)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("store: decode %s/%d: %w", collection, id, err)
	}
	return v, nil
}

// Create inserts v and returns it as stored, with its assigned meta.
func Create[T any](ctx context.Context, s DocumentStore, collection string, v T) (T, error) {
	return write(collection, v, func(doc json.RawMessage) (json.RawMessage, error) {
		return s.Insert(ctx, collection, doc)
	})
}

// Replace overwrites document id with v and returns it as stored.
func Replace[T any](ctx context.Context, s DocumentStore, collection string, id int64, v T) (T, error) {
	return write(collection, v, func(doc json.RawMessage) (json.RawMessage, error) {
		return s.Update(ctx, collection, id, doc)
	})
}

func write[T any](collection string, v T, call func(json.RawMessage) (json.RawMessage, error)) (T, error) {
	var out T
	doc, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("store: encode %s: %w", collection, err)
	}
	raw, err := call(doc)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("store: decode %s: %w", collection, err)
	}
	return out, nil
}
