package store

import (
	"encoding/json"
	"fmt"
	"time"
)

var metaKeys = []string{"id", "created_at", "updated_at"}

func orderColumn(o OrderBy) (string, error) {
	switch o.Field {
	case "", "created_at":
		return "created_at", nil
	case "updated_at":
		return "updated_at", nil
	case "id":
		return "id", nil
	}
	return "", fmt.Errorf("store: unsupported order field %q", o.Field)
}

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func timestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// stripMeta removes the store-owned keys from a document body. The body
// must be a JSON object.
func stripMeta(doc json.RawMessage) (map[string]json.RawMessage, error) {
	var body map[string]json.RawMessage
	if err := json.Unmarshal(doc, &body); err != nil {
		return nil, fmt.Errorf("store: document is not a JSON object: %w", err)
	}
	if body == nil {
		return nil, fmt.Errorf("store: document is not a JSON object")
	}
	for _, k := range metaKeys {
		delete(body, k)
	}
	return body, nil
}

// mergeMeta writes the store-owned keys into a stored body.
func mergeMeta(doc []byte, id int64, created, updated time.Time) (json.RawMessage, error) {
	body, err := stripMeta(doc)
	if err != nil {
		return nil, err
	}
	body["id"] = json.RawMessage(fmt.Sprint(id))
	for k, t := range map[string]time.Time{"created_at": created, "updated_at": updated} {
		b, err := json.Marshal(timestamp(t))
		if err != nil {
			return nil, err
		}
		body[k] = b
	}
	return json.Marshal(body)
}
