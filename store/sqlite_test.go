package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type note struct {
	ID        int64     `json:"id,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
	Title     string    `json:"title"`
}

func setupTestStore(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// tick makes the store clock advance one second per call so created_at
// ordering is deterministic.
func tick(s *SQLite) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	s.now = func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}

func TestOpenSQLite(t *testing.T) {
	s := setupTestStore(t)
	if s.DB() == nil {
		t.Fatal("db should not be nil")
	}
}

func TestInsertAndSelectOne(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	raw, err := s.Insert(ctx, "notes", json.RawMessage(`{"title":"First","id":99}`))
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	var got note
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID == 0 || got.ID == 99 {
		t.Errorf("ID = %d, want a store-assigned id", got.ID)
	}
	if got.Title != "First" {
		t.Errorf("Title = %q, want %q", got.Title, "First")
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.Equal(got.UpdatedAt) {
		t.Errorf("timestamps = %v / %v, want equal and set", got.CreatedAt, got.UpdatedAt)
	}

	again, err := One[note](ctx, s, "notes", got.ID)
	if err != nil {
		t.Fatalf("One failed: %v", err)
	}
	if again != got {
		t.Errorf("One = %+v, want %+v", again, got)
	}
}

func TestSelectOneWrongCollection(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	n, err := Create(ctx, s, "notes", note{Title: "x"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := s.SelectOne(ctx, "other", n.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSelectAllNewestFirst(t *testing.T) {
	s := setupTestStore(t)
	tick(s)
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := Create(ctx, s, "notes", note{Title: title}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if _, err := Create(ctx, s, "other", note{Title: "z"}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	notes, err := All[note](ctx, s, "notes")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	var titles []string
	for _, n := range notes {
		titles = append(titles, n.Title)
	}
	if len(titles) != 3 || titles[0] != "c" || titles[2] != "a" {
		t.Errorf("titles = %v, want [c b a]", titles)
	}

	asc, err := s.SelectAll(ctx, "notes", OrderBy{Field: "id"})
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	var first note
	json.Unmarshal(asc[0], &first)
	if first.Title != "a" {
		t.Errorf("first by id = %q, want %q", first.Title, "a")
	}

	if _, err := s.SelectAll(ctx, "notes", OrderBy{Field: "title; DROP TABLE documents"}); err == nil {
		t.Error("expected error for unsupported order field")
	}
}

func TestSelectAllEmpty(t *testing.T) {
	s := setupTestStore(t)
	docs, err := s.SelectAll(context.Background(), "notes", Newest)
	if err != nil {
		t.Fatalf("SelectAll failed: %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Errorf("docs = %v, want empty non-nil slice", docs)
	}
}

func TestUpdateReplacesBody(t *testing.T) {
	s := setupTestStore(t)
	tick(s)
	ctx := context.Background()

	created, err := Create(ctx, s, "notes", note{Title: "Draft"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	created.Title = "Final"
	updated, err := Replace(ctx, s, "notes", created.ID, created)
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if updated.Title != "Final" {
		t.Errorf("Title = %q, want %q", updated.Title, "Final")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt changed: %v -> %v", created.CreatedAt, updated.CreatedAt)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Errorf("UpdatedAt = %v, want after %v", updated.UpdatedAt, created.UpdatedAt)
	}

	if _, err := s.Update(ctx, "notes", 12345, json.RawMessage(`{}`)); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestInsertRejectsNonObject(t *testing.T) {
	s := setupTestStore(t)
	for _, doc := range []string{`[1,2]`, `null`, `"text"`, `{bad`} {
		if _, err := s.Insert(context.Background(), "notes", json.RawMessage(doc)); err == nil {
			t.Errorf("Insert(%s) succeeded, want error", doc)
		}
	}
}

func TestDeleteLeavesOtherIDs(t *testing.T) {
	s := setupTestStore(t)
	tick(s)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 7; i++ {
		n, err := Create(ctx, s, "notes", note{Title: "n"})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		ids = append(ids, n.ID)
	}
	// Keep five records, the last one being the record to delete.
	for _, id := range ids[:2] {
		if err := s.Delete(ctx, "notes", id); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
	}
	target := ids[6]
	if err := s.Delete(ctx, "notes", target); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	left, err := All[note](ctx, s, "notes")
	if err != nil {
		t.Fatalf("All failed: %v", err)
	}
	if len(left) != 4 {
		t.Fatalf("len = %d, want 4", len(left))
	}
	want := []int64{ids[5], ids[4], ids[3], ids[2]}
	for i, n := range left {
		if n.ID != want[i] {
			t.Errorf("left[%d].ID = %d, want %d", i, n.ID, want[i])
		}
	}

	if err := s.Delete(ctx, "notes", target); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}

func TestIDsNotReused(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a, _ := Create(ctx, s, "notes", note{Title: "a"})
	if err := s.Delete(ctx, "notes", a.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	b, err := Create(ctx, s, "notes", note{Title: "b"})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if b.ID <= a.ID {
		t.Errorf("new id %d reuses or precedes deleted id %d", b.ID, a.ID)
	}
}
