package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const selectDoc = `SELECT json_set(body, '$.id', id, '$.created_at', created_at, '$.updated_at', updated_at) FROM documents`

// SQLite stores every collection in one documents table, one JSON body
// per row.
type SQLite struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (or creates) the database at path, ensures the data
// directory exists, and runs schema migrations.
func OpenSQLite(path string) (*SQLite, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	// WAL lets the dashboard read while a write is in flight; writers wait
	// on busy_timeout instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := NewSQLite(db)
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLite wraps an already open database. The schema is not touched.
func NewSQLite(db *sql.DB) *SQLite {
	return &SQLite{db: db, now: time.Now}
}

// DB exposes the handle so other tables (users, sessions) can share the file.
func (s *SQLite) DB() *sql.DB { return s.db }

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    collection TEXT NOT NULL,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL,
    body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS documents_collection_created
    ON documents (collection, created_at);
`)
	if err != nil {
		return fmt.Errorf("store: schema: %w", err)
	}
	return nil
}

func (s *SQLite) SelectAll(ctx context.Context, collection string, order OrderBy) ([]json.RawMessage, error) {
	col, err := orderColumn(order)
	if err != nil {
		return nil, err
	}
	dir := "ASC"
	if order.Desc {
		dir = "DESC"
	}
	rows, err := s.db.QueryContext(ctx,
		selectDoc+` WHERE collection = ? ORDER BY `+col+` `+dir+`, id `+dir, collection)
	if err != nil {
		return nil, fmt.Errorf("store: select %s: %w", collection, err)
	}
	defer rows.Close()

	docs := []json.RawMessage{}
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("store: select %s: %w", collection, err)
		}
		docs = append(docs, json.RawMessage(body))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: select %s: %w", collection, err)
	}
	return docs, nil
}

func (s *SQLite) SelectOne(ctx context.Context, collection string, id int64) (json.RawMessage, error) {
	var body string
	err := s.db.QueryRowContext(ctx, selectDoc+` WHERE collection = ? AND id = ?`, collection, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: select %s/%d: %w", collection, id, err)
	}
	return json.RawMessage(body), nil
}

func (s *SQLite) Insert(ctx context.Context, collection string, doc json.RawMessage) (json.RawMessage, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return nil, err
	}
	now := timestamp(s.now())
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (collection, created_at, updated_at, body) VALUES (?, ?, ?, ?)`,
		collection, now, now, body)
	if err != nil {
		return nil, fmt.Errorf("store: insert %s: %w", collection, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("store: insert %s: %w", collection, err)
	}
	return s.SelectOne(ctx, collection, id)
}

func (s *SQLite) Update(ctx context.Context, collection string, id int64, doc json.RawMessage) (json.RawMessage, error) {
	body, err := encodeBody(doc)
	if err != nil {
		return nil, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET body = ?, updated_at = ? WHERE collection = ? AND id = ?`,
		body, timestamp(s.now()), collection, id)
	if err != nil {
		return nil, fmt.Errorf("store: update %s/%d: %w", collection, id, err)
	}
	if err := requireRow(res); err != nil {
		return nil, err
	}
	return s.SelectOne(ctx, collection, id)
}

func (s *SQLite) Delete(ctx context.Context, collection string, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("store: delete %s/%d: %w", collection, id, err)
	}
	return requireRow(res)
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func encodeBody(doc json.RawMessage) (string, error) {
	body, err := stripMeta(doc)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("store: encode: %w", err)
	}
	return string(b), nil
}
