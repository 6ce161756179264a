// Package sqlitestore is an embedded SQLite backend for the persistence service.
//
// The database runs in WAL mode with a busy timeout so the HTTP service can
// answer reads while a write is in flight. Ids come from an AUTOINCREMENT
// column, which SQLite guarantees never to hand out twice.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

const DataFileName = "todos.db"

const schema = `
CREATE TABLE IF NOT EXISTS todos (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	text      TEXT    NOT NULL CHECK (length(trim(text)) > 0),
	completed INTEGER NOT NULL DEFAULT 0,
	position  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_todos_position ON todos(position);
`

// Store wraps the database connection.
type Store struct {
	conn *sql.DB
	path string
}

var _ store.Store = (*Store)(nil)

// Open creates or opens the database at path and applies the schema.
//
// The caller must call Close when done.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", "file:"+path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &Store{conn: conn, path: path}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := conn.Exec(pragma); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}
	if _, err := conn.Exec(schema); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return s, nil
}

// Close checkpoints the WAL and closes the connection. The connection is
// closed even when the checkpoint fails; both failures are reported.
func (s *Store) Close() error {
	if s.conn == nil {
		return nil
	}
	var errs []error
	if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		errs = append(errs, fmt.Errorf("failed to checkpoint WAL: %w", err))
	}
	if err := s.conn.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close database: %w", err))
	}
	s.conn = nil
	return errors.Join(errs...)
}

func (s *Store) List(ctx context.Context) ([]model.Item, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT id, text, completed FROM todos ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query todos: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		var it model.Item
		if err := rows.Scan(&it.ID, &it.Text, &it.Completed); err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return items, nil
}

func (s *Store) Create(ctx context.Context, text string) (model.Item, error) {
	text, err := model.NormalizeText(text)
	if err != nil {
		return model.Item{}, err
	}
	res, err := s.conn.ExecContext(ctx, `
		INSERT INTO todos (text, completed, position)
		VALUES (?, 0, (SELECT COALESCE(MAX(position), 0) + 1 FROM todos))`, text)
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to insert todo: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Item{}, fmt.Errorf("failed to read new id: %w", err)
	}
	return model.Item{ID: id, Text: text}, nil
}

func (s *Store) Toggle(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx,
		`UPDATE todos SET completed = 1 - completed WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to toggle todo: %w", err)
	}
	return affected(res, "toggle", id)
}

func (s *Store) Delete(ctx context.Context, id int64) error {
	res, err := s.conn.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	return affected(res, "delete", id)
}

// Replace rewrites the table in one transaction. Explicit ids push the
// AUTOINCREMENT sequence forward, so later creates stay unique.
func (s *Store) Replace(ctx context.Context, items []model.Item) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM todos`); err != nil {
		return fmt.Errorf("failed to clear todos: %w", err)
	}
	for i, it := range items {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO todos (id, text, completed, position) VALUES (?, ?, ?, ?)`,
			it.ID, it.Text, it.Completed, i+1); err != nil {
			return fmt.Errorf("failed to insert todo %d: %w", it.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func affected(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", op, id, store.ErrNotFound)
	}
	return nil
}
