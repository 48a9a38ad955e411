package waypoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Store keeps waypoints in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("waypoint: empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, p := range []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	} {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS waypoints (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tag TEXT NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		z INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		deleted_at INTEGER
	);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS waypoints_tag ON waypoints(tag, created_at);`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Add saves w, filling in the id and creation time when missing.
func (s *Store) Add(ctx context.Context, w Waypoint) (Waypoint, error) {
	if w.Tag == "" {
		w.Tag = TagUser
	}
	if _, err := ParseTag(string(w.Tag)); err != nil {
		return Waypoint{}, err
	}
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = s.now()
	}
	w.CreatedAt = w.CreatedAt.UTC().Truncate(time.Millisecond)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO waypoints(id, name, tag, x, y, z, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.Name, string(w.Tag), w.Pos.X, w.Pos.Y, w.Pos.Z, w.CreatedAt.UnixMilli())
	if err != nil {
		return Waypoint{}, fmt.Errorf("waypoint: add: %w", err)
	}
	return w, nil
}

const cols = `id, name, tag, x, y, z, created_at`

func scan(rows *sql.Rows) ([]Waypoint, error) {
	defer rows.Close()
	var out []Waypoint
	for rows.Next() {
		var (
			w   Waypoint
			tag string
			ms  int64
		)
		if err := rows.Scan(&w.ID, &w.Name, &tag, &w.Pos.X, &w.Pos.Y, &w.Pos.Z, &ms); err != nil {
			return nil, err
		}
		w.Tag = Tag(tag)
		w.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}

// List returns live waypoints oldest first, optionally only one tag.
func (s *Store) List(ctx context.Context, tag Tag) ([]Waypoint, error) {
	q := `SELECT ` + cols + ` FROM waypoints WHERE deleted_at IS NULL`
	var args []any
	if tag != "" {
		q += ` AND tag = ?`
		args = append(args, string(tag))
	}
	rows, err := s.db.QueryContext(ctx, q+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("waypoint: list: %w", err)
	}
	return scan(rows)
}

func (s *Store) Get(ctx context.Context, id string) (Waypoint, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+cols+` FROM waypoints WHERE id = ? AND deleted_at IS NULL`, id)
	if err != nil {
		return Waypoint{}, fmt.Errorf("waypoint: get: %w", err)
	}
	ws, err := scan(rows)
	if err != nil {
		return Waypoint{}, err
	}
	if len(ws) == 0 {
		return Waypoint{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ws[0], nil
}

// Find resolves a user query: a tag name picks that tag's waypoints, anything
// else matches names case-insensitively. Newest first.
func (s *Store) Find(ctx context.Context, query string) ([]Waypoint, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if tag, terr := ParseTag(query); terr == nil {
		rows, err = s.db.QueryContext(ctx, `SELECT `+cols+` FROM waypoints WHERE deleted_at IS NULL AND tag = ? ORDER BY created_at DESC, id`, string(tag))
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+cols+` FROM waypoints WHERE deleted_at IS NULL AND lower(name) = ? ORDER BY created_at DESC, id`, strings.ToLower(query))
	}
	if err != nil {
		return nil, fmt.Errorf("waypoint: find: %w", err)
	}
	ws, err := scan(rows)
	if err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, query)
	}
	return ws, nil
}

// Delete hides a waypoint until it is restored.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE waypoints SET deleted_at = ? WHERE id = ? AND deleted_at IS NULL`, s.now().UnixNano(), id)
	if err != nil {
		return fmt.Errorf("waypoint: delete: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Clear deletes every waypoint with the tag, or all of them for an empty tag.
func (s *Store) Clear(ctx context.Context, tag Tag) (int, error) {
	q := `UPDATE waypoints SET deleted_at = ? WHERE deleted_at IS NULL`
	args := []any{s.now().UnixNano()}
	if tag != "" {
		q += ` AND tag = ?`
		args = append(args, string(tag))
	}
	res, err := s.db.ExecContext(ctx, q, args...)
	if err != nil {
		return 0, fmt.Errorf("waypoint: clear: %w", err)
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// Restore brings back the most recent delete or clear, or the last n deleted
// waypoints when n > 0.
func (s *Store) Restore(ctx context.Context, n int) ([]Waypoint, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var rows *sql.Rows
	if n > 0 {
		rows, err = tx.QueryContext(ctx, `SELECT `+cols+` FROM waypoints WHERE deleted_at IS NOT NULL ORDER BY deleted_at DESC, id LIMIT ?`, n)
	} else {
		rows, err = tx.QueryContext(ctx, `SELECT `+cols+` FROM waypoints WHERE deleted_at = (SELECT MAX(deleted_at) FROM waypoints) ORDER BY created_at, id`)
	}
	if err != nil {
		return nil, fmt.Errorf("waypoint: restore: %w", err)
	}
	ws, err := scan(rows)
	if err != nil {
		return nil, err
	}
	for _, w := range ws {
		if _, err := tx.ExecContext(ctx, `UPDATE waypoints SET deleted_at = NULL WHERE id = ?`, w.ID); err != nil {
			return nil, fmt.Errorf("waypoint: restore: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	if len(ws) == 0 {
		return nil, errors.New("waypoint: nothing to restore")
	}
	return ws, nil
}
