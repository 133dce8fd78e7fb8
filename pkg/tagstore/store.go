// CLAUDE:SUMMARY SQLite catalog of accepted canonical tags (slug, use count, timestamps) with duplicate/similarity checks.
package tagstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/hazyhaar/tagnorm/pkg/tags"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a tag is not in the catalog.
var ErrNotFound = errors.New("tag not found")

// Tag is a catalog row.
type Tag struct {
	Name      string `json:"name"`
	Display   string `json:"display"`
	Slug      string `json:"slug"`
	Uses      int64  `json:"uses"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Entry is a tag to record: its canonical name and the spelling it was
// first submitted with.
type Entry struct {
	Name    string
	Display string
}

// Store is the accepted-tag catalog.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the catalog at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open tag store: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS tags (
		name       TEXT PRIMARY KEY,
		display    TEXT NOT NULL,
		slug       TEXT NOT NULL,
		uses       INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS tags_uses ON tags(uses DESC, name)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tags table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts new tags and increments the use count of existing ones,
// in a single transaction. Entries with an empty name are ignored.
func (s *Store) Record(ctx context.Context, entries ...Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const q = `INSERT INTO tags (name, display, slug, uses, created_at, updated_at)
		VALUES (?, ?, ?, 1, ?, ?)
		ON CONFLICT(name) DO UPDATE SET uses = uses + 1, updated_at = excluded.updated_at`

	now := time.Now().Unix()
	for _, e := range entries {
		if e.Name == "" {
			continue
		}
		display := e.Display
		if display == "" {
			display = e.Name
		}
		if _, err := tx.ExecContext(ctx, q, e.Name, display, slug.Make(e.Name), now, now); err != nil {
			return fmt.Errorf("record %s: %w", e.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// List returns up to limit tags, most used first. limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int) ([]Tag, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT name, display, slug, uses, created_at, updated_at
		FROM tags ORDER BY uses DESC, name LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	out := []Tag{}
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Name, &t.Display, &t.Slug, &t.Uses, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Names returns every tag name, most used first.
func (s *Store) Names(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM tags ORDER BY uses DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list names: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

// Get returns one tag by canonical name.
func (s *Store) Get(ctx context.Context, name string) (*Tag, error) {
	var t Tag
	err := s.db.QueryRowContext(ctx, `SELECT name, display, slug, uses, created_at, updated_at
		FROM tags WHERE name = ?`, name).
		Scan(&t.Name, &t.Display, &t.Slug, &t.Uses, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", name, err)
	}
	return &t, nil
}

// Delete removes a tag.
func (s *Store) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tags WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the number of tags in the catalog.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tags`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count tags: %w", err)
	}
	return n, nil
}

// CheckResult describes how a candidate tag relates to the catalog.
type CheckResult struct {
	Input      string `json:"input"`
	Normalized string `json:"normalized"`
	Exists     bool   `json:"exists"`
	Similar    string `json:"similar,omitempty"`
	Invalid    string `json:"invalid,omitempty"`
}

// Check normalizes raw and looks it up. When the tag is new, Check reports
// the first catalog tag it is similar to, and whether it would fail
// validation.
func (s *Store) Check(ctx context.Context, n *tags.Normalizer, raw string) (*CheckResult, error) {
	res := &CheckResult{Input: raw, Normalized: n.Normalize(raw)}
	if res.Normalized == "" {
		res.Invalid = tags.ErrTagEmpty.Error()
		return res, nil
	}

	if _, err := s.Get(ctx, res.Normalized); err == nil {
		res.Exists = true
		return res, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	if _, err := tags.ValidateTags([]string{res.Normalized}); err != nil {
		var verr *tags.ValidationError
		if errors.As(err, &verr) {
			res.Invalid = verr.Err.Error()
		} else {
			res.Invalid = err.Error()
		}
	}

	names, err := s.Names(ctx)
	if err != nil {
		return nil, err
	}
	if similar, ok := n.FindSimilarTag(raw, names); ok {
		res.Similar = similar
	}
	return res, nil
}
