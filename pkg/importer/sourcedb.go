package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// ErrUnknownSource is returned for adapter IDs absent from import_sources.
var ErrUnknownSource = errors.New("unknown import source")

// Source is a row of the import_sources table.
type Source struct {
	AdapterID    string  `json:"adapter_id"`
	DictID       string  `json:"dict_id"`
	Description  string  `json:"description"`
	SourceURL    string  `json:"source_url"`
	License      string  `json:"license"`
	LastCheck    *int64  `json:"last_check,omitempty"`
	LastStatus   *int    `json:"last_status,omitempty"`
	LastError    *string `json:"last_error,omitempty"`
	LastImport   *int64  `json:"last_import,omitempty"`
	ImportGroups *int    `json:"import_groups,omitempty"`
	UpdatedAt    int64   `json:"updated_at"`
}

// SourceDB persists upstream URLs, their availability and import history.
type SourceDB struct {
	db *sql.DB
}

// OpenSourceDB opens (or creates) the SQLite database at path.
func OpenSourceDB(path string) (*SourceDB, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open source db: %w", err)
	}

	const ddl = `CREATE TABLE IF NOT EXISTS import_sources (
		adapter_id    TEXT PRIMARY KEY,
		dict_id       TEXT NOT NULL,
		description   TEXT NOT NULL,
		source_url    TEXT NOT NULL,
		license       TEXT NOT NULL DEFAULT '',
		last_check    INTEGER,
		last_status   INTEGER,
		last_error    TEXT,
		last_import   INTEGER,
		import_groups INTEGER,
		updated_at    INTEGER NOT NULL
	)`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("create import_sources table: %w", err)
	}

	return &SourceDB{db: db}, nil
}

// Close closes the database.
func (s *SourceDB) Close() error {
	return s.db.Close()
}

// Seed inserts a default row per adapter. Existing rows are left untouched
// so URL overrides survive restarts.
func (s *SourceDB) Seed(ctx context.Context, adapters []Adapter) error {
	const q = `INSERT OR IGNORE INTO import_sources
		(adapter_id, dict_id, description, source_url, license, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	now := time.Now().Unix()
	for _, a := range adapters {
		if _, err := s.db.ExecContext(ctx, q, a.ID(), a.DictID(), a.Description(), a.DefaultURL(), a.License(), now); err != nil {
			return fmt.Errorf("seed %s: %w", a.ID(), err)
		}
	}
	return nil
}

// GetURL returns the current source URL for an adapter.
func (s *SourceDB) GetURL(ctx context.Context, adapterID string) (string, error) {
	var url string
	err := s.db.QueryRowContext(ctx, `SELECT source_url FROM import_sources WHERE adapter_id = ?`, adapterID).Scan(&url)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("%w: %s", ErrUnknownSource, adapterID)
	}
	if err != nil {
		return "", fmt.Errorf("get url for %s: %w", adapterID, err)
	}
	return url, nil
}

// SetURL overrides the source URL of an adapter.
func (s *SourceDB) SetURL(ctx context.Context, adapterID, url string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET source_url = ?, updated_at = ? WHERE adapter_id = ?`,
		url, time.Now().Unix(), adapterID,
	)
	if err != nil {
		return fmt.Errorf("set url for %s: %w", adapterID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownSource, adapterID)
	}
	return nil
}

// UpdateCheck persists the result of an availability check. status 0 means
// the request never got a response.
func (s *SourceDB) UpdateCheck(ctx context.Context, adapterID string, status int, checkErr string) error {
	var errPtr *string
	if checkErr != "" {
		errPtr = &checkErr
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET last_check = ?, last_status = ?, last_error = ? WHERE adapter_id = ?`,
		time.Now().Unix(), status, errPtr, adapterID,
	)
	if err != nil {
		return fmt.Errorf("update check for %s: %w", adapterID, err)
	}
	return nil
}

// RecordImport stores the outcome of a successful import.
func (s *SourceDB) RecordImport(ctx context.Context, adapterID string, res *Result) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE import_sources SET last_import = ?, import_groups = ? WHERE adapter_id = ?`,
		time.Now().Unix(), res.Groups, adapterID,
	)
	if err != nil {
		return fmt.Errorf("record import for %s: %w", adapterID, err)
	}
	return nil
}

// ListSources returns all rows ordered by adapter_id.
func (s *SourceDB) ListSources(ctx context.Context) ([]Source, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT adapter_id, dict_id, description, source_url, license,
		last_check, last_status, last_error, last_import, import_groups, updated_at
		FROM import_sources ORDER BY adapter_id`)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	defer rows.Close()

	var sources []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.AdapterID, &src.DictID, &src.Description, &src.SourceURL,
			&src.License, &src.LastCheck, &src.LastStatus, &src.LastError,
			&src.LastImport, &src.ImportGroups, &src.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// Run imports one adapter using the URL stored for it and records the
// result.
func (s *SourceDB) Run(ctx context.Context, a Adapter, outputDir string) (*Result, error) {
	url, err := s.GetURL(ctx, a.ID())
	if err != nil {
		return nil, err
	}
	res, err := a.Import(ctx, url, outputDir)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", a.ID(), err)
	}
	if err := s.RecordImport(ctx, a.ID(), res); err != nil {
		return res, err
	}
	return res, nil
}
