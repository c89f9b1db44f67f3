package store

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens (or creates) the store at dbPath. Use ":memory:" for
// an in-memory database in tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// modernc sqlite serializes writes; a single connection avoids
	// table-lock errors under the daemon's mixed read/write load.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS domains (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sites (
		id TEXT PRIMARY KEY,
		domain_id TEXT NOT NULL UNIQUE REFERENCES domains(id),
		template_id TEXT NOT NULL,
		theme_preset_id TEXT,
		component_style_preset_id TEXT,
		analytics_profile_id TEXT,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS theme_presets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tokens_json TEXT NOT NULL,
		is_system INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS component_style_presets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		styles_json TEXT NOT NULL,
		is_system INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS analytics_profiles (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		head_html TEXT NOT NULL DEFAULT '',
		body_end_html TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS link_library (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		url TEXT NOT NULL,
		kind TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS link_assignments (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id),
		link_id TEXT NOT NULL REFERENCES link_library(id),
		placement TEXT NOT NULL,
		is_enabled INTEGER NOT NULL DEFAULT 1,
		display_text TEXT NOT NULL DEFAULT '',
		position INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assignments_site ON link_assignments(site_id, position);
	CREATE TABLE IF NOT EXISTS pages (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id),
		route TEXT NOT NULL,
		page_type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		UNIQUE(site_id, route)
	);
	CREATE TABLE IF NOT EXISTS page_versions (
		id TEXT PRIMARY KEY,
		page_id TEXT NOT NULL REFERENCES pages(id),
		version_number INTEGER NOT NULL,
		content_json TEXT NOT NULL DEFAULT '',
		seo_json TEXT NOT NULL DEFAULT '',
		schema_json TEXT NOT NULL DEFAULT '',
		is_published INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		UNIQUE(page_id, version_number)
	);
	CREATE INDEX IF NOT EXISTS idx_versions_page ON page_versions(page_id, version_number);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id),
		build_number INTEGER NOT NULL,
		status TEXT NOT NULL,
		output_dir TEXT NOT NULL DEFAULT '',
		artifact_path TEXT NOT NULL DEFAULT '',
		detail TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL,
		started_at INTEGER,
		finished_at INTEGER,
		UNIQUE(site_id, build_number)
	);
	CREATE TABLE IF NOT EXISTS autopost_schedules (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id),
		section TEXT NOT NULL,
		cadence_type TEXT NOT NULL,
		cadence_json TEXT NOT NULL DEFAULT '',
		require_approval INTEGER NOT NULL DEFAULT 0,
		is_enabled INTEGER NOT NULL DEFAULT 1,
		next_run_at INTEGER NOT NULL,
		last_run_at INTEGER,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_due ON autopost_schedules(is_enabled, next_run_at);
	CREATE TABLE IF NOT EXISTS autopost_runs (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL REFERENCES autopost_schedules(id),
		status TEXT NOT NULL,
		result_json TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT '',
		created_page_id TEXT NOT NULL DEFAULT '',
		started_at INTEGER NOT NULL,
		finished_at INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_runs_schedule ON autopost_runs(schedule_id, started_at);
	CREATE TABLE IF NOT EXISTS bulk_operations (
		id TEXT PRIMARY KEY,
		site_id TEXT NOT NULL REFERENCES sites(id),
		find_text TEXT NOT NULL,
		replace_text TEXT NOT NULL,
		before_json TEXT NOT NULL DEFAULT '',
		pages_touched INTEGER NOT NULL DEFAULT 0,
		undone_at INTEGER,
		created_at INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- small storage helpers ---

func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

func ensureTime(t *time.Time) {
	if t.IsZero() {
		*t = time.Now().UTC()
	}
}

func toUnixNano(t time.Time) int64 { return t.UnixNano() }

func nowNano() int64 { return time.Now().UTC().UnixNano() }

func fromUnixNano(n int64) time.Time { return time.Unix(0, n).UTC() }

func toNullNano(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UnixNano()
}

func fromNullNano(n sql.NullInt64) *time.Time {
	if !n.Valid {
		return nil
	}
	t := fromUnixNano(n.Int64)
	return &t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
