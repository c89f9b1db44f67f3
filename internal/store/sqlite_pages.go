package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// CreatePage inserts a page; (site, route) must be unique.
func (s *SQLiteStore) CreatePage(ctx context.Context, p *model.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&p.ID)
	ensureTime(&p.CreatedAt)
	ensureTime(&p.UpdatedAt)
	if p.Status == "" {
		p.Status = model.PageStatusDraft
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO pages (id, site_id, route, page_type, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.SiteID, p.Route, p.PageType, p.Status, toUnixNano(p.CreatedAt), toUnixNano(p.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("route %q on site %s: %w", p.Route, p.SiteID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert page: %w", err)
	}
	return nil
}

const pageColumns = "id, site_id, route, page_type, status, created_at, updated_at"

func scanPage(scan func(dest ...any) error) (model.Page, error) {
	var p model.Page
	var created, updated int64
	err := scan(&p.ID, &p.SiteID, &p.Route, &p.PageType, &p.Status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Page{}, ErrNotFound
	}
	if err != nil {
		return model.Page{}, fmt.Errorf("scan page: %w", err)
	}
	p.CreatedAt = fromUnixNano(created)
	p.UpdatedAt = fromUnixNano(updated)
	return p, nil
}

// GetPage loads a page by id.
func (s *SQLiteStore) GetPage(ctx context.Context, id string) (model.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+pageColumns+" FROM pages WHERE id = ?", id)
	return scanPage(row.Scan)
}

// GetPageByRoute loads a page by its unique (site, route) pair.
func (s *SQLiteStore) GetPageByRoute(ctx context.Context, siteID, route string) (model.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? AND route = ?", siteID, route)
	return scanPage(row.Scan)
}

// ListPages returns a site's pages in creation order.
func (s *SQLiteStore) ListPages(ctx context.Context, siteID string) ([]model.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPages(ctx, s.db,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? ORDER BY created_at, rowid", siteID)
}

// ListPagesByRoutePrefix returns pages whose route starts with prefix, newest first.
func (s *SQLiteStore) ListPagesByRoutePrefix(ctx context.Context, siteID, prefix string) ([]model.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryPages(ctx, s.db,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? AND route LIKE ? ESCAPE '\\' ORDER BY created_at DESC, rowid DESC",
		siteID, escapeLike(prefix)+"%")
}

func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func (s *SQLiteStore) queryPages(ctx context.Context, q querier, query string, args ...any) ([]model.Page, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query pages: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		p, err := scanPage(rows.Scan)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// CreatePageVersion appends a new version for a page, assigning version
// number = prior max + 1 (1 for the first version).
func (s *SQLiteStore) CreatePageVersion(ctx context.Context, v *model.PageVersion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&v.ID)
	ensureTime(&v.CreatedAt)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin version tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var maxVersion sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(version_number) FROM page_versions WHERE page_id = ?", v.PageID).Scan(&maxVersion); err != nil {
		return fmt.Errorf("query max version: %w", err)
	}
	v.VersionNumber = int(maxVersion.Int64) + 1

	if v.IsPublished {
		// Single published version per page: clear any previous flag first.
		if _, err := tx.ExecContext(ctx,
			"UPDATE page_versions SET is_published = 0 WHERE page_id = ?", v.PageID); err != nil {
			return fmt.Errorf("clear published flags: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO page_versions (id, page_id, version_number, content_json, seo_json, schema_json, is_published, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.PageID, v.VersionNumber, v.ContentJSON, v.SEOJSON, v.SchemaJSON,
		boolToInt(v.IsPublished), toUnixNano(v.CreatedAt)); err != nil {
		return fmt.Errorf("insert page version: %w", err)
	}
	return tx.Commit()
}

const versionColumns = "id, page_id, version_number, content_json, seo_json, schema_json, is_published, created_at"

// ListPageVersions returns a page's versions by ascending version number.
func (s *SQLiteStore) ListPageVersions(ctx context.Context, pageID string) ([]model.PageVersion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryVersions(ctx, s.db,
		"SELECT "+versionColumns+" FROM page_versions WHERE page_id = ? ORDER BY version_number", pageID)
}

func (s *SQLiteStore) queryVersions(ctx context.Context, q querier, query string, args ...any) ([]model.PageVersion, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query page versions: %w", err)
	}
	defer rows.Close()

	var versions []model.PageVersion
	for rows.Next() {
		var v model.PageVersion
		var published int
		var created int64
		if err := rows.Scan(&v.ID, &v.PageID, &v.VersionNumber, &v.ContentJSON, &v.SEOJSON,
			&v.SchemaJSON, &published, &created); err != nil {
			return nil, fmt.Errorf("scan page version: %w", err)
		}
		v.IsPublished = published != 0
		v.CreatedAt = fromUnixNano(created)
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

// PublishSitePages promotes every page's highest version to published and
// marks the pages published, in a single transaction.
func (s *SQLiteStore) PublishSitePages(ctx context.Context, siteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin publish tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rows, err := tx.QueryContext(ctx, "SELECT id FROM pages WHERE site_id = ?", siteID)
	if err != nil {
		return fmt.Errorf("query site pages: %w", err)
	}
	var pageIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return fmt.Errorf("scan page id: %w", err)
		}
		pageIDs = append(pageIDs, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	now := nowNano()
	for _, pageID := range pageIDs {
		if _, err := tx.ExecContext(ctx,
			"UPDATE page_versions SET is_published = 0 WHERE page_id = ?", pageID); err != nil {
			return fmt.Errorf("clear published flags: %w", err)
		}
		// Pages with no versions keep nothing published; the materializer
		// skips them.
		if _, err := tx.ExecContext(ctx,
			`UPDATE page_versions SET is_published = 1 WHERE page_id = ? AND version_number =
			 (SELECT MAX(version_number) FROM page_versions WHERE page_id = ?)`, pageID, pageID); err != nil {
			return fmt.Errorf("promote latest version: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE pages SET status = ?, updated_at = ? WHERE id = ?",
			model.PageStatusPublished, now, pageID); err != nil {
			return fmt.Errorf("mark page published: %w", err)
		}
	}
	return tx.Commit()
}

// SetPublishedVersion publishes exactly the named version of a page.
func (s *SQLiteStore) SetPublishedVersion(ctx context.Context, pageID string, versionNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		"UPDATE page_versions SET is_published = 0 WHERE page_id = ?", pageID); err != nil {
		return fmt.Errorf("clear published flags: %w", err)
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE page_versions SET is_published = 1 WHERE page_id = ? AND version_number = ?",
		pageID, versionNumber)
	if err != nil {
		return fmt.Errorf("set published version: %w", err)
	}
	if err := requireRow(res, pageID); err != nil {
		return err
	}
	return tx.Commit()
}
