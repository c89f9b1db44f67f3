package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// CreateDomain inserts a domain; the name must be unique.
func (s *SQLiteStore) CreateDomain(ctx context.Context, d *model.Domain) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&d.ID)
	ensureTime(&d.CreatedAt)
	ensureTime(&d.UpdatedAt)
	if d.Status == "" {
		d.Status = model.DomainStatusDraft
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO domains (id, name, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		d.ID, d.Name, d.Status, toUnixNano(d.CreatedAt), toUnixNano(d.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("domain %q: %w", d.Name, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert domain: %w", err)
	}
	return nil
}

// GetDomain loads a domain by id.
func (s *SQLiteStore) GetDomain(ctx context.Context, id string) (model.Domain, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanDomain(s.db.QueryRowContext(ctx,
		"SELECT id, name, status, created_at, updated_at FROM domains WHERE id = ?", id))
}

func scanDomain(row *sql.Row) (model.Domain, error) {
	var d model.Domain
	var created, updated int64
	err := row.Scan(&d.ID, &d.Name, &d.Status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Domain{}, ErrNotFound
	}
	if err != nil {
		return model.Domain{}, fmt.Errorf("scan domain: %w", err)
	}
	d.CreatedAt = fromUnixNano(created)
	d.UpdatedAt = fromUnixNano(updated)
	return d, nil
}

// CreateSite inserts a site; a domain owns at most one site.
func (s *SQLiteStore) CreateSite(ctx context.Context, site *model.Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&site.ID)
	ensureTime(&site.CreatedAt)
	ensureTime(&site.UpdatedAt)
	if site.Status == "" {
		site.Status = model.SiteStatusDraft
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sites (id, domain_id, template_id, theme_preset_id, component_style_preset_id,
		 analytics_profile_id, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		site.ID, site.DomainID, site.TemplateID,
		nullIfEmpty(site.ThemePresetID), nullIfEmpty(site.ComponentStylePresetID), nullIfEmpty(site.AnalyticsProfileID),
		site.Status, toUnixNano(site.CreatedAt), toUnixNano(site.UpdatedAt))
	if isUniqueViolation(err) {
		return fmt.Errorf("domain %s already has a site: %w", site.DomainID, ErrDuplicate)
	}
	if err != nil {
		return fmt.Errorf("insert site: %w", err)
	}
	return nil
}

func nullIfEmpty(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// GetSite loads a site by id.
func (s *SQLiteStore) GetSite(ctx context.Context, id string) (model.Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getSite(ctx, s.db, id)
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLiteStore) getSite(ctx context.Context, q querier, id string) (model.Site, error) {
	var site model.Site
	var theme, styles, analytics sql.NullString
	var created, updated int64
	err := q.QueryRowContext(ctx,
		`SELECT id, domain_id, template_id, theme_preset_id, component_style_preset_id,
		 analytics_profile_id, status, created_at, updated_at FROM sites WHERE id = ?`, id).
		Scan(&site.ID, &site.DomainID, &site.TemplateID, &theme, &styles, &analytics,
			&site.Status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Site{}, ErrNotFound
	}
	if err != nil {
		return model.Site{}, fmt.Errorf("scan site: %w", err)
	}
	site.ThemePresetID = theme.String
	site.ComponentStylePresetID = styles.String
	site.AnalyticsProfileID = analytics.String
	site.CreatedAt = fromUnixNano(created)
	site.UpdatedAt = fromUnixNano(updated)
	return site, nil
}

// UpdateSiteStatus sets a site's publishing status.
func (s *SQLiteStore) UpdateSiteStatus(ctx context.Context, siteID string, status model.SiteStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE sites SET status = ?, updated_at = ? WHERE id = ?",
		status, nowNano(), siteID)
	if err != nil {
		return fmt.Errorf("update site status: %w", err)
	}
	return requireRow(res, siteID)
}

// CreateThemePreset inserts a theme preset.
func (s *SQLiteStore) CreateThemePreset(ctx context.Context, p *model.ThemePreset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&p.ID)
	ensureTime(&p.CreatedAt)
	ensureTime(&p.UpdatedAt)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO theme_presets (id, name, tokens_json, is_system, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.TokensJSON, boolToInt(p.IsSystem), toUnixNano(p.CreatedAt), toUnixNano(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert theme preset: %w", err)
	}
	return nil
}

// CreateComponentStylePreset inserts a component style preset.
func (s *SQLiteStore) CreateComponentStylePreset(ctx context.Context, p *model.ComponentStylePreset) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&p.ID)
	ensureTime(&p.CreatedAt)
	ensureTime(&p.UpdatedAt)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO component_style_presets (id, name, styles_json, is_system, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.StylesJSON, boolToInt(p.IsSystem), toUnixNano(p.CreatedAt), toUnixNano(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert component style preset: %w", err)
	}
	return nil
}

// CreateAnalyticsProfile inserts an analytics profile.
func (s *SQLiteStore) CreateAnalyticsProfile(ctx context.Context, p *model.AnalyticsProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&p.ID)
	ensureTime(&p.CreatedAt)
	ensureTime(&p.UpdatedAt)
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO analytics_profiles (id, name, head_html, body_end_html, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		p.ID, p.Name, p.HeadHTML, p.BodyEndHTML, toUnixNano(p.CreatedAt), toUnixNano(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert analytics profile: %w", err)
	}
	return nil
}

// CreateLinkLibrary inserts a link library entry.
func (s *SQLiteStore) CreateLinkLibrary(ctx context.Context, l *model.LinkLibrary) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&l.ID)
	ensureTime(&l.CreatedAt)
	ensureTime(&l.UpdatedAt)
	if l.Kind == "" {
		l.Kind = model.LinkKindURLDisplay
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO link_library (id, name, url, kind, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		l.ID, l.Name, l.URL, l.Kind, toUnixNano(l.CreatedAt), toUnixNano(l.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert link library entry: %w", err)
	}
	return nil
}

// CreateLinkAssignment inserts a link assignment.
func (s *SQLiteStore) CreateLinkAssignment(ctx context.Context, a *model.LinkAssignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&a.ID)
	ensureTime(&a.CreatedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO link_assignments (id, site_id, link_id, placement, is_enabled, display_text, position, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.SiteID, a.LinkID, a.Placement, boolToInt(a.IsEnabled), a.DisplayText, a.Position, toUnixNano(a.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert link assignment: %w", err)
	}
	return nil
}

// ListResolvedAssignments returns the site's link assignments joined with the
// library entry's URL, in stored order.
func (s *SQLiteStore) ListResolvedAssignments(ctx context.Context, siteID string) ([]model.ResolvedAssignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listResolvedAssignments(ctx, s.db, siteID)
}

func (s *SQLiteStore) listResolvedAssignments(ctx context.Context, q querier, siteID string) ([]model.ResolvedAssignment, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT a.placement, l.url, a.is_enabled, a.display_text
		 FROM link_assignments a JOIN link_library l ON l.id = a.link_id
		 WHERE a.site_id = ? ORDER BY a.position, a.created_at`, siteID)
	if err != nil {
		return nil, fmt.Errorf("query link assignments: %w", err)
	}
	defer rows.Close()

	var out []model.ResolvedAssignment
	for rows.Next() {
		var ra model.ResolvedAssignment
		var enabled int
		if err := rows.Scan(&ra.Placement, &ra.URL, &enabled, &ra.DisplayText); err != nil {
			return nil, fmt.Errorf("scan link assignment: %w", err)
		}
		ra.IsEnabled = enabled != 0
		out = append(out, ra)
	}
	return out, rows.Err()
}

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
