package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// LoadSiteBundle loads a site with its domain, presets, analytics profile,
// link assignments, and all pages with their versions in one transaction, so
// the orchestrator renders from a consistent snapshot.
func (s *SQLiteStore) LoadSiteBundle(ctx context.Context, siteID string) (*SiteBundle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin bundle tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	site, err := s.getSite(ctx, tx, siteID)
	if err != nil {
		return nil, err
	}

	bundle := &SiteBundle{Site: site}

	var created, updated int64
	err = tx.QueryRowContext(ctx,
		"SELECT id, name, status, created_at, updated_at FROM domains WHERE id = ?", site.DomainID).
		Scan(&bundle.Domain.ID, &bundle.Domain.Name, &bundle.Domain.Status, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("domain %s: %w", site.DomainID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan domain: %w", err)
	}
	bundle.Domain.CreatedAt = fromUnixNano(created)
	bundle.Domain.UpdatedAt = fromUnixNano(updated)

	if site.ThemePresetID != "" {
		bundle.Theme, err = loadThemePreset(ctx, tx, site.ThemePresetID)
		if err != nil {
			return nil, err
		}
	}
	if site.ComponentStylePresetID != "" {
		bundle.Styles, err = loadStylePreset(ctx, tx, site.ComponentStylePresetID)
		if err != nil {
			return nil, err
		}
	}
	if site.AnalyticsProfileID != "" {
		bundle.Analytics, err = loadAnalyticsProfile(ctx, tx, site.AnalyticsProfileID)
		if err != nil {
			return nil, err
		}
	}

	bundle.Assignments, err = s.listResolvedAssignments(ctx, tx, siteID)
	if err != nil {
		return nil, err
	}

	pages, err := s.queryPages(ctx, tx,
		"SELECT "+pageColumns+" FROM pages WHERE site_id = ? ORDER BY created_at, rowid", siteID)
	if err != nil {
		return nil, err
	}
	for _, p := range pages {
		versions, err := s.queryVersions(ctx, tx,
			"SELECT "+versionColumns+" FROM page_versions WHERE page_id = ? ORDER BY version_number", p.ID)
		if err != nil {
			return nil, err
		}
		bundle.Pages = append(bundle.Pages, PageWithVersions{Page: p, Versions: versions})
	}

	return bundle, tx.Commit()
}

func loadThemePreset(ctx context.Context, q querier, id string) (*model.ThemePreset, error) {
	var p model.ThemePreset
	var isSystem int
	var created, updated int64
	err := q.QueryRowContext(ctx,
		"SELECT id, name, tokens_json, is_system, created_at, updated_at FROM theme_presets WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.TokensJSON, &isSystem, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		// Dangling preset references degrade to defaults rather than failing
		// the build.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan theme preset: %w", err)
	}
	p.IsSystem = isSystem != 0
	p.CreatedAt = fromUnixNano(created)
	p.UpdatedAt = fromUnixNano(updated)
	return &p, nil
}

func loadStylePreset(ctx context.Context, q querier, id string) (*model.ComponentStylePreset, error) {
	var p model.ComponentStylePreset
	var isSystem int
	var created, updated int64
	err := q.QueryRowContext(ctx,
		"SELECT id, name, styles_json, is_system, created_at, updated_at FROM component_style_presets WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.StylesJSON, &isSystem, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan component style preset: %w", err)
	}
	p.IsSystem = isSystem != 0
	p.CreatedAt = fromUnixNano(created)
	p.UpdatedAt = fromUnixNano(updated)
	return &p, nil
}

func loadAnalyticsProfile(ctx context.Context, q querier, id string) (*model.AnalyticsProfile, error) {
	var p model.AnalyticsProfile
	var created, updated int64
	err := q.QueryRowContext(ctx,
		"SELECT id, name, head_html, body_end_html, created_at, updated_at FROM analytics_profiles WHERE id = ?", id).
		Scan(&p.ID, &p.Name, &p.HeadHTML, &p.BodyEndHTML, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan analytics profile: %w", err)
	}
	p.CreatedAt = fromUnixNano(created)
	p.UpdatedAt = fromUnixNano(updated)
	return &p, nil
}
