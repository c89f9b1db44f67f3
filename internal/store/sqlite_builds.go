package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// CreateBuild allocates the next build number for the site (1-based,
// strictly increasing) and inserts the record in queued state.
func (s *SQLiteStore) CreateBuild(ctx context.Context, siteID string) (model.Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Build{}, fmt.Errorf("begin build tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM sites WHERE id = ?", siteID).Scan(&exists); err != nil {
		return model.Build{}, fmt.Errorf("check site: %w", err)
	}
	if exists == 0 {
		return model.Build{}, fmt.Errorf("site %s: %w", siteID, ErrNotFound)
	}

	var maxNumber sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		"SELECT MAX(build_number) FROM builds WHERE site_id = ?", siteID).Scan(&maxNumber); err != nil {
		return model.Build{}, fmt.Errorf("query max build number: %w", err)
	}

	b := model.Build{
		ID:          uuid.NewString(),
		SiteID:      siteID,
		BuildNumber: int(maxNumber.Int64) + 1,
		Status:      model.BuildStatusQueued,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO builds (id, site_id, build_number, status, created_at) VALUES (?, ?, ?, ?, ?)",
		b.ID, b.SiteID, b.BuildNumber, b.Status, toUnixNano(b.CreatedAt)); err != nil {
		return model.Build{}, fmt.Errorf("insert build: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.Build{}, fmt.Errorf("commit build: %w", err)
	}
	return b, nil
}

const buildColumns = "id, site_id, build_number, status, output_dir, artifact_path, detail, created_at, started_at, finished_at"

func scanBuild(scan func(dest ...any) error) (model.Build, error) {
	var b model.Build
	var created int64
	var started, finished sql.NullInt64
	err := scan(&b.ID, &b.SiteID, &b.BuildNumber, &b.Status, &b.OutputDir, &b.ArtifactPath,
		&b.Detail, &created, &started, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Build{}, ErrNotFound
	}
	if err != nil {
		return model.Build{}, fmt.Errorf("scan build: %w", err)
	}
	b.CreatedAt = fromUnixNano(created)
	b.StartedAt = fromNullNano(started)
	b.FinishedAt = fromNullNano(finished)
	return b, nil
}

// GetBuild loads a build by id.
func (s *SQLiteStore) GetBuild(ctx context.Context, id string) (model.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, "SELECT "+buildColumns+" FROM builds WHERE id = ?", id)
	return scanBuild(row.Scan)
}

// ListBuilds returns a site's builds by ascending build number.
func (s *SQLiteStore) ListBuilds(ctx context.Context, siteID string) ([]model.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+buildColumns+" FROM builds WHERE site_id = ? ORDER BY build_number", siteID)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []model.Build
	for rows.Next() {
		b, err := scanBuild(rows.Scan)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	return builds, rows.Err()
}

// MarkBuildReady records a successful render with its output locations.
func (s *SQLiteStore) MarkBuildReady(ctx context.Context, buildID, outputDir, artifactPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := nowNano()
	res, err := s.db.ExecContext(ctx,
		`UPDATE builds SET status = ?, output_dir = ?, artifact_path = ?,
		 started_at = COALESCE(started_at, ?), finished_at = ? WHERE id = ?`,
		model.BuildStatusReady, outputDir, artifactPath, now, now, buildID)
	if err != nil {
		return fmt.Errorf("mark build ready: %w", err)
	}
	return requireRow(res, buildID)
}

// MarkBuildPublished records a completed publish.
func (s *SQLiteStore) MarkBuildPublished(ctx context.Context, buildID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE builds SET status = ?, finished_at = ? WHERE id = ?",
		model.BuildStatusPublished, nowNano(), buildID)
	if err != nil {
		return fmt.Errorf("mark build published: %w", err)
	}
	return requireRow(res, buildID)
}

// MarkBuildFailed records a failed build with captured diagnostic text.
func (s *SQLiteStore) MarkBuildFailed(ctx context.Context, buildID, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE builds SET status = ?, detail = ?, finished_at = ? WHERE id = ?",
		model.BuildStatusFailed, detail, nowNano(), buildID)
	if err != nil {
		return fmt.Errorf("mark build failed: %w", err)
	}
	return requireRow(res, buildID)
}
