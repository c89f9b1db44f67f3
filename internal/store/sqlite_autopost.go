package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// CreateSchedule inserts an autopost schedule.
func (s *SQLiteStore) CreateSchedule(ctx context.Context, sched *model.AutopostSchedule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&sched.ID)
	ensureTime(&sched.CreatedAt)
	ensureTime(&sched.UpdatedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO autopost_schedules (id, site_id, section, cadence_type, cadence_json,
		 require_approval, is_enabled, next_run_at, last_run_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sched.ID, sched.SiteID, sched.Section, sched.CadenceType, sched.CadenceJSON,
		boolToInt(sched.RequireApproval), boolToInt(sched.IsEnabled),
		toUnixNano(sched.NextRunAt), toNullNano(sched.LastRunAt),
		toUnixNano(sched.CreatedAt), toUnixNano(sched.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

const scheduleColumns = `id, site_id, section, cadence_type, cadence_json, require_approval,
	is_enabled, next_run_at, last_run_at, created_at, updated_at`

func scanSchedule(scan func(dest ...any) error) (model.AutopostSchedule, error) {
	var sched model.AutopostSchedule
	var approval, enabled int
	var nextRun, created, updated int64
	var lastRun sql.NullInt64
	err := scan(&sched.ID, &sched.SiteID, &sched.Section, &sched.CadenceType, &sched.CadenceJSON,
		&approval, &enabled, &nextRun, &lastRun, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AutopostSchedule{}, ErrNotFound
	}
	if err != nil {
		return model.AutopostSchedule{}, fmt.Errorf("scan schedule: %w", err)
	}
	sched.RequireApproval = approval != 0
	sched.IsEnabled = enabled != 0
	sched.NextRunAt = fromUnixNano(nextRun)
	sched.LastRunAt = fromNullNano(lastRun)
	sched.CreatedAt = fromUnixNano(created)
	sched.UpdatedAt = fromUnixNano(updated)
	return sched, nil
}

// GetSchedule loads a schedule by id.
func (s *SQLiteStore) GetSchedule(ctx context.Context, id string) (model.AutopostSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx,
		"SELECT "+scheduleColumns+" FROM autopost_schedules WHERE id = ?", id)
	return scanSchedule(row.Scan)
}

// ListDueSchedules returns enabled schedules whose nextRunAt has passed,
// oldest first, bounded by limit.
func (s *SQLiteStore) ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]model.AutopostSchedule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+scheduleColumns+` FROM autopost_schedules
		 WHERE is_enabled = 1 AND next_run_at <= ? ORDER BY next_run_at LIMIT ?`,
		toUnixNano(now), limit)
	if err != nil {
		return nil, fmt.Errorf("query due schedules: %w", err)
	}
	defer rows.Close()

	var due []model.AutopostSchedule
	for rows.Next() {
		sched, err := scanSchedule(rows.Scan)
		if err != nil {
			return nil, err
		}
		due = append(due, sched)
	}
	return due, rows.Err()
}

// UpdateScheduleRunTimes persists the recomputed nextRunAt and lastRunAt
// after a run; nextRunAt is never left stale.
func (s *SQLiteStore) UpdateScheduleRunTimes(ctx context.Context, scheduleID string, nextRunAt, lastRunAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE autopost_schedules SET next_run_at = ?, last_run_at = ?, updated_at = ? WHERE id = ?",
		toUnixNano(nextRunAt), toUnixNano(lastRunAt), nowNano(), scheduleID)
	if err != nil {
		return fmt.Errorf("update schedule run times: %w", err)
	}
	return requireRow(res, scheduleID)
}

// CreateRun inserts a run row in running state.
func (s *SQLiteStore) CreateRun(ctx context.Context, r *model.AutopostRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&r.ID)
	ensureTime(&r.StartedAt)
	if r.Status == "" {
		r.Status = model.RunStatusRunning
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO autopost_runs (id, schedule_id, status, started_at) VALUES (?, ?, ?, ?)",
		r.ID, r.ScheduleID, r.Status, toUnixNano(r.StartedAt))
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// FinishRun records the terminal state of a run.
func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, status model.RunStatus, resultJSON, errMsg, createdPageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE autopost_runs SET status = ?, result_json = ?, error = ?, created_page_id = ?, finished_at = ? WHERE id = ?",
		status, resultJSON, errMsg, createdPageID, nowNano(), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return requireRow(res, runID)
}

// ListRecentRuns returns a schedule's newest runs first.
func (s *SQLiteStore) ListRecentRuns(ctx context.Context, scheduleID string, limit int) ([]model.AutopostRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, schedule_id, status, result_json, error, created_page_id, started_at, finished_at
		 FROM autopost_runs WHERE schedule_id = ? ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		scheduleID, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []model.AutopostRun
	for rows.Next() {
		var r model.AutopostRun
		var started int64
		var finished sql.NullInt64
		if err := rows.Scan(&r.ID, &r.ScheduleID, &r.Status, &r.ResultJSON, &r.Error,
			&r.CreatedPageID, &started, &finished); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.StartedAt = fromUnixNano(started)
		r.FinishedAt = fromNullNano(finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
