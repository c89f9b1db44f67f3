package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// CreateBulkOperation records a find/replace mutation's before-state.
func (s *SQLiteStore) CreateBulkOperation(ctx context.Context, op *model.BulkOperation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ensureID(&op.ID)
	ensureTime(&op.CreatedAt)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO bulk_operations (id, site_id, find_text, replace_text, before_json, pages_touched, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.SiteID, op.Find, op.Replace, op.BeforeJSON, op.PagesTouched, toUnixNano(op.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert bulk operation: %w", err)
	}
	return nil
}

// GetBulkOperation loads a bulk operation by id.
func (s *SQLiteStore) GetBulkOperation(ctx context.Context, id string) (model.BulkOperation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var op model.BulkOperation
	var created int64
	var undone sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, site_id, find_text, replace_text, before_json, pages_touched, undone_at, created_at
		 FROM bulk_operations WHERE id = ?`, id).
		Scan(&op.ID, &op.SiteID, &op.Find, &op.Replace, &op.BeforeJSON, &op.PagesTouched, &undone, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BulkOperation{}, ErrNotFound
	}
	if err != nil {
		return model.BulkOperation{}, fmt.Errorf("scan bulk operation: %w", err)
	}
	op.UndoneAt = fromNullNano(undone)
	op.CreatedAt = fromUnixNano(created)
	return op, nil
}

// MarkBulkOperationUndone stamps the single-step undo.
func (s *SQLiteStore) MarkBulkOperationUndone(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"UPDATE bulk_operations SET undone_at = ? WHERE id = ?", toUnixNano(at), id)
	if err != nil {
		return fmt.Errorf("mark bulk operation undone: %w", err)
	}
	return requireRow(res, id)
}
