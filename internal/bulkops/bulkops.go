// Package bulkops applies site-wide literal find/replace over page content,
// one new version per touched page, with a single-step undo.
package bulkops

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

// Store is the slice of the store bulk operations touch.
type Store interface {
	GetSite(ctx context.Context, id string) (model.Site, error)
	ListPages(ctx context.Context, siteID string) ([]model.Page, error)
	ListPageVersions(ctx context.Context, pageID string) ([]model.PageVersion, error)
	CreatePageVersion(ctx context.Context, v *model.PageVersion) error
	SetPublishedVersion(ctx context.Context, pageID string, versionNumber int) error
	CreateBulkOperation(ctx context.Context, op *model.BulkOperation) error
	GetBulkOperation(ctx context.Context, id string) (model.BulkOperation, error)
	MarkBulkOperationUndone(ctx context.Context, id string, at time.Time) error
}

// Service runs bulk operations.
type Service struct {
	store Store
}

// NewService creates a bulk operation service.
func NewService(st Store) *Service {
	return &Service{store: st}
}

// FindReplace replaces every occurrence of find with replace in the latest
// version of each page, creating a new version per touched page. Pages whose
// latest version was published get the replacement published immediately; the
// recorded before-state re-promotes those versions on undo.
func (s *Service) FindReplace(ctx context.Context, siteID, find, replace string) (model.BulkOperation, error) {
	if find == "" {
		return model.BulkOperation{}, sberrors.ValidationFailed("find", "must not be empty")
	}
	if _, err := s.store.GetSite(ctx, siteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.BulkOperation{}, sberrors.SiteNotFound(siteID)
		}
		return model.BulkOperation{}, sberrors.StoreError("get site", err)
	}

	pages, err := s.store.ListPages(ctx, siteID)
	if err != nil {
		return model.BulkOperation{}, sberrors.StoreError("list pages", err)
	}

	before := make(map[string]int)
	touched := 0
	for _, page := range pages {
		versions, err := s.store.ListPageVersions(ctx, page.ID)
		if err != nil {
			return model.BulkOperation{}, sberrors.StoreError("list page versions", err)
		}
		if len(versions) == 0 {
			continue
		}
		latest := versions[len(versions)-1]
		if !strings.Contains(latest.ContentJSON, find) && !strings.Contains(latest.SEOJSON, find) {
			continue
		}

		newContent := strings.ReplaceAll(latest.ContentJSON, find, replace)
		newSEO := strings.ReplaceAll(latest.SEOJSON, find, replace)
		// A replacement that breaks the JSON structure would poison every
		// later build of this page; skip it instead.
		if _, err := model.DecodeContent(newContent); err != nil {
			slog.Warn("Find/replace skipped page, result is not valid content",
				logfields.PageID(page.ID), logfields.Route(page.Route))
			continue
		}
		if newSEO != "" && !json.Valid([]byte(newSEO)) {
			slog.Warn("Find/replace skipped page, result is not valid SEO metadata",
				logfields.PageID(page.ID), logfields.Route(page.Route))
			continue
		}

		version := &model.PageVersion{
			PageID:      page.ID,
			ContentJSON: newContent,
			SEOJSON:     newSEO,
			SchemaJSON:  latest.SchemaJSON,
			IsPublished: latest.IsPublished,
		}
		if err := s.store.CreatePageVersion(ctx, version); err != nil {
			return model.BulkOperation{}, sberrors.StoreError("create replacement version", err)
		}
		if latest.IsPublished {
			before[page.ID] = latest.VersionNumber
		}
		touched++
	}

	beforeJSON, err := json.Marshal(before)
	if err != nil {
		return model.BulkOperation{}, fmt.Errorf("encode before-state: %w", err)
	}
	op := model.BulkOperation{
		SiteID:       siteID,
		Find:         find,
		Replace:      replace,
		BeforeJSON:   string(beforeJSON),
		PagesTouched: touched,
	}
	if err := s.store.CreateBulkOperation(ctx, &op); err != nil {
		return model.BulkOperation{}, sberrors.StoreError("record bulk operation", err)
	}

	slog.Info("Bulk find/replace applied",
		logfields.SiteID(siteID),
		logfields.Pages(touched))
	return op, nil
}

// Undo re-promotes the versions recorded as published before the operation.
// An operation can be undone once.
func (s *Service) Undo(ctx context.Context, opID string) error {
	op, err := s.store.GetBulkOperation(ctx, opID)
	if err != nil {
		return err
	}
	if op.UndoneAt != nil {
		return sberrors.ValidationFailed("operation", "already undone")
	}

	var before map[string]int
	if err := json.Unmarshal([]byte(op.BeforeJSON), &before); err != nil {
		return fmt.Errorf("decode before-state: %w", err)
	}
	for pageID, versionNumber := range before {
		if err := s.store.SetPublishedVersion(ctx, pageID, versionNumber); err != nil {
			return sberrors.StoreError("restore published version", err)
		}
	}
	if err := s.store.MarkBulkOperationUndone(ctx, opID, time.Now()); err != nil {
		return sberrors.StoreError("mark operation undone", err)
	}

	slog.Info("Bulk find/replace undone",
		logfields.SiteID(op.SiteID),
		slog.Int("restored", len(before)))
	return nil
}
