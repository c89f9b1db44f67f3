// Package store is the repository layer over the relational source of truth.
// Components depend on the Store interface (or a narrow subset of it) rather
// than a shared client; the SQLite implementation lives in this package.
package store

import (
	"context"
	"errors"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a uniqueness invariant would be violated
// (domain name, (site, route) pair).
var ErrDuplicate = errors.New("record already exists")

// PageWithVersions pairs a page with its full version history, ordered by
// ascending version number.
type PageWithVersions struct {
	Page     model.Page
	Versions []model.PageVersion
}

// SiteBundle is everything the build orchestrator needs for one site, loaded
// in a single consistent read.
type SiteBundle struct {
	Site        model.Site
	Domain      model.Domain
	Theme       *model.ThemePreset
	Styles      *model.ComponentStylePreset
	Analytics   *model.AnalyticsProfile
	Assignments []model.ResolvedAssignment
	Pages       []PageWithVersions
}

// Store is the full persistence surface of the pipeline. All mutations are
// simple create/update operations; queries go no further than equality and
// prefix filters ordered by timestamp or version number.
type Store interface {
	// Domains and sites
	CreateDomain(ctx context.Context, d *model.Domain) error
	GetDomain(ctx context.Context, id string) (model.Domain, error)
	CreateSite(ctx context.Context, s *model.Site) error
	GetSite(ctx context.Context, id string) (model.Site, error)
	UpdateSiteStatus(ctx context.Context, siteID string, status model.SiteStatus) error
	LoadSiteBundle(ctx context.Context, siteID string) (*SiteBundle, error)

	// Presets, analytics, links
	CreateThemePreset(ctx context.Context, p *model.ThemePreset) error
	CreateComponentStylePreset(ctx context.Context, p *model.ComponentStylePreset) error
	CreateAnalyticsProfile(ctx context.Context, p *model.AnalyticsProfile) error
	CreateLinkLibrary(ctx context.Context, l *model.LinkLibrary) error
	CreateLinkAssignment(ctx context.Context, a *model.LinkAssignment) error
	ListResolvedAssignments(ctx context.Context, siteID string) ([]model.ResolvedAssignment, error)

	// Pages and versions
	CreatePage(ctx context.Context, p *model.Page) error
	GetPage(ctx context.Context, id string) (model.Page, error)
	GetPageByRoute(ctx context.Context, siteID, route string) (model.Page, error)
	ListPages(ctx context.Context, siteID string) ([]model.Page, error)
	// ListPagesByRoutePrefix returns pages whose route starts with the prefix,
	// newest first.
	ListPagesByRoutePrefix(ctx context.Context, siteID, prefix string) ([]model.Page, error)
	// CreatePageVersion assigns the next version number (prior max + 1) and
	// fills it into v.
	CreatePageVersion(ctx context.Context, v *model.PageVersion) error
	ListPageVersions(ctx context.Context, pageID string) ([]model.PageVersion, error)
	// PublishSitePages promotes every page's highest version to published
	// (clearing any other published flag) and marks the pages published.
	PublishSitePages(ctx context.Context, siteID string) error
	// SetPublishedVersion publishes exactly the named version of a page.
	SetPublishedVersion(ctx context.Context, pageID string, versionNumber int) error

	// Builds
	// CreateBuild allocates the site's next build number (1-based, monotonic)
	// and creates the record in queued state.
	CreateBuild(ctx context.Context, siteID string) (model.Build, error)
	GetBuild(ctx context.Context, id string) (model.Build, error)
	MarkBuildReady(ctx context.Context, buildID, outputDir, artifactPath string) error
	MarkBuildPublished(ctx context.Context, buildID string) error
	MarkBuildFailed(ctx context.Context, buildID, detail string) error
	ListBuilds(ctx context.Context, siteID string) ([]model.Build, error)

	// Autopost
	CreateSchedule(ctx context.Context, s *model.AutopostSchedule) error
	GetSchedule(ctx context.Context, id string) (model.AutopostSchedule, error)
	// ListDueSchedules returns enabled schedules with nextRunAt <= now,
	// oldest first, bounded by limit.
	ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]model.AutopostSchedule, error)
	UpdateScheduleRunTimes(ctx context.Context, scheduleID string, nextRunAt time.Time, lastRunAt time.Time) error
	CreateRun(ctx context.Context, r *model.AutopostRun) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus, resultJSON, errMsg, createdPageID string) error
	// ListRecentRuns returns the newest runs for a schedule, newest first.
	ListRecentRuns(ctx context.Context, scheduleID string, limit int) ([]model.AutopostRun, error)

	// Bulk operations
	CreateBulkOperation(ctx context.Context, op *model.BulkOperation) error
	GetBulkOperation(ctx context.Context, id string) (model.BulkOperation, error)
	MarkBulkOperationUndone(ctx context.Context, id string, at time.Time) error

	Close() error
}
