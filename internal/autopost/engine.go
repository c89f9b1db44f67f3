package autopost

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/retry"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

// maxIndexEntries caps how many posts a section index lists.
const maxIndexEntries = 30

// routeProbeLimit bounds suffix probing for a colliding post route.
const routeProbeLimit = 50

// EngineStore is the slice of the store the run engine touches.
type EngineStore interface {
	GetSchedule(ctx context.Context, id string) (model.AutopostSchedule, error)
	UpdateScheduleRunTimes(ctx context.Context, scheduleID string, nextRunAt time.Time, lastRunAt time.Time) error
	CreateRun(ctx context.Context, r *model.AutopostRun) error
	FinishRun(ctx context.Context, runID string, status model.RunStatus, resultJSON, errMsg, createdPageID string) error
	ListRecentRuns(ctx context.Context, scheduleID string, limit int) ([]model.AutopostRun, error)

	GetPageByRoute(ctx context.Context, siteID, route string) (model.Page, error)
	CreatePage(ctx context.Context, p *model.Page) error
	CreatePageVersion(ctx context.Context, v *model.PageVersion) error
	ListPagesByRoutePrefix(ctx context.Context, siteID, prefix string) ([]model.Page, error)
	ListPageVersions(ctx context.Context, pageID string) ([]model.PageVersion, error)
}

// Publisher is the publish pipeline as the engine sees it.
type Publisher interface {
	Publish(ctx context.Context, siteID string) (model.Build, error)
}

// RunResult is the payload persisted on a successful run.
type RunResult struct {
	Declined    bool   `json:"declined,omitempty"`
	PostRoute   string `json:"post_route,omitempty"`
	PostPageID  string `json:"post_page_id,omitempty"`
	IndexRoute  string `json:"index_route,omitempty"`
	Published   bool   `json:"published,omitempty"`
	BuildID     string `json:"build_id,omitempty"`
	BuildNumber int    `json:"build_number,omitempty"`
}

// Engine executes one autopost run per invocation: generate a post, refresh
// the section index, advance the schedule, optionally cascade a publish.
type Engine struct {
	store     EngineStore
	publisher Publisher
	recorder  metrics.Recorder
	events    eventstore.Store // optional audit log
	backoff   retry.Policy
	now       func() time.Time
}

// NewEngine wires a run engine. events may be nil.
func NewEngine(st EngineStore, pub Publisher, rec metrics.Recorder, events eventstore.Store) *Engine {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &Engine{
		store:     st,
		publisher: pub,
		recorder:  rec,
		events:    events,
		backoff:   retry.DefaultPolicy(),
		now:       time.Now,
	}
}

// RunSchedule runs the schedule once. A disabled schedule declines without a
// run record. Any failure after the run record exists marks it failed and
// still advances nextRunAt with backoff, so a failing schedule cannot spin
// the scheduler hot.
func (e *Engine) RunSchedule(ctx context.Context, scheduleID string) (RunResult, error) {
	sched, err := e.store.GetSchedule(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return RunResult{}, sberrors.ScheduleNotFound(scheduleID)
		}
		return RunResult{}, sberrors.StoreError("get schedule", err)
	}

	if !sched.IsEnabled {
		slog.Info("Autopost run declined, schedule disabled",
			logfields.ScheduleID(sched.ID), logfields.SiteID(sched.SiteID))
		e.recorder.IncAutopostRun(metrics.OutcomeSkipped)
		return RunResult{Declined: true}, nil
	}

	now := e.now()
	run := &model.AutopostRun{ScheduleID: sched.ID, StartedAt: now}
	if err := e.store.CreateRun(ctx, run); err != nil {
		return RunResult{}, sberrors.StoreError("create run", err)
	}
	e.appendRunEvent(ctx, run.ID, sched, eventstore.EventRunStarted, nil)

	result, createdPageID, err := e.execute(ctx, sched, now)
	if err != nil {
		e.failRun(ctx, sched, run.ID, createdPageID, now, err)
		return RunResult{}, sberrors.AutopostFailed(sched.ID, err)
	}

	payload, err := json.Marshal(result)
	if err != nil {
		e.failRun(ctx, sched, run.ID, createdPageID, now, err)
		return RunResult{}, sberrors.AutopostFailed(sched.ID, err)
	}
	if err := e.store.FinishRun(ctx, run.ID, model.RunStatusSuccess, string(payload), "", createdPageID); err != nil {
		return RunResult{}, sberrors.StoreError("finish run", err)
	}
	e.appendRunEvent(ctx, run.ID, sched, eventstore.EventRunSucceeded, map[string]string{
		"post_route": result.PostRoute,
	})
	e.recorder.IncAutopostRun(metrics.OutcomeSuccess)

	slog.Info("Autopost run completed",
		logfields.ScheduleID(sched.ID),
		logfields.RunID(run.ID),
		logfields.Route(result.PostRoute),
		slog.Bool("published", result.Published))
	return result, nil
}

// execute performs the content steps. The returned page id is set as soon as
// the post exists so a later failure still records what was created.
func (e *Engine) execute(ctx context.Context, sched model.AutopostSchedule, now time.Time) (RunResult, string, error) {
	route, err := e.uniquePostRoute(ctx, sched.SiteID, sched.Section, now)
	if err != nil {
		return RunResult{}, "", err
	}

	contentJSON, seoJSON, err := postContent(sched.Section, now)
	if err != nil {
		return RunResult{}, "", err
	}

	status := model.PageStatusPublished
	if sched.RequireApproval {
		status = model.PageStatusDraft
	}
	page := &model.Page{SiteID: sched.SiteID, Route: route, PageType: "post", Status: status}
	if err := e.store.CreatePage(ctx, page); err != nil {
		return RunResult{}, "", fmt.Errorf("create post page: %w", err)
	}
	version := &model.PageVersion{
		PageID:      page.ID,
		ContentJSON: contentJSON,
		SEOJSON:     seoJSON,
		IsPublished: !sched.RequireApproval,
	}
	if err := e.store.CreatePageVersion(ctx, version); err != nil {
		return RunResult{}, page.ID, fmt.Errorf("create post version: %w", err)
	}

	indexRoute := "/" + string(sched.Section)
	indexPage, err := e.ensureIndexPage(ctx, sched, indexRoute)
	if err != nil {
		return RunResult{}, page.ID, err
	}
	if err := e.refreshIndex(ctx, sched, indexPage); err != nil {
		return RunResult{}, page.ID, err
	}

	next := NextRun(now, sched.CadenceType, model.DecodeCadence(sched.CadenceJSON))
	if err := e.store.UpdateScheduleRunTimes(ctx, sched.ID, next, now); err != nil {
		return RunResult{}, page.ID, fmt.Errorf("advance schedule: %w", err)
	}

	result := RunResult{PostRoute: route, PostPageID: page.ID, IndexRoute: indexRoute}
	if !sched.RequireApproval {
		build, err := e.publisher.Publish(ctx, sched.SiteID)
		if err != nil {
			return result, page.ID, fmt.Errorf("cascade publish: %w", err)
		}
		result.Published = true
		result.BuildID = build.ID
		result.BuildNumber = build.BuildNumber
	}
	return result, page.ID, nil
}

// uniquePostRoute probes /<section>/<section>-<millis>, then -2, -3... so
// two runs in the same millisecond still get distinct routes.
func (e *Engine) uniquePostRoute(ctx context.Context, siteID string, section model.Section, now time.Time) (string, error) {
	base := fmt.Sprintf("/%s/%s-%d", section, section, now.UnixMilli())
	candidate := base
	for i := 2; i <= routeProbeLimit+1; i++ {
		_, err := e.store.GetPageByRoute(ctx, siteID, candidate)
		if errors.Is(err, store.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("probe post route: %w", err)
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
	return "", fmt.Errorf("no free post route near %s", base)
}

// ensureIndexPage gets or creates the section index page, keyed by
// (site, route). Creation seeds an empty listing as version 1.
func (e *Engine) ensureIndexPage(ctx context.Context, sched model.AutopostSchedule, route string) (model.Page, error) {
	page, err := e.store.GetPageByRoute(ctx, sched.SiteID, route)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return model.Page{}, fmt.Errorf("look up index page: %w", err)
	}

	contentJSON, seoJSON, err := indexContent(sched.Section, nil)
	if err != nil {
		return model.Page{}, err
	}
	created := model.Page{SiteID: sched.SiteID, Route: route, PageType: "section_index", Status: model.PageStatusDraft}
	if err := e.store.CreatePage(ctx, &created); err != nil {
		return model.Page{}, fmt.Errorf("create index page: %w", err)
	}
	seed := &model.PageVersion{PageID: created.ID, ContentJSON: contentJSON, SEOJSON: seoJSON}
	if err := e.store.CreatePageVersion(ctx, seed); err != nil {
		return model.Page{}, fmt.Errorf("seed index page: %w", err)
	}
	return created, nil
}

// refreshIndex writes a new index version listing the newest posts in the
// section, capped at maxIndexEntries. Labels are slugs of the post titles,
// falling back to the route.
func (e *Engine) refreshIndex(ctx context.Context, sched model.AutopostSchedule, indexPage model.Page) error {
	prefix := "/" + string(sched.Section) + "/"
	posts, err := e.store.ListPagesByRoutePrefix(ctx, sched.SiteID, prefix)
	if err != nil {
		return fmt.Errorf("list section posts: %w", err)
	}
	if len(posts) > maxIndexEntries {
		posts = posts[:maxIndexEntries]
	}

	entries := make([]indexEntry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, indexEntry{Label: e.postLabel(ctx, post), Href: post.Route})
	}

	contentJSON, seoJSON, err := indexContent(sched.Section, entries)
	if err != nil {
		return err
	}
	version := &model.PageVersion{
		PageID:      indexPage.ID,
		ContentJSON: contentJSON,
		SEOJSON:     seoJSON,
		IsPublished: !sched.RequireApproval,
	}
	if err := e.store.CreatePageVersion(ctx, version); err != nil {
		return fmt.Errorf("create index version: %w", err)
	}
	return nil
}

// postLabel slugs the newest version's SEO title; a post with no usable
// title is labeled by its route.
func (e *Engine) postLabel(ctx context.Context, post model.Page) string {
	versions, err := e.store.ListPageVersions(ctx, post.ID)
	if err != nil || len(versions) == 0 {
		return post.Route
	}
	seo := model.DecodeSEO(versions[len(versions)-1].SEOJSON)
	if slug := Slugify(seo.Title); slug != "" {
		return slug
	}
	return post.Route
}

// failRun finishes the run as failed and advances nextRunAt by the backoff
// for the schedule's consecutive-failure streak.
func (e *Engine) failRun(ctx context.Context, sched model.AutopostSchedule, runID, createdPageID string, now time.Time, cause error) {
	streak := e.failureStreak(ctx, sched.ID) + 1
	if err := e.store.FinishRun(ctx, runID, model.RunStatusFailed, "", cause.Error(), createdPageID); err != nil {
		slog.Error("Failed to record run failure",
			logfields.RunID(runID), logfields.Error(err))
	}
	next := now.Add(e.backoff.Delay(streak))
	if err := e.store.UpdateScheduleRunTimes(ctx, sched.ID, next, now); err != nil {
		slog.Error("Failed to advance failing schedule",
			logfields.ScheduleID(sched.ID), logfields.Error(err))
	}
	e.appendRunEvent(ctx, runID, sched, eventstore.EventRunFailed, map[string]string{
		"error": cause.Error(),
	})
	e.recorder.IncAutopostRun(metrics.OutcomeFailed)

	slog.Error("Autopost run failed",
		logfields.ScheduleID(sched.ID),
		logfields.RunID(runID),
		slog.Int("failure_streak", streak),
		slog.Time("next_run_at", next),
		logfields.Error(cause))
}

// failureStreak counts consecutive failed runs before the current one.
func (e *Engine) failureStreak(ctx context.Context, scheduleID string) int {
	runs, err := e.store.ListRecentRuns(ctx, scheduleID, e.backoff.MaxRetries+1)
	if err != nil {
		return 0
	}
	streak := 0
	for _, r := range runs {
		if r.Status == model.RunStatusRunning {
			continue
		}
		if r.Status != model.RunStatusFailed {
			break
		}
		streak++
	}
	return streak
}

func (e *Engine) appendRunEvent(ctx context.Context, runID string, sched model.AutopostSchedule, eventType string, extra map[string]string) {
	if e.events == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"schedule_id": sched.ID,
		"site_id":     sched.SiteID,
		"section":     sched.Section,
	})
	if err := e.events.Append(ctx, runID, eventType, payload, extra); err != nil {
		slog.Warn("Failed to append run event",
			logfields.RunID(runID), logfields.Error(err))
	}
}
