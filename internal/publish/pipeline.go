package publish

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/eventstore"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
)

// PipelineStore is the slice of the store the publish pipeline mutates.
type PipelineStore interface {
	GetSite(ctx context.Context, id string) (model.Site, error)
	PublishSitePages(ctx context.Context, siteID string) error
	CreateBuild(ctx context.Context, siteID string) (model.Build, error)
	MarkBuildPublished(ctx context.Context, buildID string) error
	MarkBuildFailed(ctx context.Context, buildID, detail string) error
	UpdateSiteStatus(ctx context.Context, siteID string, status model.SiteStatus) error
}

// BuildEmitter broadcasts build lifecycle events to an external bus.
type BuildEmitter interface {
	EmitBuild(eventType string, build model.Build, detail string)
}

// Pipeline implements the promote -> build -> record cycle.
type Pipeline struct {
	store    PipelineStore
	trigger  RenderTrigger
	recorder metrics.Recorder
	events   eventstore.Store // optional audit log
	emitter  BuildEmitter     // optional external bus
}

// NewPipeline wires a publish pipeline. events may be nil.
func NewPipeline(st PipelineStore, trigger RenderTrigger, recorder metrics.Recorder, events eventstore.Store) *Pipeline {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Pipeline{store: st, trigger: trigger, recorder: recorder, events: events}
}

// SetBuildEmitter attaches an external event bus. May be nil.
func (p *Pipeline) SetBuildEmitter(em BuildEmitter) { p.emitter = em }

// Publish promotes every page's latest version to published, creates the next
// Build, renders the site, and records the outcome. On render failure the
// Build is marked failed and the site status is left unchanged.
func (p *Pipeline) Publish(ctx context.Context, siteID string) (model.Build, error) {
	if _, err := p.store.GetSite(ctx, siteID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return model.Build{}, sberrors.SiteNotFound(siteID)
		}
		return model.Build{}, sberrors.StoreError("get site", err)
	}

	if err := p.store.PublishSitePages(ctx, siteID); err != nil {
		return model.Build{}, sberrors.StoreError("publish site pages", err)
	}

	build, err := p.store.CreateBuild(ctx, siteID)
	if err != nil {
		return model.Build{}, sberrors.StoreError("create build", err)
	}
	p.appendEvent(ctx, build, eventstore.EventBuildQueued, nil)

	slog.Info("Publish started",
		logfields.SiteID(siteID),
		logfields.BuildID(build.ID),
		logfields.BuildNumber(build.BuildNumber))

	res, err := p.trigger.Render(ctx, siteID, build.ID)
	if err != nil {
		detail := err.Error()
		if markErr := p.store.MarkBuildFailed(ctx, build.ID, detail); markErr != nil {
			slog.Error("Failed to record build failure",
				logfields.BuildID(build.ID), logfields.Error(markErr))
		}
		p.appendEvent(ctx, build, eventstore.EventBuildFailed, map[string]string{"error": detail})
		if p.emitter != nil {
			p.emitter.EmitBuild("failed", build, detail)
		}
		p.recorder.IncPublishOutcome(metrics.OutcomeFailed)
		// Site status stays at its prior value on failure.
		return model.Build{}, sberrors.PublishFailed(siteID, err).WithContext("build_id", build.ID)
	}

	p.appendEvent(ctx, build, eventstore.EventBuildReady, map[string]string{
		"output_dir": res.OutputDir,
	})

	if err := p.store.MarkBuildPublished(ctx, build.ID); err != nil {
		return model.Build{}, sberrors.StoreError("mark build published", err)
	}
	if err := p.store.UpdateSiteStatus(ctx, siteID, model.SiteStatusPublished); err != nil {
		return model.Build{}, sberrors.StoreError("update site status", err)
	}
	p.appendEvent(ctx, build, eventstore.EventBuildPublished, map[string]string{
		"artifact_path": res.ArtifactPath,
	})
	p.recorder.IncPublishOutcome(metrics.OutcomeSuccess)

	slog.Info("Publish completed",
		logfields.SiteID(siteID),
		logfields.BuildID(build.ID),
		logfields.Pages(res.Pages))

	build.Status = model.BuildStatusPublished
	build.OutputDir = res.OutputDir
	build.ArtifactPath = res.ArtifactPath
	if p.emitter != nil {
		p.emitter.EmitBuild("published", build, "")
	}
	return build, nil
}

func (p *Pipeline) appendEvent(ctx context.Context, build model.Build, eventType string, extra map[string]string) {
	if p.events == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{
		"site_id":      build.SiteID,
		"build_number": build.BuildNumber,
	})
	if err := p.events.Append(ctx, build.ID, eventType, payload, extra); err != nil {
		slog.Warn("Failed to append build event",
			logfields.BuildID(build.ID), logfields.Error(err))
	}
}
