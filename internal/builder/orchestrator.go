package builder

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	sberrors "git.home.luguber.info/inful/sitebuilder/internal/errors"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
	"git.home.luguber.info/inful/sitebuilder/internal/render"
	"git.home.luguber.info/inful/sitebuilder/internal/store"
	"git.home.luguber.info/inful/sitebuilder/internal/theme"
)

// BundleLoader is the slice of the store the orchestrator reads from.
type BundleLoader interface {
	LoadSiteBundle(ctx context.Context, siteID string) (*store.SiteBundle, error)
	MarkBuildReady(ctx context.Context, buildID, outputDir, artifactPath string) error
}

// Result reports a completed site render.
type Result struct {
	OutputDir    string
	ArtifactPath string
	Pages        int
}

// Orchestrator drives a full site build: one consistent read, CSS compiled
// once, slot map computed once, every page materialized, then robots.txt and
// sitemap.xml. Builds are serialized per site: a second request while one is
// in flight is rejected with a busy error.
type Orchestrator struct {
	store      BundleLoader
	outputRoot string
	recorder   metrics.Recorder

	mu       sync.Mutex
	inFlight map[string]bool
}

// NewOrchestrator creates an orchestrator writing under outputRoot.
func NewOrchestrator(st BundleLoader, outputRoot string, recorder metrics.Recorder) *Orchestrator {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Orchestrator{
		store:      st,
		outputRoot: outputRoot,
		recorder:   recorder,
		inFlight:   make(map[string]bool),
	}
}

func (o *Orchestrator) tryAcquire(siteID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inFlight[siteID] {
		return false
	}
	o.inFlight[siteID] = true
	return true
}

func (o *Orchestrator) release(siteID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.inFlight, siteID)
}

// BuildSite renders the whole site identified by siteID. When buildID is
// non-empty the Build record is marked ready on success. A filesystem error
// aborts the build; output already written stays on disk.
func (o *Orchestrator) BuildSite(ctx context.Context, siteID, buildID string) (Result, error) {
	if !o.tryAcquire(siteID) {
		o.recorder.IncBuildOutcome(metrics.OutcomeBusy)
		return Result{}, sberrors.BuildBusy(siteID)
	}
	defer o.release(siteID)

	start := time.Now()
	res, err := o.buildLocked(ctx, siteID, buildID)
	o.recorder.ObserveBuildDuration(time.Since(start))
	if err != nil {
		o.recorder.IncBuildOutcome(metrics.OutcomeFailed)
		return Result{}, err
	}
	o.recorder.IncBuildOutcome(metrics.OutcomeSuccess)
	o.recorder.AddPagesRendered(res.Pages)

	slog.Info("Site build completed",
		logfields.SiteID(siteID),
		logfields.BuildID(buildID),
		logfields.Pages(res.Pages),
		logfields.DurationMS(float64(time.Since(start).Milliseconds())))
	return res, nil
}

func (o *Orchestrator) buildLocked(ctx context.Context, siteID, buildID string) (Result, error) {
	bundle, err := o.store.LoadSiteBundle(ctx, siteID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return Result{}, sberrors.SiteNotFound(siteID)
		}
		return Result{}, sberrors.StoreError("load site bundle", err)
	}

	var themeDoc model.ThemeDoc
	if bundle.Theme != nil {
		themeDoc = model.DecodeTheme(bundle.Theme.TokensJSON)
	} else {
		themeDoc = model.DecodeTheme("")
	}
	var styleDoc model.ComponentStyleDoc
	if bundle.Styles != nil {
		styleDoc = model.DecodeComponentStyle(bundle.Styles.StylesJSON)
	}

	css := theme.Compile(themeDoc, styleDoc)
	slots := render.BuildSlotMap(bundle.Assignments)

	outDir := filepath.Join(o.outputRoot, bundle.Domain.Name)
	cssPath := filepath.Join(outDir, filepath.FromSlash(render.StylesheetPath))
	if err := os.MkdirAll(filepath.Dir(cssPath), 0o750); err != nil {
		return Result{}, sberrors.OutputWriteError(cssPath, err)
	}
	if err := os.WriteFile(cssPath, []byte(css), 0o644); err != nil {
		return Result{}, sberrors.OutputWriteError(cssPath, err)
	}

	var routes []string
	for _, pw := range bundle.Pages {
		rendered, err := materializePage(outDir, pw, slots, bundle.Analytics)
		if err != nil {
			return Result{}, sberrors.RenderFailed(siteID, err).WithContext("route", pw.Page.Route)
		}
		if rendered {
			routes = append(routes, pw.Page.Route)
			slog.Debug("Page materialized", logfields.SiteID(siteID), logfields.Route(pw.Page.Route))
		}
	}

	if err := os.WriteFile(filepath.Join(outDir, "robots.txt"), []byte(robotsTxt(bundle.Domain.Name)), 0o644); err != nil {
		return Result{}, sberrors.OutputWriteError("robots.txt", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "sitemap.xml"), []byte(sitemapXML(bundle.Domain.Name, routes)), 0o644); err != nil {
		return Result{}, sberrors.OutputWriteError("sitemap.xml", err)
	}

	if buildID != "" {
		if err := o.store.MarkBuildReady(ctx, buildID, outDir, outDir); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return Result{}, sberrors.BuildNotFound(buildID)
			}
			return Result{}, sberrors.StoreError("mark build ready", err)
		}
	}
	return Result{OutputDir: outDir, ArtifactPath: outDir, Pages: len(routes)}, nil
}
