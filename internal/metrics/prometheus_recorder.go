package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once           sync.Once
	buildDuration  prom.Histogram
	buildOutcome   *prom.CounterVec
	pagesRendered  prom.Counter
	publishOutcome *prom.CounterVec
	autopostRuns   *prom.CounterVec
	schedulerTick  prom.Histogram
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "build_duration_seconds",
			Help:      "Total site build duration",
			Buckets:   prom.DefBuckets,
		})
		pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "build_outcomes_total",
			Help:      "Site build outcomes by final status",
		}, []string{"outcome"})
		pr.pagesRendered = prom.NewCounter(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "pages_rendered_total",
			Help:      "Total pages materialized to disk",
		})
		pr.publishOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "publish_outcomes_total",
			Help:      "Publish pipeline outcomes",
		}, []string{"outcome"})
		pr.autopostRuns = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "sitebuilder",
			Name:      "autopost_runs_total",
			Help:      "Autopost run outcomes",
		}, []string{"outcome"})
		pr.schedulerTick = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "sitebuilder",
			Name:      "scheduler_tick_duration_seconds",
			Help:      "Duration of scheduler poll ticks",
			Buckets:   prom.DefBuckets,
		})
		reg.MustRegister(pr.buildDuration, pr.buildOutcome, pr.pagesRendered,
			pr.publishOutcome, pr.autopostRuns, pr.schedulerTick)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome OutcomeLabel) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) AddPagesRendered(n int) {
	if p == nil || p.pagesRendered == nil {
		return
	}
	p.pagesRendered.Add(float64(n))
}

func (p *PrometheusRecorder) IncPublishOutcome(outcome OutcomeLabel) {
	if p == nil || p.publishOutcome == nil {
		return
	}
	p.publishOutcome.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncAutopostRun(outcome OutcomeLabel) {
	if p == nil || p.autopostRuns == nil {
		return
	}
	p.autopostRuns.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveSchedulerTick(d time.Duration) {
	if p == nil || p.schedulerTick == nil {
		return
	}
	p.schedulerTick.Observe(d.Seconds())
}

// HTTPHandler returns an http.Handler serving the registry's metrics.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
