package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNoopRecorderSafe(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome(OutcomeSuccess)
	r.AddPagesRendered(3)
	r.IncPublishOutcome(OutcomeFailed)
	r.IncAutopostRun(OutcomeSkipped)
	r.ObserveSchedulerTick(time.Millisecond)
}

func TestNilPrometheusRecorderSafe(t *testing.T) {
	var p *PrometheusRecorder
	p.ObserveBuildDuration(time.Second)
	p.IncBuildOutcome(OutcomeSuccess)
	p.AddPagesRendered(1)
}

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prom.NewRegistry()
	p := NewPrometheusRecorder(reg)

	p.IncBuildOutcome(OutcomeSuccess)
	p.IncBuildOutcome(OutcomeSuccess)
	p.IncBuildOutcome(OutcomeFailed)
	p.AddPagesRendered(5)
	p.IncAutopostRun(OutcomeSuccess)

	if got := testutil.ToFloat64(p.buildOutcome.WithLabelValues("success")); got != 2 {
		t.Errorf("success outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(p.buildOutcome.WithLabelValues("failed")); got != 1 {
		t.Errorf("failed outcomes = %v, want 1", got)
	}
	if got := testutil.ToFloat64(p.pagesRendered); got != 5 {
		t.Errorf("pages rendered = %v, want 5", got)
	}
	if got := testutil.ToFloat64(p.autopostRuns.WithLabelValues("success")); got != 1 {
		t.Errorf("autopost runs = %v, want 1", got)
	}
}
