// Package metrics defines the observability hooks of the pipeline and their
// Prometheus implementation. Components take a Recorder; the noop recorder
// keeps metrics optional.
package metrics

import "time"

// OutcomeLabel enumerates terminal outcome categories for counters.
type OutcomeLabel string

const (
	OutcomeSuccess OutcomeLabel = "success"
	OutcomeFailed  OutcomeLabel = "failed"
	OutcomeBusy    OutcomeLabel = "busy"
	OutcomeSkipped OutcomeLabel = "skipped"
)

// Recorder defines observability hooks for build, publish, and autopost
// metrics. All methods must be safe on the zero NoopRecorder so injection
// stays optional.
type Recorder interface {
	ObserveBuildDuration(d time.Duration)
	IncBuildOutcome(outcome OutcomeLabel)
	AddPagesRendered(n int)
	IncPublishOutcome(outcome OutcomeLabel)
	IncAutopostRun(outcome OutcomeLabel)
	ObserveSchedulerTick(d time.Duration)
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not
// configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveBuildDuration(time.Duration) {}
func (NoopRecorder) IncBuildOutcome(OutcomeLabel)       {}
func (NoopRecorder) AddPagesRendered(int)               {}
func (NoopRecorder) IncPublishOutcome(OutcomeLabel)     {}
func (NoopRecorder) IncAutopostRun(OutcomeLabel)        {}
func (NoopRecorder) ObserveSchedulerTick(time.Duration) {}
