package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/autopost"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/metrics"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

// SchedulerStore lists the schedules due for a run.
type SchedulerStore interface {
	ListDueSchedules(ctx context.Context, now time.Time, limit int) ([]model.AutopostSchedule, error)
}

// Runner executes one autopost run.
type Runner interface {
	RunSchedule(ctx context.Context, scheduleID string) (autopost.RunResult, error)
}

// Scheduler polls for due autopost schedules on a fixed interval and runs
// them sequentially. One schedule's failure never aborts the tick.
type Scheduler struct {
	scheduler gocron.Scheduler
	job       gocron.Job
	store     SchedulerStore
	runner    Runner
	recorder  metrics.Recorder
	batchSize int
}

// NewScheduler creates a scheduler ticking every interval.
func NewScheduler(st SchedulerStore, runner Runner, recorder metrics.Recorder, interval time.Duration, batchSize int) (*Scheduler, error) {
	gs, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create gocron scheduler: %w", err)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	s := &Scheduler{
		scheduler: gs,
		store:     st,
		runner:    runner,
		recorder:  recorder,
		batchSize: batchSize,
	}
	s.job, err = gs.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(s.runTick),
		gocron.WithName("autopost-tick"),
	)
	if err != nil {
		return nil, fmt.Errorf("create autopost tick job: %w", err)
	}
	return s, nil
}

// Start begins ticking.
func (s *Scheduler) Start() {
	slog.Info("Starting autopost scheduler")
	s.scheduler.Start()
}

// Stop gracefully shuts the scheduler down.
func (s *Scheduler) Stop() error {
	slog.Info("Stopping autopost scheduler")
	return s.scheduler.Shutdown()
}

// SetInterval reschedules the tick job with a new interval.
func (s *Scheduler) SetInterval(interval time.Duration) error {
	job, err := s.scheduler.Update(
		s.job.ID(),
		gocron.DurationJob(interval),
		gocron.NewTask(s.runTick),
		gocron.WithName("autopost-tick"),
	)
	if err != nil {
		return fmt.Errorf("update autopost tick job: %w", err)
	}
	s.job = job
	slog.Info("Scheduler tick interval updated", slog.Duration("interval", interval))
	return nil
}

func (s *Scheduler) runTick() {
	s.Tick(context.Background())
}

// Tick runs every due schedule once, sequentially.
func (s *Scheduler) Tick(ctx context.Context) {
	start := time.Now()
	defer func() {
		s.recorder.ObserveSchedulerTick(time.Since(start))
	}()

	due, err := s.store.ListDueSchedules(ctx, start, s.batchSize)
	if err != nil {
		slog.Error("Failed to list due schedules", logfields.Error(err))
		return
	}
	if len(due) == 0 {
		return
	}
	slog.Debug("Scheduler tick", slog.Int("due", len(due)))

	for _, sched := range due {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.runner.RunSchedule(ctx, sched.ID); err != nil {
			// The run engine has already recorded the failure and advanced
			// the schedule; the loop just keeps going.
			slog.Error("Scheduled autopost run failed",
				logfields.ScheduleID(sched.ID),
				logfields.SiteID(sched.SiteID),
				logfields.Error(err))
		}
	}
}
