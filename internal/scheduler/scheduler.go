// Package scheduler runs the forecasting cycles on cron schedules.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"stockwise/internal/config"
	apperrors "stockwise/internal/errors"
	"stockwise/internal/logger"
	"stockwise/internal/services"
)

// Job names, also used as log and metric labels.
const (
	JobSnapshot    = "snapshot"
	JobForecast    = "forecast"
	JobAnomaly     = "anomaly"
	JobMaintenance = "maintenance"
)

// Scheduler invokes a CycleRunner from cron entries. Overlapping runs of one
// job are skipped both here and by the runner's lock.
type Scheduler struct {
	cron    *cron.Cron
	runner  services.CycleRunner
	log     *zap.SugaredLogger
	now     func() time.Time
	entries map[string]cron.EntryID

	mu  sync.Mutex
	ctx context.Context
}

// New registers the four cycle jobs. An invalid cron expression is an error.
func New(runner services.CycleRunner, cfg config.ScheduleConfig) (*Scheduler, error) {
	log := logger.Named("scheduler")
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		runner:  runner,
		log:     log,
		now:     time.Now,
		entries: make(map[string]cron.EntryID),
		ctx:     context.Background(),
	}

	jobs := []struct {
		name string
		spec string
		fn   func()
	}{
		{JobSnapshot, cfg.SnapshotCron, s.runSnapshot},
		{JobForecast, cfg.ForecastCron, s.runForecast},
		{JobAnomaly, cfg.AnomalyCron, s.runAnomaly},
		{JobMaintenance, cfg.MaintenanceCron, s.runMaintenance},
	}
	for _, j := range jobs {
		id, err := s.cron.AddFunc(j.spec, j.fn)
		if err != nil {
			return nil, fmt.Errorf("invalid %s schedule %q: %w", j.name, j.spec, err)
		}
		s.entries[j.name] = id
	}
	return s, nil
}

// Start begins firing jobs; ctx is passed to every cycle started afterwards.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	for name, id := range s.entries {
		s.log.Infow("job scheduled", "job", name, "next_run", s.cron.Entry(id).Next)
	}
}

// Stop halts the cron loop and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Next reports when the named job fires next after t.
func (s *Scheduler) Next(job string, t time.Time) (time.Time, bool) {
	id, ok := s.entries[job]
	if !ok {
		return time.Time{}, false
	}
	return s.cron.Entry(id).Schedule.Next(t), true
}

// Run fires one job immediately, outside its schedule.
func (s *Scheduler) Run(job string) error {
	switch job {
	case JobSnapshot:
		s.runSnapshot()
	case JobForecast:
		s.runForecast()
	case JobAnomaly:
		s.runAnomaly()
	case JobMaintenance:
		s.runMaintenance()
	default:
		return fmt.Errorf("unknown job %q", job)
	}
	return nil
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

func (s *Scheduler) runSnapshot() {
	result, err := s.runner.RunSnapshotCycle(s.baseContext(), s.now().UTC())
	if s.skipped(JobSnapshot, err) {
		return
	}
	s.log.Infow("snapshot job finished",
		"run_id", result.RunID,
		"state", result.State,
		"recorded", result.Recorded,
		"message", result.Message,
	)
}

func (s *Scheduler) runForecast() {
	result, err := s.runner.RunForecastCycle(s.baseContext())
	if s.skipped(JobForecast, err) {
		return
	}
	s.log.Infow("forecast job finished",
		"run_id", result.RunID,
		"state", result.State,
		"history_synthesized", result.HistorySynthesized,
		"projected", result.ProjectedCount,
		"alerts_raised", result.AlertsRaised,
		"alerts_refreshed", result.AlertsRefreshed,
		"skipped", len(result.Skipped),
		"message", result.Message,
	)
}

func (s *Scheduler) runAnomaly() {
	result, err := s.runner.RunAnomalyCycle(s.baseContext(), services.AnomalyScan{})
	if s.skipped(JobAnomaly, err) {
		return
	}
	s.log.Infow("anomaly job finished",
		"run_id", result.RunID,
		"state", result.State,
		"scanned", result.ScannedCount,
		"new_flags", result.NewFlags,
		"skipped", len(result.Skipped),
		"message", result.Message,
	)
}

func (s *Scheduler) runMaintenance() {
	result, err := s.runner.RunMaintenance(s.baseContext())
	if s.skipped(JobMaintenance, err) {
		return
	}
	s.log.Infow("maintenance job finished",
		"run_id", result.RunID,
		"state", result.State,
		"pruned_shortage_alerts", result.ShortageAlerts,
		"pruned_low_stock_alerts", result.LowStockAlerts,
		"pruned_snapshots", result.PrunedSnapshots,
	)
}

// skipped logs a cycle that never started and reports whether it did not.
func (s *Scheduler) skipped(job string, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrCycleInProgress) {
		s.log.Infow("job skipped, previous run still active", "job", job)
		return true
	}
	s.log.Errorw("job failed to start", "job", job, "error", err)
	return true
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	log *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.Errorw(msg, append(keysAndValues, "error", err)...)
}
