// Package scheduler runs the monthly valuation snapshot on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopkeeper/backend/internal/domain/inventory"
	"github.com/shopkeeper/backend/internal/domain/report"
	"go.uber.org/zap"
)

// SnapshotTaker computes and stores a valuation snapshot for a period
type SnapshotTaker interface {
	TakeSnapshot(ctx context.Context, period inventory.Period, source report.SnapshotSource) (*report.ValuationSnapshot, error)
}

// Config holds configuration for the valuation snapshot scheduler
type Config struct {
	// Spec is a standard 5-field cron expression, e.g. "0 2 1 * *"
	Spec string
	// JobTimeout bounds one snapshot run
	JobTimeout time.Duration
	// Location is the zone used both for the schedule and for month boundaries
	Location *time.Location
}

// DefaultConfig runs at 02:00 on the first day of every month, UTC
func DefaultConfig() Config {
	return Config{
		Spec:       "0 2 1 * *",
		JobTimeout: 10 * time.Minute,
		Location:   time.UTC,
	}
}

// Status describes the scheduler for health endpoints
type Status struct {
	Running    bool       `json:"running"`
	Spec       string     `json:"spec"`
	LastRunAt  *time.Time `json:"last_run_at,omitempty"`
	LastPeriod string     `json:"last_period,omitempty"`
	LastError  string     `json:"last_error,omitempty"`
	NextRunAt  *time.Time `json:"next_run_at,omitempty"`
}

// ValuationScheduler snapshots the previous calendar month's valuation
type ValuationScheduler struct {
	config Config
	taker  SnapshotTaker
	logger *zap.Logger
	cron   *cron.Cron
	now    func() time.Time

	entryID cron.EntryID
	runMu   sync.Mutex // held for the duration of a run

	mu         sync.Mutex
	running    bool
	lastRunAt  *time.Time
	lastPeriod string
	lastErr    error
}

// NewValuationScheduler validates the cron spec and builds the scheduler
func NewValuationScheduler(cfg Config, taker SnapshotTaker, logger *zap.Logger) (*ValuationScheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if taker == nil {
		return nil, fmt.Errorf("%w: snapshot taker is required", ErrInvalidConfig)
	}
	defaults := DefaultConfig()
	if cfg.Spec == "" {
		cfg.Spec = defaults.Spec
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = defaults.JobTimeout
	}
	if cfg.Location == nil {
		cfg.Location = defaults.Location
	}

	c := cron.New(
		cron.WithLocation(cfg.Location),
		cron.WithLogger(newCronLogger(logger)),
		cron.WithChain(cron.Recover(newCronLogger(logger))),
	)

	s := &ValuationScheduler{
		config: cfg,
		taker:  taker,
		logger: logger.Named("valuation-scheduler"),
		cron:   c,
		now:    time.Now,
	}

	id, err := c.AddFunc(cfg.Spec, s.scheduledRun)
	if err != nil {
		return nil, fmt.Errorf("%w: cron spec %q: %v", ErrInvalidConfig, cfg.Spec, err)
	}
	s.entryID = id
	return s, nil
}

// Start begins firing on the schedule
func (s *ValuationScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.cron.Start()

	next := s.cron.Entry(s.entryID).Next
	s.logger.Info("Valuation scheduler started",
		zap.String("spec", s.config.Spec),
		zap.Time("next_run_at", next),
	)
}

// Stop stops the schedule and waits for a running job, bounded by ctx
func (s *ValuationScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	done := s.cron.Stop().Done()
	select {
	case <-done:
		s.logger.Info("Valuation scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Valuation scheduler stop timed out")
		return ctx.Err()
	}
}

// TriggerRun runs a snapshot for the month before now, outside the schedule
func (s *ValuationScheduler) TriggerRun(ctx context.Context) (*report.ValuationSnapshot, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()
	if !running {
		return nil, ErrSchedulerNotRunning
	}
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()
	return s.run(ctx, report.SnapshotSourceManual)
}

// Status reports the last and next run
func (s *ValuationScheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Running:    s.running,
		Spec:       s.config.Spec,
		LastRunAt:  s.lastRunAt,
		LastPeriod: s.lastPeriod,
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	if s.running {
		next := s.cron.Entry(s.entryID).Next
		if !next.IsZero() {
			st.NextRunAt = &next
		}
	}
	return st
}

// scheduledRun is the cron callback. Overlapping firings are skipped.
func (s *ValuationScheduler) scheduledRun() {
	if !s.runMu.TryLock() {
		s.logger.Warn("Previous valuation snapshot still running, skipping")
		return
	}
	defer s.runMu.Unlock()
	_, _ = s.run(context.Background(), report.SnapshotSourceScheduled)
}

func (s *ValuationScheduler) run(parent context.Context, source report.SnapshotSource) (*report.ValuationSnapshot, error) {
	ctx, cancel := context.WithTimeout(parent, s.config.JobTimeout)
	defer cancel()

	now := s.now().In(s.config.Location)
	period := PreviousMonth(now)
	start := time.Now()

	s.logger.Info("Taking valuation snapshot",
		zap.String("period", period.Label()),
		zap.String("source", string(source)),
	)
	snapshot, err := s.taker.TakeSnapshot(ctx, period, source)

	s.mu.Lock()
	s.lastRunAt = &now
	s.lastPeriod = period.Label()
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		s.logger.Error("Valuation snapshot failed",
			zap.String("period", period.Label()),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		return nil, err
	}
	s.logger.Info("Valuation snapshot stored",
		zap.String("period", period.Label()),
		zap.String("snapshot_id", snapshot.ID.String()),
		zap.Duration("duration", time.Since(start)),
	)
	return snapshot, nil
}

// PreviousMonth returns the calendar month before the one t falls in on its
// own calendar. The window is the UTC month, the same one ParsePeriod yields
// for the label, so scheduled and queried reports agree.
func PreviousMonth(t time.Time) inventory.Period {
	prev := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return inventory.MonthPeriod(prev.Year(), prev.Month(), time.UTC)
}
