package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
)

// Sweep revalidates every tracked field once. Individual failures are
// logged and do not abort the sweep.
func (m *Monitor) Sweep(ctx context.Context) {
	refs := m.Tracked()
	if len(refs) == 0 {
		return
	}

	m.logger.Info("starting revalidation sweep", "fields", len(refs))

	for _, ref := range refs {
		if ctx.Err() != nil {
			m.logger.Warn("revalidation sweep cancelled", "error", ctx.Err())
			return
		}
		if _, err := m.Revalidate(ctx, ref); err != nil {
			m.logger.Error("sweep revalidation failed",
				"reference", ref.String(),
				"error", err,
			)
		}
	}

	m.logger.Info("revalidation sweep completed", "fields", len(refs))
}

// SweepScheduler runs sweeps on a cron schedule.
type SweepScheduler struct {
	monitor  *Monitor
	schedule string
	cron     *cron.Cron
	mu       sync.Mutex
	running  bool
}

// NewSweepScheduler creates a scheduler that sweeps on the given cron
// expression. An empty schedule disables it.
func NewSweepScheduler(monitor *Monitor, schedule string) *SweepScheduler {
	return &SweepScheduler{
		monitor:  monitor,
		schedule: schedule,
		cron:     cron.New(),
	}
}

// Start begins scheduled sweeping. With an empty schedule it does
// nothing.
func (s *SweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.schedule == "" {
		s.monitor.logger.Info("sweep schedule not configured, skipping scheduler")
		return nil
	}

	if _, err := cron.ParseStandard(s.schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.schedule, err)
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.monitor.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.monitor.logger.Info("sweep scheduler started", "schedule", s.schedule)

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop stops the scheduler and waits for a running sweep to complete.
func (s *SweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil && s.running {
		ctx := s.cron.Stop()
		<-ctx.Done()
		s.running = false
		s.monitor.logger.Info("sweep scheduler stopped")
	}
}

// IsRunning returns true if the scheduler is running.
func (s *SweepScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}
