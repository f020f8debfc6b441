package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	rcron "github.com/robfig/cron/v3"

	"github.com/wolfman30/marcel-receptionist/pkg/logging"
)

const DefaultSweepSchedule = "@every 5m"

// SweepObserver receives the outcome of every sweep.
type SweepObserver interface {
	ObserveSweep(evicted, active int)
}

// Sweeper evicts stale sessions on a cron schedule, independent of call
// traffic.
type Sweeper struct {
	store    Store
	schedule string
	logger   *logging.Logger
	observer SweepObserver
	now      func() time.Time

	mu     sync.Mutex
	cron   *rcron.Cron
	cancel context.CancelFunc
}

func NewSweeper(store Store, schedule string, observer SweepObserver, logger *logging.Logger) *Sweeper {
	if logger == nil {
		logger = logging.Default()
	}
	if schedule == "" {
		schedule = DefaultSweepSchedule
	}
	return &Sweeper{
		store:    store,
		schedule: schedule,
		logger:   logger,
		observer: observer,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Start registers the sweep job and returns immediately. The job stops when
// ctx is cancelled or Stop is called.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cron != nil {
		return fmt.Errorf("session: sweeper already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	c := rcron.New()
	if _, err := c.AddFunc(s.schedule, func() { _, _ = s.RunOnce(runCtx) }); err != nil {
		cancel()
		return fmt.Errorf("session: invalid sweep schedule %q: %w", s.schedule, err)
	}
	s.cron = c
	s.cancel = cancel
	c.Start()
	s.logger.Info("session sweeper started", "schedule", s.schedule)

	go func() {
		<-runCtx.Done()
		s.Stop()
	}()
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	c, cancel := s.cron, s.cancel
	s.cron, s.cancel = nil, nil
	s.mu.Unlock()
	if c == nil {
		return
	}
	cancel()
	<-c.Stop().Done()
}

// RunOnce performs a single sweep.
func (s *Sweeper) RunOnce(ctx context.Context) (int, error) {
	evicted, err := s.store.EvictStale(ctx, s.now())
	if err != nil {
		s.logger.Warn("session sweep failed", "error", err)
		return 0, err
	}
	active, err := s.store.Len(ctx)
	if err != nil {
		s.logger.Warn("session count failed", "error", err)
		return evicted, nil
	}
	if s.observer != nil {
		s.observer.ObserveSweep(evicted, active)
	}
	if evicted > 0 {
		s.logger.Info("stale sessions evicted", "evicted", evicted, "active", active)
	} else {
		s.logger.Debug("session sweep complete", "active", active)
	}
	return evicted, nil
}
