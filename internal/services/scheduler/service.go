// -----------------------------------------------------------------------
// Package scheduler runs the end-of-day trigger sweep on a cron schedule.
// -----------------------------------------------------------------------

package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/playbook/internal/common"
	"github.com/ternarybob/playbook/internal/models"
	"github.com/ternarybob/playbook/internal/services/triggers"
)

// DefaultSchedule evaluates triggers daily after the US close.
const DefaultSchedule = "0 22 * * *"

// Service schedules trigger evaluation sweeps.
type Service struct {
	engine *triggers.Engine
	cron   *cron.Cron
	logger arbor.ILogger
	notify func([]models.AlertEvent)

	mu      sync.Mutex
	running bool
	lastRun *time.Time
}

// NewService creates a scheduler around the trigger engine.
func NewService(engine *triggers.Engine) *Service {
	return &Service{
		engine: engine,
		cron:   cron.New(),
		logger: common.GetLogger(),
	}
}

// SetNotifier registers a callback invoked with the alerts each sweep fires.
// Must be called before Start.
func (s *Service) SetNotifier(notify func([]models.AlertEvent)) {
	s.notify = notify
}

// Start registers the sweep and begins the cron loop. A sweep also runs
// immediately so a restart does not wait a full cycle for coverage.
func (s *Service) Start(schedule string) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.mu.Unlock()

	if schedule == "" {
		schedule = DefaultSchedule
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("failed to register sweep: %w", err)
	}

	s.cron.Start()
	s.logger.Info().Str("schedule", schedule).Msg("EOD trigger scheduler started")

	go s.runSweep()

	return nil
}

// Stop halts the cron loop, waiting for an in-flight sweep to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.mu.Lock()
	s.running = false
	s.mu.Unlock()

	s.logger.Info().Msg("EOD trigger scheduler stopped")
}

// LastRun reports when the previous sweep completed, if any.
func (s *Service) LastRun() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun
}

func (s *Service) runSweep() {
	started := time.Now()

	alerts, err := s.engine.EvaluateAll(context.Background())
	if err != nil {
		s.logger.Error().Err(err).Msg("EOD trigger sweep failed")
		return
	}

	if s.notify != nil && len(alerts) > 0 {
		s.notify(alerts)
	}

	finished := time.Now()
	s.mu.Lock()
	s.lastRun = &finished
	s.mu.Unlock()

	s.logger.Info().
		Int("alerts", len(alerts)).
		Str("duration", finished.Sub(started).String()).
		Msg("EOD trigger sweep finished")
}
