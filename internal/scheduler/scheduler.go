package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"

	"tftcrawler/ingestion/internal/collector"
	"tftcrawler/ingestion/internal/config"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs the collection pipeline on a cron schedule. At most one
// run is active at a time; a tick that lands during a run is skipped.
type Scheduler struct {
	cfg       *config.Config
	collector *collector.Collector
	cron      *cron.Cron
	running   atomic.Bool
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, col *collector.Collector) *Scheduler {
	return &Scheduler{
		cfg:       cfg,
		collector: col,
		cron:      cron.New(),
	}
}

// Start registers the collection job and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.cfg.CollectCron, func() {
		if !s.running.CompareAndSwap(false, true) {
			log.Warn().Msg("Previous collection run still in progress, skipping tick")
			return
		}
		defer s.running.Store(false)

		log.Info().Msg("Scheduled collection run starting")
		if err := s.collector.Run(ctx); err != nil {
			log.Error().Err(err).Msg("Scheduled collection run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule collection run: %w", err)
	}

	s.cron.Start()
	log.Info().
		Str("schedule", s.cfg.CollectCron).
		Msg("Collection runs scheduled")

	return nil
}

// Stop stops the cron loop. A run already started finishes on its own.
func (s *Scheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	log.Info().Msg("Scheduler stopped")
}
