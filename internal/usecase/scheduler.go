package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsPulse/internal/ports"
)

// Scheduler wires the cron drivers to the recurring ingest and digest runs.
type Scheduler struct {
	ingestDriver ports.Scheduler
	digestDriver ports.Scheduler
	ingestor     *Ingestor
	coordinator  *Coordinator
	batchSize    int
	useAI        bool
	logger       *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring jobs.
func NewScheduler(ingestDriver, digestDriver ports.Scheduler, ingestor *Ingestor, coordinator *Coordinator, batchSize int, useAI bool, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		ingestDriver: ingestDriver,
		digestDriver: digestDriver,
		ingestor:     ingestor,
		coordinator:  coordinator,
		batchSize:    batchSize,
		useAI:        useAI,
		logger:       logger,
	}
}

// Start registers both recurring jobs with their drivers.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.ingestDriver != nil && s.ingestor != nil {
		err := s.ingestDriver.Start(ctx, func(trigger time.Time) {
			stats := s.ingestor.Ingest(ctx, s.batchSize, s.useAI)
			s.info("scheduled ingest finished",
				"trigger", trigger.Format(time.RFC3339),
				"inserted", stats.Inserted,
				"errors", len(stats.Errors))
		})
		if err != nil {
			return err
		}
	}

	if s.digestDriver != nil && s.coordinator != nil {
		err := s.digestDriver.Start(ctx, func(trigger time.Time) {
			batch := s.coordinator.SynthesizeAll(ctx, trigger, false)
			s.info("scheduled digest batch finished",
				"trigger", trigger.Format(time.RFC3339),
				"errors", len(batch.Errors))
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Stop gracefully tears down both drivers.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.ingestDriver != nil {
		if err := s.ingestDriver.Stop(ctx); err != nil {
			return err
		}
	}
	if s.digestDriver != nil {
		return s.digestDriver.Stop(ctx)
	}
	return nil
}

func (s *Scheduler) info(msg string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Info(msg, args...)
	}
}
