package usecase

import (
	"context"
	"log/slog"
	"time"

	"ContentEngine/internal/domain"
	"ContentEngine/internal/ports"
)

// Scheduler wires the cron-like driver with the job queue: every trigger
// submits one run per configured audience.
type Scheduler struct {
	driver    ports.Scheduler
	queue     *JobQueue
	audiences []domain.Audience
	logger    *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, queue *JobQueue, audiences []domain.Audience, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		driver:    driver,
		queue:     queue,
		audiences: audiences,
		logger:    logger.With("component", "scheduler"),
	}
}

// Start registers the recurring submission job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.queue == nil {
		return nil
	}

	job := func(trigger time.Time) {
		for _, audience := range s.audiences {
			jobID, err := s.queue.Submit(audience)
			if err != nil {
				s.logger.Error("submit scheduled run", "audience", audience.ID, "error", err)
				continue
			}
			s.logger.Info("scheduled run submitted",
				"audience", audience.ID, "job_id", jobID, "trigger", trigger)
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
