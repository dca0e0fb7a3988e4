// Package scheduler runs periodic maintenance jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Job is a named unit of periodic work
type Job struct {
	Name    string
	Spec    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Scheduler runs jobs on cron schedules with seconds precision
type Scheduler struct {
	cron    *cron.Cron
	ctx     context.Context
	cancel  context.CancelFunc
	running sync.Map
}

// NewScheduler creates a stopped scheduler
func NewScheduler() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Add registers job. A run is skipped while the previous run of the same job is still going.
func (s *Scheduler) Add(job Job) error {
	_, err := s.cron.AddFunc(job.Spec, func() { s.run(job) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}
	log.Info().Str("job", job.Name).Str("schedule", job.Spec).Msg("Job scheduled")
	return nil
}

func (s *Scheduler) run(job Job) {
	if _, busy := s.running.LoadOrStore(job.Name, struct{}{}); busy {
		log.Warn().Str("job", job.Name).Msg("Previous run still in progress, skipping")
		return
	}
	defer s.running.Delete(job.Name)

	ctx := s.ctx
	if job.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, job.Timeout)
		defer cancel()
	}

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		log.Error().Err(err).Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("Job failed")
		return
	}
	log.Info().Str("job", job.Name).Dur("elapsed", time.Since(start)).Msg("Job finished")
}

// Start starts the cron loop in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Msg("Scheduler started")
}

// Stop cancels running jobs and waits for them to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	log.Info().Msg("Scheduler stopped")
}
