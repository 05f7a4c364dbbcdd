package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

// Job is one scheduled batch run.
type Job func(ctx context.Context) error

// Scheduler triggers a batch job on a cron schedule. Runs never overlap: a tick
// that fires while the previous run is still going is skipped.
type Scheduler struct {
	cron    *cron.Cron
	spec    string
	job     Job
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a scheduler running job on spec (standard 5-field cron).
func NewScheduler(spec string, timeout time.Duration, job Job) (*Scheduler, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("invalid cron spec %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	return &Scheduler{
		cron:    cron.New(cron.WithLocation(time.UTC)),
		spec:    spec,
		job:     job,
		timeout: timeout,
	}, nil
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return fmt.Errorf("schedule clearance run: %w", err)
	}
	logger.Log.Info().Str("spec", s.spec).Msg("Starting scheduler")
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	logger.Log.Info().Msg("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// RunOnce executes the job immediately unless a run is already in progress.
func (s *Scheduler) RunOnce() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		logger.Log.Warn().Msg("Previous scheduled run still in progress, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := s.job(ctx); err != nil {
		logger.Log.Error().Err(err).Msg("Scheduled clearance run failed")
		return
	}
	logger.Log.Info().Dur("duration", time.Since(start)).Msg("Scheduled clearance run completed")
}
