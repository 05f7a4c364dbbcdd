package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

// Worker processes file jobs for a specific pipeline and folds their results
// into the shared run.
type Worker struct {
	pipeline Pipeline
	run      *PipelineRun
	mu       *sync.Mutex
	now      func() time.Time
}

// NewWorker creates a new pipeline worker bound to run. mu guards run and its jobs.
func NewWorker(p Pipeline, run *PipelineRun, mu *sync.Mutex) *Worker {
	return &Worker{
		pipeline: p,
		run:      run,
		mu:       mu,
		now:      time.Now,
	}
}

// processFile validates and processes a single file, recording the outcome on job.
func (w *Worker) processFile(ctx context.Context, job *FileJob) error {
	if err := ctx.Err(); err != nil {
		w.markJobCanceled(job, err)
		return err
	}

	startTime := w.now()
	w.setStatus(job, FileStatusProcessing)

	logger.Log.Info().
		Str("pipeline", w.pipeline.Name()).
		Str("file", job.FilePath).
		Msg("Processing file")

	if err := w.pipeline.Validate(job.FilePath); err != nil {
		return w.markJobFailed(job, fmt.Errorf("validation failed for %s: %w", job.FilePath, err))
	}

	result, err := w.pipeline.Process(ctx, job.FilePath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			w.markJobCanceled(job, err)
			return err
		}
		return w.markJobFailed(job, fmt.Errorf("processing failed for %s: %w", job.FilePath, err))
	}

	duration := w.now().Sub(startTime)

	w.mu.Lock()
	now := w.now()
	job.Status = FileStatusCompleted
	job.ProcessedAt = &now
	job.Duration = duration
	job.Result = result
	w.run.ProcessedFiles++
	if result != nil {
		w.run.TotalRows += result.TotalRows
		w.run.SelectedRows += result.Selected
	}
	w.mu.Unlock()

	event := logger.Log.Info().
		Str("pipeline", w.pipeline.Name()).
		Str("file", job.FilePath).
		Dur("duration", duration)
	if result != nil {
		event = event.Int("rows", result.TotalRows).Int("selected", result.Selected)
	}
	event.Msg("Completed file")

	return nil
}

func (w *Worker) setStatus(job *FileJob, status FileJobStatus) {
	w.mu.Lock()
	job.Status = status
	w.mu.Unlock()
}

// markJobFailed marks a job as failed and returns err for the caller to propagate.
func (w *Worker) markJobFailed(job *FileJob, err error) error {
	w.mu.Lock()
	now := w.now()
	job.Status = FileStatusFailed
	job.ErrorMessage = err.Error()
	job.ProcessedAt = &now
	w.mu.Unlock()

	logger.Log.Error().
		Err(err).
		Str("pipeline", w.pipeline.Name()).
		Str("file", job.FilePath).
		Msg("File failed")

	return err
}

func (w *Worker) markJobCanceled(job *FileJob, err error) {
	w.mu.Lock()
	job.Status = FileStatusCanceled
	job.ErrorMessage = err.Error()
	w.mu.Unlock()
}
