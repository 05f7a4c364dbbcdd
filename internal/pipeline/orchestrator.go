package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/andresuchdata/clearance-agent/pkg/logger"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DatedPipeline is implemented by pipelines that evaluate every file against one
// fixed date; the orchestrator records it in the manifest.
type DatedPipeline interface {
	EvaluationDate() time.Time
}

// Orchestrator coordinates running a Pipeline over a set of local files.
type Orchestrator struct {
	cfg   PipelineConfig
	store *ManifestStore
	now   func() time.Time
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(cfg PipelineConfig) *Orchestrator {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	if cfg.ManifestName == "" {
		cfg.ManifestName = DefaultManifestName
	}
	return &Orchestrator{
		cfg:   cfg,
		store: NewManifestStore(cfg.OutputDir, cfg.ManifestName),
		now:   time.Now,
	}
}

// Run processes files through a bounded worker pool. The first failing file
// cancels the files not yet started and marks the run failed. The run manifest is
// written in every case; the returned run mirrors its content.
func (o *Orchestrator) Run(ctx context.Context, p Pipeline, files []string) (*PipelineRun, error) {
	run := &PipelineRun{
		ID:           uuid.NewString(),
		PipelineName: p.Name(),
		Status:       StatusPending,
		TotalFiles:   len(files),
		StartedAt:    o.now().UTC(),
		Jobs:         make([]*FileJob, len(files)),
	}
	if dp, ok := p.(DatedPipeline); ok {
		run.EvaluationDate = dp.EvaluationDate().Format("2006-01-02")
	}
	for i, f := range files {
		run.Jobs[i] = &FileJob{
			ID:       uuid.NewString(),
			FilePath: f,
			Status:   FileStatusQueued,
		}
	}

	logger.Log.Info().
		Str("run_id", run.ID).
		Str("pipeline", run.PipelineName).
		Int("files", len(files)).
		Int("workers", o.cfg.WorkerCount).
		Msg("Starting pipeline run")

	var mu sync.Mutex
	worker := NewWorker(p, run, &mu)
	worker.now = o.now

	run.Status = StatusProcessing

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.WorkerCount)
	for _, job := range run.Jobs {
		g.Go(func() error {
			return worker.processFile(gctx, job)
		})
	}
	runErr := g.Wait()

	completed := o.now().UTC()
	run.CompletedAt = &completed
	if runErr != nil {
		run.Status = StatusFailed
		run.ErrorMessage = runErr.Error()
	} else {
		run.Status = StatusCompleted
	}

	if err := o.store.Save(run); err != nil {
		if runErr != nil {
			return run, fmt.Errorf("%w (manifest not written: %v)", runErr, err)
		}
		return run, fmt.Errorf("write run manifest: %w", err)
	}

	if runErr != nil {
		return run, runErr
	}

	logger.Log.Info().
		Str("run_id", run.ID).
		Int("files", run.ProcessedFiles).
		Int("rows", run.TotalRows).
		Int("selected", run.SelectedRows).
		Msg("Pipeline run completed")

	return run, nil
}
