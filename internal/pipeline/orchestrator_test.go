package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPipeline fails or blocks on files by name.
type stubPipeline struct {
	failOn    string
	blockOn   string
	processed atomic.Int32
}

func (s *stubPipeline) Name() string { return "stub" }

func (s *stubPipeline) Validate(inputFile string) error {
	if strings.HasSuffix(inputFile, ".invalid") {
		return errors.New("unsupported input")
	}
	return nil
}

func (s *stubPipeline) Process(ctx context.Context, inputFile string) (*FileResult, error) {
	if inputFile == s.blockOn {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if inputFile == s.failOn {
		return nil, errors.New("boom")
	}
	s.processed.Add(1)
	return &FileResult{InputFile: inputFile, TotalRows: 10, Selected: 2, Outputs: []string{inputFile + ".out"}}, nil
}

type datedStub struct {
	stubPipeline
}

func (d *datedStub) EvaluationDate() time.Time {
	return time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)
}

func TestOrchestratorRunWritesManifest(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultPipelineConfig("stub")
	cfg.OutputDir = dir
	cfg.WorkerCount = 2

	p := &datedStub{}
	run, err := NewOrchestrator(cfg).Run(context.Background(), p, []string{"a.csv", "b.csv", "c.csv"})
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, "stub", run.PipelineName)
	assert.Equal(t, "2024-01-20", run.EvaluationDate)
	assert.Equal(t, 3, run.TotalFiles)
	assert.Equal(t, 3, run.ProcessedFiles)
	assert.Equal(t, 30, run.TotalRows)
	assert.Equal(t, 6, run.SelectedRows)
	assert.NotEmpty(t, run.ID)
	require.NotNil(t, run.CompletedAt)
	for i, job := range run.Jobs {
		assert.Equal(t, FileStatusCompleted, job.Status)
		assert.Equal(t, []string{"a.csv", "b.csv", "c.csv"}[i], job.FilePath)
	}

	saved, err := NewManifestStore(dir, DefaultManifestName).Load()
	require.NoError(t, err)
	assert.Equal(t, run.ID, saved.ID)
	assert.Equal(t, StatusCompleted, saved.Status)
	require.Len(t, saved.Jobs, 3)
	assert.Equal(t, []string{"b.csv.out"}, saved.Jobs[1].Result.Outputs)
}

func TestOrchestratorFailureCancelsRemainingFiles(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultPipelineConfig("stub")
	cfg.OutputDir = dir
	cfg.WorkerCount = 1

	p := &stubPipeline{failOn: "b.csv"}
	run, err := NewOrchestrator(cfg).Run(context.Background(), p, []string{"a.csv", "b.csv", "c.csv"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "b.csv")

	assert.Equal(t, StatusFailed, run.Status)
	assert.NotEmpty(t, run.ErrorMessage)
	assert.Equal(t, FileStatusCompleted, run.Jobs[0].Status)
	assert.Equal(t, FileStatusFailed, run.Jobs[1].Status)
	assert.Equal(t, FileStatusCanceled, run.Jobs[2].Status)
	assert.Equal(t, 1, run.ProcessedFiles)

	saved, err := NewManifestStore(dir, DefaultManifestName).Load()
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, saved.Status)
	assert.Equal(t, FileStatusCanceled, saved.Jobs[2].Status)
}

func TestOrchestratorValidationFailure(t *testing.T) {
	cfg := DefaultPipelineConfig("stub")
	cfg.OutputDir = t.TempDir()

	run, err := NewOrchestrator(cfg).Run(context.Background(), &stubPipeline{}, []string{"ledger.invalid"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Equal(t, FileStatusFailed, run.Jobs[0].Status)
}

func TestOrchestratorFailureStopsBlockedFile(t *testing.T) {
	cfg := DefaultPipelineConfig("stub")
	cfg.OutputDir = t.TempDir()
	cfg.WorkerCount = 2

	p := &stubPipeline{blockOn: "slow.csv", failOn: "bad.csv"}
	run, err := NewOrchestrator(cfg).Run(context.Background(), p, []string{"slow.csv", "bad.csv"})
	require.Error(t, err)

	assert.Equal(t, FileStatusCanceled, run.Jobs[0].Status)
	assert.Equal(t, FileStatusFailed, run.Jobs[1].Status)
}

func TestOrchestratorParentCancellation(t *testing.T) {
	cfg := DefaultPipelineConfig("stub")
	cfg.OutputDir = t.TempDir()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := &stubPipeline{}
	run, err := NewOrchestrator(cfg).Run(ctx, p, []string{"a.csv", "b.csv"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StatusFailed, run.Status)
	assert.Equal(t, int32(0), p.processed.Load())
	for _, job := range run.Jobs {
		assert.Equal(t, FileStatusCanceled, job.Status)
	}
}

func TestOrchestratorEmptyBatch(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultPipelineConfig("stub")
	cfg.OutputDir = dir

	run, err := NewOrchestrator(cfg).Run(context.Background(), &stubPipeline{}, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.FileExists(t, filepath.Join(dir, DefaultManifestName))
}

func TestManifestStoreLoadMissing(t *testing.T) {
	_, err := NewManifestStore(t.TempDir(), DefaultManifestName).Load()
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
