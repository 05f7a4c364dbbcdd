package pipeline

import (
	"context"
	"time"
)

// Pipeline defines the interface that all batch pipelines must implement
type Pipeline interface {
	// Name returns the unique identifier for this pipeline
	Name() string

	// Validate checks if the input file is valid for this pipeline
	Validate(inputFile string) error

	// Process handles a single input file end to end and reports what it produced
	Process(ctx context.Context, inputFile string) (*FileResult, error)
}

// FileResult describes the outcome of processing one input file
type FileResult struct {
	InputFile string   `json:"input_file"`
	TotalRows int      `json:"total_rows"`
	Selected  int      `json:"selected_rows"`
	Outputs   []string `json:"outputs"`
}

// PipelineConfig holds configuration for a pipeline run
type PipelineConfig struct {
	Name         string
	WorkerCount  int    // Number of files processed concurrently
	OutputDir    string // Directory receiving the run manifest
	ManifestName string // File name of the run manifest inside OutputDir
}

// DefaultPipelineConfig returns sensible defaults
func DefaultPipelineConfig(name string) PipelineConfig {
	return PipelineConfig{
		Name:         name,
		WorkerCount:  4,
		OutputDir:    "data/output/" + name,
		ManifestName: DefaultManifestName,
	}
}

// DefaultManifestName is the manifest file written at the end of every run.
const DefaultManifestName = "run_manifest.json"

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusFailed     PipelineStatus = "failed"
)

// FileJobStatus represents the state of a single file processing job
type FileJobStatus string

const (
	FileStatusQueued     FileJobStatus = "queued"
	FileStatusProcessing FileJobStatus = "processing"
	FileStatusCompleted  FileJobStatus = "completed"
	FileStatusFailed     FileJobStatus = "failed"
	FileStatusCanceled   FileJobStatus = "canceled"
)

// PipelineRun tracks a single execution of a pipeline over a set of files
type PipelineRun struct {
	ID             string         `json:"id"`
	PipelineName   string         `json:"pipeline"`
	EvaluationDate string         `json:"evaluation_date,omitempty"`
	Status         PipelineStatus `json:"status"`
	TotalFiles     int            `json:"total_files"`
	ProcessedFiles int            `json:"processed_files"`
	TotalRows      int            `json:"total_rows"`
	SelectedRows   int            `json:"selected_rows"`
	StartedAt      time.Time      `json:"started_at"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage   string         `json:"error,omitempty"`
	Jobs           []*FileJob     `json:"files"`
}

// FileJob tracks the processing of a single file
type FileJob struct {
	ID           string        `json:"id"`
	FilePath     string        `json:"path"`
	Status       FileJobStatus `json:"status"`
	ErrorMessage string        `json:"error,omitempty"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
	Duration     time.Duration `json:"duration_ns,omitempty"`
	Result       *FileResult   `json:"result,omitempty"`
}
