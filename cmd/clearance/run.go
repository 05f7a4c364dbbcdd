package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/config"
	"github.com/andresuchdata/clearance-agent/internal/drive"
	"github.com/andresuchdata/clearance-agent/internal/pipeline"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/internal/storage"
	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

// Ledger sources accepted by --source.
const (
	sourceLocal = "local"
	sourceS3    = "s3"
	sourceDrive = "drive"
)

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run the clearance pipeline over a batch of ledgers",
		ArgsUsage: "[file or directory ...]",
		Flags: withFlags([]cli.Flag{
			outputDirFlag(),
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Where ledgers come from: local, s3 or drive",
				Value:   sourceLocal,
				EnvVars: []string{"CLEARANCE_SOURCE"},
			},
			&cli.StringFlag{
				Name:  "drive-folder-id",
				Usage: "Google Drive folder id, or a slash separated path below My Drive (implies --source drive)",
			},
			&cli.StringFlag{
				Name:    "intermediate-dir",
				Usage:   "Root directory for debug layers",
				Value:   "./data/intermediate",
				EnvVars: []string{"APP_INTERMEDIATE_DIR"},
			},
			&cli.StringFlag{
				Name:    "download-dir",
				Usage:   "Local directory for ledgers fetched from s3 or drive",
				Value:   "./data/downloads",
				EnvVars: []string{"APP_DOWNLOAD_DIR"},
			},
			&cli.BoolFlag{
				Name:    "persist-debug-layers",
				Usage:   "Persist loaded (1) and with_flags (2) layers for debugging",
				EnvVars: []string{"CLEARANCE_PERSIST_DEBUG_LAYERS"},
			},
			&cli.BoolFlag{
				Name:  "pdf",
				Usage: "Render a PDF report per ledger",
			},
			&cli.BoolFlag{
				Name:  "upload",
				Usage: "Upload outputs and the run manifest to S3",
			},
		}, analysisFlags()),
		Action: runBatch,
	}
}

// batchParams is everything one batch run needs, independent of the CLI.
type batchParams struct {
	Source             string
	Inputs             []string
	DriveFolderID      string
	OutputDir          string
	IntermediateDir    string
	DownloadDir        string
	PersistDebugLayers bool
	WritePDF           bool
	Upload             bool
	Options            clearance.Options
}

func runBatch(c *cli.Context) error {
	opts, evalDate, err := analysisOptions(c)
	if err != nil {
		return err
	}

	params := batchParams{
		Source:             c.String("source"),
		Inputs:             c.Args().Slice(),
		DriveFolderID:      c.String("drive-folder-id"),
		OutputDir:          c.String("output-dir"),
		IntermediateDir:    c.String("intermediate-dir"),
		DownloadDir:        c.String("download-dir"),
		PersistDebugLayers: c.Bool("persist-debug-layers"),
		WritePDF:           c.Bool("pdf"),
		Upload:             c.Bool("upload"),
		Options:            opts,
	}
	if params.DriveFolderID != "" {
		params.Source = sourceDrive
	}
	if params.Source == sourceLocal && len(params.Inputs) == 0 {
		params.Inputs = []string{appConfig.App.InputPath}
	}

	run, err := executeBatch(c.Context, appConfig, params, evalDate)
	if err != nil {
		return err
	}
	logger.Log.Info().
		Str("run_id", run.ID).
		Int("files", run.ProcessedFiles).
		Int("selected", run.SelectedRows).
		Msg("Clearance run finished")
	return nil
}

// executeBatch fetches ledgers, runs the pipeline over them and optionally uploads
// the outputs. It is shared by the run command and the scheduler.
func executeBatch(ctx context.Context, cfg *config.Config, params batchParams, evalDate time.Time) (*pipeline.PipelineRun, error) {
	files, err := resolveInputs(ctx, cfg, params)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		logger.Log.Warn().Str("source", params.Source).Msg("No ledgers found; nothing to process")
		return &pipeline.PipelineRun{Status: pipeline.StatusCompleted}, nil
	}

	p := clearance.NewPipeline(clearance.Config{
		Options:            params.Options,
		EvaluationDate:     evalDate,
		OutputDir:          params.OutputDir,
		IntermediateDir:    params.IntermediateDir,
		PersistDebugLayers: params.PersistDebugLayers,
		WritePDF:           params.WritePDF,
	})

	pCfg := pipeline.DefaultPipelineConfig(p.Name())
	pCfg.OutputDir = params.OutputDir
	pCfg.WorkerCount = params.Options.Workers

	orch := pipeline.NewOrchestrator(pCfg)
	run, err := orch.Run(ctx, p, files)
	if err != nil {
		return run, fmt.Errorf("clearance pipeline run failed: %w", err)
	}

	if params.Upload {
		if err := uploadOutputs(ctx, cfg, run, filepath.Join(params.OutputDir, pCfg.ManifestName)); err != nil {
			return run, err
		}
	}
	return run, nil
}

func resolveInputs(ctx context.Context, cfg *config.Config, params batchParams) ([]string, error) {
	switch params.Source {
	case sourceLocal:
		return expandInputs(params.Inputs)

	case sourceS3:
		store, err := newObjectStorage(cfg)
		if err != nil {
			return nil, err
		}
		logger.Log.Info().Str("prefix", cfg.Storage.InputPrefix).Msg("Downloading ledgers from object storage")
		return storage.DownloadLedgers(ctx, store, cfg.Storage.InputPrefix, filepath.Join(params.DownloadDir, "s3"))

	case sourceDrive:
		folderID := params.DriveFolderID
		if folderID == "" {
			folderID = cfg.Drive.FolderID
		}
		if cfg.Drive.CredentialsJSON == "" || folderID == "" {
			return nil, fmt.Errorf("drive source needs GOOGLE_CREDENTIALS_JSON and a folder id")
		}
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to create Drive service: %w", err)
		}
		if strings.Contains(folderID, "/") {
			resolved, err := svc.FindFolderByPath(ctx, folderID)
			if err != nil {
				return nil, err
			}
			logger.Log.Debug().Str("path", folderID).Str("folder_id", resolved).Msg("Resolved Drive folder path")
			folderID = resolved
		}
		return drive.NewDownloader(svc).DownloadLedgers(ctx, drive.DownloadOptions{
			FolderID:    folderID,
			DownloadDir: filepath.Join(params.DownloadDir, "drive"),
		})

	default:
		return nil, fmt.Errorf("unknown source %q (want local, s3 or drive)", params.Source)
	}
}

func newObjectStorage(cfg *config.Config) (storage.ObjectStorage, error) {
	if !cfg.Storage.Enabled() {
		return nil, fmt.Errorf("object storage needs S3_ENDPOINT and S3_BUCKET")
	}
	return storage.NewS3Client(storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	})
}

func uploadOutputs(ctx context.Context, cfg *config.Config, run *pipeline.PipelineRun, manifestPath string) error {
	store, err := newObjectStorage(cfg)
	if err != nil {
		return err
	}

	files := []string{manifestPath}
	for _, job := range run.Jobs {
		if job.Result != nil {
			files = append(files, job.Result.Outputs...)
		}
	}

	prefix := cfg.Storage.OutputPrefix + run.ID
	if err := storage.UploadFiles(ctx, store, prefix, files); err != nil {
		return fmt.Errorf("upload outputs: %w", err)
	}
	logger.Log.Info().Str("prefix", prefix).Int("files", len(files)).Msg("Uploaded clearance outputs")
	return nil
}
