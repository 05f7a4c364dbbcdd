package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/api"
	"github.com/andresuchdata/clearance-agent/internal/config"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/internal/repository"
	"github.com/andresuchdata/clearance-agent/internal/scheduler"
	"github.com/andresuchdata/clearance-agent/internal/service"
	"github.com/andresuchdata/clearance-agent/pkg/clients/llm"
	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

const shutdownTimeout = 5 * time.Second

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the clearance dashboard API",
		Flags: []cli.Flag{
			inputFlag(),
			&cli.StringFlag{
				Name:    "ledger-key",
				Usage:   "Read the ledger from this object storage key instead of --input",
				EnvVars: []string{"S3_LEDGER_KEY"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg := appConfig

	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	repo, err := ledgerRepository(c, cfg)
	if err != nil {
		return err
	}

	assistantSvc, err := newAssistant(cfg)
	if err != nil {
		if !errors.Is(err, llm.ErrNotConfigured) {
			return err
		}
		logger.Log.Warn().Msg("OPENAI_API_KEY not set; question answering disabled")
	}

	clearanceService := service.NewClearanceService(repo, assistantSvc, cfg.App.Workers)
	router := api.NewRouter(&api.Services{ClearanceService: clearanceService}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	sched, err := startScheduler(cfg)
	if err != nil {
		return err
	}
	if sched != nil {
		defer sched.Stop()
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("ledger", repo.Source()).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	logger.Log.Info().Msg("Server exiting")
	return nil
}

func ledgerRepository(c *cli.Context, cfg *config.Config) (repository.LedgerRepository, error) {
	key := c.String("ledger-key")
	if key == "" {
		return repository.NewFileLedgerRepository(c.String("input")), nil
	}
	store, err := newObjectStorage(cfg)
	if err != nil {
		return nil, err
	}
	return repository.NewObjectLedgerRepository(store, key, filepath.Join(cfg.App.DownloadDir, "serve")), nil
}

// startScheduler runs the batch on SCHEDULER_SPEC when enabled. It returns nil
// when scheduling is off.
func startScheduler(cfg *config.Config) (*scheduler.Scheduler, error) {
	if !cfg.Scheduler.Enabled {
		return nil, nil
	}

	source := sourceLocal
	switch {
	case cfg.Storage.Enabled():
		source = sourceS3
	case cfg.Drive.Enabled():
		source = sourceDrive
	}

	job := func(ctx context.Context) error {
		params := batchParams{
			Source:          source,
			Inputs:          []string{cfg.App.InputPath},
			OutputDir:       cfg.App.OutputDir,
			IntermediateDir: cfg.App.IntermediateDir,
			DownloadDir:     cfg.App.DownloadDir,
			WritePDF:        true,
			Upload:          cfg.Storage.Enabled(),
			Options: clearance.Options{
				ExpiryWindowDays: cfg.App.ExpiryWindowDays,
				Category:         cfg.App.Category,
				Workers:          cfg.App.Workers,
			},
		}
		_, err := executeBatch(ctx, cfg, params, clearance.Today())
		return err
	}

	sched, err := scheduler.NewScheduler(cfg.Scheduler.Spec, 0, job)
	if err != nil {
		return nil, err
	}
	if err := sched.Start(); err != nil {
		return nil, err
	}
	logger.Log.Info().Str("spec", cfg.Scheduler.Spec).Str("source", source).Msg("Scheduled clearance runs enabled")
	return sched, nil
}
