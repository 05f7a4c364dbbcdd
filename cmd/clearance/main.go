package main

import (
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/config"
	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

// appConfig is loaded once in the app's Before hook.
var appConfig *config.Config

func main() {
	app := &cli.App{
		Name:  "clearance",
		Usage: "Flag expiring and overstocked inventory and suggest clearance items",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Emit JSON log lines instead of console output",
				EnvVars: []string{"LOG_JSON"},
			},
		},
		Before: func(c *cli.Context) error {
			appConfig = config.Load()
			logger.SetJSON(c.Bool("log-json"))
			logger.SetLevel(c.String("log-level"))
			log.Logger = logger.Log
			return nil
		},
		Commands: []*cli.Command{
			generateCommand(),
			analyzeCommand(),
			suggestCommand(),
			runCommand(),
			askCommand(),
			serveCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
