package main

import (
	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/generator"
	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Write a synthetic inventory ledger",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Destination CSV",
				Value:   "./data/inventory.csv",
				EnvVars: []string{"APP_INPUT_PATH"},
			},
			&cli.IntFlag{
				Name:  "size",
				Usage: "Number of products",
				Value: generator.DefaultSize,
			},
			&cli.Int64Flag{
				Name:  "seed",
				Usage: "Random seed",
				Value: generator.DefaultSeed,
			},
			&cli.StringFlag{
				Name:  "as-of",
				Usage: "Reference date purchase dates count back from (YYYY-MM-DD)",
			},
		},
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	ref, err := parseAsOf(c.String("as-of"))
	if err != nil {
		return err
	}

	path := c.String("output")
	n, err := generator.WriteFile(path, generator.Options{
		Size:          c.Int("size"),
		Seed:          c.Int64("seed"),
		ReferenceDate: ref,
	})
	if err != nil {
		return err
	}

	logger.Log.Info().Str("file", path).Int("rows", n).Msg("Generated inventory ledger")
	return nil
}
