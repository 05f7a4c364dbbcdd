package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
)

func inputFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "input",
		Aliases: []string{"i"},
		Usage:   "Inventory ledger (CSV or XLSX)",
		Value:   "./data/inventory.csv",
		EnvVars: []string{"APP_INPUT_PATH"},
	}
}

func outputDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "output-dir",
		Aliases: []string{"o"},
		Usage:   "Directory for analyzed and suggestion outputs",
		Value:   "./data/output",
		EnvVars: []string{"APP_OUTPUT_DIR"},
	}
}

// analysisFlags are shared by every command that runs the clearance analysis.
func analysisFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:    "expiry-window",
			Usage:   "Flag items expiring in fewer than this many days",
			Value:   domain.DefaultExpiryWindowDays,
			EnvVars: []string{"CLEARANCE_EXPIRY_WINDOW_DAYS"},
		},
		&cli.StringFlag{
			Name:    "category",
			Usage:   `Restrict suggestions to one category ("All" for every category)`,
			Value:   domain.AllCategories,
			EnvVars: []string{"CLEARANCE_CATEGORY"},
		},
		&cli.StringFlag{
			Name:  "as-of",
			Usage: "Evaluation date (YYYY-MM-DD); defaults to today (UTC)",
		},
		&cli.BoolFlag{
			Name:  "no-expiry-rule",
			Usage: "Disable the expiring-soon rule",
		},
		&cli.BoolFlag{
			Name:  "no-overstock-rule",
			Usage: "Disable the overstocked-with-low-sales rule",
		},
		&cli.IntFlag{
			Name:    "workers",
			Usage:   "Number of concurrent workers",
			Value:   runtime.NumCPU(),
			EnvVars: []string{"CLEARANCE_WORKERS"},
		},
	}
}

func withFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

// analysisOptions reads the shared analysis flags.
func analysisOptions(c *cli.Context) (clearance.Options, time.Time, error) {
	window := c.Int("expiry-window")
	if window <= 0 {
		return clearance.Options{}, time.Time{}, fmt.Errorf("expiry-window must be positive, got %d", window)
	}

	evalDate, err := parseAsOf(c.String("as-of"))
	if err != nil {
		return clearance.Options{}, time.Time{}, err
	}

	opts := clearance.Options{
		ExpiryWindowDays: window,
		Category:         c.String("category"),
		Workers:          c.Int("workers"),
		Flags: clearance.FlagOptions{
			DisableExpiring:  c.Bool("no-expiry-rule"),
			DisableOverstock: c.Bool("no-overstock-rule"),
		},
	}
	return opts, evalDate, nil
}

func parseAsOf(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return clearance.Today(), nil
	}
	t, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q (want YYYY-MM-DD): %w", value, err)
	}
	return t, nil
}

// expandInputs turns file and directory arguments into a sorted list of ledgers.
func expandInputs(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("read input dir %s: %w", arg, err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".csv", ".xlsx":
				files = append(files, filepath.Join(arg, e.Name()))
			}
		}
	}
	sort.Strings(files)
	return files, nil
}
