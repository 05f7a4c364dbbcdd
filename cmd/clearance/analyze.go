package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
	"github.com/andresuchdata/clearance-agent/internal/report"
	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

const previewRows = 5

func analyzeCommand() *cli.Command {
	return &cli.Command{
		Name:   "analyze",
		Usage:  "Enrich a ledger with expiry, ratio and flag columns",
		Flags:  withFlags([]cli.Flag{inputFlag(), outputDirFlag()}, analysisFlags()),
		Action: runAnalyze,
	}
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:  "suggest",
		Usage: "Write the ranked clearance suggestion list for a ledger",
		Flags: withFlags([]cli.Flag{
			inputFlag(),
			outputDirFlag(),
			&cli.BoolFlag{
				Name:  "pdf",
				Usage: "Also render a PDF report",
			},
		}, analysisFlags()),
		Action: runSuggest,
	}
}

func analyzeInput(c *cli.Context) (*clearance.Result, error) {
	opts, evalDate, err := analysisOptions(c)
	if err != nil {
		return nil, err
	}

	records, err := clearance.LoadLedger(c.String("input"))
	if err != nil {
		return nil, err
	}

	return clearance.Analyze(c.Context, records, evalDate, opts)
}

func runAnalyze(c *cli.Context) error {
	result, err := analyzeInput(c)
	if err != nil {
		return err
	}

	path := filepath.Join(c.String("output-dir"), clearance.AnalyzedFileName(c.String("input")))
	if err := createFile(path, func(w io.Writer) error {
		return clearance.WriteEnriched(w, result.Enriched)
	}); err != nil {
		return err
	}

	for i, rec := range result.Enriched {
		if i == previewRows {
			break
		}
		logger.Log.Info().
			Str("product_id", rec.ProductID).
			Str("expiry_date", rec.ExpiryDate.Format("2006-01-02")).
			Int("days_to_expiry", rec.DaysToExpiry).
			Str("ratio", rec.StockToSaleRatio.String()).
			Bool("expiring_soon", rec.ExpiringSoon).
			Bool("overstocked_low_sales", rec.OverstockedLowSales).
			Msg("Analyzed")
	}
	logger.Log.Info().
		Str("file", path).
		Int("rows", len(result.Enriched)).
		Str("as_of", result.EvaluationDate.Format("2006-01-02")).
		Msg("Analyzed inventory saved")
	return nil
}

func runSuggest(c *cli.Context) error {
	result, err := analyzeInput(c)
	if err != nil {
		return err
	}

	input := c.String("input")
	path := filepath.Join(c.String("output-dir"), clearance.SuggestionsFileName(input))
	if err := createFile(path, func(w io.Writer) error {
		return clearance.WriteSuggestions(w, result.Suggestions)
	}); err != nil {
		return err
	}

	for i, s := range result.Suggestions {
		if i == previewRows {
			break
		}
		logger.Log.Info().
			Str("product_id", s.ProductID).
			Str("category", s.Category).
			Int("days_to_expiry", s.DaysToExpiry).
			Str("reason", s.Reason).
			Msg("Suggested")
	}
	logger.Log.Info().Str("file", path).Int("suggestions", len(result.Suggestions)).Msg("Clearance suggestions saved")

	if !c.Bool("pdf") {
		return nil
	}

	doc := clearance.ReportDocument(input, result, c.Int("expiry-window"), c.String("category"))
	pdf, err := report.Generate(doc)
	if err != nil {
		return err
	}
	pdfPath := filepath.Join(c.String("output-dir"), clearance.ReportFileName(input))
	if err := createFile(pdfPath, func(w io.Writer) error {
		_, err := w.Write(pdf)
		return err
	}); err != nil {
		return err
	}
	logger.Log.Info().Str("file", pdfPath).Msg("Clearance report saved")
	return nil
}

func createFile(path string, write func(io.Writer) error) error {
	if err := clearance.WriteFileAtomic(path, write); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
