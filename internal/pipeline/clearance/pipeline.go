package clearance

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline"
	"github.com/andresuchdata/clearance-agent/internal/report"
	"github.com/andresuchdata/clearance-agent/pkg/logger"
)

// Pipeline implements the generic pipeline.Pipeline interface for inventory ledgers.
type Pipeline struct {
	config Config
}

// NewPipeline creates a new clearance pipeline instance. A zero EvaluationDate is
// replaced by today's UTC date, captured once for every file of the run.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.OutputDir == "" {
		cfg.OutputDir = filepath.Join("data", "output", "clearance")
	}
	if cfg.IntermediateDir == "" {
		cfg.IntermediateDir = filepath.Join("data", "intermediate", "clearance")
	}
	if cfg.EvaluationDate.IsZero() {
		cfg.EvaluationDate = Today()
	}
	cfg.EvaluationDate = CivilDate(cfg.EvaluationDate)
	return &Pipeline{config: cfg}
}

// Name returns the unique identifier of this pipeline.
func (p *Pipeline) Name() string {
	return "clearance"
}

// EvaluationDate returns the date every file is evaluated against.
func (p *Pipeline) EvaluationDate() time.Time {
	return p.config.EvaluationDate
}

// Validate performs basic validation on the input file.
func (p *Pipeline) Validate(inputFile string) error {
	info, err := os.Stat(inputFile)
	if err != nil {
		return fmt.Errorf("cannot stat input file %s: %w", inputFile, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path %s is a directory, expected file", inputFile)
	}
	switch ext := strings.ToLower(filepath.Ext(inputFile)); ext {
	case ".csv", ".xlsx":
		return nil
	default:
		return fmt.Errorf("unsupported file extension %s for %s (csv or xlsx expected)", ext, inputFile)
	}
}

// Process loads one ledger, analyzes it and writes its outputs.
func (p *Pipeline) Process(ctx context.Context, inputFile string) (*pipeline.FileResult, error) {
	summary, err := p.Run(ctx, inputFile)
	if err != nil {
		return nil, err
	}
	return &pipeline.FileResult{
		InputFile: inputFile,
		TotalRows: summary.TotalRows,
		Selected:  summary.Selected,
		Outputs:   summary.Outputs,
	}, nil
}

// Run is Process with the richer clearance summary.
func (p *Pipeline) Run(ctx context.Context, inputFile string) (*FileSummary, error) {
	start := time.Now()

	records, err := LoadLedger(inputFile)
	if err != nil {
		return nil, err
	}

	if p.config.PersistDebugLayers {
		if err := p.writeIntermediate("1_loaded", inputFile, func(w io.Writer) error {
			return WriteLedger(w, records)
		}); err != nil {
			return nil, fmt.Errorf("failed to write loaded intermediate: %w", err)
		}
	}

	result, err := Analyze(ctx, records, p.config.EvaluationDate, p.config.Options)
	if err != nil {
		return nil, fmt.Errorf("analyze %s: %w", inputFile, err)
	}

	if p.config.PersistDebugLayers {
		if err := p.writeIntermediate("2_with_flags", inputFile, func(w io.Writer) error {
			return WriteEnriched(w, result.Enriched)
		}); err != nil {
			return nil, fmt.Errorf("failed to write with_flags intermediate: %w", err)
		}
	}

	analyzedPath := filepath.Join(p.config.OutputDir, AnalyzedFileName(inputFile))
	if err := WriteFileAtomic(analyzedPath, func(w io.Writer) error {
		return WriteEnriched(w, result.Enriched)
	}); err != nil {
		return nil, fmt.Errorf("write %s: %w", analyzedPath, err)
	}

	suggestionsPath := filepath.Join(p.config.OutputDir, SuggestionsFileName(inputFile))
	if err := WriteFileAtomic(suggestionsPath, func(w io.Writer) error {
		return WriteSuggestions(w, result.Suggestions)
	}); err != nil {
		return nil, fmt.Errorf("write %s: %w", suggestionsPath, err)
	}

	doc := ReportDocument(inputFile, result, p.config.ExpiryWindowDays, p.config.Category)
	summary := &FileSummary{
		FileName:     filepath.Base(inputFile),
		TotalRows:    doc.TotalRecords,
		ExpiringSoon: doc.ExpiringSoon,
		Overstocked:  doc.Overstocked,
		Selected:     len(result.Selected),
		Outputs:      []string{analyzedPath, suggestionsPath},
	}

	if p.config.WritePDF {
		pdf, err := report.Generate(doc)
		if err != nil {
			return nil, err
		}
		reportPath := filepath.Join(p.config.OutputDir, ReportFileName(inputFile))
		if err := WriteFileAtomic(reportPath, func(w io.Writer) error {
			_, err := w.Write(pdf)
			return err
		}); err != nil {
			return nil, fmt.Errorf("write %s: %w", reportPath, err)
		}
		summary.Outputs = append(summary.Outputs, reportPath)
	}

	summary.ProcessingTime = time.Since(start)

	logger.Log.Debug().
		Str("file", summary.FileName).
		Int("rows", summary.TotalRows).
		Int("expiring_soon", summary.ExpiringSoon).
		Int("overstocked", summary.Overstocked).
		Int("selected", summary.Selected).
		Msg("Ledger analyzed")

	return summary, nil
}

// ReportDocument summarizes result for the PDF report. Flag counts cover every
// enriched record, not only the selected category.
func ReportDocument(source string, result *Result, windowDays int, category string) report.Document {
	if windowDays <= 0 {
		windowDays = domain.DefaultExpiryWindowDays
	}
	doc := report.Document{
		Source:           filepath.Base(source),
		EvaluationDate:   result.EvaluationDate,
		ExpiryWindowDays: windowDays,
		Category:         category,
		TotalRecords:     len(result.Enriched),
		Suggestions:      result.Suggestions,
	}
	for _, rec := range result.Enriched {
		if rec.ExpiringSoon {
			doc.ExpiringSoon++
		}
		if rec.OverstockedLowSales {
			doc.Overstocked++
		}
	}
	return doc
}

// writeIntermediate stores a debug layer under IntermediateDir/stage/<eval date>/.
func (p *Pipeline) writeIntermediate(stage, inputFile string, write func(io.Writer) error) error {
	baseDir := filepath.Join(p.config.IntermediateDir, stage, p.config.EvaluationDate.Format("20060102"))
	path := filepath.Join(baseDir, outputBaseName(inputFile)+".csv")
	return WriteFileAtomic(path, write)
}

var _ pipeline.Pipeline = (*Pipeline)(nil)
var _ pipeline.DatedPipeline = (*Pipeline)(nil)
