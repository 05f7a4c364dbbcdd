package clearance

import (
	"time"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

// FlagOptions switches individual clearance rules off. The zero value enables both.
type FlagOptions struct {
	DisableExpiring  bool
	DisableOverstock bool
}

// apply returns rec with both flags evaluated for windowDays under these options.
func (o FlagOptions) apply(rec domain.EnrichedRecord, windowDays int) domain.EnrichedRecord {
	rec.ExpiringSoon = !o.DisableExpiring && ExpiringSoon(rec, windowDays)
	rec.OverstockedLowSales = !o.DisableOverstock && OverstockedLowSales(rec.InventoryRecord)
	return rec
}

// SelectOptions holds the parameters of the clearance selection predicate.
type SelectOptions struct {
	ExpiryWindowDays int
	Category         string // "" or domain.AllCategories disables the category filter
	Flags            FlagOptions
}

// Options configures one analysis run.
type Options struct {
	ExpiryWindowDays int
	Category         string
	Flags            FlagOptions
	Workers          int
}

func (o Options) selectOptions() SelectOptions {
	return SelectOptions{
		ExpiryWindowDays: o.ExpiryWindowDays,
		Category:         o.Category,
		Flags:            o.Flags,
	}
}

// Result holds every stage of one analysis run.
type Result struct {
	EvaluationDate time.Time
	Enriched       []domain.EnrichedRecord
	Selected       []domain.EnrichedRecord // urgency order
	Suggestions    []domain.ClearanceSuggestion
}

// Config holds configuration for the clearance batch pipeline
type Config struct {
	Options

	// EvaluationDate is the "now" every record of the run is compared against.
	EvaluationDate time.Time

	OutputDir string // Directory for analyzed and suggestion CSVs

	// IntermediateDir is the root for optional debug layers:
	//   1_loaded/     - ledger rows as parsed
	//   2_with_flags/ - enriched rows before selection
	IntermediateDir    string
	PersistDebugLayers bool

	// WritePDF also renders <base>_clearance_report.pdf next to the CSV outputs.
	WritePDF bool
}

// FileSummary holds summary statistics for a processed ledger file
type FileSummary struct {
	FileName       string
	TotalRows      int
	ExpiringSoon   int
	Overstocked    int
	Selected       int
	Outputs        []string
	ProcessingTime time.Duration
}
