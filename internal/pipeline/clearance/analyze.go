package clearance

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

// Analyze runs enrichment, selection, ranking and suggestion over records for a
// single evaluation date.
func Analyze(ctx context.Context, records []domain.InventoryRecord, evalDate time.Time, opts Options) (*Result, error) {
	calc := NewClearanceCalculator(opts.ExpiryWindowDays, opts.Flags)
	evalDate = CivilDate(evalDate)

	enriched, err := calc.EnrichAll(ctx, records, evalDate, opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("enrich records: %w", err)
	}

	selectOpts := opts.selectOptions()
	selectOpts.ExpiryWindowDays = calc.ExpiryWindowDays()
	selected := SortByUrgency(Select(enriched, selectOpts))

	suggestions, err := Suggest(selected)
	if err != nil {
		return nil, err
	}

	return &Result{
		EvaluationDate: evalDate,
		Enriched:       enriched,
		Selected:       selected,
		Suggestions:    suggestions,
	}, nil
}
