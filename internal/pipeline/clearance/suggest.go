package clearance

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

const reasonSeparator = ", "

// Reasons lists the labels of the flags set on rec, expiring-soon first.
func Reasons(rec domain.EnrichedRecord) []string {
	reasons := make([]string, 0, 2)
	if rec.ExpiringSoon {
		reasons = append(reasons, domain.ReasonExpiringSoon)
	}
	if rec.OverstockedLowSales {
		reasons = append(reasons, domain.ReasonOverstockedLowSales)
	}
	return reasons
}

// Suggest emits one suggestion per selected record, in input order. A record with
// no flag set cannot have been selected; meeting one is reported as
// domain.ErrInvariantViolation.
func Suggest(selected []domain.EnrichedRecord) ([]domain.ClearanceSuggestion, error) {
	suggestions := make([]domain.ClearanceSuggestion, 0, len(selected))
	for _, rec := range selected {
		reasons := Reasons(rec)
		if len(reasons) == 0 {
			return nil, fmt.Errorf("%w: product %s reached suggestion with no clearance flag", domain.ErrInvariantViolation, rec.ProductID)
		}
		suggestions = append(suggestions, domain.ClearanceSuggestion{
			ProductID:     rec.ProductID,
			ProductName:   rec.ProductName,
			Category:      rec.Category,
			StockQuantity: rec.StockQuantity,
			SoldQuantity:  rec.SoldQuantity,
			DaysToExpiry:  rec.DaysToExpiry,
			Reason:        strings.Join(reasons, reasonSeparator),
		})
	}
	return suggestions, nil
}
