package clearance

import (
	"sort"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

// Select returns the records eligible for clearance: expiring within the window OR
// overstocked with low sales, optionally restricted to one category (exact match).
// Flags on the returned records are re-evaluated for opts.ExpiryWindowDays, so they
// always agree with the predicate that selected them. Input order is preserved.
func Select(records []domain.EnrichedRecord, opts SelectOptions) []domain.EnrichedRecord {
	window := opts.ExpiryWindowDays
	if window <= 0 {
		window = domain.DefaultExpiryWindowDays
	}
	filter := domain.ClearanceFilter{ExpiryWindowDays: window, Category: opts.Category}

	selected := make([]domain.EnrichedRecord, 0)
	for _, rec := range records {
		flagged := opts.Flags.apply(rec, window)
		if !flagged.ExpiringSoon && !flagged.OverstockedLowSales {
			continue
		}
		if !filter.IsAllCategories() && flagged.Category != filter.Category {
			continue
		}
		selected = append(selected, flagged)
	}
	return selected
}

// SortByUrgency orders records by days_to_expiry, then stock_to_sale_ratio, both
// ascending, with product_id as the final tie-break. It sorts a copy.
func SortByUrgency(records []domain.EnrichedRecord) []domain.EnrichedRecord {
	sorted := append([]domain.EnrichedRecord(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.DaysToExpiry != b.DaysToExpiry {
			return a.DaysToExpiry < b.DaysToExpiry
		}
		if c := a.StockToSaleRatio.Compare(b.StockToSaleRatio); c != 0 {
			return c < 0
		}
		return a.ProductID < b.ProductID
	})
	return sorted
}

// Categories returns the filter choices for a record set: "All" followed by the
// distinct categories in ascending order.
func Categories(records []domain.EnrichedRecord) []string {
	seen := make(map[string]struct{})
	unique := make([]string, 0)
	for _, rec := range records {
		if _, ok := seen[rec.Category]; ok {
			continue
		}
		seen[rec.Category] = struct{}{}
		unique = append(unique, rec.Category)
	}
	sort.Strings(unique)
	return append([]string{domain.AllCategories}, unique...)
}
