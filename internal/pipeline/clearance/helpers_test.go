package clearance

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

var testEvalDate = time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

func record(id, category string, stock, sold int, purchase time.Time, shelfLife int) domain.InventoryRecord {
	return domain.InventoryRecord{
		ProductID:     id,
		ProductName:   "Product " + id,
		Category:      category,
		StockQuantity: stock,
		SoldQuantity:  sold,
		PurchaseDate:  purchase,
		ShelfLifeDays: shelfLife,
		CostPrice:     decimal.RequireFromString("1.25"),
		SellingPrice:  decimal.RequireFromString("2.25"),
	}
}

func daysFromEval(n int) time.Time {
	return testEvalDate.AddDate(0, 0, n)
}

func enrichedIDs(records []domain.EnrichedRecord) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ProductID
	}
	return ids
}

func suggestionIDs(suggestions []domain.ClearanceSuggestion) []string {
	ids := make([]string, len(suggestions))
	for i, s := range suggestions {
		ids[i] = s.ProductID
	}
	return ids
}

// farZones puts the host calendar a day ahead of and a day behind UTC for part of
// every UTC day.
var farZones = []*time.Location{
	time.FixedZone("UTC+14", 14*60*60),
	time.FixedZone("UTC-12", -12*60*60),
}

func withLocalZone(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

// utcDates returns the UTC calendar dates observed around fn, which differ only
// when fn straddles UTC midnight.
func utcDates(fn func()) []time.Time {
	before := CivilDate(time.Now().UTC())
	fn()
	return []time.Time{before, CivilDate(time.Now().UTC())}
}
