package clearance

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

func TestCalculateAlreadyExpiredUnsold(t *testing.T) {
	calc := NewClearanceCalculator(10, FlagOptions{})
	rec := calc.Calculate(record("A", "Food", 100, 0, daysFromEval(-5), 3), testEvalDate)

	assert.Equal(t, daysFromEval(-2), rec.ExpiryDate)
	assert.Equal(t, -2, rec.DaysToExpiry)
	assert.True(t, rec.StockToSaleRatio.IsUnbounded())
	assert.True(t, rec.ExpiringSoon)
	assert.True(t, rec.OverstockedLowSales)
	assert.Equal(t, []string{domain.ReasonExpiringSoon, domain.ReasonOverstockedLowSales}, Reasons(rec))
}

func TestCalculateHealthyRecordHasNoFlags(t *testing.T) {
	calc := NewClearanceCalculator(10, FlagOptions{})
	rec := calc.Calculate(record("B", "Food", 10, 20, testEvalDate, 90), testEvalDate)

	assert.Equal(t, 90, rec.DaysToExpiry)
	v, ok := rec.StockToSaleRatio.Value()
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
	assert.False(t, rec.ExpiringSoon)
	assert.False(t, rec.OverstockedLowSales)
}

func TestFlagBoundariesAreStrict(t *testing.T) {
	calc := NewClearanceCalculator(10, FlagOptions{})

	atWindow := calc.Calculate(record("W", "Food", 1, 1, testEvalDate, 10), testEvalDate)
	assert.Equal(t, 10, atWindow.DaysToExpiry)
	assert.False(t, atWindow.ExpiringSoon)

	insideWindow := calc.Calculate(record("W", "Food", 1, 1, testEvalDate, 9), testEvalDate)
	assert.True(t, insideWindow.ExpiringSoon)

	exactlyDouble := calc.Calculate(record("D", "Food", 20, 10, testEvalDate, 90), testEvalDate)
	assert.False(t, exactlyDouble.OverstockedLowSales)

	moreThanDouble := calc.Calculate(record("D", "Food", 21, 10, testEvalDate, 90), testEvalDate)
	assert.True(t, moreThanDouble.OverstockedLowSales)
}

func TestZeroStockZeroSoldIsUnboundedButNotOverstocked(t *testing.T) {
	calc := NewClearanceCalculator(10, FlagOptions{})
	rec := calc.Calculate(record("Z", "Food", 0, 0, testEvalDate, 90), testEvalDate)

	assert.True(t, rec.StockToSaleRatio.IsUnbounded())
	assert.False(t, rec.OverstockedLowSales)
}

func TestCalculateIgnoresTimeOfDay(t *testing.T) {
	calc := NewClearanceCalculator(10, FlagOptions{})
	late := time.Date(2024, 1, 20, 23, 59, 59, 0, time.UTC)
	rec := calc.Calculate(record("T", "Food", 1, 1, testEvalDate, 1), late)

	assert.Equal(t, 1, rec.DaysToExpiry)
}

func TestDaysBetweenAcrossLeapDay(t *testing.T) {
	from := time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, 2, DaysBetween(from, to))
	assert.Equal(t, -2, DaysBetween(to, from))
}

func TestNonPositiveWindowFallsBackToDefault(t *testing.T) {
	assert.Equal(t, domain.DefaultExpiryWindowDays, NewClearanceCalculator(0, FlagOptions{}).ExpiryWindowDays())
	assert.Equal(t, 7, NewClearanceCalculator(7, FlagOptions{}).ExpiryWindowDays())
}

func TestDisabledRulesNeverFlag(t *testing.T) {
	rec := record("A", "Food", 100, 0, daysFromEval(-5), 3)

	noExpiry := NewClearanceCalculator(10, FlagOptions{DisableExpiring: true}).Calculate(rec, testEvalDate)
	assert.False(t, noExpiry.ExpiringSoon)
	assert.True(t, noExpiry.OverstockedLowSales)

	noOverstock := NewClearanceCalculator(10, FlagOptions{DisableOverstock: true}).Calculate(rec, testEvalDate)
	assert.True(t, noOverstock.ExpiringSoon)
	assert.False(t, noOverstock.OverstockedLowSales)
}

func TestEnrichAllKeepsInputOrder(t *testing.T) {
	records := make([]domain.InventoryRecord, 1000)
	for i := range records {
		records[i] = record(fmt.Sprintf("P%04d", i), "Food", i, 1, testEvalDate, i%30)
	}

	calc := NewClearanceCalculator(10, FlagOptions{})
	enriched, err := calc.EnrichAll(context.Background(), records, testEvalDate, 8)
	require.NoError(t, err)
	require.Len(t, enriched, len(records))

	for i, rec := range enriched {
		assert.Equal(t, records[i].ProductID, rec.ProductID)
		assert.Equal(t, i%30, rec.DaysToExpiry)
	}
}

func TestEnrichAllHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calc := NewClearanceCalculator(10, FlagOptions{})
	_, err := calc.EnrichAll(ctx, []domain.InventoryRecord{record("A", "Food", 1, 1, testEvalDate, 1)}, testEvalDate, 1)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTodayIgnoresHostTimeZone(t *testing.T) {
	for _, loc := range farZones {
		t.Run(loc.String(), func(t *testing.T) {
			withLocalZone(t, loc)

			var today time.Time
			want := utcDates(func() { today = Today() })
			assert.Contains(t, want, today)
			assert.Equal(t, time.UTC, today.Location())
		})
	}
}

func TestOverstockedHandlesHugeQuantities(t *testing.T) {
	huge := math.MaxInt/2 + 1

	assert.False(t, OverstockedLowSales(record("A", "Food", 1, huge, testEvalDate, 10)))
	assert.True(t, OverstockedLowSales(record("B", "Food", math.MaxInt, huge-1, testEvalDate, 10)))
	assert.False(t, OverstockedLowSales(record("C", "Food", math.MaxInt-1, huge-1, testEvalDate, 10)))
}
