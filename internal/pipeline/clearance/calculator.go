package clearance

import (
	"context"
	"time"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"golang.org/x/sync/errgroup"
)

const secondsPerDay = 24 * 60 * 60

// enrichChunkSize is the number of records handled by one goroutine in EnrichAll.
const enrichChunkSize = 256

// ClearanceCalculator derives expiry, ratio and flag fields for inventory records.
type ClearanceCalculator struct {
	expiryWindowDays int
	flags            FlagOptions
}

// NewClearanceCalculator creates a calculator for the given clearance window.
// A non-positive window falls back to domain.DefaultExpiryWindowDays.
func NewClearanceCalculator(expiryWindowDays int, flags FlagOptions) *ClearanceCalculator {
	if expiryWindowDays <= 0 {
		expiryWindowDays = domain.DefaultExpiryWindowDays
	}
	return &ClearanceCalculator{
		expiryWindowDays: expiryWindowDays,
		flags:            flags,
	}
}

// ExpiryWindowDays returns the window the calculator flags against.
func (c *ClearanceCalculator) ExpiryWindowDays() int {
	return c.expiryWindowDays
}

// Calculate returns the enriched view of rec evaluated at evalDate.
func (c *ClearanceCalculator) Calculate(rec domain.InventoryRecord, evalDate time.Time) domain.EnrichedRecord {
	expiry := ExpiryDate(rec)
	enriched := domain.EnrichedRecord{
		InventoryRecord:  rec,
		ExpiryDate:       expiry,
		DaysToExpiry:     DaysBetween(CivilDate(evalDate), expiry),
		StockToSaleRatio: StockToSaleRatio(rec),
	}
	return c.flags.apply(enriched, c.expiryWindowDays)
}

// EnrichAll enriches every record against the same evaluation date. Records are
// split into independent chunks processed concurrently; the result keeps input order.
func (c *ClearanceCalculator) EnrichAll(ctx context.Context, records []domain.InventoryRecord, evalDate time.Time, workers int) ([]domain.EnrichedRecord, error) {
	out := make([]domain.EnrichedRecord, len(records))
	if len(records) == 0 {
		return out, nil
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for start := 0; start < len(records); start += enrichChunkSize {
		end := start + enrichChunkSize
		if end > len(records) {
			end = len(records)
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				out[i] = c.Calculate(records[i], evalDate)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// CivilDate truncates t to its calendar date, expressed as UTC midnight.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today is the current UTC calendar date, the default evaluation date everywhere.
func Today() time.Time {
	return CivilDate(time.Now().UTC())
}

// ExpiryDate is purchase_date plus shelf_life_days calendar days.
func ExpiryDate(rec domain.InventoryRecord) time.Time {
	return CivilDate(rec.PurchaseDate).AddDate(0, 0, rec.ShelfLifeDays)
}

// DaysBetween returns the whole calendar days from 'from' to 'to'; negative when
// 'to' precedes 'from'. Both arguments must be civil dates.
func DaysBetween(from, to time.Time) int {
	return int((to.Unix() - from.Unix()) / secondsPerDay)
}

// StockToSaleRatio is stock/sold, or the unbounded sentinel when nothing was sold.
func StockToSaleRatio(rec domain.InventoryRecord) domain.Ratio {
	if rec.SoldQuantity > 0 {
		return domain.FiniteRatio(float64(rec.StockQuantity) / float64(rec.SoldQuantity))
	}
	return domain.UnboundedRatio()
}

// ExpiringSoon reports whether the record expires in strictly fewer than windowDays days.
func ExpiringSoon(rec domain.EnrichedRecord, windowDays int) bool {
	return rec.DaysToExpiry < windowDays
}

// OverstockedLowSales reports whether stock is strictly more than double the units sold.
func OverstockedLowSales(rec domain.InventoryRecord) bool {
	return rec.StockQuantity-rec.SoldQuantity > rec.SoldQuantity
}
