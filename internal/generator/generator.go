// Package generator produces deterministic synthetic inventory ledgers for demos
// and tests.
package generator

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
)

const (
	DefaultSize = 100
	DefaultSeed = 42
)

var (
	productNames = []string{
		"Widget", "Gadget", "Thingamajig", "Doodad", "Gizmo",
		"Contraption", "Device", "Apparatus", "Instrument", "Tool",
	}
	categories = []string{
		"Electronics", "Toys", "Household", "Outdoor",
		"Clothing", "Food", "Books", "Stationery",
	}
)

// Options controls generation. Zero Size and Seed use the defaults; a zero
// ReferenceDate means today (UTC).
type Options struct {
	Size          int
	Seed          int64
	ReferenceDate time.Time
}

// Generate returns Size records. The same options always yield the same records.
func Generate(opts Options) []domain.InventoryRecord {
	if opts.Size <= 0 {
		opts.Size = DefaultSize
	}
	if opts.Seed == 0 {
		opts.Seed = DefaultSeed
	}
	if opts.ReferenceDate.IsZero() {
		opts.ReferenceDate = clearance.Today()
	}
	ref := clearance.CivilDate(opts.ReferenceDate)

	rng := rand.New(rand.NewSource(opts.Seed))
	between := func(lo, hi int) int { return lo + rng.Intn(hi-lo+1) }
	uniform := func(lo, hi float64) float64 { return lo + rng.Float64()*(hi-lo) }

	records := make([]domain.InventoryRecord, 0, opts.Size)
	for i := 1; i <= opts.Size; i++ {
		name := fmt.Sprintf("%s %d", productNames[rng.Intn(len(productNames))], between(1, 100))
		category := categories[rng.Intn(len(categories))]
		stock := between(10, 200)
		sold := between(0, stock)
		purchase := ref.AddDate(0, 0, -between(0, 90))
		shelfLife := between(7, 90)
		cost := decimal.NewFromFloat(uniform(5, 100)).Round(2)
		selling := cost.Mul(decimal.NewFromFloat(uniform(1.1, 2.0))).Round(2)

		records = append(records, domain.InventoryRecord{
			ProductID:     fmt.Sprintf("P%04d", i),
			ProductName:   name,
			Category:      category,
			StockQuantity: stock,
			SoldQuantity:  sold,
			PurchaseDate:  purchase,
			ShelfLifeDays: shelfLife,
			CostPrice:     cost,
			SellingPrice:  selling,
		})
	}
	return records
}

// Write generates a ledger and writes it as CSV to w.
func Write(w io.Writer, opts Options) (int, error) {
	records := Generate(opts)
	if err := clearance.WriteLedger(w, records); err != nil {
		return 0, fmt.Errorf("write generated ledger: %w", err)
	}
	return len(records), nil
}

// WriteFile generates a ledger into path, creating its directory.
func WriteFile(path string, opts Options) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := Write(f, opts)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}
