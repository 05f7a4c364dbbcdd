package generator_test

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/clearance-agent/internal/generator"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
)

var refDate = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

func TestGenerate_Deterministic(t *testing.T) {
	a := generator.Generate(generator.Options{ReferenceDate: refDate})
	b := generator.Generate(generator.Options{ReferenceDate: refDate})
	assert.Equal(t, a, b)
	assert.Len(t, a, generator.DefaultSize)

	c := generator.Generate(generator.Options{Seed: 7, ReferenceDate: refDate})
	assert.NotEqual(t, a, c, "a different seed should change the ledger")
}

func TestGenerate_ValueRanges(t *testing.T) {
	records := generator.Generate(generator.Options{Size: 500, ReferenceDate: refDate})
	require.Len(t, records, 500)

	assert.Equal(t, "P0001", records[0].ProductID)
	assert.Equal(t, "P0500", records[499].ProductID)

	for _, r := range records {
		assert.GreaterOrEqual(t, r.StockQuantity, 10)
		assert.LessOrEqual(t, r.StockQuantity, 200)
		assert.GreaterOrEqual(t, r.SoldQuantity, 0)
		assert.LessOrEqual(t, r.SoldQuantity, r.StockQuantity)
		assert.GreaterOrEqual(t, r.ShelfLifeDays, 7)
		assert.LessOrEqual(t, r.ShelfLifeDays, 90)

		age := int(refDate.Sub(r.PurchaseDate).Hours() / 24)
		assert.GreaterOrEqual(t, age, 0)
		assert.LessOrEqual(t, age, 90)

		assert.True(t, r.CostPrice.GreaterThanOrEqual(decimalOf(t, "5")), "cost %s", r.CostPrice)
		assert.True(t, r.CostPrice.LessThanOrEqual(decimalOf(t, "100")), "cost %s", r.CostPrice)
		assert.True(t, r.SellingPrice.GreaterThan(r.CostPrice), "selling %s should exceed cost %s", r.SellingPrice, r.CostPrice)
		assert.LessOrEqual(t, -r.CostPrice.Exponent(), int32(2))
	}
}

func TestWrite_RoundTripsThroughLoader(t *testing.T) {
	var buf bytes.Buffer
	n, err := generator.Write(&buf, generator.Options{Size: 25, ReferenceDate: refDate})
	require.NoError(t, err)
	assert.Equal(t, 25, n)

	loaded, err := clearance.ReadLedger(&buf, "generated.csv")
	require.NoError(t, err)
	assert.Len(t, loaded, 25)

	generated := generator.Generate(generator.Options{Size: 25, ReferenceDate: refDate})
	for i := range loaded {
		assert.Equal(t, generated[i].ProductID, loaded[i].ProductID)
		assert.True(t, generated[i].PurchaseDate.Equal(loaded[i].PurchaseDate))
		assert.True(t, generated[i].SellingPrice.Equal(loaded[i].SellingPrice))
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "inventory.csv")
	n, err := generator.WriteFile(path, generator.Options{Size: 3, ReferenceDate: refDate})
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	records, err := clearance.LoadLedger(path)
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func decimalOf(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}
