package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/andresuchdata/clearance-agent/internal/pipeline/clearance"
)

var evalDate = time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC)

type countingRepo struct {
	records []domain.InventoryRecord
	err     error
	loads   int
}

func (r *countingRepo) Load(ctx context.Context) ([]domain.InventoryRecord, error) {
	r.loads++
	return r.records, r.err
}

func (r *countingRepo) Source() string { return "memory.csv" }

func inventory(id, category string, stock, sold, ageDays, shelfLife int) domain.InventoryRecord {
	return domain.InventoryRecord{
		ProductID:     id,
		ProductName:   "Item " + id,
		Category:      category,
		StockQuantity: stock,
		SoldQuantity:  sold,
		PurchaseDate:  evalDate.AddDate(0, 0, -ageDays),
		ShelfLifeDays: shelfLife,
		CostPrice:     decimal.NewFromInt(1),
		SellingPrice:  decimal.NewFromInt(2),
	}
}

func newTestService(repo *countingRepo) *ClearanceService {
	return NewClearanceService(repo, nil, 2).
		WithClock(func() time.Time { return evalDate.Add(9 * time.Hour) })
}

func fixtureRepo() *countingRepo {
	return &countingRepo{records: []domain.InventoryRecord{
		inventory("A", "Food", 10, 10, 5, 8),       // 3 days left
		inventory("B", "Household", 40, 2, 0, 300), // overstocked
		inventory("C", "Food", 1, 5, 0, 300),       // healthy
	}}
}

func TestRecommendationsAndSuggestions(t *testing.T) {
	svc := newTestService(fixtureRepo())
	ctx := context.Background()

	selected, err := svc.Recommendations(ctx, domain.ClearanceFilter{ExpiryWindowDays: 10})
	require.NoError(t, err)
	require.Len(t, selected, 2)
	assert.Equal(t, "A", selected[0].ProductID)
	assert.Equal(t, "B", selected[1].ProductID)

	suggestions, err := svc.Suggestions(ctx, domain.ClearanceFilter{ExpiryWindowDays: 10, Category: "Household"})
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, domain.ReasonOverstockedLowSales, suggestions[0].Reason)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"All", "Food", "Household"}, categories)
}

func TestEveryCallReloadsTheLedger(t *testing.T) {
	repo := fixtureRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	_, err := svc.Recommendations(ctx, domain.ClearanceFilter{ExpiryWindowDays: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, repo.loads)

	repo.records = append(repo.records, inventory("D", "Toys", 1, 1, 0, 2))
	selected, err := svc.Recommendations(ctx, domain.ClearanceFilter{ExpiryWindowDays: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, repo.loads)
	assert.Equal(t, "D", selected[0].ProductID)
}

func TestRepositoryErrorIsReturned(t *testing.T) {
	repo := &countingRepo{err: &domain.SchemaError{Missing: []string{domain.ColCategory}}}
	svc := newTestService(repo)

	_, err := svc.Records(context.Background())
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestAskWithoutAssistant(t *testing.T) {
	svc := newTestService(fixtureRepo())
	assert.False(t, svc.AssistantEnabled())

	_, err := svc.Ask(context.Background(), "what first?", domain.ClearanceFilter{ExpiryWindowDays: 10})
	assert.ErrorIs(t, err, ErrAssistantUnavailable)
}

func TestReport(t *testing.T) {
	svc := newTestService(fixtureRepo())

	pdf, err := svc.Report(context.Background(), domain.ClearanceFilter{ExpiryWindowDays: 10})
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(pdf[:4]))
}

func TestDefaultClockUsesUTCDate(t *testing.T) {
	for _, loc := range []*time.Location{
		time.FixedZone("UTC+14", 14*60*60),
		time.FixedZone("UTC-12", -12*60*60),
	} {
		t.Run(loc.String(), func(t *testing.T) {
			prev := time.Local
			time.Local = loc
			t.Cleanup(func() { time.Local = prev })

			today := clearance.CivilDate(time.Now().UTC())
			rec := inventory("A", "Food", 1, 1, 0, 10)
			rec.PurchaseDate = today
			svc := NewClearanceService(&countingRepo{records: []domain.InventoryRecord{rec}}, nil, 1)

			records, err := svc.Records(context.Background())
			require.NoError(t, err)
			if !clearance.CivilDate(time.Now().UTC()).Equal(today) {
				t.Skip("crossed UTC midnight")
			}
			require.Len(t, records, 1)
			assert.Equal(t, 10, records[0].DaysToExpiry)
		})
	}
}
