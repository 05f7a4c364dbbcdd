package clearance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

func enrich(t *testing.T, window int, records ...domain.InventoryRecord) []domain.EnrichedRecord {
	t.Helper()
	calc := NewClearanceCalculator(window, FlagOptions{})
	out := make([]domain.EnrichedRecord, len(records))
	for i, rec := range records {
		out[i] = calc.Calculate(rec, testEvalDate)
	}
	return out
}

func TestSelectIsOrOfFlagsWithCategoryFilter(t *testing.T) {
	records := enrich(t, 10,
		record("E", "Food", 1, 1, testEvalDate, 3),        // expiring only
		record("O", "Household", 50, 1, testEvalDate, 90), // overstocked only
		record("N", "Food", 1, 1, testEvalDate, 90),       // neither
	)

	assert.Equal(t, []string{"E", "O"}, enrichedIDs(Select(records, SelectOptions{ExpiryWindowDays: 10})))
	assert.Equal(t, []string{"E", "O"}, enrichedIDs(Select(records, SelectOptions{ExpiryWindowDays: 10, Category: domain.AllCategories})))
	assert.Equal(t, []string{"E"}, enrichedIDs(Select(records, SelectOptions{ExpiryWindowDays: 10, Category: "Food"})))
	assert.Empty(t, Select(records, SelectOptions{ExpiryWindowDays: 10, Category: "food"}))
}

func TestSelectReevaluatesFlagsForItsWindow(t *testing.T) {
	records := enrich(t, 10, record("E", "Food", 1, 1, testEvalDate, 7))
	assert.True(t, records[0].ExpiringSoon)

	assert.Empty(t, Select(records, SelectOptions{ExpiryWindowDays: 5}))

	wide := enrich(t, 5, record("E", "Food", 1, 1, testEvalDate, 7))
	assert.False(t, wide[0].ExpiringSoon)
	selected := Select(wide, SelectOptions{ExpiryWindowDays: 10})
	if assert.Len(t, selected, 1) {
		assert.True(t, selected[0].ExpiringSoon)
	}
}

func TestSelectEmptyInput(t *testing.T) {
	selected := Select(nil, SelectOptions{})
	assert.NotNil(t, selected)
	assert.Empty(t, selected)
}

func TestSortByUrgency(t *testing.T) {
	records := enrich(t, 10,
		record("C", "Food", 10, 0, testEvalDate, 2),  // days 2, unbounded
		record("B", "Food", 10, 5, testEvalDate, 2),  // days 2, ratio 2
		record("A", "Food", 10, 5, testEvalDate, 2),  // days 2, ratio 2, tie-break on id
		record("D", "Food", 10, 1, testEvalDate, -1), // days -1
		record("E", "Food", 30, 1, testEvalDate, 40), // days 40
	)

	sorted := SortByUrgency(records)
	assert.Equal(t, []string{"D", "A", "B", "C", "E"}, enrichedIDs(sorted))
	assert.Equal(t, "C", records[0].ProductID, "input slice must be left untouched")
}

func TestCategories(t *testing.T) {
	records := enrich(t, 10,
		record("1", "Food", 1, 1, testEvalDate, 1),
		record("2", "Electronics", 1, 1, testEvalDate, 1),
		record("3", "Food", 1, 1, testEvalDate, 1),
	)
	assert.Equal(t, []string{domain.AllCategories, "Electronics", "Food"}, Categories(records))
	assert.Equal(t, []string{domain.AllCategories}, Categories(nil))
}
