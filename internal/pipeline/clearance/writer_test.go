package clearance

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteEnriched(t *testing.T) {
	records := enrich(t, 10,
		record("P1", "Food", 100, 0, daysFromEval(-5), 3),
		record("P2", "Food", 10, 20, testEvalDate, 90),
	)

	var buf bytes.Buffer
	require.NoError(t, WriteEnriched(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, strings.Join(EnrichedHeaders, ","), lines[0])
	assert.Equal(t, "P1,Product P1,Food,100,0,2024-01-15,3,1.25,2.25,2024-01-18,-2,inf,True,True", lines[1])
	assert.Equal(t, "P2,Product P2,Food,10,20,2024-01-20,90,1.25,2.25,2024-04-19,90,0.5,False,False", lines[2])
}

func TestWriteSuggestionsQuotesReasons(t *testing.T) {
	suggestions, err := Suggest(enrich(t, 10, record("P1", "Food", 100, 0, daysFromEval(-5), 3)))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteSuggestions(&buf, suggestions))
	assert.Equal(t,
		"product_id,product_name,category,stock_quantity,sold_quantity,days_to_expiry,reason\n"+
			"P1,Product P1,Food,100,0,-2,\"Expiring soon, Overstocked with low sales\"\n",
		buf.String())
}

func TestWriteSuggestionsEmptyHasHeader(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSuggestions(&buf, nil))
	assert.Equal(t, strings.Join(SuggestionHeaders, ",")+"\n", buf.String())
}

func TestWriteLedgerReadsBack(t *testing.T) {
	in := analyzeFixture()
	var buf bytes.Buffer
	require.NoError(t, WriteLedger(&buf, in))

	out, err := ReadLedger(&buf, "roundtrip.csv")
	require.NoError(t, err)
	require.Len(t, out, len(in))
	for i := range in {
		assert.Equal(t, in[i].ProductID, out[i].ProductID)
		assert.Equal(t, in[i].PurchaseDate, out[i].PurchaseDate)
		assert.True(t, in[i].CostPrice.Equal(out[i].CostPrice))
	}
}

func TestRecommendationTable(t *testing.T) {
	selected := SortByUrgency(enrich(t, 10, record("P1", "Food", 100, 0, daysFromEval(-5), 3)))

	table, err := RecommendationTable(selected)
	require.NoError(t, err)
	assert.Equal(t,
		"product_id,product_name,category,stock_quantity,sold_quantity,purchase_date,expiry_date,days_to_expiry,stock_to_sale_ratio,cost_price,selling_price\n"+
			"P1,Product P1,Food,100,0,2024-01-15,2024-01-18,-2,inf,1.25,2.25\n",
		table)
}

func TestWriteFileAtomicReplacesContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("first"))
		return err
	}))
	require.NoError(t, WriteFileAtomic(path, func(w io.Writer) error {
		_, err := w.Write([]byte("second"))
		return err
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files left behind")
}

func TestOutputFileNames(t *testing.T) {
	assert.Equal(t, "store_a_analyzed.csv", AnalyzedFileName("data/store_a.csv"))
	assert.Equal(t, "store_a_clearance_suggestions.csv", SuggestionsFileName("/tmp/store_a.xlsx"))
	assert.Equal(t, "store_a_clearance_report.pdf", ReportFileName("store_a.csv"))
}
