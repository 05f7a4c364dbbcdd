package clearance

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

func writeLedgerFile(t *testing.T, dir, name string, records []domain.InventoryRecord) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, WriteLedger(f, records))
	require.NoError(t, f.Close())
	return path
}

func TestPipelineValidate(t *testing.T) {
	dir := t.TempDir()
	p := NewPipeline(Config{})

	csvPath := writeLedgerFile(t, dir, "ok.csv", nil)
	assert.NoError(t, p.Validate(csvPath))

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("x"), 0644))
	assert.Error(t, p.Validate(txt))

	assert.Error(t, p.Validate(dir))
	assert.Error(t, p.Validate(filepath.Join(dir, "missing.csv")))
}

func TestPipelineRunWritesOutputs(t *testing.T) {
	dir := t.TempDir()
	input := writeLedgerFile(t, dir, "store_a.csv", analyzeFixture())
	outDir := filepath.Join(dir, "out")
	debugDir := filepath.Join(dir, "debug")

	p := NewPipeline(Config{
		Options:            Options{ExpiryWindowDays: 10, Workers: 2},
		EvaluationDate:     testEvalDate,
		OutputDir:          outDir,
		IntermediateDir:    debugDir,
		PersistDebugLayers: true,
		WritePDF:           true,
	})
	assert.Equal(t, "clearance", p.Name())
	assert.Equal(t, testEvalDate, p.EvaluationDate())

	result, err := p.Process(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, 4, result.TotalRows)
	assert.Equal(t, 3, result.Selected)
	assert.Equal(t, []string{
		filepath.Join(outDir, "store_a_analyzed.csv"),
		filepath.Join(outDir, "store_a_clearance_suggestions.csv"),
		filepath.Join(outDir, "store_a_clearance_report.pdf"),
	}, result.Outputs)

	suggestions, err := os.ReadFile(result.Outputs[1])
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(suggestions)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "P1,"))
	assert.True(t, strings.HasPrefix(lines[2], "P4,"))
	assert.True(t, strings.HasPrefix(lines[3], "P3,"))

	pdf, err := os.ReadFile(result.Outputs[2])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF"))

	assert.FileExists(t, filepath.Join(debugDir, "1_loaded", "20240120", "store_a.csv"))
	assert.FileExists(t, filepath.Join(debugDir, "2_with_flags", "20240120", "store_a.csv"))
}

func TestPipelineRunIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	input := writeLedgerFile(t, dir, "store_b.csv", analyzeFixture())
	p := NewPipeline(Config{EvaluationDate: testEvalDate, OutputDir: filepath.Join(dir, "out")})

	first, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	analyzed1, err := os.ReadFile(first.Outputs[0])
	require.NoError(t, err)

	second, err := p.Run(context.Background(), input)
	require.NoError(t, err)
	analyzed2, err := os.ReadFile(second.Outputs[0])
	require.NoError(t, err)

	assert.Equal(t, analyzed1, analyzed2)
	assert.Equal(t, first.ExpiringSoon, second.ExpiringSoon)
	assert.Equal(t, 2, first.ExpiringSoon)
	assert.Equal(t, 2, first.Overstocked)
}

func TestPipelineRunFailsOnBadLedger(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(input, []byte(ledgerHeader+"P1,Milk,Food,many,0,2024-01-15,3,1,2\n"), 0644))
	outDir := filepath.Join(dir, "out")

	p := NewPipeline(Config{EvaluationDate: testEvalDate, OutputDir: outDir})
	_, err := p.Process(context.Background(), input)
	assert.ErrorIs(t, err, domain.ErrDataFormat)
	assert.NoFileExists(t, filepath.Join(outDir, "bad_analyzed.csv"))
}

func TestNewPipelineDefaultsToUTCDate(t *testing.T) {
	for _, loc := range farZones {
		t.Run(loc.String(), func(t *testing.T) {
			withLocalZone(t, loc)

			var p *Pipeline
			want := utcDates(func() { p = NewPipeline(Config{}) })
			assert.Contains(t, want, p.EvaluationDate())
		})
	}
}

func TestReportDocumentCountsEveryEnrichedRecord(t *testing.T) {
	records := []domain.InventoryRecord{
		record("A", "Food", 100, 0, daysFromEval(-5), 3), // expired and unsold
		record("B", "Toys", 40, 2, testEvalDate, 300),    // overstocked
		record("C", "Toys", 1, 5, testEvalDate, 300),     // healthy
	}
	result, err := Analyze(context.Background(), records, testEvalDate, Options{ExpiryWindowDays: 10, Category: "Toys"})
	require.NoError(t, err)

	doc := ReportDocument(filepath.Join("in", "ledger.csv"), result, 0, "Toys")
	assert.Equal(t, "ledger.csv", doc.Source)
	assert.Equal(t, testEvalDate, doc.EvaluationDate)
	assert.Equal(t, domain.DefaultExpiryWindowDays, doc.ExpiryWindowDays)
	assert.Equal(t, "Toys", doc.Category)
	assert.Equal(t, 3, doc.TotalRecords)
	assert.Equal(t, 1, doc.ExpiringSoon)
	assert.Equal(t, 2, doc.Overstocked)
	assert.Equal(t, []string{"B"}, suggestionIDs(doc.Suggestions))
}
