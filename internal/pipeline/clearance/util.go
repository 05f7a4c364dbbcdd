package clearance

import (
	"path/filepath"
	"strings"
)

// formatFlag renders a boolean the way the analyzed ledger has always spelled it.
func formatFlag(v bool) string {
	if v {
		return "True"
	}
	return "False"
}

// outputBaseName derives the prefix used for every output of an input ledger,
// e.g. "data/store_a.csv" -> "store_a".
func outputBaseName(inputFile string) string {
	base := filepath.Base(inputFile)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// AnalyzedFileName is the enriched ledger output name for inputFile.
func AnalyzedFileName(inputFile string) string {
	return outputBaseName(inputFile) + "_analyzed.csv"
}

// SuggestionsFileName is the suggestion list output name for inputFile.
func SuggestionsFileName(inputFile string) string {
	return outputBaseName(inputFile) + "_clearance_suggestions.csv"
}

// ReportFileName is the PDF report output name for inputFile.
func ReportFileName(inputFile string) string {
	return outputBaseName(inputFile) + "_clearance_report.pdf"
}
