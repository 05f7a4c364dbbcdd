package drive

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

// ledgerSheet picks the sheet whose first row carries a product_id column,
// falling back to the first sheet of the workbook.
func ledgerSheet(f *excelize.File) (string, [][]string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, fmt.Errorf("workbook has no sheets")
	}

	var firstRows [][]string
	for i, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if i == 0 {
			firstRows = rows
		}
		if len(rows) == 0 {
			continue
		}
		for _, h := range rows[0] {
			if strings.TrimSpace(h) == domain.ColProductID {
				return sheet, rows, nil
			}
		}
	}
	return sheets[0], firstRows, nil
}

// convertXLSXToCSV writes the ledger sheet of an XLSX workbook as CSV. Every row
// is padded or cut to the header width and blank rows are dropped.
func convertXLSXToCSV(xlsxPath, csvPath string) error {
	f, err := excelize.OpenFile(xlsxPath)
	if err != nil {
		return fmt.Errorf("open workbook %s: %w", xlsxPath, err)
	}
	defer f.Close()

	sheet, rows, err := ledgerSheet(f)
	if err != nil {
		return fmt.Errorf("%s: %w", xlsxPath, err)
	}

	out, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", csvPath, err)
	}
	defer out.Close()

	w := csv.NewWriter(out)
	width := 0
	for i, row := range rows {
		if i == 0 {
			width = len(row)
		} else if blank(row) {
			continue
		}
		record := make([]string, width)
		copy(record, row)
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write %s: %w", csvPath, err)
	}
	return out.Close()
}

func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
