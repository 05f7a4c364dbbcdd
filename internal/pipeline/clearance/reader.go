package clearance

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/clearance-agent/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// purchaseDateLayouts are tried in order; any time-of-day component is dropped.
var purchaseDateLayouts = []string{
	domain.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// LoadLedger reads a whole ledger file. CSV and XLSX (first sheet) are supported.
//
// A missing required column fails with *domain.SchemaError. Every malformed field
// is collected as *domain.DataFormatError and the joined list is returned; no
// records are returned in that case, so a bad row always aborts the run.
func LoadLedger(path string) ([]domain.InventoryRecord, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err := readXLSXRows(path)
		if err != nil {
			return nil, err
		}
		return parseLedger(filepath.Base(path), rows)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open ledger %s: %w", path, err)
		}
		defer f.Close()
		return ReadLedger(f, filepath.Base(path))
	}
}

// ReadLedger parses a CSV ledger from r. source names the input in error messages.
func ReadLedger(r io.Reader, source string) ([]domain.InventoryRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", source, err)
	}
	return parseLedger(source, rows)
}

func readXLSXRows(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open xlsx ledger %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("xlsx ledger %s has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows from sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func parseLedger(source string, rows [][]string) ([]domain.InventoryRecord, error) {
	if len(rows) == 0 {
		return nil, &domain.SchemaError{Source: source, Missing: append([]string(nil), domain.RequiredColumns...)}
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		name := normalizeHeader(h)
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &domain.SchemaError{Source: source, Missing: missing}
	}

	records := make([]domain.InventoryRecord, 0, len(rows)-1)
	var errs []error
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		p := rowParser{line: i + 2, row: row, index: index}
		rec := domain.InventoryRecord{
			ProductID:     p.text(domain.ColProductID, true),
			ProductName:   p.text(domain.ColProductName, false),
			Category:      p.text(domain.ColCategory, false),
			StockQuantity: p.count(domain.ColStockQuantity),
			SoldQuantity:  p.count(domain.ColSoldQuantity),
			PurchaseDate:  p.date(domain.ColPurchaseDate),
			ShelfLifeDays: p.count(domain.ColShelfLifeDays),
			CostPrice:     p.amount(domain.ColCostPrice),
			SellingPrice:  p.amount(domain.ColSellingPrice),
		}
		if len(p.errs) > 0 {
			errs = append(errs, p.errs...)
			continue
		}
		records = append(records, rec)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return records, nil
}

// normalizeHeader strips surrounding whitespace and a UTF-8 byte order mark.
// Column names are otherwise matched exactly.
func normalizeHeader(h string) string {
	return strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowParser extracts typed fields from one ledger row, collecting every failure.
type rowParser struct {
	line  int
	row   []string
	index map[string]int
	errs  []error
}

func (p *rowParser) get(col string) string {
	idx := p.index[col]
	if idx >= len(p.row) {
		return ""
	}
	return strings.TrimSpace(p.row[idx])
}

func (p *rowParser) fail(col, value string, err error) {
	p.errs = append(p.errs, &domain.DataFormatError{Line: p.line, Column: col, Value: value, Err: err})
}

func (p *rowParser) text(col string, required bool) string {
	v := p.get(col)
	if required && v == "" {
		p.fail(col, v, errors.New("value is required"))
	}
	return v
}

// maxCount bounds quantities and shelf life so flag and date arithmetic cannot overflow.
const maxCount = math.MaxInt32

// count parses a non-negative whole number. Integral floats such as "12.0" are
// accepted since spreadsheet exports often write them that way.
func (p *rowParser) count(col string) int {
	v := p.get(col)
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
			p.fail(col, v, errors.New("not a whole number"))
			return 0
		}
		if math.Abs(f) > maxCount {
			p.fail(col, v, fmt.Errorf("exceeds maximum of %d", maxCount))
			return 0
		}
		n = int64(f)
	}
	if n < 0 {
		p.fail(col, v, errors.New("must not be negative"))
		return 0
	}
	if n > maxCount {
		p.fail(col, v, fmt.Errorf("exceeds maximum of %d", maxCount))
		return 0
	}
	return int(n)
}

func (p *rowParser) date(col string) time.Time {
	v := p.get(col)
	for _, layout := range purchaseDateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return CivilDate(t)
		}
	}
	p.fail(col, v, errors.New("not a valid calendar date"))
	return time.Time{}
}

func (p *rowParser) amount(col string) decimal.Decimal {
	v := p.get(col)
	d, err := decimal.NewFromString(v)
	if err != nil {
		p.fail(col, v, errors.New("not a decimal amount"))
		return decimal.Zero
	}
	if d.IsNegative() {
		p.fail(col, v, errors.New("must not be negative"))
		return decimal.Zero
	}
	return d
}
