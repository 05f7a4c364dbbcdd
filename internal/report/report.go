// Package report renders the printable clearance suggestion list.
//
// Page layout (A4):
//
//	header:  title + evaluation date | window + category
//	summary: records analyzed, expiring soon, overstocked, suggested
//	table:   Product | Name | Category | Stock | Sold | Days | Reason
package report

import (
	"fmt"
	"strconv"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorAlert   = &props.Color{Red: 170, Green: 30, Blue: 30}
)

// Document is everything the report shows.
type Document struct {
	Title            string
	Source           string
	EvaluationDate   time.Time
	ExpiryWindowDays int
	Category         string
	TotalRecords     int
	ExpiringSoon     int
	Overstocked      int
	Suggestions      []domain.ClearanceSuggestion
}

// Generate renders doc as a PDF and returns its bytes.
func Generate(doc Document) ([]byte, error) {
	title := doc.Title
	if title == "" {
		title = "Clearance Suggestions"
	}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(title, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(headerRow(title, doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(summaryRow(doc))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	if len(doc.Suggestions) == 0 {
		m.AddRows(row.New(10).Add(col.New(12).Add(
			text.New("No products meet the clearance criteria.", props.Text{
				Size: 9, Top: 3, Color: colorGray, Align: align.Center,
			}),
		)))
	} else {
		m.AddRows(tableHeaderRow())
		m.AddRows(tableRows(doc.Suggestions)...)
	}

	pdf, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("report: generate pdf: %w", err)
	}
	return pdf.GetBytes(), nil
}

func headerRow(title string, doc Document) core.Row {
	category := doc.Category
	if category == "" {
		category = domain.AllCategories
	}
	left := []core.Component{
		text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
	}
	if doc.Source != "" {
		left = append(left, text.New("Source: "+doc.Source, props.Text{Size: 8, Top: 9, Color: colorGray}))
	}

	return row.New(16).Add(
		col.New(7).Add(left...),
		col.New(5).Add(
			text.New("As of "+doc.EvaluationDate.Format(domain.DateLayout), props.Text{
				Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1,
			}),
			text.New(fmt.Sprintf("Expiry window: %d days", doc.ExpiryWindowDays), props.Text{
				Size: 8, Align: align.Right, Top: 6, Color: colorGray,
			}),
			text.New("Category: "+category, props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func summaryRow(doc Document) core.Row {
	cell := func(label string, value int) core.Col {
		return col.New(3).Add(
			text.New(label, props.Text{Size: 7, Color: colorGray, Top: 1, Align: align.Center}),
			text.New(strconv.Itoa(value), props.Text{Style: fontstyle.Bold, Size: 11, Top: 5, Align: align.Center}),
		)
	}
	return row.New(13).Add(
		cell("Records analyzed", doc.TotalRecords),
		cell("Expiring soon", doc.ExpiringSoon),
		cell("Overstocked", doc.Overstocked),
		cell("Suggested", len(doc.Suggestions)),
	)
}

func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorPrimary, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Product", 1, align.Left),
		h("Name", 3, align.Left),
		h("Category", 2, align.Left),
		h("Stock", 1, align.Right),
		h("Sold", 1, align.Right),
		h("Days", 1, align.Right),
		h("Reason", 3, align.Left),
	)
}

func tableRows(suggestions []domain.ClearanceSuggestion) []core.Row {
	rows := make([]core.Row, 0, len(suggestions))
	for _, s := range suggestions {
		daysProps := props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1}
		if s.DaysToExpiry < 0 {
			daysProps.Color = colorAlert
		}
		rows = append(rows, row.New(7).Add(
			col.New(1).Add(text.New(s.ProductID, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(3).Add(text.New(s.ProductName, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(2).Add(text.New(s.Category, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(strconv.Itoa(s.StockQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(strconv.Itoa(s.SoldQuantity), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(strconv.Itoa(s.DaysToExpiry), daysProps)),
			col.New(3).Add(text.New(s.Reason, props.Text{Size: 8, Top: 1, Left: 1})),
		))
	}
	return rows
}
