package clearance

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/andresuchdata/clearance-agent/internal/domain"
)

// EnrichedHeaders is the column order of the analyzed ledger output.
var EnrichedHeaders = []string{
	domain.ColProductID,
	domain.ColProductName,
	domain.ColCategory,
	domain.ColStockQuantity,
	domain.ColSoldQuantity,
	domain.ColPurchaseDate,
	domain.ColShelfLifeDays,
	domain.ColCostPrice,
	domain.ColSellingPrice,
	domain.ColExpiryDate,
	domain.ColDaysToExpiry,
	domain.ColStockToSaleRatio,
	domain.ColExpiringSoon,
	domain.ColOverstockedLowSales,
}

// SuggestionHeaders is the column order of the clearance suggestions output.
var SuggestionHeaders = []string{
	domain.ColProductID,
	domain.ColProductName,
	domain.ColCategory,
	domain.ColStockQuantity,
	domain.ColSoldQuantity,
	domain.ColDaysToExpiry,
	domain.ColReason,
}

// WriteEnriched writes records as CSV with EnrichedHeaders.
func WriteEnriched(w io.Writer, records []domain.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(EnrichedHeaders); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(enrichedRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSuggestions writes suggestions as CSV with SuggestionHeaders.
func WriteSuggestions(w io.Writer, suggestions []domain.ClearanceSuggestion) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SuggestionHeaders); err != nil {
		return err
	}
	for _, s := range suggestions {
		rec := []string{
			s.ProductID,
			s.ProductName,
			s.Category,
			strconv.Itoa(s.StockQuantity),
			strconv.Itoa(s.SoldQuantity),
			strconv.Itoa(s.DaysToExpiry),
			s.Reason,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLedger writes records as CSV with the input ledger columns, in the form
// LoadLedger reads back.
func WriteLedger(w io.Writer, records []domain.InventoryRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(domain.RequiredColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write(inventoryRow(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecommendationHeaders is the column order of the recommendation table shown
// on dashboards and handed to the question-answering assistant.
var RecommendationHeaders = []string{
	domain.ColProductID,
	domain.ColProductName,
	domain.ColCategory,
	domain.ColStockQuantity,
	domain.ColSoldQuantity,
	domain.ColPurchaseDate,
	domain.ColExpiryDate,
	domain.ColDaysToExpiry,
	domain.ColStockToSaleRatio,
	domain.ColCostPrice,
	domain.ColSellingPrice,
}

// WriteRecommendations writes records as CSV with RecommendationHeaders.
func WriteRecommendations(w io.Writer, records []domain.EnrichedRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RecommendationHeaders); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.ProductID,
			r.ProductName,
			r.Category,
			strconv.Itoa(r.StockQuantity),
			strconv.Itoa(r.SoldQuantity),
			r.PurchaseDate.Format(domain.DateLayout),
			r.ExpiryDate.Format(domain.DateLayout),
			strconv.Itoa(r.DaysToExpiry),
			r.StockToSaleRatio.String(),
			r.CostPrice.String(),
			r.SellingPrice.String(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RecommendationTable serializes a selected subset as CSV text.
func RecommendationTable(records []domain.EnrichedRecord) (string, error) {
	var buf bytes.Buffer
	if err := WriteRecommendations(&buf, records); err != nil {
		return "", fmt.Errorf("serialize recommendations: %w", err)
	}
	return buf.String(), nil
}

func inventoryRow(r domain.InventoryRecord) []string {
	return []string{
		r.ProductID,
		r.ProductName,
		r.Category,
		strconv.Itoa(r.StockQuantity),
		strconv.Itoa(r.SoldQuantity),
		r.PurchaseDate.Format(domain.DateLayout),
		strconv.Itoa(r.ShelfLifeDays),
		r.CostPrice.String(),
		r.SellingPrice.String(),
	}
}

func enrichedRow(r domain.EnrichedRecord) []string {
	return append(inventoryRow(r.InventoryRecord),
		r.ExpiryDate.Format(domain.DateLayout),
		strconv.Itoa(r.DaysToExpiry),
		r.StockToSaleRatio.String(),
		formatFlag(r.ExpiringSoon),
		formatFlag(r.OverstockedLowSales),
	)
}

// WriteFileAtomic creates path (and its directory) and fills it with write.
// Content goes to a temporary sibling first and is renamed into place.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
