// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Ledger column names, exactly as they appear in the header row of an inventory file.
const (
	ColProductID     = "product_id"
	ColProductName   = "product_name"
	ColCategory      = "category"
	ColStockQuantity = "stock_quantity"
	ColSoldQuantity  = "sold_quantity"
	ColPurchaseDate  = "purchase_date"
	ColShelfLifeDays = "shelf_life_days"
	ColCostPrice     = "cost_price"
	ColSellingPrice  = "selling_price"

	ColExpiryDate          = "expiry_date"
	ColDaysToExpiry        = "days_to_expiry"
	ColStockToSaleRatio    = "stock_to_sale_ratio"
	ColExpiringSoon        = "expiring_soon"
	ColOverstockedLowSales = "overstocked_low_sales"
	ColReason              = "reason"
)

// RequiredColumns lists the ledger columns every input file must carry.
var RequiredColumns = []string{
	ColProductID,
	ColProductName,
	ColCategory,
	ColStockQuantity,
	ColSoldQuantity,
	ColPurchaseDate,
	ColShelfLifeDays,
	ColCostPrice,
	ColSellingPrice,
}

// DateLayout is the calendar date format used on every output boundary.
const DateLayout = "2006-01-02"

// AllCategories is the category filter value that disables category restriction.
const AllCategories = "All"

// DefaultExpiryWindowDays is the clearance window used when none is supplied.
const DefaultExpiryWindowDays = 10

// Suggestion reason labels, in the order they are reported.
const (
	ReasonExpiringSoon        = "Expiring soon"
	ReasonOverstockedLowSales = "Overstocked with low sales"
)

// InventoryRecord is one line item of the inventory ledger.
type InventoryRecord struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Category      string          `json:"category"`
	StockQuantity int             `json:"stock_quantity"`
	SoldQuantity  int             `json:"sold_quantity"`
	PurchaseDate  time.Time       `json:"purchase_date"` // civil date, UTC midnight
	ShelfLifeDays int             `json:"shelf_life_days"`
	CostPrice     decimal.Decimal `json:"cost_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
}

// EnrichedRecord is an InventoryRecord with its derived temporal, ratio and flag fields.
type EnrichedRecord struct {
	InventoryRecord

	ExpiryDate          time.Time `json:"expiry_date"`
	DaysToExpiry        int       `json:"days_to_expiry"`
	StockToSaleRatio    Ratio     `json:"stock_to_sale_ratio"`
	ExpiringSoon        bool      `json:"expiring_soon"`
	OverstockedLowSales bool      `json:"overstocked_low_sales"`
}

// ClearanceSuggestion is the reasoned recommendation emitted for one selected record.
type ClearanceSuggestion struct {
	ProductID     string `json:"product_id"`
	ProductName   string `json:"product_name"`
	Category      string `json:"category"`
	StockQuantity int    `json:"stock_quantity"`
	SoldQuantity  int    `json:"sold_quantity"`
	DaysToExpiry  int    `json:"days_to_expiry"`
	Reason        string `json:"reason"`
}

// ClearanceFilter carries the interactive selection parameters supplied by a dashboard.
type ClearanceFilter struct {
	ExpiryWindowDays int    `json:"expiry_window"`
	Category         string `json:"category"`
}

// IsAllCategories reports whether the filter leaves categories unrestricted.
func (f ClearanceFilter) IsAllCategories() bool {
	return f.Category == "" || f.Category == AllCategories
}
