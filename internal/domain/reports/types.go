// Package reports provides report generation services.
package reports

import (
	"time"

	"posrail/internal/core/id"
	"posrail/internal/core/types"
)

// --- Financial Report ---

// FinancialReportFilter defines the reporting period.
type FinancialReportFilter struct {
	FromDate time.Time
	ToDate   time.Time
}

// FinancialReport summarizes money in and out for a period.
//
// Reversed sales are excluded from every figure: a reversal undoes the sale
// for reporting purposes as well as for stock.
type FinancialReport struct {
	FromDate time.Time `json:"fromDate"`
	ToDate   time.Time `json:"toDate"`

	Revenue       types.Money `json:"revenue"`
	CostOfGoods   types.Money `json:"costOfGoods"`
	GrossProfit   types.Money `json:"grossProfit"`
	Expenses      types.Money `json:"expenses"`
	NetProfit     types.Money `json:"netProfit"`
	SalesCount    int         `json:"salesCount"`
	ReversedCount int         `json:"reversedCount"`
}

// --- Product Sales Report ---

// ProductSalesFilter defines filter for per-product sales figures.
type ProductSalesFilter struct {
	FromDate   time.Time
	ToDate     time.Time
	CategoryID *id.ID
	Limit      int
	Offset     int
}

// ProductSalesItem is one row of the product sales report.
type ProductSalesItem struct {
	ProductID   id.ID       `json:"productId"`
	ProductName string      `json:"productName"`
	UnitKind    string      `json:"unitKind"`
	QtySold     int64       `json:"qtySoldBaseUnit"`
	Revenue     types.Money `json:"revenue"`
	SalesCount  int         `json:"salesCount"`
}

// ProductSalesReport lists products by sales performance.
type ProductSalesReport struct {
	FromDate   time.Time          `json:"fromDate"`
	ToDate     time.Time          `json:"toDate"`
	Items      []ProductSalesItem `json:"items"`
	TotalItems int                `json:"totalItems"`
}

// --- Capital Report ---

// CapitalReport is a snapshot of money tied up in the business.
type CapitalReport struct {
	AsOfDate time.Time `json:"asOfDate"`

	// StockValue is the sum of every product's derived stock value.
	StockValue types.Money `json:"stockValue"`

	// CashCollected is total revenue since the beginning, net of reversals.
	CashCollected types.Money `json:"cashCollected"`

	// ExpensesTotal is all recorded expenses since the beginning.
	ExpensesTotal types.Money `json:"expensesTotal"`

	ProductCount int `json:"productCount"`
}

// --- Daily Summary ---

// DailySummary condenses one business day.
type DailySummary struct {
	Date time.Time `json:"date"`

	SalesCount    int         `json:"salesCount"`
	Revenue       types.Money `json:"revenue"`
	Expenses      types.Money `json:"expenses"`
	ReversedCount int         `json:"reversedCount"`

	TopProducts []ProductSalesItem `json:"topProducts"`
}
