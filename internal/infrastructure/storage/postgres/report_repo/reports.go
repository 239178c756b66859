// Package report_repo provides PostgreSQL implementation of report queries.
package report_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"posrail/internal/core/id"
	"posrail/internal/domain/reports"
	"posrail/internal/infrastructure/storage/postgres"
)

// ReportRepo implements reports.Repository with aggregate SQL.
type ReportRepo struct {
	txManager *postgres.TxManager
}

// NewReportRepo creates a new report repository.
func NewReportRepo(txManager *postgres.TxManager) *ReportRepo {
	return &ReportRepo{txManager: txManager}
}

var _ reports.Repository = (*ReportRepo)(nil)

// GetFinancialReport aggregates revenue, cost of goods and expenses for a
// period. Reversed sales are excluded from revenue and cost figures.
func (r *ReportRepo) GetFinancialReport(ctx context.Context, filter reports.FinancialReportFilter) (*reports.FinancialReport, error) {
	querier := r.txManager.GetQuerier(ctx)

	salesSQL := `
		SELECT
			COALESCE(SUM(total) FILTER (WHERE deleted_at IS NULL), 0) AS revenue,
			COUNT(*) FILTER (WHERE deleted_at IS NULL) AS sales_count,
			COUNT(*) FILTER (WHERE deleted_at IS NOT NULL) AS reversed_count
		FROM doc_sales
		WHERE created_at >= $1 AND created_at < $2
	`
	var revenue decimal.Decimal
	var salesCount, reversedCount int
	row := querier.QueryRow(ctx, salesSQL, filter.FromDate, filter.ToDate)
	if err := row.Scan(&revenue, &salesCount, &reversedCount); err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}

	// Cost of goods is valued at the product's current cost price. Lines for
	// products that were deleted since the sale contribute nothing.
	cogsSQL := `
		SELECT COALESCE(SUM(
			CASE WHEN l.unit_kind = 'grams'
				THEN (l.qty_base_unit::numeric / 1000) * p.cost_price
				ELSE l.qty_base_unit::numeric * p.cost_price
			END), 0)
		FROM doc_sale_lines l
		JOIN doc_sales s ON s.id = l.sale_id
		JOIN cat_products p ON p.id = l.product_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		  AND s.deleted_at IS NULL
	`
	var cogs decimal.Decimal
	if err := querier.QueryRow(ctx, cogsSQL, filter.FromDate, filter.ToDate).Scan(&cogs); err != nil {
		return nil, fmt.Errorf("aggregate cost of goods: %w", err)
	}

	expensesSQL := `
		SELECT COALESCE(SUM(amount), 0)
		FROM doc_expenses
		WHERE spent_at >= $1 AND spent_at < $2
	`
	var expenses decimal.Decimal
	if err := querier.QueryRow(ctx, expensesSQL, filter.FromDate, filter.ToDate).Scan(&expenses); err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}

	grossProfit := revenue.Sub(cogs)
	return &reports.FinancialReport{
		FromDate:      filter.FromDate,
		ToDate:        filter.ToDate,
		Revenue:       revenue,
		CostOfGoods:   cogs,
		GrossProfit:   grossProfit,
		Expenses:      expenses,
		NetProfit:     grossProfit.Sub(expenses),
		SalesCount:    salesCount,
		ReversedCount: reversedCount,
	}, nil
}

// GetProductSalesReport lists per-product sales figures for a period,
// best-selling first.
func (r *ReportRepo) GetProductSalesReport(ctx context.Context, filter reports.ProductSalesFilter) (*reports.ProductSalesReport, error) {
	sql := `
		SELECT
			l.product_id,
			l.product_name,
			l.unit_kind,
			SUM(l.qty_base_unit) AS qty_sold,
			SUM(l.line_total) AS revenue,
			COUNT(DISTINCT s.id) AS sales_count
		FROM doc_sale_lines l
		JOIN doc_sales s ON s.id = l.sale_id
		WHERE s.created_at >= $1 AND s.created_at < $2
		  AND s.deleted_at IS NULL
	`
	args := []any{filter.FromDate, filter.ToDate}

	if filter.CategoryID != nil {
		sql += ` AND l.product_id IN (SELECT id FROM cat_products WHERE category_id = $3)`
		args = append(args, *filter.CategoryID)
	}

	sql += fmt.Sprintf(`
		GROUP BY l.product_id, l.product_name, l.unit_kind
		ORDER BY revenue DESC
		LIMIT %d OFFSET %d
	`, filter.Limit, filter.Offset)

	type itemRow struct {
		ProductID   id.ID           `db:"product_id"`
		ProductName string          `db:"product_name"`
		UnitKind    string          `db:"unit_kind"`
		QtySold     int64           `db:"qty_sold"`
		Revenue     decimal.Decimal `db:"revenue"`
		SalesCount  int             `db:"sales_count"`
	}

	var rows []itemRow
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("query product sales: %w", err)
	}

	report := &reports.ProductSalesReport{
		FromDate: filter.FromDate,
		ToDate:   filter.ToDate,
		Items:    make([]reports.ProductSalesItem, 0, len(rows)),
	}
	for _, row := range rows {
		report.Items = append(report.Items, reports.ProductSalesItem{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
			UnitKind:    row.UnitKind,
			QtySold:     row.QtySold,
			Revenue:     row.Revenue,
			SalesCount:  row.SalesCount,
		})
	}
	report.TotalItems = len(report.Items)
	return report, nil
}

// GetCapitalReport snapshots money tied up in the business.
func (r *ReportRepo) GetCapitalReport(ctx context.Context, asOf time.Time) (*reports.CapitalReport, error) {
	querier := r.txManager.GetQuerier(ctx)

	stockSQL := `
		SELECT COALESCE(SUM(total_stock_value), 0), COUNT(*)
		FROM cat_products
	`
	var stockValue decimal.Decimal
	var productCount int
	if err := querier.QueryRow(ctx, stockSQL).Scan(&stockValue, &productCount); err != nil {
		return nil, fmt.Errorf("aggregate stock value: %w", err)
	}

	cashSQL := `
		SELECT COALESCE(SUM(total), 0)
		FROM doc_sales
		WHERE deleted_at IS NULL
	`
	var cash decimal.Decimal
	if err := querier.QueryRow(ctx, cashSQL).Scan(&cash); err != nil {
		return nil, fmt.Errorf("aggregate revenue: %w", err)
	}

	expensesSQL := `
		SELECT COALESCE(SUM(amount), 0)
		FROM doc_expenses
	`
	var expenses decimal.Decimal
	if err := querier.QueryRow(ctx, expensesSQL).Scan(&expenses); err != nil {
		return nil, fmt.Errorf("aggregate expenses: %w", err)
	}

	return &reports.CapitalReport{
		AsOfDate:      asOf,
		StockValue:    stockValue,
		CashCollected: cash,
		ExpensesTotal: expenses,
		ProductCount:  productCount,
	}, nil
}
