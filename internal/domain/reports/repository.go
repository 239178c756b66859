package reports

import (
	"context"
	"time"
)

// Repository defines report data access interface.
type Repository interface {
	GetFinancialReport(ctx context.Context, filter FinancialReportFilter) (*FinancialReport, error)
	GetProductSalesReport(ctx context.Context, filter ProductSalesFilter) (*ProductSalesReport, error)
	GetCapitalReport(ctx context.Context, asOf time.Time) (*CapitalReport, error)
}
