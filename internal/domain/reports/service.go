package reports

import (
	"context"
	"fmt"
	"time"
)

// Service provides report generation operations.
type Service struct {
	repo Repository
}

// NewService creates a new reports service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetFinancial generates the financial report for a period.
func (s *Service) GetFinancial(ctx context.Context, filter FinancialReportFilter) (*FinancialReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	report, err := s.repo.GetFinancialReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get financial report: %w", err)
	}
	return report, nil
}

// GetProductSales generates the per-product sales report.
func (s *Service) GetProductSales(ctx context.Context, filter ProductSalesFilter) (*ProductSalesReport, error) {
	if filter.FromDate.IsZero() || filter.ToDate.IsZero() {
		return nil, fmt.Errorf("fromDate and toDate are required")
	}
	if filter.FromDate.After(filter.ToDate) {
		return nil, fmt.Errorf("fromDate must be before toDate")
	}

	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Limit > 1000 {
		filter.Limit = 1000
	}

	report, err := s.repo.GetProductSalesReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get product sales report: %w", err)
	}
	return report, nil
}

// GetCapital generates the capital snapshot report.
func (s *Service) GetCapital(ctx context.Context) (*CapitalReport, error) {
	report, err := s.repo.GetCapitalReport(ctx, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("get capital report: %w", err)
	}
	return report, nil
}

// GetDailySummary condenses one business day from the other reports.
func (s *Service) GetDailySummary(ctx context.Context, day time.Time) (*DailySummary, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	to := from.Add(24 * time.Hour)

	fin, err := s.repo.GetFinancialReport(ctx, FinancialReportFilter{FromDate: from, ToDate: to})
	if err != nil {
		return nil, fmt.Errorf("get daily financial figures: %w", err)
	}

	top, err := s.repo.GetProductSalesReport(ctx, ProductSalesFilter{
		FromDate: from,
		ToDate:   to,
		Limit:    5,
	})
	if err != nil {
		return nil, fmt.Errorf("get daily top products: %w", err)
	}

	return &DailySummary{
		Date:          from,
		SalesCount:    fin.SalesCount,
		Revenue:       fin.Revenue,
		Expenses:      fin.Expenses,
		ReversedCount: fin.ReversedCount,
		TopProducts:   top.Items,
	}, nil
}
