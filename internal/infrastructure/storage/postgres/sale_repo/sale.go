// Package sale_repo provides the PostgreSQL implementation of the sale store.
package sale_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/domain/pos"
	"posrail/internal/infrastructure/storage/postgres"
)

const (
	salesTable     = "doc_sales"
	saleLinesTable = "doc_sale_lines"
)

var saleColumns = []string{
	"id", "version", "created_at", "updated_at",
	"total", "amount_given", "change", "payment_method",
	"cashier_id", "deleted_at", "deleted_by",
}

var saleLineColumns = []string{
	"sale_id", "line_no", "product_id", "product_name",
	"sale_mode", "qty_base_unit", "unit_kind", "line_total",
}

type saleLineRow struct {
	pos.SaleLine
	SaleID id.ID `db:"sale_id"`
	LineNo int   `db:"line_no"`
}

// SaleRepo implements pos.SaleRepository.
type SaleRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ pos.SaleRepository = (*SaleRepo)(nil)

func (r *SaleRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(saleColumns...).From(salesTable)
}

// Create inserts a sale and its lines.
func (r *SaleRepo) Create(ctx context.Context, s *pos.Sale) error {
	q := r.builder.Insert(salesTable).
		Columns(saleColumns...).
		Values(
			s.ID, s.Version, s.CreatedAt, s.UpdatedAt,
			s.Total, s.AmountGiven, s.Change, string(s.Payment),
			s.CashierID, s.DeletedAt, s.DeletedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build sale insert: %w", err)
	}

	querier := r.txManager.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "sale", s.ID)
	}

	lq := r.builder.Insert(saleLinesTable).Columns(saleLineColumns...)
	for i, l := range s.Lines {
		lq = lq.Values(
			s.ID, i, l.ProductID, l.ProductName,
			string(l.SaleMode), l.QtyBaseUnit, string(l.UnitKind), l.LineTotal,
		)
	}

	sql, args, err = lq.ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "sale", s.ID)
	}
	return nil
}

// GetByID retrieves a sale with its lines, deleted or not.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*pos.Sale, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": saleID})
	return r.getOne(ctx, q, saleID)
}

// GetForUpdate retrieves a sale with a pessimistic row lock.
// Must run inside a transaction; the lock serializes concurrent reversals.
func (r *SaleRepo) GetForUpdate(ctx context.Context, saleID id.ID) (*pos.Sale, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": saleID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, saleID)
}

func (r *SaleRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, saleID id.ID) (*pos.Sale, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var s pos.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &s, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "sale", saleID)
	}

	lines, err := r.loadLines(ctx, []id.ID{s.ID})
	if err != nil {
		return nil, err
	}
	s.Lines = lines[s.ID]
	return &s, nil
}

// MarkDeleted persists the soft-delete fields of an already-marked sale.
func (r *SaleRepo) MarkDeleted(ctx context.Context, s *pos.Sale) error {
	q := r.builder.Update(salesTable).
		Set("version", s.Version).
		Set("updated_at", s.UpdatedAt).
		Set("deleted_at", s.DeletedAt).
		Set("deleted_by", s.DeletedBy).
		Where(squirrel.Eq{"id": s.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete mark: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "sale", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", s.ID)
	}
	return nil
}

// List retrieves sales matching the filter, newest first, lines included.
func (r *SaleRepo) List(ctx context.Context, filter pos.SaleFilter) ([]*pos.Sale, error) {
	q := r.baseSelect().OrderBy("created_at DESC")

	if !filter.IncludeDeleted {
		q = q.Where(squirrel.Eq{"deleted_at": nil})
	}
	if filter.CashierID != nil {
		q = q.Where(squirrel.Eq{"cashier_id": *filter.CashierID})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"created_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"created_at": *filter.ToDate})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var sales []*pos.Sale
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("select sales: %w", err)
	}
	if len(sales) == 0 {
		return sales, nil
	}

	ids := make([]id.ID, 0, len(sales))
	for _, s := range sales {
		ids = append(ids, s.ID)
	}
	lines, err := r.loadLines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, s := range sales {
		s.Lines = lines[s.ID]
	}
	return sales, nil
}

// loadLines fetches lines for a set of sales, keyed by sale id and ordered
// by line number within each sale.
func (r *SaleRepo) loadLines(ctx context.Context, saleIDs []id.ID) (map[id.ID][]pos.SaleLine, error) {
	q := r.builder.Select(saleLineColumns...).
		From(saleLinesTable).
		Where(squirrel.Eq{"sale_id": saleIDs}).
		OrderBy("sale_id", "line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build lines select: %w", err)
	}

	var rows []saleLineRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select sale lines: %w", err)
	}

	out := make(map[id.ID][]pos.SaleLine, len(saleIDs))
	for _, row := range rows {
		out[row.SaleID] = append(out[row.SaleID], row.SaleLine)
	}
	return out, nil
}
