// Package ledger_repo provides the PostgreSQL implementation of the
// append-only stock movement ledger.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/stock"
	"posrail/internal/infrastructure/storage/postgres"
)

const movementsTable = "reg_stock_movements"

var movementColumns = []string{
	"id", "created_at", "product_id", "qty_change",
	"unit_kind", "type", "reason", "user_id", "related_sale_id",
}

// MovementRepo implements stock.Repository.
// The table is append-only: this repo exposes no update or delete.
type MovementRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewMovementRepo creates a new movement ledger repository.
func NewMovementRepo(txManager *postgres.TxManager) *MovementRepo {
	return &MovementRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ stock.Repository = (*MovementRepo)(nil)

// Append inserts one ledger entry.
func (r *MovementRepo) Append(ctx context.Context, m *stock.Movement) error {
	q := r.builder.Insert(movementsTable).
		Columns(movementColumns...).
		Values(
			m.ID, m.CreatedAt, m.ProductID, m.QtyChange,
			string(m.UnitKind), string(m.Type), m.Reason, m.UserID, m.RelatedSaleID,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "movement", m.ID)
	}
	return nil
}

// List retrieves movements matching the filter, newest first.
func (r *MovementRepo) List(ctx context.Context, filter stock.MovementFilter) ([]*stock.Movement, error) {
	q := r.builder.Select(movementColumns...).
		From(movementsTable).
		OrderBy("created_at DESC")

	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.Type != nil {
		q = q.Where(squirrel.Eq{"type": string(*filter.Type)})
	}
	if filter.RelatedSaleID != nil {
		q = q.Where(squirrel.Eq{"related_sale_id": *filter.RelatedSaleID})
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

	var items []*stock.Movement
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select movements: %w", err)
	}
	return items, nil
}

// SumDeltas returns the sum of all signed deltas for a product.
func (r *MovementRepo) SumDeltas(ctx context.Context, productID id.ID) (types.BaseQty, error) {
	q := r.builder.Select("COALESCE(SUM(qty_change), 0)").
		From(movementsTable).
		Where(squirrel.Eq{"product_id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build sum: %w", err)
	}

	var total int64
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("sum deltas: %w", err)
	}
	return types.BaseQty(total), nil
}
