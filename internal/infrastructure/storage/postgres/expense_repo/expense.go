// Package expense_repo provides the PostgreSQL implementation of the
// expense store.
package expense_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/shopspring/decimal"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/expense"
	"posrail/internal/infrastructure/storage/postgres"
)

const expensesTable = "doc_expenses"

var expenseColumns = []string{
	"id", "version", "created_at", "updated_at",
	"description", "amount", "category", "spent_at", "created_by",
}

// ExpenseRepo implements expense.Repository.
type ExpenseRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewExpenseRepo creates a new expense repository.
func NewExpenseRepo(txManager *postgres.TxManager) *ExpenseRepo {
	return &ExpenseRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ expense.Repository = (*ExpenseRepo)(nil)

func (r *ExpenseRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(expenseColumns...).From(expensesTable)
}

// Create inserts a new expense.
func (r *ExpenseRepo) Create(ctx context.Context, e *expense.Expense) error {
	q := r.builder.Insert(expensesTable).
		Columns(expenseColumns...).
		Values(
			e.ID, e.Version, e.CreatedAt, e.UpdatedAt,
			e.Description, e.Amount, e.Category, e.SpentAt, e.CreatedBy,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "expense", e.ID)
	}
	return nil
}

// Update persists expense changes.
func (r *ExpenseRepo) Update(ctx context.Context, e *expense.Expense) error {
	q := r.builder.Update(expensesTable).
		Set("version", e.Version).
		Set("updated_at", e.UpdatedAt).
		Set("description", e.Description).
		Set("amount", e.Amount).
		Set("category", e.Category).
		Set("spent_at", e.SpentAt).
		Where(squirrel.Eq{"id": e.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "expense", e.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", e.ID)
	}
	return nil
}

// GetByID retrieves an expense.
func (r *ExpenseRepo) GetByID(ctx context.Context, expenseID id.ID) (*expense.Expense, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": expenseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var e expense.Expense
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &e, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "expense", expenseID)
	}
	return &e, nil
}

// List retrieves expenses matching the filter, newest first.
func (r *ExpenseRepo) List(ctx context.Context, filter expense.Filter) ([]*expense.Expense, error) {
	q := r.baseSelect().OrderBy("spent_at DESC")

	if filter.Category != nil {
		q = q.Where(squirrel.Eq{"category": *filter.Category})
	}
	if filter.FromDate != nil {
		q = q.Where(squirrel.GtOrEq{"spent_at": *filter.FromDate})
	}
	if filter.ToDate != nil {
		q = q.Where(squirrel.Lt{"spent_at": *filter.ToDate})
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

	var items []*expense.Expense
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select expenses: %w", err)
	}
	return items, nil
}

// SumAmount totals expenses in a half-open [from, to) period.
func (r *ExpenseRepo) SumAmount(ctx context.Context, from, to time.Time) (types.Money, error) {
	q := r.builder.Select("COALESCE(SUM(amount), 0)").
		From(expensesTable).
		Where(squirrel.GtOrEq{"spent_at": from}).
		Where(squirrel.Lt{"spent_at": to})

	sql, args, err := q.ToSql()
	if err != nil {
		return decimal.Zero, fmt.Errorf("build sum: %w", err)
	}

	var total decimal.Decimal
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// Delete removes an expense.
func (r *ExpenseRepo) Delete(ctx context.Context, expenseID id.ID) error {
	q := r.builder.Delete(expensesTable).Where(squirrel.Eq{"id": expenseID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "expense", expenseID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("expense", expenseID)
	}
	return nil
}
