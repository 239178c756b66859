package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/domain/catalog/category"
	"posrail/internal/infrastructure/storage/postgres"
)

const categoriesTable = "cat_categories"

var categoryColumns = []string{
	"id", "version", "created_at", "updated_at",
	"name", "description",
}

// CategoryRepo implements category.Repository.
type CategoryRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewCategoryRepo creates a new category repository.
func NewCategoryRepo(txManager *postgres.TxManager) *CategoryRepo {
	return &CategoryRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ category.Repository = (*CategoryRepo)(nil)

func (r *CategoryRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(categoryColumns...).From(categoriesTable)
}

// Create inserts a new category.
func (r *CategoryRepo) Create(ctx context.Context, c *category.Category) error {
	q := r.builder.Insert(categoriesTable).
		Columns(categoryColumns...).
		Values(c.ID, c.Version, c.CreatedAt, c.UpdatedAt, c.Name, c.Description)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "category", c.ID)
	}
	return nil
}

// Update persists category changes.
func (r *CategoryRepo) Update(ctx context.Context, c *category.Category) error {
	c.Touch()
	q := r.builder.Update(categoriesTable).
		Set("version", c.Version).
		Set("updated_at", c.UpdatedAt).
		Set("name", c.Name).
		Set("description", c.Description).
		Where(squirrel.Eq{"id": c.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "category", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", c.ID)
	}
	return nil
}

// GetByID retrieves a category.
func (r *CategoryRepo) GetByID(ctx context.Context, categoryID id.ID) (*category.Category, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": categoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c category.Category
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "category", categoryID)
	}
	return &c, nil
}

// GetByName retrieves a category by exact name.
func (r *CategoryRepo) GetByName(ctx context.Context, name string) (*category.Category, error) {
	q := r.baseSelect().Where(squirrel.Eq{"name": name}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var c category.Category
	if err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &c, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "category", name)
	}
	return &c, nil
}

// List retrieves all categories, name-ordered.
func (r *CategoryRepo) List(ctx context.Context) ([]*category.Category, error) {
	q := r.baseSelect().OrderBy("name ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var items []*category.Category
	if err := pgxscan.Select(ctx, r.txManager.GetQuerier(ctx), &items, sql, args...); err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	return items, nil
}

// Delete removes a category.
func (r *CategoryRepo) Delete(ctx context.Context, categoryID id.ID) error {
	q := r.builder.Delete(categoriesTable).Where(squirrel.Eq{"id": categoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "category", categoryID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("category", categoryID)
	}
	return nil
}
