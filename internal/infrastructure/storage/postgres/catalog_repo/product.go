// Package catalog_repo provides PostgreSQL implementations for catalog repositories.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/internal/domain/catalog/product"
	"posrail/internal/infrastructure/storage/postgres"
)

const productsTable = "cat_products"

var productColumns = []string{
	"id", "version", "created_at", "updated_at",
	"name", "barcode", "category_id",
	"sale_modes", "unit_kind",
	"stock_base_unit", "min_alert_stock",
	"price_per_unit", "price_per_kg", "price_per_cup",
	"cup_weight_grams", "cost_price", "total_stock_value",
}

// productRow mirrors the cat_products table; sale_modes is a text array.
type productRow struct {
	product.Product
	SaleModesRaw []string `db:"sale_modes"`
}

func (r *productRow) toDomain() *product.Product {
	p := r.Product
	p.SaleModes = make([]types.SaleMode, 0, len(r.SaleModesRaw))
	for _, m := range r.SaleModesRaw {
		p.SaleModes = append(p.SaleModes, types.SaleMode(m))
	}
	return &p
}

func saleModesRaw(p *product.Product) []string {
	raw := make([]string, 0, len(p.SaleModes))
	for _, m := range p.SaleModes {
		raw = append(raw, string(m))
	}
	return raw
}

// ProductRepo implements product.Repository.
type ProductRepo struct {
	txManager *postgres.TxManager
	builder   squirrel.StatementBuilderType
}

// NewProductRepo creates a new product repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		txManager: txManager,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var _ product.Repository = (*ProductRepo)(nil)

func (r *ProductRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder.Select(productColumns...).From(productsTable)
}

// Create inserts a new product.
func (r *ProductRepo) Create(ctx context.Context, p *product.Product) error {
	q := r.builder.Insert(productsTable).
		Columns(productColumns...).
		Values(
			p.ID, p.Version, p.CreatedAt, p.UpdatedAt,
			p.Name, p.Barcode, p.CategoryID,
			saleModesRaw(p), string(p.UnitKind),
			p.StockBaseUnit, p.MinAlertStock,
			p.PricePerUnit, p.PricePerKg, p.PricePerCup,
			p.CupWeightGrams, p.CostPrice, p.TotalStockValue,
		)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.TranslateError(err, "product", p.ID)
	}
	return nil
}

// Update persists all catalog fields. Stock changes go through UpdateStock.
func (r *ProductRepo) Update(ctx context.Context, p *product.Product) error {
	q := r.builder.Update(productsTable).
		Set("version", p.Version).
		Set("updated_at", p.UpdatedAt).
		Set("name", p.Name).
		Set("barcode", p.Barcode).
		Set("category_id", p.CategoryID).
		Set("sale_modes", saleModesRaw(p)).
		Set("unit_kind", string(p.UnitKind)).
		Set("min_alert_stock", p.MinAlertStock).
		Set("price_per_unit", p.PricePerUnit).
		Set("price_per_kg", p.PricePerKg).
		Set("price_per_cup", p.PricePerCup).
		Set("cup_weight_grams", p.CupWeightGrams).
		Set("cost_price", p.CostPrice).
		Set("total_stock_value", p.TotalStockValue).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "product", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

// UpdateStock persists only the stock quantity and its derived value.
func (r *ProductRepo) UpdateStock(ctx context.Context, p *product.Product) error {
	p.Touch()
	q := r.builder.Update(productsTable).
		Set("version", p.Version).
		Set("updated_at", p.UpdatedAt).
		Set("stock_base_unit", p.StockBaseUnit).
		Set("total_stock_value", p.TotalStockValue).
		Where(squirrel.Eq{"id": p.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build stock update: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "product", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", p.ID)
	}
	return nil
}

// GetByID retrieves a product.
func (r *ProductRepo) GetByID(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": productID})
	return r.getOne(ctx, q, productID)
}

// GetForUpdate retrieves a product with a pessimistic row lock.
// Must run inside a transaction; lock contention surfaces as a
// concurrent-modification error via TranslateError.
func (r *ProductRepo) GetForUpdate(ctx context.Context, productID id.ID) (*product.Product, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"id": productID}).
		Suffix("FOR UPDATE")
	return r.getOne(ctx, q, productID)
}

// GetByBarcode retrieves a product by barcode.
func (r *ProductRepo) GetByBarcode(ctx context.Context, barcode string) (*product.Product, error) {
	q := r.baseSelect().Where(squirrel.Eq{"barcode": barcode})
	return r.getOne(ctx, q, barcode)
}

func (r *ProductRepo) getOne(ctx context.Context, q squirrel.SelectBuilder, key any) (*product.Product, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var row productRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &row, sql, args...); err != nil {
		return nil, postgres.TranslateError(err, "product", key)
	}
	return row.toDomain(), nil
}

// List retrieves products matching the filter, name-ordered.
func (r *ProductRepo) List(ctx context.Context, filter product.ListFilter) ([]*product.Product, error) {
	q := r.baseSelect().OrderBy("name ASC")

	if filter.CategoryID != nil {
		q = q.Where(squirrel.Eq{"category_id": *filter.CategoryID})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"name": "%" + filter.Search + "%"})
	}
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	return r.selectMany(ctx, q)
}

// ListAll retrieves every product.
func (r *ProductRepo) ListAll(ctx context.Context) ([]*product.Product, error) {
	return r.selectMany(ctx, r.baseSelect().OrderBy("name ASC"))
}

func (r *ProductRepo) selectMany(ctx context.Context, q squirrel.SelectBuilder) ([]*product.Product, error) {
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var rows []*productRow
	querier := r.txManager.GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("select products: %w", err)
	}

	items := make([]*product.Product, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toDomain())
	}
	return items, nil
}

// Delete removes a product. Historical sales and movements keep the id.
func (r *ProductRepo) Delete(ctx context.Context, productID id.ID) error {
	q := r.builder.Delete(productsTable).Where(squirrel.Eq{"id": productID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	tag, err := r.txManager.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.TranslateError(err, "product", productID)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("product", productID)
	}
	return nil
}

// CountByCategory reports how many products reference a category.
func (r *ProductRepo) CountByCategory(ctx context.Context, categoryID id.ID) (int, error) {
	q := r.builder.Select("COUNT(*)").
		From(productsTable).
		Where(squirrel.Eq{"category_id": categoryID})

	sql, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int
	row := r.txManager.GetQuerier(ctx).QueryRow(ctx, sql, args...)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return count, nil
}
