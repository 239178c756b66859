package product

import (
	"context"

	"posrail/internal/core/id"
)

// ListFilter narrows product listings.
type ListFilter struct {
	CategoryID *id.ID
	Search     string
	Limit      int
	Offset     int
}

// Repository defines persistence operations for products.
//
// GetForUpdate must acquire a row-level lock so that the stock check and the
// subsequent UpdateStock are atomic with respect to concurrent writers; the
// implementation surfaces lock contention as a concurrent-modification error.
type Repository interface {
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error

	// UpdateStock persists only the stock quantity and derived value,
	// bumping the entity version.
	UpdateStock(ctx context.Context, p *Product) error

	GetByID(ctx context.Context, productID id.ID) (*Product, error)

	// GetForUpdate retrieves a product with a pessimistic row lock.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, productID id.ID) (*Product, error)

	GetByBarcode(ctx context.Context, barcode string) (*Product, error)
	List(ctx context.Context, filter ListFilter) ([]*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
	Delete(ctx context.Context, productID id.ID) error
	CountByCategory(ctx context.Context, categoryID id.ID) (int, error)
}
