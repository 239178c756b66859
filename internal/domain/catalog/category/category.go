// Package category provides the product category catalog.
package category

import (
	"context"

	"posrail/internal/core/apperror"
	"posrail/internal/core/entity"
	"posrail/internal/core/id"
)

// Category groups products for catalog browsing and reporting.
type Category struct {
	entity.Base

	Name        string  `db:"name" json:"name"`
	Description *string `db:"description" json:"description,omitempty"`
}

// New creates a category.
func New(name string) *Category {
	return &Category{
		Base: entity.NewBase(),
		Name: name,
	}
}

// Validate implements entity self-validation.
func (c *Category) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("category name is required").
			WithDetail("field", "name")
	}
	return nil
}

// Repository defines persistence operations for categories.
type Repository interface {
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	GetByID(ctx context.Context, categoryID id.ID) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Delete(ctx context.Context, categoryID id.ID) error
}

// ProductCounter reports how many products reference a category.
// Implemented by the product repository.
type ProductCounter interface {
	CountByCategory(ctx context.Context, categoryID id.ID) (int, error)
}

// Service provides business logic for categories.
type Service struct {
	repo     Repository
	products ProductCounter
}

// NewService creates a category service.
func NewService(repo Repository, products ProductCounter) *Service {
	return &Service{repo: repo, products: products}
}

// Create validates and persists a category, rejecting duplicate names.
func (s *Service) Create(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if existing, err := s.repo.GetByName(ctx, c.Name); err == nil && existing != nil {
		return apperror.NewDuplicate("category", "name", c.Name)
	} else if err != nil && !apperror.IsNotFound(err) {
		return err
	}
	return s.repo.Create(ctx, c)
}

// Update validates and persists category changes.
func (s *Service) Update(ctx context.Context, c *Category) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, c.ID); err != nil {
		return err
	}
	return s.repo.Update(ctx, c)
}

// GetByID retrieves a category.
func (s *Service) GetByID(ctx context.Context, categoryID id.ID) (*Category, error) {
	return s.repo.GetByID(ctx, categoryID)
}

// List retrieves all categories.
func (s *Service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

// Delete removes a category unless products still reference it.
func (s *Service) Delete(ctx context.Context, categoryID id.ID) error {
	if _, err := s.repo.GetByID(ctx, categoryID); err != nil {
		return err
	}

	count, err := s.products.CountByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperror.NewConflict("category still has products").
			WithDetail("product_count", count)
	}

	return s.repo.Delete(ctx, categoryID)
}
