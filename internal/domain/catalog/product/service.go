package product

import (
	"context"
	"fmt"

	"posrail/internal/core/apperror"
	"posrail/internal/core/id"
	"posrail/internal/core/tx"
	"posrail/internal/core/types"
	"posrail/pkg/logger"
)

// OpeningStockRecorder appends the opening-stock ledger entry for a newly
// created product. Implemented by the stock service; defined here so the
// catalog does not depend on the stock package.
type OpeningStockRecorder interface {
	RecordOpeningStock(ctx context.Context, productID id.ID, qty types.BaseQty, unitKind types.UnitKind, userID id.ID) error
}

// Service provides business logic for the product catalog.
//
// Catalog updates never touch StockBaseUnit: stock is mutated only by the
// transaction coordinator and the stock service.
type Service struct {
	repo      Repository
	opening   OpeningStockRecorder
	txManager tx.Manager
}

// NewService creates a new product catalog service.
func NewService(repo Repository, opening OpeningStockRecorder, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		opening:   opening,
		txManager: txManager,
	}
}

// Create validates and persists a new product. A positive opening stock is
// recorded as an `in` movement so the ledger reconciles from day one.
func (s *Service) Create(ctx context.Context, p *Product, actorID id.ID) error {
	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkBarcodeUnique(ctx, p); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create product: %w", err)
		}
		if p.StockBaseUnit > 0 && s.opening != nil {
			if err := s.opening.RecordOpeningStock(ctx, p.ID, p.StockBaseUnit, p.UnitKind, actorID); err != nil {
				return fmt.Errorf("record opening stock: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "product created", "id", p.ID, "name", p.Name)
	return nil
}

// Update validates and persists catalog changes.
//
// The incoming product's stock quantity is ignored: the stored quantity is
// kept and the derived value is recomputed against the (possibly changed)
// cost price, so no catalog edit can bypass the derivation or mutate stock.
func (s *Service) Update(ctx context.Context, p *Product) error {
	existing, err := s.repo.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}

	p.StockBaseUnit = existing.StockBaseUnit
	p.RecalculateStockValue()

	if err := p.Validate(ctx); err != nil {
		return err
	}

	if err := s.checkBarcodeUnique(ctx, p); err != nil {
		return err
	}

	return s.repo.Update(ctx, p)
}

// GetByID retrieves a product.
func (s *Service) GetByID(ctx context.Context, productID id.ID) (*Product, error) {
	return s.repo.GetByID(ctx, productID)
}

// GetByBarcode retrieves a product by its barcode (register scanner lookup).
func (s *Service) GetByBarcode(ctx context.Context, barcode string) (*Product, error) {
	return s.repo.GetByBarcode(ctx, barcode)
}

// List retrieves products with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Product, error) {
	return s.repo.List(ctx, filter)
}

// ListAll retrieves every product (alert evaluation, capital report).
func (s *Service) ListAll(ctx context.Context) ([]*Product, error) {
	return s.repo.ListAll(ctx)
}

// Delete removes a product from the catalog. Sales and movements that
// reference it keep their product id; history readers tolerate the orphan.
func (s *Service) Delete(ctx context.Context, productID id.ID) error {
	if _, err := s.repo.GetByID(ctx, productID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, productID)
}

func (s *Service) checkBarcodeUnique(ctx context.Context, p *Product) error {
	if p.Barcode == nil || *p.Barcode == "" {
		return nil
	}
	existing, err := s.repo.GetByBarcode(ctx, *p.Barcode)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != p.ID {
		return apperror.NewDuplicate("product", "barcode", *p.Barcode)
	}
	return nil
}
