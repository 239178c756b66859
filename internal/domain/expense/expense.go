// Package expense tracks operating expenses for profit reporting.
package expense

import (
	"context"
	"time"

	"posrail/internal/core/apperror"
	"posrail/internal/core/entity"
	"posrail/internal/core/id"
	"posrail/internal/core/types"
	"posrail/pkg/logger"
)

// Expense is one recorded operating cost.
type Expense struct {
	entity.Base

	Description string      `db:"description" json:"description"`
	Amount      types.Money `db:"amount" json:"amount"`
	Category    string      `db:"category" json:"category,omitempty"`
	SpentAt     time.Time   `db:"spent_at" json:"spentAt"`
	CreatedBy   id.ID       `db:"created_by" json:"createdBy"`
}

// New creates an expense.
func New(description string, amount types.Money, category string, spentAt time.Time, createdBy id.ID) *Expense {
	return &Expense{
		Base:        entity.NewBase(),
		Description: description,
		Amount:      amount,
		Category:    category,
		SpentAt:     spentAt,
		CreatedBy:   createdBy,
	}
}

// Validate implements entity self-validation.
func (e *Expense) Validate(ctx context.Context) error {
	if e.Description == "" {
		return apperror.NewValidation("description is required").
			WithDetail("field", "description")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").
			WithDetail("field", "amount")
	}
	if e.SpentAt.IsZero() {
		return apperror.NewValidation("date is required").
			WithDetail("field", "spentAt")
	}
	return nil
}

// Filter narrows expense queries.
type Filter struct {
	Category *string
	FromDate *time.Time
	ToDate   *time.Time
	Limit    int
	Offset   int
}

// Repository defines persistence operations for expenses.
type Repository interface {
	Create(ctx context.Context, e *Expense) error
	Update(ctx context.Context, e *Expense) error
	GetByID(ctx context.Context, expenseID id.ID) (*Expense, error)
	List(ctx context.Context, filter Filter) ([]*Expense, error)
	SumAmount(ctx context.Context, from, to time.Time) (types.Money, error)
	Delete(ctx context.Context, expenseID id.ID) error
}

// Service provides business logic for expenses.
type Service struct {
	repo Repository
}

// NewService creates an expense service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create validates and persists an expense.
func (s *Service) Create(ctx context.Context, e *Expense) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return err
	}
	logger.Info(ctx, "expense recorded",
		"expense_id", e.ID,
		"amount", e.Amount.String())
	return nil
}

// Update validates and persists expense changes.
func (s *Service) Update(ctx context.Context, e *Expense) error {
	if err := e.Validate(ctx); err != nil {
		return err
	}
	if _, err := s.repo.GetByID(ctx, e.ID); err != nil {
		return err
	}
	e.Touch()
	return s.repo.Update(ctx, e)
}

// GetByID retrieves an expense.
func (s *Service) GetByID(ctx context.Context, expenseID id.ID) (*Expense, error) {
	return s.repo.GetByID(ctx, expenseID)
}

// List retrieves expenses matching the filter.
func (s *Service) List(ctx context.Context, filter Filter) ([]*Expense, error) {
	return s.repo.List(ctx, filter)
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, expenseID id.ID) error {
	if _, err := s.repo.GetByID(ctx, expenseID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, expenseID)
}
