package budget

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=budget
type Repository interface {
	CreateBudget(ctx context.Context, b *Budget) error
	GetBudget(ctx context.Context, id uuid.UUID) (*Budget, error)
	GetActiveBudget(ctx context.Context) (*Budget, error)
	ActivateBudget(ctx context.Context, id uuid.UUID) error
	CreateCategory(ctx context.Context, c *Category) error
	ListUtilization(ctx context.Context, budgetID uuid.UUID) ([]Utilization, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	AcademicYear string
	TotalAmount  decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Budget, error) {
	b := &Budget{
		AcademicYear: params.AcademicYear,
		TotalAmount:  params.TotalAmount,
		StartDate:    params.StartDate,
		EndDate:      params.EndDate,
		Status:       StatusDraft,
	}
	if err := s.repo.CreateBudget(ctx, b); err != nil {
		return nil, err
	}

	return b, nil
}

func (s *Service) AddCategory(ctx context.Context, budgetID uuid.UUID, name string, allocated decimal.Decimal) (*Category, error) {
	if _, err := s.repo.GetBudget(ctx, budgetID); err != nil {
		return nil, err
	}

	c := &Category{
		BudgetID:  budgetID,
		Name:      name,
		Allocated: allocated,
	}
	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, err
	}

	return c, nil
}

// Activate marks the budget as the single ACTIVE one. The store archives
// any previously active budget in the same transaction, so at most one
// budget is ever active.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetBudget(ctx, id); err != nil {
		return err
	}

	return s.repo.ActivateBudget(ctx, id)
}

func (s *Service) Active(ctx context.Context) (*Budget, error) {
	return s.repo.GetActiveBudget(ctx)
}

// ListCategories returns the active budget's categories with spent and
// remaining recomputed from approved expenses. A missing active budget is
// not an error; it yields an empty list.
func (s *Service) ListCategories(ctx context.Context) ([]Utilization, error) {
	active, err := s.repo.GetActiveBudget(ctx)
	if err != nil {
		if errors.Is(err, ErrNoActiveBudget) {
			return []Utilization{}, nil
		}

		return nil, err
	}

	return s.repo.ListUtilization(ctx, active.ID)
}
