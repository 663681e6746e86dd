package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/budget"
	"github.com/smartdept/budget/internal/expense"
)

const (
	recentExpenseCount = 5
	trendMonths        = 6
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=dashboard
type Repository interface {
	TotalApprovedForBudget(ctx context.Context, budgetID uuid.UUID) (decimal.Decimal, error)
	CountByStatus(ctx context.Context, status expense.Status) (int, error)
	MonthlyApprovedTotals(ctx context.Context, from time.Time) (map[time.Time]decimal.Decimal, error)
}

// MonthlyTotal is one point on the six-month spend trend.
type MonthlyTotal struct {
	Name   string
	Amount decimal.Decimal
}

// Stats is the aggregate view over the single active budget. Every figure
// is recomputed from live rows on each call; nothing is cached.
type Stats struct {
	TotalBudget         decimal.Decimal
	TotalSpent          decimal.Decimal
	RemainingBudget     decimal.Decimal
	PendingApprovals    int
	CategoryUtilization []budget.Utilization
	MonthlyTrend        []MonthlyTotal
	RecentExpenses      []*expense.Expense
}

type Service struct {
	budgets  *budget.Service
	expenses *expense.Service
	repo     Repository
	now      func() time.Time
}

func NewService(budgets *budget.Service, expenses *expense.Service, repo Repository) *Service {
	return &Service{
		budgets:  budgets,
		expenses: expenses,
		repo:     repo,
		now:      time.Now,
	}
}

// Stats aggregates across the active budget. Spend totals are scoped to the
// active budget's categories so archived budgets never leak into the
// headline figures. With no active budget the money totals are zero but
// pending counts and recent expenses are still reported.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		TotalBudget:         decimal.Zero,
		TotalSpent:          decimal.Zero,
		RemainingBudget:     decimal.Zero,
		CategoryUtilization: []budget.Utilization{},
	}

	active, err := s.budgets.Active(ctx)
	if err != nil && !errors.Is(err, budget.ErrNoActiveBudget) {
		return nil, err
	}

	if active != nil {
		stats.TotalBudget = active.TotalAmount

		spent, err := s.repo.TotalApprovedForBudget(ctx, active.ID)
		if err != nil {
			return nil, err
		}

		stats.TotalSpent = spent
		stats.RemainingBudget = active.TotalAmount.Sub(spent)

		utilization, err := s.budgets.ListCategories(ctx)
		if err != nil {
			return nil, err
		}

		stats.CategoryUtilization = utilization
	}

	pending, err := s.repo.CountByStatus(ctx, expense.StatusPending)
	if err != nil {
		return nil, err
	}

	stats.PendingApprovals = pending

	trend, err := s.monthlyTrend(ctx)
	if err != nil {
		return nil, err
	}

	stats.MonthlyTrend = trend

	recent, err := s.expenses.List(ctx, expense.ListFilter{Limit: recentExpenseCount})
	if err != nil {
		return nil, err
	}

	stats.RecentExpenses = recent

	return stats, nil
}

// monthlyTrend reports approved spend per calendar month for the last six
// months, oldest first, filling months with no spend with zero.
func (s *Service) monthlyTrend(ctx context.Context) ([]MonthlyTotal, error) {
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -(trendMonths - 1), 0)

	totals, err := s.repo.MonthlyApprovedTotals(ctx, first)
	if err != nil {
		return nil, err
	}

	trend := make([]MonthlyTotal, 0, trendMonths)

	for i := 0; i < trendMonths; i++ {
		month := first.AddDate(0, i, 0)

		amount, ok := totals[month]
		if !ok {
			amount = decimal.Zero
		}

		trend = append(trend, MonthlyTotal{
			Name:   month.Format("Jan"),
			Amount: amount,
		})
	}

	return trend, nil
}
