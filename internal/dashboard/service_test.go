package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartdept/budget/internal/budget"
	"github.com/smartdept/budget/internal/expense"
)

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T) (*Service, *budget.MockRepository, *expense.MockRepository, *MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	budgetRepo := budget.NewMockRepository(ctrl)
	expenseRepo := expense.NewMockRepository(ctrl)
	repo := NewMockRepository(ctrl)

	svc := NewService(
		budget.NewService(budgetRepo),
		expense.NewService(expenseRepo, expense.NewMockAuditRecorder(ctrl)),
		repo,
	)
	svc.now = fixedNow

	return svc, budgetRepo, expenseRepo, repo
}

func TestService_Stats_ActiveBudget(t *testing.T) {
	svc, budgetRepo, expenseRepo, repo := newTestService(t)

	active := &budget.Budget{
		ID:          uuid.New(),
		TotalAmount: decimal.NewFromInt(5000000),
		Status:      budget.StatusActive,
	}

	// ListCategories makes its own active-budget lookup.
	budgetRepo.EXPECT().GetActiveBudget(gomock.Any()).Return(active, nil).Times(2)
	budgetRepo.EXPECT().ListUtilization(gomock.Any(), active.ID).Return([]budget.Utilization{
		{
			Category: budget.Category{Name: "Laboratory Equipment", Allocated: decimal.NewFromInt(100000)},
			Spent:    decimal.NewFromInt(30000),
		},
	}, nil)

	repo.EXPECT().TotalApprovedForBudget(gomock.Any(), active.ID).Return(decimal.NewFromInt(30000), nil)
	repo.EXPECT().CountByStatus(gomock.Any(), expense.StatusPending).Return(3, nil)

	january := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.EXPECT().MonthlyApprovedTotals(gomock.Any(), january).Return(map[time.Time]decimal.Decimal{
		time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC): decimal.NewFromInt(30000),
	}, nil)

	expenseRepo.EXPECT().
		ListExpenses(gomock.Any(), expense.ListFilter{Limit: 5}).
		Return([]*expense.Expense{{ID: uuid.New()}}, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.TotalBudget.Equal(decimal.NewFromInt(5000000)))
	assert.True(t, stats.TotalSpent.Equal(decimal.NewFromInt(30000)))
	assert.True(t, stats.RemainingBudget.Equal(decimal.NewFromInt(4970000)))
	assert.Equal(t, 3, stats.PendingApprovals)
	assert.Len(t, stats.CategoryUtilization, 1)
	assert.Len(t, stats.RecentExpenses, 1)

	require.Len(t, stats.MonthlyTrend, 6)
	assert.Equal(t, "Jan", stats.MonthlyTrend[0].Name)
	assert.Equal(t, "Jun", stats.MonthlyTrend[5].Name)
	assert.True(t, stats.MonthlyTrend[2].Amount.Equal(decimal.NewFromInt(30000)), "March carries the spend")
	assert.True(t, stats.MonthlyTrend[1].Amount.IsZero(), "months without spend are zero-filled")
}

func TestService_Stats_NoActiveBudget(t *testing.T) {
	svc, budgetRepo, expenseRepo, repo := newTestService(t)

	budgetRepo.EXPECT().GetActiveBudget(gomock.Any()).Return(nil, budget.ErrNoActiveBudget)
	repo.EXPECT().CountByStatus(gomock.Any(), expense.StatusPending).Return(1, nil)
	repo.EXPECT().MonthlyApprovedTotals(gomock.Any(), gomock.Any()).Return(nil, nil)
	expenseRepo.EXPECT().ListExpenses(gomock.Any(), expense.ListFilter{Limit: 5}).Return(nil, nil)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	assert.True(t, stats.TotalBudget.IsZero())
	assert.True(t, stats.TotalSpent.IsZero())
	assert.True(t, stats.RemainingBudget.IsZero())
	assert.Equal(t, 1, stats.PendingApprovals)
	assert.Empty(t, stats.CategoryUtilization)
	assert.Len(t, stats.MonthlyTrend, 6)
}
