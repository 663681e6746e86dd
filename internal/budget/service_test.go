package budget_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/smartdept/budget/internal/budget"
)

func TestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateBudget(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, b *budget.Budget) error {
			b.ID = uuid.New()
			b.CreatedAt = time.Now()
			return nil
		})

	svc := budget.NewService(repo)
	got, err := svc.Create(context.Background(), budget.CreateParams{
		AcademicYear: "2023-2024",
		TotalAmount:  decimal.NewFromInt(5000000),
		StartDate:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, budget.StatusDraft, got.Status)
}

func TestService_Create_DuplicateAcademicYear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().
		CreateBudget(gomock.Any(), gomock.Any()).
		Return(budget.ErrDuplicateAcademicYear)

	svc := budget.NewService(repo)
	_, err := svc.Create(context.Background(), budget.CreateParams{
		AcademicYear: "2023-2024",
		TotalAmount:  decimal.NewFromInt(5000000),
		StartDate:    time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC),
	})

	assert.ErrorIs(t, err, budget.ErrDuplicateAcademicYear)
}

func TestService_AddCategory_UnknownBudget(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	id := uuid.New()

	repo := budget.NewMockRepository(ctrl)
	repo.EXPECT().GetBudget(gomock.Any(), id).Return(nil, budget.ErrNotFound)

	svc := budget.NewService(repo)
	_, err := svc.AddCategory(context.Background(), id, "Stationery", decimal.NewFromInt(500000))

	assert.ErrorIs(t, err, budget.ErrNotFound)
}

func TestService_ListCategories(t *testing.T) {
	type testCase struct {
		name      string
		setupMock func(m *budget.MockRepository)
		wantLen   int
		wantErr   bool
	}

	active := &budget.Budget{ID: uuid.New(), Status: budget.StatusActive}

	tests := []testCase{
		{
			name: "DerivedFigures",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetActiveBudget(gomock.Any()).Return(active, nil)
				m.EXPECT().ListUtilization(gomock.Any(), active.ID).Return([]budget.Utilization{
					{
						Category: budget.Category{Name: "Laboratory Equipment", Allocated: decimal.NewFromInt(100000)},
						Spent:    decimal.NewFromInt(30000),
					},
				}, nil)
			},
			wantLen: 1,
		},
		{
			name: "NoActiveBudget",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetActiveBudget(gomock.Any()).Return(nil, budget.ErrNoActiveBudget)
			},
			wantLen: 0,
		},
		{
			name: "RepoError",
			setupMock: func(m *budget.MockRepository) {
				m.EXPECT().GetActiveBudget(gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := budget.NewMockRepository(ctrl)
			tt.setupMock(repo)

			svc := budget.NewService(repo)
			got, err := svc.ListCategories(context.Background())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got, tt.wantLen)
		})
	}
}

func TestUtilization_RemainingMayGoNegative(t *testing.T) {
	// Over-committed categories are reported as-is, never clamped.
	u := budget.Utilization{
		Category: budget.Category{Allocated: decimal.NewFromInt(1000)},
		Spent:    decimal.NewFromInt(1500),
	}
	u.Remaining = u.Allocated.Sub(u.Spent)

	assert.True(t, u.Remaining.IsNegative())
	assert.Equal(t, "-500", u.Remaining.String())
}
