package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/expense"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// TotalApprovedForBudget sums approved expense amounts across the budget's
// categories only, so spend under archived budgets is excluded.
func (s *Store) TotalApprovedForBudget(ctx context.Context, budgetID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(e.amount), 0)
		FROM expenses e
		JOIN categories c ON e.category_id = c.id
		WHERE e.status = 'APPROVED' AND c.budget_id = $1
	`

	var total decimal.Decimal
	if err := s.db.QueryRowContext(ctx, query, budgetID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("summing approved expenses: %w", err)
	}

	return total, nil
}

func (s *Store) CountByStatus(ctx context.Context, status expense.Status) (int, error) {
	query := `SELECT COUNT(*) FROM expenses WHERE status = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, status).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting expenses: %w", err)
	}

	return count, nil
}

// MonthlyApprovedTotals groups approved spend by calendar month from the
// given date onward, keyed by the first day of each month in UTC.
func (s *Store) MonthlyApprovedTotals(ctx context.Context, from time.Time) (map[time.Time]decimal.Decimal, error) {
	query := `
		SELECT date_trunc('month', e.date) AS month, COALESCE(SUM(e.amount), 0)
		FROM expenses e
		WHERE e.status = 'APPROVED' AND e.date >= $1
		GROUP BY 1
		ORDER BY 1 ASC
	`

	rows, err := s.db.QueryContext(ctx, query, from)
	if err != nil {
		return nil, fmt.Errorf("grouping monthly totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[time.Time]decimal.Decimal)

	for rows.Next() {
		var month time.Time

		var amount decimal.Decimal

		if err := rows.Scan(&month, &amount); err != nil {
			return nil, fmt.Errorf("scanning monthly total: %w", err)
		}

		month = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
		totals[month] = amount
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating monthly rows: %w", err)
	}

	return totals, nil
}
