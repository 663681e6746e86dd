package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/smartdept/budget/internal/budget"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const selectBudgetColumns = `id, academic_year, total_amount, start_date, end_date, status, created_at`

func scanBudget(row *sql.Row) (*budget.Budget, error) {
	var b budget.Budget

	var statusStr string

	if err := row.Scan(
		&b.ID, &b.AcademicYear, &b.TotalAmount, &b.StartDate, &b.EndDate, &statusStr, &b.CreatedAt,
	); err != nil {
		return nil, err
	}

	b.Status = budget.Status(statusStr)

	return &b, nil
}

func (s *Store) CreateBudget(ctx context.Context, b *budget.Budget) error {
	query := `
		INSERT INTO budgets (academic_year, total_amount, start_date, end_date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		b.AcademicYear,
		b.TotalAmount,
		b.StartDate,
		b.EndDate,
		b.Status,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return budget.ErrDuplicateAcademicYear
		}

		return fmt.Errorf("creating budget: %w", err)
	}

	return nil
}

func (s *Store) GetBudget(ctx context.Context, id uuid.UUID) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets WHERE id = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNotFound
		}

		return nil, fmt.Errorf("getting budget: %w", err)
	}

	return b, nil
}

func (s *Store) GetActiveBudget(ctx context.Context) (*budget.Budget, error) {
	query := `SELECT ` + selectBudgetColumns + ` FROM budgets WHERE status = $1`

	b, err := scanBudget(s.db.QueryRowContext(ctx, query, budget.StatusActive))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, budget.ErrNoActiveBudget
		}

		return nil, fmt.Errorf("getting active budget: %w", err)
	}

	return b, nil
}

// ActivateBudget makes the budget the single ACTIVE one. The previously
// active budget is archived inside the same database transaction.
func (s *Store) ActivateBudget(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	archive := `UPDATE budgets SET status = $1 WHERE status = $2 AND id <> $3`
	if _, err := dbTx.ExecContext(ctx, archive, budget.StatusArchived, budget.StatusActive, id); err != nil {
		return fmt.Errorf("archiving active budget: %w", err)
	}

	activate := `UPDATE budgets SET status = $1 WHERE id = $2`
	if _, err := dbTx.ExecContext(ctx, activate, budget.StatusActive, id); err != nil {
		return fmt.Errorf("activating budget: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) CreateCategory(ctx context.Context, c *budget.Category) error {
	query := `
		INSERT INTO categories (budget_id, name, allocated)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query, c.BudgetID, c.Name, c.Allocated).Scan(&c.ID)
	if err != nil {
		return fmt.Errorf("creating category: %w", err)
	}

	return nil
}

// ListUtilization computes spent per category from approved expenses at
// read time. Nothing is cached, so figures can never drift from the rows.
func (s *Store) ListUtilization(ctx context.Context, budgetID uuid.UUID) ([]budget.Utilization, error) {
	query := `
		SELECT c.id, c.budget_id, c.name, c.allocated,
			COALESCE(SUM(e.amount) FILTER (WHERE e.status = 'APPROVED'), 0) AS spent
		FROM categories c
		LEFT JOIN expenses e ON e.category_id = c.id
		WHERE c.budget_id = $1
		GROUP BY c.id
		ORDER BY c.name ASC
	`

	rows, err := s.db.QueryContext(ctx, query, budgetID)
	if err != nil {
		return nil, fmt.Errorf("listing utilization: %w", err)
	}
	defer rows.Close()

	var out []budget.Utilization

	for rows.Next() {
		var u budget.Utilization
		if err := rows.Scan(&u.ID, &u.BudgetID, &u.Name, &u.Allocated, &u.Spent); err != nil {
			return nil, fmt.Errorf("scanning utilization: %w", err)
		}

		u.Remaining = u.Allocated.Sub(u.Spent)

		out = append(out, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating utilization rows: %w", err)
	}

	return out, nil
}
