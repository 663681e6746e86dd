package store

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"

	"github.com/smartdept/budget/internal/expense"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

const selectExpenseColumns = `
	e.id, e.description, e.amount, e.date, e.category_id, c.name AS category_name,
	e.vendor, e.activity_type, e.status, e.submitted_by_id, s.name AS submitted_by_name,
	e.approved_by_id, a.name AS approved_by_name, e.rejection_reason, e.receipt_url,
	e.created_at, e.updated_at
`

const expenseJoins = `
	FROM expenses e
	JOIN categories c ON e.category_id = c.id
	JOIN users s ON e.submitted_by_id = s.id
	LEFT JOIN users a ON e.approved_by_id = a.id
`

func scanExpense(s scanner) (*expense.Expense, error) {
	var e expense.Expense

	var activityStr, statusStr string

	var approvedByName, rejectionReason, receiptURL sql.NullString

	if err := s.Scan(
		&e.ID, &e.Description, &e.Amount, &e.Date, &e.CategoryID, &e.CategoryName,
		&e.Vendor, &activityStr, &statusStr, &e.SubmittedByID, &e.SubmittedByName,
		&e.ApprovedByID, &approvedByName, &rejectionReason, &receiptURL,
		&e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}

	e.ActivityType = expense.ActivityType(activityStr)
	e.Status = expense.Status(statusStr)

	if approvedByName.Valid {
		e.ApprovedByName = &approvedByName.String
	}

	if rejectionReason.Valid {
		e.RejectionReason = &rejectionReason.String
	}

	if receiptURL.Valid {
		e.ReceiptURL = &receiptURL.String
	}

	return &e, nil
}

func (s *Store) CreateExpense(ctx context.Context, e *expense.Expense) error {
	query := `
		INSERT INTO expenses (description, amount, date, category_id, vendor, activity_type,
			status, submitted_by_id, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.Description,
		e.Amount,
		e.Date,
		e.CategoryID,
		e.Vendor,
		e.ActivityType,
		e.Status,
		e.SubmittedByID,
		e.ReceiptURL,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating expense: %w", err)
	}

	return nil
}

func (s *Store) GetExpense(ctx context.Context, id uuid.UUID) (*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + expenseJoins + `WHERE e.id = $1`

	e, err := scanExpense(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, expense.ErrNotFound
		}

		return nil, fmt.Errorf("getting expense: %w", err)
	}

	return e, nil
}

func (s *Store) ListExpenses(ctx context.Context, filter expense.ListFilter) ([]*expense.Expense, error) {
	query := `SELECT ` + selectExpenseColumns + expenseJoins + `WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND e.status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.SubmittedBy != nil {
		query += fmt.Sprintf(" AND e.submitted_by_id = $%d", argIdx)

		args = append(args, *filter.SubmittedBy)
		argIdx++
	}

	if filter.StartDate != nil {
		query += fmt.Sprintf(" AND e.date >= $%d", argIdx)

		args = append(args, *filter.StartDate)
		argIdx++
	}

	if filter.EndDate != nil {
		query += fmt.Sprintf(" AND e.date <= $%d", argIdx)

		args = append(args, *filter.EndDate)
		argIdx++
	}

	query += " ORDER BY e.date DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIdx)

		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing expenses: %w", err)
	}
	defer rows.Close()

	var exps []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		exps = append(exps, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating expense rows: %w", err)
	}

	return exps, nil
}

func (s *Store) UpdateDecision(ctx context.Context, e *expense.Expense) error {
	query := `
		UPDATE expenses
		SET status = $1, approved_by_id = $2, rejection_reason = $3, updated_at = NOW()
		WHERE id = $4
	`

	_, err := s.db.ExecContext(ctx, query, e.Status, e.ApprovedByID, e.RejectionReason, e.ID)
	if err != nil {
		return fmt.Errorf("updating decision: %w", err)
	}

	return nil
}

func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM expenses WHERE id = $1`

	_, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("deleting expense: %w", err)
	}

	return nil
}

func (s *Store) CategoryExists(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`

	var exists bool
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("checking category: %w", err)
	}

	return exists, nil
}

func importLockKey(minDate, maxDate time.Time) int64 {
	h := fnv.New64a()
	h.Write([]byte(minDate.Format(time.DateOnly)))
	h.Write([]byte{0})
	h.Write([]byte(maxDate.Format(time.DateOnly)))

	return int64(h.Sum64())
}

type importTx struct {
	tx *sql.Tx
}

// BeginImport opens a transaction holding an advisory lock over the batch's
// date range so two overlapping imports cannot interleave.
func (s *Store) BeginImport(ctx context.Context, minDate, maxDate time.Time) (expense.ImportTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import tx: %w", err)
	}

	lockKey := importLockKey(minDate, maxDate)
	if _, err := dbTx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", lockKey); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("acquiring import lock: %w", err)
	}

	return &importTx{tx: dbTx}, nil
}

func (itx *importTx) Commit() error   { return itx.tx.Commit() }
func (itx *importTx) Rollback() error { return itx.tx.Rollback() }

func (itx *importTx) FindDuplicates(ctx context.Context, params []expense.CreateParams) ([]*expense.Expense, error) {
	if len(params) == 0 {
		return nil, nil
	}

	type lookupKey struct {
		Date   string
		Amount string
		Vendor string
	}

	minDate := params[0].Date
	maxDate := params[0].Date
	keySet := make(map[lookupKey]struct{}, len(params))

	for _, p := range params {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}

		keySet[lookupKey{
			Date:   p.Date.Format(time.DateOnly),
			Amount: p.Amount.String(),
			Vendor: p.Vendor,
		}] = struct{}{}
	}

	query := `SELECT ` + selectExpenseColumns + expenseJoins + `
		WHERE e.date >= $1 AND e.date <= $2
		ORDER BY e.date DESC`

	rows, err := itx.tx.QueryContext(ctx, query, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("finding duplicates: %w", err)
	}
	defer rows.Close()

	var duplicates []*expense.Expense

	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning expense: %w", err)
		}

		k := lookupKey{
			Date:   e.Date.Format(time.DateOnly),
			Amount: e.Amount.String(),
			Vendor: e.Vendor,
		}

		_, found := keySet[k]
		if !found {
			continue
		}

		duplicates = append(duplicates, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating duplicate rows: %w", err)
	}

	return duplicates, nil
}

func (itx *importTx) CreateExpenses(ctx context.Context, exps []*expense.Expense) error {
	query := `
		INSERT INTO expenses (description, amount, date, category_id, vendor, activity_type,
			status, submitted_by_id, receipt_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	for _, e := range exps {
		err := itx.tx.QueryRowContext(ctx, query,
			e.Description,
			e.Amount,
			e.Date,
			e.CategoryID,
			e.Vendor,
			e.ActivityType,
			e.Status,
			e.SubmittedByID,
			e.ReceiptURL,
		).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
		if err != nil {
			return fmt.Errorf("creating expense: %w", err)
		}
	}

	return nil
}
