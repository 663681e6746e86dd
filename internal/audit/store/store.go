package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/smartdept/budget/internal/audit"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) InsertEntry(ctx context.Context, e *audit.Entry) error {
	query := `
		INSERT INTO audit_logs (action, entity_id, entity_type, performed_by_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		RETURNING id, created_at
	`

	err := s.db.QueryRowContext(ctx, query,
		e.Action,
		e.EntityID,
		e.EntityType,
		e.PerformedByID,
		e.Details,
	).Scan(&e.ID, &e.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting audit entry: %w", err)
	}

	return nil
}

func (s *Store) ListEntries(ctx context.Context, entityID *uuid.UUID) ([]*audit.Entry, error) {
	query := `
		SELECT l.id, l.action, l.entity_id, l.entity_type, l.performed_by_id,
			u.name, u.role, l.details, l.created_at
		FROM audit_logs l
		JOIN users u ON l.performed_by_id = u.id
	`

	var args []any

	if entityID != nil {
		query += " WHERE l.entity_id = $1"

		args = append(args, *entityID)
	}

	query += " ORDER BY l.created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*audit.Entry

	for rows.Next() {
		var e audit.Entry

		var details sql.NullString

		if err := rows.Scan(
			&e.ID, &e.Action, &e.EntityID, &e.EntityType, &e.PerformedByID,
			&e.PerformedByName, &e.PerformedByRole, &details, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		if details.Valid {
			e.Details = &details.String
		}

		entries = append(entries, &e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit rows: %w", err)
	}

	return entries, nil
}
