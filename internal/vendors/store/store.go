package store

import (
	"context"
	"database/sql"
	"fmt"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindVendor picks the most specific alias whose pattern appears in the raw
// value. Longest pattern wins; ties break to the newest alias.
func (s *Store) FindVendor(ctx context.Context, raw string) (string, error) {
	query := `
		SELECT vendor_name
		FROM vendor_aliases
		WHERE $1 ILIKE '%' || raw_pattern || '%'
		ORDER BY LENGTH(raw_pattern) DESC, created_at DESC
		LIMIT 1
	`

	var name string

	err := s.db.QueryRowContext(ctx, query, raw).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}

		return "", fmt.Errorf("finding vendor alias: %w", err)
	}

	return name, nil
}

func (s *Store) CreateAlias(ctx context.Context, rawPattern, vendorName string) error {
	query := `
		INSERT INTO vendor_aliases (raw_pattern, vendor_name, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, rawPattern, vendorName)
	if err != nil {
		return fmt.Errorf("creating vendor alias: %w", err)
	}

	return nil
}
