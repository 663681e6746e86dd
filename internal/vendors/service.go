package vendor

import (
	"context"
)

// Repository resolves raw vendor strings from CSV exports to the canonical
// vendor names used on expenses.
type Repository interface {
	FindVendor(ctx context.Context, raw string) (string, error)
	CreateAlias(ctx context.Context, rawPattern, vendorName string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Suggest tries to resolve a canonical vendor name for a raw CSV value.
// Returns empty string if no alias matches.
func (s *Service) Suggest(ctx context.Context, raw string) (string, error) {
	return s.repo.FindVendor(ctx, raw)
}

// Learn remembers a new mapping between a raw pattern and a vendor name.
func (s *Service) Learn(ctx context.Context, rawPattern, vendorName string) error {
	return s.repo.CreateAlias(ctx, rawPattern, vendorName)
}
