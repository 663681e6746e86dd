package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=audit
type Repository interface {
	InsertEntry(ctx context.Context, e *Entry) error
	ListEntries(ctx context.Context, entityID *uuid.UUID) ([]*Entry, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Record appends one immutable entry. The details payload is marshaled to
// JSON; a nil map stores NULL.
func (s *Service) Record(ctx context.Context, action string, entityID uuid.UUID, entity string, performedBy uuid.UUID, details map[string]any) error {
	e := &Entry{
		Action:        action,
		EntityID:      entityID,
		EntityType:    entity,
		PerformedByID: performedBy,
	}

	if details != nil {
		raw, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}

		str := string(raw)
		e.Details = &str
	}

	return s.repo.InsertEntry(ctx, e)
}

// Query returns entries newest first, optionally filtered to one entity.
func (s *Service) Query(ctx context.Context, entityID *uuid.UUID) ([]*Entry, error) {
	return s.repo.ListEntries(ctx, entityID)
}
