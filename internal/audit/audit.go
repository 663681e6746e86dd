package audit

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one append-only record of who did what to which entity. Entries
// are never mutated or deleted.
type Entry struct {
	ID              uuid.UUID
	Action          string
	EntityID        uuid.UUID
	EntityType      string
	PerformedByID   uuid.UUID
	PerformedByName string  // Loaded via JOIN
	PerformedByRole string  // Loaded via JOIN
	Details         *string // Opaque JSON payload
	CreatedAt       time.Time
}
