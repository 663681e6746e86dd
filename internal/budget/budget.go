package budget

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound       = errors.New("budget not found")
	ErrNoActiveBudget = errors.New("no active budget")
	// ErrDuplicateAcademicYear is returned when a budget already exists for
	// the academic year. Each year has exactly one plan.
	ErrDuplicateAcademicYear = errors.New("a budget for this academic year already exists")
)

// Status represents the lifecycle state of a budget plan.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusActive   Status = "ACTIVE"
	StatusArchived Status = "ARCHIVED"
)

// Budget is a yearly financial plan divided into categories.
type Budget struct {
	ID           uuid.UUID
	AcademicYear string
	TotalAmount  decimal.Decimal
	StartDate    time.Time
	EndDate      time.Time
	Status       Status
	CreatedAt    time.Time
}

// Category is a named sub-allocation of a budget. Spent and remaining are
// derived from approved expenses at read time, never stored.
type Category struct {
	ID        uuid.UUID
	BudgetID  uuid.UUID
	Name      string
	Allocated decimal.Decimal
}

// Utilization is a category with its derived consumption figures.
// Remaining may be negative when a category is over-committed.
type Utilization struct {
	Category
	Spent     decimal.Decimal
	Remaining decimal.Decimal
}
