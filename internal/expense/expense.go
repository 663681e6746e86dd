package expense

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound = errors.New("expense not found")
	// ErrForbidden is returned when the actor's role does not permit the
	// requested mutation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports the first input field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Status represents the lifecycle state of an expense.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

// ActivityType classifies what an expense was spent on.
type ActivityType string

const (
	ActivityInfrastructure  ActivityType = "INFRASTRUCTURE"
	ActivitySoftware        ActivityType = "SOFTWARE"
	ActivityWorkshop        ActivityType = "WORKSHOP"
	ActivityFDP             ActivityType = "FDP"
	ActivityExpertTalk      ActivityType = "EXPERT_TALK"
	ActivityStationary      ActivityType = "STATIONARY"
	ActivityStudentActivity ActivityType = "STUDENT_ACTIVITY"
	ActivityMisc            ActivityType = "MISC"
)

func (a ActivityType) Valid() bool {
	switch a {
	case ActivityInfrastructure, ActivitySoftware, ActivityWorkshop, ActivityFDP,
		ActivityExpertTalk, ActivityStationary, ActivityStudentActivity, ActivityMisc:
		return true
	}

	return false
}

// Expense is a single spending request charged against a category.
type Expense struct {
	ID              uuid.UUID
	Description     string
	Amount          decimal.Decimal
	Date            time.Time
	CategoryID      uuid.UUID
	CategoryName    string // Loaded via JOIN
	Vendor          string
	ActivityType    ActivityType
	Status          Status
	SubmittedByID   uuid.UUID
	SubmittedByName string // Loaded via JOIN
	ApprovedByID    *uuid.UUID
	ApprovedByName  *string // Loaded via JOIN
	RejectionReason *string
	ReceiptURL      *string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}
