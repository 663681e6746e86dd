package expense

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/user"
)

const entityType = "EXPENSE"

// Audit action tags recorded for every state-changing operation.
const (
	actionCreated  = "EXPENSE_CREATED"
	actionApproved = "EXPENSE_APPROVED"
	actionRejected = "EXPENSE_REJECTED"
	actionDeleted  = "EXPENSE_DELETED"
	actionImported = "EXPENSE_IMPORTED"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=expense
type Repository interface {
	CreateExpense(ctx context.Context, e *Expense) error
	GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error)
	UpdateDecision(ctx context.Context, e *Expense) error
	ListExpenses(ctx context.Context, filter ListFilter) ([]*Expense, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	CategoryExists(ctx context.Context, id uuid.UUID) (bool, error)

	BeginImport(ctx context.Context, minDate, maxDate time.Time) (ImportTx, error)
}

type ImportTx interface {
	FindDuplicates(ctx context.Context, params []CreateParams) ([]*Expense, error)
	CreateExpenses(ctx context.Context, exps []*Expense) error
	Commit() error
	Rollback() error
}

// AuditRecorder appends one immutable trail entry. Failures are logged and
// swallowed by the service; the primary mutation never rolls back because
// an audit write failed.
type AuditRecorder interface {
	Record(ctx context.Context, action string, entityID uuid.UUID, entity string, performedBy uuid.UUID, details map[string]any) error
}

type Service struct {
	repo  Repository
	audit AuditRecorder
}

func NewService(repo Repository, audit AuditRecorder) *Service {
	return &Service{repo: repo, audit: audit}
}

type CreateParams struct {
	Description  string
	Amount       decimal.Decimal
	Date         time.Time
	CategoryID   uuid.UUID
	Vendor       string
	ActivityType ActivityType
	ReceiptURL   *string
}

type ListFilter struct {
	Status      *Status
	SubmittedBy *uuid.UUID
	StartDate   *time.Time
	EndDate     *time.Time
	Limit       int
}

// validate checks params field by field and reports the first failure, in
// the same order the submission form presents them.
func (p CreateParams) validate() error {
	if len(p.Description) < 3 {
		return &ValidationError{Field: "description", Message: "description is required"}
	}

	if !p.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Message: "amount must be positive"}
	}

	if p.Date.IsZero() {
		return &ValidationError{Field: "date", Message: "invalid date"}
	}

	if len(p.Vendor) < 2 {
		return &ValidationError{Field: "vendor", Message: "vendor name is required"}
	}

	if p.CategoryID == uuid.Nil {
		return &ValidationError{Field: "categoryId", Message: "category is required"}
	}

	if !p.ActivityType.Valid() {
		return &ValidationError{Field: "activityType", Message: "select a valid activity type"}
	}

	return nil
}

// Submit validates the input and creates a PENDING expense on behalf of the
// submitter. No budget-sufficiency check happens here; a category may be
// over-committed, which surfaces as negative remaining on read.
func (s *Service) Submit(ctx context.Context, params CreateParams, submittedBy uuid.UUID) (*Expense, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	ok, err := s.repo.CategoryExists(ctx, params.CategoryID)
	if err != nil {
		return nil, err
	}

	if !ok {
		return nil, &ValidationError{Field: "categoryId", Message: "category does not exist"}
	}

	e := &Expense{
		Description:   params.Description,
		Amount:        params.Amount,
		Date:          params.Date,
		CategoryID:    params.CategoryID,
		Vendor:        params.Vendor,
		ActivityType:  params.ActivityType,
		Status:        StatusPending,
		SubmittedByID: submittedBy,
		ReceiptURL:    params.ReceiptURL,
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actionCreated, e.ID, submittedBy, map[string]any{
		"amount":     e.Amount.String(),
		"categoryId": e.CategoryID.String(),
	})

	return e, nil
}

// Decide moves an expense to APPROVED or REJECTED. Only ADMIN and HOD may
// decide. A rejection requires a non-empty reason. The transition is
// deliberately permissive about the current status: a later decision
// overrides an earlier one, which supports correction workflows, and an
// approval always clears any prior rejection reason.
func (s *Service) Decide(ctx context.Context, id uuid.UUID, decision Status, actor user.Identity, reason string) (*Expense, error) {
	if !actor.Role.CanDecide() {
		return nil, ErrForbidden
	}

	if decision != StatusApproved && decision != StatusRejected {
		return nil, &ValidationError{Field: "decision", Message: "invalid decision"}
	}

	if decision == StatusRejected && reason == "" {
		return nil, &ValidationError{Field: "rejectionReason", Message: "rejection reason required"}
	}

	e, err := s.repo.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}

	previous := e.Status
	e.Status = decision

	switch decision {
	case StatusApproved:
		e.ApprovedByID = &actor.ID
		e.RejectionReason = nil
	case StatusRejected:
		e.ApprovedByID = nil
		e.RejectionReason = &reason
	}

	if err := s.repo.UpdateDecision(ctx, e); err != nil {
		return nil, err
	}

	action := actionApproved

	details := map[string]any{
		"previousStatus": string(previous),
		"newStatus":      string(decision),
	}

	if decision == StatusRejected {
		action = actionRejected
		details["reason"] = reason
	}

	s.recordAudit(ctx, action, e.ID, actor.ID, details)

	return e, nil
}

// Remove permanently deletes an expense. ADMIN only. Deleting an approved
// expense changes derived category spend on the next read; no reversal
// bookkeeping exists because nothing is cached.
func (s *Service) Remove(ctx context.Context, id uuid.UUID, actor user.Identity) error {
	if !actor.Role.CanDelete() {
		return ErrForbidden
	}

	if err := s.repo.DeleteExpense(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actionDeleted, id, actor.ID, nil)

	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Expense, error) {
	return s.repo.GetExpense(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Expense, error) {
	return s.repo.ListExpenses(ctx, filter)
}

// recordAudit is fire-and-forget: a lost audit entry is judged less harmful
// than failing an already-applied mutation.
func (s *Service) recordAudit(ctx context.Context, action string, entityID, performedBy uuid.UUID, details map[string]any) {
	if err := s.audit.Record(ctx, action, entityID, entityType, performedBy, details); err != nil {
		slog.Error("failed to record audit entry", "action", action, "entity_id", entityID, "error", err)
	}
}

type ImportResult struct {
	Imported  []*Expense
	New       []CreateParams
	Conflicts []Conflict
}

type Conflict struct {
	Incoming CreateParams
	Existing *Expense
}

type dupKey struct {
	Date   string
	Amount string
	Vendor string
}

func keyOf(date time.Time, amount decimal.Decimal, vendor string) dupKey {
	return dupKey{
		Date:   date.Format(time.DateOnly),
		Amount: amount.String(),
		Vendor: vendor,
	}
}

// ImportBatch creates PENDING expenses in bulk inside one transaction,
// reporting rows that collide with existing expenses on (date, amount,
// vendor) instead of inserting them. When any conflict exists nothing is
// written; the caller reviews and confirms via CreateBatch.
func (s *Service) ImportBatch(ctx context.Context, params []CreateParams, submittedBy uuid.UUID) (*ImportResult, error) {
	if len(params) == 0 {
		return &ImportResult{}, nil
	}

	for _, p := range params {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	duplicates, err := itx.FindDuplicates(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}

	lookup := make(map[dupKey]*Expense, len(duplicates))
	for _, d := range duplicates {
		lookup[keyOf(d.Date, d.Amount, d.Vendor)] = d
	}

	var newParams []CreateParams

	var conflicts []Conflict

	for _, p := range params {
		existing, found := lookup[keyOf(p.Date, p.Amount, p.Vendor)]
		if found {
			conflicts = append(conflicts, Conflict{Incoming: p, Existing: existing})
			continue
		}

		newParams = append(newParams, p)
	}

	if len(conflicts) > 0 {
		return &ImportResult{New: newParams, Conflicts: conflicts}, nil
	}

	exps := paramsToExpenses(newParams, submittedBy)
	if err := itx.CreateExpenses(ctx, exps); err != nil {
		return nil, fmt.Errorf("create expenses: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.recordImportAudit(ctx, exps, submittedBy)

	return &ImportResult{Imported: exps}, nil
}

// CreateBatch force-creates the given rows without duplicate detection.
// Used to confirm an import after conflicts were reviewed.
func (s *Service) CreateBatch(ctx context.Context, params []CreateParams, submittedBy uuid.UUID) ([]*Expense, error) {
	if len(params) == 0 {
		return nil, nil
	}

	for _, p := range params {
		if err := p.validate(); err != nil {
			return nil, err
		}
	}

	minDate, maxDate := dateRange(params)

	itx, err := s.repo.BeginImport(ctx, minDate, maxDate)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer itx.Rollback()

	exps := paramsToExpenses(params, submittedBy)
	if err := itx.CreateExpenses(ctx, exps); err != nil {
		return nil, fmt.Errorf("create expenses: %w", err)
	}

	if err := itx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	s.recordImportAudit(ctx, exps, submittedBy)

	return exps, nil
}

func (s *Service) recordImportAudit(ctx context.Context, exps []*Expense, performedBy uuid.UUID) {
	for _, e := range exps {
		s.recordAudit(ctx, actionImported, e.ID, performedBy, map[string]any{
			"amount":     e.Amount.String(),
			"categoryId": e.CategoryID.String(),
			"vendor":     e.Vendor,
		})
	}
}

func dateRange(params []CreateParams) (time.Time, time.Time) {
	minDate := params[0].Date
	maxDate := params[0].Date

	for _, p := range params[1:] {
		if p.Date.Before(minDate) {
			minDate = p.Date
		}

		if p.Date.After(maxDate) {
			maxDate = p.Date
		}
	}

	return minDate, maxDate
}

func paramsToExpenses(params []CreateParams, submittedBy uuid.UUID) []*Expense {
	exps := make([]*Expense, len(params))
	for i, p := range params {
		exps[i] = &Expense{
			Description:   p.Description,
			Amount:        p.Amount,
			Date:          p.Date,
			CategoryID:    p.CategoryID,
			Vendor:        p.Vendor,
			ActivityType:  p.ActivityType,
			Status:        StatusPending,
			SubmittedByID: submittedBy,
			ReceiptURL:    p.ReceiptURL,
		}
	}

	return exps
}
