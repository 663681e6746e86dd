package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/expense"
)

type expenseResponse struct {
	ID              uuid.UUID            `json:"id"`
	Description     string               `json:"description"`
	Amount          decimal.Decimal      `json:"amount"`
	Date            time.Time            `json:"date"`
	CategoryID      uuid.UUID            `json:"category_id"`
	CategoryName    string               `json:"category_name,omitempty"`
	Vendor          string               `json:"vendor"`
	ActivityType    expense.ActivityType `json:"activity_type"`
	Status          expense.Status       `json:"status"`
	SubmittedByID   uuid.UUID            `json:"submitted_by_id"`
	SubmittedByName string               `json:"submitted_by_name,omitempty"`
	ApprovedByID    *uuid.UUID           `json:"approved_by_id,omitempty"`
	ApprovedByName  *string              `json:"approved_by_name,omitempty"`
	RejectionReason *string              `json:"rejection_reason,omitempty"`
	ReceiptURL      *string              `json:"receipt_url,omitempty"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       *time.Time           `json:"updated_at,omitempty"`
}

func toResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:              e.ID,
		Description:     e.Description,
		Amount:          e.Amount,
		Date:            e.Date,
		CategoryID:      e.CategoryID,
		CategoryName:    e.CategoryName,
		Vendor:          e.Vendor,
		ActivityType:    e.ActivityType,
		Status:          e.Status,
		SubmittedByID:   e.SubmittedByID,
		SubmittedByName: e.SubmittedByName,
		ApprovedByID:    e.ApprovedByID,
		ApprovedByName:  e.ApprovedByName,
		RejectionReason: e.RejectionReason,
		ReceiptURL:      e.ReceiptURL,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}

func toResponseList(exps []*expense.Expense) []expenseResponse {
	resp := make([]expenseResponse, len(exps))
	for i, e := range exps {
		resp[i] = toResponse(e)
	}

	return resp
}
