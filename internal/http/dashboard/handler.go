package dashboard

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/dashboard"
	"github.com/smartdept/budget/internal/expense"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.stats)
}

type categoryUtilizationDTO struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

type monthlyTotalDTO struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

type recentExpenseDTO struct {
	ID           uuid.UUID       `json:"id"`
	Description  string          `json:"description"`
	Amount       decimal.Decimal `json:"amount"`
	Vendor       string          `json:"vendor"`
	Status       expense.Status  `json:"status"`
	CategoryName string          `json:"category_name"`
}

type statsResponse struct {
	TotalBudget         decimal.Decimal          `json:"total_budget"`
	TotalSpent          decimal.Decimal          `json:"total_spent"`
	RemainingBudget     decimal.Decimal          `json:"remaining_budget"`
	PendingApprovals    int                      `json:"pending_approvals"`
	CategoryUtilization []categoryUtilizationDTO `json:"category_utilization"`
	MonthlyTrend        []monthlyTotalDTO        `json:"monthly_trend"`
	RecentExpenses      []recentExpenseDTO       `json:"recent_expenses"`
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := statsResponse{
		TotalBudget:         stats.TotalBudget,
		TotalSpent:          stats.TotalSpent,
		RemainingBudget:     stats.RemainingBudget,
		PendingApprovals:    stats.PendingApprovals,
		CategoryUtilization: make([]categoryUtilizationDTO, 0, len(stats.CategoryUtilization)),
		MonthlyTrend:        make([]monthlyTotalDTO, 0, len(stats.MonthlyTrend)),
		RecentExpenses:      make([]recentExpenseDTO, 0, len(stats.RecentExpenses)),
	}

	for _, u := range stats.CategoryUtilization {
		resp.CategoryUtilization = append(resp.CategoryUtilization, categoryUtilizationDTO{
			ID:              u.ID,
			Name:            u.Name,
			AllocatedAmount: u.Allocated,
			SpentAmount:     u.Spent,
			RemainingAmount: u.Remaining,
		})
	}

	for _, m := range stats.MonthlyTrend {
		resp.MonthlyTrend = append(resp.MonthlyTrend, monthlyTotalDTO{
			Name:   m.Name,
			Amount: m.Amount,
		})
	}

	for _, e := range stats.RecentExpenses {
		resp.RecentExpenses = append(resp.RecentExpenses, recentExpenseDTO{
			ID:           e.ID,
			Description:  e.Description,
			Amount:       e.Amount,
			Vendor:       e.Vendor,
			Status:       e.Status,
			CategoryName: e.CategoryName,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
