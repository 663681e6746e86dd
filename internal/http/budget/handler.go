package budget

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/budget"
)

type Handler struct {
	svc *budget.Service
}

func NewHandler(svc *budget.Service) *Handler {
	return &Handler{svc: svc}
}

// Routes mounts the budget provisioning endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/{id}/categories", h.addCategory)
	r.Post("/{id}/activate", h.activate)
}

// CategoryRoutes mounts the read-only category listing, available to every
// role.
func (h *Handler) CategoryRoutes(r chi.Router) {
	r.Get("/", h.listCategories)
}

type createBudgetRequest struct {
	AcademicYear string          `json:"academic_year"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
}

type budgetResponse struct {
	ID           uuid.UUID       `json:"id"`
	AcademicYear string          `json:"academic_year"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	StartDate    time.Time       `json:"start_date"`
	EndDate      time.Time       `json:"end_date"`
	Status       budget.Status   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

func toBudgetResponse(b *budget.Budget) budgetResponse {
	return budgetResponse{
		ID:           b.ID,
		AcademicYear: b.AcademicYear,
		TotalAmount:  b.TotalAmount,
		StartDate:    b.StartDate,
		EndDate:      b.EndDate,
		Status:       b.Status,
		CreatedAt:    b.CreatedAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBudgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.AcademicYear == "" {
		http.Error(w, "academic_year is required", http.StatusBadRequest)
		return
	}

	b, err := h.svc.Create(r.Context(), budget.CreateParams{
		AcademicYear: req.AcademicYear,
		TotalAmount:  req.TotalAmount,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
	})
	if err != nil {
		if errors.Is(err, budget.ErrDuplicateAcademicYear) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toBudgetResponse(b)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type addCategoryRequest struct {
	Name            string          `json:"name"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

type categoryResponse struct {
	ID              uuid.UUID       `json:"id"`
	BudgetID        uuid.UUID       `json:"budget_id"`
	Name            string          `json:"name"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
}

func (h *Handler) addCategory(w http.ResponseWriter, r *http.Request) {
	budgetID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req addCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	c, err := h.svc.AddCategory(r.Context(), budgetID, req.Name, req.AllocatedAmount)
	if err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(categoryResponse{
		ID:              c.ID,
		BudgetID:        c.BudgetID,
		Name:            c.Name,
		AllocatedAmount: c.Allocated,
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.svc.Activate(r.Context(), id); err != nil {
		if errors.Is(err, budget.ErrNotFound) {
			http.Error(w, "budget not found", http.StatusNotFound)
			return
		}

		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type utilizationResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	AllocatedAmount decimal.Decimal `json:"allocated_amount"`
	SpentAmount     decimal.Decimal `json:"spent_amount"`
	RemainingAmount decimal.Decimal `json:"remaining_amount"`
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	utilization, err := h.svc.ListCategories(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]utilizationResponse, 0, len(utilization))
	for _, u := range utilization {
		resp = append(resp, utilizationResponse{
			ID:              u.ID,
			Name:            u.Name,
			AllocatedAmount: u.Allocated,
			SpentAmount:     u.Spent,
			RemainingAmount: u.Remaining,
		})
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
