package expense

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/smartdept/budget/internal/expense"
	mw "github.com/smartdept/budget/internal/http/middleware"
)

type Handler struct {
	svc *expense.Service
}

func NewHandler(svc *expense.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Patch("/{id}/decision", h.decide)
	r.Delete("/{id}", h.delete)
}

type validationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// writeServiceError maps domain errors onto status codes. Validation
// failures carry the failing field so the form can highlight it.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *expense.ValidationError
	if errors.As(err, &vErr) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)

		if encErr := json.NewEncoder(w).Encode(validationErrorResponse{
			Field:   vErr.Field,
			Message: vErr.Message,
		}); encErr != nil {
			slog.Error("failed to encode response", "error", encErr)
		}

		return
	}

	if errors.Is(err, expense.ErrForbidden) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	if errors.Is(err, expense.ErrNotFound) {
		http.Error(w, "expense not found", http.StatusNotFound)
		return
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
}

type createExpenseRequest struct {
	Description  string               `json:"description"`
	Amount       decimal.Decimal      `json:"amount"`
	Date         time.Time            `json:"date"`
	CategoryID   uuid.UUID            `json:"category_id"`
	Vendor       string               `json:"vendor"`
	ActivityType expense.ActivityType `json:"activity_type"`
	ReceiptURL   *string              `json:"receipt_url,omitempty"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	identity := mw.IdentityFrom(r.Context())

	e, err := h.svc.Submit(r.Context(), expense.CreateParams{
		Description:  req.Description,
		Amount:       req.Amount,
		Date:         req.Date,
		CategoryID:   req.CategoryID,
		Vendor:       req.Vendor,
		ActivityType: req.ActivityType,
		ReceiptURL:   req.ReceiptURL,
	}, identity.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := expense.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		st := expense.Status(s)
		filter.Status = &st
	}

	if s := r.URL.Query().Get("start_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			start := t
			filter.StartDate = &start
		}
	}

	if s := r.URL.Query().Get("end_date"); s != "" {
		if t, err := time.Parse(time.DateOnly, s); err == nil {
			end := t
			filter.EndDate = &end
		}
	}

	identity := mw.IdentityFrom(r.Context())

	// Staff only ever see their own submissions.
	if !identity.Role.CanViewAll() {
		submitter := identity.ID
		filter.SubmittedBy = &submitter
	} else if s := r.URL.Query().Get("submitted_by"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			submitter := id
			filter.SubmittedBy = &submitter
		}
	}

	exps, err := h.svc.List(r.Context(), filter)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponseList(exps)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	e, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	identity := mw.IdentityFrom(r.Context())
	if e.SubmittedByID != identity.ID && !identity.Role.CanViewAll() {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type decisionRequest struct {
	Decision        expense.Status `json:"decision"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
}

func (h *Handler) decide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	identity := mw.IdentityFrom(r.Context())

	e, err := h.svc.Decide(r.Context(), id, req.Decision, identity, req.RejectionReason)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(e)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	identity := mw.IdentityFrom(r.Context())

	if err := h.svc.Remove(r.Context(), id, identity); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
