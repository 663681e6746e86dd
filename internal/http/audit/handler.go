package audit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smartdept/budget/internal/audit"
)

type Handler struct {
	svc *audit.Service
}

func NewHandler(svc *audit.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
}

type entryResponse struct {
	ID              uuid.UUID       `json:"id"`
	Action          string          `json:"action"`
	EntityID        uuid.UUID       `json:"entity_id"`
	EntityType      string          `json:"entity_type"`
	PerformedByID   uuid.UUID       `json:"performed_by_id"`
	PerformedByName string          `json:"performed_by_name"`
	PerformedByRole string          `json:"performed_by_role"`
	Details         json.RawMessage `json:"details,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var entityID *uuid.UUID

	if s := r.URL.Query().Get("entity_id"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			http.Error(w, "invalid entity_id", http.StatusBadRequest)
			return
		}

		entityID = &id
	}

	entries, err := h.svc.Query(r.Context(), entityID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	resp := make([]entryResponse, 0, len(entries))

	for _, e := range entries {
		item := entryResponse{
			ID:              e.ID,
			Action:          e.Action,
			EntityID:        e.EntityID,
			EntityType:      e.EntityType,
			PerformedByID:   e.PerformedByID,
			PerformedByName: e.PerformedByName,
			PerformedByRole: e.PerformedByRole,
			CreatedAt:       e.CreatedAt,
		}

		if e.Details != nil {
			item.Details = json.RawMessage(*e.Details)
		}

		resp = append(resp, item)
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
