package importcsv

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
	"github.com/smartdept/budget/internal/importer"
	"github.com/smartdept/budget/internal/vendors"
)

type Handler struct {
	importSvc  *importer.Service
	expenseSvc *expense.Service
	vendorSvc  *vendor.Service
}

func NewHandler(importSvc *importer.Service, expenseSvc *expense.Service, vendorSvc *vendor.Service) *Handler {
	return &Handler{
		importSvc:  importSvc,
		expenseSvc: expenseSvc,
		vendorSvc:  vendorSvc,
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
	r.Post("/confirm", h.confirmImport)
}

type expenseResponse struct {
	ID           uuid.UUID            `json:"id"`
	Description  string               `json:"description"`
	Amount       decimal.Decimal      `json:"amount"`
	Date         time.Time            `json:"date"`
	CategoryID   uuid.UUID            `json:"category_id"`
	Vendor       string               `json:"vendor"`
	ActivityType expense.ActivityType `json:"activity_type"`
	Status       expense.Status       `json:"status"`
	CreatedAt    time.Time            `json:"created_at"`
}

type importSuccessResponse struct {
	Imported int               `json:"imported"`
	Expenses []expenseResponse `json:"expenses"`
}

type createParamsDTO struct {
	Description  string               `json:"description"`
	Amount       decimal.Decimal      `json:"amount"`
	Date         time.Time            `json:"date"`
	CategoryID   uuid.UUID            `json:"category_id"`
	Vendor       string               `json:"vendor"`
	ActivityType expense.ActivityType `json:"activity_type"`
}

type conflictDTO struct {
	Incoming createParamsDTO `json:"incoming"`
	Existing expenseResponse `json:"existing"`
}

type importConflictResponse struct {
	New       []createParamsDTO `json:"new"`
	Conflicts []conflictDTO     `json:"conflicts"`
}

type confirmRequest struct {
	Params []createParamsDTO `json:"params"`
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	source := importer.Source(r.FormValue("source"))
	if source == "" {
		http.Error(w, "source field is required", http.StatusBadRequest)
		return
	}

	categoryID, err := uuid.Parse(r.FormValue("category_id"))
	if err != nil {
		http.Error(w, "category_id field is required", http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	params, err := h.importSvc.Import(source, file)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	for i, p := range params {
		params[i].CategoryID = categoryID

		suggested, err := h.vendorSvc.Suggest(r.Context(), p.Vendor)
		if err != nil {
			continue
		}

		if suggested == "" {
			continue
		}

		params[i].Vendor = suggested
	}

	identity := mw.IdentityFrom(r.Context())

	result, err := h.expenseSvc.ImportBatch(r.Context(), params, identity.ID)
	if err != nil {
		writeImportError(w, err)
		return
	}

	if len(result.Conflicts) > 0 {
		resp := importConflictResponse{
			New:       make([]createParamsDTO, 0, len(result.New)),
			Conflicts: make([]conflictDTO, 0, len(result.Conflicts)),
		}
		for _, p := range result.New {
			resp.New = append(resp.New, toParamsDTO(p))
		}

		for _, c := range result.Conflicts {
			resp.Conflicts = append(resp.Conflicts, conflictDTO{
				Incoming: toParamsDTO(c.Incoming),
				Existing: toExpenseResponse(c.Existing),
			})
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)

		if err := json.NewEncoder(w).Encode(resp); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(result.Imported)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) confirmImport(w http.ResponseWriter, r *http.Request) {
	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	params := make([]expense.CreateParams, 0, len(req.Params))
	for _, p := range req.Params {
		params = append(params, expense.CreateParams{
			Description:  p.Description,
			Amount:       p.Amount,
			Date:         p.Date,
			CategoryID:   p.CategoryID,
			Vendor:       p.Vendor,
			ActivityType: p.ActivityType,
		})
	}

	identity := mw.IdentityFrom(r.Context())

	exps, err := h.expenseSvc.CreateBatch(r.Context(), params, identity.ID)
	if err != nil {
		writeImportError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toSuccessResponse(exps)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeImportError(w http.ResponseWriter, err error) {
	var vErr *expense.ValidationError
	if errors.As(err, &vErr) {
		http.Error(w, vErr.Error(), http.StatusBadRequest)
		return
	}

	http.Error(w, "internal error", http.StatusInternalServerError)
}

func toSuccessResponse(exps []*expense.Expense) importSuccessResponse {
	responses := make([]expenseResponse, 0, len(exps))
	for _, e := range exps {
		responses = append(responses, toExpenseResponse(e))
	}

	return importSuccessResponse{
		Imported: len(exps),
		Expenses: responses,
	}
}

func toExpenseResponse(e *expense.Expense) expenseResponse {
	return expenseResponse{
		ID:           e.ID,
		Description:  e.Description,
		Amount:       e.Amount,
		Date:         e.Date,
		CategoryID:   e.CategoryID,
		Vendor:       e.Vendor,
		ActivityType: e.ActivityType,
		Status:       e.Status,
		CreatedAt:    e.CreatedAt,
	}
}

func toParamsDTO(p expense.CreateParams) createParamsDTO {
	return createParamsDTO{
		Description:  p.Description,
		Amount:       p.Amount,
		Date:         p.Date,
		CategoryID:   p.CategoryID,
		Vendor:       p.Vendor,
		ActivityType: p.ActivityType,
	}
}
