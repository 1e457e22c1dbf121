package invoice

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"college-erp/internal/fees"
	"college-erp/internal/httputil"
	"college-erp/internal/identity"
	"college-erp/internal/student"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Handler struct {
	service  Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:  service,
		validate: validator.New(),
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/invoices", h.ListInvoices)
	router.Get("/invoices/{id}", h.GetInvoice)
}

func (h *Handler) RegisterEditRoutes(router chi.Router) {
	router.Post("/invoices", h.IssueInvoice)
	router.Post("/invoices/{id}/print", h.MarkPrinted)
}

type issueRequest struct {
	StudentID int             `json:"studentId" validate:"required,gt=0"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
}

func (h *Handler) IssueInvoice(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "issuing invoice",
		"student_id", req.StudentID, "amount", req.Amount.String())
	inv, err := h.service.Issue(r.Context(), req.StudentID, req.Amount)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, inv)
}

func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Search: r.URL.Query().Get("search")}
	if studentID, err := strconv.Atoi(r.URL.Query().Get("student")); err == nil {
		filter.StudentID = studentID
	}
	if from, err := time.Parse("2006-01-02", r.URL.Query().Get("from")); err == nil {
		filter.From = from
	}
	if to, err := time.Parse("2006-01-02", r.URL.Query().Get("to")); err == nil {
		// Exclusive upper bound: include the whole "to" day.
		filter.To = to.AddDate(0, 0, 1)
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	invoices, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"invoices": invoices,
		"total":    total,
	})
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	inv, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, inv)
}

func (h *Handler) MarkPrinted(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid invoice id")
		return
	}

	inv, err := h.service.MarkPrinted(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, inv)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvoiceNotFound), errors.Is(err, student.ErrStudentNotFound), errors.Is(err, fees.ErrNoLedger):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, fees.ErrInvalidAmount):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, fees.ErrAllSlotsFilled), errors.Is(err, fees.ErrSlotOccupied), errors.Is(err, identity.ErrIDCollision):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "invoice request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
