package fees

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"college-erp/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
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
	router.Get("/fees", h.ListFees)
	router.Get("/fees/{id}", h.GetFees)
	router.Get("/students/{id}/fees", h.GetStudentFees)
}

func (h *Handler) RegisterEditRoutes(router chi.Router) {
	router.Put("/fees/{id}", h.UpdateFees)
	router.Post("/fees/sync-course-fees", h.SyncCourseFees)
	router.Post("/fees/backfill", h.Backfill)
}

// feeView decorates a ledger row with its derived payment status.
type feeView struct {
	CollegeFees
	PaymentStatus string `json:"paymentStatus"`
}

func toView(row CollegeFees) feeView {
	return feeView{CollegeFees: row, PaymentStatus: string(row.PaymentStatus())}
}

func (h *Handler) ListFees(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.GetAll(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	views := make([]feeView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	httputil.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) GetFees(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid fee record id")
		return
	}

	row, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, toView(*row))
}

func (h *Handler) GetStudentFees(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	rows, err := h.service.GetByStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	views := make([]feeView, 0, len(rows))
	for _, row := range rows {
		views = append(views, toView(row))
	}
	httputil.RespondWithJSON(w, http.StatusOK, views)
}

func (h *Handler) UpdateFees(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid fee record id")
		return
	}

	existing, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	// Patch semantics: fields absent from the body keep their stored
	// values.
	row := *existing
	if err := json.NewDecoder(r.Body).Decode(&row); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	row.ID = id
	row.StudentID = existing.StudentID

	h.logger.InfoContext(r.Context(), "updating fee record", "id", id, "student_id", row.StudentID)
	if err := h.service.UpdateFees(r.Context(), &row); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, toView(row))
}

func (h *Handler) SyncCourseFees(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.SyncTotalCourseFees(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) Backfill(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.EnsureAllStudentsHaveRows(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNoLedger):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrScholarshipOrder), errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidSlot):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrSlotOccupied), errors.Is(err, ErrAllSlotsFilled):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "fee request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
