package exam

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"college-erp/internal/httputil"
	"college-erp/internal/student"

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
	router.Get("/exams/{id}", h.GetExam)
	router.Get("/students/{id}/exams", h.GetStudentExams)
}

func (h *Handler) RegisterEditRoutes(router chi.Router) {
	router.Post("/exams", h.SaveExam)
	router.Put("/exams/{id}", h.UpdateExam)
	router.Delete("/exams/{id}", h.DeleteExam)
	router.Post("/students/{id}/promote", h.PromoteStudent)
	router.Post("/students/{id}/reset-promotion", h.ResetPromotion)
	router.Post("/promotions/reset", h.ResetAllPromotions)
}

func (h *Handler) SaveExam(w http.ResponseWriter, r *http.Request) {
	var e Exam
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e.ID = 0
	if err := h.validate.Struct(&e); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.Save(r.Context(), &e)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, saved)
}

func (h *Handler) UpdateExam(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	var e Exam
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	e.ID = id
	if err := h.validate.Struct(&e); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	saved, err := h.service.Save(r.Context(), &e)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, saved)
}

func (h *Handler) GetExam(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	e, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, e)
}

func (h *Handler) GetStudentExams(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	exams, err := h.service.GetByStudent(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, exams)
}

func (h *Handler) DeleteExam(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid exam id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) PromoteStudent(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	h.logger.InfoContext(r.Context(), "processing promotion", "student_id", studentID)
	result, err := h.service.Promote(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, result)
}

func (h *Handler) ResetPromotion(w http.ResponseWriter, r *http.Request) {
	studentID, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	reset, err := h.service.ResetPromotion(r.Context(), studentID)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]int64{"reset": reset})
}

func (h *Handler) ResetAllPromotions(w http.ResponseWriter, r *http.Request) {
	reset, err := h.service.ResetAllPromotions(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]int64{"reset": reset})
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrExamNotFound), errors.Is(err, student.ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrExamLocked), errors.Is(err, ErrNotEligible), errors.Is(err, ErrStudentInactive):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "exam request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
