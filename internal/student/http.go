package student

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"college-erp/internal/httputil"
	"college-erp/internal/identity"

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

// RegisterRoutes mounts the read endpoints; edit gating is applied by the
// caller on RegisterEditRoutes.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/students", h.ListStudents)
	router.Get("/students/summary", h.StudentSummary)
	router.Get("/students/{id}", h.GetStudent)
}

func (h *Handler) RegisterEditRoutes(router chi.Router) {
	router.Post("/students", h.CreateStudent)
	router.Put("/students/{id}", h.UpdateStudent)
	router.Delete("/students/{id}", h.DeleteStudent)
}

func (h *Handler) CreateStudent(w http.ResponseWriter, r *http.Request) {
	var student Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&student); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "admitting student",
		"name", student.FirstName+" "+student.LastName, "course", student.CurrentCourse)
	created, err := h.service.Create(r.Context(), &student)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListStudents(w http.ResponseWriter, r *http.Request) {
	filter := Filter{
		Course:   r.URL.Query().Get("course"),
		Gender:   r.URL.Query().Get("gender"),
		Category: r.URL.Query().Get("category"),
		Status:   r.URL.Query().Get("status"),
		Search:   r.URL.Query().Get("search"),
	}
	if limit, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && limit > 0 {
		filter.Limit = limit
	}
	if offset, err := strconv.Atoi(r.URL.Query().Get("offset")); err == nil && offset > 0 {
		filter.Offset = offset
	}

	students, total, err := h.service.GetAll(r.Context(), filter)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"students": students,
		"total":    total,
	})
}

func (h *Handler) GetStudent(w http.ResponseWriter, r *http.Request) {
	param := chi.URLParam(r, "id")

	// Accept either the numeric PK or the unique student ID.
	if identity.StudentIDRegexp.MatchString(param) {
		student, err := h.service.GetByUniqueID(r.Context(), param)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, student)
		return
	}

	id, err := strconv.Atoi(param)
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	student, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	var student Student
	if err := json.NewDecoder(r.Body).Decode(&student); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	student.ID = id
	if err := h.validate.Struct(&student); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Update(r.Context(), &student); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, student)
}

func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid student id")
		return
	}

	h.logger.InfoContext(r.Context(), "deleting student", "id", id)
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) StudentSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrStudentNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrCourseUnresolved):
		httputil.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, identity.ErrIDCollision):
		httputil.RespondWithError(w, http.StatusConflict, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "student request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
