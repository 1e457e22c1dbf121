package course

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

// RegisterRoutes mounts the read endpoints; edit gating is applied by the
// caller on RegisterEditRoutes.
func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/courses", h.ListCourses)
	router.Get("/courses/{id}", h.GetCourse)
	router.Get("/offerings", h.ListOfferings)
	router.Get("/offerings/{id}", h.GetOffering)
	router.Get("/subjects", h.ListSubjects)
}

func (h *Handler) RegisterEditRoutes(router chi.Router) {
	router.Post("/courses", h.CreateCourse)
	router.Put("/courses/{id}", h.UpdateCourse)
	router.Delete("/courses/{id}", h.DeleteCourse)

	router.Post("/offerings", h.CreateOffering)
	router.Put("/offerings/{id}", h.UpdateOffering)
	router.Delete("/offerings/{id}", h.DeleteOffering)

	router.Post("/subjects", h.CreateSubject)
	router.Put("/subjects/{id}/rename", h.RenameSubject)
	router.Delete("/subjects/{id}", h.DeleteSubject)
}

func (h *Handler) CreateCourse(w http.ResponseWriter, r *http.Request) {
	var c Course
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating course", "short_name", c.ShortName)
	created, err := h.service.CreateCourse(r.Context(), &c)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListCourses(w http.ResponseWriter, r *http.Request) {
	courses, err := h.service.GetAllCourses(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, courses)
}

func (h *Handler) GetCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	c, err := h.service.GetCourse(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) UpdateCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	var c Course
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c.ID = id
	if err := h.validate.Struct(&c); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateCourse(r.Context(), &c); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, c)
}

func (h *Handler) DeleteCourse(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid course id")
		return
	}

	if err := h.service.DeleteCourse(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateOffering(w http.ResponseWriter, r *http.Request) {
	var d CourseDetail
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.logger.InfoContext(r.Context(), "creating course offering", "course", d.FullName, "year_semester", d.YearSemester)
	created, err := h.service.CreateOffering(r.Context(), &d)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListOfferings(w http.ResponseWriter, r *http.Request) {
	offerings, err := h.service.GetAllOfferings(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, offerings)
}

func (h *Handler) GetOffering(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid offering id")
		return
	}

	d, err := h.service.GetOffering(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, d)
}

func (h *Handler) UpdateOffering(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid offering id")
		return
	}

	var d CourseDetail
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	d.ID = id
	if err := h.validate.Struct(&d); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateOffering(r.Context(), &d); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, d)
}

func (h *Handler) DeleteOffering(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid offering id")
		return
	}

	if err := h.service.DeleteOffering(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateSubject(w http.ResponseWriter, r *http.Request) {
	var s Subject
	if err := json.NewDecoder(r.Body).Decode(&s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&s); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.CreateSubject(r.Context(), &s)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusCreated, created)
}

func (h *Handler) ListSubjects(w http.ResponseWriter, r *http.Request) {
	if shortName := r.URL.Query().Get("course"); shortName != "" {
		subjects, err := h.service.GetSubjectsByCourse(r.Context(), shortName)
		if err != nil {
			h.handleServiceError(w, r, err)
			return
		}
		httputil.RespondWithJSON(w, http.StatusOK, subjects)
		return
	}

	subjects, err := h.service.GetAllSubjects(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, subjects)
}

type renameSubjectRequest struct {
	NewName string `json:"newName" validate:"required,max=200"`
}

func (h *Handler) RenameSubject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid subject id")
		return
	}

	var req renameSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.RenameSubject(r.Context(), id, req.NewName); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (h *Handler) DeleteSubject(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid subject id")
		return
	}

	if err := h.service.DeleteSubject(r.Context(), id); err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrCourseNotFound), errors.Is(err, ErrDetailNotFound), errors.Is(err, ErrSubjectNotFound):
		httputil.RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidInput):
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), "course request failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}
