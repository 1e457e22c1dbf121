package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"college-erp/internal/httputil"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

type Handler struct {
	service   *Service
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(service *Service, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		logger:    logger,
		validator: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Post("/auth/login", h.Login)
	router.Post("/auth/refresh", h.Refresh)
	router.Post("/auth/logout", h.Logout)
}

// RegisterProtectedRoutes registers routes that require an authenticated user.
func (h *Handler) RegisterProtectedRoutes(router chi.Router) {
	router.Get("/auth/me", h.Me)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, accessToken, refreshToken, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondWithError(w, http.StatusUnauthorized, "invalid username or password")
		case errors.Is(err, ErrUserInactive):
			httputil.RespondWithError(w, http.StatusForbidden, "account is inactive")
		default:
			h.logger.ErrorContext(r.Context(), "login failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	SetAuthCookie(w, accessToken, int(h.service.accessTTL.Seconds()))
	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"user": LoginResponse{
			UserID:    user.ID,
			Username:  user.Username,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			RoleName:  user.RoleName(),
		},
		"refreshToken": refreshToken,
	})
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		httputil.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	accessToken, refreshToken, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRefresh), errors.Is(err, ErrUserInactive):
			ClearAuthCookie(w)
			httputil.RespondWithError(w, http.StatusUnauthorized, "invalid refresh token")
		default:
			h.logger.ErrorContext(r.Context(), "refresh failed", "error", err)
			httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	SetAuthCookie(w, accessToken, int(h.service.accessTTL.Seconds()))
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"refreshToken": refreshToken})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	// Logout with a missing body still clears the cookie.
	if err := json.NewDecoder(r.Body).Decode(&req); err == nil && req.RefreshToken != "" {
		if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
			h.logger.WarnContext(r.Context(), "failed to revoke refresh token", "error", err)
		}
	}

	ClearAuthCookie(w)
	httputil.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// Me returns the claims of the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	username, _ := GetUsername(r.Context())
	roleName, _ := GetRoleName(r.Context())

	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"userId":   userID,
		"username": username,
		"roleName": roleName,
	})
}
