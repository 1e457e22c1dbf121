package dashboard

import (
	"log/slog"
	"net/http"
	"strconv"

	"college-erp/internal/httputil"

	"github.com/go-chi/chi/v5"
)

const defaultRecentLimit = 5

type Handler struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandler(repo Repository, logger *slog.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/dashboard", h.Overview)
}

// Overview aggregates the landing-page numbers in one response.
func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	limit := defaultRecentLimit
	if n, err := strconv.Atoi(r.URL.Query().Get("recent")); err == nil && n > 0 && n <= 50 {
		limit = n
	}

	ctx := r.Context()

	totals, err := h.repo.Totals(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard totals failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	feeStatus, err := h.repo.FeeStatusCounts(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "dashboard fee status failed", "error", err)
		httputil.RespondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	// Recent lists degrade to empty rather than failing the page.
	admissions, err := h.repo.RecentAdmissions(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "recent admissions failed", "error", err)
		admissions = nil
	}
	payments, err := h.repo.RecentPayments(ctx, limit)
	if err != nil {
		h.logger.WarnContext(ctx, "recent payments failed", "error", err)
		payments = nil
	}

	httputil.RespondWithJSON(w, http.StatusOK, map[string]any{
		"totals":           totals,
		"feeStatus":        feeStatus,
		"recentAdmissions": admissions,
		"recentPayments":   payments,
	})
}
