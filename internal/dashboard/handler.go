package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-agro/meridian/internal/platform/httpx"
)

// Handler exposes the staff dashboard endpoint.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs the dashboard HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes attaches the dashboard route to the staff router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.Show)
}

// Show serves the operational rollup.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Snapshot(r.Context())
	if err != nil {
		h.logger.Error("dashboard request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, snap)
}
