package inventory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/platform/httpx"
)

// Handler exposes staff inventory endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the inventory HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches inventory routes to the staff router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/inventory", h.List)
	r.Get("/inventory/low-stock", h.LowStock)
	r.Get("/inventory/{productID}", h.Show)
	r.Put("/inventory/{productID}", h.Upsert)
	r.Post("/inventory/{productID}/adjust", h.Adjust)
}

// List serves all ledger records.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

// LowStock serves records at or below reorder level.
func (h *Handler) LowStock(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"records": records})
}

// Show serves the ledger record for one product.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	rec, err := h.service.Get(r.Context(), productID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// Upsert creates or replaces the ledger record for a product.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req UpsertStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	rec, err := h.service.Upsert(r.Context(), Record{
		ProductID:         productID,
		AvailableQuantity: req.AvailableQuantity,
		ReorderLevel:      req.ReorderLevel,
		Unit:              req.Unit,
		WarehouseLocation: req.WarehouseLocation,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// Adjust applies a manual delta to available stock.
func (h *Handler) Adjust(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productID"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return
	}
	var req AdjustStockRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	rec, err := h.service.Adjust(r.Context(), productID, req.Delta)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRecordNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, ErrInvalidRelease):
		httpx.Problem(w, http.StatusConflict, "Invalid Release", err.Error())
	case errors.Is(err, ErrInvalidQuantity):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	default:
		h.logger.Error("inventory request failed", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func validationFields(err error) map[string]string {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return fields
}
