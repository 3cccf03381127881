package catalog

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/platform/httpx"
)

// Handler exposes product endpoints. Listing is public (the marketing
// site reads it); mutations are mounted behind the staff gate.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the catalog HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountPublicRoutes attaches read-only catalog routes.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Get("/products", h.ListActive)
	r.Get("/products/{slug}", h.ShowBySlug)
}

// MountRoutes attaches staff catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.List)
	r.Post("/products", h.Create)
	r.Get("/products/{id}", h.Show)
	r.Patch("/products/{id}", h.Update)
	r.Post("/products/{id}/activate", h.Activate)
	r.Post("/products/{id}/deactivate", h.Deactivate)
	r.Delete("/products/{id}", h.Delete)
}

// ListActive serves active products for the public site.
func (h *Handler) ListActive(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), true)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// ShowBySlug serves one active product by slug.
func (h *Handler) ShowBySlug(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	if !p.IsActive {
		httpx.Problem(w, http.StatusNotFound, "Not Found", ErrNotFound.Error())
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// List serves all products for the back office.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context(), false)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

// Show serves one product by id.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Create adds a new product.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

// Update applies partial edits to a product.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateProductRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Activate makes a product publicly visible again.
func (h *Handler) Activate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, true)
}

// Deactivate hides a product without deleting it.
func (h *Handler) Deactivate(w http.ResponseWriter, r *http.Request) {
	h.setActive(w, r, false)
}

func (h *Handler) setActive(w http.ResponseWriter, r *http.Request, active bool) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	p, err := h.service.SetActive(r.Context(), id, active)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

// Delete removes an unreferenced product.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid product id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrSlugTaken), errors.Is(err, ErrProductInUse):
		httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		h.logger.Error("catalog request failed", slog.Any("error", err))
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
