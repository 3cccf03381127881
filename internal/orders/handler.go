package orders

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/inventory"
	"github.com/meridian-agro/meridian/internal/platform/httpx"
	"github.com/meridian-agro/meridian/internal/rfq"
)

// Handler exposes staff order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the orders HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches order routes to the staff router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/orders", h.List)
	r.Post("/orders", h.Create)
	r.Get("/orders/ref/{orderNo}", h.ShowByRef)
	r.Get("/orders/{id}", h.Show)
	r.Patch("/orders/{id}/status", h.Transition)
	r.Post("/orders/{id}/cancel", h.Cancel)
	r.Patch("/orders/{id}/payment", h.UpdatePayment)
}

// Create opens a new order, optionally converting an RFQ.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	order, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

// List serves the admin order listing.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req := ListRequest{}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := Status(raw)
		if !status.IsValid() {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status filter")
			return
		}
		req.Status = &status
	}
	if raw := r.URL.Query().Get("customer_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid customer id")
			return
		}
		req.CustomerID = &id
	}
	req.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	req.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}

	orders, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders, "total": total})
}

// Show serves one order.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// ShowByRef serves one order by order number.
func (h *Handler) ShowByRef(w http.ResponseWriter, r *http.Request) {
	order, err := h.service.GetByRef(r.Context(), chi.URLParam(r, "orderNo"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Transition moves the order one step forward.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req TransitionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	order, err := h.service.Transition(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// Cancel aborts an order before dispatch.
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	order, err := h.service.Cancel(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

// UpdatePayment sets the invoicing state.
func (h *Handler) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdatePaymentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	order, err := h.service.UpdatePaymentStatus(r.Context(), id, req.PaymentStatus)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid order id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, ErrNotCancellable):
		httpx.Problem(w, http.StatusConflict, "Not Cancellable", err.Error())
	case errors.Is(err, ErrProductUnavailable):
		httpx.Problem(w, http.StatusConflict, "Product Unavailable", err.Error())
	case errors.Is(err, inventory.ErrInsufficientStock):
		httpx.Problem(w, http.StatusConflict, "Insufficient Stock", err.Error())
	case errors.Is(err, inventory.ErrRecordNotFound):
		httpx.Problem(w, http.StatusConflict, "Product Unavailable", err.Error())
	case errors.Is(err, rfq.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, rfq.ErrConverted):
		httpx.Problem(w, http.StatusConflict, "Already Converted", err.Error())
	default:
		h.logger.Error("order request failed", slog.Any("error", err))
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
