package directory

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/platform/httpx"
)

// Handler exposes staff lead and customer endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the directory HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes attaches directory routes to the staff router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/leads", h.ListLeads)
	r.Post("/leads", h.CreateLead)
	r.Get("/leads/follow-ups", h.DueFollowUps)
	r.Get("/leads/{id}", h.ShowLead)
	r.Patch("/leads/{id}", h.UpdateLead)
	r.Patch("/leads/{id}/status", h.TransitionLead)
	r.Post("/leads/{id}/promote", h.PromoteLead)
	r.Delete("/leads/{id}", h.DeleteLead)

	r.Get("/customers", h.ListCustomers)
	r.Post("/customers", h.CreateCustomer)
	r.Get("/customers/{id}", h.ShowCustomer)
	r.Patch("/customers/{id}", h.UpdateCustomer)
}

// CreateLead registers a new prospect.
func (h *Handler) CreateLead(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	lead, err := h.service.CreateLead(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, lead)
}

// ListLeads serves leads with an optional status filter.
func (h *Handler) ListLeads(w http.ResponseWriter, r *http.Request) {
	var status *LeadStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := LeadStatus(raw)
		status = &s
	}
	leads, err := h.service.ListLeads(r.Context(), status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"leads": leads})
}

// DueFollowUps serves non-terminal leads past their follow-up date.
func (h *Handler) DueFollowUps(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.DueFollowUps(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"leads": leads})
}

// ShowLead serves one lead.
func (h *Handler) ShowLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	lead, err := h.service.GetLead(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

// UpdateLead edits lead fields.
func (h *Handler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	lead, err := h.service.UpdateLead(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

// TransitionLead moves a lead along the pipeline.
func (h *Handler) TransitionLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req TransitionLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	lead, err := h.service.TransitionLead(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lead)
}

// PromoteLead converts a lead into a customer.
func (h *Handler) PromoteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req PromoteLeadRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	customer, err := h.service.PromoteLead(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

// DeleteLead removes a lead.
func (h *Handler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteLead(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateCustomer registers a buyer directly.
func (h *Handler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CreateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

// ListCustomers serves customers with an optional status filter.
func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	var status *CustomerStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := CustomerStatus(raw)
		status = &s
	}
	customers, err := h.service.ListCustomers(r.Context(), status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"customers": customers})
}

// ShowCustomer serves one customer with derived totals.
func (h *Handler) ShowCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	customer, err := h.service.GetCustomer(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

// UpdateCustomer edits customer fields.
func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	customer, err := h.service.UpdateCustomer(r.Context(), id, req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrLeadNotFound), errors.Is(err, ErrCustomerNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrInvalidStatus):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		httpx.Problem(w, http.StatusConflict, "Invalid Transition", err.Error())
	case errors.Is(err, ErrLeadTerminal):
		httpx.Problem(w, http.StatusConflict, "Lead Closed", err.Error())
	default:
		h.logger.Error("directory request failed", slog.Any("error", err))
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
