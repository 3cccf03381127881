package rfq

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/platform/httpx"
)

// Handler exposes the public submission endpoint and the staff triage
// endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler constructs the RFQ HTTP handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountPublicRoutes attaches the buyer-facing intake route.
func (h *Handler) MountPublicRoutes(r chi.Router) {
	r.Post("/rfq", h.Submit)
}

// MountRoutes attaches the staff triage routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rfqs", h.List)
	r.Get("/rfqs/{id}", h.Show)
	r.Get("/rfqs/ref/{rfqNo}", h.ShowByRef)
	r.Patch("/rfqs/{id}/status", h.UpdateStatus)
	r.Patch("/rfqs/{id}/notes", h.Annotate)
	r.Delete("/rfqs/{id}", h.Delete)
}

// Submit accepts a buyer quote request and replies with the reference
// number the buyer can quote in follow-up emails.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	created, err := h.service.Submit(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"id":     created.ID,
		"rfq_no": created.RFQNo,
		"status": created.Status,
	})
}

// List serves the admin RFQ listing with optional status filter.
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
	req.Limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	req.Offset, _ = strconv.Atoi(r.URL.Query().Get("offset"))
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}

	rfqs, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"rfqs": rfqs, "total": total})
}

// Show serves one RFQ by id.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// ShowByRef serves one RFQ by reference number.
func (h *Handler) ShowByRef(w http.ResponseWriter, r *http.Request) {
	rec, err := h.service.GetByRef(r.Context(), chi.URLParam(r, "rfqNo"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// UpdateStatus moves the RFQ to another triage status.
func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	rec, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// Annotate replaces the internal staff notes.
func (h *Handler) Annotate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	var req AnnotateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "malformed request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.ValidationProblem(w, validationFields(err))
		return
	}
	rec, err := h.service.Annotate(r.Context(), id, req.InternalNotes)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

// Delete removes an unconverted RFQ.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid rfq id")
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
	case errors.Is(err, ErrConverted):
		httpx.Problem(w, http.StatusConflict, "Already Converted", err.Error())
	case errors.Is(err, ErrDuplicateRef):
		httpx.Problem(w, http.StatusConflict, "Reference Collision", err.Error())
	default:
		h.logger.Error("rfq request failed", slog.Any("error", err))
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
