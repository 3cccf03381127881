package rfq

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/notify"
	"github.com/meridian-agro/meridian/internal/shared"
	"github.com/meridian-agro/meridian/jobs"
)

// Service coordinates RFQ intake and triage.
type Service struct {
	repo        Repository
	notifier    notify.Notifier
	invalidator *shared.Invalidator
	now         func() time.Time
}

// NewService builds Service. Notifier and invalidator may be nil-ish
// (notify.Nop, nil invalidator) in tests.
func NewService(repo Repository, notifier notify.Notifier, invalidator *shared.Invalidator) *Service {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &Service{repo: repo, notifier: notifier, invalidator: invalidator, now: time.Now}
}

// Submit is the public intake operation. Validation of required fields
// happens at the handler; here the request is persisted as NEW with a
// fresh reference number, and the staff notification goes out
// fire-and-forget.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*RFQ, error) {
	products := make([]RequestedProduct, 0, len(req.Products))
	for _, item := range req.Products {
		products = append(products, RequestedProduct{
			ProductID: item.ProductID,
			Name:      item.Name,
			Qty:       item.Qty,
			Packaging: item.Packaging,
		})
	}

	rec := RFQ{
		RFQNo:              shared.NewDocRef("RFQ", s.now()),
		FullName:           req.FullName,
		CompanyName:        req.CompanyName,
		Email:              req.Email,
		Phone:              req.Phone,
		WhatsApp:           req.WhatsApp,
		Role:               req.Role,
		DestinationCountry: req.DestinationCountry,
		Incoterm:           req.Incoterm,
		Timeline:           req.Timeline,
		RequestedProducts:  products,
		ComplianceNeeds:    ComplianceNeeds{IntendedUse: req.IntendedUse, RequireCOA: req.RequireCOA},
		Notes:              req.Notes,
		Status:             StatusNew,
	}

	created, err := s.repo.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create rfq: %w", err)
	}

	s.notifier.RFQSubmitted(ctx, jobs.RFQSubmittedPayload{
		RFQID:       created.ID.String(),
		RFQNo:       created.RFQNo,
		CompanyName: created.CompanyName,
		Email:       created.Email,
		Destination: created.DestinationCountry,
		LineCount:   len(created.RequestedProducts),
	})
	s.invalidator.Invalidate(ctx, shared.ViewRFQs, shared.ViewDashboard)

	return created, nil
}

// Get returns an RFQ by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*RFQ, error) {
	return s.repo.Get(ctx, id)
}

// GetByRef returns an RFQ by its public reference number.
func (s *Service) GetByRef(ctx context.Context, rfqNo string) (*RFQ, error) {
	return s.repo.GetByRef(ctx, rfqNo)
}

// List returns RFQs for the back office.
func (s *Service) List(ctx context.Context, req ListRequest) ([]RFQ, int, error) {
	return s.repo.List(ctx, req)
}

// UpdateStatus sets the triage status. Only enum membership is checked;
// any known status may follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) (*RFQ, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if _, err := s.repo.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewRFQs, shared.ViewDashboard)
	return s.repo.Get(ctx, id)
}

// Annotate replaces the internal staff notes. No workflow effect.
func (s *Service) Annotate(ctx context.Context, id uuid.UUID, internalNotes string) (*RFQ, error) {
	if err := s.repo.UpdateInternalNotes(ctx, id, internalNotes); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewRFQs)
	return s.repo.Get(ctx, id)
}

// MarkConverted links the RFQ to the order created from it and forces
// the status to WON. Called by order fulfillment during conversion.
func (s *Service) MarkConverted(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ConvertedOrderID != nil {
		return ErrConverted
	}
	if err := s.repo.MarkConverted(ctx, id, orderID); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, shared.ViewRFQs, shared.ViewDashboard)
	return nil
}

// Delete removes an RFQ. Converted RFQs are kept for traceability.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if existing.ConvertedOrderID != nil {
		return ErrConverted
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, shared.ViewRFQs, shared.ViewDashboard)
	return nil
}
