package directory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/shared"
)

// Service coordinates the lead pipeline and the customer book.
type Service struct {
	leads       LeadRepository
	customers   CustomerRepository
	invalidator *shared.Invalidator
	now         func() time.Time
}

// NewService builds Service. Invalidator may be nil.
func NewService(leads LeadRepository, customers CustomerRepository, invalidator *shared.Invalidator) *Service {
	return &Service{leads: leads, customers: customers, invalidator: invalidator, now: time.Now}
}

// CreateLead registers a new prospect as NEW.
func (s *Service) CreateLead(ctx context.Context, req CreateLeadRequest) (*Lead, error) {
	lead, err := s.leads.Create(ctx, Lead{
		CompanyName:      req.CompanyName,
		ContactName:      req.ContactName,
		Email:            req.Email,
		Phone:            req.Phone,
		Country:          req.Country,
		Source:           req.Source,
		Status:           LeadNew,
		EstimatedValue:   req.EstimatedValue,
		NextFollowUpDate: req.NextFollowUpDate,
		Notes:            req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("create lead: %w", err)
	}
	s.invalidator.Invalidate(ctx, shared.ViewLeads, shared.ViewDashboard)
	return lead, nil
}

// GetLead returns one lead.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (*Lead, error) {
	return s.leads.Get(ctx, id)
}

// ListLeads returns leads, optionally filtered by status.
func (s *Service) ListLeads(ctx context.Context, status *LeadStatus) ([]Lead, error) {
	if status != nil && !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.leads.List(ctx, status)
}

// DueFollowUps returns non-terminal leads whose follow-up date has
// passed.
func (s *Service) DueFollowUps(ctx context.Context) ([]Lead, error) {
	return s.leads.ListDueFollowUps(ctx, s.now())
}

// UpdateLead edits contact and planning fields.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, req UpdateLeadRequest) (*Lead, error) {
	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Source != nil {
		updates["source"] = *req.Source
	}
	if req.EstimatedValue != nil {
		updates["estimated_value"] = *req.EstimatedValue
	}
	if req.NextFollowUpDate != nil {
		updates["next_follow_up_date"] = *req.NextFollowUpDate
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if err := s.leads.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewLeads)
	return s.leads.Get(ctx, id)
}

// TransitionLead moves a lead along the pipeline. Forward single-step
// only; LOST is reachable from any non-terminal state.
func (s *Service) TransitionLead(ctx context.Context, id uuid.UUID, next LeadStatus) (*Lead, error) {
	if !next.IsValid() {
		return nil, ErrInvalidStatus
	}
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !lead.Status.CanTransition(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, lead.Status, next)
	}
	if err := s.leads.UpdateStatus(ctx, id, lead.Status, next); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewLeads, shared.ViewDashboard)
	return s.leads.Get(ctx, id)
}

// DeleteLead removes a lead.
func (s *Service) DeleteLead(ctx context.Context, id uuid.UUID) error {
	if err := s.leads.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidator.Invalidate(ctx, shared.ViewLeads, shared.ViewDashboard)
	return nil
}

// PromoteLead creates a customer from a lead and marks the lead
// CONVERTED in the same operation. The lead row is kept for history and
// the customer carries the back-reference.
func (s *Service) PromoteLead(ctx context.Context, id uuid.UUID, req PromoteLeadRequest) (*Customer, error) {
	lead, err := s.leads.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if lead.Status.IsTerminal() {
		return nil, ErrLeadTerminal
	}

	customer, err := s.customers.CreateFromLead(ctx, Customer{
		CompanyName: lead.CompanyName,
		ContactName: lead.ContactName,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Country:     lead.Country,
		Industry:    req.Industry,
		Status:      CustomerActive,
	}, id)
	if err != nil {
		return nil, fmt.Errorf("promote lead %s: %w", id, err)
	}
	s.invalidator.Invalidate(ctx, shared.ViewLeads, shared.ViewCustomers, shared.ViewDashboard)
	return customer, nil
}

// CreateCustomer registers a buyer with no lead history.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	customer, err := s.customers.Create(ctx, Customer{
		CompanyName: req.CompanyName,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Country:     req.Country,
		Industry:    req.Industry,
		Status:      CustomerActive,
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	s.invalidator.Invalidate(ctx, shared.ViewCustomers, shared.ViewDashboard)
	return customer, nil
}

// GetCustomer returns one customer with derived order totals.
func (s *Service) GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error) {
	return s.customers.Get(ctx, id)
}

// ListCustomers returns customers, optionally filtered by status.
func (s *Service) ListCustomers(ctx context.Context, status *CustomerStatus) ([]Customer, error) {
	if status != nil && !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.customers.List(ctx, status)
}

// UpdateCustomer edits customer contact fields and status.
func (s *Service) UpdateCustomer(ctx context.Context, id uuid.UUID, req UpdateCustomerRequest) (*Customer, error) {
	updates := map[string]interface{}{}
	if req.CompanyName != nil {
		updates["company_name"] = *req.CompanyName
	}
	if req.ContactName != nil {
		updates["contact_name"] = *req.ContactName
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Country != nil {
		updates["country"] = *req.Country
	}
	if req.Industry != nil {
		updates["industry"] = *req.Industry
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return nil, ErrInvalidStatus
		}
		updates["status"] = *req.Status
	}
	if err := s.customers.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewCustomers)
	return s.customers.Get(ctx, id)
}
