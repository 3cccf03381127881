package directory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryLeads struct {
	mu    sync.Mutex
	leads map[uuid.UUID]*Lead
}

func newMemoryLeads() *memoryLeads {
	return &memoryLeads{leads: make(map[uuid.UUID]*Lead)}
}

func (r *memoryLeads) Create(_ context.Context, l Lead) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.ID = uuid.New()
	stored := l
	r.leads[l.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryLeads) Get(_ context.Context, id uuid.UUID) (*Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *l
	return &copied, nil
}

func (r *memoryLeads) List(_ context.Context, status *LeadStatus) ([]Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Lead
	for _, l := range r.leads {
		if status != nil && l.Status != *status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *memoryLeads) ListDueFollowUps(_ context.Context, before time.Time) ([]Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Lead
	for _, l := range r.leads {
		if l.NextFollowUpDate == nil || l.Status.IsTerminal() {
			continue
		}
		if !l.NextFollowUpDate.After(before) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *memoryLeads) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return ErrLeadNotFound
	}
	if v, ok := updates["company_name"]; ok {
		l.CompanyName = v.(string)
	}
	if v, ok := updates["estimated_value"]; ok {
		val := v.(float64)
		l.EstimatedValue = &val
	}
	return nil
}

func (r *memoryLeads) UpdateStatus(_ context.Context, id uuid.UUID, from, to LeadStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return ErrLeadNotFound
	}
	if l.Status != from {
		return ErrInvalidTransition
	}
	l.Status = to
	return nil
}

func (r *memoryLeads) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.leads[id]; !ok {
		return ErrLeadNotFound
	}
	delete(r.leads, id)
	return nil
}

type memoryCustomers struct {
	mu        sync.Mutex
	leads     *memoryLeads
	customers map[uuid.UUID]*Customer
}

func newMemoryCustomers(leads *memoryLeads) *memoryCustomers {
	return &memoryCustomers{leads: leads, customers: make(map[uuid.UUID]*Customer)}
}

func (r *memoryCustomers) Create(_ context.Context, c Customer) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = uuid.New()
	stored := c
	r.customers[c.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryCustomers) CreateFromLead(ctx context.Context, c Customer, leadID uuid.UUID) (*Customer, error) {
	r.leads.mu.Lock()
	lead, ok := r.leads.leads[leadID]
	if !ok {
		r.leads.mu.Unlock()
		return nil, ErrLeadNotFound
	}
	if lead.Status.IsTerminal() {
		r.leads.mu.Unlock()
		return nil, ErrLeadTerminal
	}
	lead.Status = LeadConverted
	r.leads.mu.Unlock()

	c.OriginatingLeadID = &leadID
	return r.Create(ctx, c)
}

func (r *memoryCustomers) Get(_ context.Context, id uuid.UUID) (*Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *memoryCustomers) List(_ context.Context, status *CustomerStatus) ([]Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Customer
	for _, c := range r.customers {
		if status != nil && c.Status != *status {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

func (r *memoryCustomers) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return ErrCustomerNotFound
	}
	if v, ok := updates["status"]; ok {
		c.Status = v.(CustomerStatus)
	}
	if v, ok := updates["industry"]; ok {
		val := v.(string)
		c.Industry = &val
	}
	return nil
}

func newTestService() (*Service, *memoryLeads, *memoryCustomers) {
	leads := newMemoryLeads()
	customers := newMemoryCustomers(leads)
	return NewService(leads, customers, nil), leads, customers
}

func leadFixture() CreateLeadRequest {
	return CreateLeadRequest{
		CompanyName: "Atlas Foods Ltd",
		ContactName: "Kwame Mensah",
		Email:       "kwame@atlasfoods.example",
		Country:     "Ghana",
	}
}

func TestLeadPipelineForwardOnly(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, leadFixture())
	require.NoError(t, err)
	require.Equal(t, LeadNew, lead.Status)

	// Skipping a step is rejected.
	_, err = svc.TransitionLead(ctx, lead.ID, LeadQualified)
	require.ErrorIs(t, err, ErrInvalidTransition)

	lead, err = svc.TransitionLead(ctx, lead.ID, LeadContacted)
	require.NoError(t, err)
	require.Equal(t, LeadContacted, lead.Status)

	// Backward move is rejected.
	_, err = svc.TransitionLead(ctx, lead.ID, LeadNew)
	require.ErrorIs(t, err, ErrInvalidTransition)

	lead, err = svc.TransitionLead(ctx, lead.ID, LeadQualified)
	require.NoError(t, err)
	require.Equal(t, LeadQualified, lead.Status)
}

func TestLeadLostFromAnyNonTerminalState(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, leadFixture())
	require.NoError(t, err)

	lead, err = svc.TransitionLead(ctx, lead.ID, LeadLost)
	require.NoError(t, err)
	require.Equal(t, LeadLost, lead.Status)

	// Terminal leads cannot move again.
	_, err = svc.TransitionLead(ctx, lead.ID, LeadContacted)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.TransitionLead(ctx, lead.ID, LeadLost)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestPromoteLeadCreatesCustomerAndConverts(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	lead, err := svc.CreateLead(ctx, leadFixture())
	require.NoError(t, err)

	industry := "Food & Beverage"
	customer, err := svc.PromoteLead(ctx, lead.ID, PromoteLeadRequest{Industry: &industry})
	require.NoError(t, err)
	require.Equal(t, lead.CompanyName, customer.CompanyName)
	require.Equal(t, lead.ContactName, customer.ContactName)
	require.Equal(t, lead.Country, customer.Country)
	require.Equal(t, CustomerActive, customer.Status)
	require.NotNil(t, customer.OriginatingLeadID)
	require.Equal(t, lead.ID, *customer.OriginatingLeadID)

	// The lead survives, marked CONVERTED.
	converted, err := svc.GetLead(ctx, lead.ID)
	require.NoError(t, err)
	require.Equal(t, LeadConverted, converted.Status)

	// A second promotion is rejected.
	_, err = svc.PromoteLead(ctx, lead.ID, PromoteLeadRequest{})
	require.ErrorIs(t, err, ErrLeadTerminal)
}

func TestDueFollowUps(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	future := time.Now().Add(48 * time.Hour)

	due := leadFixture()
	due.NextFollowUpDate = &past
	overdue, err := svc.CreateLead(ctx, due)
	require.NoError(t, err)

	later := leadFixture()
	later.NextFollowUpDate = &future
	_, err = svc.CreateLead(ctx, later)
	require.NoError(t, err)

	// A lost lead with a past follow-up date is excluded.
	lostReq := leadFixture()
	lostReq.NextFollowUpDate = &past
	lost, err := svc.CreateLead(ctx, lostReq)
	require.NoError(t, err)
	_, err = svc.TransitionLead(ctx, lost.ID, LeadLost)
	require.NoError(t, err)

	got, err := svc.DueFollowUps(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, overdue.ID, got[0].ID)
}

func TestCustomerStatusToggle(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	customer, err := svc.CreateCustomer(ctx, CreateCustomerRequest{
		CompanyName: "Baltic Imports OU",
		ContactName: "Liis Tamm",
		Email:       "liis@balticimports.example",
		Country:     "Estonia",
	})
	require.NoError(t, err)
	require.Equal(t, CustomerActive, customer.Status)

	inactive := CustomerInactive
	updated, err := svc.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{Status: &inactive})
	require.NoError(t, err)
	require.Equal(t, CustomerInactive, updated.Status)

	bogus := CustomerStatus("SUSPENDED")
	_, err = svc.UpdateCustomer(ctx, customer.ID, UpdateCustomerRequest{Status: &bogus})
	require.ErrorIs(t, err, ErrInvalidStatus)
}
