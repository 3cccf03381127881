package rfq

import (
	"context"
	"regexp"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu   sync.Mutex
	rfqs map[uuid.UUID]*RFQ
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rfqs: make(map[uuid.UUID]*RFQ)}
}

func (r *memoryRepo) Create(_ context.Context, rec RFQ) (*RFQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.rfqs {
		if existing.RFQNo == rec.RFQNo {
			return nil, ErrDuplicateRef
		}
	}
	rec.ID = uuid.New()
	stored := rec
	r.rfqs[rec.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*RFQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rfqs[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memoryRepo) GetByRef(_ context.Context, rfqNo string) (*RFQ, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.rfqs {
		if rec.RFQNo == rfqNo {
			copied := *rec
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, req ListRequest) ([]RFQ, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RFQ
	for _, rec := range r.rfqs {
		if req.Status != nil && rec.Status != *req.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, len(out), nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, status Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rfqs[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = status
	return nil
}

func (r *memoryRepo) UpdateInternalNotes(_ context.Context, id uuid.UUID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rfqs[id]
	if !ok {
		return ErrNotFound
	}
	rec.InternalNotes = &notes
	return nil
}

func (r *memoryRepo) MarkConverted(_ context.Context, id uuid.UUID, orderID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.rfqs[id]
	if !ok {
		return ErrNotFound
	}
	rec.Status = StatusWon
	rec.ConvertedOrderID = &orderID
	return nil
}

func (r *memoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rfqs[id]; !ok {
		return ErrNotFound
	}
	delete(r.rfqs, id)
	return nil
}

func submitFixture() SubmitRequest {
	return SubmitRequest{
		FullName:           "Amina Diallo",
		CompanyName:        "Sahel Trading GmbH",
		Email:              "amina@saheltrading.example",
		DestinationCountry: "Germany",
		Products: []SubmitProductItem{
			{Name: "Dried Hibiscus Flowers", Qty: "2 x 20ft container"},
		},
	}
}

func TestSubmitAssignsRefAndNewStatus(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)

	created, err := svc.Submit(context.Background(), submitFixture())
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^RFQ-\d{8}-[0-9A-Z]{4}$`), created.RFQNo)
	require.Equal(t, StatusNew, created.Status)
	require.Len(t, created.RequestedProducts, 1)
	require.Nil(t, created.ConvertedOrderID)
}

func TestGetByRefRoundTrip(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)

	found, err := svc.GetByRef(ctx, created.RFQNo)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = svc.GetByRef(ctx, "RFQ-19700101-ZZZZ")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStatusTransitionsAreLax(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)

	// Any known status may follow any other, including leaving a
	// terminal state after a mis-triage.
	for _, status := range []Status{StatusLost, StatusNegotiating, StatusQuoted, StatusWon, StatusContacted} {
		rec, err := svc.UpdateStatus(ctx, created.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, rec.Status)
	}

	_, err = svc.UpdateStatus(ctx, created.ID, Status("ARCHIVED"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAnnotateKeepsStatus(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)

	rec, err := svc.Annotate(ctx, created.ID, "quoted USD 2,150/MT CIF Hamburg")
	require.NoError(t, err)
	require.Equal(t, StatusNew, rec.Status)
	require.NotNil(t, rec.InternalNotes)
	require.Equal(t, "quoted USD 2,150/MT CIF Hamburg", *rec.InternalNotes)
}

func TestDeleteBlockedOnceConverted(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)

	orderID := uuid.New()
	require.NoError(t, svc.MarkConverted(ctx, created.ID, orderID))

	rec, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, StatusWon, rec.Status)
	require.NotNil(t, rec.ConvertedOrderID)
	require.Equal(t, orderID, *rec.ConvertedOrderID)

	require.ErrorIs(t, svc.Delete(ctx, created.ID), ErrConverted)
	require.ErrorIs(t, svc.MarkConverted(ctx, created.ID, uuid.New()), ErrConverted)
}

func TestDeleteUnconverted(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	created, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByStatus(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil, nil)
	ctx := context.Background()

	first, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)
	second, err := svc.Submit(ctx, submitFixture())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, second.ID, StatusQuoted)
	require.NoError(t, err)

	status := StatusNew
	rfqs, total, err := svc.List(ctx, ListRequest{Status: &status})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, rfqs, 1)
	require.Equal(t, first.ID, rfqs[0].ID)
}
