package orders

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/meridian-agro/meridian/internal/inventory"
	"github.com/meridian-agro/meridian/internal/rfq"
)

type memoryRepo struct {
	mu     sync.Mutex
	orders map[uuid.UUID]*Order
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: make(map[uuid.UUID]*Order)}
}

func (r *memoryRepo) Create(_ context.Context, o Order) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.ID = uuid.New()
	for i := range o.Lines {
		o.Lines[i].ID = uuid.New()
		o.Lines[i].OrderID = o.ID
	}
	stored := o
	r.orders[o.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (r *memoryRepo) GetByRef(_ context.Context, orderNo string) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.OrderNo == orderNo {
			copied := *o
			return &copied, nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryRepo) List(_ context.Context, req ListRequest) ([]Order, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Order
	for _, o := range r.orders {
		if req.Status != nil && o.Status != *req.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, len(out), nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	if o.Status != from {
		return ErrInvalidTransition
	}
	o.Status = to
	return nil
}

func (r *memoryRepo) UpdatePaymentStatus(_ context.Context, id uuid.UUID, status PaymentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = status
	return nil
}

// fakeLedger mirrors the ledger arithmetic so reservation flows can be
// asserted end to end.
type fakeLedger struct {
	mu       sync.Mutex
	avail    map[uuid.UUID]float64
	reserved map[uuid.UUID]float64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{avail: make(map[uuid.UUID]float64), reserved: make(map[uuid.UUID]float64)}
}

func (l *fakeLedger) Reserve(_ context.Context, productID uuid.UUID, qty float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.avail[productID]; !ok {
		return inventory.ErrRecordNotFound
	}
	if l.avail[productID] < qty {
		return inventory.ErrInsufficientStock
	}
	l.avail[productID] -= qty
	l.reserved[productID] += qty
	return nil
}

func (l *fakeLedger) Release(_ context.Context, productID uuid.UUID, qty float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reserved[productID] < qty {
		return inventory.ErrInvalidRelease
	}
	l.reserved[productID] -= qty
	l.avail[productID] += qty
	return nil
}

func (l *fakeLedger) Consume(_ context.Context, productID uuid.UUID, qty float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.reserved[productID] < qty {
		return inventory.ErrInvalidRelease
	}
	l.reserved[productID] -= qty
	return nil
}

type allowAllGate struct {
	inactive map[uuid.UUID]bool
}

func (g allowAllGate) EnsureActive(_ context.Context, productID uuid.UUID) error {
	if g.inactive[productID] {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	return nil
}

type fakeRFQs struct {
	converted map[uuid.UUID]uuid.UUID
}

func newFakeRFQs() *fakeRFQs {
	return &fakeRFQs{converted: make(map[uuid.UUID]uuid.UUID)}
}

func (f *fakeRFQs) EnsureConvertible(_ context.Context, rfqID uuid.UUID) error {
	if _, ok := f.converted[rfqID]; ok {
		return rfq.ErrConverted
	}
	return nil
}

func (f *fakeRFQs) MarkConverted(_ context.Context, rfqID, orderID uuid.UUID) error {
	if _, ok := f.converted[rfqID]; ok {
		return rfq.ErrConverted
	}
	f.converted[rfqID] = orderID
	return nil
}

type fixture struct {
	svc    *Service
	repo   *memoryRepo
	ledger *fakeLedger
	rfqs   *fakeRFQs
	gate   allowAllGate
}

func newFixture() *fixture {
	f := &fixture{
		repo:   newMemoryRepo(),
		ledger: newFakeLedger(),
		rfqs:   newFakeRFQs(),
		gate:   allowAllGate{inactive: make(map[uuid.UUID]bool)},
	}
	f.svc = NewService(ServiceConfig{
		Repo:      f.repo,
		Inventory: f.ledger,
		Products:  f.gate,
		RFQs:      f.rfqs,
	})
	return f
}

func createRequest(lines ...LineRequest) CreateRequest {
	return CreateRequest{
		DestinationCountry: "Netherlands",
		Currency:           "USD",
		Lines:              lines,
	}
}

func TestCreateReservesEveryLine(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p1, p2 := uuid.New(), uuid.New()
	f.ledger.avail[p1] = 100
	f.ledger.avail[p2] = 50

	order, err := f.svc.Create(ctx, createRequest(
		LineRequest{ProductID: p1, Quantity: 40, UnitPrice: 2.5},
		LineRequest{ProductID: p2, Quantity: 10, UnitPrice: 8},
	))
	require.NoError(t, err)
	require.Equal(t, StatusPending, order.Status)
	require.Equal(t, PaymentUnpaid, order.PaymentStatus)
	require.Regexp(t, `^ORD-\d{8}-[0-9A-Z]{4}$`, order.OrderNo)
	require.InDelta(t, 180.0, order.TotalAmount, 1e-9)

	require.InDelta(t, 60.0, f.ledger.avail[p1], 1e-9)
	require.InDelta(t, 40.0, f.ledger.reserved[p1], 1e-9)
	require.InDelta(t, 40.0, f.ledger.avail[p2], 1e-9)
	require.InDelta(t, 10.0, f.ledger.reserved[p2], 1e-9)
}

func TestCreateRollsBackEarlierReservations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p1, p2 := uuid.New(), uuid.New()
	f.ledger.avail[p1] = 100
	f.ledger.avail[p2] = 5

	_, err := f.svc.Create(ctx, createRequest(
		LineRequest{ProductID: p1, Quantity: 40, UnitPrice: 2.5},
		LineRequest{ProductID: p2, Quantity: 10, UnitPrice: 8},
	))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)

	// The first line's hold was released and no order was persisted.
	require.InDelta(t, 100.0, f.ledger.avail[p1], 1e-9)
	require.InDelta(t, 0.0, f.ledger.reserved[p1], 1e-9)
	_, total, err := f.svc.List(ctx, ListRequest{})
	require.NoError(t, err)
	require.Zero(t, total)
}

func TestCreateRejectsInactiveProduct(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 100
	f.gate.inactive[p] = true

	_, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 1, UnitPrice: 1}))
	require.ErrorIs(t, err, ErrProductUnavailable)
	require.InDelta(t, 100.0, f.ledger.avail[p], 1e-9)
}

func TestCreateExactAvailabilityThenShortfall(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 5

	_, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 10}))
	require.NoError(t, err)
	require.InDelta(t, 0.0, f.ledger.avail[p], 1e-9)
	require.InDelta(t, 5.0, f.ledger.reserved[p], 1e-9)

	_, err = f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 1, UnitPrice: 10}))
	require.ErrorIs(t, err, inventory.ErrInsufficientStock)
}

func TestTransitionForwardOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 10
	order, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 3}))
	require.NoError(t, err)

	// Skipping straight to SHIPPED is rejected.
	_, err = f.svc.Transition(ctx, order.ID, StatusShipped)
	require.ErrorIs(t, err, ErrInvalidTransition)

	for _, status := range []Status{StatusConfirmed, StatusInProduction, StatusReady} {
		order, err = f.svc.Transition(ctx, order.ID, status)
		require.NoError(t, err)
		require.Equal(t, status, order.Status)
	}

	// Backward move is rejected.
	_, err = f.svc.Transition(ctx, order.ID, StatusConfirmed)
	require.ErrorIs(t, err, ErrInvalidTransition)

	// CANCELLED is not a transition target.
	_, err = f.svc.Transition(ctx, order.ID, StatusCancelled)
	require.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDispatchConsumesReservedStock(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 20
	order, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 3}))
	require.NoError(t, err)

	for _, status := range []Status{StatusConfirmed, StatusInProduction, StatusReady, StatusShipped} {
		order, err = f.svc.Transition(ctx, order.ID, status)
		require.NoError(t, err)
	}
	require.Equal(t, StatusShipped, order.Status)

	// Reserved stock left permanently; available untouched by dispatch.
	require.InDelta(t, 15.0, f.ledger.avail[p], 1e-9)
	require.InDelta(t, 0.0, f.ledger.reserved[p], 1e-9)
}

func TestCancelReleasesReservations(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 20
	order, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 3}))
	require.NoError(t, err)

	order, err = f.svc.Transition(ctx, order.ID, StatusConfirmed)
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)
	require.InDelta(t, 20.0, f.ledger.avail[p], 1e-9)
	require.InDelta(t, 0.0, f.ledger.reserved[p], 1e-9)
}

func TestCancelRejectedAfterDispatch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 20
	order, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 3}))
	require.NoError(t, err)

	for _, status := range []Status{StatusConfirmed, StatusInProduction, StatusReady, StatusShipped} {
		order, err = f.svc.Transition(ctx, order.ID, status)
		require.NoError(t, err)
	}

	_, err = f.svc.Cancel(ctx, order.ID)
	require.ErrorIs(t, err, ErrNotCancellable)
}

func TestCreateFromRFQMarksConverted(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 20
	rfqID := uuid.New()

	req := createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 3})
	req.RFQID = &rfqID

	order, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, order.RFQID)
	require.Equal(t, order.ID, f.rfqs.converted[rfqID])

	// Converting the same RFQ again is rejected before any hold is
	// taken.
	_, err = f.svc.Create(ctx, req)
	require.ErrorIs(t, err, rfq.ErrConverted)
	require.InDelta(t, 15.0, f.ledger.avail[p], 1e-9)
}

func TestUpdatePaymentStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	p := uuid.New()
	f.ledger.avail[p] = 20
	order, err := f.svc.Create(ctx, createRequest(LineRequest{ProductID: p, Quantity: 5, UnitPrice: 3}))
	require.NoError(t, err)

	updated, err := f.svc.UpdatePaymentStatus(ctx, order.ID, PaymentPartial)
	require.NoError(t, err)
	require.Equal(t, PaymentPartial, updated.PaymentStatus)

	_, err = f.svc.UpdatePaymentStatus(ctx, order.ID, PaymentStatus("REFUNDED"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}
