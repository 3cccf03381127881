package shipments

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu        sync.Mutex
	shipments map[uuid.UUID]*Shipment
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{shipments: make(map[uuid.UUID]*Shipment)}
}

func (r *memoryRepo) Create(_ context.Context, s Shipment) (*Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.ID = uuid.New()
	stored := s
	r.shipments[s.ID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryRepo) Get(_ context.Context, id uuid.UUID) (*Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memoryRepo) List(_ context.Context, status *Status) ([]Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Shipment
	for _, s := range r.shipments {
		if status != nil && s.Status != *status {
			continue
		}
		out = append(out, *s)
	}
	return out, nil
}

func (r *memoryRepo) ListByOrder(_ context.Context, orderID uuid.UUID) ([]Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Shipment
	for _, s := range r.shipments {
		if s.OrderID == orderID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *memoryRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[id]
	if !ok {
		return ErrNotFound
	}
	if s.Status != from {
		return ErrInvalidTransition
	}
	s.Status = to
	return nil
}

func (r *memoryRepo) Update(_ context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.shipments[id]
	if !ok {
		return ErrNotFound
	}
	if v, ok := updates["container_no"]; ok {
		val := v.(string)
		s.ContainerNo = &val
	}
	if v, ok := updates["destination_port"]; ok {
		s.DestinationPort = v.(string)
	}
	return nil
}

func (r *memoryRepo) AllDelivered(_ context.Context, orderID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total, delivered := 0, 0
	for _, s := range r.shipments {
		if s.OrderID != orderID {
			continue
		}
		total++
		if s.Status == StatusDelivered {
			delivered++
		}
	}
	return total > 0 && total == delivered, nil
}

type fakeOrders struct {
	shippable map[uuid.UUID]bool
	delivered map[uuid.UUID]int
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{shippable: make(map[uuid.UUID]bool), delivered: make(map[uuid.UUID]int)}
}

func (f *fakeOrders) EnsureShippable(_ context.Context, orderID uuid.UUID) error {
	if !f.shippable[orderID] {
		return ErrOrderNotReady
	}
	return nil
}

func (f *fakeOrders) MarkDelivered(_ context.Context, orderID uuid.UUID) error {
	f.delivered[orderID]++
	return nil
}

func newTestService() (*Service, *memoryRepo, *fakeOrders) {
	repo := newMemoryRepo()
	ordersPort := newFakeOrders()
	return NewService(repo, ordersPort, nil, nil, nil), repo, ordersPort
}

func advance(t *testing.T, svc *Service, id uuid.UUID, statuses ...Status) *Shipment {
	t.Helper()
	var shipment *Shipment
	var err error
	for _, status := range statuses {
		shipment, err = svc.UpdateStatus(context.Background(), id, status)
		require.NoError(t, err)
	}
	return shipment
}

func TestCreateGatedOnOrderReadiness(t *testing.T) {
	svc, _, ordersPort := newTestService()
	ctx := context.Background()

	orderID := uuid.New()
	req := CreateRequest{OrderID: orderID, DestinationPort: "Rotterdam"}

	_, err := svc.Create(ctx, req)
	require.ErrorIs(t, err, ErrOrderNotReady)

	ordersPort.shippable[orderID] = true
	shipment, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.Equal(t, StatusPreparing, shipment.Status)
	require.Regexp(t, `^SHP-\d{8}-[0-9A-Z]{4}$`, shipment.ShipmentNo)
}

func TestStatusForwardOnlyNoCancel(t *testing.T) {
	svc, _, ordersPort := newTestService()
	ctx := context.Background()

	orderID := uuid.New()
	ordersPort.shippable[orderID] = true
	shipment, err := svc.Create(ctx, CreateRequest{OrderID: orderID, DestinationPort: "Hamburg"})
	require.NoError(t, err)

	// Skipping a step is rejected.
	_, err = svc.UpdateStatus(ctx, shipment.ID, StatusArrived)
	require.ErrorIs(t, err, ErrInvalidTransition)

	shipment = advance(t, svc, shipment.ID, StatusInTransit, StatusArrived)

	// Backward move is rejected; there is no cancellation state.
	_, err = svc.UpdateStatus(ctx, shipment.ID, StatusInTransit)
	require.ErrorIs(t, err, ErrInvalidTransition)
	_, err = svc.UpdateStatus(ctx, shipment.ID, Status("CANCELLED"))
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeliveryCascadesToOrder(t *testing.T) {
	svc, _, ordersPort := newTestService()
	ctx := context.Background()

	orderID := uuid.New()
	ordersPort.shippable[orderID] = true

	first, err := svc.Create(ctx, CreateRequest{OrderID: orderID, DestinationPort: "Mombasa"})
	require.NoError(t, err)
	second, err := svc.Create(ctx, CreateRequest{OrderID: orderID, DestinationPort: "Mombasa"})
	require.NoError(t, err)

	advance(t, svc, first.ID, StatusInTransit, StatusArrived, StatusCleared, StatusDelivered)
	// One of two shipments delivered: no cascade yet.
	require.Zero(t, ordersPort.delivered[orderID])

	advance(t, svc, second.ID, StatusInTransit, StatusArrived, StatusCleared, StatusDelivered)
	require.Equal(t, 1, ordersPort.delivered[orderID])
}

func TestUpdateLogistics(t *testing.T) {
	svc, _, ordersPort := newTestService()
	ctx := context.Background()

	orderID := uuid.New()
	ordersPort.shippable[orderID] = true
	shipment, err := svc.Create(ctx, CreateRequest{OrderID: orderID, DestinationPort: "Antwerp"})
	require.NoError(t, err)

	containerNo := "MSKU4521887"
	updated, err := svc.UpdateLogistics(ctx, shipment.ID, UpdateLogisticsRequest{ContainerNo: &containerNo})
	require.NoError(t, err)
	require.NotNil(t, updated.ContainerNo)
	require.Equal(t, containerNo, *updated.ContainerNo)
	require.Equal(t, StatusPreparing, updated.Status)
}
