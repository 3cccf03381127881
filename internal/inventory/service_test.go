package inventory

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*Record
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[uuid.UUID]*Record)}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, r)
}

func (r *memoryRepo) GetByProduct(_ context.Context, productID uuid.UUID) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return nil, ErrRecordNotFound
	}
	copied := *rec
	return &copied, nil
}

func (r *memoryRepo) List(context.Context) ([]RecordWithProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordWithProduct
	for _, rec := range r.records {
		out = append(out, RecordWithProduct{Record: *rec})
	}
	return out, nil
}

func (r *memoryRepo) ListLowStock(context.Context) ([]RecordWithProduct, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []RecordWithProduct
	for _, rec := range r.records {
		if rec.LowStock() {
			out = append(out, RecordWithProduct{Record: *rec})
		}
	}
	return out, nil
}

func (r *memoryRepo) Upsert(_ context.Context, rec Record) (*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.records[rec.ProductID]
	if ok {
		existing.AvailableQuantity = rec.AvailableQuantity
		existing.ReorderLevel = rec.ReorderLevel
		existing.Unit = rec.Unit
		existing.WarehouseLocation = rec.WarehouseLocation
		copied := *existing
		return &copied, nil
	}
	rec.ID = uuid.New()
	stored := rec
	r.records[rec.ProductID] = &stored
	copied := stored
	return &copied, nil
}

func (r *memoryRepo) Reserve(_ context.Context, productID uuid.UUID, qty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return ErrRecordNotFound
	}
	if rec.AvailableQuantity < qty {
		return ErrInsufficientStock
	}
	rec.AvailableQuantity -= qty
	rec.ReservedQuantity += qty
	return nil
}

func (r *memoryRepo) Release(_ context.Context, productID uuid.UUID, qty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return ErrRecordNotFound
	}
	if rec.ReservedQuantity < qty {
		return ErrInvalidRelease
	}
	rec.ReservedQuantity -= qty
	rec.AvailableQuantity += qty
	return nil
}

func (r *memoryRepo) Consume(_ context.Context, productID uuid.UUID, qty float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return ErrRecordNotFound
	}
	if rec.ReservedQuantity < qty {
		return ErrInvalidRelease
	}
	rec.ReservedQuantity -= qty
	return nil
}

func (r *memoryRepo) AdjustAvailable(_ context.Context, productID uuid.UUID, delta float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[productID]
	if !ok {
		return ErrRecordNotFound
	}
	if rec.AvailableQuantity+delta < 0 {
		return ErrInsufficientStock
	}
	rec.AvailableQuantity += delta
	return nil
}

func seedStock(t *testing.T, svc *Service, qty float64) uuid.UUID {
	t.Helper()
	productID := uuid.New()
	_, err := svc.Upsert(context.Background(), Record{ProductID: productID, AvailableQuantity: qty, Unit: "kg"})
	require.NoError(t, err)
	return productID
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	productID := seedStock(t, svc, 10)

	require.NoError(t, svc.Reserve(ctx, productID, 4))
	rec, err := svc.Get(ctx, productID)
	require.NoError(t, err)
	require.InDelta(t, 6, rec.AvailableQuantity, 0.0001)
	require.InDelta(t, 4, rec.ReservedQuantity, 0.0001)

	require.NoError(t, svc.Release(ctx, productID, 4))
	rec, err = svc.Get(ctx, productID)
	require.NoError(t, err)
	require.InDelta(t, 10, rec.AvailableQuantity, 0.0001)
	require.InDelta(t, 0, rec.ReservedQuantity, 0.0001)
}

func TestReserveInsufficientStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	productID := seedStock(t, svc, 5)

	require.NoError(t, svc.Reserve(ctx, productID, 5))
	err := svc.Reserve(ctx, productID, 1)
	require.ErrorIs(t, err, ErrInsufficientStock)

	rec, err := svc.Get(ctx, productID)
	require.NoError(t, err)
	require.InDelta(t, 0, rec.AvailableQuantity, 0.0001)
	require.InDelta(t, 5, rec.ReservedQuantity, 0.0001)
}

func TestConcurrentReservations(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	productID := seedStock(t, svc, 10)

	var wg sync.WaitGroup
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- svc.Reserve(ctx, productID, 6)
		}()
	}
	wg.Wait()
	close(results)

	var successes, shortfalls int
	for err := range results {
		if err == nil {
			successes++
		} else {
			require.ErrorIs(t, err, ErrInsufficientStock)
			shortfalls++
		}
	}
	require.Equal(t, 1, successes)
	require.Equal(t, 1, shortfalls)
}

func TestConsumeLeavesAvailableUntouched(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	productID := seedStock(t, svc, 8)
	require.NoError(t, svc.Reserve(ctx, productID, 5))
	require.NoError(t, svc.Consume(ctx, productID, 5))

	rec, err := svc.Get(ctx, productID)
	require.NoError(t, err)
	require.InDelta(t, 3, rec.AvailableQuantity, 0.0001)
	require.InDelta(t, 0, rec.ReservedQuantity, 0.0001)
}

func TestReleaseUnderflowRejected(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	productID := seedStock(t, svc, 8)
	require.NoError(t, svc.Reserve(ctx, productID, 2))

	err := svc.Release(ctx, productID, 3)
	require.ErrorIs(t, err, ErrInvalidRelease)
}

func TestLowStock(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	level := 5.0
	productID := uuid.New()
	_, err := svc.Upsert(ctx, Record{ProductID: productID, AvailableQuantity: 10, ReorderLevel: &level, Unit: "kg"})
	require.NoError(t, err)

	low, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Empty(t, low)

	require.NoError(t, svc.Reserve(ctx, productID, 6))
	low, err = svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	require.Equal(t, productID, low[0].ProductID)
}

func TestAdjustGuardsUnderflow(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil, nil)
	ctx := context.Background()

	productID := seedStock(t, svc, 3)

	rec, err := svc.Adjust(ctx, productID, 7)
	require.NoError(t, err)
	require.InDelta(t, 10, rec.AvailableQuantity, 0.0001)

	_, err = svc.Adjust(ctx, productID, -11)
	require.ErrorIs(t, err, ErrInsufficientStock)
}
