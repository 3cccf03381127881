package dashboard

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-agro/meridian/internal/inventory"
	"github.com/meridian-agro/meridian/internal/shared"
)

type fakeRepo struct {
	orders  map[string]int
	rfqs    map[string]int
	revenue float64
	hits    atomic.Int64
}

func (f *fakeRepo) CountRFQsByStatus(context.Context) (map[string]int, error) {
	f.hits.Add(1)
	return f.rfqs, nil
}

func (f *fakeRepo) CountLeadsByStatus(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func (f *fakeRepo) CountCustomersByStatus(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func (f *fakeRepo) CountOrdersByStatus(context.Context) (map[string]int, error) {
	return f.orders, nil
}

func (f *fakeRepo) CountShipmentsByStatus(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func (f *fakeRepo) RevenueTotal(context.Context) (float64, error) {
	return f.revenue, nil
}

type fakeLowStock struct {
	records []inventory.RecordWithProduct
}

func (f *fakeLowStock) ListLowStock(context.Context) ([]inventory.RecordWithProduct, error) {
	return f.records, nil
}

func TestSnapshotToleratesEmptyTables(t *testing.T) {
	repo := &fakeRepo{orders: map[string]int{}, rfqs: map[string]int{}}
	svc := NewService(repo, &fakeLowStock{}, nil, nil, slog.Default())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Empty(t, snap.OrdersByStatus)
	require.Empty(t, snap.LowStock)
	require.Zero(t, snap.TotalRevenue)
	require.Equal(t, "0.00", snap.RevenueDisplay)
}

func TestSnapshotAggregates(t *testing.T) {
	repo := &fakeRepo{
		orders:  map[string]int{"PENDING": 3, "SHIPPED": 1},
		rfqs:    map[string]int{"NEW": 7},
		revenue: 1234567.5,
	}
	low := &fakeLowStock{records: []inventory.RecordWithProduct{{ProductName: "Sesame Seeds"}}}
	svc := NewService(repo, low, nil, nil, slog.Default())

	snap, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, snap.OrdersByStatus["PENDING"])
	require.Equal(t, 7, snap.RFQsByStatus["NEW"])
	require.Len(t, snap.LowStock, 1)
	require.InDelta(t, 1234567.5, snap.TotalRevenue, 1e-9)
	require.Equal(t, "1,234,567.50", snap.RevenueDisplay)
}

func TestSnapshotCachedUntilInvalidated(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := slog.Default()
	invalidator := shared.NewInvalidator(client, logger)
	repo := &fakeRepo{orders: map[string]int{"PENDING": 1}, rfqs: map[string]int{}}
	svc := NewService(repo, &fakeLowStock{}, client, invalidator, logger)
	ctx := context.Background()

	_, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.hits.Load())

	// Second read is served from cache.
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, repo.hits.Load())

	// A mutation bump orphans the cached snapshot.
	invalidator.Invalidate(ctx, shared.ViewDashboard)
	_, err = svc.Snapshot(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, repo.hits.Load())
}
