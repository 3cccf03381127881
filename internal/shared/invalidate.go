package shared

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// View resource keys bumped after mutations so dependent read models
// (public catalog, admin lists, dashboard) pick up fresh data.
const (
	ViewCatalog   = "catalog"
	ViewInventory = "inventory"
	ViewRFQs      = "rfqs"
	ViewLeads     = "leads"
	ViewCustomers = "customers"
	ViewOrders    = "orders"
	ViewShipments = "shipments"
	ViewDashboard = "dashboard"
)

// Invalidator bumps per-resource version counters in Redis. Cached
// readers embed the version in their keys, so a bump orphans stale
// entries without scanning. Failures are logged and never surfaced.
type Invalidator struct {
	client *redis.Client
	logger *slog.Logger
}

// NewInvalidator returns a new Invalidator.
func NewInvalidator(client *redis.Client, logger *slog.Logger) *Invalidator {
	return &Invalidator{client: client, logger: logger}
}

// Invalidate bumps the version for each resource. Best effort.
func (i *Invalidator) Invalidate(ctx context.Context, resources ...string) {
	if i == nil || i.client == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	for _, res := range resources {
		if err := i.client.Incr(ctx, versionKey(res)).Err(); err != nil {
			i.logger.Warn("view invalidation failed", slog.String("resource", res), slog.Any("error", err))
		}
	}
}

// Version returns the current version for a resource, defaulting to zero.
func (i *Invalidator) Version(ctx context.Context, resource string) int64 {
	if i == nil || i.client == nil {
		return 0
	}
	ver, err := i.client.Get(ctx, versionKey(resource)).Int64()
	if err != nil {
		return 0
	}
	return ver
}

func versionKey(resource string) string {
	return "views:ver:" + resource
}
