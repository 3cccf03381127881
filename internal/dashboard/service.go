package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/meridian-agro/meridian/internal/inventory"
	"github.com/meridian-agro/meridian/internal/shared"
)

const cacheTTL = 60 * time.Second

// LowStockLister is the slice of the inventory ledger the dashboard
// reads.
type LowStockLister interface {
	ListLowStock(ctx context.Context) ([]inventory.RecordWithProduct, error)
}

// Service assembles the snapshot. Aggregate queries fan out in
// parallel; the result is cached in Redis under a version-stamped key
// so any mutation elsewhere orphans the cached copy.
type Service struct {
	repo        Repository
	lowStock    LowStockLister
	cache       *redis.Client
	invalidator *shared.Invalidator
	logger      *slog.Logger
	printer     *message.Printer
	now         func() time.Time
}

// NewService builds Service. Cache and invalidator may be nil, which
// disables caching.
func NewService(repo Repository, lowStock LowStockLister, cache *redis.Client, invalidator *shared.Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        repo,
		lowStock:    lowStock,
		cache:       cache,
		invalidator: invalidator,
		logger:      logger,
		printer:     message.NewPrinter(language.English),
		now:         time.Now,
	}
}

// Snapshot returns the current rollup, from cache when fresh.
func (s *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	key := s.cacheKey(ctx)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	snap := &Snapshot{GeneratedAt: s.now()}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		snap.RFQsByStatus, err = s.repo.CountRFQsByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.LeadsByStatus, err = s.repo.CountLeadsByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.CustomersByStatus, err = s.repo.CountCustomersByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.OrdersByStatus, err = s.repo.CountOrdersByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.ShipmentsByStatus, err = s.repo.CountShipmentsByStatus(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.TotalRevenue, err = s.repo.RevenueTotal(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.LowStock, err = s.lowStock.ListLowStock(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("assemble dashboard: %w", err)
	}
	snap.RevenueDisplay = s.printer.Sprintf("%.2f", snap.TotalRevenue)

	s.toCache(ctx, key, snap)
	return snap, nil
}

func (s *Service) cacheKey(ctx context.Context) string {
	return fmt.Sprintf("dashboard:snapshot:v%d", s.invalidator.Version(ctx, shared.ViewDashboard))
}

func (s *Service) fromCache(ctx context.Context, key string) *Snapshot {
	if s.cache == nil {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		s.logger.Warn("decode cached dashboard", slog.Any("error", err))
		return nil
	}
	return &snap
}

func (s *Service) toCache(ctx context.Context, key string, snap *Snapshot) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		s.logger.Warn("encode dashboard for cache", slog.Any("error", err))
		return
	}
	if err := s.cache.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		s.logger.Warn("cache dashboard", slog.Any("error", err))
	}
}
