package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/shared"
)

// Service coordinates ledger operations. Reserve/Release/Consume are the
// hooks order fulfillment and shipment dispatch drive; Upsert and Adjust
// are staff stock maintenance.
type Service struct {
	repo        Repository
	audit       shared.AuditRecorder
	invalidator *shared.Invalidator
}

// NewService builds Service. Audit and invalidator may be nil.
func NewService(repo Repository, audit shared.AuditRecorder, invalidator *shared.Invalidator) *Service {
	return &Service{repo: repo, audit: audit, invalidator: invalidator}
}

// Get returns the ledger record for a product.
func (s *Service) Get(ctx context.Context, productID uuid.UUID) (*Record, error) {
	return s.repo.GetByProduct(ctx, productID)
}

// List returns all ledger records with product names.
func (s *Service) List(ctx context.Context) ([]RecordWithProduct, error) {
	return s.repo.List(ctx)
}

// ListLowStock returns records at or below their reorder level.
func (s *Service) ListLowStock(ctx context.Context) ([]RecordWithProduct, error) {
	return s.repo.ListLowStock(ctx)
}

// Reserve places a provisional hold: available goes down, reserved goes
// up. Fails with ErrInsufficientStock when availability is short.
func (s *Service) Reserve(ctx context.Context, productID uuid.UUID, qty float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.repo.Reserve(ctx, productID, qty); err != nil {
		return err
	}
	s.recordAudit(ctx, "inventory:reserve", productID, qty)
	s.invalidator.Invalidate(ctx, shared.ViewInventory, shared.ViewDashboard)
	return nil
}

// Release reverses a reservation, e.g. when an order is cancelled before
// dispatch.
func (s *Service) Release(ctx context.Context, productID uuid.UUID, qty float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.repo.Release(ctx, productID, qty); err != nil {
		return err
	}
	s.recordAudit(ctx, "inventory:release", productID, qty)
	s.invalidator.Invalidate(ctx, shared.ViewInventory, shared.ViewDashboard)
	return nil
}

// Consume removes reserved stock permanently at dispatch. Available
// quantity is untouched; it was already decremented at reservation time.
func (s *Service) Consume(ctx context.Context, productID uuid.UUID, qty float64) error {
	if qty <= 0 {
		return ErrInvalidQuantity
	}
	if err := s.repo.Consume(ctx, productID, qty); err != nil {
		return err
	}
	s.recordAudit(ctx, "inventory:consume", productID, qty)
	s.invalidator.Invalidate(ctx, shared.ViewInventory, shared.ViewDashboard)
	return nil
}

// Upsert creates or replaces the ledger record for a product.
func (s *Service) Upsert(ctx context.Context, rec Record) (*Record, error) {
	if rec.AvailableQuantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if rec.Unit == "" {
		rec.Unit = "kg"
	}
	saved, err := s.repo.Upsert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("upsert inventory record: %w", err)
	}
	s.recordAudit(ctx, "inventory:upsert", rec.ProductID, rec.AvailableQuantity)
	s.invalidator.Invalidate(ctx, shared.ViewInventory, shared.ViewDashboard)
	return saved, nil
}

// Adjust applies a manual delta to available stock (restock or shrinkage
// correction). Underflow below zero is rejected.
func (s *Service) Adjust(ctx context.Context, productID uuid.UUID, delta float64) (*Record, error) {
	if delta == 0 {
		return nil, ErrInvalidQuantity
	}
	var rec *Record
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.AdjustAvailable(ctx, productID, delta); err != nil {
			return err
		}
		var err error
		rec, err = repo.GetByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "inventory:adjust", productID, delta)
	s.invalidator.Invalidate(ctx, shared.ViewInventory, shared.ViewDashboard)
	return rec, nil
}

func (s *Service) recordAudit(ctx context.Context, action string, productID uuid.UUID, qty float64) {
	if s.audit == nil {
		return
	}
	actor := ""
	if p := shared.PrincipalFromContext(ctx); p != nil {
		actor = p.Email
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorEmail: actor,
		Action:     action,
		Entity:     "inventory_record",
		EntityID:   productID.String(),
		Meta:       map[string]any{"qty": qty},
	})
}
