package shipments

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/shared"
)

// OrdersPort is the slice of order fulfillment shipment tracking needs:
// gating creation on fulfillment progress and cascading delivery back.
type OrdersPort interface {
	EnsureShippable(ctx context.Context, orderID uuid.UUID) error
	MarkDelivered(ctx context.Context, orderID uuid.UUID) error
}

// Service owns the shipment state machine.
type Service struct {
	repo        Repository
	orders      OrdersPort
	audit       shared.AuditRecorder
	invalidator *shared.Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// NewService builds Service. Audit and invalidator may be nil.
func NewService(repo Repository, orders OrdersPort, audit shared.AuditRecorder, invalidator *shared.Invalidator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, orders: orders, audit: audit, invalidator: invalidator, logger: logger, now: time.Now}
}

// Create opens a PREPARING shipment. The parent order must have reached
// READY; goods cannot leave before fulfillment says so.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Shipment, error) {
	if err := s.orders.EnsureShippable(ctx, req.OrderID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, Shipment{
		ShipmentNo:      shared.NewDocRef("SHP", s.now()),
		OrderID:         req.OrderID,
		DestinationPort: req.DestinationPort,
		ContainerNo:     req.ContainerNo,
		ContainerType:   req.ContainerType,
		ETD:             req.ETD,
		ETA:             req.ETA,
		Status:          StatusPreparing,
	})
	if err != nil {
		return nil, fmt.Errorf("create shipment: %w", err)
	}

	s.recordAudit(ctx, "shipments:create", created.ID, map[string]any{
		"shipment_no": created.ShipmentNo,
		"order_id":    created.OrderID.String(),
	})
	s.invalidator.Invalidate(ctx, shared.ViewShipments, shared.ViewDashboard)
	return created, nil
}

// Get returns one shipment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Shipment, error) {
	return s.repo.Get(ctx, id)
}

// List returns shipments, optionally filtered by status.
func (s *Service) List(ctx context.Context, status *Status) ([]Shipment, error) {
	if status != nil && !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, status)
}

// ListByOrder returns all shipments of an order.
func (s *Service) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Shipment, error) {
	return s.repo.ListByOrder(ctx, orderID)
}

// UpdateStatus moves the shipment one step forward. Reaching DELIVERED
// checks whether the whole order is now delivered and cascades.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, to Status) (*Shipment, error) {
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}
	shipment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !shipment.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, shipment.Status, to)
	}
	if err := s.repo.UpdateStatus(ctx, id, shipment.Status, to); err != nil {
		return nil, err
	}

	if to == StatusDelivered {
		s.cascadeDelivery(ctx, shipment.OrderID)
	}

	s.recordAudit(ctx, "shipments:transition", id, map[string]any{"from": shipment.Status, "to": to})
	s.invalidator.Invalidate(ctx, shared.ViewShipments, shared.ViewOrders, shared.ViewDashboard)
	return s.repo.Get(ctx, id)
}

// UpdateLogistics edits container and schedule metadata.
func (s *Service) UpdateLogistics(ctx context.Context, id uuid.UUID, req UpdateLogisticsRequest) (*Shipment, error) {
	updates := map[string]interface{}{}
	if req.DestinationPort != nil {
		updates["destination_port"] = *req.DestinationPort
	}
	if req.ContainerNo != nil {
		updates["container_no"] = *req.ContainerNo
	}
	if req.ContainerType != nil {
		updates["container_type"] = *req.ContainerType
	}
	if req.ETD != nil {
		updates["etd"] = *req.ETD
	}
	if req.ETA != nil {
		updates["eta"] = *req.ETA
	}
	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, err
	}
	s.invalidator.Invalidate(ctx, shared.ViewShipments)
	return s.repo.Get(ctx, id)
}

// cascadeDelivery moves the order to DELIVERED once its last shipment
// arrives. Failures are logged; the shipment update itself stands.
func (s *Service) cascadeDelivery(ctx context.Context, orderID uuid.UUID) {
	done, err := s.repo.AllDelivered(ctx, orderID)
	if err != nil {
		s.logger.Error("check order delivery state",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
		return
	}
	if !done {
		return
	}
	if err := s.orders.MarkDelivered(ctx, orderID); err != nil {
		s.logger.Error("cascade order delivery",
			slog.String("order_id", orderID.String()), slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, id uuid.UUID, meta map[string]any) {
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
		Entity:     "shipment",
		EntityID:   id.String(),
		Meta:       meta,
	})
}
