package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/notify"
	"github.com/meridian-agro/meridian/internal/shared"
	"github.com/meridian-agro/meridian/jobs"
)

// InventoryPort is the slice of the inventory ledger order fulfillment
// drives.
type InventoryPort interface {
	Reserve(ctx context.Context, productID uuid.UUID, qty float64) error
	Release(ctx context.Context, productID uuid.UUID, qty float64) error
	Consume(ctx context.Context, productID uuid.UUID, qty float64) error
}

// ProductGate verifies a line references an existing, active product.
type ProductGate interface {
	EnsureActive(ctx context.Context, productID uuid.UUID) error
}

// RFQPort links a converted RFQ to its order.
type RFQPort interface {
	EnsureConvertible(ctx context.Context, rfqID uuid.UUID) error
	MarkConverted(ctx context.Context, rfqID, orderID uuid.UUID) error
}

// CustomerDirectory resolves the notification address for a customer.
type CustomerDirectory interface {
	CustomerEmail(ctx context.Context, id uuid.UUID) (string, error)
}

// Service owns the order state machine and drives inventory holds.
type Service struct {
	repo        Repository
	inventory   InventoryPort
	products    ProductGate
	rfqs        RFQPort
	customers   CustomerDirectory
	notifier    notify.Notifier
	audit       shared.AuditRecorder
	invalidator *shared.Invalidator
	logger      *slog.Logger
	now         func() time.Time
}

// ServiceConfig bundles the collaborators; rfqs, customers, audit and
// invalidator may be nil.
type ServiceConfig struct {
	Repo        Repository
	Inventory   InventoryPort
	Products    ProductGate
	RFQs        RFQPort
	Customers   CustomerDirectory
	Notifier    notify.Notifier
	Audit       shared.AuditRecorder
	Invalidator *shared.Invalidator
	Logger      *slog.Logger
}

// NewService builds Service.
func NewService(cfg ServiceConfig) *Service {
	notifier := cfg.Notifier
	if notifier == nil {
		notifier = notify.Nop{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:        cfg.Repo,
		inventory:   cfg.Inventory,
		products:    cfg.Products,
		rfqs:        cfg.RFQs,
		customers:   cfg.Customers,
		notifier:    notifier,
		audit:       cfg.Audit,
		invalidator: cfg.Invalidator,
		logger:      logger,
		now:         time.Now,
	}
}

// Create opens a new PENDING order. Every line is reserved against the
// ledger before the order row is written; if any reservation fails, the
// holds already taken in this call are released and nothing is
// persisted.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	for _, line := range req.Lines {
		if err := s.products.EnsureActive(ctx, line.ProductID); err != nil {
			return nil, err
		}
	}
	if req.RFQID != nil && s.rfqs != nil {
		if err := s.rfqs.EnsureConvertible(ctx, *req.RFQID); err != nil {
			return nil, err
		}
	}

	lines := make([]Line, 0, len(req.Lines))
	total := 0.0
	for _, line := range req.Lines {
		lines = append(lines, Line{ProductID: line.ProductID, Quantity: line.Quantity, UnitPrice: line.UnitPrice})
		total += line.Quantity * line.UnitPrice
	}

	reserved, err := s.reserveAll(ctx, lines)
	if err != nil {
		s.releaseAll(ctx, reserved)
		return nil, err
	}

	created, err := s.repo.Create(ctx, Order{
		OrderNo:            shared.NewDocRef("ORD", s.now()),
		CustomerID:         req.CustomerID,
		RFQID:              req.RFQID,
		OrderDate:          s.now(),
		DestinationCountry: req.DestinationCountry,
		Lines:              lines,
		TotalAmount:        total,
		Currency:           req.Currency,
		PaymentStatus:      PaymentUnpaid,
		Status:             StatusPending,
	})
	if err != nil {
		s.releaseAll(ctx, reserved)
		return nil, fmt.Errorf("create order: %w", err)
	}

	if req.RFQID != nil && s.rfqs != nil {
		if err := s.rfqs.MarkConverted(ctx, *req.RFQID, created.ID); err != nil {
			return nil, fmt.Errorf("order %s created but rfq link failed: %w", created.OrderNo, err)
		}
	}

	s.recordAudit(ctx, "orders:create", created.ID, map[string]any{
		"order_no": created.OrderNo,
		"total":    created.TotalAmount,
		"currency": created.Currency,
	})
	s.invalidator.Invalidate(ctx, shared.ViewOrders, shared.ViewRFQs, shared.ViewInventory, shared.ViewDashboard)
	return created, nil
}

// Get returns one order with its lines.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// GetByRef returns one order by its public order number.
func (s *Service) GetByRef(ctx context.Context, orderNo string) (*Order, error) {
	return s.repo.GetByRef(ctx, orderNo)
}

// List returns orders for the back office.
func (s *Service) List(ctx context.Context, req ListRequest) ([]Order, int, error) {
	return s.repo.List(ctx, req)
}

// Transition moves the order one step forward. SHIPPED is the dispatch
// point: reserved stock is consumed per line. Cancellation is a
// separate operation, not a transition target.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, to Status) (*Order, error) {
	if !to.IsValid() {
		return nil, ErrInvalidStatus
	}
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanTransition(to) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, order.Status, to)
	}

	// Guarded update claims the transition before side effects so a
	// concurrent staff action cannot dispatch the same order twice.
	if err := s.repo.UpdateStatus(ctx, id, order.Status, to); err != nil {
		return nil, err
	}

	if to == StatusShipped {
		for _, line := range order.Lines {
			if err := s.inventory.Consume(ctx, line.ProductID, line.Quantity); err != nil {
				return nil, fmt.Errorf("order %s dispatched but consume failed for product %s: %w",
					order.OrderNo, line.ProductID, err)
			}
		}
	}
	if to == StatusConfirmed {
		s.notifyConfirmed(ctx, order)
	}

	s.recordAudit(ctx, "orders:transition", id, map[string]any{"from": order.Status, "to": to})
	s.invalidator.Invalidate(ctx, shared.ViewOrders, shared.ViewInventory, shared.ViewDashboard)
	return s.repo.Get(ctx, id)
}

// Cancel aborts an order before dispatch and releases its holds.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*Order, error) {
	order, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.Status.CanCancel() {
		return nil, ErrNotCancellable
	}
	if err := s.repo.UpdateStatus(ctx, id, order.Status, StatusCancelled); err != nil {
		return nil, err
	}
	s.releaseAll(ctx, order.Lines)

	s.recordAudit(ctx, "orders:cancel", id, map[string]any{"from": order.Status})
	s.invalidator.Invalidate(ctx, shared.ViewOrders, shared.ViewInventory, shared.ViewCustomers, shared.ViewDashboard)
	return s.repo.Get(ctx, id)
}

// UpdatePaymentStatus sets the invoicing state, independent of the
// fulfillment graph.
func (s *Service) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) (*Order, error) {
	if !status.IsValid() {
		return nil, ErrInvalidStatus
	}
	if err := s.repo.UpdatePaymentStatus(ctx, id, status); err != nil {
		return nil, err
	}
	s.recordAudit(ctx, "orders:payment", id, map[string]any{"payment_status": status})
	s.invalidator.Invalidate(ctx, shared.ViewOrders, shared.ViewDashboard)
	return s.repo.Get(ctx, id)
}

func (s *Service) reserveAll(ctx context.Context, lines []Line) ([]Line, error) {
	var reserved []Line
	for _, line := range lines {
		if err := s.inventory.Reserve(ctx, line.ProductID, line.Quantity); err != nil {
			return reserved, fmt.Errorf("reserve product %s: %w", line.ProductID, err)
		}
		reserved = append(reserved, line)
	}
	return reserved, nil
}

func (s *Service) releaseAll(ctx context.Context, lines []Line) {
	for _, line := range lines {
		if err := s.inventory.Release(ctx, line.ProductID, line.Quantity); err != nil {
			s.logger.Error("release reservation failed",
				slog.String("product_id", line.ProductID.String()),
				slog.Float64("qty", line.Quantity),
				slog.Any("error", err))
		}
	}
}

func (s *Service) notifyConfirmed(ctx context.Context, order *Order) {
	if order.CustomerID == nil || s.customers == nil {
		return
	}
	email, err := s.customers.CustomerEmail(ctx, *order.CustomerID)
	if err != nil {
		s.logger.Warn("lookup customer for confirmation notice",
			slog.String("order_no", order.OrderNo), slog.Any("error", err))
		return
	}
	s.notifier.OrderConfirmed(ctx, jobs.OrderConfirmedPayload{
		OrderID:       order.ID.String(),
		OrderNo:       order.OrderNo,
		CustomerEmail: email,
		TotalAmount:   order.TotalAmount,
		Currency:      order.Currency,
	})
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
		Entity:     "order",
		EntityID:   id.String(),
		Meta:       meta,
	})
}
