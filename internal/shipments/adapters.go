package shipments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/orders"
)

// FulfillmentGate adapts the order service to the OrdersPort.
type FulfillmentGate struct {
	Orders *orders.Service
}

// EnsureShippable implements OrdersPort.
func (g FulfillmentGate) EnsureShippable(ctx context.Context, orderID uuid.UUID) error {
	order, err := g.Orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if !order.Status.AtLeastReady() {
		return fmt.Errorf("%w: order %s is %s", ErrOrderNotReady, order.OrderNo, order.Status)
	}
	return nil
}

// MarkDelivered implements OrdersPort. Orders that are not yet SHIPPED
// or already DELIVERED are left alone.
func (g FulfillmentGate) MarkDelivered(ctx context.Context, orderID uuid.UUID) error {
	order, err := g.Orders.Get(ctx, orderID)
	if err != nil {
		return err
	}
	if order.Status != orders.StatusShipped {
		return nil
	}
	_, err = g.Orders.Transition(ctx, orderID, orders.StatusDelivered)
	return err
}
