package orders

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the fulfillment pipeline. Unlike RFQ triage the
// graph is strict: forward only, single step, with CANCELLED reachable
// from any state before SHIPPED. Once goods leave the warehouse the
// order cannot be unwound here.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusConfirmed    Status = "CONFIRMED"
	StatusInProduction Status = "IN_PRODUCTION"
	StatusReady        Status = "READY"
	StatusShipped      Status = "SHIPPED"
	StatusDelivered    Status = "DELIVERED"
	StatusCancelled    Status = "CANCELLED"
)

// IsValid reports whether the status is a known member of the enum.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProduction, StatusReady,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

var next = map[Status]Status{
	StatusPending:      StatusConfirmed,
	StatusConfirmed:    StatusInProduction,
	StatusInProduction: StatusReady,
	StatusReady:        StatusShipped,
	StatusShipped:      StatusDelivered,
}

// CanTransition reports whether the single forward step from s to t is
// allowed. Cancellation goes through CanCancel, not here.
func (s Status) CanTransition(t Status) bool {
	return next[s] == t
}

// CanCancel reports whether the order may still be cancelled.
func (s Status) CanCancel() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProduction, StatusReady:
		return true
	default:
		return false
	}
}

// AtLeastReady reports whether fulfillment has reached the point where
// shipments may be created.
func (s Status) AtLeastReady() bool {
	return s == StatusReady || s == StatusShipped || s == StatusDelivered
}

// PaymentStatus tracks invoicing separately from fulfillment.
type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "UNPAID"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// IsValid reports whether the payment status is a known member.
func (s PaymentStatus) IsValid() bool {
	return s == PaymentUnpaid || s == PaymentPartial || s == PaymentPaid
}

// Line is one product position on an order.
type Line struct {
	ID        uuid.UUID `json:"id"`
	OrderID   uuid.UUID `json:"order_id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  float64   `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
}

// Total is the line amount.
func (l Line) Total() float64 {
	return l.Quantity * l.UnitPrice
}

// Order is a confirmed export order.
type Order struct {
	ID                 uuid.UUID     `json:"id"`
	OrderNo            string        `json:"order_no"`
	CustomerID         *uuid.UUID    `json:"customer_id,omitempty"`
	RFQID              *uuid.UUID    `json:"rfq_id,omitempty"`
	OrderDate          time.Time     `json:"order_date"`
	DestinationCountry string        `json:"destination_country"`
	Lines              []Line        `json:"lines"`
	TotalAmount        float64       `json:"total_amount"`
	Currency           string        `json:"currency"`
	PaymentStatus      PaymentStatus `json:"payment_status"`
	Status             Status        `json:"status"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// ErrNotFound indicates the order does not exist.
var ErrNotFound = errors.New("orders: not found")

// ErrInvalidTransition indicates a backward or skipping status move.
var ErrInvalidTransition = errors.New("orders: invalid transition")

// ErrInvalidStatus indicates an unknown status value.
var ErrInvalidStatus = errors.New("orders: invalid status")

// ErrNotCancellable indicates the order already shipped or ended.
var ErrNotCancellable = errors.New("orders: order can no longer be cancelled")

// ErrProductUnavailable indicates a line references a missing or
// inactive product.
var ErrProductUnavailable = errors.New("orders: product not found or inactive")

// ErrDuplicateRef indicates an order number collision on the unique
// index.
var ErrDuplicateRef = errors.New("orders: duplicate order number")
