package shipments

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the shipment journey. Strictly forward, single
// step, no cancellation: goods already dispatched cannot be
// un-dispatched here; a mis-shipment is a business exception handled
// outside the system.
type Status string

const (
	StatusPreparing Status = "PREPARING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusArrived   Status = "ARRIVED"
	StatusCleared   Status = "CLEARED"
	StatusDelivered Status = "DELIVERED"
)

// IsValid reports whether the status is a known member of the enum.
func (s Status) IsValid() bool {
	switch s {
	case StatusPreparing, StatusInTransit, StatusArrived, StatusCleared, StatusDelivered:
		return true
	default:
		return false
	}
}

var next = map[Status]Status{
	StatusPreparing: StatusInTransit,
	StatusInTransit: StatusArrived,
	StatusArrived:   StatusCleared,
	StatusCleared:   StatusDelivered,
}

// CanTransition reports whether the single forward step from s to t is
// allowed.
func (s Status) CanTransition(t Status) bool {
	return next[s] == t
}

// Shipment is one dispatched consignment of an order.
type Shipment struct {
	ID              uuid.UUID  `json:"id"`
	ShipmentNo      string     `json:"shipment_no"`
	OrderID         uuid.UUID  `json:"order_id"`
	DestinationPort string     `json:"destination_port"`
	ContainerNo     *string    `json:"container_no,omitempty"`
	ContainerType   *string    `json:"container_type,omitempty"`
	ETD             *time.Time `json:"etd,omitempty"`
	ETA             *time.Time `json:"eta,omitempty"`
	Status          Status     `json:"status"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// ErrNotFound indicates the shipment does not exist.
var ErrNotFound = errors.New("shipments: not found")

// ErrInvalidTransition indicates a backward or skipping status move.
var ErrInvalidTransition = errors.New("shipments: invalid transition")

// ErrInvalidStatus indicates an unknown status value.
var ErrInvalidStatus = errors.New("shipments: invalid status")

// ErrOrderNotReady indicates the parent order has not reached READY.
var ErrOrderNotReady = errors.New("shipments: order not ready for shipment")

// ErrDuplicateRef indicates a shipment number collision on the unique
// index.
var ErrDuplicateRef = errors.New("shipments: duplicate shipment number")
