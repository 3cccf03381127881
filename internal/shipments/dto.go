package shipments

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest opens a shipment for an order.
type CreateRequest struct {
	OrderID         uuid.UUID  `json:"order_id" validate:"required"`
	DestinationPort string     `json:"destination_port" validate:"required,min=2,max=120"`
	ContainerNo     *string    `json:"container_no,omitempty" validate:"omitempty,max=40"`
	ContainerType   *string    `json:"container_type,omitempty" validate:"omitempty,max=40"`
	ETD             *time.Time `json:"etd,omitempty"`
	ETA             *time.Time `json:"eta,omitempty"`
}

// UpdateStatusRequest moves the shipment one step forward.
type UpdateStatusRequest struct {
	Status Status `json:"status" validate:"required"`
}

// UpdateLogisticsRequest edits the logistics metadata without touching
// the status graph.
type UpdateLogisticsRequest struct {
	DestinationPort *string    `json:"destination_port,omitempty" validate:"omitempty,min=2,max=120"`
	ContainerNo     *string    `json:"container_no,omitempty" validate:"omitempty,max=40"`
	ContainerType   *string    `json:"container_type,omitempty" validate:"omitempty,max=40"`
	ETD             *time.Time `json:"etd,omitempty"`
	ETA             *time.Time `json:"eta,omitempty"`
}
