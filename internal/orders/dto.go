package orders

import "github.com/google/uuid"

// LineRequest is one product position in a create request.
type LineRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  float64   `json:"quantity" validate:"required,gt=0"`
	UnitPrice float64   `json:"unit_price" validate:"required,gt=0"`
}

// CreateRequest opens a new order, either directly or from an RFQ.
type CreateRequest struct {
	CustomerID         *uuid.UUID    `json:"customer_id,omitempty"`
	RFQID              *uuid.UUID    `json:"rfq_id,omitempty"`
	DestinationCountry string        `json:"destination_country" validate:"required,min=2,max=80"`
	Currency           string        `json:"currency" validate:"required,len=3,uppercase"`
	Lines              []LineRequest `json:"lines" validate:"required,min=1,dive"`
}

// TransitionRequest moves the order one step forward.
type TransitionRequest struct {
	Status Status `json:"status" validate:"required"`
}

// UpdatePaymentRequest sets the invoicing state.
type UpdatePaymentRequest struct {
	PaymentStatus PaymentStatus `json:"payment_status" validate:"required"`
}

// ListRequest filters the admin order listing.
type ListRequest struct {
	Status     *Status    `json:"status,omitempty"`
	CustomerID *uuid.UUID `json:"customer_id,omitempty"`
	Limit      int        `json:"limit" validate:"gte=0,lte=500"`
	Offset     int        `json:"offset" validate:"gte=0"`
}
