package rfq

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status enumerates the triage pipeline for a quote request. The graph
// is deliberately lax: RFQs are informal negotiation records, so staff
// may move one between any two statuses to correct mis-triage. Orders
// are where transitions are strictly enforced.
type Status string

const (
	StatusNew         Status = "NEW"
	StatusContacted   Status = "CONTACTED"
	StatusQuoted      Status = "QUOTED"
	StatusNegotiating Status = "NEGOTIATING"
	StatusWon         Status = "WON"
	StatusLost        Status = "LOST"
	StatusCancelled   Status = "CANCELLED"
)

// IsValid reports whether the status is a known member of the enum.
func (s Status) IsValid() bool {
	switch s {
	case StatusNew, StatusContacted, StatusQuoted, StatusNegotiating, StatusWon, StatusLost, StatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the status ends the triage pipeline.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost || s == StatusCancelled
}

// RequestedProduct is one buyer-requested line. The quantity stays free
// text ("2 x 20ft container", "500kg monthly") because buyers phrase it
// however they like; it is firmed up when staff create the order.
type RequestedProduct struct {
	ProductID string  `json:"id,omitempty"`
	Name      string  `json:"name"`
	Qty       string  `json:"qty"`
	Packaging *string `json:"packaging,omitempty"`
}

// ComplianceNeeds captures the buyer's regulatory requirements.
type ComplianceNeeds struct {
	IntendedUse *string `json:"intended_use,omitempty"`
	RequireCOA  bool    `json:"require_coa"`
}

// RFQ is a buyer-submitted request for quotation.
type RFQ struct {
	ID                 uuid.UUID          `json:"id"`
	RFQNo              string             `json:"rfq_no"`
	FullName           string             `json:"full_name"`
	CompanyName        string             `json:"company_name"`
	Email              string             `json:"email"`
	Phone              *string            `json:"phone,omitempty"`
	WhatsApp           *string            `json:"whatsapp,omitempty"`
	Role               *string            `json:"role,omitempty"`
	DestinationCountry string             `json:"destination_country"`
	Incoterm           *string            `json:"incoterm,omitempty"`
	Timeline           *string            `json:"timeline,omitempty"`
	RequestedProducts  []RequestedProduct `json:"requested_products"`
	ComplianceNeeds    ComplianceNeeds    `json:"compliance_needs"`
	Notes              *string            `json:"notes,omitempty"`
	Status             Status             `json:"status"`
	InternalNotes      *string            `json:"internal_notes,omitempty"`
	ConvertedOrderID   *uuid.UUID         `json:"converted_order_id,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// ErrNotFound indicates the RFQ does not exist.
var ErrNotFound = errors.New("rfq: not found")

// ErrInvalidStatus indicates an unknown status value.
var ErrInvalidStatus = errors.New("rfq: invalid status")

// ErrConverted indicates the RFQ is linked to an order and cannot be
// deleted or converted again.
var ErrConverted = errors.New("rfq: already converted to an order")

// ErrDuplicateRef indicates a reference number collision on the unique
// index. Accepted as a negligible-probability failure, not retried.
var ErrDuplicateRef = errors.New("rfq: duplicate reference number")
