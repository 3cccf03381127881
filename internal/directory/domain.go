package directory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// LeadStatus enumerates the prospect pipeline. Unlike RFQ triage this
// graph is enforced: forward single-step, with LOST reachable from any
// non-terminal state.
type LeadStatus string

const (
	LeadNew       LeadStatus = "NEW"
	LeadContacted LeadStatus = "CONTACTED"
	LeadQualified LeadStatus = "QUALIFIED"
	LeadConverted LeadStatus = "CONVERTED"
	LeadLost      LeadStatus = "LOST"
)

// IsValid reports whether the status is a known member of the enum.
func (s LeadStatus) IsValid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the pipeline has ended for this lead.
func (s LeadStatus) IsTerminal() bool {
	return s == LeadConverted || s == LeadLost
}

var leadNext = map[LeadStatus]LeadStatus{
	LeadNew:       LeadContacted,
	LeadContacted: LeadQualified,
	LeadQualified: LeadConverted,
}

// CanTransition reports whether the move from s to next is allowed.
func (s LeadStatus) CanTransition(next LeadStatus) bool {
	if next == LeadLost {
		return !s.IsTerminal()
	}
	return leadNext[s] == next
}

// Lead is a prospective buyer tracked by the back office.
type Lead struct {
	ID               uuid.UUID  `json:"id"`
	CompanyName      string     `json:"company_name"`
	ContactName      string     `json:"contact_name"`
	Email            string     `json:"email"`
	Phone            *string    `json:"phone,omitempty"`
	Country          string     `json:"country"`
	Source           *string    `json:"source,omitempty"`
	Status           LeadStatus `json:"status"`
	EstimatedValue   *float64   `json:"estimated_value,omitempty"`
	NextFollowUpDate *time.Time `json:"next_follow_up_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CustomerStatus marks whether a buyer relationship is live.
type CustomerStatus string

const (
	CustomerActive   CustomerStatus = "ACTIVE"
	CustomerInactive CustomerStatus = "INACTIVE"
)

// IsValid reports whether the status is a known member of the enum.
func (s CustomerStatus) IsValid() bool {
	return s == CustomerActive || s == CustomerInactive
}

// Customer is a confirmed buyer. TotalOrders and TotalRevenue are read
// model fields recomputed from orders, never mutated directly.
type Customer struct {
	ID                uuid.UUID      `json:"id"`
	CompanyName       string         `json:"company_name"`
	ContactName       string         `json:"contact_name"`
	Email             string         `json:"email"`
	Phone             *string        `json:"phone,omitempty"`
	Country           string         `json:"country"`
	Industry          *string        `json:"industry,omitempty"`
	Status            CustomerStatus `json:"status"`
	OriginatingLeadID *uuid.UUID     `json:"originating_lead_id,omitempty"`
	TotalOrders       int            `json:"total_orders"`
	TotalRevenue      float64        `json:"total_revenue"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// ErrLeadNotFound indicates the lead does not exist.
var ErrLeadNotFound = errors.New("directory: lead not found")

// ErrCustomerNotFound indicates the customer does not exist.
var ErrCustomerNotFound = errors.New("directory: customer not found")

// ErrInvalidTransition indicates a disallowed lead status move.
var ErrInvalidTransition = errors.New("directory: invalid lead transition")

// ErrInvalidStatus indicates an unknown status value.
var ErrInvalidStatus = errors.New("directory: invalid status")

// ErrLeadTerminal indicates the lead pipeline already ended.
var ErrLeadTerminal = errors.New("directory: lead already converted or lost")
