package inventory

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Record is the per-product stock ledger entry. Available quantity is
// what can still be promised to new orders; reserved quantity is held
// against confirmed orders until dispatch consumes it.
type Record struct {
	ID                uuid.UUID `json:"id"`
	ProductID         uuid.UUID `json:"product_id"`
	AvailableQuantity float64   `json:"available_quantity"`
	ReservedQuantity  float64   `json:"reserved_quantity"`
	ReorderLevel      *float64  `json:"reorder_level,omitempty"`
	Unit              string    `json:"unit"`
	WarehouseLocation *string   `json:"warehouse_location,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LowStock reports whether the record sits at or below its reorder level.
func (r Record) LowStock() bool {
	return r.ReorderLevel != nil && r.AvailableQuantity <= *r.ReorderLevel
}

// RecordWithProduct joins the display name for admin listings.
type RecordWithProduct struct {
	Record
	ProductName string `json:"product_name"`
	ProductSlug string `json:"product_slug"`
}

// ErrRecordNotFound indicates no ledger entry exists for the product.
var ErrRecordNotFound = errors.New("inventory: record not found")

// ErrInsufficientStock indicates a reservation exceeds available stock.
var ErrInsufficientStock = errors.New("inventory: insufficient stock")

// ErrInvalidRelease indicates a release would drive reserved quantity negative.
var ErrInvalidRelease = errors.New("inventory: release exceeds reserved quantity")

// ErrInvalidQuantity indicates a non-positive quantity.
var ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
