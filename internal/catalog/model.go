package catalog

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Product is an exportable commodity shown on the public site and
// referenced by inventory and order lines.
type Product struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	ShortDesc  *string   `json:"short_desc,omitempty"`
	LongDesc   *string   `json:"long_desc,omitempty"`
	IsFeatured bool      `json:"is_featured"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ErrNotFound indicates the product does not exist.
var ErrNotFound = errors.New("catalog: product not found")

// ErrSlugTaken indicates the slug is already in use.
var ErrSlugTaken = errors.New("catalog: slug already in use")

// ErrProductInUse indicates the product is referenced by an open order
// and must be deactivated instead of deleted.
var ErrProductInUse = errors.New("catalog: product referenced by open orders")
