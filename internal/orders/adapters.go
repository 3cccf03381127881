package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-agro/meridian/internal/catalog"
	"github.com/meridian-agro/meridian/internal/directory"
	"github.com/meridian-agro/meridian/internal/rfq"
)

// CatalogGate adapts the product catalog to the ProductGate port.
type CatalogGate struct {
	Catalog *catalog.Service
}

// EnsureActive implements ProductGate.
func (g CatalogGate) EnsureActive(ctx context.Context, productID uuid.UUID) error {
	p, err := g.Catalog.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
		}
		return err
	}
	if !p.IsActive {
		return fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
	}
	return nil
}

// RFQLink adapts the RFQ service to the RFQPort.
type RFQLink struct {
	RFQs *rfq.Service
}

// EnsureConvertible implements RFQPort.
func (l RFQLink) EnsureConvertible(ctx context.Context, rfqID uuid.UUID) error {
	rec, err := l.RFQs.Get(ctx, rfqID)
	if err != nil {
		return err
	}
	if rec.ConvertedOrderID != nil {
		return rfq.ErrConverted
	}
	return nil
}

// MarkConverted implements RFQPort.
func (l RFQLink) MarkConverted(ctx context.Context, rfqID, orderID uuid.UUID) error {
	return l.RFQs.MarkConverted(ctx, rfqID, orderID)
}

// DirectoryLookup adapts the customer book to the CustomerDirectory
// port.
type DirectoryLookup struct {
	Directory *directory.Service
}

// CustomerEmail implements CustomerDirectory.
func (d DirectoryLookup) CustomerEmail(ctx context.Context, id uuid.UUID) (string, error) {
	customer, err := d.Directory.GetCustomer(ctx, id)
	if err != nil {
		return "", err
	}
	return customer.Email, nil
}
