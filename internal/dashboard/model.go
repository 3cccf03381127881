package dashboard

import (
	"time"

	"github.com/meridian-agro/meridian/internal/inventory"
)

// Snapshot is the operational rollup served to the back office. Pure
// read model; empty tables produce zero counts, not errors.
type Snapshot struct {
	RFQsByStatus      map[string]int                `json:"rfqs_by_status"`
	LeadsByStatus     map[string]int                `json:"leads_by_status"`
	CustomersByStatus map[string]int                `json:"customers_by_status"`
	OrdersByStatus    map[string]int                `json:"orders_by_status"`
	ShipmentsByStatus map[string]int                `json:"shipments_by_status"`
	TotalRevenue      float64                       `json:"total_revenue"`
	RevenueDisplay    string                        `json:"revenue_display"`
	LowStock          []inventory.RecordWithProduct `json:"low_stock"`
	GeneratedAt       time.Time                     `json:"generated_at"`
}
