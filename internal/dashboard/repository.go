package dashboard

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository runs the aggregate queries behind the snapshot.
type Repository interface {
	CountRFQsByStatus(ctx context.Context) (map[string]int, error)
	CountLeadsByStatus(ctx context.Context) (map[string]int, error)
	CountCustomersByStatus(ctx context.Context) (map[string]int, error)
	CountOrdersByStatus(ctx context.Context) (map[string]int, error)
	CountShipmentsByStatus(ctx context.Context) (map[string]int, error)
	// RevenueTotal sums total_amount over non-cancelled orders.
	RevenueTotal(ctx context.Context) (float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) CountRFQsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countByStatus(ctx, "rfqs")
}

func (r *repository) CountLeadsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countByStatus(ctx, "leads")
}

func (r *repository) CountCustomersByStatus(ctx context.Context) (map[string]int, error) {
	return r.countByStatus(ctx, "customers")
}

func (r *repository) CountOrdersByStatus(ctx context.Context) (map[string]int, error) {
	return r.countByStatus(ctx, "orders")
}

func (r *repository) CountShipmentsByStatus(ctx context.Context) (map[string]int, error) {
	return r.countByStatus(ctx, "shipments")
}

func (r *repository) RevenueTotal(ctx context.Context) (float64, error) {
	var total float64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE status <> 'CANCELLED'`).Scan(&total)
	return total, err
}

// countByStatus only ever receives table names from the methods above.
func (r *repository) countByStatus(ctx context.Context, table string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
