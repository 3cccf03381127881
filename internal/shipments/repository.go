package shipments

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts shipment persistence.
type Repository interface {
	Create(ctx context.Context, s Shipment) (*Shipment, error)
	Get(ctx context.Context, id uuid.UUID) (*Shipment, error)
	List(ctx context.Context, status *Status) ([]Shipment, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Shipment, error)
	// UpdateStatus is guarded by the expected current status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	// AllDelivered reports whether every shipment of the order has
	// reached DELIVERED. False when the order has no shipments.
	AllDelivered(ctx context.Context, orderID uuid.UUID) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const shipmentColumns = `id, shipment_no, order_id, destination_port, container_no, container_type,
	etd, eta, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, s Shipment) (*Shipment, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO shipments (id, shipment_no, order_id, destination_port, container_no, container_type, etd, eta, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+shipmentColumns,
		uuid.New(), s.ShipmentNo, s.OrderID, s.DestinationPort, s.ContainerNo, s.ContainerType,
		s.ETD, s.ETA, s.Status)

	created, err := scanShipment(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateRef
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Shipment, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+shipmentColumns+` FROM shipments WHERE id = $1`, id)
	s, err := scanShipment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func (r *repository) List(ctx context.Context, status *Status) ([]Shipment, error) {
	query := `SELECT ` + shipmentColumns + ` FROM shipments`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryShipments(ctx, query, args...)
}

func (r *repository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]Shipment, error) {
	return r.queryShipments(ctx,
		`SELECT `+shipmentColumns+` FROM shipments WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE shipments SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM shipments WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	set := ""
	args := []interface{}{id}
	pos := 2
	for col, val := range updates {
		if set != "" {
			set += ", "
		}
		set += fmt.Sprintf("%s = $%d", col, pos)
		args = append(args, val)
		pos++
	}
	tag, err := r.pool.Exec(ctx, `UPDATE shipments SET `+set+`, updated_at = NOW() WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) AllDelivered(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var total, delivered int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $2)
		FROM shipments WHERE order_id = $1`, orderID, StatusDelivered).Scan(&total, &delivered)
	if err != nil {
		return false, err
	}
	return total > 0 && total == delivered, nil
}

func (r *repository) queryShipments(ctx context.Context, query string, args ...interface{}) ([]Shipment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shipments []Shipment
	for rows.Next() {
		s, err := scanShipment(rows)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, *s)
	}
	return shipments, rows.Err()
}

func scanShipment(row pgx.Row) (*Shipment, error) {
	var s Shipment
	var containerNo, containerType pgtype.Text
	var etd, eta pgtype.Timestamptz

	err := row.Scan(&s.ID, &s.ShipmentNo, &s.OrderID, &s.DestinationPort, &containerNo, &containerType,
		&etd, &eta, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if containerNo.Valid {
		s.ContainerNo = &containerNo.String
	}
	if containerType.Valid {
		s.ContainerType = &containerType.String
	}
	if etd.Valid {
		t := etd.Time
		s.ETD = &t
	}
	if eta.Valid {
		t := eta.Time
		s.ETA = &t
	}
	return &s, nil
}
