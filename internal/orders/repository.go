package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-agro/meridian/internal/platform/db"
)

// Repository abstracts order persistence. Create writes the order row
// and its lines in one transaction so readers never see a lineless
// order.
type Repository interface {
	Create(ctx context.Context, o Order) (*Order, error)
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	GetByRef(ctx context.Context, orderNo string) (*Order, error)
	List(ctx context.Context, req ListRequest) ([]Order, int, error)
	// UpdateStatus is guarded by the expected current status so two
	// staff transitions cannot race past the graph.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
	UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const orderColumns = `id, order_no, customer_id, rfq_id, order_date, destination_country,
	total_amount, currency, payment_status, status, created_at, updated_at`

func (r *repository) Create(ctx context.Context, o Order) (*Order, error) {
	id := uuid.New()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO orders (id, order_no, customer_id, rfq_id, order_date, destination_country,
				total_amount, currency, payment_status, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			id, o.OrderNo, o.CustomerID, o.RFQID, o.OrderDate, o.DestinationCountry,
			o.TotalAmount, o.Currency, o.PaymentStatus, o.Status)
		if err != nil {
			return err
		}
		for _, line := range o.Lines {
			_, err = tx.Exec(ctx, `
				INSERT INTO order_lines (id, order_id, product_id, quantity, unit_price)
				VALUES ($1, $2, $3, $4, $5)`,
				uuid.New(), id, line.ProductID, line.Quantity, line.UnitPrice)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateRef
		}
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return r.hydrate(ctx, row)
}

func (r *repository) GetByRef(ctx context.Context, orderNo string) (*Order, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE order_no = $1`, orderNo)
	return r.hydrate(ctx, row)
}

func (r *repository) hydrate(ctx context.Context, row pgx.Row) (*Order, error) {
	o, err := scanOrder(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	lines, err := r.loadLines(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Lines = lines
	return o, nil
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]Order, int, error) {
	where := ""
	var args []interface{}
	pos := 1
	addClause := func(clause string, val interface{}) {
		if where == "" {
			where = "WHERE "
		} else {
			where += " AND "
		}
		where += fmt.Sprintf(clause, pos)
		args = append(args, val)
		pos++
	}
	if req.Status != nil {
		addClause("status = $%d", *req.Status)
	}
	if req.CustomerID != nil {
		addClause("customer_id = $%d", *req.CustomerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM orders %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		orderColumns, where, pos, pos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	for i := range orders {
		lines, err := r.loadLines(ctx, orders[i].ID)
		if err != nil {
			return nil, 0, err
		}
		orders[i].Lines = lines
	}
	return orders, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

func (r *repository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status PaymentStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE orders SET payment_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) loadLines(ctx context.Context, orderID uuid.UUID) ([]Line, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price
		FROM order_lines WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ProductID, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var customerID, rfqID pgtype.UUID

	err := row.Scan(&o.ID, &o.OrderNo, &customerID, &rfqID, &o.OrderDate, &o.DestinationCountry,
		&o.TotalAmount, &o.Currency, &o.PaymentStatus, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerID.Valid {
		id := uuid.UUID(customerID.Bytes)
		o.CustomerID = &id
	}
	if rfqID.Valid {
		id := uuid.UUID(rfqID.Bytes)
		o.RFQID = &id
	}
	return &o, nil
}
