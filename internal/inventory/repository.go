package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-agro/meridian/internal/platform/db"
)

// Repository abstracts ledger persistence. Reserve, Release and Consume
// are single conditional updates so concurrent callers cannot oversell
// the same product: the quantity guard and the write happen in one
// statement.
type Repository interface {
	WithTx(ctx context.Context, fn func(context.Context, Repository) error) error
	GetByProduct(ctx context.Context, productID uuid.UUID) (*Record, error)
	List(ctx context.Context) ([]RecordWithProduct, error)
	ListLowStock(ctx context.Context) ([]RecordWithProduct, error)
	Upsert(ctx context.Context, rec Record) (*Record, error)
	Reserve(ctx context.Context, productID uuid.UUID, qty float64) error
	Release(ctx context.Context, productID uuid.UUID, qty float64) error
	Consume(ctx context.Context, productID uuid.UUID, qty float64) error
	AdjustAvailable(ctx context.Context, productID uuid.UUID, delta float64) error
}

type dbtx interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

type repository struct {
	db   dbtx
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &repository{db: tx, pool: r.pool})
	})
}

const recordColumns = `id, product_id, available_quantity, reserved_quantity, reorder_level, unit, warehouse_location, created_at, updated_at`

func (r *repository) GetByProduct(ctx context.Context, productID uuid.UUID) (*Record, error) {
	row := r.db.QueryRow(ctx, `SELECT `+recordColumns+` FROM inventory_records WHERE product_id = $1`, productID)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *repository) List(ctx context.Context) ([]RecordWithProduct, error) {
	return r.listWhere(ctx, "")
}

func (r *repository) ListLowStock(ctx context.Context) ([]RecordWithProduct, error) {
	return r.listWhere(ctx, `WHERE ir.reorder_level IS NOT NULL AND ir.available_quantity <= ir.reorder_level`)
}

func (r *repository) listWhere(ctx context.Context, where string) ([]RecordWithProduct, error) {
	rows, err := r.db.Query(ctx, `
		SELECT ir.id, ir.product_id, ir.available_quantity, ir.reserved_quantity,
		       ir.reorder_level, ir.unit, ir.warehouse_location, ir.created_at, ir.updated_at,
		       p.name AS product_name, p.slug AS product_slug
		FROM inventory_records ir
		JOIN products p ON p.id = ir.product_id
		`+where+`
		ORDER BY p.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RecordWithProduct
	for rows.Next() {
		var rec RecordWithProduct
		var reorder pgtype.Float8
		var location pgtype.Text
		err := rows.Scan(
			&rec.ID, &rec.ProductID, &rec.AvailableQuantity, &rec.ReservedQuantity,
			&reorder, &rec.Unit, &location, &rec.CreatedAt, &rec.UpdatedAt,
			&rec.ProductName, &rec.ProductSlug,
		)
		if err != nil {
			return nil, err
		}
		if reorder.Valid {
			rec.ReorderLevel = &reorder.Float64
		}
		if location.Valid {
			rec.WarehouseLocation = &location.String
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *repository) Upsert(ctx context.Context, rec Record) (*Record, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO inventory_records (id, product_id, available_quantity, reserved_quantity, reorder_level, unit, warehouse_location)
		VALUES ($1, $2, $3, 0, $4, $5, $6)
		ON CONFLICT (product_id) DO UPDATE SET
			available_quantity = EXCLUDED.available_quantity,
			reorder_level = EXCLUDED.reorder_level,
			unit = EXCLUDED.unit,
			warehouse_location = EXCLUDED.warehouse_location,
			updated_at = NOW()
		RETURNING `+recordColumns,
		uuid.New(), rec.ProductID, rec.AvailableQuantity, rec.ReorderLevel, rec.Unit, rec.WarehouseLocation)
	return scanRecord(row)
}

func (r *repository) Reserve(ctx context.Context, productID uuid.UUID, qty float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_records
		SET available_quantity = available_quantity - $2,
		    reserved_quantity = reserved_quantity + $2,
		    updated_at = NOW()
		WHERE product_id = $1 AND available_quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.shortfall(ctx, productID, ErrInsufficientStock)
	}
	return nil
}

func (r *repository) Release(ctx context.Context, productID uuid.UUID, qty float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_records
		SET available_quantity = available_quantity + $2,
		    reserved_quantity = reserved_quantity - $2,
		    updated_at = NOW()
		WHERE product_id = $1 AND reserved_quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.shortfall(ctx, productID, ErrInvalidRelease)
	}
	return nil
}

func (r *repository) Consume(ctx context.Context, productID uuid.UUID, qty float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_records
		SET reserved_quantity = reserved_quantity - $2,
		    updated_at = NOW()
		WHERE product_id = $1 AND reserved_quantity >= $2`, productID, qty)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.shortfall(ctx, productID, ErrInvalidRelease)
	}
	return nil
}

func (r *repository) AdjustAvailable(ctx context.Context, productID uuid.UUID, delta float64) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE inventory_records
		SET available_quantity = available_quantity + $2,
		    updated_at = NOW()
		WHERE product_id = $1 AND available_quantity + $2 >= 0`, productID, delta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.shortfall(ctx, productID, ErrInsufficientStock)
	}
	return nil
}

// shortfall distinguishes a missing ledger record from a quantity guard
// rejection after a zero-row conditional update.
func (r *repository) shortfall(ctx context.Context, productID uuid.UUID, guardErr error) error {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM inventory_records WHERE product_id = $1)`, productID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrRecordNotFound
	}
	return guardErr
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	var reorder pgtype.Float8
	var location pgtype.Text
	err := row.Scan(
		&rec.ID, &rec.ProductID, &rec.AvailableQuantity, &rec.ReservedQuantity,
		&reorder, &rec.Unit, &location, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if reorder.Valid {
		rec.ReorderLevel = &reorder.Float64
	}
	if location.Valid {
		rec.WarehouseLocation = &location.String
	}
	return &rec, nil
}
