package catalog

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

// Repository abstracts product persistence.
type Repository interface {
	Get(ctx context.Context, id uuid.UUID) (*Product, error)
	GetBySlug(ctx context.Context, slug string) (*Product, error)
	List(ctx context.Context, activeOnly bool) ([]Product, error)
	Create(ctx context.Context, p Product) (*Product, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Delete(ctx context.Context, id uuid.UUID) error
	HasOpenOrderReferences(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, name, slug, short_desc, long_desc, is_featured, is_active, created_at, updated_at`

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	return scanProduct(row)
}

func (r *repository) GetBySlug(ctx context.Context, slug string) (*Product, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE slug = $1`, slug)
	return scanProduct(row)
}

func (r *repository) List(ctx context.Context, activeOnly bool) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (r *repository) Create(ctx context.Context, p Product) (*Product, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, slug, short_desc, long_desc, is_featured, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE)
		RETURNING `+productColumns,
		uuid.New(), p.Name, p.Slug, p.ShortDesc, p.LongDesc, p.IsFeatured)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugTaken
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	query := "UPDATE products SET updated_at = NOW()"
	var args []interface{}
	argPos := 1

	for _, col := range []string{"name", "slug", "short_desc", "long_desc", "is_featured"} {
		if v, ok := updates[col]; ok {
			query += fmt.Sprintf(", %s = $%d", col, argPos)
			args = append(args, v)
			argPos++
		}
	}

	query += fmt.Sprintf(" WHERE id = $%d", argPos)
	args = append(args, id)

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrSlugTaken
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE products SET is_active = $2, updated_at = NOW() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) HasOpenOrderReferences(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM order_lines ol
			JOIN orders o ON o.id = ol.order_id
			WHERE ol.product_id = $1 AND o.status NOT IN ('DELIVERED', 'CANCELLED')
		)`, id).Scan(&exists)
	return exists, err
}

func scanProduct(row pgx.Row) (*Product, error) {
	p, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func scanProductRow(row pgx.Row) (*Product, error) {
	var p Product
	var shortDesc, longDesc pgtype.Text
	err := row.Scan(&p.ID, &p.Name, &p.Slug, &shortDesc, &longDesc, &p.IsFeatured, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if shortDesc.Valid {
		p.ShortDesc = &shortDesc.String
	}
	if longDesc.Valid {
		p.LongDesc = &longDesc.String
	}
	return &p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
