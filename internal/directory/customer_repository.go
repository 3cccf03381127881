package directory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-agro/meridian/internal/platform/db"
)

// CustomerRepository abstracts customer persistence. Order totals come
// back as correlated aggregates so the read model is always current.
type CustomerRepository interface {
	Create(ctx context.Context, c Customer) (*Customer, error)
	// CreateFromLead inserts the customer and marks the lead CONVERTED
	// in one transaction.
	CreateFromLead(ctx context.Context, c Customer, leadID uuid.UUID) (*Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*Customer, error)
	List(ctx context.Context, status *CustomerStatus) ([]Customer, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
}

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository returns a pgx-backed CustomerRepository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

const customerColumns = `c.id, c.company_name, c.contact_name, c.email, c.phone, c.country,
	c.industry, c.status, c.originating_lead_id,
	(SELECT COUNT(*) FROM orders o WHERE o.customer_id = c.id AND o.status <> 'CANCELLED'),
	(SELECT COALESCE(SUM(o.total_amount), 0) FROM orders o WHERE o.customer_id = c.id AND o.status <> 'CANCELLED'),
	c.created_at, c.updated_at`

func (r *customerRepository) Create(ctx context.Context, c Customer) (*Customer, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, company_name, contact_name, email, phone, country, industry, status, originating_lead_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		id, c.CompanyName, c.ContactName, c.Email, c.Phone, c.Country, c.Industry, c.Status, c.OriginatingLeadID)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *customerRepository) CreateFromLead(ctx context.Context, c Customer, leadID uuid.UUID) (*Customer, error) {
	id := uuid.New()
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO customers (id, company_name, contact_name, email, phone, country, industry, status, originating_lead_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			id, c.CompanyName, c.ContactName, c.Email, c.Phone, c.Country, c.Industry, c.Status, leadID)
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `
			UPDATE leads SET status = $2, updated_at = NOW()
			WHERE id = $1 AND status NOT IN ($3, $4)`,
			leadID, LeadConverted, LeadConverted, LeadLost)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrLeadTerminal
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*Customer, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers c WHERE c.id = $1`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCustomerNotFound
	}
	return c, err
}

func (r *customerRepository) List(ctx context.Context, status *CustomerStatus) ([]Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers c`
	var args []interface{}
	if status != nil {
		query += ` WHERE c.status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY c.created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *customerRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
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
	tag, err := r.pool.Exec(ctx, `UPDATE customers SET `+set+`, updated_at = NOW() WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	var phone, industry pgtype.Text
	var leadID pgtype.UUID

	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &phone, &c.Country,
		&industry, &c.Status, &leadID, &c.TotalOrders, &c.TotalRevenue, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		c.Phone = &phone.String
	}
	if industry.Valid {
		c.Industry = &industry.String
	}
	if leadID.Valid {
		id := uuid.UUID(leadID.Bytes)
		c.OriginatingLeadID = &id
	}
	return &c, nil
}
