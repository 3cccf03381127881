package directory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LeadRepository abstracts lead persistence.
type LeadRepository interface {
	Create(ctx context.Context, l Lead) (*Lead, error)
	Get(ctx context.Context, id uuid.UUID) (*Lead, error)
	List(ctx context.Context, status *LeadStatus) ([]Lead, error)
	ListDueFollowUps(ctx context.Context, before time.Time) ([]Lead, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to LeadStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type leadRepository struct {
	pool *pgxpool.Pool
}

// NewLeadRepository returns a pgx-backed LeadRepository.
func NewLeadRepository(pool *pgxpool.Pool) LeadRepository {
	return &leadRepository{pool: pool}
}

const leadColumns = `id, company_name, contact_name, email, phone, country, source, status,
	estimated_value, next_follow_up_date, notes, created_at, updated_at`

func (r *leadRepository) Create(ctx context.Context, l Lead) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (id, company_name, contact_name, email, phone, country, source, status,
			estimated_value, next_follow_up_date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+leadColumns,
		uuid.New(), l.CompanyName, l.ContactName, l.Email, l.Phone, l.Country, l.Source, l.Status,
		l.EstimatedValue, l.NextFollowUpDate, l.Notes)
	return scanLead(row)
}

func (r *leadRepository) Get(ctx context.Context, id uuid.UUID) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	return lead, err
}

func (r *leadRepository) List(ctx context.Context, status *LeadStatus) ([]Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads`
	var args []interface{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY created_at DESC`
	return r.queryLeads(ctx, query, args...)
}

func (r *leadRepository) ListDueFollowUps(ctx context.Context, before time.Time) ([]Lead, error) {
	return r.queryLeads(ctx, `
		SELECT `+leadColumns+` FROM leads
		WHERE next_follow_up_date IS NOT NULL
		  AND next_follow_up_date <= $1
		  AND status NOT IN ($2, $3)
		ORDER BY next_follow_up_date ASC`,
		before, LeadConverted, LeadLost)
}

func (r *leadRepository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
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
	tag, err := r.pool.Exec(ctx, `UPDATE leads SET `+set+`, updated_at = NOW() WHERE id = $1`, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// UpdateStatus is guarded by the expected current status so concurrent
// transitions cannot race past the pipeline.
func (r *leadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to LeadStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrLeadNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

func (r *leadRepository) queryLeads(ctx context.Context, query string, args ...interface{}) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func scanLead(row pgx.Row) (*Lead, error) {
	var l Lead
	var phone, source, notes pgtype.Text
	var estimated pgtype.Float8
	var followUp pgtype.Timestamptz

	err := row.Scan(&l.ID, &l.CompanyName, &l.ContactName, &l.Email, &phone, &l.Country, &source,
		&l.Status, &estimated, &followUp, &notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		l.Phone = &phone.String
	}
	if source.Valid {
		l.Source = &source.String
	}
	if notes.Valid {
		l.Notes = &notes.String
	}
	if estimated.Valid {
		l.EstimatedValue = &estimated.Float64
	}
	if followUp.Valid {
		t := followUp.Time
		l.NextFollowUpDate = &t
	}
	return &l, nil
}
