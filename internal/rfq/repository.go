package rfq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository abstracts RFQ persistence. The requested_products and
// compliance_needs columns are JSONB: buyer-submitted shapes stay
// flexible while the Go structs keep them typed.
type Repository interface {
	Create(ctx context.Context, r RFQ) (*RFQ, error)
	Get(ctx context.Context, id uuid.UUID) (*RFQ, error)
	GetByRef(ctx context.Context, rfqNo string) (*RFQ, error)
	List(ctx context.Context, req ListRequest) ([]RFQ, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	UpdateInternalNotes(ctx context.Context, id uuid.UUID, notes string) error
	MarkConverted(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a pgx-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const rfqColumns = `id, rfq_no, full_name, company_name, email, phone, whatsapp, role,
	destination_country, incoterm, timeline, requested_products, compliance_needs,
	notes, status, internal_notes, converted_order_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, rec RFQ) (*RFQ, error) {
	products, err := json.Marshal(rec.RequestedProducts)
	if err != nil {
		return nil, fmt.Errorf("marshal requested products: %w", err)
	}
	compliance, err := json.Marshal(rec.ComplianceNeeds)
	if err != nil {
		return nil, fmt.Errorf("marshal compliance needs: %w", err)
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO rfqs (id, rfq_no, full_name, company_name, email, phone, whatsapp, role,
			destination_country, incoterm, timeline, requested_products, compliance_needs, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING `+rfqColumns,
		uuid.New(), rec.RFQNo, rec.FullName, rec.CompanyName, rec.Email, rec.Phone, rec.WhatsApp, rec.Role,
		rec.DestinationCountry, rec.Incoterm, rec.Timeline, products, compliance, rec.Notes, rec.Status)

	created, err := scanRFQ(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrDuplicateRef
		}
		return nil, err
	}
	return created, nil
}

func (r *repository) Get(ctx context.Context, id uuid.UUID) (*RFQ, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+rfqColumns+` FROM rfqs WHERE id = $1`, id)
	return notFoundGuard(scanRFQ(row))
}

func (r *repository) GetByRef(ctx context.Context, rfqNo string) (*RFQ, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+rfqColumns+` FROM rfqs WHERE rfq_no = $1`, rfqNo)
	return notFoundGuard(scanRFQ(row))
}

func (r *repository) List(ctx context.Context, req ListRequest) ([]RFQ, int, error) {
	where := ""
	var args []interface{}
	argPos := 1
	if req.Status != nil {
		where = fmt.Sprintf("WHERE status = $%d", argPos)
		args = append(args, *req.Status)
		argPos++
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rfqs `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT %s FROM rfqs %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		rfqColumns, where, argPos, argPos+1)
	args = append(args, limit, req.Offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var rfqs []RFQ
	for rows.Next() {
		rec, err := scanRFQ(rows)
		if err != nil {
			return nil, 0, err
		}
		rfqs = append(rfqs, *rec)
	}
	return rfqs, total, rows.Err()
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.exec(ctx, `UPDATE rfqs SET status = $2, updated_at = NOW() WHERE id = $1`, id, status)
}

func (r *repository) UpdateInternalNotes(ctx context.Context, id uuid.UUID, notes string) error {
	return r.exec(ctx, `UPDATE rfqs SET internal_notes = $2, updated_at = NOW() WHERE id = $1`, id, notes)
}

func (r *repository) MarkConverted(ctx context.Context, id uuid.UUID, orderID uuid.UUID) error {
	return r.exec(ctx, `UPDATE rfqs SET status = $2, converted_order_id = $3, updated_at = NOW() WHERE id = $1`, id, StatusWon, orderID)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.exec(ctx, `DELETE FROM rfqs WHERE id = $1`, id)
}

func (r *repository) exec(ctx context.Context, query string, args ...interface{}) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func notFoundGuard(rec *RFQ, err error) (*RFQ, error) {
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func scanRFQ(row pgx.Row) (*RFQ, error) {
	var rec RFQ
	var phone, whatsapp, role, incoterm, timeline, notes, internalNotes pgtype.Text
	var convertedOrderID pgtype.UUID
	var products, compliance []byte

	err := row.Scan(
		&rec.ID, &rec.RFQNo, &rec.FullName, &rec.CompanyName, &rec.Email, &phone, &whatsapp, &role,
		&rec.DestinationCountry, &incoterm, &timeline, &products, &compliance,
		&notes, &rec.Status, &internalNotes, &convertedOrderID, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if phone.Valid {
		rec.Phone = &phone.String
	}
	if whatsapp.Valid {
		rec.WhatsApp = &whatsapp.String
	}
	if role.Valid {
		rec.Role = &role.String
	}
	if incoterm.Valid {
		rec.Incoterm = &incoterm.String
	}
	if timeline.Valid {
		rec.Timeline = &timeline.String
	}
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if internalNotes.Valid {
		rec.InternalNotes = &internalNotes.String
	}
	if convertedOrderID.Valid {
		id := uuid.UUID(convertedOrderID.Bytes)
		rec.ConvertedOrderID = &id
	}
	if len(products) > 0 {
		if err := json.Unmarshal(products, &rec.RequestedProducts); err != nil {
			return nil, fmt.Errorf("unmarshal requested products: %w", err)
		}
	}
	if len(compliance) > 0 {
		if err := json.Unmarshal(compliance, &rec.ComplianceNeeds); err != nil {
			return nil, fmt.Errorf("unmarshal compliance needs: %w", err)
		}
	}
	return &rec, nil
}
