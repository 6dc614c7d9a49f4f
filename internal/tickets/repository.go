package tickets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound = errors.New("ticket not found")
	ErrExists   = errors.New("ticket number already exists")
)

// listLimit bounds the list view the same way the mockup does.
const listLimit = 50

type Repository interface {
	List(ctx context.Context) ([]Ticket, error)
	GetByNumber(ctx context.Context, number string) (*Ticket, error)
	Insert(ctx context.Context, t *Ticket) (int64, error)
	UpdateStatus(ctx context.Context, number string, status Status, closedAt *time.Time) (*Ticket, error)
	InsertContact(ctx context.Context, c *Contact) (int64, error)
}

type PgRepository struct {
	db *pgxpool.Pool
}

func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const ticketColumns = `
	id, number, contact_id, owner, status, priority, subject, description,
	opened_at, closed_at, store, classification, sub_subject, contract_number,
	manufacturer, product_code, product_type, serial_number, damage_type,
	delivery_date, origin, language, defective_total, defective_open, from_web,
	internal_comments, solution, created_at, updated_at`

func scanTicket(row pgx.Row) (*Ticket, error) {
	var t Ticket
	err := row.Scan(
		&t.ID, &t.Number, &t.ContactID, &t.Owner, &t.Status, &t.Priority,
		&t.Subject, &t.Description, &t.OpenedAt, &t.ClosedAt, &t.Store,
		&t.Classification, &t.SubSubject, &t.ContractNumber, &t.Manufacturer,
		&t.ProductCode, &t.ProductType, &t.SerialNumber, &t.DamageType,
		&t.DeliveryDate, &t.Origin, &t.Language, &t.DefectiveTotal,
		&t.DefectiveOpen, &t.FromWeb, &t.InternalComments, &t.Solution,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgRepository) List(ctx context.Context) ([]Ticket, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+ticketColumns+`
		FROM ticket
		ORDER BY opened_at DESC NULLS LAST, created_at DESC
		LIMIT $1
	`, listLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *PgRepository) GetByNumber(ctx context.Context, number string) (*Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `
		SELECT `+ticketColumns+`
		FROM ticket
		WHERE number = $1
	`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PgRepository) Insert(ctx context.Context, t *Ticket) (int64, error) {
	var exists bool
	if err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM ticket WHERE number = $1)`,
		t.Number).Scan(&exists); err != nil {
		return 0, fmt.Errorf("check ticket existence: %w", err)
	}
	if exists {
		return 0, ErrExists
	}

	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO ticket (
			number, contact_id, owner, status, priority, subject, description,
			opened_at, store, classification, sub_subject, contract_number,
			manufacturer, product_code, product_type, damage_type, delivery_date,
			origin, language, defective_total, defective_open, from_web
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		RETURNING id
	`,
		t.Number, t.ContactID, t.Owner, t.Status, t.Priority, t.Subject,
		t.Description, t.OpenedAt, t.Store, t.Classification, t.SubSubject,
		t.ContractNumber, t.Manufacturer, t.ProductCode, t.ProductType,
		t.DamageType, t.DeliveryDate, t.Origin, t.Language, t.DefectiveTotal,
		t.DefectiveOpen, t.FromWeb,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert ticket: %w", err)
	}
	return id, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, number string, status Status, closedAt *time.Time) (*Ticket, error) {
	t, err := scanTicket(r.db.QueryRow(ctx, `
		UPDATE ticket
		SET status = $2, closed_at = $3, updated_at = now()
		WHERE number = $1
		RETURNING `+ticketColumns+`
	`, number, status, closedAt))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (r *PgRepository) InsertContact(ctx context.Context, c *Contact) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO contact (full_name, account_name, email, phone, mobile_phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, c.FullName, c.AccountName, c.Email, c.Phone, c.MobilePhone).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	return id, nil
}
