package crm

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores customer profiles in the relational database.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("crm: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newRepositoryWithExec(exec rowQuerier) *PostgresRepository {
	if exec == nil {
		panic("crm: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// Upsert inserts or merges a profile keyed by canonical phone. Existing
// non-null columns survive a nil update field, and notes accumulate as
// newline-separated lines.
func (r *PostgresRepository) Upsert(ctx context.Context, phone string, upd ProfileUpdate) error {
	if phone == "" {
		return fmt.Errorf("crm: phone required")
	}
	query := `
		INSERT INTO customers (phone, name, email, event_type, venue, event_date, last_payment_cents, notes, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (phone) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, customers.name),
			email = COALESCE(EXCLUDED.email, customers.email),
			event_type = COALESCE(EXCLUDED.event_type, customers.event_type),
			venue = COALESCE(EXCLUDED.venue, customers.venue),
			event_date = COALESCE(EXCLUDED.event_date, customers.event_date),
			last_payment_cents = COALESCE(EXCLUDED.last_payment_cents, customers.last_payment_cents),
			notes = CASE
				WHEN EXCLUDED.notes IS NULL OR EXCLUDED.notes = '' THEN customers.notes
				WHEN customers.notes IS NULL OR customers.notes = '' THEN EXCLUDED.notes
				ELSE customers.notes || E'\n' || EXCLUDED.notes
			END,
			updated_at = now()
	`
	_, err := r.pool.Exec(ctx, query,
		phone,
		upd.Name,
		upd.Email,
		upd.EventType,
		upd.Venue,
		upd.EventDate,
		upd.PaymentCents,
		upd.Note,
	)
	if err != nil {
		return fmt.Errorf("crm: upsert failed: %w", err)
	}
	return nil
}

// GetByPhone fetches a profile by canonical phone number.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*Profile, error) {
	query := `
		SELECT phone, name, email, event_type, venue, event_date, last_payment_cents, notes, created_at, updated_at
		FROM customers
		WHERE phone = $1
	`
	row := r.pool.QueryRow(ctx, query, phone)
	var p Profile
	if err := row.Scan(
		&p.Phone,
		&p.Name,
		&p.Email,
		&p.EventType,
		&p.Venue,
		&p.EventDate,
		&p.LastPaymentCents,
		&p.Notes,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("crm: select failed: %w", err)
	}
	return &p, nil
}
