package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/subscriber/entity"
)

// uniqueViolation is the Postgres SQLSTATE for a unique index conflict.
const uniqueViolation = pq.ErrorCode("23505")

// ErrDuplicateEmail is returned by Insert when the email is already stored.
var ErrDuplicateEmail = errors.New("subscriber email already exists")

type SubscriberRepo struct {
	db *sqlx.DB
}

func NewSubscriberRepo(db *sqlx.DB) *SubscriberRepo {
	return &SubscriberRepo{db: db}
}

// EnsureTable creates the subscribers table if it does not already exist.
// The unique index on email is what ultimately enforces one row per address.
func (r *SubscriberRepo) EnsureTable(ctx context.Context) error {
	const tbl = `
	CREATE TABLE IF NOT EXISTS subscribers (
		id varchar(32) PRIMARY KEY,
		name text NOT NULL DEFAULT '',
		email text NOT NULL,
		phone text NOT NULL DEFAULT '',
		created_at timestamptz NOT NULL DEFAULT NOW()
	);
	`
	if _, err := r.db.ExecContext(ctx, tbl); err != nil {
		return fmt.Errorf("create subscribers table: %w", err)
	}

	// tables created before phone became free text
	const widen = `ALTER TABLE subscribers ALTER COLUMN phone TYPE text;`
	if _, err := r.db.ExecContext(ctx, widen); err != nil {
		return fmt.Errorf("widen subscribers phone column: %w", err)
	}

	const idx = `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_subscribers_email ON subscribers (email);
	`
	if _, err := r.db.ExecContext(ctx, idx); err != nil {
		return fmt.Errorf("create subscribers email index: %w", err)
	}
	return nil
}

// FindByEmail returns the subscriber with exactly this email, or nil when there is none.
func (r *SubscriberRepo) FindByEmail(ctx context.Context, email string) (*entity.Subscriber, error) {
	const q = `SELECT id, name, email, phone, created_at FROM subscribers WHERE email = $1`
	var s entity.Subscriber
	if err := r.db.GetContext(ctx, &s, q, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query subscriber: %w", err)
	}
	return &s, nil
}

// Insert stores a new subscriber. A conflict on the email index yields ErrDuplicateEmail.
func (r *SubscriberRepo) Insert(ctx context.Context, s *entity.Subscriber) error {
	const q = `INSERT INTO subscribers (id, name, email, phone, created_at)
		VALUES (:id, :name, :email, :phone, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, s); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert subscriber: %w", err)
	}
	return nil
}
