package repo

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ovaphlow/pitchfork/service-coinova/internal/contact/entity"
)

// ContactRepo persists contact-form submissions backed by PostgreSQL.
type ContactRepo struct {
	db *sqlx.DB
}

func NewContactRepo(db *sqlx.DB) *ContactRepo {
	return &ContactRepo{db: db}
}

// EnsureTable creates the contact_messages table and its created_at index.
func (r *ContactRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS contact_messages (
  id varchar(32) PRIMARY KEY,
  name text NOT NULL DEFAULT '',
  email text NOT NULL DEFAULT '',
  message text NOT NULL DEFAULT '',
  created_at timestamptz NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages (created_at);
`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create contact_messages table: %w", err)
	}
	return nil
}

// Insert stores one submission as given.
func (r *ContactRepo) Insert(ctx context.Context, m *entity.ContactMessage) error {
	const q = `INSERT INTO contact_messages (id, name, email, message, created_at)
		VALUES (:id, :name, :email, :message, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, m); err != nil {
		return fmt.Errorf("insert contact message: %w", err)
	}
	return nil
}
