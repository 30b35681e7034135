package recordstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// PostgresBackend stores collection payloads in a single key/document table.
type PostgresBackend struct {
	db *sqlx.DB
}

// NewPostgresBackend constructs the backend.
func NewPostgresBackend(db *sqlx.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (b *PostgresBackend) EnsureSchema(ctx context.Context) error {
	query := `CREATE TABLE IF NOT EXISTS record_collections (
    key TEXT PRIMARY KEY,
    payload JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL
)`
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("ensure record_collections: %w", err)
	}
	return nil
}

// Load fetches the payload stored under key.
func (b *PostgresBackend) Load(ctx context.Context, key string) ([]byte, error) {
	var payload []byte
	query := `SELECT payload FROM record_collections WHERE key = $1`
	if err := b.db.GetContext(ctx, &payload, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load collection %s: %w", key, err)
	}
	return payload, nil
}

// Save replaces the payload stored under key.
func (b *PostgresBackend) Save(ctx context.Context, key string, payload []byte) error {
	query := `INSERT INTO record_collections (key, payload, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (key)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = EXCLUDED.updated_at`
	if _, err := b.db.ExecContext(ctx, query, key, payload, time.Now().UTC()); err != nil {
		return fmt.Errorf("save collection %s: %w", key, err)
	}
	return nil
}
