package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/click2print/orderdesk/internal/storage"
)

// querier is the part of pgxpool.Pool that SlotStore uses.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var _ querier = (*pgxpool.Pool)(nil)

// SlotStore implements storage.Storage on a Postgres table with columns
// key text primary key, value bytea, updated_at timestamptz.
type SlotStore struct {
	db     querier
	table  string
	logger *slog.Logger
}

// NewSlotStore returns a SlotStore on table. The table name must be a plain
// identifier; config validation enforces that.
func NewSlotStore(db querier, table string, logger *slog.Logger) *SlotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlotStore{
		db:     db,
		table:  pgx.Identifier{table}.Sanitize(),
		logger: logger,
	}
}

// EnsureSchema creates the table if it does not exist.
func (s *SlotStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	key        text PRIMARY KEY,
	value      bytea NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
)`, s.table))
	if err != nil {
		return fmt.Errorf("create slot table: %w", err)
	}
	s.logger.Debug("slot table ready", "table", s.table)
	return nil
}

// Load reads a slot.
func (s *SlotStore) Load(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT value FROM %s WHERE key = $1`, s.table),
		key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %q: %w", key, err)
	}
	return value, nil
}

// Save upserts a slot.
func (s *SlotStore) Save(ctx context.Context, key string, data []byte) error {
	_, err := s.db.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`, s.table),
		key, data,
	)
	if err != nil {
		return fmt.Errorf("save slot %q: %w", key, err)
	}
	return nil
}

// Delete removes a slot. A missing slot is not an error.
func (s *SlotStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(`DELETE FROM %s WHERE key = $1`, s.table), key); err != nil {
		return fmt.Errorf("delete slot %q: %w", key, err)
	}
	return nil
}

var _ storage.Storage = (*SlotStore)(nil)
