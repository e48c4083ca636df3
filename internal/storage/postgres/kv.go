package postgres

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dwarforca/storefront/internal/storage/kv"
)

var _ kv.Store = (*KVStore)(nil)

// KVStore implements kv.Store on a single-table key/value schema. It keeps
// the same contract as the file-backed store: opaque string values, last
// write wins, no expiry.
type KVStore struct {
	pool *pgxpool.Pool
}

// NewKVStore returns a KVStore using the given pool.
func NewKVStore(pool *pgxpool.Pool) *KVStore {
	return &KVStore{pool: pool}
}

func (s *KVStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM store_entries WHERE key = $1`, key,
	).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", kv.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrapf(err, "get %q", key)
	}
	return value, nil
}

func (s *KVStore) Set(ctx context.Context, key, value string) error {
	if len(value) > kv.MaxValueLen {
		return kv.ErrValueTooLarge
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO store_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return errors.Wrapf(err, "set %q", key)
	}
	return nil
}

func (s *KVStore) Delete(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM store_entries WHERE key = $1`, key,
	); err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	return nil
}
