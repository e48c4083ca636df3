// Package kv defines the persistent key-value capability the storefront
// relies on to survive restarts: a flat map of keys to opaque string values,
// no transactions, no expiry, last write wins.
package kv

import (
	"context"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned by Get when the key has never been set or
	// has been deleted.
	ErrNotFound = errors.New("key not found")
	// ErrValueTooLarge is returned by Set when a value exceeds the store's
	// size bound.
	ErrValueTooLarge = errors.New("value too large")
)

// Store is a durable string-to-string map. Implementations must make a
// completed Set visible to subsequent Gets from the same process; nothing
// stronger is promised across processes.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
