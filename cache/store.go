// Package cache stores ranked classification results keyed by image digest,
// so repeated uploads of the same image skip inference.
//
// The package includes a BadgerDB-backed Store for persistent caches and an
// in-memory Store for tests and cacheless deployments.
package cache

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("cache: not found")

// Store is a flat byte key-value store.
type Store interface {
	// Get returns ErrNotFound if the key is absent or expired.
	Get(ctx context.Context, key []byte) ([]byte, error)
	Set(ctx context.Context, key, value []byte) error
	Close() error
}
