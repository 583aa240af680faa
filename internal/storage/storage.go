package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a key is not present in the store
	ErrNotFound = errors.New("key not found")

	// ErrStorageUnavailable is returned when storage operations fail
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// Store defines the interface for a flat string key-value medium.
//
// Implementations must report a missing key as ErrNotFound from Get, and treat
// Delete of a missing key as success. The empty string is a valid value and is
// distinct from an absent key.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store
	Close() error
}
