// Package kvstore defines the key-value port the application persists
// through. A key holds one opaque payload; callers own the encoding.
package kvstore

import (
	"context"
	"errors"
)

// ErrReadOnly is returned by Put inside a View.
var ErrReadOnly = errors.New("kvstore: write in read-only transaction")

// Tx is a view of the store for the duration of one View or Update call.
type Tx interface {
	// Get returns the payload stored under key, or nil when the key is absent.
	Get(key string) ([]byte, error)
	// Put replaces the payload stored under key.
	Put(key string, value []byte) error
}

// Store runs functions against a consistent view of the data. Writes made in
// Update are applied together when fn returns nil and discarded otherwise.
type Store interface {
	View(ctx context.Context, fn func(Tx) error) error
	Update(ctx context.Context, fn func(Tx) error) error
}
