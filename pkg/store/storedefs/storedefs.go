// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import "errors"

// ErrNoKey is returned by (Store).Get when the key has never been written.
var ErrNoKey = errors.New("no such key")

// Store is an interface satisfied by the storage service.
type Store interface {
	// Get returns the value stored under the given key, or ErrNoKey.
	Get(key string) (string, error)
	// Set stores the value under the given key, replacing any old value.
	Set(key, value string) error
	// Close releases resources associated with the store.
	Close() error
}
