// Package kv defines the key-value capability the rewards store persists
// through, with memory, SQLite and Redis backends.
package kv

import (
	"context"
	"errors"
)

// ErrConflict is returned by Update when concurrent writers kept winning the
// race for a key.
var ErrConflict = errors.New("update conflict")

// UpdateFunc computes the new value for a key from the current one. ok is
// false when the key does not exist. Returning an error aborts the update
// without writing; the error is passed back to the caller unchanged.
type UpdateFunc func(old string, ok bool) (string, error)

// Store is a string key-value store supporting whole-value reads and overwrites.
type Store interface {
	// Get returns the value for key. ok is false when the key does not exist.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Set overwrites the value for key.
	Set(ctx context.Context, key, value string) error
	// Delete removes key. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Update reads key and writes fn's result atomically with respect to
	// every other writer of the same backend, including other processes.
	// fn may run more than once and must not touch the store itself.
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
