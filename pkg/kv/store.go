// Package kv defines the string-keyed durable store the repositories persist
// into, together with its SQLite, Postgres, MongoDB and in-memory backends.
package kv

import (
	"context"
)

// Store is an asynchronous durable string-to-string map.
//
// Get reports ok=false when key is absent. Implementations wrap backend
// failures with the key they were operating on and never retry.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}
