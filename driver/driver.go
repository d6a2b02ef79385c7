// Package driver defines the storage abstraction behind botdb.
//
// A Driver stores text values under string keys. Implementations must be
// text-transparent: Get returns exactly the string last passed to Set for a
// key. Value typing is the store's job (see package value); drivers never
// parse or rewrite values.
//
// Each driver owns one connection or handle for its lifetime. Drivers must be
// safe for concurrent use.
package driver

import (
	"context"
	"errors"
)

// ErrInvalidKey is returned when a key cannot be represented by the backend
// (e.g. it is not a valid column identifier for the relational driver).
var ErrInvalidKey = errors.New("driver: invalid key")

// Driver is the capability set every backend provides.
type Driver interface {
	// Name is a short human readable backend name (e.g. "Redis").
	Name() string

	// Get returns (value, true, nil) on hit and ("", false, nil) on miss.
	// Absence is never an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, overwriting any previous value.
	Set(ctx context.Context, key, value string) (bool, error)

	// Delete removes key. Removing an absent key is not an error; the bool
	// reports whether something was removed, or true when the backend cannot
	// tell.
	Delete(ctx context.Context, key string) (bool, error)

	// Keys lists every stored key.
	Keys(ctx context.Context) ([]string, error)

	// FlushAll destroys every entry of this namespace and leaves the driver
	// immediately usable.
	FlushAll(ctx context.Context) (bool, error)

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Pinger is implemented by drivers that can check liveness.
type Pinger interface {
	Ping(ctx context.Context) (bool, error)
}

// UsageReporter is implemented by drivers that can report an approximate
// storage footprint in bytes. It may be slow (O(keys)); keep it off hot
// paths.
type UsageReporter interface {
	Usage(ctx context.Context) (int64, error)
}
