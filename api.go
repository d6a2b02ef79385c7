package botdb

import (
	"errors"

	"github.com/unkn0wn-root/botdb/driver"
)

// Options configure a Store. Only Driver is required.
type Options struct {
	// Required
	Driver driver.Driver

	Logger Logger // nil => NopLogger
	Hooks  Hooks  // nil => NopHooks

	// CacheMaxCost bounds the decoded-value cache to roughly this many
	// entries. 0 keeps every entry for the life of the Store. A bounded
	// cache may evict entries written with CacheOnly.
	CacheMaxCost int64
}

// New wraps a driver in a Store. The Store takes ownership of the driver and
// closes it on Close.
func New(opts Options) (*Store, error) {
	return newStore(opts)
}

var errNoDriver = errors.New("botdb: driver is required")

type setOptions struct {
	cacheOnly bool
}

// SetOption tunes a single SetKey call.
type SetOption func(*setOptions)

// CacheOnly updates the in-process cache without writing to the backend.
// The value is lost on restart, ReCache or FlushAll.
func CacheOnly() SetOption {
	return func(o *setOptions) { o.cacheOnly = true }
}
