package botdb

// Hooks are lightweight callbacks for store events.
// Implementations MUST be cheap and non-blocking; the store calls them while
// holding its write lock.
type Hooks interface {
	// A driver call failed. op ∈ {"get", "set", "delete", "keys", "flush", "ping", "usage"}
	BackendError(op, key string, err error)

	// Stored text was not a literal and was returned as a raw string.
	DecodeFallback(key string)

	// A lookup was answered by a cached absence.
	NegativeHit(key string)

	// ReCache finished; keys is the number of keys re-read.
	ReCached(keys int)

	// FlushAll emptied the backend.
	Flushed(backend string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) BackendError(string, string, error) {}
func (NopHooks) DecodeFallback(string)              {}
func (NopHooks) NegativeHit(string)                 {}
func (NopHooks) ReCached(int)                       {}
func (NopHooks) Flushed(string)                     {}
