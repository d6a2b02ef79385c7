package botdb

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/botdb/driver"
	"github.com/unkn0wn-root/botdb/value"
)

// Store is the uniform get/set/delete contract every consumer depends on.
//
// Cache hits are lock-free. Cache fills and all mutations are serialized by
// one mutex, so a fill never overwrites a newer write and compound
// operations (Rename, ReCache) are atomic with respect to other callers of
// this Store. Backend calls are made while holding that mutex.
type Store struct {
	drv   driver.Driver
	cache cacheLayer
	log   Logger
	hooks Hooks

	mu        sync.Mutex
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

func newStore(opts Options) (*Store, error) {
	if opts.Driver == nil {
		return nil, errNoDriver
	}

	s := &Store{drv: opts.Driver}
	s.log = orDefault[Logger](opts.Logger, NopLogger{})
	s.hooks = orDefault[Hooks](opts.Hooks, NopHooks{})

	if opts.CacheMaxCost > 0 {
		bc, err := newBoundedCache(opts.CacheMaxCost)
		if err != nil {
			return nil, err
		}
		s.cache = bc
	} else {
		s.cache = newMapCache()
	}
	return s, nil
}

// Name is the backend name, e.g. "Redis".
func (s *Store) Name() string { return s.drv.Name() }

// GetKey returns the value for key. A missing key yields (None, false, nil);
// the absence is cached, so later lookups do not reach the backend until the
// key is written, deleted or the cache is rebuilt. A stored None literal also
// reports ok=false.
func (s *Store) GetKey(ctx context.Context, key string) (value.Value, bool, error) {
	if s.closed.Load() {
		return value.None(), false, ErrClosed
	}
	if e, hit := s.cache.load(key); hit {
		if !e.ok {
			s.hooks.NegativeHit(key)
		}
		return e.v, e.ok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e, err := s.getLocked(ctx, key)
	return e.v, e.ok, err
}

func (s *Store) getLocked(ctx context.Context, key string) (entry, error) {
	// another caller may have filled it while we waited for the lock
	if e, hit := s.cache.load(key); hit {
		return e, nil
	}
	raw, ok, err := s.drv.Get(ctx, key)
	if err != nil {
		return entry{}, s.fail("get", key, err)
	}
	if !ok {
		s.cache.store(key, entry{})
		return entry{}, nil
	}
	v := s.decode(key, raw)
	e := entry{v: v, ok: !v.IsNone()}
	s.cache.store(key, e)
	return e, nil
}

func (s *Store) decode(key, raw string) value.Value {
	if raw == "" {
		return value.String("")
	}
	v, err := value.Parse(raw)
	if err != nil {
		s.hooks.DecodeFallback(key)
		return value.String(raw)
	}
	return v
}

// SetKey normalizes v (a string holding a literal becomes the typed value,
// so "5" and Int(5) are equivalent), caches exactly what a later read of its
// encoding returns, and writes that encoding to the backend unless CacheOnly
// is given. When the backend write fails only
// this key's cache entry is dropped.
func (s *Store) SetKey(ctx context.Context, key string, v value.Value, opts ...SetOption) error {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	if s.closed.Load() {
		return ErrClosed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setLocked(ctx, key, v, o)
}

func (s *Store) setLocked(ctx context.Context, key string, v value.Value, o setOptions) error {
	v = value.Canonical(v)
	s.cache.store(key, entry{v: v, ok: !v.IsNone()})
	if o.cacheOnly {
		return nil
	}
	ok, err := s.drv.Set(ctx, key, value.Encode(v))
	if err == nil && !ok {
		err = ErrRejected
	}
	if err != nil {
		s.cache.remove(key)
		return s.fail("set", key, err)
	}
	return nil
}

// DelKey removes key from the cache and the backend. Deleting a key that
// does not exist is not an error.
func (s *Store) DelKey(ctx context.Context, key string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.delLocked(ctx, key)
}

func (s *Store) delLocked(ctx context.Context, key string) error {
	s.cache.remove(key)
	if _, err := s.drv.Delete(ctx, key); err != nil {
		return s.fail("delete", key, err)
	}
	return nil
}

// Rename moves the value of oldKey to newKey. It returns ErrNotFound, and
// changes nothing, when oldKey is absent. The backend sees a delete followed
// by a set; a crash in between loses the value.
func (s *Store) Rename(ctx context.Context, oldKey, newKey string) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.getLocked(ctx, oldKey)
	if err != nil {
		return err
	}
	if !e.ok {
		return ErrNotFound
	}
	if err := s.delLocked(ctx, oldKey); err != nil {
		return err
	}
	return s.setLocked(ctx, newKey, e.v, setOptions{})
}

// ReCache drops the whole cache and re-reads every backend key. Use it after
// the backend was changed behind the Store's back (e.g. a restored backup).
// Keys that fail to load are skipped and reported in the joined error.
func (s *Store) ReCache(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.clear()
	keys, err := s.drv.Keys(ctx)
	if err != nil {
		return s.fail("keys", "", err)
	}
	var errs []error
	for _, k := range keys {
		if _, err := s.getLocked(ctx, k); err != nil {
			errs = append(errs, err)
		}
	}
	s.hooks.ReCached(len(keys))
	s.log.Debug("cache rebuilt", Fields{"backend": s.drv.Name(), "keys": len(keys), "failed": len(errs)})
	return errors.Join(errs...)
}

// Keys lists the keys held by the backend.
func (s *Store) Keys(ctx context.Context) ([]string, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	keys, err := s.drv.Keys(ctx)
	if err != nil {
		return nil, s.fail("keys", "", err)
	}
	return keys, nil
}

// FlushAll deletes every entry in the backend and empties the cache. The
// Store stays usable. When the backend flush fails the cache is left
// untouched; call ReCache to resync with whatever the backend kept.
func (s *Store) FlushAll(ctx context.Context) error {
	if s.closed.Load() {
		return ErrClosed
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	ok, err := s.drv.FlushAll(ctx)
	if err == nil && !ok {
		err = ErrRejected
	}
	if err != nil {
		return s.fail("flush", "", err)
	}
	s.cache.clear()
	s.hooks.Flushed(s.drv.Name())
	s.log.Info("backend flushed", Fields{"backend": s.drv.Name()})
	return nil
}

// Ping reports backend liveness. Drivers without a liveness check are
// assumed alive; a closed Store is never alive.
func (s *Store) Ping(ctx context.Context) bool {
	if s.closed.Load() {
		return false
	}
	p, ok := s.drv.(driver.Pinger)
	if !ok {
		return true
	}
	alive, err := p.Ping(ctx)
	if err != nil {
		_ = s.fail("ping", "", err)
		return false
	}
	return alive
}

// Usage is the approximate storage footprint in bytes, 0 when the driver
// cannot tell. Some drivers walk every key; keep it off hot paths.
func (s *Store) Usage(ctx context.Context) (int64, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	u, ok := s.drv.(driver.UsageReporter)
	if !ok {
		return 0, nil
	}
	n, err := u.Usage(ctx)
	if err != nil {
		return 0, s.fail("usage", "", err)
	}
	return n, nil
}

// Close releases the driver. Safe to call multiple times.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.mu.Lock()
		defer s.mu.Unlock()
		s.cache.close()
		s.closeErr = s.drv.Close(ctx)
	})
	return s.closeErr
}

func (s *Store) fail(op, key string, err error) error {
	s.hooks.BackendError(op, key, err)
	s.log.Warn("backend operation failed", Fields{"op": op, "key": key, "backend": s.drv.Name(), "err": err})
	return &OpError{Op: op, Key: key, Backend: s.drv.Name(), Err: err}
}
