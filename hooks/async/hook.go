// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    NegativeHitEvery: 100, // sample: ~every 100th negative hit
//	})
//
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	store, _ := botdb.New(botdb.Options{Driver: drv, Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/botdb"
)

// Hooks moves event delivery off the store's write lock. Events that do not
// fit in the queue are dropped and counted.
type Hooks struct {
	inner   botdb.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	closed  atomic.Bool
	dropped atomic.Uint64
}

var _ botdb.Hooks = (*Hooks)(nil)

func New(inner botdb.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Events raised after
// Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.closed.Store(true)
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped is the number of events lost to a full queue or a closed hook.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	if h.closed.Load() {
		h.dropped.Add(1)
		return
	}
	defer func() {
		// send on a queue closed concurrently by Close
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) BackendError(op, k string, err error) {
	h.try(func() { h.inner.BackendError(op, k, err) })
}
func (h *Hooks) DecodeFallback(k string) { h.try(func() { h.inner.DecodeFallback(k) }) }
func (h *Hooks) NegativeHit(k string)    { h.try(func() { h.inner.NegativeHit(k) }) }
func (h *Hooks) ReCached(n int)          { h.try(func() { h.inner.ReCached(n) }) }
func (h *Hooks) Flushed(b string)        { h.try(func() { h.inner.Flushed(b) }) }
