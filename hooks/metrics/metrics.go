// Package metrics counts store events in a VictoriaMetrics set, ready to be
// exposed in Prometheus text format.
package metrics

import (
	"fmt"
	"io"

	vm "github.com/VictoriaMetrics/metrics"

	"github.com/unkn0wn-root/botdb"
)

// Hooks increments counters named botdb_*. Counters are registered on first
// use.
type Hooks struct {
	set *vm.Set

	decodeFallbacks *vm.Counter
	negativeHits    *vm.Counter
	recaches        *vm.Counter
	recachedKeys    *vm.Counter
}

var _ botdb.Hooks = (*Hooks)(nil)

// New registers counters on set; a nil set gets a fresh one.
func New(set *vm.Set) *Hooks {
	if set == nil {
		set = vm.NewSet()
	}
	return &Hooks{
		set:             set,
		decodeFallbacks: set.NewCounter("botdb_decode_fallbacks_total"),
		negativeHits:    set.NewCounter("botdb_negative_hits_total"),
		recaches:        set.NewCounter("botdb_recache_total"),
		recachedKeys:    set.NewCounter("botdb_recached_keys_total"),
	}
}

func (h *Hooks) BackendError(op, _ string, _ error) {
	h.set.GetOrCreateCounter(fmt.Sprintf(`botdb_backend_errors_total{op=%q}`, op)).Inc()
}

func (h *Hooks) DecodeFallback(string) { h.decodeFallbacks.Inc() }
func (h *Hooks) NegativeHit(string)    { h.negativeHits.Inc() }

func (h *Hooks) ReCached(keys int) {
	h.recaches.Inc()
	h.recachedKeys.Add(keys)
}

func (h *Hooks) Flushed(backend string) {
	h.set.GetOrCreateCounter(fmt.Sprintf(`botdb_flushes_total{backend=%q}`, backend)).Inc()
}

// WritePrometheus writes every counter in Prometheus text format.
func (h *Hooks) WritePrometheus(w io.Writer) { h.set.WritePrometheus(w) }
