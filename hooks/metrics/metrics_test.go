package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestCounters(t *testing.T) {
	h := New(nil)
	h.BackendError("get", "k", errors.New("x"))
	h.BackendError("get", "k", errors.New("x"))
	h.BackendError("set", "k", errors.New("x"))
	h.NegativeHit("k")
	h.DecodeFallback("k")
	h.ReCached(7)
	h.Flushed("Redis")

	var buf bytes.Buffer
	h.WritePrometheus(&buf)
	out := buf.String()

	for _, want := range []string{
		`botdb_backend_errors_total{op="get"} 2`,
		`botdb_backend_errors_total{op="set"} 1`,
		`botdb_negative_hits_total 1`,
		`botdb_decode_fallbacks_total 1`,
		`botdb_recache_total 1`,
		`botdb_recached_keys_total 7`,
		`botdb_flushes_total{backend="Redis"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
