// Package sloghooks logs store events through log/slog.
package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/botdb"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	NegativeHitEvery    uint64
	DecodeFallbackEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	// Keys such as BOT_TOKEN are not secret, but their values often are,
	// and some deployments prefer not to leak key names either.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	negHitCtr   atomic.Uint64
	fallbackCtr atomic.Uint64
}

var _ botdb.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

// Plain returns keys unchanged; use it as Options.Redact.
func Plain(k string) string { return k }

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) BackendError(op, key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("botdb.backend_error",
		"op", op,
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) DecodeFallback(key string) {
	if h.l == nil || !sample(h.opts.DecodeFallbackEvery, &h.fallbackCtr) {
		return
	}
	h.l.Debug("botdb.decode_fallback", "key", h.redact(key))
}

func (h *Hooks) NegativeHit(key string) {
	if h.l == nil || !sample(h.opts.NegativeHitEvery, &h.negHitCtr) {
		return
	}
	h.l.Debug("botdb.negative_hit", "key", h.redact(key))
}

func (h *Hooks) ReCached(keys int) {
	if h.l == nil {
		return
	}
	h.l.Info("botdb.recached", "keys", keys)
}

func (h *Hooks) Flushed(backend string) {
	if h.l == nil {
		return
	}
	h.l.Warn("botdb.flushed", "backend", backend)
}
