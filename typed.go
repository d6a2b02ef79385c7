package botdb

import (
	"context"
	"strconv"

	"github.com/unkn0wn-root/botdb/value"
)

// The typed getters below never fail: a backend error or a value of the
// wrong kind yields def, and errors are logged. They suit feature flags and
// settings read from command handlers.

// GetString returns the value as text. Non-string values are encoded.
func (s *Store) GetString(ctx context.Context, key, def string) string {
	v, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return value.Encode(v)
}

// GetInt accepts ints, integral floats and numeric strings.
func (s *Store) GetInt(ctx context.Context, key string, def int64) int64 {
	v, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	switch v.Kind() {
	case value.KindInt:
		return v.Int()
	case value.KindFloat:
		if f := v.Float(); f == float64(int64(f)) {
			return int64(f)
		}
	case value.KindBool:
		if v.Bool() {
			return 1
		}
		return 0
	case value.KindString:
		if n, err := strconv.ParseInt(v.Str(), 10, 64); err == nil {
			return n
		}
	}
	return def
}

// GetBool uses literal truthiness, so "", 0, [] and False are all false.
func (s *Store) GetBool(ctx context.Context, key string, def bool) bool {
	v, ok := s.lookup(ctx, key)
	if !ok {
		return def
	}
	return v.Truthy()
}

func (s *Store) lookup(ctx context.Context, key string) (value.Value, bool) {
	v, ok, err := s.GetKey(ctx, key)
	if err != nil {
		s.log.Error("read failed, using default", Fields{"key": key, "err": err})
		return value.None(), false
	}
	return v, ok
}
