// Package zap adapts a *zap.Logger to botdb.Logger.
package zap

import (
	"fmt"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unkn0wn-root/botdb"
)

var _ botdb.Logger = Logger{}

// Logger forwards store events to a zap logger.
type Logger struct{ L *zap.Logger }

func (z Logger) Debug(msg string, f botdb.Fields) { z.L.Debug(msg, fields(f)...) }
func (z Logger) Info(msg string, f botdb.Fields)  { z.L.Info(msg, fields(f)...) }
func (z Logger) Warn(msg string, f botdb.Fields)  { z.L.Warn(msg, fields(f)...) }
func (z Logger) Error(msg string, f botdb.Fields) { z.L.Error(msg, fields(f)...) }

// New builds a production (JSON) or development (console) zap logger at the
// given level ("debug", "info", "warn", "error").
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

// fields sorts keys so output is stable across runs.
func fields(f botdb.Fields) []zap.Field {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]zap.Field, 0, len(f))
	for _, k := range keys {
		if err, ok := f[k].(error); ok {
			out = append(out, zap.NamedError(k, err))
			continue
		}
		out = append(out, zap.Any(k, f[k]))
	}
	return out
}
