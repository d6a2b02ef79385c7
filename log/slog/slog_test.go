package slog

import (
	"bytes"
	stdslog "log/slog"
	"strings"
	"testing"

	"github.com/unkn0wn-root/botdb"
)

func TestLoggerWritesSortedAttrs(t *testing.T) {
	var buf bytes.Buffer
	l := Logger{L: stdslog.New(stdslog.NewTextHandler(&buf, &stdslog.HandlerOptions{Level: stdslog.LevelInfo}))}

	l.Debug("hidden", botdb.Fields{"x": 1})
	l.Info("backend flushed", botdb.Fields{"z": 2, "backend": "Redis"})

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug entry leaked: %s", out)
	}
	if !strings.Contains(out, "backend=Redis z=2") {
		t.Fatalf("unexpected output: %s", out)
	}
}
