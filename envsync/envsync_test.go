package envsync

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/driver/memory"
	"github.com/unkn0wn-root/botdb/value"
)

func newStore(t *testing.T) *botdb.Store {
	t.Helper()
	ctx := context.Background()
	drv, err := memory.New(ctx, memory.Config{})
	require.NoError(t, err)
	s, err := botdb.New(botdb.Options{Driver: drv})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(ctx) })
	return s
}

func TestSyncSelectsKeys(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SetKey(ctx, "PMSETTING", value.Bool(false)))

	environ := []string{
		"BOTMODE=True",
		"LOG_CHANNEL=-100123",
		"PMSETTING=True",
		"PATH=/usr/bin",
		"HOME=/root",
	}
	written, err := Sync(ctx, s, environ, "")
	require.NoError(t, err)
	require.Equal(t, []string{"BOTMODE", "LOG_CHANNEL", "PMSETTING"}, written)

	v, ok, err := s.GetKey(ctx, "LOG_CHANNEL")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int64(-100123), v.Int())
	require.True(t, s.GetBool(ctx, "PMSETTING", false))

	_, ok, err = s.GetKey(ctx, "PATH")
	require.NoError(t, err)
	require.False(t, ok, "unrelated variables must not be copied")
}

func TestSyncFallsBackToDotenv(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("BOT_TOKEN=from-file\nlanguage=en\nDUAL_MODE=False\nOTHER=x\n"), 0o600))

	written, err := Sync(ctx, s, []string{"BOT_TOKEN=from-env"}, path)
	require.NoError(t, err)
	require.Equal(t, []string{"BOT_TOKEN", "DUAL_MODE", "language"}, written)
	require.Equal(t, "from-env", s.GetString(ctx, "BOT_TOKEN", ""))
	require.Equal(t, "en", s.GetString(ctx, "language", ""))

	written, err = Sync(ctx, s, nil, filepath.Join(dir, "missing"))
	require.NoError(t, err)
	require.Empty(t, written)
}
