package snapshot

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/driver/memory"
	"github.com/unkn0wn-root/botdb/internal/wire"
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

func seed(t *testing.T, s *botdb.Store) map[string]value.Value {
	t.Helper()
	want := map[string]value.Value{
		"SUDOS":       value.List(value.Int(123), value.Int(456)),
		"BOTMODE":     value.Bool(true),
		"LOG_CHANNEL": value.Int(-1001234567890),
		"PMLOG":       value.StringMap(map[string]value.Value{"on": value.Bool(false), "ratio": value.Float(0.5)}),
		"ALIVE_TEXT":  value.String("hi, I'm alive\nsecond line"),
	}
	for k, v := range want {
		require.NoError(t, s.SetKey(context.Background(), k, v))
	}
	return want
}

func TestDumpFlushRestoreEveryFormat(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatMsgpack, FormatCBOR, FormatProtobuf} {
		t.Run(format, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)
			want := seed(t, s)

			snap, err := Dump(ctx, s)
			require.NoError(t, err)
			require.Equal(t, "Memory", snap.Backend)
			require.Len(t, snap.Entries, len(want))
			require.Equal(t, "ALIVE_TEXT", snap.Entries[0].Key, "entries sorted by key")

			var buf bytes.Buffer
			require.NoError(t, Write(&buf, snap, format))

			require.NoError(t, s.FlushAll(ctx))
			require.NoError(t, s.SetKey(ctx, "STALE", value.Int(1)))

			got, err := Read(&buf, 0)
			require.NoError(t, err)
			require.True(t, snap.CreatedAt.Equal(got.CreatedAt))
			require.Equal(t, snap.Entries, got.Entries)
			require.NoError(t, Restore(ctx, s, got, true))

			for k, v := range want {
				gv, ok, err := s.GetKey(ctx, k)
				require.NoError(t, err)
				require.True(t, ok, k)
				require.True(t, v.Equal(gv), "%s: %v != %v", k, v, gv)
			}
			_, ok, err := s.GetKey(ctx, "STALE")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestRestoreWithoutFlushKeepsOtherKeys(t *testing.T) {
	ctx := context.Background()
	src := newStore(t)
	seed(t, src)
	snap, err := Dump(ctx, src)
	require.NoError(t, err)

	dst := newStore(t)
	require.NoError(t, dst.SetKey(ctx, "KEEP", value.String("me")))
	require.NoError(t, Restore(ctx, dst, snap, false))

	keys, err := dst.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, len(snap.Entries)+1)
}

func TestReadLimitsAndCorruption(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	seed(t, s)
	snap, err := Dump(ctx, s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, snap, FormatMsgpack))
	framed := buf.Bytes()

	_, err = Read(bytes.NewReader(framed), 16)
	require.ErrorIs(t, err, ErrTooLarge)

	damaged := append([]byte(nil), framed...)
	damaged[len(damaged)/2] ^= 0xFF
	_, err = Read(bytes.NewReader(damaged), 0)
	require.ErrorIs(t, err, wire.ErrCorrupt)

	_, err = Read(bytes.NewReader([]byte(`{"version": 1}`)), 0)
	require.ErrorIs(t, err, wire.ErrCorrupt)

	_, err = Read(bytes.NewReader(wire.Encode(99, []byte("x"))), 0)
	require.Error(t, err)
}

func TestVersionChecked(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.ErrorIs(t, Restore(ctx, s, Snapshot{Version: 99}, false), ErrVersion)

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Snapshot{Version: 2}, FormatMsgpack))
	_, err := Read(&buf, 0)
	require.ErrorIs(t, err, ErrVersion)
}

func TestUnknownFormat(t *testing.T) {
	require.Error(t, Write(&bytes.Buffer{}, Snapshot{Version: Version}, "yaml"))
}
