package local

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/botdb/driver"
)

func TestLocalInMemory(t *testing.T) {
	ctx := context.Background()
	d, err := Open(Config{})
	require.NoError(t, err)
	defer d.Close(ctx)

	require.Equal(t, "LocalDB", d.Name())

	_, ok, err := d.Get(ctx, "HNDLR")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = d.Set(ctx, "HNDLR", ".")
	require.NoError(t, err)
	_, err = d.Set(ctx, "SUDOS", "[1, 2]")
	require.NoError(t, err)

	got, ok, err := d.Get(ctx, "HNDLR")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ".", got)

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	require.Equal(t, []string{"HNDLR", "SUDOS"}, keys)

	deleted, err := d.Delete(ctx, "HNDLR")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = d.Delete(ctx, "never-set")
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = d.FlushAll(ctx)
	require.NoError(t, err)
	keys, err = d.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)

	_, err = d.Set(ctx, "after", "flush")
	require.NoError(t, err)
	got, ok, err = d.Get(ctx, "after")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "flush", got)

	_, err = d.Set(ctx, "", "x")
	require.ErrorIs(t, err, driver.ErrInvalidKey)
}

func TestLocalPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	d, err := Open(Config{Dir: dir})
	require.NoError(t, err)
	_, err = d.Set(ctx, "LOG_CHANNEL", "-100123")
	require.NoError(t, err)
	require.NoError(t, d.Close(ctx))

	d, err = Open(Config{Dir: dir})
	require.NoError(t, err)
	defer d.Close(ctx)

	got, ok, err := d.Get(ctx, "LOG_CHANNEL")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "-100123", got)

	usage, err := d.Usage(ctx)
	require.NoError(t, err)
	require.GreaterOrEqual(t, usage, int64(0))
}
