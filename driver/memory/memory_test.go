package memory

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestDriver(t *testing.T) *Memory {
	t.Helper()
	d, err := New(context.Background(), Config{Shards: 16})
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close(context.Background()) })
	return d
}

func TestMemoryDriver(t *testing.T) {
	ctx := context.Background()
	d := newTestDriver(t)
	require.Equal(t, "Memory", d.Name())

	_, ok, err := d.Get(ctx, "x")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = d.Set(ctx, "x", "1")
	require.NoError(t, err)
	_, err = d.Set(ctx, "x", "2")
	require.NoError(t, err)
	_, err = d.Set(ctx, "y", "[1, 2]")
	require.NoError(t, err)

	got, ok, err := d.Get(ctx, "x")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", got)

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	require.Equal(t, []string{"x", "y"}, keys)

	deleted, err := d.Delete(ctx, "x")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = d.Delete(ctx, "x")
	require.NoError(t, err)
	require.False(t, deleted)

	usage, err := d.Usage(ctx)
	require.NoError(t, err)
	require.Positive(t, usage)

	_, err = d.FlushAll(ctx)
	require.NoError(t, err)
	keys, err = d.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)

	_, err = d.Set(ctx, "z", "ok")
	require.NoError(t, err)
	got, ok, err = d.Get(ctx, "z")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ok", got)
}
