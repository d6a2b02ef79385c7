package mongo

import (
	"context"
	"fmt"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/unkn0wn-root/botdb/driver"
)

// The driver talks to a real server; set BOTDB_TEST_MONGO_URI to run these.
func newTestDriver(t *testing.T) *Mongo {
	t.Helper()
	uri := os.Getenv("BOTDB_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BOTDB_TEST_MONGO_URI not set")
	}
	ctx := context.Background()
	d, err := Open(ctx, uri, fmt.Sprintf("botdb_test_%d", time.Now().UnixNano()))
	require.NoError(t, err)
	ok, err := d.Ping(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	t.Cleanup(func() {
		_, _ = d.FlushAll(ctx)
		_ = d.Close(ctx)
	})
	return d
}

func TestNewRejectsNilClient(t *testing.T) {
	_, err := New(Config{})
	require.ErrorIs(t, err, ErrNilClient)
}

func TestValidKey(t *testing.T) {
	require.True(t, validKey("GDRIVE_AUTH_TOKEN"))
	require.True(t, validKey("with space"))
	require.False(t, validKey(""))
	require.False(t, validKey("a$b"))
	require.False(t, validKey("system.users"))
}

func TestMongoDriver(t *testing.T) {
	ctx := context.Background()
	d := newTestDriver(t)

	_, ok, err := d.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	_, err = d.Set(ctx, "k", "1")
	require.NoError(t, err)
	_, err = d.Set(ctx, "k", "2") // upsert replaces
	require.NoError(t, err)
	_, err = d.Set(ctx, "j", "{'a': 1}")
	require.NoError(t, err)

	got, ok, err := d.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "2", got)

	keys, err := d.Keys(ctx)
	require.NoError(t, err)
	sort.Strings(keys)
	require.Equal(t, []string{"j", "k"}, keys)

	deleted, err := d.Delete(ctx, "k")
	require.NoError(t, err)
	require.True(t, deleted)
	deleted, err = d.Delete(ctx, "k")
	require.NoError(t, err)
	require.False(t, deleted)

	_, err = d.Usage(ctx)
	require.NoError(t, err)

	_, err = d.FlushAll(ctx)
	require.NoError(t, err)
	keys, err = d.Keys(ctx)
	require.NoError(t, err)
	require.Empty(t, keys)

	_, err = d.Set(ctx, "again", "x")
	require.NoError(t, err)

	_, err = d.Set(ctx, "bad$key", "x")
	require.ErrorIs(t, err, driver.ErrInvalidKey)
}
