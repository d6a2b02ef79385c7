package botdb

import (
	"fmt"

	rc "github.com/dgraph-io/ristretto"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/unkn0wn-root/botdb/value"
)

// entry is one cached lookup. ok=false records that the backend had no
// value, so repeated misses do not go back to the backend.
type entry struct {
	v  value.Value
	ok bool
}

// cacheLayer maps keys to decoded values. Implementations are safe for
// concurrent use; the Store serializes writers itself.
type cacheLayer interface {
	load(key string) (entry, bool)
	store(key string, e entry)
	remove(key string)
	clear()
	close()
}

// mapCache is the unbounded default.
type mapCache struct {
	m *xsync.MapOf[string, entry]
}

func newMapCache() *mapCache {
	return &mapCache{m: xsync.NewMapOf[string, entry]()}
}

func (c *mapCache) load(key string) (entry, bool) { return c.m.Load(key) }
func (c *mapCache) store(key string, e entry)     { c.m.Store(key, e) }
func (c *mapCache) remove(key string)             { c.m.Delete(key) }
func (c *mapCache) clear()                        { c.m.Clear() }
func (c *mapCache) close()                        {}

// boundedCache evicts by TinyLFU once maxCost entries are held. Eviction
// only costs a backend read later; it never makes a cached value stale.
type boundedCache struct {
	c *rc.Cache
}

func newBoundedCache(maxCost int64) (*boundedCache, error) {
	c, err := rc.NewCache(&rc.Config{
		NumCounters: maxCost * 10,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("botdb: bounded cache: %w", err)
	}
	return &boundedCache{c: c}, nil
}

func (c *boundedCache) load(key string) (entry, bool) {
	v, ok := c.c.Get(key)
	if !ok {
		return entry{}, false
	}
	e, ok := v.(entry)
	if !ok {
		// self-heal: drop unexpected entry shape
		c.c.Del(key)
		return entry{}, false
	}
	return e, true
}

// store waits for ristretto's async buffers so a following load observes
// the write. A rejected admission leaves no entry behind.
func (c *boundedCache) store(key string, e entry) {
	c.c.Set(key, e, 1)
	c.c.Wait()
}

func (c *boundedCache) remove(key string) { c.c.Del(key) }
func (c *boundedCache) clear()            { c.c.Clear() }
func (c *boundedCache) close()            { c.c.Close() }
