// Package memory is a volatile driver backed by bigcache. Nothing survives
// the process; it exists for dry runs and tests.
//
// bigcache indexes entries by a 64-bit hash of the key. Two keys with the
// same hash share one slot, so setting the second silently replaces the
// first. Use a persistent driver when that is not acceptable.
package memory

import (
	"context"
	"errors"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/botdb/driver"
)

// lifeWindow is long enough that bigcache never treats an entry as expired.
const lifeWindow = 100 * 365 * 24 * time.Hour

type Memory struct {
	c *bc.BigCache
}

var (
	_ driver.Driver        = (*Memory)(nil)
	_ driver.UsageReporter = (*Memory)(nil)
)

type Config struct {
	Shards             int // power of two; 0 => bigcache default
	MaxEntrySize       int
	HardMaxCacheSizeMB int // ~ memory limit; 0 = unlimited
}

func New(ctx context.Context, cfg Config) (*Memory, error) {
	conf := bc.DefaultConfig(lifeWindow)
	conf.CleanWindow = 0 // no background eviction
	conf.Verbose = false
	if cfg.Shards > 0 {
		conf.Shards = cfg.Shards
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.New(ctx, conf)
	if err != nil {
		return nil, err
	}
	return &Memory{c: c}, nil
}

func (p *Memory) Name() string { return "Memory" }

func (p *Memory) Get(_ context.Context, key string) (string, bool, error) {
	b, err := p.c.Get(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}

func (p *Memory) Set(_ context.Context, key, value string) (bool, error) {
	if err := p.c.Set(key, []byte(value)); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memory) Delete(_ context.Context, key string) (bool, error) {
	err := p.c.Delete(key)
	if errors.Is(err, bc.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Memory) Keys(_ context.Context) ([]string, error) {
	out := make([]string, 0, p.c.Len())
	it := p.c.Iterator()
	for it.SetNext() {
		e, err := it.Value()
		if err != nil {
			return nil, err
		}
		out = append(out, e.Key())
	}
	return out, nil
}

func (p *Memory) FlushAll(_ context.Context) (bool, error) {
	if err := p.c.Reset(); err != nil {
		return false, err
	}
	return true, nil
}

// Usage reports the bytes allocated by bigcache's shard buffers.
func (p *Memory) Usage(_ context.Context) (int64, error) {
	return int64(p.c.Capacity()), nil
}

func (p *Memory) Close(_ context.Context) error {
	return p.c.Close()
}
