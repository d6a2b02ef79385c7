package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/botdb/driver"
)

var ErrNilClient = errors.New("redis driver: nil client")

// scanCount is the COUNT hint passed to SCAN.
const scanCount = 500

type Redis struct {
	rdb         goredis.UniversalClient
	closeClient bool
}

var (
	_ driver.Driver        = (*Redis)(nil)
	_ driver.Pinger        = (*Redis)(nil)
	_ driver.UsageReporter = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	CloseClient bool // set true only if this driver exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Redis{rdb: cfg.Client, closeClient: cfg.CloseClient}, nil
}

// Open dials a dedicated client from opts. The driver owns it.
func Open(opts *goredis.Options) (*Redis, error) {
	return New(Config{Client: goredis.NewClient(opts), CloseClient: true})
}

func (p *Redis) Name() string { return "Redis" }

func (p *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	s, err := p.rdb.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil // miss
	}
	if err != nil {
		return "", false, err // transport/server error
	}
	return s, true, nil
}

func (p *Redis) Set(ctx context.Context, key, value string) (bool, error) {
	if err := p.rdb.Set(ctx, key, value, 0).Err(); err != nil {
		return false, err
	}
	return true, nil
}

func (p *Redis) Delete(ctx context.Context, key string) (bool, error) {
	n, err := p.rdb.Del(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Keys walks the keyspace with SCAN rather than KEYS so a large database
// does not block the server.
func (p *Redis) Keys(ctx context.Context) ([]string, error) {
	var out []string
	iter := p.rdb.Scan(ctx, 0, "*", scanCount).Iterator()
	for iter.Next(ctx) {
		out = append(out, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FlushAll empties the selected logical database only.
func (p *Redis) FlushAll(ctx context.Context) (bool, error) {
	if err := p.rdb.FlushDB(ctx).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Usage sums MEMORY USAGE over every key. One round trip per key.
func (p *Redis) Usage(ctx context.Context) (int64, error) {
	keys, err := p.Keys(ctx)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, k := range keys {
		n, err := p.rdb.MemoryUsage(ctx, k).Result()
		if err == goredis.Nil {
			continue // expired or deleted between SCAN and MEMORY USAGE
		}
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

func (p *Redis) Ping(ctx context.Context) (bool, error) {
	if err := p.rdb.Ping(ctx).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Close releases the underlying redis client only when this driver owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}
