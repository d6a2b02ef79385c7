// Package selector picks exactly one backend from the configuration and
// wraps it in a botdb.Store.
//
// Precedence, first match wins: Redis (REDIS_URI or REDISHOST), Mongo
// (MONGO_URI), SQL (DATABASE_URL), then the local file database. Setting
// BOTDB_BACKEND skips the precedence and forces one backend, including the
// volatile memory backend. A backend that fails to open is reported; there
// is no fallback to the next candidate.
package selector

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/config"
	"github.com/unkn0wn-root/botdb/driver"
	"github.com/unkn0wn-root/botdb/driver/local"
	"github.com/unkn0wn-root/botdb/driver/memory"
	"github.com/unkn0wn-root/botdb/driver/mongo"
	redisdrv "github.com/unkn0wn-root/botdb/driver/redis"
	sqldrv "github.com/unkn0wn-root/botdb/driver/sql"
)

const (
	defaultRedisPort = 6379
	redisTimeout     = 5 * time.Second
)

var (
	ErrNoRedisHost   = errors.New("REDIS_URI or REDISHOST is required")
	ErrHTTPRedisHost = errors.New("redis host must not start with http(s)://, use the hostname or a redis:// URL")
	ErrNoMongoURI    = errors.New("MONGO_URI is required")
	ErrNoDatabaseURL = errors.New("DATABASE_URL is required")
	ErrUnreachable   = errors.New("backend did not answer ping")
)

// Error reports a backend that could not be opened.
type Error struct {
	Backend string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("selector: open %s backend: %v", e.Backend, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Choose returns the backend cfg selects, one of the config.Backend*
// constants.
func Choose(cfg config.Config) string {
	switch {
	case cfg.Backend != "":
		return cfg.Backend
	case cfg.RedisURI != "" || cfg.RedisHost != "":
		return config.BackendRedis
	case cfg.MongoURI != "":
		return config.BackendMongo
	case cfg.DatabaseURL != "":
		return config.BackendSQL
	}
	return config.BackendLocal
}

// Open selects, opens and pings one backend and wraps it in a Store that
// logs through log.
func Open(ctx context.Context, cfg config.Config, log botdb.Logger) (*botdb.Store, error) {
	return OpenWith(ctx, cfg, botdb.Options{Logger: log})
}

// OpenWith is Open with full Store options. opts.Driver is ignored; a
// CacheMaxCost of 0 takes cfg.CacheMaxCost.
func OpenWith(ctx context.Context, cfg config.Config, opts botdb.Options) (*botdb.Store, error) {
	log := opts.Logger
	if log == nil {
		log = botdb.NopLogger{}
	}
	backend := Choose(cfg)
	if backend == config.BackendLocal && cfg.Backend == "" {
		log.Error("no networked database configured, using the local file database", botdb.Fields{"dir": cfg.LocalDir})
	}

	drv, err := openDriver(ctx, backend, cfg)
	if err != nil {
		return nil, &Error{Backend: backend, Err: err}
	}
	if err := ping(ctx, drv); err != nil {
		_ = drv.Close(ctx)
		return nil, &Error{Backend: backend, Err: err}
	}

	opts.Driver = drv
	if opts.CacheMaxCost == 0 {
		opts.CacheMaxCost = cfg.CacheMaxCost
	}
	s, err := botdb.New(opts)
	if err != nil {
		_ = drv.Close(ctx)
		return nil, &Error{Backend: backend, Err: err}
	}
	log.Info("database ready", botdb.Fields{"backend": s.Name(), "platform": cfg.Platform})
	return s, nil
}

var exit = os.Exit

// MustOpen is Open for process startup: on failure it logs the error and
// exits with status 1.
func MustOpen(ctx context.Context, cfg config.Config, log botdb.Logger) *botdb.Store {
	s, err := Open(ctx, cfg, log)
	if err != nil {
		if log != nil {
			log.Error("database initialization failed", botdb.Fields{"err": err})
		}
		exit(1)
	}
	return s
}

func openDriver(ctx context.Context, backend string, cfg config.Config) (driver.Driver, error) {
	switch backend {
	case config.BackendRedis:
		opts, err := RedisOptions(cfg)
		if err != nil {
			return nil, err
		}
		return redisdrv.Open(opts)
	case config.BackendMongo:
		if cfg.MongoURI == "" {
			return nil, ErrNoMongoURI
		}
		return mongo.Open(ctx, cfg.MongoURI, cfg.MongoDBName)
	case config.BackendSQL:
		if cfg.DatabaseURL == "" {
			return nil, ErrNoDatabaseURL
		}
		return sqldrv.Open(ctx, cfg.DatabaseURL)
	case config.BackendLocal:
		return local.Open(local.Config{Dir: cfg.LocalDir})
	case config.BackendMemory:
		return memory.New(ctx, memory.Config{})
	}
	return nil, fmt.Errorf("unknown backend %q", backend)
}

func ping(ctx context.Context, drv driver.Driver) error {
	p, ok := drv.(driver.Pinger)
	if !ok {
		return nil
	}
	alive, err := p.Ping(ctx)
	if err != nil {
		return err
	}
	if !alive {
		return ErrUnreachable
	}
	return nil
}

// RedisOptions builds client options from REDIS_URI/REDISHOST, REDISPORT and
// the password variables. A redis:// or rediss:// URL is parsed as a whole;
// otherwise a trailing :port overrides REDISPORT. On Qovery the injected
// QOVERY_REDIS_<HASH>_* values override host, port and password.
func RedisOptions(cfg config.Config) (*goredis.Options, error) {
	host := cfg.RedisURI
	if host == "" {
		host = cfg.RedisHost
	}
	if host == "" && cfg.Qovery == nil {
		return nil, ErrNoRedisHost
	}

	var opts *goredis.Options
	port := cfg.RedisPort
	lower := strings.ToLower(host)
	switch {
	case strings.HasPrefix(lower, "redis://"), strings.HasPrefix(lower, "rediss://"):
		o, err := goredis.ParseURL(host)
		if err != nil {
			return nil, err
		}
		opts = o
		h, p, err := net.SplitHostPort(o.Addr)
		if err != nil {
			return nil, err
		}
		host = h
		port, _ = strconv.Atoi(p)
	case strings.HasPrefix(lower, "http"):
		return nil, ErrHTTPRedisHost
	default:
		opts = &goredis.Options{}
		if i := strings.LastIndex(host, ":"); i >= 0 {
			p, err := strconv.Atoi(host[i+1:])
			if err != nil {
				return nil, fmt.Errorf("invalid redis port %q", host[i+1:])
			}
			host, port = host[:i], p
		}
	}
	if opts.Password == "" {
		opts.Password = cfg.RedisPassword
	}

	if q := cfg.Qovery; q != nil {
		host = q.Host
		if q.Port > 0 {
			port = q.Port
		}
		if q.Password != "" {
			opts.Password = q.Password
		}
	}
	if port == 0 {
		port = defaultRedisPort
	}

	opts.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	opts.DialTimeout = redisTimeout
	opts.ReadTimeout = redisTimeout
	opts.WriteTimeout = redisTimeout
	return opts, nil
}
