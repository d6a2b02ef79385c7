// Package config loads backend settings from the process environment and
// optional .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultFiles are read, in order, by Load when no files are given. Values
// already present in the environment win over file values.
var DefaultFiles = []string{".env", ".env.local"}

const (
	DefaultLocalDir    = "."
	DefaultMongoDBName = "UltroidDB"
	DefaultLogLevel    = "info"
)

// Backend names accepted by BOTDB_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQL    = "sql"
	BackendLocal  = "local"
	BackendMemory = "memory"
)

// Config is everything the selector needs to pick and open a backend.
type Config struct {
	RedisURI      string // REDIS_URI
	RedisHost     string // REDISHOST
	RedisPort     int    // REDISPORT, 0 when unset
	RedisPassword string // REDIS_PASSWORD, else REDISPASSWORD

	MongoURI    string // MONGO_URI
	MongoDBName string // MONGO_DB_NAME

	DatabaseURL string // DATABASE_URL

	Backend      string // BOTDB_BACKEND, forces a backend when set
	LocalDir     string // BOTDB_LOCAL_DIR
	LogLevel     string // BOTDB_LOG_LEVEL
	CacheMaxCost int64  // BOTDB_CACHE_MAX_COST

	Platform string
	Qovery   *QoveryRedis // non-nil only when Platform is Qovery and the variables exist
}

// QoveryRedis holds the QOVERY_REDIS_<HASH>_* variables injected by Qovery.
type QoveryRedis struct {
	Hash     string
	Host     string
	Port     int
	Password string
}

// Load reads the given .env files (DefaultFiles when none), then resolves
// the configuration from the environment. Missing files are skipped.
func Load(files ...string) (Config, error) {
	if err := LoadFiles(files...); err != nil {
		return Config{}, err
	}
	return FromViper(NewViper(), osEnviron())
}

// LoadFiles exports the variables of the given .env files (DefaultFiles
// when none) into the process environment without overriding variables
// that are already set.
func LoadFiles(files ...string) error {
	if len(files) == 0 {
		files = DefaultFiles
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// NewViper returns a viper instance reading the environment with the
// defaults applied. Flags may be bound to it before calling FromViper.
func NewViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("BOTDB_LOCAL_DIR", DefaultLocalDir)
	v.SetDefault("MONGO_DB_NAME", DefaultMongoDBName)
	v.SetDefault("BOTDB_LOG_LEVEL", DefaultLogLevel)
	return v
}

// FromViper builds a Config from v. environ is the KEY=VALUE list scanned
// for platform markers and Qovery variables.
func FromViper(v *viper.Viper, environ []string) (Config, error) {
	c := Config{
		RedisURI:      strings.TrimSpace(v.GetString("REDIS_URI")),
		RedisHost:     strings.TrimSpace(v.GetString("REDISHOST")),
		RedisPassword: firstNonEmpty(v.GetString("REDIS_PASSWORD"), v.GetString("REDISPASSWORD")),
		MongoURI:      strings.TrimSpace(v.GetString("MONGO_URI")),
		MongoDBName:   v.GetString("MONGO_DB_NAME"),
		DatabaseURL:   strings.TrimSpace(v.GetString("DATABASE_URL")),
		Backend:       strings.ToLower(strings.TrimSpace(v.GetString("BOTDB_BACKEND"))),
		LocalDir:      v.GetString("BOTDB_LOCAL_DIR"),
		LogLevel:      strings.ToLower(v.GetString("BOTDB_LOG_LEVEL")),
	}

	var err error
	if c.RedisPort, err = intVar(v, "REDISPORT"); err != nil {
		return Config{}, err
	}
	maxCost, err := intVar(v, "BOTDB_CACHE_MAX_COST")
	if err != nil {
		return Config{}, err
	}
	if maxCost < 0 {
		return Config{}, fmt.Errorf("config: BOTDB_CACHE_MAX_COST must not be negative")
	}
	c.CacheMaxCost = int64(maxCost)

	switch c.Backend {
	case "", BackendRedis, BackendMongo, BackendSQL, BackendLocal, BackendMemory:
	default:
		return Config{}, fmt.Errorf("config: unknown BOTDB_BACKEND %q", c.Backend)
	}

	env := envMap(environ)
	c.Platform = DetectPlatform(func(k string) string { return env[k] })
	if IsQovery(c.Platform) {
		if c.Qovery, err = scanQovery(env); err != nil {
			return Config{}, err
		}
	}
	return c, nil
}

// scanQovery finds the first QOVERY_REDIS_<HASH>_HOST variable in sorted
// order and collects its siblings.
func scanQovery(env map[string]string) (*QoveryRedis, error) {
	names := make([]string, 0, len(env))
	for k := range env {
		names = append(names, k)
	}
	sort.Strings(names)

	for _, name := range names {
		hash, ok := qoveryHash(name)
		if !ok || env[name] == "" {
			continue
		}
		q := &QoveryRedis{
			Hash:     hash,
			Host:     env[name],
			Password: env["QOVERY_REDIS_"+hash+"_PASSWORD"],
		}
		if p := env["QOVERY_REDIS_"+hash+"_PORT"]; p != "" {
			port, err := strconv.Atoi(p)
			if err != nil {
				return nil, fmt.Errorf("config: QOVERY_REDIS_%s_PORT: %w", hash, err)
			}
			q.Port = port
		}
		return q, nil
	}
	return nil, nil
}

// qoveryHash extracts HASH from QOVERY_REDIS_<HASH>_HOST.
func qoveryHash(name string) (string, bool) {
	const prefix, suffix = "QOVERY_REDIS_", "_HOST"
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, suffix) {
		return "", false
	}
	hash := strings.TrimSuffix(strings.TrimPrefix(name, prefix), suffix)
	if hash == "" {
		return "", false
	}
	return hash, true
}

func intVar(v *viper.Viper, key string) (int, error) {
	s := strings.TrimSpace(v.GetString(key))
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return ""
}

func envMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			m[k] = v
		}
	}
	return m
}
