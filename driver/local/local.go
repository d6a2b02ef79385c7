// Package local is the file-backed fallback driver, used when no networked
// backend is configured. It keeps entries in an embedded badger database
// under <dir>/<namespace>.
package local

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"

	"github.com/unkn0wn-root/botdb/driver"
)

// DefaultNamespace is the directory name the database is opened under.
const DefaultNamespace = "ultroid"

type Local struct {
	db *badger.DB
}

var (
	_ driver.Driver        = (*Local)(nil)
	_ driver.UsageReporter = (*Local)(nil)
)

type Config struct {
	// Dir is the parent directory. Empty opens an in-memory database.
	Dir       string
	Namespace string // "" => DefaultNamespace
	// Logger receives badger's internal logs; nil silences them.
	Logger badger.Logger
}

func Open(cfg Config) (*Local, error) {
	var opts badger.Options
	if cfg.Dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		ns := cfg.Namespace
		if ns == "" {
			ns = DefaultNamespace
		}
		opts = badger.DefaultOptions(filepath.Join(cfg.Dir, ns))
	}
	opts = opts.WithLogger(cfg.Logger)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Local{db: db}, nil
}

func (p *Local) Name() string { return "LocalDB" }

func (p *Local) Get(_ context.Context, key string) (string, bool, error) {
	var out string
	err := p.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			out = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}

func (p *Local) Set(_ context.Context, key, value string) (bool, error) {
	if key == "" {
		return false, driver.ErrInvalidKey
	}
	err := p.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), []byte(value))
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (p *Local) Delete(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, nil
	}
	existed := false
	err := p.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		existed = true
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (p *Local) Keys(_ context.Context) ([]string, error) {
	var out []string
	err := p.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			out = append(out, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return out, err
}

func (p *Local) FlushAll(_ context.Context) (bool, error) {
	if err := p.db.DropAll(); err != nil {
		return false, err
	}
	return true, nil
}

// Usage is the on-disk size of the LSM tree plus the value log. In-memory
// databases report 0.
func (p *Local) Usage(_ context.Context) (int64, error) {
	lsm, vlog := p.db.Size()
	return lsm + vlog, nil
}

func (p *Local) Close(_ context.Context) error {
	return p.db.Close()
}
