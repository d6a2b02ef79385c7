// Package envsync copies selected environment variables into a store at
// startup, so values changed in the deployment settings win over values
// saved earlier.
package envsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/joho/godotenv"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/value"
)

// Always are synced whether or not the store already holds them.
var Always = []string{"LOG_CHANNEL", "BOT_TOKEN", "BOTMODE", "DUAL_MODE", "language"}

// Sync writes a key to s when it is listed in Always or already present in
// the store, and a value for it is found in environ (KEY=VALUE pairs) or,
// failing that, in the dotenv file. A missing dotenv file is not an error;
// pass "" to skip it. It returns the keys written, sorted.
func Sync(ctx context.Context, s *botdb.Store, environ []string, dotenvPath string) ([]string, error) {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}

	var file map[string]string
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case err == nil:
			file = m
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("envsync: read %s: %w", dotenvPath, err)
		}
	}

	stored, err := s.Keys(ctx)
	if err != nil {
		return nil, err
	}
	wanted := make(map[string]struct{}, len(Always)+len(stored))
	for _, k := range Always {
		wanted[k] = struct{}{}
	}
	for _, k := range stored {
		wanted[k] = struct{}{}
	}

	var written []string
	for k := range wanted {
		v, ok := env[k]
		if !ok {
			v, ok = file[k]
		}
		if !ok {
			continue
		}
		if err := s.SetKey(ctx, k, value.String(v)); err != nil {
			return written, err
		}
		written = append(written, k)
	}
	sort.Strings(written)
	return written, nil
}
