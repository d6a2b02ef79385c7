package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/envsync"
	"github.com/unkn0wn-root/botdb/snapshot"
	"github.com/unkn0wn-root/botdb/value"
)

func getCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get [key]",
		Short: "Print the stored literal for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				v, ok, err := s.GetKey(ctx, args[0])
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%s: %w", args[0], botdb.ErrNotFound)
				}
				fmt.Fprintln(a.out, value.Encode(v))
				return nil
			})
		},
	}
}

func setCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a key; the value is parsed as a literal when possible",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cacheOnly, _ := cmd.Flags().GetBool("cache-only")
			var opts []botdb.SetOption
			if cacheOnly {
				opts = append(opts, botdb.CacheOnly())
			}
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if err := s.SetKey(ctx, args[0], value.String(args[1]), opts...); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "set successfully")
				return nil
			})
		},
	}
	cmd.Flags().Bool("cache-only", false, "update the in-process cache only (mostly useful for testing)")
	return cmd
}

func delCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "del [key]",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if err := s.DelKey(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "delete successfully")
				return nil
			})
		},
	}
}

func renameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename [old] [new]",
		Short: "Move a value to a new key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if err := s.Rename(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "renamed %s to %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

func keysCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every key in the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				keys, err := s.Keys(ctx)
				if err != nil {
					return err
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintln(a.out, k)
				}
				return nil
			})
		},
	}
}

func flushCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flush",
		Short: "Delete every entry in the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				return errors.New("refusing to flush without --yes")
			}
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if err := s.FlushAll(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "flushed")
				return nil
			})
		},
	}
	cmd.Flags().Bool("yes", false, "confirm the flush")
	return cmd
}

func usageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Print the approximate storage size in bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				n, err := s.Usage(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.out, n)
				return nil
			})
		},
	}
}

func pingCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend answers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if !s.Ping(ctx) {
					return fmt.Errorf("%s: not reachable", s.Name())
				}
				fmt.Fprintln(a.out, "pong")
				return nil
			})
		},
	}
}

func recacheCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recache",
		Short: "Re-read every key, reporting keys that fail to load",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if err := s.ReCache(ctx); err != nil {
					return err
				}
				fmt.Fprintln(a.out, "recached")
				return nil
			})
		},
	}
}

func dumpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Write every entry to a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, _ := cmd.Flags().GetString("format")
			path, _ := cmd.Flags().GetString("out")
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				snap, err := snapshot.Dump(ctx, s)
				if err != nil {
					return err
				}
				w, closeFn, err := a.output(path)
				if err != nil {
					return err
				}
				if err := snapshot.Write(w, snap, format); err != nil {
					_ = closeFn()
					return err
				}
				return closeFn()
			})
		},
	}
	cmd.Flags().String("format", snapshot.FormatJSON, "json, msgpack, cbor or protobuf")
	cmd.Flags().StringP("out", "o", "-", "output file, - for stdout")
	return cmd
}

func restoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restore [file]",
		Short: "Write the entries of a snapshot file (any format) back into the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flush, _ := cmd.Flags().GetBool("flush")
			maxSize, _ := cmd.Flags().GetInt("max-size")
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			snap, err := snapshot.Read(f, maxSize)
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				if err := snapshot.Restore(ctx, s, snap, flush); err != nil {
					return err
				}
				fmt.Fprintf(a.out, "restored %d keys from %s snapshot\n", len(snap.Entries), snap.Backend)
				return nil
			})
		},
	}
	cmd.Flags().Bool("flush", false, "empty the backend before restoring")
	cmd.Flags().Int("max-size", snapshot.DefaultMaxSize, "reject snapshot files larger than this many bytes")
	return cmd
}

func syncEnvCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync-env",
		Short: "Copy bot settings from the environment into the store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dotenv, _ := cmd.Flags().GetString("dotenv")
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				written, err := envsync.Sync(ctx, s, a.environ(), dotenv)
				for _, k := range written {
					fmt.Fprintln(a.out, k)
				}
				return err
			})
		},
	}
	cmd.Flags().String("dotenv", ".env", "dotenv file consulted for variables missing from the environment")
	return cmd
}

func backendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Show the selected backend and hosting platform",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withStore(cmd, func(ctx context.Context, s *botdb.Store) error {
				keys, err := s.Keys(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out, "backend: %s\nplatform: %s\ntotal keys: %d\n", s.Name(), a.cfg.Platform, len(keys))
				return nil
			})
		},
	}
}

func versionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of botdb",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.out, "botdb v%s\n", Version)
		},
	}
}

func (a *app) output(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return a.out, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
