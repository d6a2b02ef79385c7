// Command botdb inspects and edits the bot's configuration store on
// whichever backend the environment selects.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/botdb"
	"github.com/unkn0wn-root/botdb/config"
	"github.com/unkn0wn-root/botdb/hooks/metrics"
	zaplog "github.com/unkn0wn-root/botdb/log/zap"
	"github.com/unkn0wn-root/botdb/selector"
)

const Version = "0.3.0"

// app carries per-invocation state shared by the subcommands.
type app struct {
	out, errOut io.Writer
	v           *viper.Viper
	environ     func() []string

	cfg     config.Config
	zl      *zap.Logger
	metrics *metrics.Hooks
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut, v: config.NewViper(), environ: os.Environ}

	root := &cobra.Command{
		Use:   "botdb",
		Short: "inspect and edit the bot configuration store",
		Long: fmt.Sprintf(`botdb (v%s)

Reads the backend settings (REDIS_URI, MONGO_URI, DATABASE_URL, ...) from the
environment and .env files, opens exactly one backend and runs the command
against it.`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRun: a.teardown,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	pf := root.PersistentFlags()
	pf.StringSlice("env-file", config.DefaultFiles, "dotenv files to load before reading the environment")
	pf.String("backend", "", "force a backend (redis, mongo, sql, local, memory)")
	pf.String("local-dir", config.DefaultLocalDir, "parent directory of the local database")
	pf.String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	pf.Int64("cache-max-cost", 0, "bound the in-process cache to about this many entries (0 = unbounded)")
	pf.Bool("dev-log", false, "human readable logs")
	pf.Bool("metrics", false, "print store metrics in Prometheus format to stderr on exit")

	root.AddCommand(
		getCmd(a), setCmd(a), delCmd(a), renameCmd(a), keysCmd(a),
		flushCmd(a), usageCmd(a), pingCmd(a), recacheCmd(a),
		dumpCmd(a), restoreCmd(a), syncEnvCmd(a), backendCmd(a),
		versionCmd(a),
	)
	return root
}

// flagEnv maps persistent flags onto the environment keys config reads, so
// an explicit flag beats the environment.
var flagEnv = map[string]string{
	"backend":        "BOTDB_BACKEND",
	"local-dir":      "BOTDB_LOCAL_DIR",
	"log-level":      "BOTDB_LOG_LEVEL",
	"cache-max-cost": "BOTDB_CACHE_MAX_COST",
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	files, err := cmd.Flags().GetStringSlice("env-file")
	if err != nil {
		return err
	}
	if err := config.LoadFiles(files...); err != nil {
		return err
	}
	for flag, key := range flagEnv {
		if f := cmd.Flags().Lookup(flag); f != nil && f.Changed {
			if err := a.v.BindPFlag(key, f); err != nil {
				return err
			}
		}
	}
	if a.cfg, err = config.FromViper(a.v, a.environ()); err != nil {
		return err
	}

	dev, _ := cmd.Flags().GetBool("dev-log")
	if a.zl, err = zaplog.New(a.cfg.LogLevel, dev); err != nil {
		return err
	}
	a.metrics = metrics.New(nil)
	return nil
}

func (a *app) teardown(cmd *cobra.Command, _ []string) {
	if on, _ := cmd.Flags().GetBool("metrics"); on && a.metrics != nil {
		a.metrics.WritePrometheus(a.errOut)
	}
	if a.zl != nil {
		_ = a.zl.Sync()
	}
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *botdb.Store) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := selector.OpenWith(ctx, a.cfg, botdb.Options{
		Logger: zaplog.Logger{L: a.zl},
		Hooks:  a.metrics,
	})
	if err != nil {
		a.zl.Error("database initialization failed", zap.Error(err))
		return err
	}
	defer func() {
		if err := s.Close(ctx); err != nil {
			a.zl.Warn("close failed", zap.Error(err))
		}
	}()
	return fn(ctx, s)
}
