package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/unowned-ai/nin/pkg/config"
	pkgdb "github.com/unowned-ai/nin/pkg/db"
	"github.com/unowned-ai/nin/pkg/kv"
	"github.com/unowned-ai/nin/pkg/logging"
	"github.com/unowned-ai/nin/pkg/notepad"
	"github.com/unowned-ai/nin/pkg/notify"
	"github.com/unowned-ai/nin/pkg/utils"
)

// flagKeys maps command-line flags onto config keys. Only flags the user
// actually set override the file and the environment.
var flagKeys = map[string]string{
	"store":      "store.driver",
	"dbpath":     "store.path",
	"wal":        "store.wal",
	"sync":       "store.sync",
	"log-level":  "log.level",
	"log-format": "log.format",
	"permission": "reminders.permission",
	"timezone":   "reminders.timezone",
	"interval":   "reminders.poll_interval",
}

type rootOptions struct {
	configPath string
}

func (o *rootOptions) overrides(cmd *cobra.Command) map[string]any {
	out := map[string]any{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if key, ok := flagKeys[f.Name]; ok {
			out[key] = f.Value.String()
		}
	})
	return out
}

// load reads the configuration and builds the logger, which writes to stderr.
func (o *rootOptions) load(cmd *cobra.Command) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(config.Options{Path: o.configPath, Overrides: o.overrides(cmd)})
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func sqlitePath(cfg *config.Config) (string, error) {
	return utils.ResolveAndEnsureDBPath(cfg.Store.Path)
}

type app struct {
	cfg      *config.Config
	log      *zap.Logger
	store    kv.Store
	notifier *notify.LocalNotifier
	svc      *notepad.Service
}

// open wires config, logging, storage, the notifier and the service, and
// makes sure the default folder exists. sink may be nil for commands that
// never deliver reminders.
func (o *rootOptions) open(cmd *cobra.Command, sink notify.Sink) (*app, error) {
	cfg, log, err := o.load(cmd)
	if err != nil {
		return nil, err
	}
	ctx := baseContext(cmd)

	storeOpts := kv.Options{
		Driver:        cfg.Store.Driver,
		PostgresDSN:   cfg.Store.PostgresDSN,
		MongoURI:      cfg.Store.MongoURI,
		MongoDatabase: cfg.Store.MongoDatabase,
	}
	if cfg.Store.Driver == kv.DriverSQLite {
		path, err := sqlitePath(cfg)
		if err != nil {
			return nil, err
		}
		storeOpts.SQLite = pkgdb.Options{Path: path, WAL: cfg.Store.WAL, Sync: cfg.Store.Sync}
	}
	store, err := kv.Open(ctx, storeOpts, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Driver, err)
	}

	loc, err := cfg.Location()
	if err != nil {
		store.Close()
		return nil, err
	}
	notifier := notify.New(store, notify.Options{
		Key:        cfg.Keys.Reminders,
		Permission: notepad.PermissionStatus(cfg.Reminders.Permission),
		Sink:       sink,
		Logger:     log,
	})
	svc := notepad.NewService(store, notepad.ServiceOptions{
		Keys: notepad.Keys{
			Folders:       cfg.Keys.Folders,
			NotesTemplate: cfg.Keys.NotesTemplate,
			TopLevelNotes: cfg.Keys.TopLevelNotes,
		},
		DefaultFolder: cfg.Folders.DefaultTitle,
		Notifier:      notifier,
		Location:      loc,
		Logger:        log,
	})

	if _, err := svc.Folders().EnsureDefault(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return &app{cfg: cfg, log: log, store: store, notifier: notifier, svc: svc}, nil
}

func (a *app) Close() error {
	err := a.store.Close()
	logging.Sync(a.log)
	return err
}

// deliverInBackground runs the reminder loop until ctx is done. wait blocks
// until the loop has returned and must be called before Close.
func (a *app) deliverInBackground(ctx context.Context) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := a.notifier.Run(ctx, a.cfg.Reminders.PollInterval); err != nil {
			a.log.Error("reminder delivery stopped", zap.Error(err))
		}
	}()
	return func() { <-done }
}

// run opens the app, calls fn and closes the app again.
func (o *rootOptions) run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	a, err := o.open(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(baseContext(cmd), a)
}
