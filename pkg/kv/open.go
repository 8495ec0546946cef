package kv

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgdb "github.com/unowned-ai/nin/pkg/db"
)

// Supported values for Options.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
	DriverMemory   = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Driver        string
	SQLite        pkgdb.Options
	PostgresDSN   string
	MongoURI      string
	MongoDatabase string
}

// Open returns the Store for opts.Driver. An empty driver means SQLite.
func Open(ctx context.Context, opts Options, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	switch strings.ToLower(opts.Driver) {
	case "", DriverSQLite:
		if opts.SQLite.Path == "" {
			return nil, fmt.Errorf("sqlite store requires a database path")
		}
		log.Debug("opening sqlite store", zap.String("path", opts.SQLite.Path), zap.Bool("wal", opts.SQLite.WAL))
		return OpenSQLite(opts.SQLite, log)
	case DriverPostgres:
		if opts.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres store requires a DSN")
		}
		log.Debug("opening postgres store")
		return OpenPostgres(ctx, opts.PostgresDSN)
	case DriverMongo:
		if opts.MongoURI == "" {
			return nil, fmt.Errorf("mongo store requires a URI")
		}
		db := opts.MongoDatabase
		if db == "" {
			db = "nin"
		}
		log.Debug("opening mongo store", zap.String("database", db))
		return OpenMongo(ctx, opts.MongoURI, db)
	case DriverMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.Driver)
	}
}
