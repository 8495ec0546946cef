package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// syncModes lists the allowed values for the synchronous pragma.
var syncModes = map[string]bool{
	"OFF":    true,
	"NORMAL": true,
	"FULL":   true,
	"EXTRA":  true,
}

// Options controls how the SQLite file backing the key-value store is opened.
type Options struct {
	// Path is the file path or DSN, ":memory:" for a throwaway database.
	Path string
	// WAL switches journal_mode to WAL.
	WAL bool
	// Sync is the synchronous pragma (OFF, NORMAL, FULL, EXTRA). Empty keeps the driver default.
	Sync string
}

// dsn appends the pragma parameters understood by go-sqlite3 to the base path.
func (o Options) dsn() (string, error) {
	params := url.Values{}
	if o.WAL {
		params.Add("_journal_mode", "WAL")
	}
	if o.Sync != "" {
		mode := strings.ToUpper(o.Sync)
		if !syncModes[mode] {
			return "", fmt.Errorf("invalid sync pragma value: %s. Must be one of OFF, NORMAL, FULL, EXTRA", o.Sync)
		}
		params.Add("_synchronous", mode)
	}
	if len(params) == 0 {
		return o.Path, nil
	}
	sep := "?"
	if strings.Contains(o.Path, "?") {
		sep = "&"
	}
	return o.Path + sep + params.Encode(), nil
}

// Open opens and pings the SQLite database described by opts.
func Open(opts Options) (*sql.DB, error) {
	dsn, err := opts.dsn()
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database with DSN '%s': %w", dsn, err)
	}

	// An in-memory database lives and dies with its connection.
	if opts.Path == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err = conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database with DSN '%s': %w", dsn, err)
	}

	return conn, nil
}
