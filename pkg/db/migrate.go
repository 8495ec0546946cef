package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

const (
	// TargetSchemaVersion is the highest schema version this build understands.
	TargetSchemaVersion int64 = 1
	// KVStoreComponent names the key-value table component in nin_versions.
	KVStoreComponent = "kvstore"
)

const (
	selectVersionStatement = `SELECT version FROM nin_versions WHERE component = ?;`

	upsertVersionStatement = `
INSERT INTO nin_versions (component, version) VALUES (?, ?)
ON CONFLICT(component) DO UPDATE SET version = excluded.version, created_at = unixepoch();`
)

// SchemaVersion returns the recorded version of component, or 0 when the
// component or the versions table itself does not exist yet.
func SchemaVersion(conn *sql.DB, component string) (int64, error) {
	var version int64
	err := conn.QueryRow(selectVersionStatement, component).Scan(&version)
	switch {
	case err == nil:
		return version, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, nil
	case strings.Contains(err.Error(), "no such table"):
		return 0, nil
	default:
		return 0, fmt.Errorf("failed to scan version for component '%s': %w", component, err)
	}
}

// Initialize creates the tables and records version for the kvstore component.
func Initialize(conn *sql.DB, version int64, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	if _, err := conn.Exec(SchemaV1); err != nil {
		return fmt.Errorf("failed to execute schema v1 SQL: %w", err)
	}
	if _, err := conn.Exec(upsertVersionStatement, KVStoreComponent, version); err != nil {
		return fmt.Errorf("failed to record version %d for component %s: %w", version, KVStoreComponent, err)
	}

	log.Info("schema initialized",
		zap.String("component", KVStoreComponent),
		zap.Int64("version", version))
	return nil
}

// Upgrade brings the kvstore component of conn to target. A fresh database is
// initialized; any other mismatch is reported, as there are no migrations yet.
// name only identifies the database in messages.
func Upgrade(conn *sql.DB, name string, target int64, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	current, err := SchemaVersion(conn, KVStoreComponent)
	if err != nil {
		return err
	}

	switch {
	case current == 0:
		log.Info("initializing schema",
			zap.String("db", name),
			zap.Int64("target_version", target))
		if err := Initialize(conn, target, log); err != nil {
			return fmt.Errorf("failed to initialize component %s in database '%s': %w", KVStoreComponent, name, err)
		}
		return nil
	case current == target:
		log.Debug("schema up to date", zap.String("db", name), zap.Int64("version", current))
		return nil
	case current < target:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is older than application's target schema version %d. Automatic migration from this older version is not yet supported", KVStoreComponent, name, current, target)
	default:
		return fmt.Errorf("component %s in database '%s' has schema version %d, which is newer than application's target schema version %d. Please upgrade the application", KVStoreComponent, name, current, target)
	}
}
