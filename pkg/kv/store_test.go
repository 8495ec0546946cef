package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgdb "github.com/unowned-ai/nin/pkg/db"
)

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := s.Get(ctx, "folders")
	require.NoError(t, err)
	assert.False(t, ok, "absent key must report ok=false")

	require.NoError(t, s.Set(ctx, "folders", `[{"title":"Geral"}]`))
	v, ok, err := s.Get(ctx, "folders")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"title":"Geral"}]`, v)

	require.NoError(t, s.Set(ctx, "folders", `[]`))
	v, _, err = s.Get(ctx, "folders")
	require.NoError(t, err)
	assert.Equal(t, `[]`, v, "set must overwrite")

	require.NoError(t, s.Set(ctx, "Geral_notes", `[]`))
	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Geral_notes", "folders"}, keys)

	require.NoError(t, s.Delete(ctx, "Geral_notes"))
	_, ok, err = s.Get(ctx, "Geral_notes")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Delete(ctx, "never-set"), "deleting a missing key is not an error")
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	exerciseStore(t, s)
}

func TestMemoryStore_CancelledContext(t *testing.T) {
	s := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "folders")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Set(ctx, "folders", "[]"), context.Canceled)
}

func TestSQLiteStore(t *testing.T) {
	s, err := OpenSQLite(pkgdb.Options{Path: ":memory:"}, nil)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s)
}

func TestSQLiteStore_ClosedDatabase(t *testing.T) {
	s, err := OpenSQLite(pkgdb.Options{Path: ":memory:"}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, _, err = s.Get(context.Background(), "folders")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `get "folders"`)
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Options{Driver: DriverMemory}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = Open(ctx, Options{SQLite: pkgdb.Options{Path: ":memory:"}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &SQLiteStore{}, s)
	require.NoError(t, s.Close())

	_, err = Open(ctx, Options{Driver: "redis"}, nil)
	assert.EqualError(t, err, `unknown store driver "redis"`)

	_, err = Open(ctx, Options{Driver: DriverPostgres}, nil)
	assert.EqualError(t, err, "postgres store requires a DSN")

	_, err = Open(ctx, Options{Driver: DriverMongo}, nil)
	assert.EqualError(t, err, "mongo store requires a URI")
}
