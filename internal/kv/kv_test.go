package kv

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	d, err := sql.Open("sqlite", "file::memory:?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=on")
	require.NoError(t, err)

	// Create the partitions table manually for test
	_, err = d.Exec(`
		CREATE TABLE IF NOT EXISTS partitions (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
		);
		DELETE FROM partitions;
	`)
	require.NoError(t, err)

	t.Cleanup(func() { assert.NoError(t, d.Close()) })
	return d
}

func TestSQLiteStoreGetMissing(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	value, ok, err := s.Get(ctx, "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}

func TestSQLiteStoreSetGet(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "trips_data", `[{"id":1}]`))

	value, ok, err := s.Get(ctx, "trips_data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, value)
}

func TestSQLiteStoreSetOverwrites(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "users_data", "[]"))
	require.NoError(t, s.Set(ctx, "users_data", `[{"id":1}]`))

	value, ok, err := s.Get(ctx, "users_data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"id":1}]`, value)
}

func TestSQLiteStoreEmptyValueIsNotAbsent(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "session_data", ""))

	value, ok, err := s.Get(ctx, "session_data")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, value)
}

func TestSQLiteStoreDelete(t *testing.T) {
	s := NewSQLiteStore(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "destinations_data", "[]"))
	require.NoError(t, s.Delete(ctx, "destinations_data"))

	_, ok, err := s.Get(ctx, "destinations_data")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent key is not an error
	assert.NoError(t, s.Delete(ctx, "destinations_data"))
}
