package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T, name string, profile DatabaseProfile) *DB {
	t.Helper()
	db, err := New(Config{
		Path:    filepath.Join(t.TempDir(), "nested", name+".db"),
		Profile: profile,
		Name:    name,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestBuildConnectionString(t *testing.T) {
	tests := []struct {
		name     string
		profile  DatabaseProfile
		contains []string
	}{
		{
			name:     "cache",
			profile:  ProfileCache,
			contains: []string{"journal_mode(WAL)", "synchronous(OFF)", "auto_vacuum(FULL)", "busy_timeout(5000)"},
		},
		{
			name:     "standard",
			profile:  ProfileStandard,
			contains: []string{"journal_mode(WAL)", "synchronous(NORMAL)", "auto_vacuum(INCREMENTAL)", "busy_timeout(5000)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connStr := buildConnectionString("/tmp/x.db", tt.profile)
			for _, want := range tt.contains {
				assert.Contains(t, connStr, want)
			}
		})
	}
}

func TestNew_DefaultsAndAccessors(t *testing.T) {
	db, err := New(Config{Path: filepath.Join(t.TempDir(), "plain.db"), Name: "plain"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, ProfileStandard, db.Profile())
	assert.Equal(t, "plain", db.Name())
	assert.True(t, filepath.IsAbs(db.Path()))
	assert.NoError(t, db.QuickCheck(context.Background()))
}

func TestMigrate_AlertsSchema(t *testing.T) {
	db := newTestDB(t, "alerts", ProfileCache)
	require.NoError(t, db.Migrate())
	// idempotent
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	_, err := db.ExecContext(ctx,
		`INSERT INTO dedup_markers (namespace, key, payload, expires_at) VALUES (?, ?, ?, ?)`,
		"opening", "LONDON", []byte{0x01}, 100)
	require.NoError(t, err)

	var expires int64
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT expires_at FROM dedup_markers WHERE namespace = ? AND key = ?`, "opening", "LONDON").Scan(&expires))
	assert.Equal(t, int64(100), expires)
}

func TestMigrate_UnknownSchemaIsNoop(t *testing.T) {
	db := newTestDB(t, "scratch", ProfileStandard)
	require.NoError(t, db.Migrate())

	var tables int
	require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table'`).Scan(&tables))
	assert.Equal(t, 0, tables)
}

func TestWithTransaction(t *testing.T) {
	db := newTestDB(t, "alerts", ProfileCache)
	require.NoError(t, db.Migrate())

	count := func() int {
		var n int
		require.NoError(t, db.Conn().QueryRow(`SELECT COUNT(*) FROM dedup_markers`).Scan(&n))
		return n
	}

	insert := func(tx *sql.Tx, key string) error {
		_, err := tx.Exec(`INSERT INTO dedup_markers (namespace, key, payload, expires_at) VALUES ('closing', ?, x'00', 1)`, key)
		return err
	}

	err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		return insert(tx, "TOKYO")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count())

	boom := errors.New("boom")
	err = WithTransaction(db.Conn(), func(tx *sql.Tx) error {
		require.NoError(t, insert(tx, "SYDNEY"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, count())

	assert.Error(t, WithTransaction(nil, func(tx *sql.Tx) error { return nil }))
}

func TestWALCheckpointAndStats(t *testing.T) {
	db := newTestDB(t, "alerts", ProfileCache)
	require.NoError(t, db.Migrate())

	require.NoError(t, db.WALCheckpoint("PASSIVE"))
	require.NoError(t, db.WALCheckpoint("TRUNCATE"))

	stats, err := db.GetStats()
	require.NoError(t, err)
	assert.Greater(t, stats.PageCount, int64(0))
	assert.Greater(t, stats.PageSize, int64(0))
	assert.Greater(t, stats.SizeBytes, int64(0))
}
