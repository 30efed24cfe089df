package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	for _, table := range []string{"refresh_log", "snapshot_cache"} {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}

	// A second run against an existing schema is a no-op.
	require.NoError(t, db.RunMigrations())
}

// TestRefreshLogOutcomeConstraint verifies unknown outcomes are rejected
func TestRefreshLogOutcomeConstraint(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	_, err := db.ExecContext(ctx,
		`INSERT INTO refresh_log (id, seq, endpoint, outcome) VALUES (?, ?, ?, ?)`,
		"e1", 1, "http://localhost:5000/api/latest", "applied")
	require.NoError(t, err)

	_, err = db.ExecContext(ctx,
		`INSERT INTO refresh_log (id, seq, endpoint, outcome) VALUES (?, ?, ?, ?)`,
		"e2", 2, "http://localhost:5000/api/latest", "exploded")
	require.Error(t, err, "should fail with invalid outcome")
}
