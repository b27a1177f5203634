package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priorcoder/institute-manager/pkg/config"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewSQLite(config.DatabaseConfig{Path: filepath.Join(t.TempDir(), "institute.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLiteCreatesSchema(t *testing.T) {
	store := openTestStore(t)

	var tables []string
	require.NoError(t, store.DB.Select(&tables, "SELECT name FROM sqlite_master WHERE type='table' ORDER BY name"))
	assert.Subset(t, tables, []string{"courses", "students", "enrollments", "payments"})
}

func TestSnapshotProducesValidDatabase(t *testing.T) {
	store := openTestStore(t)
	_, err := store.DB.Exec("INSERT INTO courses (name, fee, duration) VALUES ('Python Basics', 15000, 6)")
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, store.Snapshot(context.Background(), dest))

	require.NoError(t, Validate(dest))

	restored, err := NewSQLite(config.DatabaseConfig{Path: dest})
	require.NoError(t, err)
	defer restored.Close() //nolint:errcheck

	var count int
	require.NoError(t, restored.DB.Get(&count, "SELECT COUNT(*) FROM courses"))
	assert.Equal(t, 1, count)
}

func TestValidateRejectsNonDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "garbage.db")
	require.NoError(t, os.WriteFile(path, []byte("this is not a sqlite file at all"), 0o644))

	assert.Error(t, Validate(path))
}
