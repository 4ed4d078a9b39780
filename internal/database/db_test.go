// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database_test

import (
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/waap/waap/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := database.Open(":memory:")

	require.NoError(t, err)
	require.NotNil(t, db)

	err = db.Close()
	require.NoError(t, err)
}

func TestOpen_CreatesDirectory(t *testing.T) {
	tmpDir := t.TempDir()
	dsn := filepath.Join(tmpDir, "nested", "waap.db")

	db, err := database.Open(dsn)

	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	_, err = os.Stat(filepath.Dir(dsn))
	assert.NoError(t, err)
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	tables := []string{"departments", "classifications", "users", "one_time_tokens", "job_postings", "contact_messages"}
	for _, table := range tables {
		var name string
		err := db.Get(&name, `SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table)
		assert.NoError(t, err, "table %s should exist", table)
	}
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var enabled int
	require.NoError(t, db.Get(&enabled, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, enabled)
}
