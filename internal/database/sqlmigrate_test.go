package database

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
)

func TestSQLMigratorFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"0002_products.sql", "0001_init.sql", "0001_init_rollback.sql", "README.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o600))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "archive.sql"), 0o700))

	m := NewSQLMigrator(nil, dir, logger.Nop())
	files, err := m.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_init.sql", "0002_products.sql"}, files)
}

func TestSQLMigratorShippedMigrations(t *testing.T) {
	m := NewSQLMigrator(nil, filepath.Join("..", "..", "migrations"), logger.Nop())
	files, err := m.Files()
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, f := range files {
		_, err := os.Stat(filepath.Join("..", "..", "migrations", f[:len(f)-len(".sql")]+rollbackSuffix))
		assert.NoError(t, err, "missing rollback for %s", f)
	}
}

func TestMigrationVersion(t *testing.T) {
	assert.Equal(t, "0001", MigrationVersion("0001_init.sql"))
	assert.Equal(t, "0003", MigrationVersion("0003.sql"))
}
