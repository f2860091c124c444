package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/logger"
)

const rollbackSuffix = "_rollback.sql"

// SQLMigrator applies versioned SQL files (VERSION_name.sql) in order and
// records them in schema_migrations. VERSION_name_rollback.sql undoes one.
type SQLMigrator struct {
	db  *sql.DB
	dir string
	log *logger.Logger
}

func NewSQLMigrator(db *sql.DB, dir string, log *logger.Logger) *SQLMigrator {
	return &SQLMigrator{db: db, dir: dir, log: log}
}

// Files lists forward migrations sorted by name.
func (m *SQLMigrator) Files() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".sql" || strings.HasSuffix(name, rollbackSuffix) {
			continue
		}
		files = append(files, name)
	}
	sort.Strings(files)
	return files, nil
}

// MigrationVersion is the part of a file name before the first underscore.
func MigrationVersion(file string) string {
	version, _, _ := strings.Cut(file, "_")
	return strings.TrimSuffix(version, ".sql")
}

func (m *SQLMigrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	return err
}

// Up applies every migration not yet recorded and returns their names.
func (m *SQLMigrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	files, err := m.Files()
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, file := range files {
		version := MigrationVersion(file)
		var exists bool
		if err := m.db.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", version).Scan(&exists); err != nil {
			return applied, fmt.Errorf("failed to check migration status: %w", err)
		}
		if exists {
			m.log.Debug("migration already applied", "file", file)
			continue
		}

		content, err := os.ReadFile(filepath.Join(m.dir, file))
		if err != nil {
			return applied, fmt.Errorf("failed to read migration %s: %w", file, err)
		}
		err = m.inTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, string(content)); err != nil {
				return fmt.Errorf("failed to apply migration %s: %w", file, err)
			}
			_, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", version, file)
			return err
		})
		if err != nil {
			return applied, err
		}
		m.log.Info("migration applied", "file", file)
		applied = append(applied, file)
	}
	return applied, nil
}

// Rollback undoes the most recently applied migration and returns its name.
func (m *SQLMigrator) Rollback(ctx context.Context) (string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return "", fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	var version, name string
	err := m.db.QueryRowContext(ctx, "SELECT version, name FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1").Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errors.New("no migrations to rollback")
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	path := filepath.Join(m.dir, strings.TrimSuffix(name, ".sql")+rollbackSuffix)
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read rollback file: %w", err)
	}
	err = m.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("failed to execute rollback: %w", err)
		}
		_, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version)
		return err
	})
	if err != nil {
		return "", err
	}
	m.log.Info("migration rolled back", "file", name)
	return name, nil
}

func (m *SQLMigrator) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
