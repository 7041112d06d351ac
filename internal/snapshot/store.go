// Package snapshot persists field-plane captures from a running simulation
// into sqlite, so long runs can be inspected and plotted after the fact.
package snapshot

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

type Store struct {
	*sql.DB
}

// Open opens (or creates) a snapshot database. The base schema is applied
// inline, then any pending embedded migrations are run on top of it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Sqlite is single-writer, and an in-memory database is scoped to one
	// connection; a second pooled connection would see an empty schema.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			run_id            TEXT PRIMARY KEY,
			model_name        TEXT,
			steps             BIGINT,
			dt                DOUBLE,
			started_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE IF NOT EXISTS plane_snapshots (
			snapshot_id       INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT,
			grid_name         TEXT,
			step              BIGINT,
			component         TEXT,
			normal_axis       TEXT,
			plane_index       BIGINT,
			n1                BIGINT,
			n2                BIGINT,
			field_blob        BLOB,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
		CREATE INDEX IF NOT EXISTS idx_plane_snapshots_run_step
			ON plane_snapshots(run_id, step);
		CREATE TABLE IF NOT EXISTS receiver_traces (
			trace_id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT,
			receiver_name     TEXT,
			grid_name         TEXT,
			component         TEXT,
			samples_blob      BLOB,
			created_at        TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(run_id) REFERENCES runs(run_id)
		);
	`)
	if err != nil {
		db.Close()
		return nil, err
	}

	s := &Store{db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// MigrateUp runs all pending embedded migrations up to the latest version.
func (s *Store) MigrateUp() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	// Not closed: closing the migrate instance would close the shared DB
	// connection.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// MigrateDown rolls back the most recent migration.
func (s *Store) MigrateDown() error {
	m, err := s.newMigrate()
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration down failed: %w", err)
	}
	return nil
}

// MigrateVersion returns the current migration version and dirty state.
// Returns 0, false, nil when no migrations have been applied yet.
func (s *Store) MigrateVersion() (version uint, dirty bool, err error) {
	m, err := s.newMigrate()
	if err != nil {
		return 0, false, err
	}
	version, dirty, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (s *Store) newMigrate() (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(s.DB, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}
