package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationResult reports the schema version before and after Migrate.
type MigrationResult struct {
	PreVersion  uint
	PostVersion uint
}

// Migrate applies every pending migration to the database at dsn. It uses
// its own connection, closed before returning.
func Migrate(dsn string) (MigrationResult, error) {
	var result MigrationResult

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return result, fmt.Errorf("open migration database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{})
	if err != nil {
		_ = db.Close()
		return result, fmt.Errorf("create postgres driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		_ = driver.Close()
		return result, fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return result, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	result.PreVersion, err = currentVersion(m)
	if err != nil {
		return result, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return result, fmt.Errorf("run migrations: %w", err)
	}

	result.PostVersion, err = currentVersion(m)
	return result, err
}

func currentVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	if dirty {
		return v, fmt.Errorf("database is dirty at migration version %d", v)
	}
	return v, nil
}
