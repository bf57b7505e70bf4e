package storage

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations
var migrationsFS embed.FS

// RunMigrations applies every pending migration of the dialect's set and
// returns the resulting schema version.
func RunMigrations(ctx context.Context, db *DB) (uint, error) {
	// The migrate driver closes the pool it is given, so it gets its own
	// unless the database only exists inside the shared pool.
	conn := db.DB
	if !db.inMemory() {
		migrateDB, err := sql.Open(db.Dialect.DriverName(), db.dsn)
		if err != nil {
			return 0, fmt.Errorf("open migration database: %w", err)
		}
		defer migrateDB.Close()
		conn = migrateDB
	}

	driver, err := migrationDriver(db.Dialect, conn)
	if err != nil {
		return 0, fmt.Errorf("create %s migration driver: %w", db.Dialect.Name(), err)
	}

	src, err := iofs.New(migrationsFS, "migrations/"+db.Dialect.MigrationsSubdir())
	if err != nil {
		return 0, fmt.Errorf("create iofs source: %w", err)
	}
	defer src.Close()

	m, err := migrate.NewWithInstance("iofs", src, db.Dialect.Name(), driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	if !db.inMemory() {
		defer m.Close()
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			m.GracefulStop <- true
		case <-done:
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("run migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read migration version: %w", err)
	}
	return version, nil
}

func migrationDriver(dialect Dialect, conn *sql.DB) (database.Driver, error) {
	switch dialect.Name() {
	case DialectPostgres:
		return postgres.WithInstance(conn, &postgres.Config{})
	case DialectMySQL:
		return migratemysql.WithInstance(conn, &migratemysql.Config{})
	default:
		return sqlite.WithInstance(conn, &sqlite.Config{})
	}
}
