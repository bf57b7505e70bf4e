package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Config selects and locates the database.
type Config struct {
	// Type is the dialect name: sqlite (default), postgres or mysql.
	Type string
	// URL is the connection string for postgres and mysql.
	URL string
	// Path is the SQLite database file, or ":memory:".
	Path string
}

// DB wraps the connection pool with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
	dsn     string
}

// OpenDB opens and configures the connection pool described by cfg.
func OpenDB(ctx context.Context, cfg Config) (*DB, error) {
	dialect, err := DialectFor(cfg.Type)
	if err != nil {
		return nil, err
	}
	if dialect.Name() == DialectSQLite && isMemoryPath(cfg.Path) {
		dialect = &memorySQLiteDialect{}
	}

	dsn, err := dialect.DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(dialect.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", dialect.Name(), err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := dialect.ConfigureConnection(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure connection: %w", err)
	}

	return &DB{DB: db, Dialect: dialect, dsn: dsn}, nil
}

func (db *DB) inMemory() bool {
	_, ok := db.Dialect.(*memorySQLiteDialect)
	return ok
}

// execReturningID runs an INSERT through q and returns the new row's id.
func execReturningID(ctx context.Context, q DBTX, dialect Dialect, query string, args ...any) (int64, error) {
	query = dialect.RewriteQuery(query)

	if dialect.SupportsLastInsertId() {
		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	query = strings.TrimSuffix(strings.TrimSpace(query), ";") + " RETURNING id"

	var id int64
	if err := q.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}
