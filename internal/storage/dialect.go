package storage

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Dialect isolates what differs between the supported database engines.
type Dialect interface {
	// Name is the DATABASE_TYPE value selecting this dialect.
	Name() string

	// DriverName returns the driver name for sql.Open.
	DriverName() string

	// DSN builds the data source name from the connection settings.
	DSN(cfg Config) (string, error)

	// RewriteQuery converts ? placeholders when the driver needs another syntax.
	RewriteQuery(query string) string

	// SupportsLastInsertId reports whether sql.Result.LastInsertId works.
	SupportsLastInsertId() bool

	// ConfigureConnection applies pool settings and session options.
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir names the embedded migration set for this dialect.
	MigrationsSubdir() string
}

const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
)

// DialectFor returns the dialect registered under name. An empty name
// selects SQLite.
func DialectFor(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3", "":
		return NewSQLiteDialect(), nil
	case "postgres", "postgresql":
		return NewPostgresDialect(), nil
	case "mysql", "mariadb":
		return NewMySQLDialect(), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", name)
	}
}

var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, ...
// Queries in this package never contain a literal question mark.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
