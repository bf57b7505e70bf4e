package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL and MariaDB.
type MySQLDialect struct{}

func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) Name() string       { return DialectMySQL }
func (d *MySQLDialect) DriverName() string { return "mysql" }

// DSN accepts either a driver DSN or a mysql:// URL and forces the options
// the query layer relies on: DATETIME scanned into time.Time in UTC,
// multi-statement migration files, and affected-row counts that include
// rows matched without changes.
func (d *MySQLDialect) DSN(cfg Config) (string, error) {
	if cfg.URL == "" {
		return "", fmt.Errorf("mysql requires DATABASE_URL")
	}
	parsed, err := mysql.ParseDSN(strings.TrimPrefix(cfg.URL, "mysql://"))
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	parsed.ParseTime = true
	parsed.Loc = time.UTC
	parsed.MultiStatements = true
	parsed.ClientFoundRows = true
	return parsed.FormatDSN(), nil
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)
	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}
