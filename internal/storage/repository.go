package storage

import (
	"context"
	"database/sql"
	"fmt"

	"spending/internal/core"
)

// Store is the set of operations available both on the pool and inside a
// transaction.
type Store interface {
	ListChildren(ctx context.Context) ([]core.Child, error)
	GetChild(ctx context.Context, id int64) (core.Child, error)
	GetChildByName(ctx context.Context, name string) (core.Child, error)
	CreateChild(ctx context.Context, name string) (core.Child, error)

	ListExpensesByChild(ctx context.Context, childID int64) ([]core.Expense, error)
	GetExpense(ctx context.Context, id int64) (core.Expense, error)
	InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) error
	DeleteExpense(ctx context.Context, id int64) error
}

var _ Store = (*Queries)(nil)

// Repository is the expense store backed by one of the SQL dialects.
type Repository struct {
	*Queries
	db *DB
}

// Open connects to the configured database and applies pending migrations.
func Open(ctx context.Context, cfg Config) (*Repository, error) {
	db, err := OpenDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if _, err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return NewRepository(db), nil
}

func NewRepository(db *DB) *Repository {
	return &Repository{
		Queries: New(db.DB, db.Dialect),
		db:      db,
	}
}

// InTx runs fn inside a transaction. The transaction commits only when fn
// returns nil; any error rolls every statement back.
func (r *Repository) InTx(ctx context.Context, fn func(Store) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	if err := fn(r.Queries.WithTx(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && rbErr != sql.ErrTxDone {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Dialect returns the name of the active dialect.
func (r *Repository) Dialect() string {
	return r.db.Dialect.Name()
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
