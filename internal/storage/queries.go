package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"spending/internal/core"
)

// DBTX is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the store's statements against a pool or a transaction.
// Statements are written with ? placeholders and rewritten per dialect.
type Queries struct {
	db      DBTX
	dialect Dialect
}

func New(db DBTX, dialect Dialect) *Queries {
	return &Queries{db: db, dialect: dialect}
}

// WithTx returns a query set bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx, dialect: q.dialect}
}

func (q *Queries) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return q.db.ExecContext(ctx, q.dialect.RewriteQuery(query), args...)
}

func (q *Queries) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return q.db.QueryContext(ctx, q.dialect.RewriteQuery(query), args...)
}

func (q *Queries) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return q.db.QueryRowContext(ctx, q.dialect.RewriteQuery(query), args...)
}

const listChildren = `-- name: ListChildren :many
SELECT id, name FROM children ORDER BY id`

func (q *Queries) ListChildren(ctx context.Context) ([]core.Child, error) {
	rows, err := q.query(ctx, listChildren)
	if err != nil {
		return nil, fmt.Errorf("list children: %w", err)
	}
	defer rows.Close()

	children := []core.Child{}
	for rows.Next() {
		var c core.Child
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate children: %w", err)
	}
	return children, nil
}

const getChild = `-- name: GetChild :one
SELECT id, name FROM children WHERE id = ?`

func (q *Queries) GetChild(ctx context.Context, id int64) (core.Child, error) {
	var c core.Child
	err := q.queryRow(ctx, getChild, id).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Child{}, fmt.Errorf("get child %d: %w", id, core.ErrChildNotFound)
	}
	if err != nil {
		return core.Child{}, fmt.Errorf("get child %d: %w", id, err)
	}
	return c, nil
}

const getChildByName = `-- name: GetChildByName :one
SELECT id, name FROM children WHERE name = ?`

func (q *Queries) GetChildByName(ctx context.Context, name string) (core.Child, error) {
	var c core.Child
	err := q.queryRow(ctx, getChildByName, name).Scan(&c.ID, &c.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Child{}, fmt.Errorf("get child %q: %w", name, core.ErrChildNotFound)
	}
	if err != nil {
		return core.Child{}, fmt.Errorf("get child %q: %w", name, err)
	}
	return c, nil
}

const createChild = `-- name: CreateChild :exec
INSERT INTO children (name) VALUES (?)`

func (q *Queries) CreateChild(ctx context.Context, name string) (core.Child, error) {
	id, err := execReturningID(ctx, q.db, q.dialect, createChild, name)
	if err != nil {
		return core.Child{}, fmt.Errorf("create child %q: %w", name, err)
	}
	return core.Child{ID: id, Name: name}, nil
}

const expenseColumns = `id, amount, description, category, currency, date, child_id`

const listExpensesByChild = `-- name: ListExpensesByChild :many
SELECT ` + expenseColumns + ` FROM expenses WHERE child_id = ? ORDER BY date DESC, id DESC`

// ListExpensesByChild returns the child's expenses, newest first.
func (q *Queries) ListExpensesByChild(ctx context.Context, childID int64) ([]core.Expense, error) {
	rows, err := q.query(ctx, listExpensesByChild, childID)
	if err != nil {
		return nil, fmt.Errorf("list expenses of child %d: %w", childID, err)
	}
	defer rows.Close()

	expenses := []core.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate expenses: %w", err)
	}
	return expenses, nil
}

const getExpense = `-- name: GetExpense :one
SELECT ` + expenseColumns + ` FROM expenses WHERE id = ?`

func (q *Queries) GetExpense(ctx context.Context, id int64) (core.Expense, error) {
	e, err := scanExpense(q.queryRow(ctx, getExpense, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, core.ErrExpenseNotFound)
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", id, err)
	}
	return e, nil
}

const insertExpense = `-- name: InsertExpense :exec
INSERT INTO expenses (amount, description, category, currency, date, child_id)
VALUES (?, ?, ?, ?, ?, ?)`

// InsertExpense stores e and returns it with its new id.
func (q *Queries) InsertExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	id, err := execReturningID(ctx, q.db, q.dialect, insertExpense,
		e.Amount, e.Description, string(e.Category), e.Currency, e.Date.Time, e.ChildID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("insert expense: %w", err)
	}
	e.ID = id
	return e, nil
}

const updateExpense = `-- name: UpdateExpense :exec
UPDATE expenses
SET amount = ?, description = ?, category = ?, currency = ?, date = ?, child_id = ?
WHERE id = ?`

// UpdateExpense overwrites every column of the row identified by e.ID.
func (q *Queries) UpdateExpense(ctx context.Context, e core.Expense) error {
	result, err := q.exec(ctx, updateExpense,
		e.Amount, e.Description, string(e.Category), e.Currency, e.Date.Time, e.ChildID, e.ID)
	if err != nil {
		return fmt.Errorf("update expense %d: %w", e.ID, err)
	}
	return expectAffected(result, fmt.Sprintf("update expense %d", e.ID))
}

const deleteExpense = `-- name: DeleteExpense :exec
DELETE FROM expenses WHERE id = ?`

func (q *Queries) DeleteExpense(ctx context.Context, id int64) error {
	result, err := q.exec(ctx, deleteExpense, id)
	if err != nil {
		return fmt.Errorf("delete expense %d: %w", id, err)
	}
	return expectAffected(result, fmt.Sprintf("delete expense %d", id))
}

func expectAffected(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, core.ErrExpenseNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e        core.Expense
		category string
		date     time.Time
	)
	if err := row.Scan(&e.ID, &e.Amount, &e.Description, &category, &e.Currency, &date, &e.ChildID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Expense{}, err
		}
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.Category = core.Category(category)
	e.Date = core.FromStored(date)
	return e, nil
}
