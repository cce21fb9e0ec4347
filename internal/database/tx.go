package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Executor is satisfied by both *sql.DB and *sql.Tx
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type txKey struct{}

// Conn returns the transaction carried by ctx, or db when there is none
func Conn(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db
}

// InTx reports whether ctx carries a transaction
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*sql.Tx)
	return ok
}

// Transactor scopes a unit of work to a single transaction
type Transactor interface {
	// WithinTx runs fn in a read-write transaction committed when fn returns nil
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinReadOnlyTx runs fn in a read-only transaction
	WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error
	// WithinSupportsTx joins the transaction in ctx if any, otherwise runs fn
	// without one
	WithinSupportsTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type transactor struct {
	db *sql.DB
}

// NewTransactor creates a Transactor over db
func NewTransactor(db *sql.DB) Transactor {
	return &transactor{db: db}
}

func (t *transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, &sql.TxOptions{}, fn)
}

func (t *transactor) WithinReadOnlyTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return t.run(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (t *transactor) WithinSupportsTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// run joins an enclosing transaction when there is one, so nested units of
// work commit or roll back with their outermost scope.
func (t *transactor) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	if InTx(ctx) {
		return fn(ctx)
	}

	tx, err := t.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				err = errors.Join(err, fmt.Errorf("failed to roll back transaction: %w", rbErr))
			}
			return
		}
		if cErr := tx.Commit(); cErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()

	return fn(context.WithValue(ctx, txKey{}, tx))
}
