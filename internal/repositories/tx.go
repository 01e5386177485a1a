package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type txKey struct{}

// querier is the subset of *sql.DB and *sql.Tx used by repositories.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TxManager runs a function inside one database transaction. The transaction
// travels in the context; nested Exec calls join the outer one.
type TxManager struct {
	DB *sql.DB
}

func (m *TxManager) Exec(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if inTx(ctx) {
		return fn(ctx)
	}

	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("commit tx: %w", cerr)
		}
	}()

	return fn(withQuerier(ctx, tx))
}

func withQuerier(ctx context.Context, q querier) context.Context {
	return context.WithValue(ctx, txKey{}, q)
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(querier)
	return ok
}

func conn(ctx context.Context, db *sql.DB) querier {
	if q, ok := ctx.Value(txKey{}).(querier); ok {
		return q
	}
	return db
}

// lockClause returns FOR UPDATE when the query runs inside a transaction.
func lockClause(ctx context.Context) string {
	if inTx(ctx) {
		return " FOR UPDATE"
	}
	return ""
}
