package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor can run queries against either a live connection or an open
	// transaction. Repositories take it as an optional trailing argument so
	// services can group several writes into one atomic unit.
	DBExecutor interface {
		sqlx.ExtContext

		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	}

	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

var (
	_ DB           = (*sqlx.DB)(nil)
	_ DBTransactor = (*sqlx.Tx)(nil)
)

// BeginTx starts a transaction when db is non-nil. Services wired with
// in-memory repositories (tests, CLI dry runs) pass a nil DB; their repos
// already apply writes atomically under a table lock.
func BeginTx(ctx context.Context, db DB) (DBTransactor, error) {
	if db == nil {
		return nil, nil
	}
	return db.BeginTxx(ctx, nil)
}

// TxExec adapts an optional transaction to the repositories' trailing
// executor argument.
func TxExec(tx DBTransactor) []DBExecutor {
	if tx == nil {
		return nil
	}
	return []DBExecutor{tx}
}

func TxCommit(tx DBTransactor) error {
	if tx == nil {
		return nil
	}
	return tx.Commit()
}

func TxRollback(tx DBTransactor) {
	if tx != nil {
		_ = tx.Rollback()
	}
}

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
