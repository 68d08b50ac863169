package database

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// DB bundles the connection pool with a query builder using the dialect's
// placeholder format.
type DB struct {
	*sqlx.DB
	QueryBuilder sq.StatementBuilderType
	Dialect      Dialect
}

func New(db *sql.DB, dialect Dialect) *DB {
	placeholder := sq.PlaceholderFormat(sq.Question)
	driverName := "sqlite3"

	if dialect == DialectPostgres {
		placeholder = sq.Dollar
		driverName = "pgx"
	}

	return &DB{
		DB:           sqlx.NewDb(db, driverName),
		QueryBuilder: sq.StatementBuilder.PlaceholderFormat(placeholder),
		Dialect:      dialect,
	}
}

type txKey struct{}

// Executor returns the transaction bound to ctx, or the pool when there is none.
func (db *DB) Executor(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}

	return db.DB
}

func WithTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFromContext(ctx context.Context) (*sqlx.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx, ok
}
