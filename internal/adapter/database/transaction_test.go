package database

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	return New(sqlDB, DialectPostgres), mock
}

func TestWithinTransaction(t *testing.T) {
	db, mock := newMockDB(t)
	tm := NewTransactionManager(db)

	t.Run("commits when fn succeeds", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE todos`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			tx, ok := TxFromContext(ctx)
			require.True(t, ok)
			assert.Equal(t, tx, db.Executor(ctx))

			_, err := db.Executor(ctx).ExecContext(ctx, "UPDATE todos SET status = $1", "completed")
			return err
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and returns the fn error", func(t *testing.T) {
		failure := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return failure
		})

		assert.ErrorIs(t, err, failure)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back and re-panics", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "kaboom", func() {
			_ = tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
				panic("kaboom")
			})
		})

		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit()

		err := tm.WithinTransaction(context.Background(), func(outer context.Context) error {
			outerTx, _ := TxFromContext(outer)

			return tm.WithinTransaction(outer, func(inner context.Context) error {
				innerTx, ok := TxFromContext(inner)
				require.True(t, ok)
				assert.Same(t, outerTx, innerTx)
				return nil
			})
		})

		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		mock.ExpectBegin().WillReturnError(assert.AnError)

		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			t.Fatal("fn must not run")
			return nil
		})

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to begin transaction")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("commit failure", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(assert.AnError)

		err := tm.WithinTransaction(context.Background(), func(ctx context.Context) error {
			return nil
		})

		assert.ErrorIs(t, err, assert.AnError)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestExecutor_WithoutTransactionUsesPool(t *testing.T) {
	db, _ := newMockDB(t)

	_, ok := TxFromContext(context.Background())

	assert.False(t, ok)
	assert.Equal(t, db.DB, db.Executor(context.Background()))
}

func TestNew_PlaceholderFormat(t *testing.T) {
	db, _ := newMockDB(t)

	query, _, err := db.QueryBuilder.Select("id").From("todos").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM todos WHERE id = $1", query)

	sqlite := New(db.DB.DB, DialectSQLite)
	query, _, err = sqlite.QueryBuilder.Select("id").From("todos").Where("id = ?", 1).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM todos WHERE id = ?", query)
}
