package metadata

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE metadata (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func TestSetAndGet(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "token", []byte("abc")))

	v, err := r.Get(ctx, "token")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), v)
}

func TestGet_Missing_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	v, err := r.Get(context.Background(), "absent")
	require.NoError(t, err)
	require.Nil(t, v)
}

func TestSet_Upserts(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "user", []byte("old")))
	require.NoError(t, r.Set(ctx, "user", []byte("new")))

	v, err := r.Get(ctx, "user")
	require.NoError(t, err)
	require.Equal(t, []byte("new"), v)
}

func TestDeleteListClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Set(ctx, "a", []byte{1}))
	require.NoError(t, r.Set(ctx, "b", []byte{2}))

	m, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{"a": {1}, "b": {2}}, m)

	require.NoError(t, r.Delete(ctx, "a"))
	require.NoError(t, r.Delete(ctx, "a"))

	v, err := r.Get(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, r.Clear(ctx))
	m, err = r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestWithTx_CommitsTogether(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	err := WithTx(ctx, db, func(ctx context.Context, repo Repository) error {
		if err := repo.Set(ctx, "user", []byte(`{"email":"a@b.co"}`)); err != nil {
			return err
		}
		return repo.Set(ctx, "token", []byte("t1"))
	})
	require.NoError(t, err)

	m, err := NewSQLiteRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, m, 2)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := WithTx(ctx, db, func(ctx context.Context, repo Repository) error {
		if err := repo.Set(ctx, "user", []byte("u")); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	v, err := NewSQLiteRepository(db).Get(ctx, "user")
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestErrorsAreWrapped(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	driverErr := errors.New("disk I/O error")
	mock.ExpectQuery(`SELECT value FROM metadata`).WithArgs("k").WillReturnError(driverErr)
	mock.ExpectExec(`INSERT INTO metadata`).WithArgs("k", []byte("v")).WillReturnError(driverErr)
	mock.ExpectExec(`DELETE FROM metadata WHERE key`).WithArgs("k").WillReturnError(driverErr)
	mock.ExpectExec(`DELETE FROM metadata`).WillReturnError(driverErr)
	mock.ExpectQuery(`SELECT key, value FROM metadata`).WillReturnError(driverErr)

	r := NewSQLiteRepository(db)
	ctx := context.Background()

	_, err = r.Get(ctx, "k")
	require.ErrorIs(t, err, driverErr)
	require.Contains(t, err.Error(), "failed to get metadata[k]")

	err = r.Set(ctx, "k", []byte("v"))
	require.ErrorIs(t, err, driverErr)
	require.Contains(t, err.Error(), "failed to set metadata[k]")

	err = r.Delete(ctx, "k")
	require.ErrorIs(t, err, driverErr)
	require.Contains(t, err.Error(), "failed to delete metadata[k]")

	err = r.Clear(ctx)
	require.ErrorIs(t, err, driverErr)
	require.Contains(t, err.Error(), "failed to clear metadata")

	_, err = r.List(ctx)
	require.ErrorIs(t, err, driverErr)
	require.Contains(t, err.Error(), "failed to list metadata")

	require.NoError(t, mock.ExpectationsWereMet())
}
