package recordstore

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPostgresMock(t *testing.T) (*PostgresBackend, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresBackend(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestPostgresBackendLoad(t *testing.T) {
	backend, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE key = $1")).
		WithArgs("classtrack:attendance").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}).AddRow([]byte(`[{"id":"a1"}]`)))

	payload, err := backend.Load(context.Background(), "classtrack:attendance")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a1"}]`, string(payload))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendLoadMissingKey(t *testing.T) {
	backend, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT payload FROM record_collections WHERE key = $1")).
		WithArgs("classtrack:missing").
		WillReturnRows(sqlmock.NewRows([]string{"payload"}))

	_, err := backend.Load(context.Background(), "classtrack:missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendSaveUpserts(t *testing.T) {
	backend, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO record_collections").
		WithArgs("classtrack:attendance", []byte(`[]`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := backend.Save(context.Background(), "classtrack:attendance", []byte(`[]`))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresBackendEnsureSchema(t *testing.T) {
	backend, mock, cleanup := newPostgresMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS record_collections").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, backend.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
