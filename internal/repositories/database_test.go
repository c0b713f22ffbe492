package repository_test

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSchema(t *testing.T) {
	t.Run("Creates tables", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS users`)).WillReturnResult(sqlmock.NewResult(0, 0))

		require.NoError(t, repository.InitSchema(t.Context(), db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Wraps failure", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS users`)).WillReturnError(errors.New("permission denied"))

		err = repository.InitSchema(t.Context(), db)
		assert.ErrorContains(t, err, "failed to initialise schema")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewWithDB(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	repo := repository.NewWithDB(db)

	assert.NotNil(t, repo.User)
	assert.NotNil(t, repo.Category)
	assert.NotNil(t, repo.Product)
	assert.NotNil(t, repo.Cart)

	mock.ExpectClose()
	require.NoError(t, repo.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
