package repository_test

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var categoryRowColumns = []string{"id", "name", "created_at", "updated_at"}

func TestCategoryRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewCategoryRepo(db)
	ctx := t.Context()

	t.Run("CreateCategory", func(t *testing.T) {
		// Arrange
		category := &models.Category{ID: uuid.New(), Name: "Books"}
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO categories (id, name, created_at, updated_at)`)).
			WithArgs(category.ID, "Books").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateCategory(ctx, category)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, category.CreatedAt, time.Second)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetCategoryByID", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(categoryRowColumns).AddRow(id.String(), "Games", now, now))

		// Act
		category, err := repo.GetCategoryByID(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, "Games", category.Name)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetCategoryByID_NotFound", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM categories WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(categoryRowColumns))

		// Act
		category, err := repo.GetCategoryByID(ctx, id)

		// Assert
		assert.Nil(t, category)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListCategories", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM categories ORDER BY name`)).
			WillReturnRows(sqlmock.NewRows(categoryRowColumns).
				AddRow(uuid.New().String(), "Books", now, now).
				AddRow(uuid.New().String(), "Games", now, now))

		// Act
		categories, err := repo.ListCategories(ctx)

		// Assert
		require.NoError(t, err)
		assert.Len(t, categories, 2)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListCategories_Error", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`FROM categories ORDER BY name`)).
			WillReturnError(errors.New("db down"))

		// Act
		categories, err := repo.ListCategories(ctx)

		// Assert
		assert.Nil(t, categories)
		assert.Error(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateCategory_NotFound", func(t *testing.T) {
		// Arrange
		category := &models.Category{ID: uuid.New(), Name: "Renamed"}

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE categories SET name = $1, updated_at = NOW() WHERE id = $2`)).
			WithArgs("Renamed", category.ID).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

		// Act
		err := repo.UpdateCategory(ctx, category)

		// Assert
		assert.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DeleteCategory", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		// Act
		err := repo.DeleteCategory(ctx, id)

		// Assert
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DeleteCategory_NotFound", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM categories WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Act
		err := repo.DeleteCategory(ctx, id)

		// Assert
		assert.ErrorIs(t, err, repository.ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
