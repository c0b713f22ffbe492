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
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "password", "is_active", "is_staff", "role", "created_at", "updated_at"}

func TestNewUserRepo(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	assert.NotNil(t, repo, "NewUserRepo should return a non-nil repository")
}

func TestUserRepository(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewUserRepo(db)
	ctx := t.Context()

	insertSQL := regexp.QuoteMeta(`INSERT INTO users(id, username, password, is_active, is_staff, role, created_at, updated_at)`)

	t.Run("CreateUser_Success", func(t *testing.T) {
		// Arrange
		user := &models.User{
			ID:       uuid.New(),
			Username: "alice",
			Password: "hashedpassword",
			IsActive: true,
			Role:     models.RoleClient,
		}
		now := time.Now()

		mock.ExpectQuery(insertSQL).
			WithArgs(user.ID, user.Username, user.Password, true, false, models.RoleClient).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.NoError(t, err)
		assert.WithinDuration(t, now, user.CreatedAt, time.Second)
		assert.WithinDuration(t, now, user.UpdatedAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_DuplicateUsername", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Username: "alice", Password: "hash", IsActive: true}

		mock.ExpectQuery(insertSQL).
			WithArgs(user.ID, user.Username, user.Password, true, false, models.RoleClient).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.Error(t, err)
		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("CreateUser_Error", func(t *testing.T) {
		// Arrange
		user := &models.User{ID: uuid.New(), Username: "bob", Password: "hash"}
		dbError := errors.New("database insertion error")

		mock.ExpectQuery(insertSQL).
			WithArgs(user.ID, user.Username, user.Password, false, false, models.RoleClient).
			WillReturnError(dbError)

		// Act
		err := repo.CreateUser(ctx, user)

		// Assert
		require.Error(t, err)
		assert.Equal(t, dbError, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByUsername_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "alice", "hash", true, true, "admin", now, now))

		// Act
		user, err := repo.GetUserByUsername(ctx, "alice")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, "alice", user.Username)
		assert.Equal(t, models.RoleAdmin, user.Role)
		assert.True(t, user.IsStaff)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByUsername_NotFound", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE username = $1`)).
			WithArgs("ghost").
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		// Act
		user, err := repo.GetUserByUsername(ctx, "ghost")

		// Assert
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByID_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "carol", "hash", true, false, "client", now, now))

		// Act
		user, err := repo.GetUserByID(ctx, id)

		// Assert
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Equal(t, models.RoleClient, user.Role)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GetUserByID_NotFound", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		// Act
		user, err := repo.GetUserByID(ctx, id)

		// Assert
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListUsers_All", func(t *testing.T) {
		// Arrange
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY created_at`)).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(uuid.New().String(), "alice", "hash", true, true, "admin", now, now).
				AddRow(uuid.New().String(), "bob", "hash", true, false, "client", now, now))

		// Act
		users, err := repo.ListUsers(ctx, nil)

		// Assert
		require.NoError(t, err)
		assert.Len(t, users, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListUsers_OnlySelf", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1 ORDER BY created_at`)).
			WithArgs(id).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "bob", "hash", true, false, "client", now, now))

		// Act
		users, err := repo.ListUsers(ctx, &id)

		// Assert
		require.NoError(t, err)
		require.Len(t, users, 1)
		assert.Equal(t, id, users[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ListUsers_QueryError", func(t *testing.T) {
		// Arrange
		mock.ExpectQuery(regexp.QuoteMeta(`FROM users ORDER BY created_at`)).
			WillReturnError(errors.New("connection reset"))

		// Act
		users, err := repo.ListUsers(ctx, nil)

		// Assert
		assert.Nil(t, users)
		assert.ErrorContains(t, err, "querying users")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateActiveStatus_Success", func(t *testing.T) {
		// Arrange
		id := uuid.New()
		now := time.Now()

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET is_active = $1, updated_at = NOW() WHERE id = $2`)).
			WithArgs(false, id).
			WillReturnRows(sqlmock.NewRows(userRowColumns).
				AddRow(id.String(), "bob", "hash", false, false, "client", now, now))

		// Act
		user, err := repo.UpdateActiveStatus(ctx, id, false)

		// Assert
		require.NoError(t, err)
		assert.False(t, user.IsActive)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("UpdateActiveStatus_NotFound", func(t *testing.T) {
		// Arrange
		id := uuid.New()

		mock.ExpectQuery(regexp.QuoteMeta(`UPDATE users SET is_active = $1`)).
			WithArgs(true, id).
			WillReturnRows(sqlmock.NewRows(userRowColumns))

		// Act
		user, err := repo.UpdateActiveStatus(ctx, id, true)

		// Assert
		assert.Nil(t, user)
		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
