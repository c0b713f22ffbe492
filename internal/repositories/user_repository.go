package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// ListUsers returns every user, or only the one with onlyID when it is set.
	ListUsers(ctx context.Context, onlyID *uuid.UUID) ([]*models.User, error)
	UpdateActiveStatus(ctx context.Context, id uuid.UUID, isActive bool) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepo(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, password, is_active, is_staff, role, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	user := &models.User{}

	err := row.Scan(&user.ID, &user.Username, &user.Password, &user.IsActive, &user.IsStaff, &user.Role, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (r *userRepository) CreateUser(ctx context.Context, user *models.User) error {

	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		INSERT INTO users(id, username, password, is_active, is_staff, role, created_at, updated_at)
		VALUES($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING created_at, updated_at`

	err := r.DB.QueryRowContext(dbCtx, query, user.ID, user.Username, user.Password, user.IsActive, user.IsStaff, user.Role).Scan(&user.CreatedAt, &user.UpdatedAt)

	return mapError(err)
}

func (r *userRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {

	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(r.DB.QueryRowContext(dbCtx, query, username))
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *userRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {

	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.DB.QueryRowContext(dbCtx, query, id))
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}

func (r *userRepository) ListUsers(ctx context.Context, onlyID *uuid.UUID) ([]*models.User, error) {

	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `SELECT ` + userColumns + ` FROM users`
	var args []any

	if onlyID != nil {
		query += ` WHERE id = $1`
		args = append(args, *onlyID)
	}

	query += ` ORDER BY created_at`

	rows, err := r.DB.QueryContext(dbCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	defer rows.Close()

	users := []*models.User{}

	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

func (r *userRepository) UpdateActiveStatus(ctx context.Context, id uuid.UUID, isActive bool) (*models.User, error) {

	dbCtx, cancel := withTimeout(ctx)
	defer cancel()

	query := `
		UPDATE users SET is_active = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + userColumns

	user, err := scanUser(r.DB.QueryRowContext(dbCtx, query, isActive, id))
	if err != nil {
		return nil, mapError(err)
	}

	return user, nil
}
