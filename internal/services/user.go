package service

import (
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/config"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/metrics"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	repository "github.com/aaravmahajanofficial/ecommerce-backend/internal/repositories"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgDuplicateUsername = "Username is already taken."
	msgInvalidLogin      = "Invalid username or password"
	msgInactiveLogin     = "Inactive users cannot log in."
	msgInactiveUser      = "User is inactive"
)

type UserService interface {
	Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	ListUsers(ctx context.Context, scope authz.UserScope) ([]*models.User, error)
	GetUser(ctx context.Context, scope authz.UserScope, id uuid.UUID) (*models.User, error)
	SetActiveStatus(ctx context.Context, id uuid.UUID, isActive bool) (*models.User, error)
	ActiveUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	CreateSuperuser(ctx context.Context, username, password string) (*models.User, error)
}

type userService struct {
	repo        repository.UserRepository
	rateLimiter repository.RateLimitRepository
	jwtKey      []byte
	tokenTTL    time.Duration
	bcryptCost  int
}

// NewUserService wires the account operations. rateLimiter may be nil, in
// which case login attempts are not throttled.
func NewUserService(repo repository.UserRepository, rateLimiter repository.RateLimitRepository, security config.Security) UserService {

	cost := security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	return &userService{
		repo:        repo,
		rateLimiter: rateLimiter,
		jwtKey:      []byte(security.JWTKey),
		tokenTTL:    security.TokenTTL(),
		bcryptCost:  cost,
	}
}

func (s *userService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	return s.createUser(ctx, req.Username, req.Password, models.RoleClient, false)
}

func (s *userService) CreateSuperuser(ctx context.Context, username, password string) (*models.User, error) {
	return s.createUser(ctx, username, password, models.RoleAdmin, true)
}

func (s *userService) createUser(ctx context.Context, username, password string, role models.Role, isStaff bool) (*models.User, error) {

	logger := middleware.LoggerFromContext(ctx)

	username = utils.SanitizeText(username)
	if username == "" {
		return nil, errors.AddValidationError("username", "This field may not be blank.")
	}

	if password == "" {
		return nil, errors.AddValidationError("password", "This field may not be blank.")
	}

	existingUser, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil && !goerrors.Is(err, repository.ErrNotFound) {
		return nil, errors.DatabaseError("Failed to check username").WithError(err)
	}

	if existingUser != nil {
		return nil, errors.ValidationError(msgDuplicateUsername)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, errors.InternalError("Failed to secure password").WithError(err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Username: username,
		Password: string(hashedPassword),
		IsActive: true,
		IsStaff:  isStaff,
		Role:     role,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if goerrors.Is(err, repository.ErrDuplicate) {
			return nil, errors.ValidationError(msgDuplicateUsername).WithError(err)
		}
		return nil, errors.DatabaseError("Failed to create user").WithError(err)
	}

	logger.Info("User created", slog.String("userId", user.ID.String()), slog.String("role", role.String()))

	return user, nil
}

func (s *userService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	resp, err := s.login(ctx, req)
	metrics.ObserveLogin(err)

	return resp, err
}

func (s *userService) login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {

	if s.rateLimiter != nil {
		allowed, _, retryAfter, err := s.rateLimiter.CheckLoginRateLimit(ctx, req.Username)
		if err != nil {
			return nil, errors.ThirdPartyError("Rate limit check failed").WithError(err)
		}

		if !allowed {
			return nil, errors.TooManyRequestsError("Too many login attempts. Please try again later.").
				WithDetail(fmt.Sprintf("Retry after %d seconds", retryAfter))
		}
	}

	user, err := s.repo.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.UnauthorizedError(msgInvalidLogin)
		}
		return nil, errors.DatabaseError("Failed to fetch user").WithError(err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		return nil, errors.UnauthorizedError(msgInvalidLogin)
	}

	if !user.IsActive {
		return nil, errors.ForbiddenError(msgInactiveLogin)
	}

	now := time.Now()

	claims := &models.Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		IsStaff:  user.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.jwtKey)
	if err != nil {
		return nil, errors.InternalError("Failed to generate authentication token").WithError(err)
	}

	return &models.LoginResponse{
		Token:     tokenString,
		ExpiresIn: int(s.tokenTTL.Seconds()),
	}, nil
}

func (s *userService) ListUsers(ctx context.Context, scope authz.UserScope) ([]*models.User, error) {

	var onlyID *uuid.UUID
	if !scope.All {
		onlyID = &scope.Self
	}

	users, err := s.repo.ListUsers(ctx, onlyID)
	if err != nil {
		return nil, errors.DatabaseError("Failed to fetch users").WithError(err)
	}

	return users, nil
}

// GetUser reports accounts outside the scope as missing.
func (s *userService) GetUser(ctx context.Context, scope authz.UserScope, id uuid.UUID) (*models.User, error) {

	if !scope.Includes(id) {
		return nil, errors.NotFoundError("User not found")
	}

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("User not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch user").WithError(err)
	}

	return user, nil
}

// ActiveUser backs token authentication: a deleted or deactivated account is
// refused on every request, not only at its next login.
func (s *userService) ActiveUser(ctx context.Context, id uuid.UUID) (*models.User, error) {

	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.UnauthorizedError("User not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to fetch user").WithError(err)
	}

	if !user.IsActive {
		return nil, errors.UnauthorizedError(msgInactiveUser)
	}

	return user, nil
}

func (s *userService) SetActiveStatus(ctx context.Context, id uuid.UUID, isActive bool) (*models.User, error) {

	user, err := s.repo.UpdateActiveStatus(ctx, id, isActive)
	if err != nil {
		if goerrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFoundError("User not found").WithError(err)
		}
		return nil, errors.DatabaseError("Failed to update user status").WithError(err)
	}

	middleware.LoggerFromContext(ctx).Info("User status changed", slog.String("userId", id.String()), slog.Bool("isActive", isActive))

	return user, nil
}
