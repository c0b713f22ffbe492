package handlers

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	service "github.com/aaravmahajanofficial/ecommerce-backend/internal/services"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/go-playground/validator/v10"
)

type UserHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService, validator: validator.New()}
}

// Register godoc
//	@Summary		Register a new user
//	@Description	Creates a client account. The username must be unique.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			user	body		models.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	models.RegisterResponse	"User registered"
//	@Failure		400		{object}	response.ErrorResponse	"Validation error or duplicate username"
//	@Failure		500		{object}	response.ErrorResponse	"Internal server error"
//	@Router			/users/register [post]
func (h *UserHandler) Register() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.RegisterRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid registration input")
			return
		}

		user, err := h.userService.Register(r.Context(), &req)
		if err != nil {
			logger.Warn("User registration failed", slog.String("username", req.Username), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("User registered", slog.String("userId", user.ID.String()))
		response.Success(w, http.StatusCreated, models.RegisterResponse{
			Message: "User registered successfully",
			UserID:  user.ID,
		})
	}
}

// Login godoc
//	@Summary		Log in
//	@Description	Exchanges a username and password for a signed bearer token.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			credentials	body		models.LoginRequest		true	"Login credentials"
//	@Success		200			{object}	models.LoginResponse	"Token issued"
//	@Failure		400			{object}	response.ErrorResponse	"Validation error"
//	@Failure		401			{object}	response.ErrorResponse	"Invalid username or password"
//	@Failure		403			{object}	response.ErrorResponse	"Account disabled"
//	@Failure		429			{object}	response.ErrorResponse	"Too many login attempts"
//	@Failure		500			{object}	response.ErrorResponse	"Internal server error"
//	@Router			/users/login [post]
func (h *UserHandler) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		var req models.LoginRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid login input")
			return
		}

		resp, err := h.userService.Login(r.Context(), &req)
		if err != nil {
			logger.Warn("Login failed", slog.String("username", req.Username), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("User logged in", slog.String("username", req.Username))
		response.Success(w, http.StatusOK, resp)
	}
}

// ListUsers godoc
//	@Summary		List users
//	@Description	Admins see every account; clients see only their own.
//	@Tags			Users
//	@Produce		json
//	@Success		200	{array}		models.User				"Visible users"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/users [get]
func (h *UserHandler) ListUsers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		principal := middleware.PrincipalFromContext(r.Context())

		users, err := h.userService.ListUsers(r.Context(), authz.ScopeFor(principal))
		if err != nil {
			logger.Error("Failed to list users", slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("Users listed", slog.Int("count", len(users)))
		response.Success(w, http.StatusOK, users)
	}
}

// GetUser godoc
//	@Summary		Get a user by ID
//	@Description	Users outside the caller's visibility are reported as not found.
//	@Tags			Users
//	@Produce		json
//	@Param			id	path		string					true	"User ID (UUID)"	Format(uuid)
//	@Success		200	{object}	models.User				"User"
//	@Failure		400	{object}	response.ErrorResponse	"Invalid user ID format"
//	@Failure		401	{object}	response.ErrorResponse	"Authentication required"
//	@Failure		404	{object}	response.ErrorResponse	"User not found"
//	@Failure		500	{object}	response.ErrorResponse	"Internal server error"
//	@Security		BearerAuth
//	@Router			/users/{id} [get]
func (h *UserHandler) GetUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())
		principal := middleware.PrincipalFromContext(r.Context())

		id, err := utils.ParseUUIDParam(r, "id")
		if err != nil {
			logger.Warn("Invalid user id", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Invalid user ID").WithError(err))
			return
		}

		user, err := h.userService.GetUser(r.Context(), authz.ScopeFor(principal), id)
		if err != nil {
			logger.Warn("Failed to get user", slog.String("targetId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		response.Success(w, http.StatusOK, user)
	}
}

// ActivateStatus godoc
//	@Summary		Activate or deactivate a user
//	@Description	Staff only. Sets the is_active flag of the target account.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string							true	"User ID (UUID)"	Format(uuid)
//	@Param			status	body		models.ActivateStatusRequest	true	"New status"
//	@Success		200		{object}	models.ActivateStatusResponse	"Status updated"
//	@Failure		400		{object}	response.ErrorResponse			"Validation error"
//	@Failure		401		{object}	response.ErrorResponse			"Authentication required"
//	@Failure		403		{object}	response.ErrorResponse			"Staff only"
//	@Failure		404		{object}	response.ErrorResponse			"User not found"
//	@Failure		500		{object}	response.ErrorResponse			"Internal server error"
//	@Security		BearerAuth
//	@Router			/users/{id}/activate_status [patch]
func (h *UserHandler) ActivateStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := middleware.LoggerFromContext(r.Context())

		id, err := utils.ParseUUIDParam(r, "id")
		if err != nil {
			logger.Warn("Invalid user id", slog.String("error", err.Error()))
			response.Error(w, errors.BadRequestError("Invalid user ID").WithError(err))
			return
		}

		var req models.ActivateStatusRequest
		if !utils.ParseAndValidate(r, w, &req, h.validator) {
			logger.Warn("Invalid activate status input")
			return
		}

		user, err := h.userService.SetActiveStatus(r.Context(), id, *req.IsActive)
		if err != nil {
			logger.Error("Failed to update user status", slog.String("targetId", id.String()), slog.String("error", err.Error()))
			response.Error(w, err)
			return
		}

		logger.Info("User status updated", slog.String("targetId", id.String()), slog.Bool("isActive", user.IsActive))
		response.Success(w, http.StatusOK, models.ActivateStatusResponse{
			User:     user.Username,
			IsActive: user.IsActive,
		})
	}
}
