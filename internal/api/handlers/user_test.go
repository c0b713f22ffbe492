package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/handlers"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/services/mocks"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUserHandler_Register(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)

	t.Run("Success", func(t *testing.T) {
		// Arrange
		registerReq := models.RegisterRequest{Username: "alice", Password: "P@ssword123!"}
		createdUser := &models.User{ID: uuid.New(), Username: "alice", IsActive: true, Role: models.RoleClient}

		mockUserService.On("Register", mock.Anything, mock.MatchedBy(func(r *models.RegisterRequest) bool {
			return r.Username == registerReq.Username && r.Password == registerReq.Password
		})).Return(createdUser, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", jsonBody(t, registerReq), nil)
		rr := httptest.NewRecorder()

		// Act
		userHandler.Register()(rr, req)

		// Assert
		assert.Equal(t, http.StatusCreated, rr.Code)

		var resp models.RegisterResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, createdUser.ID, resp.UserID)
		assert.NotEmpty(t, resp.Message)

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Password", func(t *testing.T) {
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", jsonBody(t, map[string]string{"username": "bob"}), nil)
		rr := httptest.NewRecorder()

		userHandler.Register()(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		errResp := decodeError(t, rr)
		assert.Equal(t, appErrors.ErrCodeValidation, errResp.Code)
		mockUserService.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Failure - Duplicate Username", func(t *testing.T) {
		mockUserService.On("Register", mock.Anything, mock.AnythingOfType("*models.RegisterRequest")).
			Return(nil, appErrors.ValidationError("Username is already taken.")).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/register", jsonBody(t, models.RegisterRequest{Username: "alice", Password: "x"}), nil)
		rr := httptest.NewRecorder()

		userHandler.Register()(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "already taken")
		mockUserService.AssertExpectations(t)
	})
}

func TestUserHandler_Login(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)

	t.Run("Success", func(t *testing.T) {
		loginResp := &models.LoginResponse{Token: "signed.jwt.token", ExpiresIn: 86400}
		mockUserService.On("Login", mock.Anything, mock.MatchedBy(func(r *models.LoginRequest) bool {
			return r.Username == "alice"
		})).Return(loginResp, nil).Once()

		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", jsonBody(t, models.LoginRequest{Username: "alice", Password: "secret"}), nil)
		rr := httptest.NewRecorder()

		userHandler.Login()(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp models.LoginResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, loginResp.Token, resp.Token)
		assert.Equal(t, 86400, resp.ExpiresIn)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Error Statuses", func(t *testing.T) {
		tests := []struct {
			name   string
			err    error
			status int
		}{
			{"Invalid Credentials", appErrors.UnauthorizedError("Invalid username or password"), http.StatusUnauthorized},
			{"Disabled Account", appErrors.ForbiddenError("Inactive users cannot log in."), http.StatusForbidden},
			{"Rate Limited", appErrors.TooManyRequestsError("Too many login attempts"), http.StatusTooManyRequests},
		}

		for _, tc := range tests {
			t.Run(tc.name, func(t *testing.T) {
				mockUserService.On("Login", mock.Anything, mock.Anything).Return(nil, tc.err).Once()

				req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", jsonBody(t, models.LoginRequest{Username: "alice", Password: "bad"}), nil)
				rr := httptest.NewRecorder()

				userHandler.Login()(rr, req)

				assert.Equal(t, tc.status, rr.Code)
			})
		}

		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Malformed Body", func(t *testing.T) {
		req := testutils.CreateTestRequestWithoutContext(http.MethodPost, "/users/login", bytes.NewReader([]byte("{nope")), nil)
		rr := httptest.NewRecorder()

		userHandler.Login()(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestUserHandler_ListUsers(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)

	t.Run("Client Sees Only Self", func(t *testing.T) {
		clientID := uuid.New()
		self := &models.User{ID: clientID, Username: "test-client", Role: models.RoleClient}

		mockUserService.On("ListUsers", mock.Anything, authz.UserScope{Self: clientID}).
			Return([]*models.User{self}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/users", nil, clientID, models.RoleClient, nil)
		rr := httptest.NewRecorder()

		userHandler.ListUsers()(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var users []models.User
		decodeData(t, rr, &users)
		assert.Len(t, users, 1)
		assert.Equal(t, clientID, users[0].ID)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Admin Sees All", func(t *testing.T) {
		adminID := uuid.New()
		all := []*models.User{{ID: adminID}, {ID: uuid.New()}, {ID: uuid.New()}}

		mockUserService.On("ListUsers", mock.Anything, authz.UserScope{All: true}).Return(all, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/users", nil, adminID, models.RoleAdmin, nil)
		rr := httptest.NewRecorder()

		userHandler.ListUsers()(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var users []models.User
		decodeData(t, rr, &users)
		assert.Len(t, users, 3)
		mockUserService.AssertExpectations(t)
	})
}

func TestUserHandler_GetUser(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)
	clientID := uuid.New()

	t.Run("Outside Scope Is Not Found", func(t *testing.T) {
		otherID := uuid.New()
		mockUserService.On("GetUser", mock.Anything, authz.UserScope{Self: clientID}, otherID).
			Return(nil, appErrors.NotFoundError("User not found")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/users/"+otherID.String(), nil, clientID, models.RoleClient, map[string]string{"id": otherID.String()})
		rr := httptest.NewRecorder()

		userHandler.GetUser()(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Invalid ID", func(t *testing.T) {
		req := testutils.CreateTestRequestWithContext(http.MethodGet, "/users/abc", nil, clientID, models.RoleClient, map[string]string{"id": "abc"})
		rr := httptest.NewRecorder()

		userHandler.GetUser()(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "GetUser", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUserHandler_ActivateStatus(t *testing.T) {
	mockUserService := new(mocks.UserService)
	userHandler := handlers.NewUserHandler(mockUserService)
	adminID := uuid.New()
	targetID := uuid.New()
	pathParams := map[string]string{"id": targetID.String()}

	t.Run("Success", func(t *testing.T) {
		mockUserService.On("SetActiveStatus", mock.Anything, targetID, false).
			Return(&models.User{ID: targetID, Username: "bob", IsActive: false}, nil).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/users/"+targetID.String()+"/activate_status", jsonBody(t, map[string]bool{"is_active": false}), adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		userHandler.ActivateStatus()(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp models.ActivateStatusResponse
		decodeData(t, rr, &resp)
		assert.Equal(t, "bob", resp.User)
		assert.False(t, resp.IsActive)
		mockUserService.AssertExpectations(t)
	})

	t.Run("Failure - Missing Flag", func(t *testing.T) {
		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/users/"+targetID.String()+"/activate_status", jsonBody(t, map[string]string{}), adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		userHandler.ActivateStatus()(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockUserService.AssertNotCalled(t, "SetActiveStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Failure - Unknown User", func(t *testing.T) {
		mockUserService.On("SetActiveStatus", mock.Anything, targetID, true).
			Return(nil, appErrors.NotFoundError("User not found")).Once()

		req := testutils.CreateTestRequestWithContext(http.MethodPatch, "/users/"+targetID.String()+"/activate_status", jsonBody(t, map[string]bool{"is_active": true}), adminID, models.RoleAdmin, pathParams)
		rr := httptest.NewRecorder()

		userHandler.ActivateStatus()(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockUserService.AssertExpectations(t)
	})
}
