package testutils

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/api/middleware"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
)

var discard = slog.New(slog.DiscardHandler)

func newRequest(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	for key, value := range pathParams {
		req.SetPathValue(key, value)
	}

	return req.WithContext(middleware.WithLogger(req.Context(), discard))
}

// CreateTestRequestWithContext builds a request as if Authenticate had
// accepted a token for userID with the given role. Admins are staff.
func CreateTestRequestWithContext(method, target string, body io.Reader, userID uuid.UUID, role models.Role, pathParams map[string]string) *http.Request {
	req := newRequest(method, target, body, pathParams)

	claims := &models.Claims{
		UserID:   userID,
		Username: "test-" + role.String(),
		Role:     role,
		IsStaff:  role == models.RoleAdmin,
	}

	return req.WithContext(context.WithValue(req.Context(), middleware.UserContextKey, claims))
}

// CreateTestRequestWithoutContext builds an anonymous request.
func CreateTestRequestWithoutContext(method, target string, body io.Reader, pathParams map[string]string) *http.Request {
	return newRequest(method, target, body, pathParams)
}
