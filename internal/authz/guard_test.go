package authz_test

import (
	"net/http"
	"testing"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	appErrors "github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func client(id uuid.UUID) authz.Principal {
	return authz.Principal{UserID: id, Username: "client", Role: models.RoleClient, Authenticated: true}
}

func admin(id uuid.UUID) authz.Principal {
	return authz.Principal{UserID: id, Username: "admin", Role: models.RoleAdmin, IsStaff: true, Authenticated: true}
}

func TestGuard_Decide(t *testing.T) {
	guard := authz.NewGuard(false)
	clientID := uuid.New()
	adminID := uuid.New()
	otherID := uuid.New()

	tests := []struct {
		name       string
		req        authz.Request
		wantStatus int // 0 means allowed
	}{
		// catalog
		{"Anonymous lists categories", authz.Request{Method: http.MethodGet, Resource: authz.ResourceCategory}, 0},
		{"Anonymous reads product", authz.Request{Method: http.MethodGet, Resource: authz.ResourceProduct}, 0},
		{"Anonymous creates category", authz.Request{Method: http.MethodPost, Resource: authz.ResourceCategory}, http.StatusUnauthorized},
		{"Client creates category", authz.Request{Method: http.MethodPost, Principal: client(clientID), Resource: authz.ResourceCategory}, http.StatusForbidden},
		{"Client updates product", authz.Request{Method: http.MethodPut, Principal: client(clientID), Resource: authz.ResourceProduct}, http.StatusForbidden},
		{"Client deletes product", authz.Request{Method: http.MethodDelete, Principal: client(clientID), Resource: authz.ResourceProduct}, http.StatusForbidden},
		{"Admin creates category", authz.Request{Method: http.MethodPost, Principal: admin(adminID), Resource: authz.ResourceCategory}, 0},
		{"Admin deletes product", authz.Request{Method: http.MethodDelete, Principal: admin(adminID), Resource: authz.ResourceProduct}, 0},

		// carts
		{"Anonymous lists carts", authz.Request{Method: http.MethodGet, Resource: authz.ResourceCart}, 0},
		{"Anonymous creates cart", authz.Request{Method: http.MethodPost, Resource: authz.ResourceCart}, http.StatusUnauthorized},
		{"Client creates own cart", authz.Request{Method: http.MethodPost, Principal: client(clientID), Resource: authz.ResourceCart, Owner: &clientID}, 0},
		{"Client creates cart for another user", authz.Request{Method: http.MethodPost, Principal: client(clientID), Resource: authz.ResourceCart, Owner: &otherID}, http.StatusBadRequest},
		{"Admin creates cart for another user", authz.Request{Method: http.MethodPost, Principal: admin(adminID), Resource: authz.ResourceCart, Owner: &otherID}, http.StatusBadRequest},
		{"Client adds to cart", authz.Request{Method: http.MethodPost, Principal: client(clientID), Resource: authz.ResourceCart}, 0},
		{"Client removes from cart", authz.Request{Method: http.MethodDelete, Principal: client(clientID), Resource: authz.ResourceCart}, 0},

		// cart reset
		{"Anonymous clears carts", authz.Request{Method: http.MethodDelete, Resource: authz.ResourceCartReset}, http.StatusUnauthorized},
		{"Client clears carts", authz.Request{Method: http.MethodDelete, Principal: client(clientID), Resource: authz.ResourceCartReset}, http.StatusForbidden},
		{"Admin clears carts", authz.Request{Method: http.MethodDelete, Principal: admin(adminID), Resource: authz.ResourceCartReset}, 0},

		// users
		{"Anonymous lists users", authz.Request{Method: http.MethodGet, Resource: authz.ResourceUser}, http.StatusUnauthorized},
		{"Client lists users", authz.Request{Method: http.MethodGet, Principal: client(clientID), Resource: authz.ResourceUser}, 0},
		{"Client toggles activation", authz.Request{Method: http.MethodPatch, Principal: client(clientID), Resource: authz.ResourceUserStatus}, http.StatusForbidden},
		{"Anonymous toggles activation", authz.Request{Method: http.MethodPatch, Resource: authz.ResourceUserStatus}, http.StatusUnauthorized},
		{"Staff toggles activation", authz.Request{Method: http.MethodPatch, Principal: admin(adminID), Resource: authz.ResourceUserStatus}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := guard.Decide(tc.req)

			if tc.wantStatus == 0 {
				assert.NoError(t, err)
				return
			}

			appErr, ok := appErrors.IsAppError(err)
			require.True(t, ok, "denial should be an AppError")
			assert.Equal(t, tc.wantStatus, appErr.StatusCode)
		})
	}
}

func TestGuard_Decide_IsDeterministic(t *testing.T) {
	guard := authz.NewGuard(false)
	req := authz.Request{Method: http.MethodPost, Principal: client(uuid.New()), Resource: authz.ResourceProduct}

	first := guard.Decide(req)
	second := guard.Decide(req)

	assert.Equal(t, first, second)
}

func TestGuard_UnguardedCartReset(t *testing.T) {
	guard := authz.NewGuard(true)

	assert.NoError(t, guard.Decide(authz.Request{Method: http.MethodDelete, Resource: authz.ResourceCartReset}))
	assert.NoError(t, guard.Decide(authz.Request{Method: http.MethodDelete, Principal: client(uuid.New()), Resource: authz.ResourceCartReset}))
}

func TestPrincipalFromClaims(t *testing.T) {
	t.Run("Nil claims is anonymous", func(t *testing.T) {
		p := authz.PrincipalFromClaims(nil)
		assert.False(t, p.Authenticated)
		assert.False(t, p.IsAdmin())
	})

	t.Run("Admin claims", func(t *testing.T) {
		id := uuid.New()
		p := authz.PrincipalFromClaims(&models.Claims{UserID: id, Username: "root", Role: models.RoleAdmin, IsStaff: true})
		assert.True(t, p.Authenticated)
		assert.True(t, p.IsAdmin())
		assert.True(t, p.IsStaff)
		assert.Equal(t, id, p.UserID)
	})
}

func TestScopeFor(t *testing.T) {
	selfID := uuid.New()
	otherID := uuid.New()

	adminScope := authz.ScopeFor(admin(selfID))
	assert.True(t, adminScope.All)
	assert.True(t, adminScope.Includes(otherID))

	clientScope := authz.ScopeFor(client(selfID))
	assert.False(t, clientScope.All)
	assert.True(t, clientScope.Includes(selfID))
	assert.False(t, clientScope.Includes(otherID))
}
