// Package authz decides whether a principal may perform a request on a
// resource. Decisions are pure: the same input always yields the same result
// and nothing is read from or written to storage.
package authz

import (
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/google/uuid"
)

type Resource int

const (
	ResourceCategory Resource = iota
	ResourceProduct
	ResourceCart
	// ResourceCartReset is the bulk delete of every cart.
	ResourceCartReset
	ResourceUser
	ResourceUserStatus
)

func (r Resource) String() string {
	switch r {
	case ResourceCategory:
		return "category"
	case ResourceProduct:
		return "product"
	case ResourceCart:
		return "cart"
	case ResourceCartReset:
		return "cart_reset"
	case ResourceUser:
		return "user"
	case ResourceUserStatus:
		return "user_status"
	default:
		return "unknown"
	}
}

// Principal is the actor behind a request. The zero value is anonymous.
type Principal struct {
	UserID        uuid.UUID
	Username      string
	Role          models.Role
	IsStaff       bool
	Authenticated bool
}

func Anonymous() Principal {
	return Principal{}
}

func PrincipalFromClaims(claims *models.Claims) Principal {
	if claims == nil {
		return Anonymous()
	}

	return Principal{
		UserID:        claims.UserID,
		Username:      claims.Username,
		Role:          claims.Role,
		IsStaff:       claims.IsStaff,
		Authenticated: true,
	}
}

func (p Principal) IsAdmin() bool {
	if !p.Authenticated {
		return false
	}

	switch p.Role {
	case models.RoleAdmin:
		return true
	case models.RoleClient:
		return false
	default:
		return false
	}
}

type Request struct {
	Method    string
	Principal Principal
	Resource  Resource
	// Owner is the owner declared in the request body, set only when creating
	// a cart.
	Owner *uuid.UUID
}

type Guard struct {
	allowUnguardedCartReset bool
}

func NewGuard(allowUnguardedCartReset bool) *Guard {
	return &Guard{allowUnguardedCartReset: allowUnguardedCartReset}
}

func IsSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}

// Decide returns nil when the request is allowed, or an *errors.AppError
// describing the denial.
func (g *Guard) Decide(req Request) error {

	p := req.Principal
	safe := IsSafeMethod(req.Method)

	switch req.Resource {
	case ResourceCategory, ResourceProduct:
		if safe {
			return nil
		}

		if !p.Authenticated {
			return errors.UnauthorizedError("Authentication credentials were not provided")
		}

		if !p.IsAdmin() {
			return errors.ForbiddenError("Only admin users can modify the catalog")
		}

		return nil

	case ResourceCart:
		if safe {
			return nil
		}

		if !p.Authenticated {
			return errors.UnauthorizedError("Authentication credentials were not provided")
		}

		if req.Owner != nil && *req.Owner != p.UserID {
			return errors.BadRequestError("Invalid user_id. User does not match the request user.")
		}

		return nil

	case ResourceCartReset:
		if g.allowUnguardedCartReset {
			return nil
		}

		if !p.Authenticated {
			return errors.UnauthorizedError("Authentication credentials were not provided")
		}

		if !p.IsAdmin() {
			return errors.ForbiddenError("Only admin users can clear all carts")
		}

		return nil

	case ResourceUser:
		if !p.Authenticated {
			return errors.UnauthorizedError("Authentication credentials were not provided")
		}

		if safe {
			return nil
		}

		return errors.ForbiddenError("Users cannot be modified through this endpoint")

	case ResourceUserStatus:
		if !p.Authenticated {
			return errors.UnauthorizedError("Authentication credentials were not provided")
		}

		if !p.IsStaff {
			return errors.ForbiddenError("Only admin users can activate or deactivate users.")
		}

		return nil

	default:
		return errors.ForbiddenError("Unknown resource")
	}
}
