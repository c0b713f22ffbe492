package middleware

import (
	"log/slog"
	"net/http"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
)

type Authorizer struct {
	guard *authz.Guard
}

func NewAuthorizer(guard *authz.Guard) *Authorizer {
	return &Authorizer{guard: guard}
}

// Require consults the guard for the resource before calling next. It must
// run after Identify or Authenticate so the principal is in the context.
func (a *Authorizer) Require(resource authz.Resource, next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())
		principal := PrincipalFromContext(r.Context())

		err := a.guard.Decide(authz.Request{
			Method:    r.Method,
			Principal: principal,
			Resource:  resource,
		})
		if err != nil {
			logger.Warn("Request denied",
				slog.String("resource", resource.String()),
				slog.Bool("authenticated", principal.Authenticated),
				slog.String("error", err.Error()),
			)
			response.Error(w, err)
			return
		}

		next.ServeHTTP(w, r)
	}
}
