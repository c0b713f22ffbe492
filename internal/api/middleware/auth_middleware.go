package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aaravmahajanofficial/ecommerce-backend/internal/authz"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/errors"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/models"
	"github.com/aaravmahajanofficial/ecommerce-backend/internal/utils/response"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type contextKey uuid.UUID

var UserContextKey = contextKey(uuid.New())

// AccountLookup resolves the account behind a token. It must fail for
// unknown and deactivated users.
type AccountLookup interface {
	ActiveUser(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type AuthMiddleware struct {
	jwtKey   []byte
	accounts AccountLookup
	parser   *jwt.Parser
}

func NewAuthMiddleware(jwtKey []byte, accounts AccountLookup) *AuthMiddleware {

	return &AuthMiddleware{
		jwtKey:   jwtKey,
		accounts: accounts,
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}

}

// Authenticate rejects requests without a valid bearer token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Warn("Missing authorization header")
			response.Error(w, errors.UnauthorizedError("Authorization header is required"))
			return
		}

		claims, err := m.resolve(r.Context(), authHeader, logger)
		if err != nil {
			response.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.withClaims(r.Context(), claims, logger)))
	}
}

// Identify attaches the principal when a bearer token is present and lets
// anonymous requests through. A token that is present but invalid is still
// rejected.
func (m *AuthMiddleware) Identify(next http.Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {

		logger := LoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := m.resolve(r.Context(), authHeader, logger)
		if err != nil {
			response.Error(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(m.withClaims(r.Context(), claims, logger)))
	}
}

// resolve checks the token and then the account it names. Role and staff
// status come from the stored user, so a demotion or deactivation applies to
// tokens already issued.
func (m *AuthMiddleware) resolve(ctx context.Context, authHeader string, logger *slog.Logger) (*models.Claims, error) {
	claims, err := m.parseHeader(authHeader, logger)
	if err != nil {
		return nil, err
	}

	user, err := m.accounts.ActiveUser(ctx, claims.UserID)
	if err != nil {
		logger.Warn("Token refused for account", slog.String("userId", claims.UserID.String()), slog.Any("error", err))
		return nil, err
	}

	claims.Username = user.Username
	claims.Role = user.Role
	claims.IsStaff = user.IsStaff

	return claims, nil
}

func (m *AuthMiddleware) parseHeader(authHeader string, logger *slog.Logger) (*models.Claims, error) {

	// Token is of format : "Bearer <token>"
	tokenParts := strings.Split(authHeader, " ")

	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		logger.Warn("Invalid authorization header format")
		return nil, errors.UnauthorizedError("Invalid authorization format")
	}

	claims := &models.Claims{}

	token, err := m.parser.ParseWithClaims(tokenParts[1], claims, func(t *jwt.Token) (any, error) {
		return m.jwtKey, nil
	})

	if err != nil {
		logger.Warn("JWT parsing failed", slog.String("error", err.Error()))
		return nil, errors.UnauthorizedError("Invalid or expired token")
	}

	if !token.Valid {
		logger.Warn("Invalid token")
		return nil, errors.UnauthorizedError("Invalid token")
	}

	return claims, nil
}

func (m *AuthMiddleware) withClaims(ctx context.Context, claims *models.Claims, logger *slog.Logger) context.Context {

	ctx = context.WithValue(ctx, UserContextKey, claims)

	requestScopedLogger := logger.With(slog.String("userId", claims.UserID.String()), slog.String("role", claims.Role.String()))
	ctx = WithLogger(ctx, requestScopedLogger)

	requestScopedLogger.Debug("User authenticated")

	return ctx
}

func ClaimsFromContext(ctx context.Context) (*models.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*models.Claims)
	return claims, ok && claims != nil
}

func PrincipalFromContext(ctx context.Context) authz.Principal {
	claims, ok := ClaimsFromContext(ctx)
	if !ok {
		return authz.Anonymous()
	}

	return authz.PrincipalFromClaims(claims)
}
