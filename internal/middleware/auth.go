package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"nana-store/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const (
	UserIDKey   contextKey = "user_id"
	UserRoleKey contextKey = "user_role"
)

// TokenValidator parses an access token into its claims
type TokenValidator interface {
	ValidateToken(tokenString string) (*service.Claims, error)
}

var errMissingAuthHeader = errors.New("missing authorization header")

// bearerClaims extracts and validates the bearer token of the request
func bearerClaims(r *http.Request, tokens TokenValidator) (*service.Claims, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errMissingAuthHeader
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return nil, service.ErrInvalidToken
	}
	return tokens.ValidateToken(token)
}

func withUser(ctx context.Context, claims *service.Claims) context.Context {
	ctx = context.WithValue(ctx, UserIDKey, claims.UserID)
	return context.WithValue(ctx, UserRoleKey, claims.Role)
}

// AuthMiddleware rejects requests without a valid access token
func AuthMiddleware(tokens TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := bearerClaims(r, tokens)
			if err != nil {
				logger.Debug("Authentication failed", zap.Error(err))
				switch {
				case errors.Is(err, errMissingAuthHeader):
					RespondWithError(w, http.StatusUnauthorized, "missing authorization header")
				case errors.Is(err, service.ErrTokenExpired):
					RespondWithError(w, http.StatusUnauthorized, "token expired")
				default:
					RespondWithError(w, http.StatusUnauthorized, "invalid token")
				}
				return
			}
			if claims.UserID == uuid.Nil || claims.Role == "" {
				logger.Warn("Token is missing user claims")
				RespondWithError(w, http.StatusUnauthorized, "invalid token claims")
				return
			}

			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims)))
		})
	}
}

// OptionalAuthMiddleware attaches the user when a valid token is sent and
// otherwise lets the request through anonymously.
func OptionalAuthMiddleware(tokens TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := bearerClaims(r, tokens)
			if err != nil {
				if !errors.Is(err, errMissingAuthHeader) {
					logger.Debug("Ignoring invalid optional token", zap.Error(err))
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), claims)))
		})
	}
}

// GetUserID extracts user ID from request context
func GetUserID(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

// GetUserRole extracts user role from request context
func GetUserRole(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(UserRoleKey).(string)
	return role, ok
}
