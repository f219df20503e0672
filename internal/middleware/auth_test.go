package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/service"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func testTokens() TokenValidator {
	return service.NewUserService(nil, nil, service.TokenSettings{Secret: testSecret}, zap.NewNop())
}

func signToken(t *testing.T, userID uuid.UUID, role string, expires time.Time) string {
	t.Helper()
	claims := &service.Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// Feature: nana-store, Property 8: Protected endpoints reject missing tokens
// Validates: Auth middleware
func TestProperty_ProtectedEndpointsRejectMissingTokens(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("requests without authorization header are rejected", prop.ForAll(
		func(pathSuffix string, method string) bool {
			handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

			req := httptest.NewRequest(method, "/api/"+pathSuffix, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusUnauthorized
		},
		gen.AlphaString(),
		gen.OneConstOf("GET", "POST", "PUT", "DELETE"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: nana-store, Property 9: Valid tokens expose the caller to handlers
// Validates: Auth middleware
func TestProperty_ValidTokensAllowProcessing(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("valid tokens put user id and role into the context", prop.ForAll(
		func(role string) bool {
			userID := uuid.New()
			token := signToken(t, userID, role, time.Now().Add(time.Hour))

			var gotID uuid.UUID
			var gotRole string
			handler := AuthMiddleware(testTokens(), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotID, _ = GetUserID(r.Context())
				gotRole, _ = GetUserRole(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			return w.Code == http.StatusOK && gotID == userID && gotRole == role
		},
		gen.OneConstOf(domain.RoleUser, domain.RoleAdmin),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestAuthMiddleware_RejectsBadTokens(t *testing.T) {
	handler := AuthMiddleware(testTokens(), zap.NewNop())(okHandler())

	cases := map[string]string{
		"expired":      "Bearer " + signToken(t, uuid.New(), domain.RoleUser, time.Now().Add(-time.Hour)),
		"wrong scheme": "Basic abc",
		"garbage":      "Bearer not-a-jwt",
		"no user":      "Bearer " + signToken(t, uuid.Nil, domain.RoleUser, time.Now().Add(time.Hour)),
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
			req.Header.Set("Authorization", header)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestOptionalAuthMiddleware(t *testing.T) {
	var seen bool
	handler := OptionalAuthMiddleware(testTokens(), zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, seen = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, seen)

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer broken")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, seen)

	req = httptest.NewRequest(http.MethodGet, "/api/products", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), domain.RoleAdmin, time.Now().Add(time.Hour)))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, seen)
}

func TestRequireAdmin(t *testing.T) {
	tokens := testTokens()
	handler := AuthMiddleware(tokens, zap.NewNop())(RequireAdmin(zap.NewNop())(okHandler()))

	for role, want := range map[string]int{domain.RoleAdmin: http.StatusOK, domain.RoleUser: http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodPost, "/api/products", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), role, time.Now().Add(time.Hour)))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}

	w := httptest.NewRecorder()
	RequireAdmin(zap.NewNop())(okHandler()).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/products", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
