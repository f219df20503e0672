package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/memstore"
	"nana-store/internal/repository"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestUserService(store *repository.Store) UserService {
	return NewUserService(store.Users, store.RefreshTokens, TokenSettings{
		Secret:     "test-secret-key",
		BcryptCost: bcrypt.MinCost,
	}, zap.NewNop())
}

func propertyParams() *gopter.TestParameters {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 30
	return params
}

// Feature: nana-store, Property 1: Registration stores hashed passwords and lowercased emails
// Validates: Accounts Register
func TestProperty_RegistrationHashesPasswords(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("passwords are hashed with bcrypt and emails are normalized", prop.ForAll(
		func(email, password, name string) bool {
			store := memstore.New().Store()
			svc := newTestUserService(store)
			ctx := context.Background()

			session, err := svc.Register(ctx, RegisterInput{Name: name, Email: strings.ToUpper(email), Password: password})
			if err != nil {
				t.Logf("FAIL: registration failed: %v", err)
				return false
			}

			stored, err := store.Users.FindByEmail(ctx, email)
			if err != nil {
				t.Logf("FAIL: user not stored under lowercased email: %v", err)
				return false
			}
			if stored.PasswordHash == password {
				t.Logf("FAIL: password stored as plaintext")
				return false
			}
			if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)) != nil {
				t.Logf("FAIL: hash does not match password")
				return false
			}
			return session.User.Role == domain.RoleUser && session.User.IsActive
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9!@#$%]{6,20}`),
		gen.RegexMatch(`[A-Z][a-z]{2,15}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: nana-store, Property 2: Access tokens carry user id and role
// Validates: Accounts Login, auth middleware
func TestProperty_AccessTokensCarryClaims(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("access tokens contain user ID and role claims", prop.ForAll(
		func(email, password, role string) bool {
			store := memstore.New().Store()
			ctx := context.Background()
			hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
			user := &domain.User{ID: newID(), Name: "Tester", Email: email, PasswordHash: string(hash), Role: role, IsActive: true}
			if err := store.Users.Create(ctx, user); err != nil {
				return false
			}

			svc := newTestUserService(store)
			session, err := svc.Login(ctx, email, password)
			if err != nil {
				t.Logf("FAIL: login failed: %v", err)
				return false
			}

			claims, err := svc.ValidateToken(session.AccessToken)
			if err != nil {
				t.Logf("FAIL: token validation failed: %v", err)
				return false
			}
			return claims.UserID == user.ID &&
				claims.Role == role &&
				claims.ExpiresAt != nil &&
				claims.IssuedAt != nil &&
				session.User.LastLogin != nil
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9]{6,20}`),
		gen.OneConstOf(domain.RoleUser, domain.RoleAdmin),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

// Feature: nana-store, Property 3: A refresh token can be exchanged exactly once
// Validates: Accounts Refresh, Logout
func TestProperty_RefreshRotatesTokens(t *testing.T) {
	properties := gopter.NewProperties(propertyParams())

	properties.Property("refresh issues a new pair and retires the old token", prop.ForAll(
		func(email, password string) bool {
			store := memstore.New().Store()
			svc := newTestUserService(store)
			ctx := context.Background()

			first, err := svc.Register(ctx, RegisterInput{Name: "Tester", Email: email, Password: password})
			if err != nil {
				return false
			}

			second, err := svc.Refresh(ctx, first.RefreshToken)
			if err != nil {
				t.Logf("FAIL: refresh failed: %v", err)
				return false
			}
			if second.RefreshToken == first.RefreshToken {
				t.Logf("FAIL: refresh token was not rotated")
				return false
			}
			claims, err := svc.ValidateToken(second.AccessToken)
			if err != nil || claims.UserID != first.User.ID {
				t.Logf("FAIL: refreshed access token invalid: %v", err)
				return false
			}

			if _, err := svc.Refresh(ctx, first.RefreshToken); err != ErrInvalidToken {
				t.Logf("FAIL: reused token accepted: %v", err)
				return false
			}
			// reuse revokes every session of the user
			_, err = svc.Refresh(ctx, second.RefreshToken)
			return err == ErrInvalidToken
		},
		gen.RegexMatch(`[a-z]{3,10}@[a-z]{3,8}\.(com|org|net)`),
		gen.RegexMatch(`[A-Za-z0-9]{6,20}`),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	store := memstore.New().Store()
	svc := newTestUserService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Mina", Email: "mina@nana.kr", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Mina", Email: " MINA@nana.kr ", Password: "secret2"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegister_RejectsShortPassword(t *testing.T) {
	svc := newTestUserService(memstore.New().Store())
	_, err := svc.Register(context.Background(), RegisterInput{Name: "Mina", Email: "mina@nana.kr", Password: "12345"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestLogin_Failures(t *testing.T) {
	store := memstore.New().Store()
	svc := newTestUserService(store)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Mina", Email: "mina@nana.kr", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "mina@nana.kr", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@nana.kr", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	disabled := &domain.User{ID: newID(), Name: "Off", Email: "off@nana.kr", PasswordHash: string(hash), Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, disabled))
	_, err = svc.Login(ctx, "off@nana.kr", "secret1")
	assert.ErrorIs(t, err, ErrAccountDisabled)

	require.NoError(t, svc.Logout(ctx, session.RefreshToken))
	_, err = svc.Refresh(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NoError(t, svc.Logout(ctx, "unknown-token"))
}

func TestRefresh_Expired(t *testing.T) {
	store := memstore.New().Store()
	svc := newTestUserService(store)
	ctx := context.Background()

	session, err := svc.Register(ctx, RegisterInput{Name: "Mina", Email: "mina@nana.kr", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, store.RefreshTokens.Create(ctx, &domain.RefreshToken{
		ID:        newID(),
		UserID:    session.User.ID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
	}))
	_, err = svc.Refresh(ctx, "stale")
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_RejectsForeignSecret(t *testing.T) {
	store := memstore.New().Store()
	ctx := context.Background()
	issuer := NewUserService(store.Users, store.RefreshTokens, TokenSettings{Secret: "other", BcryptCost: bcrypt.MinCost}, zap.NewNop())

	session, err := issuer.Register(ctx, RegisterInput{Name: "Mina", Email: "mina@nana.kr", Password: "secret1"})
	require.NoError(t, err)

	_, err = newTestUserService(store).ValidateToken(session.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
