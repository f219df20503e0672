package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/memstore"
	"nana-store/internal/middleware"
	"nana-store/internal/repository"
	"nana-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// testAPI serves every route over a fresh in-memory store
type testAPI struct {
	t      *testing.T
	router chi.Router
	store  *repository.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	logger := zap.NewNop()
	store := memstore.New().Store()

	users := service.NewUserService(store.Users, store.RefreshTokens, service.TokenSettings{
		Secret:     "transport-test-secret",
		BcryptCost: bcrypt.MinCost,
	}, logger)
	orders := service.NewOrderService(
		store,
		service.NewCatalogGuard(store.Products),
		service.NewInventoryLedger(store.Products, logger),
		service.NewOrderNumberGenerator(store.OrderSequences, "NANA", time.UTC),
		service.OrderSettings{},
		logger,
	)

	guards := Guards{
		Auth:         middleware.AuthMiddleware(users, logger),
		OptionalAuth: middleware.OptionalAuthMiddleware(users, logger),
		Admin:        middleware.RequireAdmin(logger),
	}
	respond := NewResponder(logger, false)

	router := chi.NewRouter()
	NewUserHandler(users, respond, logger).RegisterRoutes(router, guards)
	NewProductHandler(service.NewProductService(store.Products, logger), respond, logger).RegisterRoutes(router, guards)
	NewCartHandler(service.NewCartService(store, logger), respond, logger).RegisterRoutes(router, guards)
	NewOrderHandler(orders, respond, logger).RegisterRoutes(router, guards)
	NewAccountHandler(service.NewAccountService(store, logger), respond, logger).RegisterRoutes(router, guards)

	return &testAPI{t: t, router: router, store: store}
}

// do sends a request; body is JSON-encoded unless it is nil
func (a *testAPI) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) middleware.ErrorDetail {
	t.Helper()
	var resp middleware.ErrorResponse
	decodeBody(t, rec, &resp)
	return resp.Error
}

// register signs up a customer and returns their session
func (a *testAPI) register(email string) service.Session {
	a.t.Helper()
	rec := a.do(http.MethodPost, "/api/auth/register", "", RegisterRequest{
		Name:     "Ji-woo Park",
		Email:    email,
		Password: "secret12",
	})
	require.Equal(a.t, http.StatusCreated, rec.Code, rec.Body.String())
	var session service.Session
	decodeBody(a.t, rec, &session)
	return session
}

// admin creates an administrator directly in the store and logs in
func (a *testAPI) admin() string {
	a.t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin1234"), bcrypt.MinCost)
	require.NoError(a.t, err)
	now := time.Now()
	require.NoError(a.t, a.store.Users.Create(context.Background(), &domain.User{
		ID:           uuid.New(),
		Name:         "Admin",
		Email:        "admin@nana.store",
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}))

	rec := a.do(http.MethodPost, "/api/auth/login", "", LoginRequest{Email: "admin@nana.store", Password: "admin1234"})
	require.Equal(a.t, http.StatusOK, rec.Code, rec.Body.String())
	var session service.Session
	decodeBody(a.t, rec, &session)
	return session.AccessToken
}

// product stores an active, stock-tracked product
func (a *testAPI) product(name string, price int64, qty int) *domain.Product {
	a.t.Helper()
	now := time.Now()
	p := &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        domain.Slugify(name),
		Description: name,
		Price:       price,
		Category:    domain.CategoryBeauty,
		Type:        domain.ProductTypeBeauty,
		Inventory:   domain.Inventory{TrackQuantity: true, Quantity: qty, LowStockThreshold: 5},
		Status:      domain.ProductStatusActive,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	require.NoError(a.t, a.store.Products.Create(context.Background(), p))
	return p
}

func (a *testAPI) stock(id uuid.UUID) int {
	a.t.Helper()
	p, err := a.store.Products.FindByID(context.Background(), id)
	require.NoError(a.t, err)
	return p.Inventory.Quantity
}
