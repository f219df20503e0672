package transport

import (
	"net/http"
	"testing"

	"nana-store/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCart_AddMergeAndTotals(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("cart@example.com")
	serum := api.product("Glow Serum", 45000, 10)
	tote := api.product("Canvas Tote", 29000, 10)

	rec := api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: serum.ID.String(), Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: serum.ID.String(), Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: tote.ID.String()})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(http.MethodGet, "/api/cart", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var cart service.Cart
	decodeBody(t, rec, &cart)

	assert.Equal(t, 2, cart.ItemCount)
	assert.Equal(t, 4, cart.TotalQuantity)
	assert.Equal(t, int64(3*45000+29000), cart.Subtotal)
}

func TestCart_AddRejectsShortStock(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("cart@example.com")
	p := api.product("Limited Balm", 15000, 2)

	rec := api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: p.ID.String(), Quantity: 3})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	detail := errorOf(t, rec)
	assert.Equal(t, float64(2), detail.Details["available"])
	assert.Equal(t, float64(3), detail.Details["requested"])
}

func TestCart_AddUnknownProduct(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("cart@example.com")

	rec := api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCart_UpdateRemoveClear(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("cart@example.com")
	other := api.register("other@example.com")
	p := api.product("Soy Wax Candle", 26000, 5)
	q := api.product("Ceramic Bud Vase", 22000, 5)

	rec := api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: p.ID.String(), Quantity: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	var line service.CartLine
	decodeBody(t, rec, &line)
	itemPath := "/api/cart/" + line.ID.String()

	rec = api.do(http.MethodPut, itemPath, user.AccessToken, UpdateCartItemRequest{Quantity: 4})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeBody(t, rec, &line)
	assert.Equal(t, 4, line.Quantity)
	assert.Equal(t, int64(4*26000), line.Total)

	rec = api.do(http.MethodPut, itemPath, user.AccessToken, UpdateCartItemRequest{Quantity: 6})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodPut, itemPath, other.AccessToken, UpdateCartItemRequest{Quantity: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(http.MethodDelete, itemPath, user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodDelete, itemPath, user.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	api.do(http.MethodPost, "/api/cart", user.AccessToken, AddToCartRequest{ProductID: q.ID.String()})
	rec = api.do(http.MethodDelete, "/api/cart", user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(http.MethodGet, "/api/cart", user.AccessToken, nil)
	var cart service.Cart
	decodeBody(t, rec, &cart)
	assert.Empty(t, cart.Items)
	assert.Equal(t, int64(0), cart.Total)
}

func TestCart_RequiresAuth(t *testing.T) {
	api := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, api.do(http.MethodGet, "/api/cart", "", nil).Code)
}
