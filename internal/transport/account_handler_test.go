package transport

import (
	"net/http"
	"testing"

	"nana-store/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddresses(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("home@example.com")
	other := api.register("other@example.com")

	add := func(name string, isDefault bool) domain.Address {
		rec := api.do(http.MethodPost, "/api/users/addresses", user.AccessToken, AddressRequest{
			Name: name, Phone: "010-0000-0000", Address: "1 Jong-ro", City: "Seoul", ZipCode: "03154", IsDefault: isDefault,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var a domain.Address
		decodeBody(t, rec, &a)
		return a
	}

	first := add("Home", false)
	assert.True(t, first.IsDefault)
	assert.Equal(t, domain.AddressTypeHome, first.Type)
	assert.Equal(t, domain.DefaultCountry, first.Country)

	second := add("Office", true)
	assert.True(t, second.IsDefault)

	rec := api.do(http.MethodGet, "/api/users/addresses", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Addresses []domain.Address `json:"addresses"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Addresses, 2)
	assert.Equal(t, second.ID, list.Addresses[0].ID)
	assert.False(t, list.Addresses[1].IsDefault)

	city := "Busan"
	rec = api.do(http.MethodPut, "/api/users/addresses/"+first.ID.String(), user.AccessToken, AddressPatchRequest{City: &city})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated domain.Address
	decodeBody(t, rec, &updated)
	assert.Equal(t, "Busan", updated.City)
	assert.Equal(t, "Home", updated.Name)

	rec = api.do(http.MethodPut, "/api/users/addresses/"+first.ID.String(), other.AccessToken, AddressPatchRequest{City: &city})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	bad := domain.AddressType("castle")
	rec = api.do(http.MethodPut, "/api/users/addresses/"+first.ID.String(), user.AccessToken, AddressPatchRequest{Type: &bad})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(http.MethodDelete, "/api/users/addresses/"+first.ID.String(), user.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(http.MethodDelete, "/api/users/addresses/"+first.ID.String(), user.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddAddress_Validation(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("home@example.com")

	rec := api.do(http.MethodPost, "/api/users/addresses", user.AccessToken, AddressRequest{Name: "Home"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWishlist(t *testing.T) {
	api := newTestAPI(t)
	user := api.register("wish@example.com")
	p := api.product("Acetate Sunglasses", 98000, 3)
	path := "/api/users/wishlist/" + p.ID.String()

	assert.Equal(t, http.StatusCreated, api.do(http.MethodPost, path, user.AccessToken, nil).Code)

	rec := api.do(http.MethodPost, path, user.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "product already in wishlist", errorOf(t, rec).Message)

	rec = api.do(http.MethodGet, "/api/users/wishlist", user.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Products []domain.Product `json:"products"`
	}
	decodeBody(t, rec, &list)
	require.Len(t, list.Products, 1)
	assert.Equal(t, p.ID, list.Products[0].ID)

	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, path, user.AccessToken, nil).Code)
	assert.Equal(t, http.StatusOK, api.do(http.MethodDelete, path, user.AccessToken, nil).Code)

	rec = api.do(http.MethodPost, "/api/users/wishlist/not-a-uuid", user.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
