package transport

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"nana-store/internal/domain"
	"nana-store/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestResponder_StatusMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: quantity must be at least 1", service.ErrInvalidInput), http.StatusBadRequest},
		{"not found", fmt.Errorf("order %w", service.ErrNotFound), http.StatusNotFound},
		{"forbidden", service.ErrForbidden, http.StatusForbidden},
		{"conflict", service.ErrConflict, http.StatusConflict},
		{"email taken", service.ErrEmailTaken, http.StatusConflict},
		{"bad transition", fmt.Errorf("%w: markShipped requires processing", domain.ErrInvalidTransition), http.StatusConflict},
		{"unavailable", fmt.Errorf("%w: x", service.ErrProductUnavailable), http.StatusBadRequest},
		{"not cancellable", service.ErrOrderNotCancellable, http.StatusBadRequest},
		{"wishlist duplicate", service.ErrWishlistDuplicate, http.StatusBadRequest},
		{"bad credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"disabled", service.ErrAccountDisabled, http.StatusUnauthorized},
		{"invalid token", service.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", service.ErrTokenExpired, http.StatusUnauthorized},
		{"unexpected", errors.New("connection reset"), http.StatusInternalServerError},
	}

	respond := NewResponder(zap.NewNop(), false)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			respond.Error(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestResponder_InvalidInputMessageDropsPrefix(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResponder(zap.NewNop(), false).Error(rec, httptest.NewRequest(http.MethodGet, "/", nil),
		fmt.Errorf("%w: invalid category", service.ErrInvalidInput))

	assert.Equal(t, "invalid category", errorOf(t, rec).Message)
}

func TestResponder_InsufficientInventoryDetails(t *testing.T) {
	id := uuid.New()
	rec := httptest.NewRecorder()
	NewResponder(zap.NewNop(), false).Error(rec, httptest.NewRequest(http.MethodPost, "/api/orders", nil),
		fmt.Errorf("failed to reserve: %w", &service.InsufficientInventoryError{ProductID: id, ProductName: "Glow Serum", Requested: 4, Available: 1}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	detail := errorOf(t, rec)
	assert.Equal(t, "insufficient inventory for Glow Serum", detail.Message)
	assert.Equal(t, id.String(), detail.Details["product_id"])
	assert.Equal(t, float64(1), detail.Details["available"])
}

func TestResponder_InternalErrorsHiddenOutsideDevelopment(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	boom := errors.New("pq: relation does not exist")

	rec := httptest.NewRecorder()
	NewResponder(zap.NewNop(), false).Error(rec, req, boom)
	detail := errorOf(t, rec)
	assert.Equal(t, "internal server error", detail.Message)
	assert.Nil(t, detail.Details)

	rec = httptest.NewRecorder()
	NewResponder(zap.NewNop(), true).Error(rec, req, boom)
	assert.Equal(t, boom.Error(), errorOf(t, rec).Details["error"])
}
