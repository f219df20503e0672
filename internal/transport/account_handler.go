package transport

import (
	"net/http"

	"nana-store/internal/domain"
	"nana-store/internal/middleware"
	"nana-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AddressRequest is a new address book entry
type AddressRequest struct {
	Type      domain.AddressType `json:"type" validate:"omitempty,address_type"`
	Name      string             `json:"name" validate:"required,max=100"`
	Phone     string             `json:"phone" validate:"required,max=30"`
	Address   string             `json:"address" validate:"required,max=200"`
	City      string             `json:"city" validate:"required,max=100"`
	State     string             `json:"state" validate:"omitempty,max=100"`
	ZipCode   string             `json:"zip_code" validate:"required,max=20"`
	Country   string             `json:"country" validate:"omitempty,max=100"`
	IsDefault bool               `json:"is_default"`
}

// AddressPatchRequest is a partial address update
type AddressPatchRequest struct {
	Type      *domain.AddressType `json:"type" validate:"omitempty,address_type"`
	Name      *string             `json:"name" validate:"omitempty,min=1,max=100"`
	Phone     *string             `json:"phone" validate:"omitempty,min=1,max=30"`
	Address   *string             `json:"address" validate:"omitempty,min=1,max=200"`
	City      *string             `json:"city" validate:"omitempty,min=1,max=100"`
	State     *string             `json:"state" validate:"omitempty,max=100"`
	ZipCode   *string             `json:"zip_code" validate:"omitempty,min=1,max=20"`
	Country   *string             `json:"country" validate:"omitempty,max=100"`
	IsDefault *bool               `json:"is_default"`
}

// AccountHandler serves the caller's address book and wishlist
type AccountHandler struct {
	accountService service.AccountService
	respond        *Responder
	logger         *zap.Logger
}

// NewAccountHandler creates a new AccountHandler
func NewAccountHandler(accountService service.AccountService, respond *Responder, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{
		accountService: accountService,
		respond:        respond,
		logger:         logger,
	}
}

// RegisterRoutes registers address and wishlist routes
func (h *AccountHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/users", func(r chi.Router) {
		r.Use(guards.Auth)

		r.Get("/addresses", h.ListAddresses)
		r.Post("/addresses", h.AddAddress)
		r.Put("/addresses/{addressId}", h.UpdateAddress)
		r.Delete("/addresses/{addressId}", h.DeleteAddress)

		r.Get("/wishlist", h.Wishlist)
		r.Post("/wishlist/{productId}", h.AddToWishlist)
		r.Delete("/wishlist/{productId}", h.RemoveFromWishlist)
	})
}

func (h *AccountHandler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	addresses, err := h.accountService.ListAddresses(r.Context(), userID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"addresses": addresses})
}

func (h *AccountHandler) AddAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req AddressRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	address, err := h.accountService.AddAddress(r.Context(), userID, service.AddressInput{
		Type:      req.Type,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, address)
}

func (h *AccountHandler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	addressID, ok := pathID(w, r, "addressId")
	if !ok {
		return
	}
	var req AddressPatchRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	address, err := h.accountService.UpdateAddress(r.Context(), userID, addressID, service.AddressPatch{
		Type:      req.Type,
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Country:   req.Country,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, address)
}

func (h *AccountHandler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	addressID, ok := pathID(w, r, "addressId")
	if !ok {
		return
	}

	if err := h.accountService.DeleteAddress(r.Context(), userID, addressID); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "address deleted"})
}

// Wishlist lists the caller's saved products that are still purchasable
func (h *AccountHandler) Wishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	products, err := h.accountService.Wishlist(r.Context(), userID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

func (h *AccountHandler) AddToWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}

	if err := h.accountService.AddToWishlist(r.Context(), userID, productID); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, map[string]string{"message": "product added to wishlist"})
}

func (h *AccountHandler) RemoveFromWishlist(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	productID, ok := pathID(w, r, "productId")
	if !ok {
		return
	}

	if err := h.accountService.RemoveFromWishlist(r.Context(), userID, productID); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product removed from wishlist"})
}
