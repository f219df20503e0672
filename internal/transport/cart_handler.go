package transport

import (
	"net/http"

	"nana-store/internal/middleware"
	"nana-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AddToCartRequest adds a product variant to the cart
type AddToCartRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"gte=0,lte=99"`
	Size      string `json:"size" validate:"omitempty,size"`
	Color     string `json:"color" validate:"omitempty,max=50"`
}

// UpdateCartItemRequest sets the quantity of one cart line
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" validate:"required,min=1,lte=99"`
}

// CartHandler serves the authenticated user's cart
type CartHandler struct {
	cartService service.CartService
	respond     *Responder
	logger      *zap.Logger
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService service.CartService, respond *Responder, logger *zap.Logger) *CartHandler {
	return &CartHandler{
		cartService: cartService,
		respond:     respond,
		logger:      logger,
	}
}

// RegisterRoutes registers all cart routes
func (h *CartHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/cart", func(r chi.Router) {
		r.Use(guards.Auth)
		r.Get("/", h.Get)
		r.Post("/", h.Add)
		r.Delete("/", h.Clear)
		r.Put("/{itemId}", h.Update)
		r.Delete("/{itemId}", h.Remove)
	})
}

func (h *CartHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	cart, err := h.cartService.Get(r.Context(), userID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, cart)
}

// Add puts a product in the cart, merging with an existing line of the same variant
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req AddToCartRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	line, err := h.cartService.Add(r.Context(), userID, service.AddToCartInput{
		ProductID: uuid.MustParse(req.ProductID),
		Quantity:  req.Quantity,
		Size:      req.Size,
		Color:     req.Color,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusCreated, line)
}

func (h *CartHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	line, err := h.cartService.UpdateQuantity(r.Context(), userID, itemID, req.Quantity)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, line)
}

func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathID(w, r, "itemId")
	if !ok {
		return
	}

	if err := h.cartService.Remove(r.Context(), userID, itemID); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "item removed from cart"})
}

func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}

	if err := h.cartService.Clear(r.Context(), userID); err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "cart cleared"})
}
