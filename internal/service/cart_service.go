package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CartLine is a cart entry priced against the live catalog
type CartLine struct {
	ID        uuid.UUID       `json:"id"`
	Product   *domain.Product `json:"product"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Total     int64           `json:"total"`
	AddedAt   time.Time       `json:"added_at"`
}

type Cart struct {
	Items         []CartLine `json:"items"`
	ItemCount     int        `json:"item_count"`
	TotalQuantity int        `json:"total_quantity"`
	Subtotal      int64      `json:"subtotal"`
	Total         int64      `json:"total"`
}

type AddToCartInput struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     string
}

type CartService interface {
	Get(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Add(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*CartLine, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartLine, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
	RemoveProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewCartService(store *repository.Store, logger *zap.Logger) CartService {
	return &cartService{carts: store.Carts, products: store.Products, logger: logger}
}

// Get prices the cart. Entries whose product is gone or no longer
// purchasable are removed from the stored cart.
func (s *cartService) Get(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	items, err := s.carts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	cart := &Cart{Items: make([]CartLine, 0, len(items))}
	var stale []uuid.UUID
	for _, item := range items {
		product, err := s.products.FindByID(ctx, item.ProductID)
		if err != nil && !errors.Is(err, repository.ErrProductNotFound) {
			return nil, fmt.Errorf("failed to get cart product: %w", err)
		}
		if product == nil || !product.Purchasable() {
			stale = append(stale, item.ProductID)
			continue
		}
		line := newCartLine(item, product)
		cart.Items = append(cart.Items, line)
		cart.TotalQuantity += line.Quantity
		cart.Subtotal += line.Total
	}
	cart.ItemCount = len(cart.Items)
	cart.Total = cart.Subtotal

	if len(stale) > 0 {
		if err := s.carts.DeleteByProducts(ctx, userID, stale); err != nil {
			s.logger.Warn("Failed to prune unavailable cart items",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
		}
	}
	return cart, nil
}

func (s *cartService) Add(ctx context.Context, userID uuid.UUID, input AddToCartInput) (*CartLine, error) {
	if input.Quantity == 0 {
		input.Quantity = 1
	}
	if input.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	product, err := s.purchasable(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.HasStock(input.Quantity) {
		return nil, shortage(product, input.Quantity)
	}

	item, err := s.carts.Add(ctx, &domain.CartItem{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: product.ID,
		Quantity:  input.Quantity,
		Size:      strings.TrimSpace(input.Size),
		Color:     strings.TrimSpace(input.Color),
		AddedAt:   time.Now(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	line := newCartLine(item, product)
	return &line, nil
}

func (s *cartService) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}

	item, err := s.carts.FindByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, notFound("cart item")
		}
		return nil, fmt.Errorf("failed to get cart item: %w", err)
	}

	product, err := s.purchasable(ctx, item.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.HasStock(quantity) {
		return nil, shortage(product, quantity)
	}

	if err := s.carts.UpdateQuantity(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return nil, notFound("cart item")
		}
		return nil, fmt.Errorf("failed to update cart item: %w", err)
	}
	item.Quantity = quantity

	line := newCartLine(item, product)
	return &line, nil
}

func (s *cartService) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.carts.Delete(ctx, userID, itemID); err != nil {
		if errors.Is(err, repository.ErrCartItemNotFound) {
			return notFound("cart item")
		}
		return fmt.Errorf("failed to remove cart item: %w", err)
	}
	return nil
}

func (s *cartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) RemoveProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	if err := s.carts.DeleteByProducts(ctx, userID, productIDs); err != nil {
		return fmt.Errorf("failed to remove products from cart: %w", err)
	}
	return nil
}

// purchasable reports missing and unpurchasable products alike as not found
func (s *cartService) purchasable(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if !product.Purchasable() {
		return nil, notFound("product")
	}
	return product, nil
}

func shortage(product *domain.Product, requested int) error {
	return &InsufficientInventoryError{
		ProductID:   product.ID,
		ProductName: product.Name,
		Requested:   requested,
		Available:   product.Inventory.Quantity,
	}
}

func newCartLine(item *domain.CartItem, product *domain.Product) CartLine {
	return CartLine{
		ID:       item.ID,
		Product:  product,
		Quantity: item.Quantity,
		Size:     item.Size,
		Color:    item.Color,
		Total:    product.Price * int64(item.Quantity),
		AddedAt:  item.AddedAt,
	}
}
