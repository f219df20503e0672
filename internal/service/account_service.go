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

// AddressInput creates an address book entry
type AddressInput struct {
	Type      domain.AddressType
	Name      string
	Phone     string
	Address   string
	City      string
	State     string
	ZipCode   string
	Country   string
	IsDefault bool
}

// AddressPatch is a partial address update; nil fields are kept
type AddressPatch struct {
	Type      *domain.AddressType
	Name      *string
	Phone     *string
	Address   *string
	City      *string
	State     *string
	ZipCode   *string
	Country   *string
	IsDefault *bool
}

// AccountService manages a user's address book and wishlist
type AccountService interface {
	ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*domain.Address, error)
	UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, patch AddressPatch) (*domain.Address, error)
	DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error

	Wishlist(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error)
	AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error
	RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error
}

type accountService struct {
	addresses repository.AddressRepository
	wishlists repository.WishlistRepository
	products  repository.ProductRepository
	logger    *zap.Logger
}

func NewAccountService(store *repository.Store, logger *zap.Logger) AccountService {
	return &accountService{
		addresses: store.Addresses,
		wishlists: store.Wishlists,
		products:  store.Products,
		logger:    logger,
	}
}

func (s *accountService) ListAddresses(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	addresses, err := s.addresses.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	return addresses, nil
}

// AddAddress stores a new address. The first address a user adds is the
// default, and a new default replaces the previous one.
func (s *accountService) AddAddress(ctx context.Context, userID uuid.UUID, input AddressInput) (*domain.Address, error) {
	existing, err := s.addresses.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}

	address := &domain.Address{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      input.Type,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		City:      strings.TrimSpace(input.City),
		State:     strings.TrimSpace(input.State),
		ZipCode:   strings.TrimSpace(input.ZipCode),
		Country:   strings.TrimSpace(input.Country),
		IsDefault: input.IsDefault || len(existing) == 0,
		CreatedAt: time.Now(),
	}
	if address.Type == "" {
		address.Type = domain.AddressTypeHome
	}
	if address.Country == "" {
		address.Country = domain.DefaultCountry
	}
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	if address.IsDefault {
		if err := s.addresses.ClearDefault(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to clear default address: %w", err)
		}
	}
	if err := s.addresses.Create(ctx, address); err != nil {
		return nil, fmt.Errorf("failed to create address: %w", err)
	}
	return address, nil
}

func (s *accountService) UpdateAddress(ctx context.Context, userID, addressID uuid.UUID, patch AddressPatch) (*domain.Address, error) {
	address, err := s.addresses.Find(ctx, userID, addressID)
	if err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, notFound("address")
		}
		return nil, fmt.Errorf("failed to get address: %w", err)
	}

	applyAddressPatch(address, patch)
	if err := validateAddress(address); err != nil {
		return nil, err
	}

	if patch.IsDefault != nil && *patch.IsDefault {
		if err := s.addresses.ClearDefault(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to clear default address: %w", err)
		}
	}
	if err := s.addresses.Update(ctx, address); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return nil, notFound("address")
		}
		return nil, fmt.Errorf("failed to update address: %w", err)
	}
	return address, nil
}

func (s *accountService) DeleteAddress(ctx context.Context, userID, addressID uuid.UUID) error {
	if err := s.addresses.Delete(ctx, userID, addressID); err != nil {
		if errors.Is(err, repository.ErrAddressNotFound) {
			return notFound("address")
		}
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return nil
}

func (s *accountService) Wishlist(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	products, err := s.wishlists.ListProducts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wishlist: %w", err)
	}
	return products, nil
}

func (s *accountService) AddToWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return notFound("product")
		}
		return fmt.Errorf("failed to get product: %w", err)
	}
	if !product.Purchasable() {
		return notFound("product")
	}

	if err := s.wishlists.Add(ctx, userID, productID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrWishlistDuplicate) {
			return ErrWishlistDuplicate
		}
		return fmt.Errorf("failed to add to wishlist: %w", err)
	}
	return nil
}

// RemoveFromWishlist succeeds whether or not the product was on the list
func (s *accountService) RemoveFromWishlist(ctx context.Context, userID, productID uuid.UUID) error {
	err := s.wishlists.Remove(ctx, userID, productID)
	if err != nil && !errors.Is(err, repository.ErrWishlistNotFound) {
		return fmt.Errorf("failed to remove from wishlist: %w", err)
	}
	return nil
}

func applyAddressPatch(a *domain.Address, patch AddressPatch) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&a.Name, patch.Name)
	set(&a.Phone, patch.Phone)
	set(&a.Address, patch.Address)
	set(&a.City, patch.City)
	set(&a.State, patch.State)
	set(&a.ZipCode, patch.ZipCode)
	set(&a.Country, patch.Country)
	if patch.Type != nil {
		a.Type = *patch.Type
	}
	if patch.IsDefault != nil {
		a.IsDefault = *patch.IsDefault
	}
}

func validateAddress(a *domain.Address) error {
	switch {
	case !a.Type.Valid():
		return invalid("invalid address type")
	case a.Name == "":
		return invalid("name is required")
	case a.Phone == "":
		return invalid("phone is required")
	case a.Address == "":
		return invalid("address is required")
	case a.City == "":
		return invalid("city is required")
	case a.ZipCode == "":
		return invalid("zip code is required")
	}
	return nil
}
