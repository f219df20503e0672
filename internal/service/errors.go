package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("not authorized to access this resource")
	ErrConflict            = errors.New("resource was modified concurrently, please retry")
	ErrProductUnavailable  = errors.New("product is not available")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled at this time")
	ErrInsufficientStock   = errors.New("insufficient inventory")
	ErrEmailTaken          = errors.New("user already exists with this email")
	ErrWishlistDuplicate   = errors.New("product already in wishlist")
)

// InsufficientInventoryError reports a line whose requested quantity exceeds
// what is on hand.
type InsufficientInventoryError struct {
	ProductID   uuid.UUID
	ProductName string
	Requested   int
	Available   int
}

func (e *InsufficientInventoryError) Error() string {
	name := e.ProductName
	if name == "" {
		name = e.ProductID.String()
	}
	return fmt.Sprintf("insufficient inventory for %s", name)
}

func (e *InsufficientInventoryError) Is(target error) bool {
	return target == ErrInsufficientStock
}

func notFound(resource string) error {
	return fmt.Errorf("%s %w", resource, ErrNotFound)
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

func unavailable(productID uuid.UUID) error {
	return fmt.Errorf("%w: %s", ErrProductUnavailable, productID)
}
