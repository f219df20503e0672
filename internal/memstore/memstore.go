// Package memstore is an in-memory implementation of the repository
// interfaces. A single DB value is created at process start and shared by
// every request; all access goes through its mutex.
package memstore

import (
	"strconv"
	"sync"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
)

type wishKey struct {
	userID    uuid.UUID
	productID uuid.UUID
}

// DB holds every collection of the in-memory store
type DB struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*domain.User
	refreshTokens map[string]*domain.RefreshToken
	products      map[uuid.UUID]*domain.Product
	orders        map[uuid.UUID]*domain.Order
	sequences     map[string]int
	cartItems     map[uuid.UUID]*domain.CartItem
	addresses     map[uuid.UUID]*domain.Address
	wishlist      map[wishKey]time.Time
}

// New returns an empty store
func New() *DB {
	return &DB{
		users:         make(map[uuid.UUID]*domain.User),
		refreshTokens: make(map[string]*domain.RefreshToken),
		products:      make(map[uuid.UUID]*domain.Product),
		orders:        make(map[uuid.UUID]*domain.Order),
		sequences:     make(map[string]int),
		cartItems:     make(map[uuid.UUID]*domain.CartItem),
		addresses:     make(map[uuid.UUID]*domain.Address),
		wishlist:      make(map[wishKey]time.Time),
	}
}

// Store exposes the DB through the repository interfaces
func (db *DB) Store() *repository.Store {
	return &repository.Store{
		Users:          &userRepo{db},
		RefreshTokens:  &refreshTokenRepo{db},
		Products:       &productRepo{db},
		Orders:         &orderRepo{db},
		OrderSequences: &sequenceRepo{db},
		Carts:          &cartRepo{db},
		Addresses:      &addressRepo{db},
		Wishlists:      &wishlistRepo{db},
	}
}

// Health mirrors the database service health report
func (db *DB) Health() map[string]string {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return map[string]string{
		"status":   "up",
		"backend":  "memory",
		"products": strconv.Itoa(len(db.products)),
		"orders":   strconv.Itoa(len(db.orders)),
	}
}

func cloneProduct(p *domain.Product) *domain.Product {
	c := *p
	c.Images = append([]domain.ProductImage(nil), p.Images...)
	c.Colors = append([]domain.ProductColor(nil), p.Colors...)
	c.Sizes = append([]domain.Size(nil), p.Sizes...)
	c.Tags = append([]string(nil), p.Tags...)
	return &c
}

func cloneOrder(o *domain.Order) *domain.Order {
	c := *o
	c.Items = append([]domain.OrderItem(nil), o.Items...)
	return &c
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}
