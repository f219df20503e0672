package repository

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// Store bundles every repository the services need. The Postgres and the
// in-memory backends both produce one.
type Store struct {
	Users          UserRepository
	RefreshTokens  RefreshTokenRepository
	Products       ProductRepository
	Orders         OrderRepository
	OrderSequences OrderSequenceRepository
	Carts          CartRepository
	Addresses      AddressRepository
	Wishlists      WishlistRepository
}

// NewStore wires the Postgres repositories over a single connection pool
func NewStore(db *sql.DB) *Store {
	return &Store{
		Users:          NewUserRepository(db),
		RefreshTokens:  NewRefreshTokenRepository(db),
		Products:       NewProductRepository(db),
		Orders:         NewOrderRepository(db),
		OrderSequences: NewOrderSequenceRepository(db),
		Carts:          NewCartRepository(db),
		Addresses:      NewAddressRepository(db),
		Wishlists:      NewWishlistRepository(db),
	}
}

// Offset converts a 1-based page into a row offset
func Offset(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * pageSize
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
