package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"nana-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrWishlistDuplicate = errors.New("product already in wishlist")
	ErrWishlistNotFound  = errors.New("product not in wishlist")
)

type WishlistRepository interface {
	Add(ctx context.Context, userID, productID uuid.UUID, at time.Time) error
	Remove(ctx context.Context, userID, productID uuid.UUID) error
	// ListProducts returns the wishlisted products that are still active
	ListProducts(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error)
}

type wishlistRepository struct {
	db *sql.DB
}

func NewWishlistRepository(db *sql.DB) WishlistRepository {
	return &wishlistRepository{db: db}
}

func (r *wishlistRepository) Add(ctx context.Context, userID, productID uuid.UUID, at time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO wishlist_items (user_id, product_id, added_at) VALUES ($1, $2, $3)`, userID, productID, at)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrWishlistDuplicate
		}
		return fmt.Errorf("failed to add wishlist item: %w", err)
	}
	return nil
}

func (r *wishlistRepository) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`, userID, productID)
	if err != nil {
		return fmt.Errorf("failed to remove wishlist item: %w", err)
	}
	return expectOneRow(result, ErrWishlistNotFound)
}

func (r *wishlistRepository) ListProducts(ctx context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	query := `
		SELECT ` + prefixed("p.", productColumnList) + `
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1 AND p.is_active = TRUE AND p.status = 'active'
		ORDER BY w.added_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wishlist: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wishlist product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wishlist: %w", err)
	}
	return products, nil
}
