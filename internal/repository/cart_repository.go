package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nana-store/internal/domain"

	"github.com/google/uuid"
)

var ErrCartItemNotFound = errors.New("cart item not found")

// CartRepository stores cart lines. Add merges into an existing line with the
// same product, size and color instead of creating a second one.
type CartRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error)
	FindByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error)
	Add(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	DeleteByProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error
	Clear(ctx context.Context, userID uuid.UUID) error
}

type cartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) CartRepository {
	return &cartRepository{db: db}
}

const cartColumns = `id, user_id, product_id, quantity, size, color, added_at`

func (r *cartRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE user_id = $1 ORDER BY added_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}
	defer rows.Close()

	items := []*domain.CartItem{}
	for rows.Next() {
		item, err := scanCartItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cart items: %w", err)
	}
	return items, nil
}

func (r *cartRepository) FindByID(ctx context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	item, err := scanCartItem(r.db.QueryRowContext(ctx,
		`SELECT `+cartColumns+` FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCartItemNotFound
		}
		return nil, fmt.Errorf("failed to find cart item: %w", err)
	}
	return item, nil
}

func (r *cartRepository) Add(ctx context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart_items (` + cartColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, product_id, size, color)
		DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
		RETURNING ` + cartColumns

	saved, err := scanCartItem(r.db.QueryRowContext(
		ctx,
		query,
		item.ID,
		item.UserID,
		item.ProductID,
		item.Quantity,
		item.Size,
		item.Color,
		item.AddedAt,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to add cart item: %w", err)
	}
	return saved, nil
}

func (r *cartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $3 WHERE id = $1 AND user_id = $2`, itemID, userID, quantity)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	return expectOneRow(result, ErrCartItemNotFound)
}

func (r *cartRepository) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete cart item: %w", err)
	}
	return expectOneRow(result, ErrCartItemNotFound)
}

func (r *cartRepository) DeleteByProducts(ctx context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	ids := make([]string, len(productIDs))
	for i, id := range productIDs {
		ids[i] = id.String()
	}
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND product_id = ANY($2::uuid[])`, userID, ids)
	if err != nil {
		return fmt.Errorf("failed to remove ordered cart items: %w", err)
	}
	return nil
}

func (r *cartRepository) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart_items WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func scanCartItem(row rowScanner) (*domain.CartItem, error) {
	item := &domain.CartItem{}
	err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.Size,
		&item.Color,
		&item.AddedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func expectOneRow(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
