package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nana-store/internal/domain"

	"github.com/google/uuid"
)

var ErrAddressNotFound = errors.New("address not found")

// AddressRepository stores a user's address book. Every method is scoped to
// the owning user so one user can never touch another's entries.
type AddressRepository interface {
	List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error)
	Find(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error)
	Create(ctx context.Context, address *domain.Address) error
	Update(ctx context.Context, address *domain.Address) error
	Delete(ctx context.Context, userID, id uuid.UUID) error
	ClearDefault(ctx context.Context, userID uuid.UUID) error
}

type addressRepository struct {
	db *sql.DB
}

func NewAddressRepository(db *sql.DB) AddressRepository {
	return &addressRepository{db: db}
}

const addressColumns = `id, user_id, type, name, phone, address, city, state, zip_code, country, is_default, created_at`

func (r *addressRepository) List(ctx context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list addresses: %w", err)
	}
	defer rows.Close()

	addresses := []*domain.Address{}
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}
	return addresses, nil
}

func (r *addressRepository) Find(ctx context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	a, err := scanAddress(r.db.QueryRowContext(ctx,
		`SELECT `+addressColumns+` FROM addresses WHERE id = $1 AND user_id = $2`, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAddressNotFound
		}
		return nil, fmt.Errorf("failed to find address: %w", err)
	}
	return a, nil
}

func (r *addressRepository) Create(ctx context.Context, a *domain.Address) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO addresses (`+addressColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.UserID, a.Type, a.Name, a.Phone, a.Address, a.City, a.State, a.ZipCode, a.Country, a.IsDefault, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}
	return nil
}

func (r *addressRepository) Update(ctx context.Context, a *domain.Address) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE addresses
		SET type = $3, name = $4, phone = $5, address = $6, city = $7, state = $8,
		    zip_code = $9, country = $10, is_default = $11
		WHERE id = $1 AND user_id = $2`,
		a.ID, a.UserID, a.Type, a.Name, a.Phone, a.Address, a.City, a.State, a.ZipCode, a.Country, a.IsDefault,
	)
	if err != nil {
		return fmt.Errorf("failed to update address: %w", err)
	}
	return expectOneRow(result, ErrAddressNotFound)
}

func (r *addressRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete address: %w", err)
	}
	return expectOneRow(result, ErrAddressNotFound)
}

func (r *addressRepository) ClearDefault(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE addresses SET is_default = FALSE WHERE user_id = $1 AND is_default`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear default address: %w", err)
	}
	return nil
}

func scanAddress(row rowScanner) (*domain.Address, error) {
	a := &domain.Address{}
	err := row.Scan(&a.ID, &a.UserID, &a.Type, &a.Name, &a.Phone, &a.Address, &a.City, &a.State, &a.ZipCode, &a.Country, &a.IsDefault, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}
