package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nana-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderConflict     = errors.New("order was modified concurrently")
	ErrOrderNumberExists = errors.New("order number already exists")
)

// OrderFilter selects a page of orders. A nil UserID lists every user.
type OrderFilter struct {
	UserID   *uuid.UUID
	Status   domain.OrderStatus
	Page     int
	PageSize int
}

// OrderRepository defines the interface for order data access.
// Update is a compare-and-set on Version: it fails with ErrOrderConflict
// when the stored version differs and bumps the version on success.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	Update(ctx context.Context, order *domain.Order) error
	List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error)
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

const orderColumns = `id, order_number, user_id, items, shipping_address, payment, pricing,
	status, tracking, notes, cancellation, version, created_at, updated_at`

type orderDocs struct {
	items, address, payment, pricing, tracking, notes, cancellation []byte
}

func marshalOrderDocs(o *domain.Order) (orderDocs, error) {
	var docs orderDocs
	var err error
	if docs.items, err = marshalList(o.Items); err != nil {
		return docs, fmt.Errorf("failed to encode order items: %w", err)
	}
	for _, d := range []struct {
		dst *[]byte
		src interface{}
	}{
		{&docs.address, o.ShippingAddress},
		{&docs.payment, o.Payment},
		{&docs.pricing, o.Pricing},
		{&docs.tracking, o.Tracking},
		{&docs.notes, o.Notes},
		{&docs.cancellation, o.Cancellation},
	} {
		if *d.dst, err = json.Marshal(d.src); err != nil {
			return docs, fmt.Errorf("failed to encode order document: %w", err)
		}
	}
	return docs, nil
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	docs, err := marshalOrderDocs(order)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(
		ctx,
		query,
		order.ID,
		order.OrderNumber,
		order.UserID,
		docs.items,
		docs.address,
		docs.payment,
		docs.pricing,
		order.Status,
		docs.tracking,
		docs.notes,
		docs.cancellation,
		order.Version,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrOrderNumberExists
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order by ID: %w", err)
	}
	return order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *domain.Order) error {
	docs, err := marshalOrderDocs(order)
	if err != nil {
		return err
	}

	query := `
		UPDATE orders
		SET items = $3, shipping_address = $4, payment = $5, pricing = $6, status = $7,
		    tracking = $8, notes = $9, cancellation = $10, updated_at = $11, version = version + 1
		WHERE id = $1 AND version = $2
		RETURNING version
	`
	var version int
	err = r.db.QueryRowContext(
		ctx,
		query,
		order.ID,
		order.Version,
		docs.items,
		docs.address,
		docs.payment,
		docs.pricing,
		order.Status,
		docs.tracking,
		docs.notes,
		docs.cancellation,
		order.UpdatedAt,
	).Scan(&version)
	if err == nil {
		order.Version = version
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to update order: %w", err)
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, order.ID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check order: %w", err)
	}
	if !exists {
		return ErrOrderNotFound
	}
	return ErrOrderConflict
}

// List returns orders newest first with the total count for the filter
func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]*domain.Order, int, error) {
	where := "WHERE 1=1"
	args := []interface{}{}
	if filter.UserID != nil {
		args = append(args, *filter.UserID)
		where += fmt.Sprintf(" AND user_id = $%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	args = append(args, filter.PageSize, Offset(filter.Page, filter.PageSize))
	query := fmt.Sprintf(`
		SELECT %s FROM orders %s
		ORDER BY created_at DESC, id
		LIMIT $%d OFFSET $%d
	`, orderColumns, where, len(args)-1, len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating orders: %w", err)
	}
	return orders, total, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	order := &domain.Order{}
	var docs orderDocs
	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.UserID,
		&docs.items,
		&docs.address,
		&docs.payment,
		&docs.pricing,
		&order.Status,
		&docs.tracking,
		&docs.notes,
		&docs.cancellation,
		&order.Version,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, doc := range []struct {
		raw []byte
		dst interface{}
	}{
		{docs.items, &order.Items},
		{docs.address, &order.ShippingAddress},
		{docs.payment, &order.Payment},
		{docs.pricing, &order.Pricing},
		{docs.tracking, &order.Tracking},
		{docs.notes, &order.Notes},
		{docs.cancellation, &order.Cancellation},
	} {
		if len(doc.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(doc.raw, doc.dst); err != nil {
			return nil, fmt.Errorf("failed to decode order document: %w", err)
		}
	}
	return order, nil
}
