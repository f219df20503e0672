package service

import (
	"context"
	"errors"
	"fmt"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// InventoryLedger is the only writer of product stock. Debits are atomic
// conditional decrements, so concurrent orders can never drive a tracked
// quantity below zero.
type InventoryLedger struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewInventoryLedger(products repository.ProductRepository, logger *zap.Logger) *InventoryLedger {
	return &InventoryLedger{products: products, logger: logger}
}

// Debit removes qty units. Products that do not track quantity succeed
// without change.
func (l *InventoryLedger) Debit(ctx context.Context, productID uuid.UUID, qty int) error {
	current, err := l.products.AdjustQuantity(ctx, productID, -qty)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrInsufficientStock):
		return &InsufficientInventoryError{ProductID: productID, Requested: qty, Available: current}
	case errors.Is(err, repository.ErrProductNotFound):
		return unavailable(productID)
	default:
		return fmt.Errorf("failed to debit inventory: %w", err)
	}
}

// Credit returns qty units. There is no upper bound. A product deleted since
// the order was placed is skipped.
func (l *InventoryLedger) Credit(ctx context.Context, productID uuid.UUID, qty int) error {
	_, err := l.products.AdjustQuantity(ctx, productID, qty)
	if errors.Is(err, repository.ErrProductNotFound) {
		l.logger.Warn("Skipping inventory credit for missing product",
			zap.String("product_id", productID.String()),
			zap.Int("quantity", qty),
		)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to credit inventory: %w", err)
	}
	return nil
}

// DebitAll debits every line in order. When a line fails, the lines already
// debited are credited back before the original error is returned.
func (l *InventoryLedger) DebitAll(ctx context.Context, items []domain.OrderItem) error {
	for i, item := range items {
		if err := l.Debit(ctx, item.ProductID, item.Quantity); err != nil {
			var short *InsufficientInventoryError
			if errors.As(err, &short) {
				short.ProductName = item.Name
			}
			l.compensate(ctx, items[:i])
			return err
		}
	}
	return nil
}

// CreditAll credits every line and reports the first failure.
func (l *InventoryLedger) CreditAll(ctx context.Context, items []domain.OrderItem) error {
	var first error
	for _, item := range items {
		if err := l.Credit(ctx, item.ProductID, item.Quantity); err != nil {
			l.logger.Error("Failed to credit inventory",
				zap.String("product_id", item.ProductID.String()),
				zap.Int("quantity", item.Quantity),
				zap.Error(err),
			)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

// compensate is best effort and must run even if the request was cancelled.
func (l *InventoryLedger) compensate(ctx context.Context, debited []domain.OrderItem) {
	if len(debited) == 0 {
		return
	}
	if err := l.CreditAll(context.WithoutCancel(ctx), debited); err != nil {
		l.logger.Error("Inventory compensation incomplete", zap.Error(err))
	}
}
