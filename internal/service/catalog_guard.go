package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxParallelLookups bounds concurrent product reads for one order
const maxParallelLookups = 8

// LineItemRequest is one requested order line before validation
type LineItemRequest struct {
	ProductID uuid.UUID
	Quantity  int
	Size      string
	Color     string
}

// ValidatedItems is the priced snapshot of a set of requested lines
type ValidatedItems struct {
	Items    []domain.OrderItem
	Subtotal int64
}

// ProductIDs lists the distinct products in the snapshot
func (v *ValidatedItems) ProductIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(v.Items))
	ids := make([]uuid.UUID, 0, len(v.Items))
	for _, item := range v.Items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}
	return ids
}

// CatalogGuard checks requested lines against the live catalog. It only
// reads; nothing is reserved until the inventory ledger debits.
type CatalogGuard struct {
	products repository.ProductRepository
}

func NewCatalogGuard(products repository.ProductRepository) *CatalogGuard {
	return &CatalogGuard{products: products}
}

// ValidateLineItems resolves every line to a purchasable product, checks
// stock against the summed quantity per product and builds the snapshots.
// Errors are reported for the first offending line in request order.
func (g *CatalogGuard) ValidateLineItems(ctx context.Context, lines []LineItemRequest) (*ValidatedItems, error) {
	if len(lines) == 0 {
		return nil, invalid("order must have at least one item")
	}
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, invalid("quantity must be at least 1")
		}
	}

	products, err := g.fetch(ctx, lines)
	if err != nil {
		return nil, err
	}

	requested := make(map[uuid.UUID]int, len(products))
	for _, line := range lines {
		requested[line.ProductID] += line.Quantity
	}

	result := &ValidatedItems{Items: make([]domain.OrderItem, 0, len(lines))}
	for _, line := range lines {
		product := products[line.ProductID]
		if product == nil || !product.Purchasable() {
			return nil, unavailable(line.ProductID)
		}
		if !product.HasStock(requested[line.ProductID]) {
			return nil, &InsufficientInventoryError{
				ProductID:   product.ID,
				ProductName: product.Name,
				Requested:   requested[line.ProductID],
				Available:   product.Inventory.Quantity,
			}
		}

		total := product.Price * int64(line.Quantity)
		result.Items = append(result.Items, domain.OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Image:     product.PrimaryImage(),
			Price:     product.Price,
			Quantity:  line.Quantity,
			Size:      line.Size,
			Color:     line.Color,
			Total:     total,
		})
		result.Subtotal += total
	}

	return result, nil
}

// fetch loads each distinct product once. Missing products map to nil.
func (g *CatalogGuard) fetch(ctx context.Context, lines []LineItemRequest) (map[uuid.UUID]*domain.Product, error) {
	products := make(map[uuid.UUID]*domain.Product, len(lines))
	var mu sync.Mutex

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxParallelLookups)

	for _, line := range lines {
		id := line.ProductID
		mu.Lock()
		_, queued := products[id]
		if !queued {
			products[id] = nil
		}
		mu.Unlock()
		if queued {
			continue
		}

		eg.Go(func() error {
			product, err := g.products.FindByID(egCtx, id)
			if err != nil {
				if errors.Is(err, repository.ErrProductNotFound) {
					return nil
				}
				return fmt.Errorf("failed to load product %s: %w", id, err)
			}
			mu.Lock()
			products[id] = product
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return products, nil
}
