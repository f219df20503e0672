package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"nana-store/internal/domain"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(name string, price int64, quantity int) *domain.Product {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Slug:        domain.Slugify(name) + "-" + uuid.NewString()[:8],
		Description: "A product used in repository tests",
		Price:       price,
		Category:    domain.CategoryFashion,
		Type:        domain.ProductTypeCollection,
		Images:      []domain.ProductImage{{URL: "https://img.nana.test/p.jpg", IsPrimary: true}},
		Sizes:       []domain.Size{domain.SizeS, domain.SizeM},
		Tags:        []string{"test"},
		Inventory: domain.Inventory{
			TrackQuantity:     true,
			Quantity:          quantity,
			LowStockThreshold: domain.DefaultLowStockThreshold,
		},
		Status:    domain.ProductStatusActive,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Feature: nana-store, Property 15: Product creation preserves attributes
// Validates: Catalog create
func TestProperty_ProductCreationPreservesAttributes(t *testing.T) {
	requireDB(t)
	productRepo := NewProductRepository(testDB)

	properties := gopter.NewProperties(nil)

	properties.Property("creating and retrieving a product preserves all attributes", prop.ForAll(
		func(name string, price int64, quantity int, featured bool) bool {
			ctx := context.Background()

			product := newTestProduct(name, price, quantity)
			product.IsFeatured = featured

			if err := productRepo.Create(ctx, product); err != nil {
				t.Logf("FAIL: Failed to create product: %v", err)
				return false
			}

			retrieved, err := productRepo.FindByID(ctx, product.ID)
			if err != nil {
				t.Logf("FAIL: Failed to retrieve product: %v", err)
				return false
			}

			if retrieved.Name != product.Name || retrieved.Slug != product.Slug {
				t.Logf("FAIL: Name/slug mismatch. Expected %s/%s, got %s/%s", product.Name, product.Slug, retrieved.Name, retrieved.Slug)
				return false
			}
			if retrieved.Price != product.Price {
				t.Logf("FAIL: Price mismatch. Expected %d, got %d", product.Price, retrieved.Price)
				return false
			}
			if retrieved.Inventory != product.Inventory {
				t.Logf("FAIL: Inventory mismatch. Expected %+v, got %+v", product.Inventory, retrieved.Inventory)
				return false
			}
			if retrieved.IsFeatured != featured || len(retrieved.Images) != 1 || len(retrieved.Sizes) != 2 {
				t.Logf("FAIL: Document fields mismatch: %+v", retrieved)
				return false
			}

			_ = productRepo.Delete(ctx, product.ID)
			return true
		},
		gen.RegexMatch(`[A-Za-z0-9 ]{3,50}`),
		gen.Int64Range(0, 2000000),
		gen.IntRange(0, 1000),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProductRepository_UpdateDoesNotTouchQuantity(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	product := newTestProduct("Linen Shirt", 59000, 7)
	require.NoError(t, repo.Create(ctx, product))

	product.Price = 49000
	product.Inventory.Quantity = 999
	require.NoError(t, repo.Update(ctx, product))

	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(49000), got.Price)
	assert.Equal(t, 7, got.Inventory.Quantity)

	assert.ErrorIs(t, repo.Update(ctx, newTestProduct("Missing", 1, 1)), ErrProductNotFound)
}

func TestProductRepository_AdjustQuantity(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	product := newTestProduct("Silk Scarf", 39000, 3)
	require.NoError(t, repo.Create(ctx, product))

	qty, err := repo.AdjustQuantity(ctx, product.ID, -2)
	require.NoError(t, err)
	assert.Equal(t, 1, qty)

	qty, err = repo.AdjustQuantity(ctx, product.ID, -2)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 1, qty)

	qty, err = repo.AdjustQuantity(ctx, product.ID, 5)
	require.NoError(t, err)
	assert.Equal(t, 6, qty)

	_, err = repo.AdjustQuantity(ctx, uuid.New(), -1)
	assert.ErrorIs(t, err, ErrProductNotFound)

	untracked := newTestProduct("Gift Card", 10000, 0)
	untracked.Inventory.TrackQuantity = false
	require.NoError(t, repo.Create(ctx, untracked))
	qty, err = repo.AdjustQuantity(ctx, untracked.ID, -50)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)
}

// Feature: nana-store, Property 14: Concurrent debits never oversell
// Validates: Inventory Ledger debit
func TestProductRepository_ConcurrentDebitsNeverOversell(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	const stock = 5
	product := newTestProduct("Last Units Tote", 89000, stock)
	require.NoError(t, repo.Create(ctx, product))

	var succeeded int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.AdjustQuantity(ctx, product.ID, -1); err == nil {
				atomic.AddInt32(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(stock), succeeded)
	got, err := repo.FindByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Inventory.Quantity)
}

func TestProductRepository_ListFilters(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewProductRepository(testDB)

	tag := uuid.NewString()[:8]
	cheap := newTestProduct("Cheap "+tag, 10000, 1)
	pricey := newTestProduct("Pricey "+tag, 90000, 1)
	draft := newTestProduct("Draft "+tag, 20000, 1)
	draft.Status = domain.ProductStatusDraft
	for _, p := range []*domain.Product{cheap, pricey, draft} {
		require.NoError(t, repo.Create(ctx, p))
	}

	minPrice := int64(15000)
	products, total, err := repo.List(ctx, ProductFilter{
		Search:          tag,
		OnlyPurchasable: true,
		MinPrice:        &minPrice,
		SortBy:          "price",
		SortOrder:       SortOrderAsc,
		Page:            1,
		PageSize:        10,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, pricey.ID, products[0].ID)

	products, total, err = repo.List(ctx, ProductFilter{Search: tag, SortBy: "price", SortOrder: SortOrderDesc, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, products, 2)
	assert.Equal(t, pricey.ID, products[0].ID)
	assert.Equal(t, draft.ID, products[1].ID)
}
