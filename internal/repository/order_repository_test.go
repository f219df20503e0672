package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"nana-store/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(userID uuid.UUID) *domain.Order {
	now := time.Now().UTC().Truncate(time.Microsecond)
	order := &domain.Order{
		ID:          uuid.New(),
		OrderNumber: "TEST" + uuid.NewString()[:12],
		UserID:      userID,
		Items: []domain.OrderItem{
			{ProductID: uuid.New(), Name: "Linen Shirt", Price: 59000, Quantity: 2, Total: 118000},
		},
		ShippingAddress: domain.ShippingAddress{Name: "Kim", Phone: "010", Address: "1 Street", City: "Seoul", ZipCode: "04524", Country: domain.DefaultCountry},
		Payment:         domain.Payment{Method: domain.PaymentMethodCard, Status: domain.PaymentStatusPending},
		Status:          domain.OrderStatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	order.Recalculate()
	return order
}

func TestOrderRepository_RoundTrip(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user := newTestUser(t, ctx)

	order := newTestOrder(user.ID)
	require.NoError(t, repo.Create(ctx, order))

	got, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.OrderNumber, got.OrderNumber)
	assert.Equal(t, order.Items, got.Items)
	assert.Equal(t, order.ShippingAddress, got.ShippingAddress)
	assert.Equal(t, int64(118000), got.Pricing.Total)

	dup := newTestOrder(user.ID)
	dup.OrderNumber = order.OrderNumber
	assert.ErrorIs(t, repo.Create(ctx, dup), ErrOrderNumberExists)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderRepository_UpdateIsCompareAndSet(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user := newTestUser(t, ctx)

	order := newTestOrder(user.ID)
	require.NoError(t, repo.Create(ctx, order))

	first, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, order.ID)
	require.NoError(t, err)

	first.MarkCancelled("changed my mind", time.Now())
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.MarkCancelled("again", time.Now())
	assert.ErrorIs(t, repo.Update(ctx, second), ErrOrderConflict)

	missing := newTestOrder(user.ID)
	assert.ErrorIs(t, repo.Update(ctx, missing), ErrOrderNotFound)
}

func TestOrderRepository_ListByUserAndStatus(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewOrderRepository(testDB)
	user := newTestUser(t, ctx)

	for i := 0; i < 3; i++ {
		o := newTestOrder(user.ID)
		o.CreatedAt = o.CreatedAt.Add(time.Duration(i) * time.Minute)
		if i == 2 {
			o.Status = domain.OrderStatusPaid
		}
		require.NoError(t, repo.Create(ctx, o))
	}

	orders, total, err := repo.List(ctx, OrderFilter{UserID: &user.ID, Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, orders, 2)
	assert.Equal(t, domain.OrderStatusPaid, orders[0].Status)

	orders, total, err = repo.List(ctx, OrderFilter{UserID: &user.ID, Status: domain.OrderStatusPaid, Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, orders, 1)
}

func TestOrderSequenceRepository_NextIsUniqueUnderConcurrency(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewOrderSequenceRepository(testDB)
	day := "99" + uuid.NewString()[:4]

	const callers = 30
	results := make(chan int, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := repo.Next(ctx, day)
			if err == nil {
				results <- seq
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[int]bool{}
	for seq := range results {
		assert.False(t, seen[seq], "sequence %d handed out twice", seq)
		seen[seq] = true
	}
	assert.Len(t, seen, callers)
	for i := 1; i <= callers; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}
}

func TestCartRepository_AddMergesSameVariant(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewCartRepository(testDB)
	user := newTestUser(t, ctx)
	product := newTestProduct("Wool Coat", 199000, 10)
	require.NoError(t, NewProductRepository(testDB).Create(ctx, product))

	add := func(qty int, size string) *domain.CartItem {
		item, err := repo.Add(ctx, &domain.CartItem{
			ID: uuid.New(), UserID: user.ID, ProductID: product.ID, Quantity: qty, Size: size, AddedAt: time.Now(),
		})
		require.NoError(t, err)
		return item
	}

	first := add(1, "M")
	merged := add(2, "M")
	other := add(1, "L")

	assert.Equal(t, first.ID, merged.ID)
	assert.Equal(t, 3, merged.Quantity)
	assert.NotEqual(t, first.ID, other.ID)

	items, err := repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	require.NoError(t, repo.DeleteByProducts(ctx, user.ID, []uuid.UUID{product.ID}))
	items, err = repo.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	assert.ErrorIs(t, repo.Delete(ctx, user.ID, uuid.New()), ErrCartItemNotFound)
}

func TestWishlistRepository_DuplicateAndActiveOnly(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewWishlistRepository(testDB)
	products := NewProductRepository(testDB)
	user := newTestUser(t, ctx)

	active := newTestProduct("Active Bag", 129000, 1)
	archived := newTestProduct("Archived Bag", 129000, 1)
	archived.Status = domain.ProductStatusArchived
	require.NoError(t, products.Create(ctx, active))
	require.NoError(t, products.Create(ctx, archived))

	require.NoError(t, repo.Add(ctx, user.ID, active.ID, time.Now()))
	require.NoError(t, repo.Add(ctx, user.ID, archived.ID, time.Now()))
	assert.ErrorIs(t, repo.Add(ctx, user.ID, active.ID, time.Now()), ErrWishlistDuplicate)

	list, err := repo.ListProducts(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, active.ID, list[0].ID)

	require.NoError(t, repo.Remove(ctx, user.ID, active.ID))
	assert.ErrorIs(t, repo.Remove(ctx, user.ID, active.ID), ErrWishlistNotFound)
}

func TestAddressRepository_ScopedToOwner(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	repo := NewAddressRepository(testDB)
	owner := newTestUser(t, ctx)
	stranger := newTestUser(t, ctx)

	addr := &domain.Address{
		ID: uuid.New(), UserID: owner.ID, Type: domain.AddressTypeHome, Name: "Kim", Phone: "010",
		Address: "1 Street", City: "Seoul", ZipCode: "04524", Country: domain.DefaultCountry, IsDefault: true,
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Create(ctx, addr))

	_, err := repo.Find(ctx, stranger.ID, addr.ID)
	assert.ErrorIs(t, err, ErrAddressNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, stranger.ID, addr.ID), ErrAddressNotFound)

	require.NoError(t, repo.ClearDefault(ctx, owner.ID))
	got, err := repo.Find(ctx, owner.ID, addr.ID)
	require.NoError(t, err)
	assert.False(t, got.IsDefault)
}
