package service

import (
	"context"
	"testing"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/memstore"
	"nana-store/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newID() uuid.UUID { return uuid.New() }

// clock is a settable time source for order tests
type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

type harness struct {
	store  *repository.Store
	orders OrderService
	ledger *InventoryLedger
	clock  *clock
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := memstore.New().Store()
	return newHarnessWithStore(store)
}

func newHarnessWithStore(store *repository.Store) *harness {
	logger := zap.NewNop()
	seoul, _ := time.LoadLocation("Asia/Seoul")
	c := &clock{now: time.Date(2025, 6, 15, 10, 0, 0, 0, seoul)}
	ledger := NewInventoryLedger(store.Products, logger)
	orders := NewOrderService(
		store,
		NewCatalogGuard(store.Products),
		ledger,
		NewOrderNumberGenerator(store.OrderSequences, "NANA", seoul),
		OrderSettings{Shipping: DefaultShippingPolicy, CancelWindow: domain.CancelWindow, Now: c.Now},
		logger,
	)
	return &harness{store: store, orders: orders, ledger: ledger, clock: c}
}

func (h *harness) addProduct(t *testing.T, name string, price int64, qty int) *domain.Product {
	t.Helper()
	p := &domain.Product{
		ID:        uuid.New(),
		Name:      name,
		Slug:      domain.Slugify(name),
		Price:     price,
		Category:  domain.CategoryFashion,
		Type:      domain.ProductTypeCollection,
		Images:    []domain.ProductImage{{URL: "https://cdn.nana.kr/" + domain.Slugify(name) + ".jpg", IsPrimary: true}},
		Inventory: domain.Inventory{TrackQuantity: true, Quantity: qty, LowStockThreshold: domain.DefaultLowStockThreshold},
		Status:    domain.ProductStatusActive,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, h.store.Products.Create(context.Background(), p))
	return p
}

func (h *harness) quantity(t *testing.T, id uuid.UUID) int {
	t.Helper()
	p, err := h.store.Products.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Inventory.Quantity
}

func testAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:    "Kim Nana",
		Phone:   "010-1234-5678",
		Address: "12 Seongsu-ro",
		City:    "Seoul",
		ZipCode: "04779",
	}
}

func orderInput(lines ...LineItemRequest) CreateOrderInput {
	return CreateOrderInput{
		Items:           lines,
		ShippingAddress: testAddress(),
		PaymentMethod:   domain.PaymentMethodCard,
	}
}
