package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultCancelReason = "Cancelled by customer"
	maxSaveAttempts     = 3

	DefaultUserOrderLimit  = 10
	DefaultAdminOrderLimit = 50
	MaxOrderLimit          = 100
)

// CreateOrderInput is a validated checkout request
type CreateOrderInput struct {
	Items           []LineItemRequest
	ShippingAddress domain.ShippingAddress
	PaymentMethod   domain.PaymentMethod
	CustomerNote    string
}

// TrackingInput carries optional shipment details for fulfilment steps
type TrackingInput struct {
	Carrier           string
	TrackingNumber    string
	EstimatedDelivery *time.Time
}

// SetStatusInput is an administrative status change
type SetStatusInput struct {
	Status         domain.OrderStatus
	TrackingNumber string
	Carrier        string
	Note           string
}

// Requester identifies the authenticated caller
type Requester struct {
	UserID uuid.UUID
	Role   string
}

func (r Requester) IsAdmin() bool {
	return r.Role == domain.RoleAdmin
}

// Pagination describes one page of a listing
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
	Total int `json:"total"`
}

func newPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{Page: page, Limit: limit, Pages: pages, Total: total}
}

type OrderPage struct {
	Orders     []*domain.Order
	Pagination Pagination
}

// OrderService coordinates checkout, cancellation and fulfilment
type OrderService interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error)
	Get(ctx context.Context, requester Requester, orderID uuid.UUID) (*domain.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderPage, error)
	ListAll(ctx context.Context, status domain.OrderStatus, page, limit int) (*OrderPage, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*domain.Order, error)
	Pay(ctx context.Context, userID, orderID uuid.UUID, transactionID string) (*domain.Order, error)
	Advance(ctx context.Context, orderID uuid.UUID, trigger domain.Trigger, tracking TrackingInput) (*domain.Order, error)
	SetStatus(ctx context.Context, orderID uuid.UUID, input SetStatusInput) (*domain.Order, error)
}

// OrderSettings holds the business rules that come from configuration
type OrderSettings struct {
	Shipping     ShippingPolicy
	CancelWindow time.Duration
	Now          func() time.Time
}

type orderService struct {
	orders   repository.OrderRepository
	carts    repository.CartRepository
	guard    *CatalogGuard
	ledger   *InventoryLedger
	numbers  *OrderNumberGenerator
	settings OrderSettings
	logger   *zap.Logger
}

// NewOrderService creates a new instance of OrderService
func NewOrderService(
	store *repository.Store,
	guard *CatalogGuard,
	ledger *InventoryLedger,
	numbers *OrderNumberGenerator,
	settings OrderSettings,
	logger *zap.Logger,
) OrderService {
	if settings.Now == nil {
		settings.Now = time.Now
	}
	if settings.CancelWindow <= 0 {
		settings.CancelWindow = domain.CancelWindow
	}
	if settings.Shipping == (ShippingPolicy{}) {
		settings.Shipping = DefaultShippingPolicy
	}
	return &orderService{
		orders:   store.Orders,
		carts:    store.Carts,
		guard:    guard,
		ledger:   ledger,
		numbers:  numbers,
		settings: settings,
		logger:   logger,
	}
}

// Create validates the lines, reserves stock and persists a pending order.
// Any failure after the debit credits the stock back.
func (s *orderService) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*domain.Order, error) {
	if !input.PaymentMethod.Valid() {
		return nil, invalid("invalid payment method")
	}

	validated, err := s.guard.ValidateLineItems(ctx, input.Items)
	if err != nil {
		return nil, err
	}

	if err := s.ledger.DebitAll(ctx, validated.Items); err != nil {
		return nil, err
	}

	now := s.settings.Now()
	address := input.ShippingAddress
	if strings.TrimSpace(address.Country) == "" {
		address.Country = domain.DefaultCountry
	}

	order := &domain.Order{
		ID:              uuid.New(),
		UserID:          userID,
		Items:           validated.Items,
		ShippingAddress: address,
		Payment: domain.Payment{
			Method: input.PaymentMethod,
			Status: domain.PaymentStatusPending,
		},
		Pricing: domain.Pricing{
			ShippingCost: s.settings.Shipping.Cost(validated.Subtotal),
		},
		Status:    domain.OrderStatusPending,
		Notes:     domain.OrderNotes{Customer: input.CustomerNote},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	order.Recalculate()

	if err := s.persistNew(ctx, order); err != nil {
		s.ledger.compensate(ctx, validated.Items)
		return nil, err
	}

	if err := s.carts.DeleteByProducts(ctx, userID, validated.ProductIDs()); err != nil {
		s.logger.Warn("Failed to remove ordered products from cart",
			zap.String("user_id", userID.String()),
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("order_number", order.OrderNumber),
		zap.Int64("total", order.Pricing.Total),
	)
	return order, nil
}

// persistNew assigns an order number and stores the order. A number that is
// already taken (a reset counter) is replaced by the next one.
func (s *orderService) persistNew(ctx context.Context, order *domain.Order) error {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		number, err := s.numbers.Next(ctx, order.CreatedAt)
		if err != nil {
			return err
		}
		order.OrderNumber = number

		err = s.orders.Create(ctx, order)
		if err == nil {
			return nil
		}
		if !errors.Is(err, repository.ErrOrderNumberExists) {
			return fmt.Errorf("failed to create order: %w", err)
		}
		s.logger.Warn("Order number collision", zap.String("order_number", number))
	}
	return errors.New("failed to allocate a unique order number")
}

func (s *orderService) load(ctx context.Context, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, notFound("order")
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return order, nil
}

// mutate re-reads the order and applies change until the compare-and-set
// save wins. change sees the latest stored state on every attempt.
func (s *orderService) mutate(ctx context.Context, orderID uuid.UUID, change func(*domain.Order) error) (*domain.Order, error) {
	for attempt := 0; attempt < maxSaveAttempts; attempt++ {
		order, err := s.load(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if err := change(order); err != nil {
			return nil, err
		}

		err = s.orders.Update(ctx, order)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, repository.ErrOrderConflict) {
			return nil, fmt.Errorf("failed to update order: %w", err)
		}
	}
	return nil, ErrConflict
}

func (s *orderService) Get(ctx context.Context, requester Requester, orderID uuid.UUID) (*domain.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != requester.UserID && !requester.IsAdmin() {
		return nil, ErrForbidden
	}
	return order, nil
}

func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID, page, limit int) (*OrderPage, error) {
	return s.list(ctx, repository.OrderFilter{
		UserID:   &userID,
		Page:     page,
		PageSize: clampLimit(limit, DefaultUserOrderLimit, MaxOrderLimit),
	})
}

func (s *orderService) ListAll(ctx context.Context, status domain.OrderStatus, page, limit int) (*OrderPage, error) {
	if status != "" && !status.Valid() {
		return nil, invalid("invalid status")
	}
	return s.list(ctx, repository.OrderFilter{
		Status:   status,
		Page:     page,
		PageSize: clampLimit(limit, DefaultAdminOrderLimit, MaxOrderLimit),
	})
}

func (s *orderService) list(ctx context.Context, filter repository.OrderFilter) (*OrderPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	orders, total, err := s.orders.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return &OrderPage{Orders: orders, Pagination: newPagination(filter.Page, filter.PageSize, total)}, nil
}

// Cancel is the customer cancellation. The status change is saved first and
// stock is credited only by the caller whose save won, so a repeated or
// racing cancel never credits twice.
func (s *orderService) Cancel(ctx context.Context, userID, orderID uuid.UUID, reason string) (*domain.Order, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancelReason
	}

	order, err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		if o.UserID != userID {
			return ErrForbidden
		}
		now := s.settings.Now()
		if !domain.CanCancelWithin(o.Status, o.CreatedAt, now, s.settings.CancelWindow) {
			return ErrOrderNotCancellable
		}
		o.MarkCancelled(reason, now)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.ledger.CreditAll(ctx, order.Items); err != nil {
		s.logger.Error("Order cancelled but inventory was not fully restored",
			zap.String("order_id", order.ID.String()),
			zap.Error(err),
		)
	}

	s.logger.Info("Order cancelled",
		zap.String("order_id", order.ID.String()),
		zap.String("reason", reason),
	)
	return order, nil
}

// Pay records the customer's payment confirmation
func (s *orderService) Pay(ctx context.Context, userID, orderID uuid.UUID, transactionID string) (*domain.Order, error) {
	return s.mutate(ctx, orderID, func(o *domain.Order) error {
		if o.UserID != userID {
			return ErrForbidden
		}
		if err := o.Apply(domain.TriggerMarkPaid, s.settings.Now()); err != nil {
			return err
		}
		o.Payment.TransactionID = transactionID
		return nil
	})
}

// Advance moves an order one step along the fulfilment path
func (s *orderService) Advance(ctx context.Context, orderID uuid.UUID, trigger domain.Trigger, tracking TrackingInput) (*domain.Order, error) {
	if !trigger.Valid() {
		return nil, invalid("unknown trigger")
	}
	order, err := s.mutate(ctx, orderID, func(o *domain.Order) error {
		if err := o.Apply(trigger, s.settings.Now()); err != nil {
			return err
		}
		applyTracking(o, tracking.Carrier, tracking.TrackingNumber)
		if tracking.EstimatedDelivery != nil {
			o.Tracking.EstimatedDelivery = tracking.EstimatedDelivery
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Order advanced",
		zap.String("order_id", order.ID.String()),
		zap.String("trigger", string(trigger)),
		zap.String("status", string(order.Status)),
	)
	return order, nil
}

// SetStatus is the administrative override: any status can be set from any
// other. Cancelling an order that holds stock credits the items back. Moving a
// cancelled order back into fulfilment debits them again and fails when the
// stock is no longer there. Refunds never move stock.
func (s *orderService) SetStatus(ctx context.Context, orderID uuid.UUID, input SetStatusInput) (*domain.Order, error) {
	if !input.Status.Valid() {
		return nil, invalid("invalid status")
	}

	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}

	previous := order.Status
	leavingCancelled := previous == domain.OrderStatusCancelled && input.Status.HoldsStock()
	enteringCancelled := previous.HoldsStock() && input.Status == domain.OrderStatusCancelled

	if leavingCancelled {
		if err := s.ledger.DebitAll(ctx, order.Items); err != nil {
			return nil, err
		}
	}

	applyTracking(order, input.Carrier, input.TrackingNumber)
	order.ForceStatus(input.Status, input.Note, s.settings.Now())

	if err := s.orders.Update(ctx, order); err != nil {
		if leavingCancelled {
			s.ledger.compensate(ctx, order.Items)
		}
		if errors.Is(err, repository.ErrOrderConflict) {
			return nil, ErrConflict
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, notFound("order")
		}
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	if enteringCancelled {
		if err := s.ledger.CreditAll(ctx, order.Items); err != nil {
			s.logger.Error("Order cancelled but inventory was not fully restored",
				zap.String("order_id", order.ID.String()),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Order status set",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)),
	)
	return order, nil
}

func applyTracking(o *domain.Order, carrier, trackingNumber string) {
	if carrier = strings.TrimSpace(carrier); carrier != "" {
		o.Tracking.Carrier = carrier
	}
	if trackingNumber = strings.TrimSpace(trackingNumber); trackingNumber != "" {
		o.Tracking.TrackingNumber = trackingNumber
	}
}
