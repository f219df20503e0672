package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every valid order status
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Terminal reports whether no customer-facing transition leaves this status
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled || s == OrderStatusRefunded
}

// HoldsStock reports whether an order in this status keeps its items out of
// the catalog stock
func (s OrderStatus) HoldsStock() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

// PaymentStatus is the state of the payment sub-record
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodPaypal       PaymentMethod = "paypal"
	PaymentMethodKakaoPay     PaymentMethod = "kakaopay"
	PaymentMethodNaverPay     PaymentMethod = "naverpay"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentMethodCard, PaymentMethodBankTransfer, PaymentMethodPaypal, PaymentMethodKakaoPay, PaymentMethodNaverPay:
		return true
	}
	return false
}

// Trigger is a customer or fulfilment event that advances an order one step
type Trigger string

const (
	TriggerMarkPaid       Trigger = "markPaid"
	TriggerMarkProcessing Trigger = "markProcessing"
	TriggerMarkShipped    Trigger = "markShipped"
	TriggerMarkDelivered  Trigger = "markDelivered"
)

type transition struct {
	from OrderStatus
	to   OrderStatus
}

var transitions = map[Trigger]transition{
	TriggerMarkPaid:       {from: OrderStatusPending, to: OrderStatusPaid},
	TriggerMarkProcessing: {from: OrderStatusPaid, to: OrderStatusProcessing},
	TriggerMarkShipped:    {from: OrderStatusProcessing, to: OrderStatusShipped},
	TriggerMarkDelivered:  {from: OrderStatusShipped, to: OrderStatusDelivered},
}

func (t Trigger) Valid() bool {
	_, ok := transitions[t]
	return ok
}

// CancelWindow is how long after creation a customer may still cancel
const CancelWindow = 24 * time.Hour

var (
	ErrInvalidTransition = errors.New("transition not allowed from current status")
	ErrUnknownTrigger    = errors.New("unknown order trigger")
)

// OrderItem is a snapshot of a product at order time
type OrderItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	Image     string    `json:"image,omitempty"`
	Price     int64     `json:"price"`
	Quantity  int       `json:"quantity"`
	Size      string    `json:"size,omitempty"`
	Color     string    `json:"color,omitempty"`
	Total     int64     `json:"total"`
}

// ShippingAddress is where an order goes
type ShippingAddress struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
	City         string `json:"city"`
	State        string `json:"state,omitempty"`
	ZipCode      string `json:"zip_code"`
	Country      string `json:"country"`
	Instructions string `json:"instructions,omitempty"`
}

// DefaultCountry is used when a shipping address has none
const DefaultCountry = "South Korea"

type Payment struct {
	Method        PaymentMethod `json:"method"`
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transaction_id,omitempty"`
	PaymentDate   *time.Time    `json:"payment_date,omitempty"`
	RefundAmount  int64         `json:"refund_amount"`
	RefundDate    *time.Time    `json:"refund_date,omitempty"`
}

type Pricing struct {
	Subtotal     int64 `json:"subtotal"`
	ShippingCost int64 `json:"shipping_cost"`
	Tax          int64 `json:"tax"`
	Discount     int64 `json:"discount"`
	Total        int64 `json:"total"`
}

type Tracking struct {
	Carrier           string     `json:"carrier,omitempty"`
	TrackingNumber    string     `json:"tracking_number,omitempty"`
	ShippedDate       *time.Time `json:"shipped_date,omitempty"`
	DeliveredDate     *time.Time `json:"delivered_date,omitempty"`
	EstimatedDelivery *time.Time `json:"estimated_delivery,omitempty"`
}

type OrderNotes struct {
	Customer string `json:"customer,omitempty"`
	Admin    string `json:"admin,omitempty"`
}

type Cancellation struct {
	Reason        string     `json:"reason,omitempty"`
	RequestDate   *time.Time `json:"request_date,omitempty"`
	ProcessedDate *time.Time `json:"processed_date,omitempty"`
	RefundMethod  string     `json:"refund_method,omitempty"`
}

// Order represents a purchase transaction
type Order struct {
	ID              uuid.UUID       `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          uuid.UUID       `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Payment         Payment         `json:"payment"`
	Pricing         Pricing         `json:"pricing"`
	Status          OrderStatus     `json:"status"`
	Tracking        Tracking        `json:"tracking"`
	Notes           OrderNotes      `json:"notes"`
	Cancellation    Cancellation    `json:"cancellation"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Recalculate recomputes subtotal and total from the line items
func (o *Order) Recalculate() int64 {
	var subtotal int64
	for _, item := range o.Items {
		subtotal += item.Total
	}
	o.Pricing.Subtotal = subtotal
	o.Pricing.Total = subtotal + o.Pricing.ShippingCost + o.Pricing.Tax - o.Pricing.Discount
	return o.Pricing.Total
}

// TotalItems is the number of units across all lines
func (o *Order) TotalItems() int {
	n := 0
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// AgeInDays is the number of whole days since the order was placed
func (o *Order) AgeInDays(now time.Time) int {
	return int(now.Sub(o.CreatedAt) / (24 * time.Hour))
}

// CanCancel reports whether the customer may still cancel the order
func (o *Order) CanCancel(now time.Time) bool {
	return CanCancel(o.Status, o.CreatedAt, now)
}

// CanCancel is false once an order has shipped or ended, and otherwise
// true only inside the cancel window.
func CanCancel(status OrderStatus, createdAt, now time.Time) bool {
	return CanCancelWithin(status, createdAt, now, CancelWindow)
}

// CanCancelWithin is CanCancel with a configurable window
func CanCancelWithin(status OrderStatus, createdAt, now time.Time, window time.Duration) bool {
	switch status {
	case OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled, OrderStatusRefunded:
		return false
	}
	return now.Sub(createdAt) < window
}

// Apply advances the order one step and records the step's side effects.
func (o *Order) Apply(trigger Trigger, now time.Time) error {
	t, ok := transitions[trigger]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, trigger)
	}
	if o.Status != t.from {
		return fmt.Errorf("%w: %s requires %s, order is %s", ErrInvalidTransition, trigger, t.from, o.Status)
	}
	o.enter(t.to, now)
	return nil
}

// ForceStatus moves the order to any status regardless of the current one.
// Used by administrative updates.
func (o *Order) ForceStatus(status OrderStatus, note string, now time.Time) {
	o.enter(status, now)
	if note != "" {
		o.Notes.Admin = note
	}
}

// MarkCancelled records a cancellation with the given reason.
func (o *Order) MarkCancelled(reason string, now time.Time) {
	o.Cancellation.Reason = reason
	o.Cancellation.RequestDate = &now
	o.enter(OrderStatusCancelled, now)
}

func (o *Order) enter(status OrderStatus, now time.Time) {
	o.Status = status
	switch status {
	case OrderStatusPaid:
		o.Payment.Status = PaymentStatusCompleted
		o.Payment.PaymentDate = &now
	case OrderStatusShipped:
		o.Tracking.ShippedDate = &now
	case OrderStatusDelivered:
		o.Tracking.DeliveredDate = &now
	case OrderStatusCancelled:
		if o.Cancellation.RequestDate == nil {
			o.Cancellation.RequestDate = &now
		}
		o.Cancellation.ProcessedDate = &now
	}
	o.UpdatedAt = now
}
