package transport

import (
	"net/http"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/middleware"
	"nana-store/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderItemRequest is one requested checkout line
type OrderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1,lte=99"`
	Size      string `json:"size" validate:"omitempty,size"`
	Color     string `json:"color" validate:"omitempty,max=50"`
}

// ShippingAddressRequest is the delivery address of an order
type ShippingAddressRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Address      string `json:"address" validate:"required,max=200"`
	City         string `json:"city" validate:"required,max=100"`
	State        string `json:"state" validate:"omitempty,max=100"`
	ZipCode      string `json:"zip_code" validate:"required,max=20"`
	Country      string `json:"country" validate:"omitempty,max=100"`
	Instructions string `json:"instructions" validate:"omitempty,max=500"`
}

// CreateOrderRequest is the checkout payload
type CreateOrderRequest struct {
	Items           []OrderItemRequest     `json:"items" validate:"required,min=1,max=50,dive"`
	ShippingAddress ShippingAddressRequest `json:"shipping_address"`
	PaymentMethod   domain.PaymentMethod   `json:"payment_method" validate:"required,payment_method"`
	Notes           string                 `json:"notes" validate:"omitempty,max=500"`
}

// CancelOrderRequest optionally explains a cancellation
type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

// PayOrderRequest confirms payment of a pending order
type PayOrderRequest struct {
	TransactionID string `json:"transaction_id" validate:"omitempty,max=100"`
}

// SetStatusRequest is the administrative status override
type SetStatusRequest struct {
	Status         domain.OrderStatus `json:"status" validate:"required,order_status"`
	TrackingNumber string             `json:"tracking_number" validate:"omitempty,max=100"`
	Carrier        string             `json:"carrier" validate:"omitempty,max=100"`
	Note           string             `json:"note" validate:"omitempty,max=1000"`
}

// AdvanceOrderRequest moves an order one fulfilment step
type AdvanceOrderRequest struct {
	Trigger           domain.Trigger `json:"trigger" validate:"required,order_trigger"`
	Carrier           string         `json:"carrier" validate:"omitempty,max=100"`
	TrackingNumber    string         `json:"tracking_number" validate:"omitempty,max=100"`
	EstimatedDelivery *time.Time     `json:"estimated_delivery"`
}

// OrderListResponse is one page of orders
type OrderListResponse struct {
	Orders     []*domain.Order    `json:"orders"`
	Pagination service.Pagination `json:"pagination"`
}

// OrderHandler serves checkout, order history and fulfilment
type OrderHandler struct {
	orderService service.OrderService
	respond      *Responder
	logger       *zap.Logger
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(orderService service.OrderService, respond *Responder, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		respond:      respond,
		logger:       logger,
	}
}

// RegisterRoutes registers all order routes
func (h *OrderHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Use(guards.Auth)
		r.Post("/", h.Create)
		r.Get("/", h.List)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/cancel", h.Cancel)
		r.Put("/{id}/pay", h.Pay)

		r.Group(func(r chi.Router) {
			r.Use(guards.Admin)
			r.Get("/admin/all", h.ListAll)
			r.Put("/{id}/status", h.SetStatus)
			r.Post("/{id}/advance", h.Advance)
		})
	})
}

// Create places an order for the caller
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	lines := make([]service.LineItemRequest, len(req.Items))
	for i, item := range req.Items {
		lines[i] = service.LineItemRequest{
			ProductID: uuid.MustParse(item.ProductID),
			Quantity:  item.Quantity,
			Size:      item.Size,
			Color:     item.Color,
		}
	}
	addr := req.ShippingAddress
	order, err := h.orderService.Create(r.Context(), userID, service.CreateOrderInput{
		Items: lines,
		ShippingAddress: domain.ShippingAddress{
			Name:         addr.Name,
			Phone:        addr.Phone,
			Address:      addr.Address,
			City:         addr.City,
			State:        addr.State,
			ZipCode:      addr.ZipCode,
			Country:      addr.Country,
			Instructions: addr.Instructions,
		},
		PaymentMethod: req.PaymentMethod,
		CustomerNote:  req.Notes,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, order)
}

// List returns the caller's orders, newest first
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	page, limit, ok := pageParams(w, r, service.MaxOrderLimit)
	if !ok {
		return
	}

	result, err := h.orderService.ListForUser(r.Context(), userID, page, limit)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{Orders: result.Orders, Pagination: result.Pagination})
}

// ListAll returns every order, optionally filtered by status
func (h *OrderHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	page, limit, ok := pageParams(w, r, service.MaxOrderLimit)
	if !ok {
		return
	}

	status := domain.OrderStatus(r.URL.Query().Get("status"))
	result, err := h.orderService.ListAll(r.Context(), status, page, limit)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, OrderListResponse{Orders: result.Orders, Pagination: result.Pagination})
}

// Get returns one order to its owner or an admin
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	order, err := h.orderService.Get(r.Context(), requester(r), orderID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Cancel cancels the caller's order while it is still cancellable
func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req CancelOrderRequest
	if !h.respond.decodeOptional(w, r, &req) {
		return
	}

	order, err := h.orderService.Cancel(r.Context(), userID, orderID, req.Reason)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

func (h *OrderHandler) Pay(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req PayOrderRequest
	if !h.respond.decodeOptional(w, r, &req) {
		return
	}

	order, err := h.orderService.Pay(r.Context(), userID, orderID, req.TransactionID)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// SetStatus applies an administrative status override
func (h *OrderHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req SetStatusRequest
	if !h.respond.decode(w, r, &req) {
		return
	}
	admin, _ := middleware.GetUserID(r.Context())
	h.logger.Info("Admin status override requested",
		zap.String("order_id", orderID.String()),
		zap.String("admin_id", admin.String()),
		zap.String("status", string(req.Status)),
	)

	order, err := h.orderService.SetStatus(r.Context(), orderID, service.SetStatusInput{
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		Carrier:        req.Carrier,
		Note:           req.Note,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}

// Advance applies one fulfilment trigger
func (h *OrderHandler) Advance(w http.ResponseWriter, r *http.Request) {
	orderID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req AdvanceOrderRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	order, err := h.orderService.Advance(r.Context(), orderID, req.Trigger, service.TrackingInput{
		Carrier:           req.Carrier,
		TrackingNumber:    req.TrackingNumber,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, order)
}
