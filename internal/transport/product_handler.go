package transport

import (
	"errors"
	"net/http"
	"strings"

	"nana-store/internal/domain"
	"nana-store/internal/middleware"
	"nana-store/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ProductRequest is the admin create payload
type ProductRequest struct {
	Name              string                `json:"name" validate:"required,max=200"`
	Description       string                `json:"description" validate:"required,max=2000"`
	ShortDescription  string                `json:"short_description" validate:"omitempty,max=300"`
	Price             int64                 `json:"price" validate:"required,gt=0"`
	ComparePrice      int64                 `json:"compare_price" validate:"gte=0"`
	Category          domain.Category       `json:"category" validate:"required,category"`
	Type              domain.ProductType    `json:"type" validate:"required,product_type"`
	Images            []domain.ProductImage `json:"images" validate:"dive"`
	Colors            []domain.ProductColor `json:"colors" validate:"dive"`
	Sizes             []domain.Size         `json:"sizes" validate:"dive,size"`
	Tags              []string              `json:"tags" validate:"dive,max=50"`
	TrackQuantity     *bool                 `json:"track_quantity"`
	Quantity          int                   `json:"quantity" validate:"gte=0"`
	LowStockThreshold *int                  `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	Status            domain.ProductStatus  `json:"status" validate:"omitempty,product_status"`
	IsActive          *bool                 `json:"is_active"`
	IsFeatured        bool                  `json:"is_featured"`
	Badge             domain.Badge          `json:"badge" validate:"omitempty,badge"`
}

// ProductPatchRequest is the admin partial update payload
type ProductPatchRequest struct {
	Name              *string                `json:"name" validate:"omitempty,min=1,max=200"`
	Description       *string                `json:"description" validate:"omitempty,max=2000"`
	ShortDescription  *string                `json:"short_description" validate:"omitempty,max=300"`
	Price             *int64                 `json:"price" validate:"omitempty,gt=0"`
	ComparePrice      *int64                 `json:"compare_price" validate:"omitempty,gte=0"`
	Category          *domain.Category       `json:"category" validate:"omitempty,category"`
	Type              *domain.ProductType    `json:"type" validate:"omitempty,product_type"`
	Images            *[]domain.ProductImage `json:"images"`
	Colors            *[]domain.ProductColor `json:"colors"`
	Sizes             *[]domain.Size         `json:"sizes" validate:"omitempty,dive,size"`
	Tags              *[]string              `json:"tags"`
	TrackQuantity     *bool                  `json:"track_quantity"`
	Quantity          *int                   `json:"quantity" validate:"omitempty,gte=0"`
	LowStockThreshold *int                   `json:"low_stock_threshold" validate:"omitempty,gte=0"`
	Status            *domain.ProductStatus  `json:"status" validate:"omitempty,product_status"`
	IsActive          *bool                  `json:"is_active"`
	IsFeatured        *bool                  `json:"is_featured"`
	Badge             *domain.Badge          `json:"badge" validate:"omitempty,badge"`
}

// ProductListResponse is one page of the public catalog
type ProductListResponse struct {
	Products   []*domain.Product  `json:"products"`
	Pagination service.Pagination `json:"pagination"`
}

// productListQuery holds the listing filters read from the query string
type productListQuery struct {
	Category string `json:"category" validate:"omitempty,category"`
	Type     string `json:"type" validate:"omitempty,product_type"`
	Sort     string `json:"sort" validate:"omitempty,oneof=createdAt price name"`
	Order    string `json:"order" validate:"omitempty,oneof=asc desc"`
	Search   string `json:"search" validate:"omitempty,max=100"`
}

// ProductHandler serves the catalog and its admin maintenance routes
type ProductHandler struct {
	productService service.ProductService
	respond        *Responder
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, respond *Responder, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		respond:        respond,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router, guards Guards) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/featured", h.Featured)
		r.Get("/category/{category}", h.ByCategory)
		r.With(guards.OptionalAuth).Get("/{id}", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(guards.Auth, guards.Admin)
			r.Post("/", h.Create)
			r.Put("/{id}", h.Update)
			r.Delete("/{id}", h.Delete)
		})
	})
}

// List returns a filtered, sorted page of purchasable products
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filters := productListQuery{
		Category: q.Get("category"),
		Type:     q.Get("type"),
		Sort:     q.Get("sort"),
		Order:    strings.ToLower(q.Get("order")),
		Search:   strings.TrimSpace(q.Get("search")),
	}
	if err := middleware.ValidateRequest(&filters); err != nil {
		middleware.RespondWithValidationErrors(w, middleware.FormatValidationErrors(err))
		return
	}
	page, limit, ok := pageParams(w, r, service.MaxProductPageSize)
	if !ok {
		return
	}
	minPrice, maxPrice, err := priceRange(r)
	if err != nil {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{Field: "query", Message: err.Error()}})
		return
	}

	result, err := h.productService.List(r.Context(), service.ProductQuery{
		Category: domain.Category(filters.Category),
		Type:     domain.ProductType(filters.Type),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Search:   filters.Search,
		Sort:     filters.Sort,
		Order:    filters.Order,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, ProductListResponse{
		Products:   result.Products,
		Pagination: result.Pagination,
	})
}

func priceRange(r *http.Request) (*int64, *int64, error) {
	lo, err := queryInt64(r, "min_price")
	if err != nil {
		return nil, nil, err
	}
	hi, err := queryInt64(r, "max_price")
	if err != nil {
		return nil, nil, err
	}
	if lo != nil && hi != nil && *lo > *hi {
		return nil, nil, errors.New("min_price cannot exceed max_price")
	}
	return lo, hi, nil
}

// Featured returns featured purchasable products, newest first
func (h *ProductHandler) Featured(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := pageParams(w, r, service.MaxFeaturedLimit)
	if !ok {
		return
	}

	products, err := h.productService.Featured(r.Context(), limit)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"products": products})
}

// ByCategory returns purchasable products of one category
func (h *ProductHandler) ByCategory(w http.ResponseWriter, r *http.Request) {
	_, limit, ok := pageParams(w, r, service.MaxCategoryLimit)
	if !ok {
		return
	}

	category := domain.Category(chi.URLParam(r, "category"))
	products, err := h.productService.ByCategory(r.Context(), category, limit)
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"category": category,
		"products": products,
	})
}

// Get returns one product. Admins also see drafts and inactive products.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.productService.Get(r.Context(), id, requester(r).IsAdmin())
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Create(r.Context(), service.ProductInput{
		Name:              req.Name,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		Category:          req.Category,
		Type:              req.Type,
		Images:            req.Images,
		Colors:            req.Colors,
		Sizes:             req.Sizes,
		Tags:              req.Tags,
		TrackQuantity:     req.TrackQuantity,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Status:            req.Status,
		IsActive:          req.IsActive,
		IsFeatured:        req.IsFeatured,
		Badge:             req.Badge,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID.String()), zap.String("slug", product.Slug))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update applies a partial product change
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req ProductPatchRequest
	if !h.respond.decode(w, r, &req) {
		return
	}

	product, err := h.productService.Update(r.Context(), id, service.ProductPatch{
		Name:              req.Name,
		Description:       req.Description,
		ShortDescription:  req.ShortDescription,
		Price:             req.Price,
		ComparePrice:      req.ComparePrice,
		Category:          req.Category,
		Type:              req.Type,
		Images:            req.Images,
		Colors:            req.Colors,
		Sizes:             req.Sizes,
		Tags:              req.Tags,
		TrackQuantity:     req.TrackQuantity,
		Quantity:          req.Quantity,
		LowStockThreshold: req.LowStockThreshold,
		Status:            req.Status,
		IsActive:          req.IsActive,
		IsFeatured:        req.IsFeatured,
		Badge:             req.Badge,
	})
	if err != nil {
		h.respond.Error(w, r, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.productService.Delete(r.Context(), id); err != nil {
		h.respond.Error(w, r, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id.String()))
	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}
