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
	DefaultProductPageSize = 20
	MaxProductPageSize     = 100
	DefaultFeaturedLimit   = 8
	MaxFeaturedLimit       = 20
	DefaultCategoryLimit   = 20
	MaxCategoryLimit       = 50
)

// ProductQuery is a public catalog listing request
type ProductQuery struct {
	Category domain.Category
	Type     domain.ProductType
	MinPrice *int64
	MaxPrice *int64
	Search   string
	Sort     string
	Order    string
	Page     int
	Limit    int
}

type ProductPage struct {
	Products   []*domain.Product
	Pagination Pagination
}

// ProductInput creates a product. Optional flags default when nil.
type ProductInput struct {
	Name              string
	Description       string
	ShortDescription  string
	Price             int64
	ComparePrice      int64
	Category          domain.Category
	Type              domain.ProductType
	Images            []domain.ProductImage
	Colors            []domain.ProductColor
	Sizes             []domain.Size
	Tags              []string
	TrackQuantity     *bool
	Quantity          int
	LowStockThreshold *int
	Status            domain.ProductStatus
	IsActive          *bool
	IsFeatured        bool
	Badge             domain.Badge
}

// ProductPatch is a partial update; nil fields are left unchanged
type ProductPatch struct {
	Name              *string
	Description       *string
	ShortDescription  *string
	Price             *int64
	ComparePrice      *int64
	Category          *domain.Category
	Type              *domain.ProductType
	Images            *[]domain.ProductImage
	Colors            *[]domain.ProductColor
	Sizes             *[]domain.Size
	Tags              *[]string
	TrackQuantity     *bool
	Quantity          *int
	LowStockThreshold *int
	Status            *domain.ProductStatus
	IsActive          *bool
	IsFeatured        *bool
	Badge             *domain.Badge
}

type ProductService interface {
	List(ctx context.Context, query ProductQuery) (*ProductPage, error)
	Featured(ctx context.Context, limit int) ([]*domain.Product, error)
	ByCategory(ctx context.Context, category domain.Category, limit int) ([]*domain.Product, error)
	Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.Product, error)
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*domain.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type productService struct {
	products repository.ProductRepository
	logger   *zap.Logger
}

func NewProductService(products repository.ProductRepository, logger *zap.Logger) ProductService {
	return &productService{products: products, logger: logger}
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

func (s *productService) List(ctx context.Context, q ProductQuery) (*ProductPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	q.Limit = clampLimit(q.Limit, DefaultProductPageSize, MaxProductPageSize)

	order := repository.SortOrderDesc
	if strings.EqualFold(q.Order, "asc") {
		order = repository.SortOrderAsc
	}

	products, total, err := s.products.List(ctx, repository.ProductFilter{
		Category:        q.Category,
		Type:            q.Type,
		MinPrice:        q.MinPrice,
		MaxPrice:        q.MaxPrice,
		Search:          q.Search,
		OnlyPurchasable: true,
		SortBy:          q.Sort,
		SortOrder:       order,
		Page:            q.Page,
		PageSize:        q.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return &ProductPage{Products: products, Pagination: newPagination(q.Page, q.Limit, total)}, nil
}

func (s *productService) Featured(ctx context.Context, limit int) ([]*domain.Product, error) {
	products, _, err := s.products.List(ctx, repository.ProductFilter{
		OnlyPurchasable: true,
		FeaturedOnly:    true,
		SortOrder:       repository.SortOrderDesc,
		Page:            1,
		PageSize:        clampLimit(limit, DefaultFeaturedLimit, MaxFeaturedLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

func (s *productService) ByCategory(ctx context.Context, category domain.Category, limit int) ([]*domain.Product, error) {
	if !category.Valid() {
		return nil, invalid("invalid category")
	}
	products, _, err := s.products.List(ctx, repository.ProductFilter{
		Category:        category,
		OnlyPurchasable: true,
		SortOrder:       repository.SortOrderDesc,
		Page:            1,
		PageSize:        clampLimit(limit, DefaultCategoryLimit, MaxCategoryLimit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

// Get hides unpurchasable products unless includeInactive is set (admins)
func (s *productService) Get(ctx context.Context, id uuid.UUID, includeInactive bool) (*domain.Product, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.Purchasable() && !includeInactive {
		return nil, notFound("product")
	}
	return product, nil
}

func (s *productService) find(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product")
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*domain.Product, error) {
	now := time.Now()
	product := &domain.Product{
		ID:               uuid.New(),
		Name:             strings.TrimSpace(input.Name),
		Description:      input.Description,
		ShortDescription: input.ShortDescription,
		Price:            input.Price,
		ComparePrice:     input.ComparePrice,
		Category:         input.Category,
		Type:             input.Type,
		Images:           input.Images,
		Colors:           input.Colors,
		Sizes:            input.Sizes,
		Tags:             input.Tags,
		Inventory: domain.Inventory{
			TrackQuantity:     true,
			Quantity:          input.Quantity,
			LowStockThreshold: domain.DefaultLowStockThreshold,
		},
		Status:     input.Status,
		IsActive:   true,
		IsFeatured: input.IsFeatured,
		Badge:      input.Badge,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if input.TrackQuantity != nil {
		product.Inventory.TrackQuantity = *input.TrackQuantity
	}
	if input.LowStockThreshold != nil {
		product.Inventory.LowStockThreshold = *input.LowStockThreshold
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	if product.Status == "" {
		product.Status = domain.ProductStatusActive
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}

	product.Slug = domain.Slugify(product.Name)
	err := s.products.Create(ctx, product)
	if errors.Is(err, repository.ErrProductSlugTaken) {
		product.Slug = product.Slug + "-" + product.ID.String()[:8]
		err = s.products.Create(ctx, product)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ID.String()),
		zap.String("slug", product.Slug),
	)
	return product, nil
}

// Update applies a partial patch. On a tracked product a new quantity is
// applied as a delta through AdjustQuantity so concurrent order debits are
// not overwritten; an untracked product stores it as given.
func (s *productService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*domain.Product, error) {
	if patch.Quantity != nil && *patch.Quantity < 0 {
		return nil, invalid("quantity cannot be negative")
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed := patch.Name != nil && strings.TrimSpace(*patch.Name) != product.Name
	applyProductPatch(product, patch)
	tracked := product.Inventory.TrackQuantity
	if patch.Quantity != nil && !tracked {
		product.Inventory.Quantity = *patch.Quantity
	}
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if renamed {
		product.Slug = domain.Slugify(product.Name)
	}
	product.UpdatedAt = time.Now()

	err = s.products.Update(ctx, product)
	if errors.Is(err, repository.ErrProductSlugTaken) {
		product.Slug = domain.Slugify(product.Name) + "-" + product.ID.String()[:8]
		err = s.products.Update(ctx, product)
	}
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, notFound("product")
		}
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if patch.Quantity != nil && tracked {
		current, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		delta := *patch.Quantity - current.Inventory.Quantity
		if delta != 0 {
			if _, err := s.products.AdjustQuantity(ctx, id, delta); err != nil {
				return nil, fmt.Errorf("failed to set product quantity: %w", err)
			}
		}
	}

	return s.find(ctx, id)
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return notFound("product")
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func applyProductPatch(p *domain.Product, patch ProductPatch) {
	if patch.Name != nil {
		p.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.ShortDescription != nil {
		p.ShortDescription = *patch.ShortDescription
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.ComparePrice != nil {
		p.ComparePrice = *patch.ComparePrice
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Type != nil {
		p.Type = *patch.Type
	}
	if patch.Images != nil {
		p.Images = *patch.Images
	}
	if patch.Colors != nil {
		p.Colors = *patch.Colors
	}
	if patch.Sizes != nil {
		p.Sizes = *patch.Sizes
	}
	if patch.Tags != nil {
		p.Tags = *patch.Tags
	}
	if patch.TrackQuantity != nil {
		p.Inventory.TrackQuantity = *patch.TrackQuantity
	}
	if patch.LowStockThreshold != nil {
		p.Inventory.LowStockThreshold = *patch.LowStockThreshold
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}
	if patch.IsFeatured != nil {
		p.IsFeatured = *patch.IsFeatured
	}
	if patch.Badge != nil {
		p.Badge = *patch.Badge
	}
}

func validateProduct(p *domain.Product) error {
	switch {
	case p.Name == "":
		return invalid("product name is required")
	case p.Price < 0:
		return invalid("price must be a positive number")
	case !p.Category.Valid():
		return invalid("invalid category")
	case !p.Type.Valid():
		return invalid("invalid product type")
	case !p.Status.Valid():
		return invalid("invalid product status")
	case !p.Badge.Valid():
		return invalid("invalid badge")
	case p.Inventory.Quantity < 0:
		return invalid("quantity cannot be negative")
	}
	for _, size := range p.Sizes {
		if !size.Valid() {
			return invalid("invalid size")
		}
	}
	return nil
}
