package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"nana-store/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrProductSlugTaken  = errors.New("product with this slug already exists")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// ProductFilter narrows and orders a catalog listing. Zero values mean "any".
type ProductFilter struct {
	Category        domain.Category
	Type            domain.ProductType
	MinPrice        *int64
	MaxPrice        *int64
	Search          string
	OnlyPurchasable bool
	FeaturedOnly    bool
	SortBy          string
	SortOrder       SortOrder
	Page            int
	PageSize        int
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error)
	// AdjustQuantity atomically adds delta to a tracked product's stock and
	// returns the new quantity. A change that would go below zero is not
	// applied and returns the current quantity with ErrInsufficientStock.
	// Products that do not track quantity are left untouched.
	AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error)
}

type productRepository struct {
	db *sql.DB
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{db: db}
}

var productColumnList = []string{
	"id", "name", "slug", "description", "short_description", "price", "compare_price",
	"category", "product_type", "images", "colors", "sizes", "tags",
	"track_quantity", "quantity", "low_stock_threshold",
	"status", "is_active", "is_featured", "badge", "created_at", "updated_at",
}

var productColumns = prefixed("", productColumnList)

func prefixed(prefix string, columns []string) string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = prefix + c
	}
	return strings.Join(out, ", ")
}

var productSortFields = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"price":      "price",
	"name":       "name",
}

// Create inserts a new product into the database using parameterized queries
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	docs, err := marshalProductDocs(product)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err = r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.ShortDescription,
		product.Price,
		product.ComparePrice,
		product.Category,
		product.Type,
		docs.images,
		docs.colors,
		docs.sizes,
		docs.tags,
		product.Inventory.TrackQuantity,
		product.Inventory.Quantity,
		product.Inventory.LowStockThreshold,
		product.Status,
		product.IsActive,
		product.IsFeatured,
		product.Badge,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductSlugTaken
		}
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// Update replaces the catalog attributes of a product. The stock of a tracked
// product is not written here; it only changes through AdjustQuantity.
// Untracked products take the quantity given.
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	docs, err := marshalProductDocs(product)
	if err != nil {
		return err
	}

	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, short_description = $5, price = $6,
		    compare_price = $7, category = $8, product_type = $9, images = $10, colors = $11,
		    sizes = $12, tags = $13, track_quantity = $14, low_stock_threshold = $15,
		    status = $16, is_active = $17, is_featured = $18, badge = $19, updated_at = $20,
		    quantity = CASE WHEN $14 THEN quantity ELSE $21 END
		WHERE id = $1
	`

	result, err := r.db.ExecContext(
		ctx,
		query,
		product.ID,
		product.Name,
		product.Slug,
		product.Description,
		product.ShortDescription,
		product.Price,
		product.ComparePrice,
		product.Category,
		product.Type,
		docs.images,
		docs.colors,
		docs.sizes,
		docs.tags,
		product.Inventory.TrackQuantity,
		product.Inventory.LowStockThreshold,
		product.Status,
		product.IsActive,
		product.IsFeatured,
		product.Badge,
		product.UpdatedAt,
		product.Inventory.Quantity,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrProductSlugTaken
		}
		return fmt.Errorf("failed to update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product. Orders keep their item snapshots.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	return nil
}

// FindByID retrieves a product by ID using parameterized queries
func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// List retrieves products with filtering, pagination, and sorting
func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]*domain.Product, int, error) {
	// Validate sort field to prevent SQL injection
	sortBy, ok := productSortFields[filter.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	sortOrder := filter.SortOrder
	if sortOrder != SortOrderAsc && sortOrder != SortOrderDesc {
		sortOrder = SortOrderDesc
	}

	conditions := []string{}
	args := []interface{}{}
	addArg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.OnlyPurchasable {
		conditions = append(conditions, "status = 'active' AND is_active = TRUE")
	}
	if filter.FeaturedOnly {
		conditions = append(conditions, "is_featured = TRUE")
	}
	if filter.Category != "" {
		conditions = append(conditions, "category = "+addArg(filter.Category))
	}
	if filter.Type != "" {
		conditions = append(conditions, "product_type = "+addArg(filter.Type))
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price >= "+addArg(*filter.MinPrice))
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price <= "+addArg(*filter.MaxPrice))
	}
	if q := strings.TrimSpace(filter.Search); q != "" {
		p := addArg("%" + q + "%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE %s OR description ILIKE %s OR tags::text ILIKE %s)", p, p, p))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM products %s", whereClause)
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	limit := addArg(filter.PageSize)
	offset := addArg(Offset(filter.Page, filter.PageSize))
	query := fmt.Sprintf(`
		SELECT %s
		FROM products
		%s
		ORDER BY %s %s, id
		LIMIT %s OFFSET %s
	`, productColumns, whereClause, sortBy, sortOrder, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*domain.Product{}
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}

	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}

	return products, total, nil
}

func (r *productRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (int, error) {
	var quantity int
	err := r.db.QueryRowContext(ctx, `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1 AND track_quantity AND quantity + $2 >= 0
		RETURNING quantity`,
		id, delta,
	).Scan(&quantity)
	if err == nil {
		return quantity, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("failed to adjust product quantity: %w", err)
	}

	// Nothing was updated: the product is missing, untracked, or short.
	var tracked bool
	err = r.db.QueryRowContext(ctx,
		`SELECT track_quantity, quantity FROM products WHERE id = $1`, id,
	).Scan(&tracked, &quantity)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrProductNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read product quantity: %w", err)
	}
	if !tracked {
		return quantity, nil
	}
	return quantity, ErrInsufficientStock
}

type productDocs struct {
	images, colors, sizes, tags []byte
}

func marshalProductDocs(p *domain.Product) (productDocs, error) {
	var docs productDocs
	var err error
	if docs.images, err = marshalList(p.Images); err != nil {
		return docs, fmt.Errorf("failed to encode product images: %w", err)
	}
	if docs.colors, err = marshalList(p.Colors); err != nil {
		return docs, fmt.Errorf("failed to encode product colors: %w", err)
	}
	if docs.sizes, err = marshalList(p.Sizes); err != nil {
		return docs, fmt.Errorf("failed to encode product sizes: %w", err)
	}
	if docs.tags, err = marshalList(p.Tags); err != nil {
		return docs, fmt.Errorf("failed to encode product tags: %w", err)
	}
	return docs, nil
}

// marshalList encodes nil slices as [] so JSONB columns never hold null
func marshalList[T any](v []T) ([]byte, error) {
	if v == nil {
		v = []T{}
	}
	return json.Marshal(v)
}

func scanProduct(row rowScanner) (*domain.Product, error) {
	product := &domain.Product{}
	var images, colors, sizes, tags []byte
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Slug,
		&product.Description,
		&product.ShortDescription,
		&product.Price,
		&product.ComparePrice,
		&product.Category,
		&product.Type,
		&images,
		&colors,
		&sizes,
		&tags,
		&product.Inventory.TrackQuantity,
		&product.Inventory.Quantity,
		&product.Inventory.LowStockThreshold,
		&product.Status,
		&product.IsActive,
		&product.IsFeatured,
		&product.Badge,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	for _, doc := range []struct {
		raw []byte
		dst interface{}
	}{
		{images, &product.Images},
		{colors, &product.Colors},
		{sizes, &product.Sizes},
		{tags, &product.Tags},
	} {
		if len(doc.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(doc.raw, doc.dst); err != nil {
			return nil, fmt.Errorf("failed to decode product document: %w", err)
		}
	}

	return product, nil
}
