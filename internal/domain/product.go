package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is the closed set of catalog sections
type Category string

const (
	CategoryFashion     Category = "fashion"
	CategoryBeauty      Category = "beauty"
	CategoryLifestyle   Category = "lifestyle"
	CategoryAccessories Category = "accessories"
)

// Categories lists every valid category
var Categories = []Category{CategoryFashion, CategoryBeauty, CategoryLifestyle, CategoryAccessories}

func (c Category) Valid() bool {
	switch c {
	case CategoryFashion, CategoryBeauty, CategoryLifestyle, CategoryAccessories:
		return true
	}
	return false
}

// ProductType groups products for the magazine layout
type ProductType string

const (
	ProductTypeCollection ProductType = "collection"
	ProductTypeBeauty     ProductType = "beauty"
	ProductTypeLifestyle  ProductType = "lifestyle"
)

func (t ProductType) Valid() bool {
	switch t {
	case ProductTypeCollection, ProductTypeBeauty, ProductTypeLifestyle:
		return true
	}
	return false
}

// ProductStatus is the publication state of a product
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

func (s ProductStatus) Valid() bool {
	switch s {
	case ProductStatusDraft, ProductStatusActive, ProductStatusArchived:
		return true
	}
	return false
}

// Size is a garment size option
type Size string

const (
	SizeXS      Size = "XS"
	SizeS       Size = "S"
	SizeM       Size = "M"
	SizeL       Size = "L"
	SizeXL      Size = "XL"
	SizeXXL     Size = "XXL"
	SizeOneSize Size = "One Size"
)

func (s Size) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeOneSize:
		return true
	}
	return false
}

// Badge is the promotional label shown on a product card
type Badge string

const (
	BadgeNone    Badge = ""
	BadgeNew     Badge = "NEW"
	BadgeBest    Badge = "BEST"
	BadgeSale    Badge = "SALE"
	BadgeLimited Badge = "LIMITED"
	BadgeLuxury  Badge = "LUXURY"
	BadgeVintage Badge = "VINTAGE"
)

func (b Badge) Valid() bool {
	switch b {
	case BadgeNone, BadgeNew, BadgeBest, BadgeSale, BadgeLimited, BadgeLuxury, BadgeVintage:
		return true
	}
	return false
}

// DefaultLowStockThreshold is applied when a product is created without one
const DefaultLowStockThreshold = 5

// ProductImage is one picture of a product
type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"is_primary"`
}

// ProductColor is a color option
type ProductColor struct {
	Name string `json:"name"`
	Code string `json:"code,omitempty"`
}

// Inventory is the stock block of a product
type Inventory struct {
	TrackQuantity     bool `json:"track_quantity"`
	Quantity          int  `json:"quantity"`
	LowStockThreshold int  `json:"low_stock_threshold"`
}

// Product represents a product in the catalog
type Product struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"short_description,omitempty"`
	Price            int64          `json:"price"`
	ComparePrice     int64          `json:"compare_price,omitempty"`
	Category         Category       `json:"category"`
	Type             ProductType    `json:"type"`
	Images           []ProductImage `json:"images"`
	Colors           []ProductColor `json:"colors"`
	Sizes            []Size         `json:"sizes"`
	Tags             []string       `json:"tags"`
	Inventory        Inventory      `json:"inventory"`
	Status           ProductStatus  `json:"status"`
	IsActive         bool           `json:"is_active"`
	IsFeatured       bool           `json:"is_featured"`
	Badge            Badge          `json:"badge,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// Purchasable reports whether the product can be put in a cart or ordered
func (p *Product) Purchasable() bool {
	return p.IsActive && p.Status == ProductStatusActive
}

// IsAvailable reports whether at least one unit can be sold
func (p *Product) IsAvailable() bool {
	if !p.Inventory.TrackQuantity {
		return true
	}
	return p.Inventory.Quantity > 0
}

// IsLowStock reports whether tracked stock is at or below the threshold
func (p *Product) IsLowStock() bool {
	if !p.Inventory.TrackQuantity {
		return false
	}
	return p.Inventory.Quantity <= p.Inventory.LowStockThreshold
}

// HasStock reports whether qty units can be taken right now
func (p *Product) HasStock(qty int) bool {
	return !p.Inventory.TrackQuantity || p.Inventory.Quantity >= qty
}

// PrimaryImage returns the URL of the primary image, the first image, or ""
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}

// DiscountPercentage is the rounded saving against the compare price
func (p *Product) DiscountPercentage() int {
	if p.ComparePrice <= 0 || p.ComparePrice <= p.Price {
		return 0
	}
	diff := p.ComparePrice - p.Price
	return int((diff*100 + p.ComparePrice/2) / p.ComparePrice)
}

var slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify derives a URL slug from a product name
func Slugify(name string) string {
	s := slugInvalid.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}
