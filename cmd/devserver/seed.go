package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type sample struct {
	name     string
	category domain.Category
	price    int64
	compare  int64
	badge    domain.Badge
	featured bool
	sizes    []domain.Size
}

var apparel = []domain.Size{domain.SizeS, domain.SizeM, domain.SizeL}

var samples = []sample{
	{"Linen Wrap Blouse", domain.CategoryFashion, 68000, 85000, domain.BadgeSale, true, apparel},
	{"Wide Leg Trousers", domain.CategoryFashion, 79000, 0, domain.BadgeNew, false, apparel},
	{"Cropped Tweed Jacket", domain.CategoryFashion, 189000, 0, domain.BadgeLuxury, true, apparel},
	{"Pleated Midi Skirt", domain.CategoryFashion, 59000, 0, domain.BadgeNone, false, apparel},
	{"Vintage Denim Shirt", domain.CategoryFashion, 72000, 0, domain.BadgeVintage, false, apparel},
	{"Cashmere Crew Knit", domain.CategoryFashion, 149000, 179000, domain.BadgeSale, true, apparel},
	{"Silk Slip Dress", domain.CategoryFashion, 128000, 0, domain.BadgeBest, false, apparel},
	{"Oversized Trench Coat", domain.CategoryFashion, 239000, 0, domain.BadgeLimited, false, apparel},
	{"Glow Serum", domain.CategoryBeauty, 45000, 60000, domain.BadgeBest, true, nil},
	{"Rice Water Toner", domain.CategoryBeauty, 28000, 0, domain.BadgeNone, false, nil},
	{"Ceramide Barrier Cream", domain.CategoryBeauty, 36000, 0, domain.BadgeNew, false, nil},
	{"Velvet Lip Tint", domain.CategoryBeauty, 18000, 0, domain.BadgeBest, true, nil},
	{"Mineral Sun Cushion", domain.CategoryBeauty, 32000, 38000, domain.BadgeSale, false, nil},
	{"Green Tea Cleansing Oil", domain.CategoryBeauty, 24000, 0, domain.BadgeNone, false, nil},
	{"Overnight Sleeping Mask", domain.CategoryBeauty, 29000, 0, domain.BadgeNone, false, nil},
	{"Hanbang Eye Essence", domain.CategoryBeauty, 52000, 0, domain.BadgeLuxury, false, nil},
	{"Hinoki Room Diffuser", domain.CategoryLifestyle, 42000, 0, domain.BadgeNew, true, nil},
	{"Stoneware Mug Set", domain.CategoryLifestyle, 35000, 0, domain.BadgeNone, false, nil},
	{"Washed Linen Throw", domain.CategoryLifestyle, 89000, 110000, domain.BadgeSale, false, nil},
	{"Soy Wax Candle", domain.CategoryLifestyle, 26000, 0, domain.BadgeBest, false, nil},
	{"Bamboo Serving Tray", domain.CategoryLifestyle, 31000, 0, domain.BadgeNone, false, nil},
	{"Ceramic Bud Vase", domain.CategoryLifestyle, 22000, 0, domain.BadgeLimited, false, nil},
	{"Cotton Waffle Robe", domain.CategoryLifestyle, 76000, 0, domain.BadgeNone, true, []domain.Size{domain.SizeOneSize}},
	{"Canvas Tote", domain.CategoryAccessories, 29000, 0, domain.BadgeBest, false, nil},
	{"Pearl Hair Clip", domain.CategoryAccessories, 15000, 0, domain.BadgeNew, false, nil},
	{"Leather Card Wallet", domain.CategoryAccessories, 58000, 0, domain.BadgeNone, false, nil},
	{"Silver Hoop Earrings", domain.CategoryAccessories, 39000, 0, domain.BadgeNone, true, nil},
	{"Wool Bucket Hat", domain.CategoryAccessories, 45000, 0, domain.BadgeVintage, false, []domain.Size{domain.SizeOneSize}},
	{"Silk Scarf", domain.CategoryAccessories, 49000, 65000, domain.BadgeSale, false, nil},
	{"Acetate Sunglasses", domain.CategoryAccessories, 98000, 0, domain.BadgeLuxury, false, nil},
}

func productType(c domain.Category) domain.ProductType {
	switch c {
	case domain.CategoryBeauty:
		return domain.ProductTypeBeauty
	case domain.CategoryLifestyle:
		return domain.ProductTypeLifestyle
	}
	return domain.ProductTypeCollection
}

// seedCatalog loads the sample products, each with stock units on hand.
// Creation times are staggered so newest-first listings are stable.
func seedCatalog(ctx context.Context, products repository.ProductRepository, stock int, now time.Time) error {
	for i, s := range samples {
		created := now.Add(-time.Duration(len(samples)-i) * time.Minute)
		slug := domain.Slugify(s.name)
		p := &domain.Product{
			ID:               uuid.New(),
			Name:             s.name,
			Slug:             slug,
			Description:      fmt.Sprintf("%s from the NANA %s edit.", s.name, s.category),
			ShortDescription: s.name,
			Price:            s.price,
			ComparePrice:     s.compare,
			Category:         s.category,
			Type:             productType(s.category),
			Images: []domain.ProductImage{{
				URL:       "/images/products/" + slug + ".jpg",
				Alt:       s.name,
				IsPrimary: true,
			}},
			Sizes: s.sizes,
			Tags:  strings.Fields(strings.ToLower(s.name)),
			Inventory: domain.Inventory{
				TrackQuantity:     true,
				Quantity:          stock,
				LowStockThreshold: domain.DefaultLowStockThreshold,
			},
			Status:     domain.ProductStatusActive,
			IsActive:   true,
			IsFeatured: s.featured,
			Badge:      s.badge,
			CreatedAt:  created,
			UpdatedAt:  created,
		}
		if err := products.Create(ctx, p); err != nil {
			return fmt.Errorf("failed to seed product %q: %w", s.name, err)
		}
	}
	return nil
}

// seedAdmin creates the administrator account unless the email is taken
func seedAdmin(ctx context.Context, users repository.UserRepository, email, password string, now time.Time) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := &domain.User{
		ID:           uuid.New(),
		Name:         "NANA Admin",
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: string(hash),
		Role:         domain.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		if errors.Is(err, repository.ErrUserAlreadyExists) {
			return users.FindByEmail(ctx, admin.Email)
		}
		return nil, fmt.Errorf("failed to seed admin: %w", err)
	}
	return admin, nil
}
