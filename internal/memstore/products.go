package memstore

import (
	"context"
	"sort"
	"strings"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
)

type productRepo struct{ db *DB }

func (r *productRepo) Create(_ context.Context, product *domain.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, p := range r.db.products {
		if p.Slug == product.Slug {
			return repository.ErrProductSlugTaken
		}
	}
	r.db.products[product.ID] = cloneProduct(product)
	return nil
}

func (r *productRepo) Update(_ context.Context, product *domain.Product) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.products[product.ID]
	if !ok {
		return repository.ErrProductNotFound
	}
	for _, p := range r.db.products {
		if p.ID != product.ID && p.Slug == product.Slug {
			return repository.ErrProductSlugTaken
		}
	}
	updated := cloneProduct(product)
	if updated.Inventory.TrackQuantity {
		updated.Inventory.Quantity = existing.Inventory.Quantity
	}
	updated.CreatedAt = existing.CreatedAt
	r.db.products[product.ID] = updated
	return nil
}

func (r *productRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.db.products, id)
	for k := range r.db.wishlist {
		if k.productID == id {
			delete(r.db.wishlist, k)
		}
	}
	for itemID, item := range r.db.cartItems {
		if item.ProductID == id {
			delete(r.db.cartItems, itemID)
		}
	}
	return nil
}

func (r *productRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	p, ok := r.db.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return cloneProduct(p), nil
}

func (r *productRepo) List(_ context.Context, filter repository.ProductFilter) ([]*domain.Product, int, error) {
	r.db.mu.RLock()
	matched := []*domain.Product{}
	for _, p := range r.db.products {
		if matchesProduct(p, filter) {
			matched = append(matched, cloneProduct(p))
		}
	}
	r.db.mu.RUnlock()

	sortProducts(matched, filter.SortBy, filter.SortOrder)

	total := len(matched)
	return page(matched, filter.Page, filter.PageSize), total, nil
}

func (r *productRepo) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	p, ok := r.db.products[id]
	if !ok {
		return 0, repository.ErrProductNotFound
	}
	if !p.Inventory.TrackQuantity {
		return p.Inventory.Quantity, nil
	}
	if p.Inventory.Quantity+delta < 0 {
		return p.Inventory.Quantity, repository.ErrInsufficientStock
	}
	p.Inventory.Quantity += delta
	p.UpdatedAt = time.Now()
	return p.Inventory.Quantity, nil
}

func matchesProduct(p *domain.Product, f repository.ProductFilter) bool {
	if f.OnlyPurchasable && !p.Purchasable() {
		return false
	}
	if f.FeaturedOnly && !p.IsFeatured {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Type != "" && p.Type != f.Type {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + strings.Join(p.Tags, " "))
		if !strings.Contains(haystack, q) {
			return false
		}
	}
	return true
}

func sortProducts(products []*domain.Product, sortBy string, order repository.SortOrder) {
	less := func(a, b *domain.Product) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch sortBy {
	case "price":
		less = func(a, b *domain.Product) bool { return a.Price < b.Price }
	case "name":
		less = func(a, b *domain.Product) bool { return a.Name < b.Name }
	}
	asc := order == repository.SortOrderAsc
	sort.SliceStable(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if less(a, b) == less(b, a) {
			return a.ID.String() < b.ID.String()
		}
		if asc {
			return less(a, b)
		}
		return less(b, a)
	})
}

func page[T any](items []T, pageNum, pageSize int) []T {
	if pageSize <= 0 {
		return items
	}
	start := repository.Offset(pageNum, pageSize)
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type wishlistRepo struct{ db *DB }

func (r *wishlistRepo) Add(_ context.Context, userID, productID uuid.UUID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := wishKey{userID: userID, productID: productID}
	if _, ok := r.db.wishlist[key]; ok {
		return repository.ErrWishlistDuplicate
	}
	r.db.wishlist[key] = at
	return nil
}

func (r *wishlistRepo) Remove(_ context.Context, userID, productID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := wishKey{userID: userID, productID: productID}
	if _, ok := r.db.wishlist[key]; !ok {
		return repository.ErrWishlistNotFound
	}
	delete(r.db.wishlist, key)
	return nil
}

func (r *wishlistRepo) ListProducts(_ context.Context, userID uuid.UUID) ([]*domain.Product, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	type entry struct {
		product *domain.Product
		addedAt time.Time
	}
	entries := []entry{}
	for k, at := range r.db.wishlist {
		if k.userID != userID {
			continue
		}
		p, ok := r.db.products[k.productID]
		if !ok || !p.Purchasable() {
			continue
		}
		entries = append(entries, entry{product: cloneProduct(p), addedAt: at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].addedAt.After(entries[j].addedAt) })

	products := make([]*domain.Product, len(entries))
	for i, e := range entries {
		products[i] = e.product
	}
	return products, nil
}

func sortAddresses(addresses []*domain.Address) {
	sort.SliceStable(addresses, func(i, j int) bool {
		if addresses[i].IsDefault != addresses[j].IsDefault {
			return addresses[i].IsDefault
		}
		return addresses[i].CreatedAt.Before(addresses[j].CreatedAt)
	})
}
