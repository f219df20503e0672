package memstore

import (
	"context"
	"sort"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
)

type orderRepo struct{ db *DB }

func (r *orderRepo) Create(_ context.Context, order *domain.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, o := range r.db.orders {
		if o.OrderNumber == order.OrderNumber {
			return repository.ErrOrderNumberExists
		}
	}
	r.db.orders[order.ID] = cloneOrder(order)
	return nil
}

func (r *orderRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	o, ok := r.db.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) Update(_ context.Context, order *domain.Order) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	stored, ok := r.db.orders[order.ID]
	if !ok {
		return repository.ErrOrderNotFound
	}
	if stored.Version != order.Version {
		return repository.ErrOrderConflict
	}
	updated := cloneOrder(order)
	updated.Version++
	updated.OrderNumber = stored.OrderNumber
	updated.CreatedAt = stored.CreatedAt
	r.db.orders[order.ID] = updated
	order.Version = updated.Version
	return nil
}

func (r *orderRepo) List(_ context.Context, filter repository.OrderFilter) ([]*domain.Order, int, error) {
	r.db.mu.RLock()
	matched := []*domain.Order{}
	for _, o := range r.db.orders {
		if filter.UserID != nil && o.UserID != *filter.UserID {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		matched = append(matched, cloneOrder(o))
	}
	r.db.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() < matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	return page(matched, filter.Page, filter.PageSize), len(matched), nil
}

type sequenceRepo struct{ db *DB }

func (r *sequenceRepo) Next(_ context.Context, day string) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.sequences[day]++
	return r.db.sequences[day], nil
}

type cartRepo struct{ db *DB }

func (r *cartRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*domain.CartItem, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	items := []*domain.CartItem{}
	for _, item := range r.db.cartItems {
		if item.UserID == userID {
			c := *item
			items = append(items, &c)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].AddedAt.Equal(items[j].AddedAt) {
			return items[i].ID.String() < items[j].ID.String()
		}
		return items[i].AddedAt.Before(items[j].AddedAt)
	})
	return items, nil
}

func (r *cartRepo) FindByID(_ context.Context, userID, itemID uuid.UUID) (*domain.CartItem, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	item, ok := r.db.cartItems[itemID]
	if !ok || item.UserID != userID {
		return nil, repository.ErrCartItemNotFound
	}
	c := *item
	return &c, nil
}

func (r *cartRepo) Add(_ context.Context, item *domain.CartItem) (*domain.CartItem, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.cartItems {
		if existing.UserID == item.UserID && existing.SameVariant(item.ProductID, item.Size, item.Color) {
			existing.Quantity += item.Quantity
			c := *existing
			return &c, nil
		}
	}
	stored := *item
	r.db.cartItems[stored.ID] = &stored
	c := stored
	return &c, nil
}

func (r *cartRepo) UpdateQuantity(_ context.Context, userID, itemID uuid.UUID, quantity int) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.cartItems[itemID]
	if !ok || item.UserID != userID {
		return repository.ErrCartItemNotFound
	}
	item.Quantity = quantity
	return nil
}

func (r *cartRepo) Delete(_ context.Context, userID, itemID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	item, ok := r.db.cartItems[itemID]
	if !ok || item.UserID != userID {
		return repository.ErrCartItemNotFound
	}
	delete(r.db.cartItems, itemID)
	return nil
}

func (r *cartRepo) DeleteByProducts(_ context.Context, userID uuid.UUID, productIDs []uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	remove := make(map[uuid.UUID]bool, len(productIDs))
	for _, id := range productIDs {
		remove[id] = true
	}
	for id, item := range r.db.cartItems {
		if item.UserID == userID && remove[item.ProductID] {
			delete(r.db.cartItems, id)
		}
	}
	return nil
}

func (r *cartRepo) Clear(_ context.Context, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for id, item := range r.db.cartItems {
		if item.UserID == userID {
			delete(r.db.cartItems, id)
		}
	}
	return nil
}
