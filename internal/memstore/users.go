package memstore

import (
	"context"
	"time"

	"nana-store/internal/domain"
	"nana-store/internal/repository"

	"github.com/google/uuid"
)

type userRepo struct{ db *DB }

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, u := range r.db.users {
		if u.Email == user.Email {
			return repository.ErrUserAlreadyExists
		}
	}
	r.db.users[user.ID] = cloneUser(user)
	return nil
}

func (r *userRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *userRepo) FindByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *userRepo) UpdateLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.LastLogin = &at
	u.UpdatedAt = at
	return nil
}

type refreshTokenRepo struct{ db *DB }

func (r *refreshTokenRepo) Create(_ context.Context, token *domain.RefreshToken) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t := *token
	r.db.refreshTokens[t.Token] = &t
	return nil
}

func (r *refreshTokenRepo) Consume(_ context.Context, token string) (*domain.RefreshToken, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.refreshTokens[token]
	if !ok {
		return nil, repository.ErrRefreshTokenNotFound
	}
	if t.Revoked {
		c := *t
		return &c, repository.ErrRefreshTokenRevoked
	}
	t.Revoked = true
	c := *t
	return &c, nil
}

func (r *refreshTokenRepo) Revoke(_ context.Context, token string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.refreshTokens[token]
	if !ok {
		return repository.ErrRefreshTokenNotFound
	}
	t.Revoked = true
	return nil
}

func (r *refreshTokenRepo) RevokeAllForUser(_ context.Context, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.refreshTokens {
		if t.UserID == userID {
			t.Revoked = true
		}
	}
	return nil
}

type addressRepo struct{ db *DB }

func (r *addressRepo) List(_ context.Context, userID uuid.UUID) ([]*domain.Address, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := []*domain.Address{}
	for _, a := range r.db.addresses {
		if a.UserID == userID {
			c := *a
			out = append(out, &c)
		}
	}
	sortAddresses(out)
	return out, nil
}

func (r *addressRepo) Find(_ context.Context, userID, id uuid.UUID) (*domain.Address, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	a, ok := r.db.addresses[id]
	if !ok || a.UserID != userID {
		return nil, repository.ErrAddressNotFound
	}
	c := *a
	return &c, nil
}

func (r *addressRepo) Create(_ context.Context, address *domain.Address) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	c := *address
	r.db.addresses[c.ID] = &c
	return nil
}

func (r *addressRepo) Update(_ context.Context, address *domain.Address) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.addresses[address.ID]
	if !ok || a.UserID != address.UserID {
		return repository.ErrAddressNotFound
	}
	c := *address
	c.CreatedAt = a.CreatedAt
	r.db.addresses[c.ID] = &c
	return nil
}

func (r *addressRepo) Delete(_ context.Context, userID, id uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	a, ok := r.db.addresses[id]
	if !ok || a.UserID != userID {
		return repository.ErrAddressNotFound
	}
	delete(r.db.addresses, id)
	return nil
}

func (r *addressRepo) ClearDefault(_ context.Context, userID uuid.UUID) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.addresses {
		if a.UserID == userID {
			a.IsDefault = false
		}
	}
	return nil
}
