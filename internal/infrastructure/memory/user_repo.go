package memory

import (
	"context"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/document"
)

type UserRepository struct {
	store *Store
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{store: store}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	rec := document.FromUser(user)
	key := document.Key{PK: rec.PK, SK: rec.SK}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, exists := r.store.users[key]; exists {
		return domain.ErrUserExists
	}
	r.store.users[key] = rec
	r.store.byID[rec.UserID] = key
	return nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.users[document.UserKey(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return rec.ToDomain(), nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	key, ok := r.store.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.store.users[key].ToDomain(), nil
}
