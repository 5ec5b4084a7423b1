package repository

import (
	"context"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
)

// UserRepository is the credential store. Implementations key users by
// normalized email and keep a secondary lookup by user ID.
type UserRepository interface {
	// Create inserts the user only if no record exists for its email.
	// The check must use the store's own conditional write; a losing
	// concurrent insert returns domain.ErrUserExists.
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
}
