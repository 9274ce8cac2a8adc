package repository

import (
	"context"

	"github.com/emeeran/prompt-saver-web-app/internal/domain"
)

type UserRepository interface {
	// Create persists a new user, surfacing unique-constraint hits as
	// domain.ErrDuplicateUsername / domain.ErrDuplicateEmail.
	Create(ctx context.Context, username, email, passwordHash string) (*domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
