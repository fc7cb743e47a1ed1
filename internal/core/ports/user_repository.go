package ports

import (
	"context"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

// UserRepository defines the persistence interface for accounts and roles.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	// Update persists the user's fields and replaces its role set.
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
	Roles(ctx context.Context) ([]string, error)
}
