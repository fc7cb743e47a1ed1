package ports

import (
	"context"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

// UpdateUserInput carries a partial account update; nil fields are left
// unchanged. A non-nil Roles slice replaces the account's role set.
type UpdateUserInput struct {
	Email     *string
	FirstName *string
	LastName  *string
	IsActive  *bool
	Roles     []string
}

// UserService defines the admin-only account directory operations.
type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Get(ctx context.Context, id string) (*domain.User, error)
	Update(ctx context.Context, id string, in UpdateUserInput) error
	Delete(ctx context.Context, id string) error
	Roles(ctx context.Context) ([]string, error)
}
