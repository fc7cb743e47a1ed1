package ports

import (
	"context"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

// RegisterInput carries the fields of a registration or admin-setup request.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
	SecretKey       string
}

// AuthService defines authentication and account-credential operations.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (string, *domain.User, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
	// CreateAdmin creates an admin account or promotes an existing one.
	// The returned message distinguishes the two outcomes.
	CreateAdmin(ctx context.Context, in RegisterInput) (string, error)
}
