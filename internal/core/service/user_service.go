package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
	"github.com/roknskapar/pdf-processor/internal/core/ports"
)

// UserService implements the admin-only account directory.
type UserService struct {
	repo ports.UserRepository
	log  zerolog.Logger
}

func NewUserService(repo ports.UserRepository, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, log: log}
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.repo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *UserService) Update(ctx context.Context, id string, in ports.UpdateUserInput) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if in.Roles != nil {
		for _, r := range in.Roles {
			if !domain.ValidRole(r) {
				return domain.ErrUnknownRole
			}
		}
		user.Roles = in.Roles
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user updated")
	return nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}

func (s *UserService) Roles(ctx context.Context) ([]string, error) {
	return s.repo.Roles(ctx)
}
