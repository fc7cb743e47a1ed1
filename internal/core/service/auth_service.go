package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
	"github.com/roknskapar/pdf-processor/internal/core/ports"
)

// AuthConfig carries the token and admin-setup settings for the AuthService.
type AuthConfig struct {
	JWTSecret      string
	JWTIssuer      string
	JWTAudience    string
	TokenTTL       time.Duration
	AdminSecretKey string
	// DevMode disables the admin-setup secret key check.
	DevMode bool
}

// AuthService implements registration, login, password changes and the
// guarded admin-setup operation.
type AuthService struct {
	repo ports.UserRepository
	cfg  AuthConfig
	log  zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, cfg AuthConfig, log zerolog.Logger) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	return &AuthService{repo: repo, cfg: cfg, log: log}
}

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	user, err := s.createUser(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("email", user.Email).Msg("user registered")
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	if email == "" || password == "" {
		return "", nil, domain.ErrInvalidCredentials
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		// Do not reveal whether the account exists.
		return "", nil, domain.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.generateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	return s.repo.Update(ctx, user)
}

func (s *AuthService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (string, error) {
	if !s.cfg.DevMode && in.SecretKey != s.cfg.AdminSecretKey {
		return "", domain.ErrSetupKeyInvalid
	}

	existing, err := s.repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.HasRole(domain.RoleAdmin) {
			return "", domain.ErrAdminExists
		}
		existing.Roles = append(existing.Roles, domain.RoleAdmin)
		if err := s.repo.Update(ctx, existing); err != nil {
			return "", err
		}
		s.log.Info().Str("email", existing.Email).Msg("user promoted to admin")
		return "User promoted to Admin role", nil
	case err == domain.ErrUserNotFound:
		user, err := s.createUser(ctx, in, domain.RoleAdmin)
		if err != nil {
			return "", err
		}
		s.log.Info().Str("email", user.Email).Msg("admin user created")
		return "Admin user created successfully", nil
	default:
		return "", err
	}
}

func (s *AuthService) createUser(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, error) {
	if in.Email == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}
	if in.Password != in.ConfirmPassword {
		return nil, domain.ErrPasswordMismatch
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
		Roles:        []string{role},
	}
	return s.repo.Create(ctx, user)
}

func (s *AuthService) generateToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.ID,
		"email": user.Email,
		"roles": user.Roles,
		"iss":   s.cfg.JWTIssuer,
		"aud":   s.cfg.JWTAudience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.cfg.TokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.cfg.JWTSecret))
}
