package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

// UserRepository implements ports.UserRepository over gorm.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	roles, err := r.resolveRoles(ctx, user.Roles)
	if err != nil {
		return nil, err
	}

	rec := toRecord(user)
	rec.Roles = roles
	if err := r.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return toDomain(&rec), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).Preload("Roles").Where("email = ?", email).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return toDomain(&rec), nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	var rec userRecord
	err := r.db.WithContext(ctx).Preload("Roles").Where("id = ?", id).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return toDomain(&rec), nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	var recs []userRecord
	if err := r.db.WithContext(ctx).Preload("Roles").Order("created_at").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	users := make([]domain.User, 0, len(recs))
	for i := range recs {
		users = append(users, *toDomain(&recs[i]))
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	roles, err := r.resolveRoles(ctx, user.Roles)
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec userRecord
		if err := tx.Where("id = ?", user.ID).First(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}

		rec.Email = user.Email
		rec.PasswordHash = user.PasswordHash
		rec.FirstName = user.FirstName
		rec.LastName = user.LastName
		rec.IsActive = user.IsActive

		if err := tx.Save(&rec).Error; err != nil {
			if isUniqueViolation(err) {
				return domain.ErrUserExists
			}
			return fmt.Errorf("update user: %w", err)
		}
		if err := tx.Model(&rec).Association("Roles").Replace(roles); err != nil {
			return fmt.Errorf("replace roles: %w", err)
		}
		return nil
	})
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Select("Roles").Delete(&userRecord{ID: id})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Roles(ctx context.Context) ([]string, error) {
	var recs []roleRecord
	if err := r.db.WithContext(ctx).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	names := make([]string, 0, len(recs))
	for _, rec := range recs {
		names = append(names, rec.Name)
	}
	return names, nil
}

func (r *UserRepository) resolveRoles(ctx context.Context, names []string) ([]roleRecord, error) {
	if len(names) == 0 {
		return nil, nil
	}
	var recs []roleRecord
	if err := r.db.WithContext(ctx).Where("name IN ?", names).Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("resolve roles: %w", err)
	}
	if len(recs) != len(names) {
		return nil, domain.ErrUnknownRole
	}
	return recs, nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:           user.ID,
		CreatedAt:    user.CreatedAt,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		FirstName:    user.FirstName,
		LastName:     user.LastName,
		IsActive:     user.IsActive,
	}
}

func toDomain(rec *userRecord) *domain.User {
	roles := make([]string, 0, len(rec.Roles))
	for _, role := range rec.Roles {
		roles = append(roles, role.Name)
	}
	return &domain.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		FirstName:    rec.FirstName,
		LastName:     rec.LastName,
		IsActive:     rec.IsActive,
		CreatedAt:    rec.CreatedAt,
		Roles:        roles,
	}
}

// isUniqueViolation detects duplicate-key errors without depending on the
// driver's error types.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "duplicate key") || strings.Contains(s, "unique constraint")
}
