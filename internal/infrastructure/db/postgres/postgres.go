package postgres

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

// Connect opens the Postgres database, runs migrations and seeds the fixed
// role set.
func Connect(dsn string, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}

	if err := db.AutoMigrate(&roleRecord{}, &userRecord{}); err != nil {
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}
	if err := seedRoles(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

// seedRoles creates the fixed roles if absent. Idempotent across restarts.
func seedRoles(db *gorm.DB, log zerolog.Logger) error {
	for _, name := range domain.Roles {
		role := roleRecord{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("seed role %s: %w", name, err)
		}
	}
	log.Info().Msg("roles seeded")
	return nil
}
