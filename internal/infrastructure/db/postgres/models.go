package postgres

import "time"

// roleRecord is a row of the fixed roles master table.
type roleRecord struct {
	ID        uint `gorm:"primaryKey"`
	CreatedAt time.Time
	UpdatedAt time.Time
	Name      string `gorm:"size:32;uniqueIndex;not null"`
}

func (roleRecord) TableName() string { return "roles" }

// userRecord is the persisted shape of a domain.User.
type userRecord struct {
	ID           string       `gorm:"type:uuid;primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Email        string       `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string       `gorm:"size:128;not null"`
	FirstName    string       `gorm:"size:255"`
	LastName     string       `gorm:"size:255"`
	IsActive     bool         `gorm:"default:true;not null"`
	Roles        []roleRecord `gorm:"many2many:user_roles;"`
}

func (userRecord) TableName() string { return "users" }
