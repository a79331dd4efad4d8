package auth

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	Username string `gorm:"type:varchar(60);not null;uniqueIndex:uq_users_username"`
	Email    string `gorm:"type:varchar(255);not null;uniqueIndex:uq_users_email"`
	FullName string `gorm:"type:varchar(120);not null"`

	HashedPassword string `gorm:"type:varchar(120);not null"`

	Role       string `gorm:"type:varchar(30);not null;default:'employee'"`
	Department string `gorm:"type:varchar(60);not null;default:'General'"`
	IsManager  bool   `gorm:"not null;default:false"`
	IsHR       bool   `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
