package otp

import (
	"time"

	"github.com/google/uuid"
)

// PasswordReset keeps one live OTP per email (upsert on issue) and is
// retained after use for audit.
type PasswordReset struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	Email string `gorm:"type:varchar(255);not null;uniqueIndex:uq_password_resets_email"`
	OTP   string `gorm:"type:varchar(6);not null"`

	ExpiresAt time.Time  `gorm:"not null"`
	Used      bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time `gorm:"type:timestamptz"`
	Attempts  int        `gorm:"not null;default:0"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
