package actiontoken

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

// ActionToken authorizes exactly one decision on one leave request by one
// approver. The token value is the secret; it is never derived from the
// ids it binds.
type ActionToken struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Token string    `gorm:"type:varchar(64);not null;uniqueIndex:uq_action_tokens_token"`

	LeaveID    uuid.UUID `gorm:"type:uuid;not null;index:idx_action_tokens_leave"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null"`
	Action     string    `gorm:"type:varchar(10);not null"`

	ExpiresAt time.Time  `gorm:"not null"`
	Used      bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time `gorm:"type:timestamptz"`
	RevokedAt *time.Time `gorm:"type:timestamptz"`

	CreatedAt time.Time
}

// Live reports whether the token could still be honored at the given time.
func (t *ActionToken) Live(now time.Time) bool {
	return !t.Used && t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
