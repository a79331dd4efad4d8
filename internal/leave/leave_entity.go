package leave

import (
	"time"

	"github.com/google/uuid"
)

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Provenance of a completed transition.
const (
	ViaDashboard     = "dashboard"
	ViaEmailToken    = "email-token"
	ViaEmailPassword = "email-password"
)

// LeaveRequest is mutated exactly once, by the approval transition. The
// employee fields are denormalized at submit time so notification emails
// never need a join.
type LeaveRequest struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`

	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	ApproverID uuid.UUID `gorm:"type:uuid;not null;index"`

	EmployeeName  string `gorm:"type:varchar(120);not null"`
	EmployeeEmail string `gorm:"type:varchar(255);not null"`
	Department    string `gorm:"type:varchar(60);not null"`

	LeaveType string    `gorm:"type:varchar(30);not null"`
	StartDate time.Time `gorm:"type:date;not null"`
	EndDate   time.Time `gorm:"type:date;not null"`
	// Inclusive day count, fixed at submission.
	TotalDays int    `gorm:"not null"`
	Reason    string `gorm:"type:text;not null"`

	Status      string `gorm:"type:varchar(20);not null;default:'pending';index"`
	ActionTaken bool   `gorm:"not null;default:false"`

	Comments        *string    `gorm:"type:text"`
	ActionTimestamp *time.Time
	ProcessedVia    *string `gorm:"type:varchar(20)"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
