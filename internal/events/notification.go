package events

import "time"

// NotificationEmailTopic carries every outbound email event. The consumer
// fans out on EventType.
const NotificationEmailTopic = "leave.notification.email.v1"

const (
	TypeLeaveSubmitted   = "leave.submitted"
	TypeLeaveActioned    = "leave.actioned"
	TypePasswordResetOTP = "auth.password_reset_otp"
)

// LeaveSubmittedEvent asks for the approver action email, including the
// single-use token pair embedded in the approve/reject links.
type LeaveSubmittedEvent struct {
	EventType      string    `json:"event_type"`
	LeaveID        string    `json:"leave_id"`
	ApproverID     string    `json:"approver_id"`
	ApproverEmail  string    `json:"approver_email"`
	EmployeeName   string    `json:"employee_name"`
	EmployeeEmail  string    `json:"employee_email"`
	LeaveType      string    `json:"leave_type"`
	StartDate      string    `json:"start_date"`
	EndDate        string    `json:"end_date"`
	TotalDays      int       `json:"total_days"`
	Reason         string    `json:"reason"`
	ApprovalToken  string    `json:"approval_token"`
	RejectionToken string    `json:"rejection_token"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// LeaveActionedEvent informs the employee of the decision.
type LeaveActionedEvent struct {
	EventType     string    `json:"event_type"`
	LeaveID       string    `json:"leave_id"`
	EmployeeName  string    `json:"employee_name"`
	EmployeeEmail string    `json:"employee_email"`
	Status        string    `json:"status"`
	Comments      string    `json:"comments,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// PasswordResetOTPEvent delivers the recovery code.
type PasswordResetOTPEvent struct {
	EventType        string    `json:"event_type"`
	Email            string    `json:"email"`
	OTP              string    `json:"otp"`
	ExpiresInMinutes int       `json:"expires_in_minutes"`
	OccurredAt       time.Time `json:"occurred_at"`
}
