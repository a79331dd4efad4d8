package notification

import (
	"fmt"
	"strings"

	"github.com/kirankattii/Leave-approval/internal/events"
)

// RenderLeaveActionEmail builds the approver email. The approve link posts
// the token+password form; the reject link is the token-only entry that
// redirects into the dashboard.
func RenderLeaveActionEmail(ev events.LeaveSubmittedEvent, backendURL, frontendURL string) Message {
	approveURL := fmt.Sprintf(
		"%s/approve-leave?leave_id=%s&token=%s&action=approve",
		strings.TrimRight(frontendURL, "/"), ev.LeaveID, ev.ApprovalToken,
	)
	rejectURL := fmt.Sprintf(
		"%s/api/v1/leaves/reject-with-token?token=%s",
		strings.TrimRight(backendURL, "/"), ev.RejectionToken,
	)

	subject := fmt.Sprintf("Leave Request Approval - %s", ev.EmployeeName)

	text := fmt.Sprintf(`Leave request awaiting your decision.

Employee:   %s
Leave type: %s
Dates:      %s to %s (%d day(s))
Reason:     %s

Approve (password required): %s
Reject (opens dashboard):    %s

Both links expire and can be used at most once. If the request has already
been decided, the links stop working.
`,
		ev.EmployeeName, ev.LeaveType, ev.StartDate, ev.EndDate, ev.TotalDays, ev.Reason,
		approveURL, rejectURL,
	)

	html := fmt.Sprintf(`<html><body>
<h2>Leave Request Approval</h2>
<p><b>%s</b> requested <b>%s</b> leave from <b>%s</b> to <b>%s</b> (%d day(s)).</p>
<p>Reason: %s</p>
<p><a href=%q>Approve</a> (you will be asked for your password)</p>
<p><a href=%q>Reject</a> (opens your dashboard)</p>
<p>These links are single use and expire automatically.</p>
</body></html>`,
		ev.EmployeeName, ev.LeaveType, ev.StartDate, ev.EndDate, ev.TotalDays, ev.Reason,
		approveURL, rejectURL,
	)

	return Message{
		To:       ev.ApproverEmail,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	}
}

// RenderLeaveActionedEmail builds the decision notice for the employee.
func RenderLeaveActionedEmail(ev events.LeaveActionedEvent) Message {
	subject := fmt.Sprintf("Your leave request has been %s", ev.Status)

	text := fmt.Sprintf("Hello %s,\n\nYour leave request has been %s.\n", ev.EmployeeName, ev.Status)
	if ev.Comments != "" {
		text += fmt.Sprintf("\nApprover comment: %s\n", ev.Comments)
	}

	return Message{
		To:       ev.EmployeeEmail,
		Subject:  subject,
		TextBody: text,
	}
}

// RenderOTPEmail builds the password-reset code email.
func RenderOTPEmail(ev events.PasswordResetOTPEvent) Message {
	subject := "Your Password Reset OTP - Leave Management System"

	text := fmt.Sprintf(`Password Reset Request - Leave Management System

You have requested to reset your password.

Your One-Time Password (OTP) is: %s

Important:
- This OTP expires in %d minutes
- You can only use this OTP once
- If you didn't request this, please ignore this email

This is an automated message. Please do not reply to this email.
`, ev.OTP, ev.ExpiresInMinutes)

	html := fmt.Sprintf(`<html><body>
<h2>Password Reset Request</h2>
<p>You have requested to reset your password for the Leave Management System.</p>
<p>Your One-Time Password (OTP) is:</p>
<h1 style="letter-spacing:8px;font-family:monospace;">%s</h1>
<ul>
<li>This OTP expires in <b>%d minutes</b></li>
<li>You can only use this OTP <b>once</b></li>
<li>If you didn't request this, please ignore this email</li>
</ul>
</body></html>`, ev.OTP, ev.ExpiresInMinutes)

	return Message{
		To:       ev.Email,
		Subject:  subject,
		TextBody: text,
		HTMLBody: html,
	}
}
