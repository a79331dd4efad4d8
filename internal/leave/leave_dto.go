package leave

const dateLayout = "2006-01-02"

type SubmitLeaveRequest struct {
	LeaveType     string `json:"leave_type" binding:"required,max=30"`
	StartDate     string `json:"start_date" binding:"required"`
	EndDate       string `json:"end_date" binding:"required"`
	Reason        string `json:"reason" binding:"required"`
	ApproverEmail string `json:"approver_email" binding:"required,email"`
}

// ActionRequest is the dashboard approve/reject body.
type ActionRequest struct {
	Comments string `json:"comments"`
}

// TokenActionForm is the form-encoded body posted from the email approval
// page. The action and leave id are echoed from the link; the token
// binding check is what actually enforces them.
type TokenActionForm struct {
	LeaveID  string `form:"leave_id" binding:"required,uuid"`
	Action   string `form:"action" binding:"required"`
	Token    string `form:"token" binding:"required"`
	Password string `form:"password" binding:"required"`
	Comments string `form:"comments"`
}

type LeaveResponse struct {
	ID              string  `json:"id"`
	EmployeeID      string  `json:"employee_id"`
	ApproverID      string  `json:"approver_id"`
	EmployeeName    string  `json:"employee_name"`
	Department      string  `json:"department"`
	LeaveType       string  `json:"leave_type"`
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	TotalDays       int     `json:"total_days"`
	Reason          string  `json:"reason"`
	Status          string  `json:"status"`
	ActionTaken     bool    `json:"action_taken"`
	Comments        *string `json:"comments,omitempty"`
	ActionTimestamp *string `json:"action_timestamp,omitempty"`
	ProcessedVia    *string `json:"processed_via,omitempty"`
	CreatedAt       string  `json:"created_at"`
}

func mapToResponse(lr LeaveRequest) LeaveResponse {
	resp := LeaveResponse{
		ID:           lr.ID.String(),
		EmployeeID:   lr.EmployeeID.String(),
		ApproverID:   lr.ApproverID.String(),
		EmployeeName: lr.EmployeeName,
		Department:   lr.Department,
		LeaveType:    lr.LeaveType,
		StartDate:    lr.StartDate.Format(dateLayout),
		EndDate:      lr.EndDate.Format(dateLayout),
		TotalDays:    lr.TotalDays,
		Reason:       lr.Reason,
		Status:       lr.Status,
		ActionTaken:  lr.ActionTaken,
		Comments:     lr.Comments,
		ProcessedVia: lr.ProcessedVia,
		CreatedAt:    lr.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if lr.ActionTimestamp != nil {
		ts := lr.ActionTimestamp.Format("2006-01-02 15:04:05")
		resp.ActionTimestamp = &ts
	}
	return resp
}
