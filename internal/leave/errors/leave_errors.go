package leaveerrors

import (
	"fmt"
	"net/http"

	"github.com/kirankattii/Leave-approval/internal/shared/apperror"
)

var (
	ErrLeaveNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrNotAssignedApprover = apperror.New(
		apperror.CodeForbidden,
		"you are not the assigned approver for this leave request",
		http.StatusForbidden,
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"dates must use the YYYY-MM-DD format",
		http.StatusBadRequest,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must not be before start date",
		http.StatusBadRequest,
	)
	ErrApproverNotFound = apperror.New(
		apperror.CodeInvalidInput,
		"no account exists for the given approver email",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
	ErrTokenEntryOnly = apperror.New(
		apperror.CodeForbidden,
		"this link only opens the dashboard; complete the decision there",
		http.StatusForbidden,
	)
)

// AlreadyActioned names the existing status so a double-submitter can see
// what actually happened to the request.
func AlreadyActioned(status string) *apperror.AppError {
	return apperror.New(
		apperror.CodeInvalidState,
		fmt.Sprintf("this leave request has already been %s", status),
		http.StatusConflict,
	)
}
