package tokenerrors

import (
	"net/http"

	"github.com/kirankattii/Leave-approval/internal/shared/apperror"
)

var (
	ErrInvalidOrExpired = apperror.New(
		apperror.CodeInvalidOrExpired,
		"invalid or expired security token, please request a new approval email",
		http.StatusBadRequest,
	)
	ErrTokenMismatch = apperror.New(
		apperror.CodeInvalidOrExpired,
		"token validation failed, security mismatch detected",
		http.StatusBadRequest,
	)
	ErrInvalidAction = apperror.New(
		apperror.CodeInvalidInput,
		"action must be approve or reject",
		http.StatusBadRequest,
	)
)
