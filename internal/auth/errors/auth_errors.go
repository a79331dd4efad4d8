package autherrors

import (
	"net/http"

	"github.com/kirankattii/Leave-approval/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"incorrect username/email or password",
		http.StatusUnauthorized,
	)
	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"invalid session token",
		http.StatusUnauthorized,
	)
	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"session token has expired",
		http.StatusUnauthorized,
	)
	ErrUserNotFound = apperror.New(
		apperror.CodeNotFound,
		"user not found",
		http.StatusNotFound,
	)
	ErrInvalidUserID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid user id",
		http.StatusBadRequest,
	)
	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"email already registered",
		http.StatusBadRequest,
	)
	ErrUsernameTaken = apperror.New(
		apperror.CodeConflict,
		"username already taken",
		http.StatusBadRequest,
	)
	ErrManagerRequired = apperror.New(
		apperror.CodeForbidden,
		"access denied, manager role required",
		http.StatusForbidden,
	)
	ErrInvalidResetRequest = apperror.New(
		apperror.CodeInvalidOrExpired,
		"invalid or expired OTP",
		http.StatusBadRequest,
	)
)
