package otperrors

import (
	"net/http"

	"github.com/kirankattii/Leave-approval/internal/shared/apperror"
)

var (
	// Covers both the missing-record and already-used cases so the caller
	// cannot tell them apart.
	ErrOTPNotFound = apperror.New(
		apperror.CodeInvalidOrExpired,
		"invalid or expired OTP",
		http.StatusBadRequest,
	)
	ErrOTPExpired = apperror.New(
		apperror.CodeInvalidOrExpired,
		"OTP has expired",
		http.StatusBadRequest,
	)
	ErrOTPMismatch = apperror.New(
		apperror.CodeInvalidOrExpired,
		"invalid OTP",
		http.StatusBadRequest,
	)
	ErrTooManyAttempts = apperror.New(
		apperror.CodeTooManyAttempts,
		"too many failed attempts, please request a new OTP",
		http.StatusTooManyRequests,
	)
)
