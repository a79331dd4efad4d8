package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/events"
	"github.com/kirankattii/Leave-approval/internal/notification"
	"github.com/kirankattii/Leave-approval/internal/otp"
	otperrors "github.com/kirankattii/Leave-approval/internal/otp/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=auth_service.go -destination=mock/auth_service_mock.go -package=mock
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (AuthResponse, error)
	GetMe(ctx context.Context, userID string) (UserResponse, error)

	// ForgotPassword never reveals whether the email is registered; the
	// response is identical either way.
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
}

type service struct {
	repo       Repository
	verifier   *CredentialVerifier
	otpSvc     otp.Service
	otpTTL     time.Duration
	dispatcher notification.Dispatcher
	logger     *zap.Logger
}

func NewService(
	repo Repository,
	verifier *CredentialVerifier,
	otpSvc otp.Service,
	otpTTL time.Duration,
	dispatcher notification.Dispatcher,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("auth.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("auth.service")
	}
	return &service{
		repo:       repo,
		verifier:   verifier,
		otpSvc:     otpSvc,
		otpTTL:     otpTTL,
		dispatcher: dispatcher,
		logger:     l,
	}
}

func (s *service) Register(ctx context.Context, req RegisterRequest) (UserResponse, error) {
	hashed, err := s.verifier.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hash failed", zap.Error(err))
		return UserResponse{}, err
	}

	role := strings.TrimSpace(req.Role)
	if role == "" {
		role = "employee"
	}
	department := strings.TrimSpace(req.Department)
	if department == "" {
		department = "General"
	}

	u := &User{
		Username:       strings.TrimSpace(req.Username),
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:       strings.TrimSpace(req.FullName),
		HashedPassword: hashed,
		Role:           role,
		Department:     department,
		IsManager:      req.IsManager,
		IsHR:           req.IsHR,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		s.logger.Warn("user registration failed",
			zap.String("email", u.Email),
			zap.Error(err),
		)
		return UserResponse{}, err
	}

	s.logger.Info("user registered",
		zap.String("user_id", u.ID.String()),
		zap.String("email", u.Email),
		zap.Bool("is_manager", u.IsManager),
	)
	return mapToResponse(*u), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	u, err := s.repo.FindByEmailOrUsername(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AuthResponse{}, autherrors.ErrInvalidCredentials
		}
		s.logger.Error("login lookup failed", zap.Error(err))
		return AuthResponse{}, err
	}

	if !s.verifier.VerifyPassword(req.Password, u.HashedPassword) {
		s.logger.Warn("login rejected", zap.String("identifier", req.Identifier))
		return AuthResponse{}, autherrors.ErrInvalidCredentials
	}

	token, err := s.verifier.IssueSession(u.ID.String(), u.Email, u.IsManager, 0)
	if err != nil {
		s.logger.Error("session issue failed", zap.Error(err))
		return AuthResponse{}, err
	}

	s.logger.Info("user logged in", zap.String("user_id", u.ID.String()))
	return AuthResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.verifier.SessionTTL().Seconds()),
		User:        mapToResponse(*u),
	}, nil
}

func (s *service) GetMe(ctx context.Context, userID string) (UserResponse, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return UserResponse{}, autherrors.ErrUserNotFound
		}
		return UserResponse{}, err
	}
	return mapToResponse(*u), nil
}

func (s *service) ForgotPassword(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Unknown address: succeed without issuing anything so the
			// endpoint cannot be used to enumerate accounts.
			s.logger.Info("password reset requested for unknown email")
			return nil
		}
		s.logger.Error("password reset lookup failed", zap.Error(err))
		return err
	}

	code, err := s.otpSvc.Issue(ctx, u.Email)
	if err != nil {
		return err
	}

	s.dispatcher.PasswordResetOTP(ctx, events.PasswordResetOTPEvent{
		Email:            u.Email,
		OTP:              code,
		ExpiresInMinutes: int(s.otpTTL.Minutes()),
	})
	return nil
}

func (s *service) ResetPassword(ctx context.Context, req ResetPasswordRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Same failure shape as a wrong code.
			return otperrors.ErrOTPNotFound
		}
		return err
	}

	if err := s.otpSvc.Verify(ctx, u.Email, req.OTP); err != nil {
		return err
	}

	hashed, err := s.verifier.HashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error("password hash failed", zap.Error(err))
		return err
	}

	if err := s.repo.UpdatePassword(ctx, u.ID.String(), hashed); err != nil {
		s.logger.Error("password update failed", zap.Error(err))
		return err
	}

	s.logger.Info("password reset completed", zap.String("user_id", u.ID.String()))
	return nil
}
