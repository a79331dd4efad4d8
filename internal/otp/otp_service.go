package otp

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	otperrors "github.com/kirankattii/Leave-approval/internal/otp/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const codeDigits = 1000000 // 6-digit codes

//go:generate mockgen -source=otp_service.go -destination=mock/otp_service_mock.go -package=mock
type Service interface {
	// Issue replaces any live code for the email and returns the new one.
	Issue(ctx context.Context, email string) (string, error)
	// Verify checks the submitted code and, on match, marks it used.
	// A code past the attempt ceiling fails even when it matches.
	Verify(ctx context.Context, email, code string) error
}

type service struct {
	repo        Repository
	ttl         time.Duration
	maxAttempts int
	logger      *zap.Logger
}

func NewService(repo Repository, ttl time.Duration, maxAttempts int, logger ...*zap.Logger) Service {
	l := zap.L().Named("otp.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("otp.service")
	}
	return &service{repo: repo, ttl: ttl, maxAttempts: maxAttempts, logger: l}
}

func (s *service) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateCode()
	if err != nil {
		s.logger.Error("otp code generation failed", zap.Error(err))
		return "", err
	}

	now := time.Now().UTC()
	rec := &PasswordReset{
		ID:        uuid.New(),
		Email:     email,
		OTP:       code,
		ExpiresAt: now.Add(s.ttl),
		Used:      false,
		UsedAt:    nil,
		Attempts:  0,
	}

	if err := s.repo.Upsert(ctx, rec); err != nil {
		s.logger.Error("otp upsert failed", zap.Error(err))
		return "", err
	}

	s.logger.Info("otp issued",
		zap.String("email", email),
		zap.Time("expires_at", rec.ExpiresAt),
	)
	return code, nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	rec, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return otperrors.ErrOTPNotFound
		}
		s.logger.Error("otp lookup failed", zap.Error(err))
		return err
	}

	if rec.Used {
		return otperrors.ErrOTPNotFound
	}

	// Ceiling first: a correct code after too many failures still fails
	// until a fresh code is issued.
	if rec.Attempts >= s.maxAttempts {
		s.logger.Warn("otp attempt ceiling reached", zap.String("email", email))
		return otperrors.ErrTooManyAttempts
	}

	if time.Now().UTC().After(rec.ExpiresAt) {
		return otperrors.ErrOTPExpired
	}

	if rec.OTP != code {
		if err := s.repo.IncrementAttempts(ctx, email); err != nil {
			s.logger.Error("otp attempt increment failed", zap.Error(err))
		}
		return otperrors.ErrOTPMismatch
	}

	won, err := s.repo.MarkUsed(ctx, email)
	if err != nil {
		s.logger.Error("otp mark used failed", zap.Error(err))
		return err
	}
	if !won {
		// A concurrent verification consumed it first.
		return otperrors.ErrOTPNotFound
	}

	s.logger.Info("otp verified", zap.String("email", email))
	return nil
}

func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeDigits))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
