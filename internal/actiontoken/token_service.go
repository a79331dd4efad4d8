package actiontoken

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	tokenerrors "github.com/kirankattii/Leave-approval/internal/actiontoken/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// 32 random bytes per token; far beyond what online probing can cover
// inside any reasonable ttl window.
const tokenBytes = 32

//go:generate mockgen -source=token_service.go -destination=mock/token_service_mock.go -package=mock
type Service interface {
	// Issue creates a live token bound to (leave, approver, action),
	// superseding any prior live token for the same pair.
	Issue(ctx context.Context, leaveID, approverID uuid.UUID, action string, ttl time.Duration) (string, error)
	// Validate is a read-only liveness check; it never consumes.
	Validate(ctx context.Context, token string) (*ActionToken, error)
	// Consume marks the token used; exactly one concurrent caller succeeds.
	Consume(ctx context.Context, token string) error
	// RevokeAll invalidates every outstanding token for the request.
	RevokeAll(ctx context.Context, leaveID uuid.UUID) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("actiontoken.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("actiontoken.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Issue(ctx context.Context, leaveID, approverID uuid.UUID, action string, ttl time.Duration) (string, error) {
	if action != ActionApprove && action != ActionReject {
		return "", tokenerrors.ErrInvalidAction
	}

	raw := make([]byte, tokenBytes)
	if _, err := rand.Read(raw); err != nil {
		s.logger.Error("token entropy read failed", zap.Error(err))
		return "", err
	}

	now := time.Now().UTC()
	if err := s.repo.SupersedeFor(ctx, leaveID, action, now); err != nil {
		s.logger.Error("supersede prior tokens failed",
			zap.String("leave_id", leaveID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
		return "", err
	}

	t := &ActionToken{
		ID:         uuid.New(),
		Token:      hex.EncodeToString(raw),
		LeaveID:    leaveID,
		ApproverID: approverID,
		Action:     action,
		ExpiresAt:  now.Add(ttl),
	}
	if err := s.repo.Create(ctx, t); err != nil {
		s.logger.Error("token persist failed", zap.Error(err))
		return "", err
	}

	s.logger.Info("action token issued",
		zap.String("leave_id", leaveID.String()),
		zap.String("action", action),
		zap.Time("expires_at", t.ExpiresAt),
	)
	return t.Token, nil
}

func (s *service) Validate(ctx context.Context, token string) (*ActionToken, error) {
	t, err := s.repo.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tokenerrors.ErrInvalidOrExpired
		}
		s.logger.Error("token lookup failed", zap.Error(err))
		return nil, err
	}
	if !t.Live(time.Now().UTC()) {
		return nil, tokenerrors.ErrInvalidOrExpired
	}
	return t, nil
}

func (s *service) Consume(ctx context.Context, token string) error {
	won, err := s.repo.Consume(ctx, token, time.Now().UTC())
	if err != nil {
		s.logger.Error("token consume failed", zap.Error(err))
		return err
	}
	if !won {
		return tokenerrors.ErrInvalidOrExpired
	}
	return nil
}

func (s *service) RevokeAll(ctx context.Context, leaveID uuid.UUID) error {
	revoked, err := s.repo.RevokeAllForLeave(ctx, leaveID, time.Now().UTC())
	if err != nil {
		s.logger.Error("token revocation failed",
			zap.String("leave_id", leaveID.String()),
			zap.Error(err),
		)
		return err
	}
	if revoked > 0 {
		s.logger.Info("action tokens revoked",
			zap.String("leave_id", leaveID.String()),
			zap.Int64("count", revoked),
		)
	}
	return nil
}
