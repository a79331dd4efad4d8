package actiontoken

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=token_repo.go -destination=mock/token_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, t *ActionToken) error
	FindByToken(ctx context.Context, token string) (*ActionToken, error)
	// Consume flips the token to used iff it is still live at now; reports
	// whether this caller won the race.
	Consume(ctx context.Context, token string, now time.Time) (bool, error)
	// RevokeAllForLeave invalidates every live token for the request.
	RevokeAllForLeave(ctx context.Context, leaveID uuid.UUID, now time.Time) (int64, error)
	// SupersedeFor invalidates live tokens for one (leave, action) pair so
	// re-notification never leaves two honorable tokens for the same action.
	SupersedeFor(ctx context.Context, leaveID uuid.UUID, action string, now time.Time) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, t *ActionToken) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repository) FindByToken(ctx context.Context, token string) (*ActionToken, error) {
	var t ActionToken
	err := r.db.WithContext(ctx).
		First(&t, "token = ?", token).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *repository) Consume(ctx context.Context, token string, now time.Time) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&ActionToken{}).
		Where("token = ? AND used = ? AND revoked_at IS NULL AND expires_at > ?", token, false, now).
		Updates(map[string]any{"used": true, "used_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *repository) RevokeAllForLeave(ctx context.Context, leaveID uuid.UUID, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&ActionToken{}).
		Where("leave_id = ? AND used = ? AND revoked_at IS NULL", leaveID, false).
		Update("revoked_at", now)
	return res.RowsAffected, res.Error
}

func (r *repository) SupersedeFor(ctx context.Context, leaveID uuid.UUID, action string, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&ActionToken{}).
		Where("leave_id = ? AND action = ? AND used = ? AND revoked_at IS NULL", leaveID, action, false).
		Update("revoked_at", now).Error
}
