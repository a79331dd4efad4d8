package otp

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

//go:generate mockgen -source=otp_repo.go -destination=mock/otp_repo_mock.go -package=mock
type Repository interface {
	Upsert(ctx context.Context, rec *PasswordReset) error
	FindByEmail(ctx context.Context, email string) (*PasswordReset, error)
	IncrementAttempts(ctx context.Context, email string) error
	// MarkUsed flips used=false to true; reports whether this caller won.
	MarkUsed(ctx context.Context, email string) (bool, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Upsert(ctx context.Context, rec *PasswordReset) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"otp", "expires_at", "used", "used_at", "attempts", "updated_at",
			}),
		}).
		Create(rec).Error
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*PasswordReset, error) {
	var rec PasswordReset
	err := r.db.WithContext(ctx).
		First(&rec, "email = ?", email).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) IncrementAttempts(ctx context.Context, email string) error {
	return r.db.WithContext(ctx).
		Model(&PasswordReset{}).
		Where("email = ?", email).
		UpdateColumn("attempts", gorm.Expr("attempts + 1")).Error
}

func (r *repository) MarkUsed(ctx context.Context, email string) (bool, error) {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).
		Model(&PasswordReset{}).
		Where("email = ? AND used = ?", email, false).
		Updates(map[string]any{"used": true, "used_at": now})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
