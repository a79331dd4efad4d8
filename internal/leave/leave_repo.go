package leave

import (
	"context"
	"time"

	"github.com/kirankattii/Leave-approval/internal/actiontoken"
	tokenerrors "github.com/kirankattii/Leave-approval/internal/actiontoken/errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Decision carries everything ApplyDecision needs to commit a transition.
// When ConsumeToken is set, the token must still be live inside the
// transaction or the whole transition rolls back.
type Decision struct {
	LeaveID      uuid.UUID
	Status       string
	Comments     *string
	ProcessedVia string
	ConsumeToken string
	Now          time.Time
}

//go:generate mockgen -source=leave_repo.go -destination=mock/leave_repo_mock.go -package=mock
type Repository interface {
	Create(ctx context.Context, lr *LeaveRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error)
	ListMine(ctx context.Context, employeeID uuid.UUID) ([]LeaveRequest, error)
	ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]LeaveRequest, error)
	ListProcessedForApprover(ctx context.Context, approverID uuid.UUID) ([]LeaveRequest, error)

	// ApplyDecision commits the transition, the optional token consumption,
	// and the revocation of every remaining live token in one transaction.
	// won is false when another decision got there first; the database is
	// untouched in that case.
	ApplyDecision(ctx context.Context, d Decision) (won bool, err error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, lr *LeaveRequest) error {
	return r.db.WithContext(ctx).Create(lr).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*LeaveRequest, error) {
	var lr LeaveRequest
	if err := r.db.WithContext(ctx).
		First(&lr, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &lr, nil
}

func (r *repository) ListMine(ctx context.Context, employeeID uuid.UUID) ([]LeaveRequest, error) {
	var out []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]LeaveRequest, error) {
	var out []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("approver_id = ? AND status = ?", approverID, StatusPending).
		Order("created_at ASC").
		Find(&out).Error
	return out, err
}

func (r *repository) ListProcessedForApprover(ctx context.Context, approverID uuid.UUID) ([]LeaveRequest, error) {
	var out []LeaveRequest
	err := r.db.WithContext(ctx).
		Where("approver_id = ? AND action_taken = ?", approverID, true).
		Order("action_timestamp DESC").
		Find(&out).Error
	return out, err
}

func (r *repository) ApplyDecision(ctx context.Context, d Decision) (bool, error) {
	won := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Compare-and-set on action_taken; losing the race is not an
		// error at this layer.
		res := tx.Model(&LeaveRequest{}).
			Where("id = ? AND action_taken = ?", d.LeaveID, false).
			Updates(map[string]any{
				"status":           d.Status,
				"action_taken":     true,
				"comments":         d.Comments,
				"action_timestamp": d.Now,
				"processed_via":    d.ProcessedVia,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		if d.ConsumeToken != "" {
			res := tx.Model(&actiontoken.ActionToken{}).
				Where("token = ? AND used = ? AND revoked_at IS NULL AND expires_at > ?",
					d.ConsumeToken, false, d.Now).
				Updates(map[string]any{"used": true, "used_at": d.Now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				// Token raced away; abort so the transition does not
				// commit on the back of a spent credential.
				return tokenerrors.ErrInvalidOrExpired
			}
		}

		if err := tx.Model(&actiontoken.ActionToken{}).
			Where("leave_id = ? AND used = ? AND revoked_at IS NULL", d.LeaveID, false).
			Update("revoked_at", d.Now).Error; err != nil {
			return err
		}

		won = true
		return nil
	})
	return won, err
}
