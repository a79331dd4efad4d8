package leave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/kirankattii/Leave-approval/internal/actiontoken"
	tokenerrors "github.com/kirankattii/Leave-approval/internal/actiontoken/errors"
	"github.com/kirankattii/Leave-approval/internal/auth"
	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/events"
	leaveerrors "github.com/kirankattii/Leave-approval/internal/leave/errors"
	"github.com/kirankattii/Leave-approval/internal/notification"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	pendingCachePrefix = "leave:pending:"
	pendingCacheTTL    = 2 * time.Minute

	rejectEntryPrefix = "leave:reject-entry:"
	rejectEntryTTL    = 15 * time.Minute
)

// Proof is the authorization evidence one of the three entry paths
// produced. The sealed marker keeps the set closed.
type Proof interface {
	isProof()
}

// SessionProof is the dashboard path: a verified session whose account
// must be the bound approver.
type SessionProof struct {
	ApproverID uuid.UUID
}

// TokenPasswordProof is the email form path: the action token and the
// approver's password must both hold independently.
type TokenPasswordProof struct {
	Token    string
	Password string
}

// TokenProof is the reject convenience link. It authorizes entry to the
// dashboard, never the transition itself.
type TokenProof struct {
	Token string
}

func (SessionProof) isProof()       {}
func (TokenPasswordProof) isProof() {}
func (TokenProof) isProof()         {}

//go:generate mockgen -source=leave_service.go -destination=mock/leave_service_mock.go -package=mock
type Service interface {
	Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (LeaveResponse, error)
	ListMine(ctx context.Context, employeeID string) ([]LeaveResponse, error)
	ListPending(ctx context.Context, approverID string) ([]LeaveResponse, error)
	ListProcessed(ctx context.Context, approverID string) ([]LeaveResponse, error)

	// ApplyAction runs the single transition primitive behind every entry
	// path. At most one call per request ever succeeds.
	ApplyAction(ctx context.Context, proof Proof, leaveID string, action string, comments string) (LeaveResponse, error)

	// RedeemRejectEntry consumes a reject link token and returns the leave
	// id the caller should be redirected to.
	RedeemRejectEntry(ctx context.Context, proof TokenProof) (string, error)
}

type service struct {
	repo       Repository
	users      auth.Repository
	verifier   *auth.CredentialVerifier
	tokens     actiontoken.Service
	dispatcher notification.Dispatcher
	rdb        *redis.Client
	group      singleflight.Group
	tokenTTL   time.Duration
	logger     *zap.Logger
}

func NewService(
	repo Repository,
	users auth.Repository,
	verifier *auth.CredentialVerifier,
	tokens actiontoken.Service,
	dispatcher notification.Dispatcher,
	rdb *redis.Client,
	tokenTTL time.Duration,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("leave.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("leave.service")
	}
	return &service{
		repo:       repo,
		users:      users,
		verifier:   verifier,
		tokens:     tokens,
		dispatcher: dispatcher,
		rdb:        rdb,
		tokenTTL:   tokenTTL,
		logger:     l,
	}
}

func (s *service) Submit(ctx context.Context, employeeID string, req SubmitLeaveRequest) (LeaveResponse, error) {
	empID, err := uuid.Parse(employeeID)
	if err != nil {
		return LeaveResponse{}, autherrors.ErrInvalidUserID
	}

	start, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	end, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateFormat
	}
	if end.Before(start) {
		return LeaveResponse{}, leaveerrors.ErrInvalidDateRange
	}

	employee, err := s.users.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, autherrors.ErrUserNotFound
		}
		return LeaveResponse{}, err
	}

	approver, err := s.users.FindByEmail(ctx, req.ApproverEmail)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrApproverNotFound
		}
		return LeaveResponse{}, err
	}

	// Inclusive day count, fixed here and never recomputed.
	totalDays := int(end.Sub(start).Hours()/24) + 1

	lr := &LeaveRequest{
		ID:            uuid.New(),
		EmployeeID:    empID,
		ApproverID:    approver.ID,
		EmployeeName:  employee.FullName,
		EmployeeEmail: employee.Email,
		Department:    employee.Department,
		LeaveType:     req.LeaveType,
		StartDate:     start,
		EndDate:       end,
		TotalDays:     totalDays,
		Reason:        req.Reason,
		Status:        StatusPending,
	}

	if err := s.repo.Create(ctx, lr); err != nil {
		s.logger.Error("leave create failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	s.logger.Info("leave request submitted",
		zap.String("leave_id", lr.ID.String()),
		zap.String("employee_id", employeeID),
		zap.String("approver_id", approver.ID.String()),
		zap.Int("total_days", totalDays),
	)

	s.invalidatePending(ctx, approver.ID)
	s.notifyApprover(ctx, lr, approver.Email)

	return mapToResponse(*lr), nil
}

// notifyApprover mints the approve/reject token pair and enqueues the
// approver email. Failures are logged only; the submission stands.
func (s *service) notifyApprover(ctx context.Context, lr *LeaveRequest, approverEmail string) {
	approveToken, err := s.tokens.Issue(ctx, lr.ID, lr.ApproverID, actiontoken.ActionApprove, s.tokenTTL)
	if err != nil {
		s.logger.Error("approve token issue failed",
			zap.String("leave_id", lr.ID.String()),
			zap.Error(err),
		)
		return
	}
	rejectToken, err := s.tokens.Issue(ctx, lr.ID, lr.ApproverID, actiontoken.ActionReject, s.tokenTTL)
	if err != nil {
		s.logger.Error("reject token issue failed",
			zap.String("leave_id", lr.ID.String()),
			zap.Error(err),
		)
		return
	}

	s.dispatcher.LeaveSubmitted(ctx, events.LeaveSubmittedEvent{
		LeaveID:        lr.ID.String(),
		ApproverID:     lr.ApproverID.String(),
		ApproverEmail:  approverEmail,
		EmployeeName:   lr.EmployeeName,
		EmployeeEmail:  lr.EmployeeEmail,
		LeaveType:      lr.LeaveType,
		StartDate:      lr.StartDate.Format(dateLayout),
		EndDate:        lr.EndDate.Format(dateLayout),
		TotalDays:      lr.TotalDays,
		Reason:         lr.Reason,
		ApprovalToken:  approveToken,
		RejectionToken: rejectToken,
	})
}

func (s *service) ListMine(ctx context.Context, employeeID string) ([]LeaveResponse, error) {
	id, err := uuid.Parse(employeeID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	list, err := s.repo.ListMine(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapAll(list), nil
}

func (s *service) ListPending(ctx context.Context, approverID string) ([]LeaveResponse, error) {
	id, err := uuid.Parse(approverID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	cacheKey := pendingCachePrefix + approverID

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var out []LeaveResponse
			if err := json.Unmarshal([]byte(cached), &out); err == nil {
				return out, nil
			}
		}
	}

	// singleflight collapses a stampede of approvers refreshing their
	// dashboard into one database read per key.
	v, err, _ := s.group.Do(cacheKey, func() (any, error) {
		list, err := s.repo.ListPendingForApprover(ctx, id)
		if err != nil {
			return nil, err
		}
		out := mapAll(list)

		if s.rdb != nil {
			if body, err := json.Marshal(out); err == nil {
				if err := s.rdb.Set(ctx, cacheKey, body, pendingCacheTTL).Err(); err != nil {
					s.logger.Warn("pending cache write failed", zap.Error(err))
				}
			}
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]LeaveResponse), nil
}

func (s *service) ListProcessed(ctx context.Context, approverID string) ([]LeaveResponse, error) {
	id, err := uuid.Parse(approverID)
	if err != nil {
		return nil, autherrors.ErrInvalidUserID
	}

	list, err := s.repo.ListProcessedForApprover(ctx, id)
	if err != nil {
		return nil, err
	}
	return mapAll(list), nil
}

func (s *service) ApplyAction(ctx context.Context, proof Proof, leaveID string, action string, comments string) (LeaveResponse, error) {
	id, err := uuid.Parse(leaveID)
	if err != nil {
		return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
	}

	var status string
	switch action {
	case actiontoken.ActionApprove:
		status = StatusApproved
	case actiontoken.ActionReject:
		status = StatusRejected
	default:
		return LeaveResponse{}, leaveerrors.ErrInvalidAction
	}

	lr, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return LeaveResponse{}, leaveerrors.ErrLeaveNotFound
		}
		s.logger.Error("leave lookup failed", zap.Error(err))
		return LeaveResponse{}, err
	}

	if lr.ActionTaken {
		return LeaveResponse{}, leaveerrors.AlreadyActioned(lr.Status)
	}

	provenance, consumeToken, err := s.authorize(ctx, proof, lr, action)
	if err != nil {
		return LeaveResponse{}, err
	}

	now := time.Now().UTC()
	var commentsPtr *string
	if comments != "" {
		commentsPtr = &comments
	}

	won, err := s.repo.ApplyDecision(ctx, Decision{
		LeaveID:      id,
		Status:       status,
		Comments:     commentsPtr,
		ProcessedVia: provenance,
		ConsumeToken: consumeToken,
		Now:          now,
	})
	if err != nil {
		return LeaveResponse{}, err
	}
	if !won {
		// Lost the race after the precheck; report what actually stands.
		current, ferr := s.repo.FindByID(ctx, id)
		if ferr != nil {
			return LeaveResponse{}, leaveerrors.AlreadyActioned("decided")
		}
		return LeaveResponse{}, leaveerrors.AlreadyActioned(current.Status)
	}

	s.logger.Info("leave request actioned",
		zap.String("leave_id", leaveID),
		zap.String("status", status),
		zap.String("processed_via", provenance),
	)

	s.invalidatePending(ctx, lr.ApproverID)

	s.dispatcher.LeaveActioned(ctx, events.LeaveActionedEvent{
		LeaveID:       leaveID,
		EmployeeName:  lr.EmployeeName,
		EmployeeEmail: lr.EmployeeEmail,
		Status:        status,
		Comments:      comments,
	})

	lr.Status = status
	lr.ActionTaken = true
	lr.Comments = commentsPtr
	lr.ActionTimestamp = &now
	lr.ProcessedVia = &provenance
	return mapToResponse(*lr), nil
}

// authorize checks one proof against the request and reports the
// provenance tag plus the token to consume inside the transition, if any.
func (s *service) authorize(ctx context.Context, proof Proof, lr *LeaveRequest, action string) (string, string, error) {
	switch p := proof.(type) {
	case SessionProof:
		if p.ApproverID != lr.ApproverID {
			return "", "", leaveerrors.ErrNotAssignedApprover
		}
		if action == actiontoken.ActionReject && s.consumeRejectEntry(ctx, lr.ID, p.ApproverID) {
			return ViaEmailToken, "", nil
		}
		return ViaDashboard, "", nil

	case TokenPasswordProof:
		t, err := s.tokens.Validate(ctx, p.Token)
		if err != nil {
			return "", "", err
		}
		if t.LeaveID != lr.ID || t.Action != action {
			return "", "", tokenerrors.ErrTokenMismatch
		}
		if t.ApproverID != lr.ApproverID {
			return "", "", leaveerrors.ErrNotAssignedApprover
		}

		approver, err := s.users.FindByID(ctx, t.ApproverID.String())
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return "", "", autherrors.ErrInvalidCredentials
			}
			return "", "", err
		}
		// The password check is required on top of the token, never
		// instead of it.
		if !s.verifier.VerifyPassword(p.Password, approver.HashedPassword) {
			return "", "", autherrors.ErrInvalidCredentials
		}
		return ViaEmailPassword, p.Token, nil

	case TokenProof:
		return "", "", leaveerrors.ErrTokenEntryOnly

	default:
		return "", "", leaveerrors.ErrTokenEntryOnly
	}
}

func (s *service) RedeemRejectEntry(ctx context.Context, proof TokenProof) (string, error) {
	t, err := s.tokens.Validate(ctx, proof.Token)
	if err != nil {
		return "", err
	}
	if t.Action != actiontoken.ActionReject {
		return "", tokenerrors.ErrTokenMismatch
	}

	if err := s.tokens.Consume(ctx, proof.Token); err != nil {
		return "", err
	}

	s.markRejectEntry(ctx, t.LeaveID, t.ApproverID)

	s.logger.Info("reject link redeemed",
		zap.String("leave_id", t.LeaveID.String()),
		zap.String("approver_id", t.ApproverID.String()),
	)
	return t.LeaveID.String(), nil
}

// markRejectEntry remembers, server side, that the approver arrived via a
// consumed reject link so the follow-up dashboard rejection can be tagged
// with email-token provenance. Best effort.
func (s *service) markRejectEntry(ctx context.Context, leaveID, approverID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	key := fmt.Sprintf("%s%s:%s", rejectEntryPrefix, leaveID, approverID)
	if err := s.rdb.Set(ctx, key, "1", rejectEntryTTL).Err(); err != nil {
		s.logger.Warn("reject entry marker write failed", zap.Error(err))
	}
}

func (s *service) consumeRejectEntry(ctx context.Context, leaveID, approverID uuid.UUID) bool {
	if s.rdb == nil {
		return false
	}
	key := fmt.Sprintf("%s%s:%s", rejectEntryPrefix, leaveID, approverID)
	val, err := s.rdb.GetDel(ctx, key).Result()
	return err == nil && val != ""
}

func (s *service) invalidatePending(ctx context.Context, approverID uuid.UUID) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, pendingCachePrefix+approverID.String()).Err(); err != nil {
		s.logger.Warn("pending cache invalidation failed", zap.Error(err))
	}
}

func mapAll(list []LeaveRequest) []LeaveResponse {
	out := make([]LeaveResponse, len(list))
	for i, lr := range list {
		out[i] = mapToResponse(lr)
	}
	return out
}
