package leave_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/kirankattii/Leave-approval/internal/actiontoken"
	tokenerrors "github.com/kirankattii/Leave-approval/internal/actiontoken/errors"
	"github.com/kirankattii/Leave-approval/internal/auth"
	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/events"
	"github.com/kirankattii/Leave-approval/internal/leave"
	leaveerrors "github.com/kirankattii/Leave-approval/internal/leave/errors"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeTokens implements the token service against an in-memory map with
// the same liveness semantics as the real store.
type fakeTokens struct {
	seq    int
	tokens map[string]*actiontoken.ActionToken
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{tokens: map[string]*actiontoken.ActionToken{}}
}

func (f *fakeTokens) Issue(ctx context.Context, leaveID, approverID uuid.UUID, action string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	for _, t := range f.tokens {
		if t.LeaveID == leaveID && t.Action == action && t.Live(now) {
			ts := now
			t.RevokedAt = &ts
		}
	}
	f.seq++
	value := fmt.Sprintf("tok-%s-%d", action, f.seq)
	f.tokens[value] = &actiontoken.ActionToken{
		ID:         uuid.New(),
		Token:      value,
		LeaveID:    leaveID,
		ApproverID: approverID,
		Action:     action,
		ExpiresAt:  now.Add(ttl),
	}
	return value, nil
}

func (f *fakeTokens) Validate(ctx context.Context, token string) (*actiontoken.ActionToken, error) {
	t, ok := f.tokens[token]
	if !ok || !t.Live(time.Now().UTC()) {
		return nil, tokenerrors.ErrInvalidOrExpired
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTokens) Consume(ctx context.Context, token string) error {
	now := time.Now().UTC()
	t, ok := f.tokens[token]
	if !ok || !t.Live(now) {
		return tokenerrors.ErrInvalidOrExpired
	}
	t.Used = true
	t.UsedAt = &now
	return nil
}

func (f *fakeTokens) RevokeAll(ctx context.Context, leaveID uuid.UUID) error {
	now := time.Now().UTC()
	for _, t := range f.tokens {
		if t.LeaveID == leaveID && !t.Used && t.RevokedAt == nil {
			ts := now
			t.RevokedAt = &ts
		}
	}
	return nil
}

// fakeLeaveRepo cooperates with fakeTokens so ApplyDecision shows the
// same all-or-nothing behavior as the transactional repository.
type fakeLeaveRepo struct {
	reqs   map[uuid.UUID]*leave.LeaveRequest
	tokens *fakeTokens
}

func newFakeLeaveRepo(tokens *fakeTokens) *fakeLeaveRepo {
	return &fakeLeaveRepo{reqs: map[uuid.UUID]*leave.LeaveRequest{}, tokens: tokens}
}

func (r *fakeLeaveRepo) Create(ctx context.Context, lr *leave.LeaveRequest) error {
	cp := *lr
	r.reqs[lr.ID] = &cp
	return nil
}

func (r *fakeLeaveRepo) FindByID(ctx context.Context, id uuid.UUID) (*leave.LeaveRequest, error) {
	lr, ok := r.reqs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *lr
	return &cp, nil
}

func (r *fakeLeaveRepo) ListMine(ctx context.Context, employeeID uuid.UUID) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, lr := range r.reqs {
		if lr.EmployeeID == employeeID {
			out = append(out, *lr)
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) ListPendingForApprover(ctx context.Context, approverID uuid.UUID) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, lr := range r.reqs {
		if lr.ApproverID == approverID && lr.Status == leave.StatusPending {
			out = append(out, *lr)
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) ListProcessedForApprover(ctx context.Context, approverID uuid.UUID) ([]leave.LeaveRequest, error) {
	var out []leave.LeaveRequest
	for _, lr := range r.reqs {
		if lr.ApproverID == approverID && lr.ActionTaken {
			out = append(out, *lr)
		}
	}
	return out, nil
}

func (r *fakeLeaveRepo) ApplyDecision(ctx context.Context, d leave.Decision) (bool, error) {
	lr, ok := r.reqs[d.LeaveID]
	if !ok || lr.ActionTaken {
		return false, nil
	}

	if d.ConsumeToken != "" {
		t, ok := r.tokens.tokens[d.ConsumeToken]
		if !ok || !t.Live(d.Now) {
			return false, tokenerrors.ErrInvalidOrExpired
		}
		t.Used = true
		t.UsedAt = &d.Now
	}

	lr.Status = d.Status
	lr.ActionTaken = true
	lr.Comments = d.Comments
	lr.ActionTimestamp = &d.Now
	via := d.ProcessedVia
	lr.ProcessedVia = &via

	for _, t := range r.tokens.tokens {
		if t.LeaveID == d.LeaveID && !t.Used && t.RevokedAt == nil {
			ts := d.Now
			t.RevokedAt = &ts
		}
	}
	return true, nil
}

type fakeUserRepo struct {
	byID    map[string]*auth.User
	byEmail map[string]*auth.User
}

func newFakeUserRepo(users ...*auth.User) *fakeUserRepo {
	r := &fakeUserRepo{byID: map[string]*auth.User{}, byEmail: map[string]*auth.User{}}
	for _, u := range users {
		r.byID[u.ID.String()] = u
		r.byEmail[u.Email] = u
	}
	return r
}

func (r *fakeUserRepo) Create(ctx context.Context, u *auth.User) error { return nil }

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if u, ok := r.byEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) FindByEmailOrUsername(ctx context.Context, identifier string) (*auth.User, error) {
	return r.FindByEmail(ctx, identifier)
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if u, ok := r.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) UpdatePassword(ctx context.Context, userID, hashed string) error {
	return nil
}

type recordingDispatcher struct {
	submitted []events.LeaveSubmittedEvent
	actioned  []events.LeaveActionedEvent
	otps      []events.PasswordResetOTPEvent
}

func (d *recordingDispatcher) LeaveSubmitted(ctx context.Context, ev events.LeaveSubmittedEvent) {
	d.submitted = append(d.submitted, ev)
}

func (d *recordingDispatcher) LeaveActioned(ctx context.Context, ev events.LeaveActionedEvent) {
	d.actioned = append(d.actioned, ev)
}

func (d *recordingDispatcher) PasswordResetOTP(ctx context.Context, ev events.PasswordResetOTPEvent) {
	d.otps = append(d.otps, ev)
}

type serviceDeps struct {
	svc        leave.Service
	repo       *fakeLeaveRepo
	tokens     *fakeTokens
	users      *fakeUserRepo
	verifier   *auth.CredentialVerifier
	dispatcher *recordingDispatcher
	employee   *auth.User
	approver   *auth.User
}

func setupService(t *testing.T) *serviceDeps {
	t.Helper()

	verifier := auth.NewCredentialVerifier("test-secret", time.Hour)
	hash, err := verifier.HashPassword("approver-pass")
	require.NoError(t, err)

	employee := &auth.User{
		ID:         uuid.New(),
		Username:   "employee",
		Email:      "employee@example.com",
		FullName:   "Emp Loyee",
		Department: "Engineering",
	}
	approver := &auth.User{
		ID:             uuid.New(),
		Username:       "manager",
		Email:          "manager@example.com",
		FullName:       "Mana Ger",
		HashedPassword: hash,
		IsManager:      true,
	}

	tokens := newFakeTokens()
	repo := newFakeLeaveRepo(tokens)
	users := newFakeUserRepo(employee, approver)
	dispatcher := &recordingDispatcher{}

	svc := leave.NewService(repo, users, verifier, tokens, dispatcher, nil, 24*time.Hour)

	return &serviceDeps{
		svc:        svc,
		repo:       repo,
		tokens:     tokens,
		users:      users,
		verifier:   verifier,
		dispatcher: dispatcher,
		employee:   employee,
		approver:   approver,
	}
}

func submitLeave(t *testing.T, deps *serviceDeps) leave.LeaveResponse {
	t.Helper()
	res, err := deps.svc.Submit(context.Background(), deps.employee.ID.String(), leave.SubmitLeaveRequest{
		LeaveType:     "vacation",
		StartDate:     "2025-09-01",
		EndDate:       "2025-09-03",
		Reason:        "family trip",
		ApproverEmail: deps.approver.Email,
	})
	require.NoError(t, err)
	return res
}

func TestLeaveService_Submit(t *testing.T) {
	ctx := context.Background()

	t.Run("computes inclusive day count and issues a token pair", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)

		assert.Equal(t, 3, res.TotalDays)
		assert.Equal(t, leave.StatusPending, res.Status)
		assert.Equal(t, deps.approver.ID.String(), res.ApproverID)
		assert.Equal(t, "Emp Loyee", res.EmployeeName)

		require.Len(t, deps.dispatcher.submitted, 1)
		ev := deps.dispatcher.submitted[0]
		assert.Equal(t, res.ID, ev.LeaveID)
		assert.Equal(t, deps.approver.Email, ev.ApproverEmail)
		assert.Equal(t, 3, ev.TotalDays)
		assert.NotEmpty(t, ev.ApprovalToken)
		assert.NotEmpty(t, ev.RejectionToken)
		assert.NotEqual(t, ev.ApprovalToken, ev.RejectionToken)

		// Both tokens validate until a decision lands.
		_, err := deps.tokens.Validate(ctx, ev.ApprovalToken)
		assert.NoError(t, err)
		_, err = deps.tokens.Validate(ctx, ev.RejectionToken)
		assert.NoError(t, err)
	})

	t.Run("single-day request counts one day", func(t *testing.T) {
		deps := setupService(t)
		res, err := deps.svc.Submit(ctx, deps.employee.ID.String(), leave.SubmitLeaveRequest{
			LeaveType:     "sick",
			StartDate:     "2025-09-01",
			EndDate:       "2025-09-01",
			Reason:        "flu",
			ApproverEmail: deps.approver.Email,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.TotalDays)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		deps := setupService(t)
		_, err := deps.svc.Submit(ctx, deps.employee.ID.String(), leave.SubmitLeaveRequest{
			LeaveType:     "vacation",
			StartDate:     "01/09/2025",
			EndDate:       "2025-09-03",
			Reason:        "trip",
			ApproverEmail: deps.approver.Email,
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateFormat)
	})

	t.Run("rejects inverted ranges", func(t *testing.T) {
		deps := setupService(t)
		_, err := deps.svc.Submit(ctx, deps.employee.ID.String(), leave.SubmitLeaveRequest{
			LeaveType:     "vacation",
			StartDate:     "2025-09-03",
			EndDate:       "2025-09-01",
			Reason:        "trip",
			ApproverEmail: deps.approver.Email,
		})
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidDateRange)
	})

	t.Run("rejects unknown approver email", func(t *testing.T) {
		deps := setupService(t)
		_, err := deps.svc.Submit(ctx, deps.employee.ID.String(), leave.SubmitLeaveRequest{
			LeaveType:     "vacation",
			StartDate:     "2025-09-01",
			EndDate:       "2025-09-03",
			Reason:        "trip",
			ApproverEmail: "ghost@example.com",
		})
		assert.ErrorIs(t, err, leaveerrors.ErrApproverNotFound)
	})
}

func TestLeaveService_ApplyAction_Dashboard(t *testing.T) {
	ctx := context.Background()

	t.Run("approver decides once, second attempt sees the outcome", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		proof := leave.SessionProof{ApproverID: deps.approver.ID}

		decided, err := deps.svc.ApplyAction(ctx, proof, res.ID, "approve", "enjoy")
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, decided.Status)
		assert.True(t, decided.ActionTaken)
		require.NotNil(t, decided.ProcessedVia)
		assert.Equal(t, leave.ViaDashboard, *decided.ProcessedVia)
		require.NotNil(t, decided.Comments)
		assert.Equal(t, "enjoy", *decided.Comments)

		_, err = deps.svc.ApplyAction(ctx, proof, res.ID, "reject", "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "approved")

		stored, ferr := deps.repo.FindByID(ctx, uuid.MustParse(res.ID))
		require.NoError(t, ferr)
		assert.Equal(t, leave.StatusApproved, stored.Status)

		require.Len(t, deps.dispatcher.actioned, 1)
		assert.Equal(t, leave.StatusApproved, deps.dispatcher.actioned[0].Status)
	})

	t.Run("decision revokes every outstanding token", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		_, err := deps.svc.ApplyAction(ctx, leave.SessionProof{ApproverID: deps.approver.ID}, res.ID, "reject", "")
		require.NoError(t, err)

		_, err = deps.tokens.Validate(ctx, ev.ApprovalToken)
		assert.ErrorIs(t, err, tokenerrors.ErrInvalidOrExpired)
		_, err = deps.tokens.Validate(ctx, ev.RejectionToken)
		assert.ErrorIs(t, err, tokenerrors.ErrInvalidOrExpired)
	})

	t.Run("wrong approver is forbidden and revokes nothing", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		intruder := leave.SessionProof{ApproverID: deps.employee.ID}
		_, err := deps.svc.ApplyAction(ctx, intruder, res.ID, "approve", "")
		assert.ErrorIs(t, err, leaveerrors.ErrNotAssignedApprover)

		stored, ferr := deps.repo.FindByID(ctx, uuid.MustParse(res.ID))
		require.NoError(t, ferr)
		assert.Equal(t, leave.StatusPending, stored.Status)
		assert.False(t, stored.ActionTaken)

		_, err = deps.tokens.Validate(ctx, ev.ApprovalToken)
		assert.NoError(t, err)
	})

	t.Run("unknown leave id", func(t *testing.T) {
		deps := setupService(t)
		_, err := deps.svc.ApplyAction(ctx, leave.SessionProof{ApproverID: deps.approver.ID}, uuid.NewString(), "approve", "")
		assert.ErrorIs(t, err, leaveerrors.ErrLeaveNotFound)
	})

	t.Run("unknown action", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		_, err := deps.svc.ApplyAction(ctx, leave.SessionProof{ApproverID: deps.approver.ID}, res.ID, "shred", "")
		assert.ErrorIs(t, err, leaveerrors.ErrInvalidAction)
	})
}

func TestLeaveService_ApplyAction_TokenPassword(t *testing.T) {
	ctx := context.Background()

	t.Run("token plus correct password approves with email-password provenance", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		proof := leave.TokenPasswordProof{Token: ev.ApprovalToken, Password: "approver-pass"}
		decided, err := deps.svc.ApplyAction(ctx, proof, res.ID, "approve", "ok")
		require.NoError(t, err)
		assert.Equal(t, leave.StatusApproved, decided.Status)
		require.NotNil(t, decided.ProcessedVia)
		assert.Equal(t, leave.ViaEmailPassword, *decided.ProcessedVia)

		// The sibling reject token died with the decision.
		_, err = deps.tokens.Validate(ctx, ev.RejectionToken)
		assert.ErrorIs(t, err, tokenerrors.ErrInvalidOrExpired)

		// And the consumed approve token cannot be replayed.
		_, err = deps.svc.ApplyAction(ctx, proof, res.ID, "approve", "")
		require.Error(t, err)
	})

	t.Run("wrong password fails and leaves the token live", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		proof := leave.TokenPasswordProof{Token: ev.ApprovalToken, Password: "guess"}
		_, err := deps.svc.ApplyAction(ctx, proof, res.ID, "approve", "")
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)

		stored, ferr := deps.repo.FindByID(ctx, uuid.MustParse(res.ID))
		require.NoError(t, ferr)
		assert.False(t, stored.ActionTaken)

		_, err = deps.tokens.Validate(ctx, ev.ApprovalToken)
		assert.NoError(t, err)
	})

	t.Run("approve token cannot authorize a rejection", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		proof := leave.TokenPasswordProof{Token: ev.ApprovalToken, Password: "approver-pass"}
		_, err := deps.svc.ApplyAction(ctx, proof, res.ID, "reject", "")
		assert.ErrorIs(t, err, tokenerrors.ErrTokenMismatch)
	})

	t.Run("token bound to another request is rejected", func(t *testing.T) {
		deps := setupService(t)
		submitLeave(t, deps)
		firstEv := deps.dispatcher.submitted[0]

		second, err := deps.svc.Submit(ctx, deps.employee.ID.String(), leave.SubmitLeaveRequest{
			LeaveType:     "sick",
			StartDate:     "2025-10-01",
			EndDate:       "2025-10-02",
			Reason:        "flu",
			ApproverEmail: deps.approver.Email,
		})
		require.NoError(t, err)

		proof := leave.TokenPasswordProof{Token: firstEv.ApprovalToken, Password: "approver-pass"}
		_, err = deps.svc.ApplyAction(ctx, proof, second.ID, "approve", "")
		assert.ErrorIs(t, err, tokenerrors.ErrTokenMismatch)
	})
}

func TestLeaveService_ApplyAction_TokenOnlyCannotMutate(t *testing.T) {
	deps := setupService(t)
	res := submitLeave(t, deps)
	ev := deps.dispatcher.submitted[0]

	_, err := deps.svc.ApplyAction(context.Background(), leave.TokenProof{Token: ev.RejectionToken}, res.ID, "reject", "")
	assert.ErrorIs(t, err, leaveerrors.ErrTokenEntryOnly)
}

func TestLeaveService_RedeemRejectEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes the reject token and returns the leave id", func(t *testing.T) {
		deps := setupService(t)
		res := submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		leaveID, err := deps.svc.RedeemRejectEntry(ctx, leave.TokenProof{Token: ev.RejectionToken})
		require.NoError(t, err)
		assert.Equal(t, res.ID, leaveID)

		// Single use: a second click on the same link fails.
		_, err = deps.svc.RedeemRejectEntry(ctx, leave.TokenProof{Token: ev.RejectionToken})
		assert.ErrorIs(t, err, tokenerrors.ErrInvalidOrExpired)
	})

	t.Run("approve token is not a reject link", func(t *testing.T) {
		deps := setupService(t)
		submitLeave(t, deps)
		ev := deps.dispatcher.submitted[0]

		_, err := deps.svc.RedeemRejectEntry(ctx, leave.TokenProof{Token: ev.ApprovalToken})
		assert.ErrorIs(t, err, tokenerrors.ErrTokenMismatch)
	})
}

func TestLeaveService_ListPendingCache(t *testing.T) {
	ctx := context.Background()
	approverID := uuid.New()

	t.Run("cache hit skips the repository", func(t *testing.T) {
		rdb, mock := redismock.NewClientMock()
		// No repo behind this service; a repo call would panic.
		svc := leave.NewService(nil, nil, nil, nil, nil, rdb, 24*time.Hour)

		mock.ExpectGet("leave:pending:" + approverID.String()).SetVal("[]")

		out, err := svc.ListPending(ctx, approverID.String())
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cache miss reads through and fills the cache", func(t *testing.T) {
		deps := setupService(t)
		rdb, mock := redismock.NewClientMock()
		svc := leave.NewService(deps.repo, deps.users, deps.verifier, deps.tokens, deps.dispatcher, rdb, 24*time.Hour)

		key := "leave:pending:" + approverID.String()
		mock.ExpectGet(key).RedisNil()
		mock.ExpectSet(key, []byte("[]"), 2*time.Minute).SetVal("OK")

		out, err := svc.ListPending(ctx, approverID.String())
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
