package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/kirankattii/Leave-approval/internal/auth"
	autherrors "github.com/kirankattii/Leave-approval/internal/auth/errors"
	"github.com/kirankattii/Leave-approval/internal/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	createFn         func(ctx context.Context, u *auth.User) error
	findByEmailFn    func(ctx context.Context, email string) (*auth.User, error)
	findByIdentFn    func(ctx context.Context, identifier string) (*auth.User, error)
	findByIDFn       func(ctx context.Context, id string) (*auth.User, error)
	updatePasswordFn func(ctx context.Context, userID, hashed string) error
}

func (f *fakeUserRepo) Create(ctx context.Context, u *auth.User) error {
	return f.createFn(ctx, u)
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	return f.findByEmailFn(ctx, email)
}

func (f *fakeUserRepo) FindByEmailOrUsername(ctx context.Context, identifier string) (*auth.User, error) {
	return f.findByIdentFn(ctx, identifier)
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*auth.User, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeUserRepo) UpdatePassword(ctx context.Context, userID, hashed string) error {
	return f.updatePasswordFn(ctx, userID, hashed)
}

type fakeOTPService struct {
	issued   []string
	issueFn  func(ctx context.Context, email string) (string, error)
	verifyFn func(ctx context.Context, email, code string) error
}

func (f *fakeOTPService) Issue(ctx context.Context, email string) (string, error) {
	f.issued = append(f.issued, email)
	if f.issueFn != nil {
		return f.issueFn(ctx, email)
	}
	return "123456", nil
}

func (f *fakeOTPService) Verify(ctx context.Context, email, code string) error {
	if f.verifyFn != nil {
		return f.verifyFn(ctx, email, code)
	}
	return nil
}

// recordingDispatcher captures every event handed to the notification
// pipeline.
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

func newVerifier() *auth.CredentialVerifier {
	return auth.NewCredentialVerifier("test-secret", time.Hour)
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	verifier := newVerifier()

	hash, err := verifier.HashPassword("correct-horse")
	require.NoError(t, err)

	user := &auth.User{
		ID:             uuid.New(),
		Username:       "jdoe",
		Email:          "jdoe@example.com",
		FullName:       "Jane Doe",
		HashedPassword: hash,
		IsManager:      true,
	}

	repo := &fakeUserRepo{
		findByIdentFn: func(ctx context.Context, identifier string) (*auth.User, error) {
			if identifier == "jdoe" || identifier == "jdoe@example.com" {
				return user, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := auth.NewService(repo, verifier, &fakeOTPService{}, 10*time.Minute, &recordingDispatcher{})

	t.Run("success by username", func(t *testing.T) {
		res, err := svc.Login(ctx, auth.LoginRequest{Identifier: "jdoe", Password: "correct-horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, res.AccessToken)
		assert.Equal(t, "bearer", res.TokenType)
		assert.Equal(t, user.ID.String(), res.User.ID)

		claims, err := verifier.VerifySession(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID.String(), claims.UserID)
		assert.True(t, claims.IsManager)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Identifier: "jdoe", Password: "wrong"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})

	t.Run("unknown identifier gets the same error", func(t *testing.T) {
		_, err := svc.Login(ctx, auth.LoginRequest{Identifier: "ghost", Password: "whatever"})
		assert.ErrorIs(t, err, autherrors.ErrInvalidCredentials)
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes the password and applies defaults", func(t *testing.T) {
		var created *auth.User
		repo := &fakeUserRepo{
			createFn: func(ctx context.Context, u *auth.User) error {
				u.ID = uuid.New()
				created = u
				return nil
			},
		}
		verifier := newVerifier()
		svc := auth.NewService(repo, verifier, &fakeOTPService{}, 10*time.Minute, &recordingDispatcher{})

		res, err := svc.Register(ctx, auth.RegisterRequest{
			Username: "jdoe",
			Email:    "JDoe@Example.com",
			FullName: "Jane Doe",
			Password: "correct-horse",
		})
		require.NoError(t, err)
		require.NotNil(t, created)

		assert.Equal(t, "jdoe@example.com", created.Email)
		assert.NotEqual(t, "correct-horse", created.HashedPassword)
		assert.True(t, verifier.VerifyPassword("correct-horse", created.HashedPassword))
		assert.Equal(t, "employee", created.Role)
		assert.Equal(t, "General", created.Department)
		assert.Equal(t, created.ID.String(), res.ID)
	})

	t.Run("duplicate email surfaces the conflict", func(t *testing.T) {
		repo := &fakeUserRepo{
			createFn: func(ctx context.Context, u *auth.User) error {
				return autherrors.ErrEmailAlreadyRegistered
			},
		}
		svc := auth.NewService(repo, newVerifier(), &fakeOTPService{}, 10*time.Minute, &recordingDispatcher{})

		_, err := svc.Register(ctx, auth.RegisterRequest{
			Username: "jdoe",
			Email:    "jdoe@example.com",
			FullName: "Jane Doe",
			Password: "correct-horse",
		})
		assert.ErrorIs(t, err, autherrors.ErrEmailAlreadyRegistered)
	})
}

func TestAuthService_ForgotPassword(t *testing.T) {
	ctx := context.Background()

	user := &auth.User{ID: uuid.New(), Email: "jdoe@example.com"}
	repo := &fakeUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}

	t.Run("known email issues an OTP and dispatches it", func(t *testing.T) {
		otpSvc := &fakeOTPService{}
		dispatcher := &recordingDispatcher{}
		svc := auth.NewService(repo, newVerifier(), otpSvc, 10*time.Minute, dispatcher)

		require.NoError(t, svc.ForgotPassword(ctx, "JDoe@example.com"))

		assert.Equal(t, []string{"jdoe@example.com"}, otpSvc.issued)
		require.Len(t, dispatcher.otps, 1)
		assert.Equal(t, "jdoe@example.com", dispatcher.otps[0].Email)
		assert.Equal(t, "123456", dispatcher.otps[0].OTP)
		assert.Equal(t, 10, dispatcher.otps[0].ExpiresInMinutes)
	})

	t.Run("unknown email succeeds without issuing anything", func(t *testing.T) {
		otpSvc := &fakeOTPService{}
		dispatcher := &recordingDispatcher{}
		svc := auth.NewService(repo, newVerifier(), otpSvc, 10*time.Minute, dispatcher)

		// Same success shape as the known-email case; the difference is
		// only observable in storage.
		require.NoError(t, svc.ForgotPassword(ctx, "nobody@example.com"))

		assert.Empty(t, otpSvc.issued)
		assert.Empty(t, dispatcher.otps)
	})
}

func TestAuthService_ResetPassword(t *testing.T) {
	ctx := context.Background()

	user := &auth.User{ID: uuid.New(), Email: "jdoe@example.com"}
	repo := &fakeUserRepo{
		findByEmailFn: func(ctx context.Context, email string) (*auth.User, error) {
			if email == user.Email {
				return user, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}

	t.Run("verifies the code then replaces only the hash", func(t *testing.T) {
		var gotUserID, gotHash string
		repo.updatePasswordFn = func(ctx context.Context, userID, hashed string) error {
			gotUserID = userID
			gotHash = hashed
			return nil
		}
		verifier := newVerifier()
		svc := auth.NewService(repo, verifier, &fakeOTPService{}, 10*time.Minute, &recordingDispatcher{})

		err := svc.ResetPassword(ctx, auth.ResetPasswordRequest{
			Email:       "jdoe@example.com",
			OTP:         "123456",
			NewPassword: "brand-new-pass",
		})
		require.NoError(t, err)

		assert.Equal(t, user.ID.String(), gotUserID)
		assert.True(t, verifier.VerifyPassword("brand-new-pass", gotHash))
	})

	t.Run("failed verification leaves the password untouched", func(t *testing.T) {
		updated := false
		repo.updatePasswordFn = func(ctx context.Context, userID, hashed string) error {
			updated = true
			return nil
		}
		otpSvc := &fakeOTPService{
			verifyFn: func(ctx context.Context, email, code string) error {
				return autherrors.ErrInvalidResetRequest
			},
		}
		svc := auth.NewService(repo, newVerifier(), otpSvc, 10*time.Minute, &recordingDispatcher{})

		err := svc.ResetPassword(ctx, auth.ResetPasswordRequest{
			Email:       "jdoe@example.com",
			OTP:         "999999",
			NewPassword: "brand-new-pass",
		})
		assert.ErrorIs(t, err, autherrors.ErrInvalidResetRequest)
		assert.False(t, updated)
	})
}
