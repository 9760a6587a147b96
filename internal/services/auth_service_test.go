package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/config"
	"github.com/gymverse/gymverse/internal/models"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "test-secret-key-for-tokens",
		TokenExpiry:      time.Hour,
		LockoutThreshold: 5,
		LockoutDuration:  2 * time.Hour,
	}
}

func newTestAuthService(repo UserRepository, now time.Time) *AuthService {
	cfg := testAuthConfig()
	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenExpiry)
	svc := NewAuthService(repo, tm, cfg, nil, testLogger(), testAuditLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestLoginSuccess(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.LoginAttempts = 3

	var resetCalled bool
	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, email string) (*models.User, error) {
			assert.Equal(t, "alice@example.com", email)
			return user, nil
		},
		ResetLoginAttemptsFunc: func(_ context.Context, id string) error {
			resetCalled = true
			assert.Equal(t, "user-1", id)
			return nil
		},
	}

	svc := newTestAuthService(repo, time.Now())

	resp, err := svc.Login(context.Background(), "Alice@Example.com", "correct-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "user-1", resp.User.ID)
	assert.True(t, resetCalled, "successful login must clear the attempt counter")
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := &MockUserRepository{} // GetByEmail defaults to ErrNotFound

	svc := newTestAuthService(repo, time.Now())

	_, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}

func TestLoginWrongPasswordIncrementsCounter(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.LoginAttempts = 2

	var recordedAttempts int
	var recordedLock *time.Time
	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
		UpdateLoginAttemptsFunc: func(_ context.Context, id string, attempts int, lockUntil *time.Time) error {
			recordedAttempts = attempts
			recordedLock = lockUntil
			return nil
		},
	}

	svc := newTestAuthService(repo, time.Now())

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 3, recordedAttempts)
	assert.Nil(t, recordedLock, "no lock below the threshold")
}

func TestLoginThresholdFailureLocksAccount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.LoginAttempts = 4 // next failure is the fifth

	var recordedAttempts int
	var recordedLock *time.Time
	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
		UpdateLoginAttemptsFunc: func(_ context.Context, id string, attempts int, lockUntil *time.Time) error {
			recordedAttempts = attempts
			recordedLock = lockUntil
			return nil
		},
	}

	svc := newTestAuthService(repo, now)

	// The locking attempt itself still reports invalid credentials.
	_, err := svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)

	assert.Equal(t, 5, recordedAttempts)
	require.NotNil(t, recordedLock)
	assert.True(t, recordedLock.Equal(now.Add(2*time.Hour)),
		"lock expiry should be exactly threshold time plus lockout duration")
}

func TestLoginLockedAccountRejectsCorrectPassword(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lockUntil := now.Add(90 * time.Minute)

	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.LoginAttempts = 5
	user.LockUntil = &lockUntil

	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
		UpdateLoginAttemptsFunc: func(_ context.Context, _ string, _ int, _ *time.Time) error {
			t.Fatal("locked account must not touch the attempt counter")
			return nil
		},
		ResetLoginAttemptsFunc: func(_ context.Context, _ string) error {
			t.Fatal("locked account must not reset attempts")
			return nil
		},
	}

	svc := newTestAuthService(repo, now)

	_, err := svc.Login(context.Background(), "alice@example.com", "correct-pass")

	var lockedErr *models.AccountLockedError
	require.ErrorAs(t, err, &lockedErr)
	assert.True(t, lockedErr.Until.Equal(lockUntil))
	assert.ErrorIs(t, err, models.ErrAccountLocked)
}

func TestLoginStaleLockFailureRestartsCounter(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)

	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.LoginAttempts = 5
	user.LockUntil = &expired

	var recordedAttempts int
	var recordedLock *time.Time
	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
		UpdateLoginAttemptsFunc: func(_ context.Context, _ string, attempts int, lockUntil *time.Time) error {
			recordedAttempts = attempts
			recordedLock = lockUntil
			return nil
		},
	}

	svc := newTestAuthService(repo, now)

	_, err := svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	assert.Equal(t, 1, recordedAttempts, "expired lock restarts the count")
	assert.Nil(t, recordedLock, "expired lock is cleared, not extended")
}

func TestLoginStaleLockSuccessClearsState(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)

	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.LoginAttempts = 5
	user.LockUntil = &expired

	var resetCalled bool
	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
		ResetLoginAttemptsFunc: func(_ context.Context, _ string) error {
			resetCalled = true
			return nil
		},
	}

	svc := newTestAuthService(repo, now)

	resp, err := svc.Login(context.Background(), "alice@example.com", "correct-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resetCalled)
}

func TestLoginDeactivatedAccount(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lockUntil := now.Add(time.Hour)

	user := NewTestUser("user-1", "alice@example.com", "correct-pass")
	user.IsActive = false
	// Even a concurrent lock loses to deactivation.
	user.LockUntil = &lockUntil

	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(repo, now)

	_, err := svc.Login(context.Background(), "alice@example.com", "correct-pass")
	assert.ErrorIs(t, err, models.ErrAccountDeactivated)
}

func TestRegisterCoercesAdminRole(t *testing.T) {
	var createdRole models.Role
	repo := &MockUserRepository{
		CreateFunc: func(_ context.Context, user *models.User) (*models.User, error) {
			createdRole = user.Role
			user.ID = "user-new"
			user.CreatedAt = time.Now()
			return user, nil
		},
	}

	svc := newTestAuthService(repo, time.Now())

	resp, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Mallory",
		Email:    "mallory@example.com",
		Password: "secret-pass",
		Role:     "admin",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, createdRole, "self-declared admins become plain users")
	assert.Equal(t, "user", resp.User.Role)
}

func TestRegisterTrainerRoleAllowed(t *testing.T) {
	var createdRole models.Role
	repo := &MockUserRepository{
		CreateFunc: func(_ context.Context, user *models.User) (*models.User, error) {
			createdRole = user.Role
			user.ID = "user-new"
			user.CreatedAt = time.Now()
			return user, nil
		},
	}

	svc := newTestAuthService(repo, time.Now())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Coach Carter",
		Email:    "coach@example.com",
		Password: "secret-pass",
		Role:     "trainer",
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleTrainer, createdRole)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	existing := NewTestUser("user-1", "alice@example.com", "whatever1")
	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return existing, nil
		},
	}

	svc := newTestAuthService(repo, time.Now())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Alice Again",
		Email:    "alice@example.com",
		Password: "secret-pass",
	})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, time.Now())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "tiny",
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	svc := newTestAuthService(&MockUserRepository{}, time.Now())

	_, err := svc.Register(context.Background(), RegisterInput{
		Name:     "Bob",
		Email:    "bob@example.com",
		Password: "secret-pass",
		Role:     "superuser",
	})
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestChangePassword(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.com", "old-password")

	repo := &MockUserRepository{
		GetByIDFunc: func(_ context.Context, id string) (*models.User, error) {
			return user, nil
		},
	}

	svc := newTestAuthService(repo, time.Now())

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), "user-1", "not-the-password", "new-password")
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("new password too short", func(t *testing.T) {
		err := svc.ChangePassword(context.Background(), "user-1", "old-password", "tiny")
		assert.ErrorIs(t, err, models.ErrBadRequest)
	})

	t.Run("success", func(t *testing.T) {
		var stored string
		repo.UpdatePasswordFunc = func(_ context.Context, id, passwordHash string) error {
			stored = passwordHash
			return nil
		}

		err := svc.ChangePassword(context.Background(), "user-1", "old-password", "new-password")
		require.NoError(t, err)
		assert.NotEmpty(t, stored)
		assert.NotEqual(t, "new-password", stored)
	})
}

func TestLoginAttemptPersistFailureStillRejects(t *testing.T) {
	user := NewTestUser("user-1", "alice@example.com", "correct-pass")

	repo := &MockUserRepository{
		GetByEmailFunc: func(_ context.Context, _ string) (*models.User, error) {
			return user, nil
		},
		UpdateLoginAttemptsFunc: func(_ context.Context, _ string, _ int, _ *time.Time) error {
			return errors.New("db down")
		},
	}

	svc := newTestAuthService(repo, time.Now())

	// Persistence trouble never turns a failed login into a success.
	_, err := svc.Login(context.Background(), "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, models.ErrInvalidCredentials)
}
