package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymverse/gymverse/internal/models"
)

func newTestReferralService(repo ReferralRepository, now time.Time) *ReferralService {
	svc := NewReferralService(repo, testLogger())
	svc.now = func() time.Time { return now }
	return svc
}

func TestCreateReferral(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var created *models.Referral
	repo := &MockReferralRepository{
		CreateFunc: func(_ context.Context, ref *models.Referral) (*models.Referral, error) {
			ref.ID = "ref-1"
			ref.CreatedAt = now
			created = ref
			return ref, nil
		},
	}

	svc := newTestReferralService(repo, now)

	ref, err := svc.CreateReferral(context.Background(), "user-1", "Alice Smith")
	require.NoError(t, err)

	assert.Regexp(t, regexp.MustCompile(`^ALI[0-9A-Z]{6}$`), ref.Code)
	assert.Equal(t, models.ReferralStatusPending, ref.Status)
	assert.Equal(t, "discount", ref.RewardType)
	assert.Equal(t, 20, ref.RewardValue)
	assert.True(t, created.ExpiresAt.Equal(now.Add(30*24*time.Hour)))
}

func TestCreateReferralShortName(t *testing.T) {
	repo := &MockReferralRepository{}
	svc := newTestReferralService(repo, time.Now())

	ref, err := svc.CreateReferral(context.Background(), "user-1", "Al")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^ALX[0-9A-Z]{6}$`), ref.Code)
}

func TestCreateReferralRetriesOnCollision(t *testing.T) {
	calls := 0
	repo := &MockReferralRepository{
		CodeExistsFunc: func(_ context.Context, _ string) (bool, error) {
			calls++
			return calls <= 2, nil // first two candidates collide
		},
	}

	svc := newTestReferralService(repo, time.Now())

	_, err := svc.CreateReferral(context.Background(), "user-1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRedeemReferral(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	pending := &models.Referral{
		ID:         "ref-1",
		ReferrerID: "user-1",
		Code:       "ALI4F9K2X",
		Status:     models.ReferralStatusPending,
		ExpiresAt:  now.Add(24 * time.Hour),
	}

	repo := &MockReferralRepository{
		GetByCodeFunc: func(_ context.Context, code string) (*models.Referral, error) {
			assert.Equal(t, "ALI4F9K2X", code)
			return pending, nil
		},
	}

	svc := newTestReferralService(repo, now)

	// Codes are case-insensitive on input.
	ref, err := svc.Redeem(context.Background(), "ali4f9k2x", "user-2")
	require.NoError(t, err)
	assert.Equal(t, models.ReferralStatusCompleted, ref.Status)
}

func TestRedeemExpiredReferral(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	var markedExpired bool
	repo := &MockReferralRepository{
		GetByCodeFunc: func(_ context.Context, _ string) (*models.Referral, error) {
			return &models.Referral{
				ID:         "ref-1",
				ReferrerID: "user-1",
				Status:     models.ReferralStatusPending,
				ExpiresAt:  now.Add(-time.Hour),
			}, nil
		},
		MarkExpiredFunc: func(_ context.Context, id string) error {
			markedExpired = true
			return nil
		},
	}

	svc := newTestReferralService(repo, now)

	_, err := svc.Redeem(context.Background(), "ALI4F9K2X", "user-2")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.True(t, markedExpired, "expired code is flipped on first touch")
}

func TestRedeemAlreadyCompleted(t *testing.T) {
	repo := &MockReferralRepository{
		GetByCodeFunc: func(_ context.Context, _ string) (*models.Referral, error) {
			return &models.Referral{
				ID:     "ref-1",
				Status: models.ReferralStatusCompleted,
			}, nil
		},
	}

	svc := newTestReferralService(repo, time.Now())

	_, err := svc.Redeem(context.Background(), "ALI4F9K2X", "user-2")
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestRedeemSelfReferral(t *testing.T) {
	now := time.Now()
	repo := &MockReferralRepository{
		GetByCodeFunc: func(_ context.Context, _ string) (*models.Referral, error) {
			return &models.Referral{
				ID:         "ref-1",
				ReferrerID: "user-1",
				Status:     models.ReferralStatusPending,
				ExpiresAt:  now.Add(time.Hour),
			}, nil
		},
	}

	svc := newTestReferralService(repo, now)

	_, err := svc.Redeem(context.Background(), "ALI4F9K2X", "user-1")
	assert.ErrorIs(t, err, models.ErrBadRequest)
}

func TestRedeemSecondCodeForSameUser(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	pending := &models.Referral{
		ID:         "ref-2",
		ReferrerID: "user-1",
		Code:       "BOB7Q2M4Z",
		Status:     models.ReferralStatusPending,
		ExpiresAt:  now.Add(24 * time.Hour),
	}

	completeCalled := false
	repo := &MockReferralRepository{
		GetByCodeFunc: func(_ context.Context, _ string) (*models.Referral, error) {
			return pending, nil
		},
		HasCompletedByReferredFunc: func(_ context.Context, referredID string) (bool, error) {
			assert.Equal(t, "user-2", referredID)
			return true, nil // user-2 already redeemed a code
		},
		CompleteFunc: func(_ context.Context, _, _ string) (*models.Referral, error) {
			completeCalled = true
			return pending, nil
		},
	}

	svc := newTestReferralService(repo, now)

	_, err := svc.Redeem(context.Background(), "BOB7Q2M4Z", "user-2")
	assert.ErrorIs(t, err, models.ErrConflict)
	assert.False(t, completeCalled, "a second redemption must never reach the store")
}

func TestRedeemUnknownCode(t *testing.T) {
	svc := newTestReferralService(&MockReferralRepository{}, time.Now())

	_, err := svc.Redeem(context.Background(), "NOPE00000", "user-2")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestValidateReferral(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	pending := &models.Referral{
		ID:          "ref-1",
		ReferrerID:  "user-1",
		Code:        "ALI4F9K2X",
		Status:      models.ReferralStatusPending,
		RewardType:  "discount",
		RewardValue: 20,
		ExpiresAt:   now.Add(24 * time.Hour),
	}

	repo := &MockReferralRepository{
		GetByCodeFunc: func(_ context.Context, code string) (*models.Referral, error) {
			if code == "ALI4F9K2X" {
				return pending, nil
			}
			return nil, models.ErrNotFound
		},
	}

	svc := newTestReferralService(repo, now)

	t.Run("pending code is valid", func(t *testing.T) {
		ref, err := svc.Validate(context.Background(), "ali4f9k2x")
		require.NoError(t, err)
		assert.Equal(t, "ALI4F9K2X", ref.Code)
		assert.Equal(t, 20, ref.RewardValue)
	})

	t.Run("unknown code", func(t *testing.T) {
		_, err := svc.Validate(context.Background(), "XXX000000")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("expired code reads as not found", func(t *testing.T) {
		var markedExpired bool
		repo.MarkExpiredFunc = func(_ context.Context, id string) error {
			markedExpired = true
			return nil
		}
		late := newTestReferralService(repo, now.Add(48*time.Hour))

		_, err := late.Validate(context.Background(), "ALI4F9K2X")
		assert.ErrorIs(t, err, models.ErrNotFound)
		assert.True(t, markedExpired)
	})
}

func TestNamePrefix(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Alice", "ALI"},
		{"bob marley", "BOB"},
		{"Al", "ALX"},
		{"", "XXX"},
		{"42", "XXX"},
		{"  Zoe  ", "ZOE"},
		{"Élodie", "ÉLO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, namePrefix(tt.name))
		})
	}
}
