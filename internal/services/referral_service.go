package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"
	"unicode"

	"github.com/gymverse/gymverse/internal/models"
)

// ReferralRepository defines the interface for referral data access
type ReferralRepository interface {
	Create(ctx context.Context, ref *models.Referral) (*models.Referral, error)
	GetByCode(ctx context.Context, code string) (*models.Referral, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	HasCompletedByReferred(ctx context.Context, referredID string) (bool, error)
	ListByReferrer(ctx context.Context, referrerID string) ([]*models.Referral, error)
	Complete(ctx context.Context, id, referredID string) (*models.Referral, error)
	MarkExpired(ctx context.Context, id string) error
	StatsByReferrer(ctx context.Context, referrerID string) (*models.ReferralStats, error)
}

const (
	referralCodeAttempts = 10
	referralValidity     = 30 * 24 * time.Hour
	referralRewardType   = "discount"
	referralRewardValue  = 20 // percent off the first membership payment
)

const base36Chars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// ReferralService issues and redeems referral codes.
type ReferralService struct {
	repo   ReferralRepository
	logger *slog.Logger

	now func() time.Time
}

// NewReferralService creates a new ReferralService
func NewReferralService(repo ReferralRepository, logger *slog.Logger) *ReferralService {
	return &ReferralService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// CreateReferral issues a fresh referral code for the given member. Codes
// are the first three letters of the member's name plus six random base-36
// characters; generation retries on the rare collision.
func (s *ReferralService) CreateReferral(ctx context.Context, referrerID, referrerName string) (*models.Referral, error) {
	code, err := s.generateCode(ctx, referrerName)
	if err != nil {
		s.logger.Error("failed to generate referral code", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	ref := &models.Referral{
		ReferrerID:  referrerID,
		Code:        code,
		Status:      models.ReferralStatusPending,
		RewardType:  referralRewardType,
		RewardValue: referralRewardValue,
		ExpiresAt:   s.now().Add(referralValidity),
	}

	created, err := s.repo.Create(ctx, ref)
	if err != nil {
		s.logger.Error("failed to create referral", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("referral created",
		slog.String("referrer_id", referrerID),
		slog.String("code", created.Code))
	return created, nil
}

// Redeem marks a pending referral as completed by a newly registered user.
// Expired codes are flipped to expired on first touch rather than by a
// background job.
func (s *ReferralService) Redeem(ctx context.Context, code, referredID string) (*models.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, models.ErrBadRequest
	}

	ref, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get referral", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if ref.Status != models.ReferralStatusPending {
		return nil, models.ErrConflict
	}

	if s.now().After(ref.ExpiresAt) {
		if err := s.repo.MarkExpired(ctx, ref.ID); err != nil {
			s.logger.Warn("failed to mark referral expired",
				slog.String("referral_id", ref.ID), slog.Any("error", err))
		}
		return nil, models.ErrConflict
	}

	// Self-referral would let members farm their own discount.
	if ref.ReferrerID == referredID {
		return nil, models.ErrBadRequest
	}

	// One redemption per member; the database enforces the same rule with
	// a partial unique index in case a second path ever reaches here.
	used, err := s.repo.HasCompletedByReferred(ctx, referredID)
	if err != nil {
		s.logger.Error("failed to check prior redemptions",
			slog.String("referred_id", referredID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	if used {
		return nil, models.ErrConflict
	}

	completed, err := s.repo.Complete(ctx, ref.ID, referredID)
	if err != nil {
		s.logger.Error("failed to complete referral",
			slog.String("referral_id", ref.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("referral redeemed",
		slog.String("referral_id", completed.ID),
		slog.String("referred_id", referredID))
	return completed, nil
}

// Validate reports whether a code can still be redeemed, without consuming
// it. Used by the sign-up form to show the discount before the account
// exists. An expired code is flipped to expired on this read too.
func (s *ReferralService) Validate(ctx context.Context, code string) (*models.Referral, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, models.ErrBadRequest
	}

	ref, err := s.repo.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get referral", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if ref.Status != models.ReferralStatusPending {
		return nil, models.ErrNotFound
	}

	if s.now().After(ref.ExpiresAt) {
		if err := s.repo.MarkExpired(ctx, ref.ID); err != nil {
			s.logger.Warn("failed to mark referral expired",
				slog.String("referral_id", ref.ID), slog.Any("error", err))
		}
		return nil, models.ErrNotFound
	}

	return ref, nil
}

// ListReferrals returns the member's issued referrals.
func (s *ReferralService) ListReferrals(ctx context.Context, referrerID string) ([]*models.Referral, error) {
	refs, err := s.repo.ListByReferrer(ctx, referrerID)
	if err != nil {
		s.logger.Error("failed to list referrals", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return refs, nil
}

// Stats returns the member's referral counters.
func (s *ReferralService) Stats(ctx context.Context, referrerID string) (*models.ReferralStats, error) {
	stats, err := s.repo.StatsByReferrer(ctx, referrerID)
	if err != nil {
		s.logger.Error("failed to get referral stats", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return stats, nil
}

func (s *ReferralService) generateCode(ctx context.Context, name string) (string, error) {
	prefix := namePrefix(name)

	for i := 0; i < referralCodeAttempts; i++ {
		suffix, err := randomBase36(6)
		if err != nil {
			return "", err
		}
		code := prefix + suffix

		exists, err := s.repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("could not generate a unique referral code after %d attempts", referralCodeAttempts)
}

// namePrefix takes the first three letters of the name, uppercased. Short
// or letter-free names fall back to padding with 'X'.
func namePrefix(name string) string {
	letters := make([]rune, 0, 3)
	for _, r := range name {
		if unicode.IsLetter(r) {
			letters = append(letters, unicode.ToUpper(r))
			if len(letters) == 3 {
				break
			}
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	return string(letters)
}

func randomBase36(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(base36Chars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = base36Chars[idx.Int64()]
	}
	return string(b), nil
}
