package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/models"
	pkghttp "github.com/gymverse/gymverse/pkg/http"
)

// ReferralServiceInterface defines the interface for referral business logic
type ReferralServiceInterface interface {
	CreateReferral(ctx context.Context, referrerID, referrerName string) (*models.Referral, error)
	Validate(ctx context.Context, code string) (*models.Referral, error)
	ListReferrals(ctx context.Context, referrerID string) ([]*models.Referral, error)
	Stats(ctx context.Context, referrerID string) (*models.ReferralStats, error)
}

// ReferralHandler handles referral HTTP requests
type ReferralHandler struct {
	service ReferralServiceInterface
}

// NewReferralHandler creates a new ReferralHandler
func NewReferralHandler(service ReferralServiceInterface) *ReferralHandler {
	return &ReferralHandler{service: service}
}

// Create issues a new referral code for the caller.
func (h *ReferralHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())

	ref, err := h.service.CreateReferral(r.Context(), account.ID, account.Name)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteCreated(w, "Referral code created", referralToResponse(ref))
}

// Validate checks a referral code for the sign-up form. Invalid, consumed
// and expired codes all look the same to the caller.
func (h *ReferralHandler) Validate(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	ref, err := h.service.Validate(r.Context(), code)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound), errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteNotFound(w, "Invalid or expired referral code")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteOK(w, "", map[string]any{
		"code":        ref.Code,
		"rewardType":  ref.RewardType,
		"rewardValue": ref.RewardValue,
		"expiresAt":   ref.ExpiresAt,
	})
}

// List returns the caller's referrals.
func (h *ReferralHandler) List(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())

	refs, err := h.service.ListReferrals(r.Context(), account.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", referralsToResponse(refs))
}

// Stats returns the caller's referral counters.
func (h *ReferralHandler) Stats(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())

	stats, err := h.service.Stats(r.Context(), account.ID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "No referrals found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", map[string]int{
		"total":     stats.Total,
		"completed": stats.Completed,
		"pending":   stats.Pending,
	})
}
