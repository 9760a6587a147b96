package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/models"
	"github.com/gymverse/gymverse/internal/services"
	pkghttp "github.com/gymverse/gymverse/pkg/http"
)

// AuthServiceInterface defines the interface for auth business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*services.AuthResponse, error)
	Register(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error)
	ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error
}

// ReferralRedeemer completes a referral code for a newly registered user.
type ReferralRedeemer interface {
	Redeem(ctx context.Context, code, referredID string) (*models.Referral, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service   AuthServiceInterface
	referrals ReferralRedeemer
	cookies   auth.CookieConfig
	tokenTTL  time.Duration
	logger    *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. referrals may be nil to disable
// referral redemption at sign-up.
func NewAuthHandler(service AuthServiceInterface, referrals ReferralRedeemer, cookies auth.CookieConfig, tokenTTL time.Duration, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:   service,
		referrals: referrals,
		cookies:   cookies,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name         string `json:"name" validate:"required,min=1,max=100"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	Role         string `json:"role" validate:"omitempty,oneof=user trainer admin"`
	Bio          string `json:"bio" validate:"omitempty,max=500"`
	Phone        string `json:"phone" validate:"omitempty,max=30"`
	ReferralCode string `json:"referralCode" validate:"omitempty,max=20"`
}

// ChangePasswordRequest represents the request body for a password change
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// Login authenticates a member and sets the session cookie.
//
// Locked accounts get 423 with the lock expiry so clients can show a retry
// time; wrong password and unknown email are indistinguishable 401s.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	authResp, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var lockedErr *models.AccountLockedError
		switch {
		case errors.As(err, &lockedErr):
			pkghttp.WriteLocked(w, "Account is temporarily locked due to too many failed login attempts", lockedErr.Until)
		case errors.Is(err, models.ErrAccountDeactivated):
			pkghttp.WriteUnauthorized(w, "Account is deactivated")
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Invalid credentials")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	auth.SetSessionCookie(w, authResp.Token, h.tokenTTL, h.cookies)
	pkghttp.WriteOK(w, "Login successful", authResp)
}

// Register creates an account, signs it in, and redeems an optional
// referral code.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	authResp, err := h.service.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		Bio:      req.Bio,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "User already exists with this email")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	// Referral redemption is best effort: a bad code never fails sign-up.
	if req.ReferralCode != "" && h.referrals != nil {
		if _, err := h.referrals.Redeem(r.Context(), req.ReferralCode, authResp.User.ID); err != nil {
			h.logger.Warn("referral code not redeemed at sign-up",
				slog.String("user_id", authResp.User.ID),
				slog.Any("error", err))
		}
	}

	auth.SetSessionCookie(w, authResp.Token, h.tokenTTL, h.cookies)
	pkghttp.WriteCreated(w, "User registered successfully", authResp)
}

// Me returns the authenticated caller's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	pkghttp.WriteOK(w, "", userToResponse(account))
}

// ChangePassword verifies the current password and stores a new one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	err := h.service.ChangePassword(r.Context(), account.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidCredentials):
			pkghttp.WriteUnauthorized(w, "Current password is incorrect")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, err.Error())
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteOK(w, "Password changed successfully", nil)
}

// Logout clears the session cookie. Issued tokens remain valid until expiry
// since there is no server-side revocation list; clearing the cookie ends
// the browser session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteOK(w, "Logged out successfully", nil)
}
