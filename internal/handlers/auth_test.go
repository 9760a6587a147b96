package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/models"
	"github.com/gymverse/gymverse/internal/services"
)

// mockAuthService implements AuthServiceInterface for testing
type mockAuthService struct {
	LoginFunc          func(ctx context.Context, email, password string) (*services.AuthResponse, error)
	RegisterFunc       func(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error)
	ChangePasswordFunc func(ctx context.Context, userID, currentPassword, newPassword string) error
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, models.ErrInvalidCredentials
}

func (m *mockAuthService) Register(ctx context.Context, input services.RegisterInput) (*services.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, input)
	}
	return nil, models.ErrInternalServer
}

func (m *mockAuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if m.ChangePasswordFunc != nil {
		return m.ChangePasswordFunc(ctx, userID, currentPassword, newPassword)
	}
	return nil
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, r)
	return w
}

func TestLoginHandlerSuccess(t *testing.T) {
	svc := &mockAuthService{
		LoginFunc: func(_ context.Context, email, password string) (*services.AuthResponse, error) {
			assert.Equal(t, "alice@example.com", email)
			return &services.AuthResponse{
				Token: "a.jwt.token",
				User:  &services.UserResponse{ID: "user-1", Email: email},
			}, nil
		},
	}
	h := NewAuthHandler(svc, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-pass",
	})

	assert.Equal(t, http.StatusOK, w.Code)

	// Session cookie was set httpOnly.
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Equal(t, "a.jwt.token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["success"])
}

func TestLoginHandlerInvalidCredentials(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, false, resp["success"])
	assert.Equal(t, "Invalid credentials", resp["error"])
}

func TestLoginHandlerLockedAccount(t *testing.T) {
	until := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	svc := &mockAuthService{
		LoginFunc: func(_ context.Context, _, _ string) (*services.AuthResponse, error) {
			return nil, &models.AccountLockedError{Until: until}
		},
	}
	h := NewAuthHandler(svc, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-pass",
	})

	assert.Equal(t, http.StatusLocked, w.Code)

	var resp struct {
		Success   bool       `json:"success"`
		Error     string     `json:"error"`
		LockUntil *time.Time `json:"lockUntil"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.LockUntil)
	assert.True(t, until.Equal(*resp.LockUntil))
}

func TestLoginHandlerDeactivatedAccount(t *testing.T) {
	svc := &mockAuthService{
		LoginFunc: func(_ context.Context, _, _ string) (*services.AuthResponse, error) {
			return nil, models.ErrAccountDeactivated
		},
	}
	h := NewAuthHandler(svc, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Login, "/api/auth/login", map[string]string{
		"email":    "alice@example.com",
		"password": "correct-pass",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Account is deactivated", resp["error"])
}

func TestLoginHandlerValidation(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	tests := []struct {
		name    string
		payload map[string]string
	}{
		{"missing email", map[string]string{"password": "secret"}},
		{"bad email", map[string]string{"email": "not-an-email", "password": "secret"}},
		{"missing password", map[string]string{"email": "alice@example.com"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(t, h.Login, "/api/auth/login", tt.payload)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRegisterHandlerSuccess(t *testing.T) {
	svc := &mockAuthService{
		RegisterFunc: func(_ context.Context, input services.RegisterInput) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Token: "a.jwt.token",
				User:  &services.UserResponse{ID: "user-new", Email: input.Email, Role: "user"},
			}, nil
		},
	}
	h := NewAuthHandler(svc, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "secret-pass",
	})

	assert.Equal(t, http.StatusCreated, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	svc := &mockAuthService{
		RegisterFunc: func(_ context.Context, _ services.RegisterInput) (*services.AuthResponse, error) {
			return nil, models.ErrConflict
		},
	}
	h := NewAuthHandler(svc, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name":     "Bob",
		"email":    "bob@example.com",
		"password": "secret-pass",
	})

	assert.Equal(t, http.StatusConflict, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "User already exists with this email", resp["error"])
}

func TestRegisterHandlerRedeemsReferral(t *testing.T) {
	var redeemedCode, redeemedBy string
	svc := &mockAuthService{
		RegisterFunc: func(_ context.Context, _ services.RegisterInput) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Token: "a.jwt.token",
				User:  &services.UserResponse{ID: "user-new"},
			}, nil
		},
	}
	referrals := &mockReferralRedeemer{
		RedeemFunc: func(_ context.Context, code, referredID string) (*models.Referral, error) {
			redeemedCode = code
			redeemedBy = referredID
			return nil, models.ErrNotFound // bad code must not fail sign-up
		},
	}
	h := NewAuthHandler(svc, referrals, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name":         "Bob",
		"email":        "bob@example.com",
		"password":     "secret-pass",
		"referralCode": "ALI4F9K2X",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "ALI4F9K2X", redeemedCode)
	assert.Equal(t, "user-new", redeemedBy)
}

func TestRegisterHandlerLogsFailedRedemption(t *testing.T) {
	svc := &mockAuthService{
		RegisterFunc: func(_ context.Context, _ services.RegisterInput) (*services.AuthResponse, error) {
			return &services.AuthResponse{
				Token: "a.jwt.token",
				User:  &services.UserResponse{ID: "user-new"},
			}, nil
		},
	}
	referrals := &mockReferralRedeemer{
		RedeemFunc: func(_ context.Context, _, _ string) (*models.Referral, error) {
			return nil, models.ErrNotFound
		},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	h := NewAuthHandler(svc, referrals, auth.CookieConfig{}, time.Hour, logger)

	w := postJSON(t, h.Register, "/api/auth/register", map[string]string{
		"name":         "Bob",
		"email":        "bob@example.com",
		"password":     "secret-pass",
		"referralCode": "BAD000000",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, logs.String(), "referral code not redeemed at sign-up")
}

func TestMeHandler(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	account := &models.User{
		ID:       "user-1",
		Name:     "Alice",
		Email:    "alice@example.com",
		Role:     models.RoleUser,
		IsActive: true,
	}

	r := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	r = r.WithContext(context.WithValue(r.Context(), auth.AccountContextKey, account))
	w := httptest.NewRecorder()
	h.Me(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "user-1", resp.Data.ID)
	assert.Equal(t, "alice@example.com", resp.Data.Email)
}

func TestLogoutHandlerClearsCookie(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, nil, auth.CookieConfig{}, time.Hour, testHandlerLogger())

	r := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	w := httptest.NewRecorder()
	h.Logout(w, r)

	assert.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, auth.SessionCookieName, cookies[0].Name)
	assert.Empty(t, cookies[0].Value)
	assert.Negative(t, cookies[0].MaxAge)
}

// mockReferralRedeemer implements ReferralRedeemer for testing
type mockReferralRedeemer struct {
	RedeemFunc func(ctx context.Context, code, referredID string) (*models.Referral, error)
}

func (m *mockReferralRedeemer) Redeem(ctx context.Context, code, referredID string) (*models.Referral, error) {
	if m.RedeemFunc != nil {
		return m.RedeemFunc(ctx, code, referredID)
	}
	return nil, models.ErrNotFound
}
