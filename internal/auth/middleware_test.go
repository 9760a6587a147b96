package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gymverse/gymverse/internal/models"
)

// stubAccounts returns canned users keyed by ID.
type stubAccounts struct {
	users map[string]*models.User
}

func (s *stubAccounts) GetByID(_ context.Context, id string) (*models.User, error) {
	user, ok := s.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return user, nil
}

func newTestResolver(t *testing.T, users ...*models.User) (*Resolver, *TokenManager) {
	t.Helper()
	tm := NewTokenManager("test-secret-key-for-tokens", time.Hour)
	accounts := &stubAccounts{users: make(map[string]*models.User)}
	for _, u := range users {
		accounts.users[u.ID] = u
	}
	return NewResolver(tm, accounts), tm
}

func activeUser(id string, role models.Role) *models.User {
	return &models.User{ID: id, Role: role, IsActive: true}
}

func TestResolveIdentity(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	lockUntil := now.Add(time.Hour)
	staleLock := now.Add(-time.Hour)

	member := activeUser("member-1", models.RoleUser)
	deactivated := &models.User{ID: "gone-1", Role: models.RoleUser, IsActive: false}
	locked := &models.User{ID: "locked-1", Role: models.RoleUser, IsActive: true, LoginAttempts: 5, LockUntil: &lockUntil}
	staleLocked := &models.User{ID: "stale-1", Role: models.RoleUser, IsActive: true, LoginAttempts: 5, LockUntil: &staleLock}
	rs, tm := newTestResolver(t, member, deactivated, locked, staleLocked)
	rs.now = func() time.Time { return now }

	memberToken, _ := tm.Generate("member-1")
	deactivatedToken, _ := tm.Generate("gone-1")
	lockedToken, _ := tm.Generate("locked-1")
	staleLockedToken, _ := tm.Generate("stale-1")
	unknownToken, _ := tm.Generate("no-such-user")

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		kind   IdentityKind
		userID string
	}{
		{
			name:  "no credential is anonymous",
			setup: func(r *http.Request) {},
			kind:  IdentityAnonymous,
		},
		{
			name: "valid bearer token authenticates",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+memberToken)
			},
			kind:   IdentityAuthenticated,
			userID: "member-1",
		},
		{
			name: "cookie token alone is not honored",
			setup: func(r *http.Request) {
				r.AddCookie(&http.Cookie{Name: SessionCookieName, Value: memberToken})
			},
			kind: IdentityAnonymous,
		},
		{
			name: "malformed authorization header is invalid",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Token abc")
			},
			kind: IdentityInvalid,
		},
		{
			name: "garbage token is invalid",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer not-a-jwt")
			},
			kind: IdentityInvalid,
		},
		{
			name: "token for unknown account is invalid",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+unknownToken)
			},
			kind: IdentityInvalid,
		},
		{
			name: "token for deactivated account is invalid",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+deactivatedToken)
			},
			kind: IdentityInvalid,
		},
		{
			name: "token for currently locked account is invalid",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+lockedToken)
			},
			kind: IdentityInvalid,
		},
		{
			name: "expired lock no longer blocks authentication",
			setup: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+staleLockedToken)
			},
			kind:   IdentityAuthenticated,
			userID: "stale-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(r)

			identity := rs.ResolveIdentity(r)

			if identity.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v", tt.kind, identity.Kind)
			}
			if tt.userID != "" {
				if identity.User == nil || identity.User.ID != tt.userID {
					t.Errorf("expected user %s, got %+v", tt.userID, identity.User)
				}
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	member := activeUser("member-1", models.RoleUser)
	rs, tm := newTestResolver(t, member)
	token, _ := tm.Generate("member-1")

	var seenAccount *models.User
	handler := RequireAuth(rs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAccount = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous gets 401
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", w.Code)
	}

	// Invalid token gets 401
	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("invalid: expected 401, got %d", w.Code)
	}

	// Valid token passes and injects the account
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("valid: expected 200, got %d", w.Code)
	}
	if seenAccount == nil || seenAccount.ID != "member-1" {
		t.Errorf("expected account member-1 in context, got %+v", seenAccount)
	}
}

func TestOptionalAuth(t *testing.T) {
	member := activeUser("member-1", models.RoleUser)
	rs, tm := newTestResolver(t, member)
	token, _ := tm.Generate("member-1")

	var seenAccount *models.User
	handler := OptionalAuth(rs)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAccount = AccountFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Anonymous proceeds with no account
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusOK {
		t.Errorf("anonymous: expected 200, got %d", w.Code)
	}
	if seenAccount != nil {
		t.Errorf("anonymous: expected nil account, got %+v", seenAccount)
	}

	// Invalid token proceeds as anonymous rather than failing
	w = httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer bogus")
	handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("invalid: expected 200, got %d", w.Code)
	}
	if seenAccount != nil {
		t.Errorf("invalid: expected nil account, got %+v", seenAccount)
	}

	// Valid token injects the account
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(w, r)
	if seenAccount == nil || seenAccount.ID != "member-1" {
		t.Errorf("valid: expected account member-1, got %+v", seenAccount)
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Role
		allowed  []models.Role
		expected int
	}{
		{"admin allowed for admin routes", models.RoleAdmin, []models.Role{models.RoleAdmin}, http.StatusOK},
		{"user rejected for admin routes", models.RoleUser, []models.Role{models.RoleAdmin}, http.StatusForbidden},
		{"trainer allowed in multi-role set", models.RoleTrainer, []models.Role{models.RoleTrainer, models.RoleAdmin}, http.StatusOK},
		{"user rejected in multi-role set", models.RoleUser, []models.Role{models.RoleTrainer, models.RoleAdmin}, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := Authorize(tt.allowed...)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			account := activeUser("u1", tt.role)
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r = r.WithContext(context.WithValue(r.Context(), AccountContextKey, account))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, r)

			if w.Code != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, w.Code)
			}
		})
	}

	t.Run("missing account gets 401", func(t *testing.T) {
		handler := Authorize(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("expected 401, got %d", w.Code)
		}
	})
}

func TestOwnerOrAdmin(t *testing.T) {
	owner := activeUser("owner-1", models.RoleUser)
	admin := activeUser("admin-1", models.RoleAdmin)
	stranger := activeUser("stranger-1", models.RoleUser)

	if !OwnerOrAdmin(owner, "owner-1") {
		t.Error("owner should pass")
	}
	if !OwnerOrAdmin(admin, "owner-1") {
		t.Error("admin should pass for any resource")
	}
	if OwnerOrAdmin(stranger, "owner-1") {
		t.Error("non-owner non-admin should fail")
	}
	if OwnerOrAdmin(nil, "owner-1") {
		t.Error("nil account should fail")
	}
}

func TestRequireOwner(t *testing.T) {
	extract := func(r *http.Request) (string, error) {
		return "owner-1", nil
	}

	handler := RequireOwner(extract)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	run := func(account *models.User) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if account != nil {
			r = r.WithContext(context.WithValue(r.Context(), AccountContextKey, account))
		}
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)
		return w.Code
	}

	if code := run(activeUser("owner-1", models.RoleUser)); code != http.StatusOK {
		t.Errorf("owner: expected 200, got %d", code)
	}
	if code := run(activeUser("admin-1", models.RoleAdmin)); code != http.StatusOK {
		t.Errorf("admin: expected 200, got %d", code)
	}
	if code := run(activeUser("stranger-1", models.RoleUser)); code != http.StatusForbidden {
		t.Errorf("stranger: expected 403, got %d", code)
	}
	if code := run(nil); code != http.StatusUnauthorized {
		t.Errorf("anonymous: expected 401, got %d", code)
	}
}
