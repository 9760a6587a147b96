package auth

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gymverse/gymverse/internal/models"
)

// AccountResolver fetches the current account record for a token subject.
type AccountResolver interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
}

// IdentityKind classifies the outcome of resolving a request's credential.
type IdentityKind int

const (
	// IdentityAnonymous means the request carried no credential at all.
	IdentityAnonymous IdentityKind = iota
	// IdentityAuthenticated means a valid token mapped to an active account.
	IdentityAuthenticated
	// IdentityInvalid means a credential was presented but could not be
	// honored: bad signature, expired, unknown subject, or a deactivated
	// or locked account.
	IdentityInvalid
)

// Identity is the resolved caller of a request. Exactly one of the three
// kinds applies; User is set only when Kind is IdentityAuthenticated.
type Identity struct {
	Kind   IdentityKind
	User   *models.User
	Reason string // why the credential was rejected, for logs only
}

// Resolver turns raw requests into identities. It is the single place where
// token extraction, validation, and account lookup happen; the middleware
// in this package are thin policy wrappers over it.
type Resolver struct {
	tokens   *TokenManager
	accounts AccountResolver

	// now is the clock; injectable so lock expiry is testable.
	now func() time.Time
}

func NewResolver(tokens *TokenManager, accounts AccountResolver) *Resolver {
	return &Resolver{tokens: tokens, accounts: accounts, now: time.Now}
}

// ResolveIdentity classifies the request's credential, read from the
// Authorization header in Bearer form. Role, active status, and lock state
// always come from the database, never from the token, so role changes,
// deactivation, and lockouts take effect on the next request.
func (rs *Resolver) ResolveIdentity(r *http.Request) Identity {
	tokenString, presented := extractToken(r)
	if !presented {
		return Identity{Kind: IdentityAnonymous}
	}
	if tokenString == "" {
		return Identity{Kind: IdentityInvalid, Reason: "malformed authorization header"}
	}

	claims, err := rs.tokens.Validate(tokenString)
	if err != nil {
		return Identity{Kind: IdentityInvalid, Reason: "invalid or expired token"}
	}

	user, err := rs.accounts.GetByID(r.Context(), claims.UserID)
	if err != nil {
		return Identity{Kind: IdentityInvalid, Reason: "account not found"}
	}

	if !user.IsActive {
		return Identity{Kind: IdentityInvalid, Reason: "account deactivated"}
	}

	if user.IsLocked(rs.now()) {
		return Identity{Kind: IdentityInvalid, Reason: "account locked"}
	}

	return Identity{Kind: IdentityAuthenticated, User: user}
}

// extractToken pulls the session token from the Authorization header. The
// cookie set at login is for the browser's benefit only and is never read
// back for authentication, so cross-site requests cannot ride on it. The
// second return reports whether any credential was presented; a
// presented-but-malformed header yields ("", true) so it classifies as
// invalid rather than anonymous.
func extractToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "" {
		return parts[1], true
	}
	return "", true
}
