package auth

import (
	"context"
	"net/http"

	"github.com/gymverse/gymverse/internal/models"
	pkghttp "github.com/gymverse/gymverse/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// AccountContextKey is the key for storing the resolved account in context
	AccountContextKey contextKey = "account"
)

// RequireAuth admits only authenticated callers. Anonymous and invalid
// credentials both get 401; the two cases are distinguished in the message
// so clients know whether to attach or refresh their token.
func RequireAuth(rs *Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := rs.ResolveIdentity(r)

			switch identity.Kind {
			case IdentityAnonymous:
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			case IdentityInvalid:
				pkghttp.WriteUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), AccountContextKey, identity.User)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth resolves the caller when possible but never rejects the
// request. Authenticated callers get their account injected into context;
// anonymous and invalid credentials both proceed as anonymous, so read
// paths can personalize without forcing sign-in.
func OptionalAuth(rs *Resolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity := rs.ResolveIdentity(r)

			if identity.Kind == IdentityAuthenticated {
				ctx := context.WithValue(r.Context(), AccountContextKey, identity.User)
				r = r.WithContext(ctx)
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Authorize admits only callers whose role is in the allowed set. Must run
// after RequireAuth.
func Authorize(roles ...models.Role) func(next http.Handler) http.Handler {
	allowed := make(map[models.Role]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			if !allowed[account.Role] {
				pkghttp.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OwnerExtractor derives the owning user ID for the requested resource.
type OwnerExtractor func(r *http.Request) (string, error)

// RequireOwner admits the resource owner or an admin. Must run after
// RequireAuth. The extractor typically reads a URL parameter or loads the
// resource to find its owner.
func RequireOwner(extract OwnerExtractor) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			account := AccountFromContext(r.Context())
			if account == nil {
				pkghttp.WriteUnauthorized(w, "Authentication required")
				return
			}

			ownerID, err := extract(r)
			if err != nil {
				pkghttp.WriteNotFound(w, "Resource not found")
				return
			}

			if !OwnerOrAdmin(account, ownerID) {
				pkghttp.WriteForbidden(w, "Insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OwnerOrAdmin reports whether the account may act on a resource owned by
// ownerID. Admins may act on anything.
func OwnerOrAdmin(account *models.User, ownerID string) bool {
	if account == nil {
		return false
	}
	return account.ID == ownerID || account.Role == models.RoleAdmin
}

// AccountFromContext extracts the resolved account from a request context.
// Returns nil for anonymous callers.
func AccountFromContext(ctx context.Context) *models.User {
	account, ok := ctx.Value(AccountContextKey).(*models.User)
	if !ok {
		return nil
	}
	return account
}
