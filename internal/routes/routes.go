package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/handlers"
	"github.com/gymverse/gymverse/internal/middleware"
	"github.com/gymverse/gymverse/internal/models"
)

// Handlers bundles every HTTP handler the route tree mounts.
type Handlers struct {
	Auth        *handlers.AuthHandler
	Users       *handlers.UserHandler
	Programs    *handlers.ProgramHandler
	Memberships *handlers.MembershipHandler
	Referrals   *handlers.ReferralHandler
	Newsletter  *handlers.NewsletterHandler
}

// RegisterRoutes registers all application routes under /api
func RegisterRoutes(
	router chi.Router,
	h Handlers,
	resolver *auth.Resolver,
	programOwner func(ctx context.Context, programID string) (string, error),
) {
	authRateLimit := middleware.DefaultAuthRateLimit()
	publicRateLimit := middleware.DefaultPublicRateLimit()

	ownsProgram := auth.OwnerExtractor(func(r *http.Request) (string, error) {
		return programOwner(r.Context(), chi.URLParam(r, "id"))
	})

	router.Route("/api", func(r chi.Router) {
		// Public routes - no authentication required
		r.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/login", h.Auth.Login)
		r.With(middleware.RateLimitByIP(authRateLimit)).Post("/auth/register", h.Auth.Register)

		r.With(middleware.RateLimitByIP(publicRateLimit)).Post("/newsletter/subscribe", h.Newsletter.Subscribe)
		r.With(middleware.RateLimitByIP(publicRateLimit)).Post("/newsletter/unsubscribe", h.Newsletter.Unsubscribe)

		r.Get("/memberships", h.Memberships.List)
		r.Get("/memberships/{id}", h.Memberships.Get)

		r.Get("/referrals/validate/{code}", h.Referrals.Validate)

		// Program catalog is public but personalized when a session is present
		r.Group(func(r chi.Router) {
			r.Use(auth.OptionalAuth(resolver))
			r.Get("/programs", h.Programs.List)
			r.Get("/programs/{id}", h.Programs.Get)
		})

		// Protected routes - authentication required
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(resolver))

			r.Get("/auth/me", h.Auth.Me)
			r.Put("/auth/profile", h.Users.UpdateProfile)
			r.Put("/auth/password", h.Auth.ChangePassword)
			r.Post("/auth/logout", h.Auth.Logout)

			r.Post("/programs/{id}/favorite", h.Programs.Favorite)
			r.Delete("/programs/{id}/favorite", h.Programs.Unfavorite)

			r.Post("/referrals", h.Referrals.Create)
			r.Get("/referrals", h.Referrals.List)
			r.Get("/referrals/stats", h.Referrals.Stats)

			// Trainer routes - program management
			r.Group(func(r chi.Router) {
				r.Use(auth.Authorize(models.RoleTrainer, models.RoleAdmin))
				r.Get("/programs/mine", h.Programs.ListMine)
				r.Post("/programs", h.Programs.Create)

				r.Group(func(r chi.Router) {
					r.Use(auth.RequireOwner(ownsProgram))
					r.Put("/programs/{id}", h.Programs.Update)
					r.Delete("/programs/{id}", h.Programs.Delete)
				})
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(auth.Authorize(models.RoleAdmin))

				r.Get("/users", h.Users.ListUsers)
				r.Get("/users/{id}", h.Users.GetUser)
				r.Put("/users/{id}/active", h.Users.SetActive)
				r.Put("/users/{id}/role", h.Users.SetRole)
				r.Delete("/users/{id}", h.Users.DeleteUser)

				r.Post("/memberships", h.Memberships.Create)
				r.Put("/memberships/{id}", h.Memberships.Update)
				r.Delete("/memberships/{id}", h.Memberships.Delete)

				r.Get("/newsletter/stats", h.Newsletter.Stats)
				r.Post("/newsletter/campaign", h.Newsletter.SendCampaign)
			})
		})
	})
}
