package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/models"
	"github.com/gymverse/gymverse/internal/services"
	pkghttp "github.com/gymverse/gymverse/pkg/http"
)

// UserServiceInterface defines the interface for user business logic
type UserServiceInterface interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error)
	UpdateProfile(ctx context.Context, id string, update services.ProfileUpdate) (*models.User, error)
	SetActive(ctx context.Context, id string, active bool, actorID string) error
	SetRole(ctx context.Context, id, role, actorID string) error
	DeleteUser(ctx context.Context, id, actorID string) error
}

// UserHandler handles user account HTTP requests
type UserHandler struct {
	service UserServiceInterface
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(service UserServiceInterface) *UserHandler {
	return &UserHandler{service: service}
}

// UpdateProfileRequest represents the request body for a profile update
type UpdateProfileRequest struct {
	Name  string `json:"name" validate:"omitempty,min=1,max=100"`
	Bio   string `json:"bio" validate:"omitempty,max=500"`
	Phone string `json:"phone" validate:"omitempty,max=30"`
}

// SetRoleRequest represents the request body for an admin role change
type SetRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user trainer admin"`
}

// SetActiveRequest represents the request body for activating/deactivating
type SetActiveRequest struct {
	IsActive bool `json:"isActive"`
}

// UpdateProfile edits the caller's own profile.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	if account == nil {
		pkghttp.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	updated, err := h.service.UpdateProfile(r.Context(), account.ID, services.ProfileUpdate{
		Name:  req.Name,
		Bio:   req.Bio,
		Phone: req.Phone,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Profile updated successfully", userToResponse(updated))
}

// ListUsers returns a page of accounts (admin only).
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	users, err := h.service.ListUsers(r.Context(), limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", usersToResponse(users))
}

// GetUser returns one account (admin only).
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.service.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", userToResponse(user))
}

// SetActive deactivates or reactivates an account (admin only).
func (h *UserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req SetActiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := h.service.SetActive(r.Context(), id, req.IsActive, account.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "User status updated", nil)
}

// SetRole changes an account's role (admin only).
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req SetRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.SetRole(r.Context(), id, req.Role, account.ID); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "User not found")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid role")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteOK(w, "User role updated", nil)
}

// DeleteUser removes an account (admin only).
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if id == account.ID {
		pkghttp.WriteBadRequest(w, "Cannot delete your own account")
		return
	}

	if err := h.service.DeleteUser(r.Context(), id, account.ID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "User deleted", nil)
}
