package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gymverse/gymverse/internal/models"
	"github.com/gymverse/gymverse/internal/services"
	pkghttp "github.com/gymverse/gymverse/pkg/http"
)

// MembershipServiceInterface defines the interface for membership plan logic
type MembershipServiceInterface interface {
	ListPlans(ctx context.Context) ([]*models.MembershipPlan, error)
	GetPlan(ctx context.Context, id string) (*models.MembershipPlan, error)
	CreatePlan(ctx context.Context, input services.PlanInput) (*models.MembershipPlan, error)
	UpdatePlan(ctx context.Context, id string, input services.PlanInput) (*models.MembershipPlan, error)
	DeletePlan(ctx context.Context, id string) error
}

// MembershipHandler handles membership plan HTTP requests
type MembershipHandler struct {
	service MembershipServiceInterface
}

// NewMembershipHandler creates a new MembershipHandler
func NewMembershipHandler(service MembershipServiceInterface) *MembershipHandler {
	return &MembershipHandler{service: service}
}

// PlanRequest represents the request body for creating/updating a plan
type PlanRequest struct {
	Name         string   `json:"name" validate:"required,min=1,max=100"`
	Type         string   `json:"type" validate:"required,oneof=basic premium elite"`
	PriceMonthly float64  `json:"priceMonthly" validate:"gte=0"`
	PriceYearly  float64  `json:"priceYearly" validate:"gte=0"`
	Features     []string `json:"features" validate:"omitempty,dive,max=200"`
	IsActive     bool     `json:"isActive"`
}

// List returns active plans for the public pricing page.
func (h *MembershipHandler) List(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", plans)
}

// Get returns one plan.
func (h *MembershipHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	plan, err := h.service.GetPlan(r.Context(), id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Membership plan not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", plan)
}

// Create adds a plan (admin only).
func (h *MembershipHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	plan, err := h.service.CreatePlan(r.Context(), services.PlanInput{
		Name:         req.Name,
		Type:         req.Type,
		PriceMonthly: req.PriceMonthly,
		PriceYearly:  req.PriceYearly,
		Features:     req.Features,
		IsActive:     req.IsActive,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "A plan with this name already exists")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid plan")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteCreated(w, "Membership plan created", plan)
}

// Update edits a plan (admin only).
func (h *MembershipHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), id, services.PlanInput{
		Name:         req.Name,
		Type:         req.Type,
		PriceMonthly: req.PriceMonthly,
		PriceYearly:  req.PriceYearly,
		Features:     req.Features,
		IsActive:     req.IsActive,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Membership plan not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Membership plan updated", plan)
}

// Delete removes a plan (admin only).
func (h *MembershipHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeletePlan(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Membership plan not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Membership plan deleted", nil)
}
