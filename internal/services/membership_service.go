package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gymverse/gymverse/internal/models"
)

// MembershipRepository defines the interface for membership plan data access
type MembershipRepository interface {
	ListActive(ctx context.Context) ([]*models.MembershipPlan, error)
	GetByID(ctx context.Context, id string) (*models.MembershipPlan, error)
	Create(ctx context.Context, plan *models.MembershipPlan) (*models.MembershipPlan, error)
	Update(ctx context.Context, id string, plan *models.MembershipPlan) (*models.MembershipPlan, error)
	Delete(ctx context.Context, id string) error
}

// MembershipService handles membership plan business logic
type MembershipService struct {
	repo   MembershipRepository
	logger *slog.Logger
}

// NewMembershipService creates a new MembershipService
func NewMembershipService(repo MembershipRepository, logger *slog.Logger) *MembershipService {
	return &MembershipService{
		repo:   repo,
		logger: logger,
	}
}

// ListPlans returns purchasable plans for the public pricing page.
func (s *MembershipService) ListPlans(ctx context.Context) ([]*models.MembershipPlan, error) {
	plans, err := s.repo.ListActive(ctx)
	if err != nil {
		s.logger.Error("failed to list membership plans", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return plans, nil
}

// GetPlan returns a single plan.
func (s *MembershipService) GetPlan(ctx context.Context, id string) (*models.MembershipPlan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get membership plan", slog.String("plan_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return plan, nil
}

// PlanInput carries the editable fields of a membership plan.
type PlanInput struct {
	Name         string
	Type         string
	PriceMonthly float64
	PriceYearly  float64
	Features     []string
	IsActive     bool
}

// CreatePlan adds a new plan (admin only).
func (s *MembershipService) CreatePlan(ctx context.Context, input PlanInput) (*models.MembershipPlan, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, models.ErrBadRequest
	}

	plan := &models.MembershipPlan{
		Name:         strings.TrimSpace(input.Name),
		Type:         input.Type,
		PriceMonthly: input.PriceMonthly,
		PriceYearly:  input.PriceYearly,
		Features:     input.Features,
		IsActive:     input.IsActive,
	}

	created, err := s.repo.Create(ctx, plan)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create membership plan", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("membership plan created", slog.String("plan_id", created.ID))
	return created, nil
}

// UpdatePlan edits an existing plan (admin only).
func (s *MembershipService) UpdatePlan(ctx context.Context, id string, input PlanInput) (*models.MembershipPlan, error) {
	plan, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get membership plan", slog.String("plan_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		plan.Name = name
	}
	plan.Type = input.Type
	plan.PriceMonthly = input.PriceMonthly
	plan.PriceYearly = input.PriceYearly
	plan.Features = input.Features
	plan.IsActive = input.IsActive

	updated, err := s.repo.Update(ctx, id, plan)
	if err != nil {
		s.logger.Error("failed to update membership plan", slog.String("plan_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// DeletePlan removes a plan (admin only).
func (s *MembershipService) DeletePlan(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete membership plan", slog.String("plan_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
