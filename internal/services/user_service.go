package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gymverse/gymverse/internal/models"
	pkglogger "github.com/gymverse/gymverse/pkg/logger"
)

// UserService handles user account business logic
type UserService struct {
	repo        UserRepository
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
}

// NewUserService creates a new UserService
func NewUserService(repo UserRepository, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *UserService {
	return &UserService{
		repo:        repo,
		logger:      logger,
		auditLogger: auditLogger,
	}
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return user, nil
}

// ListUsers retrieves a page of users (admin only)
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list users", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return users, nil
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	Name  string
	Bio   string
	Phone string
}

// UpdateProfile edits the caller's own profile fields. Role and active
// status are deliberately out of reach here.
func (s *UserService) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if name := strings.TrimSpace(update.Name); name != "" {
		user.Name = name
	}
	user.Bio = strings.TrimSpace(update.Bio)
	user.Phone = strings.TrimSpace(update.Phone)

	updated, err := s.repo.Update(ctx, id, user)
	if err != nil {
		s.logger.Error("failed to update user", slog.String("user_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// SetActive deactivates or reactivates an account (admin only). Deactivation
// takes effect on the account's next request since role and active status
// are read from the database, not the token.
func (s *UserService) SetActive(ctx context.Context, id string, active bool, actorID string) error {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to set active flag", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	action := "user_deactivated"
	if active {
		action = "user_reactivated"
	}
	s.auditLogger.LogAccountAction(action, id, "", map[string]string{"actor_id": actorID})
	return nil
}

// SetRole changes an account's role (admin only).
func (s *UserService) SetRole(ctx context.Context, id, roleStr, actorID string) error {
	role, err := models.ParseRole(roleStr)
	if err != nil {
		return models.ErrBadRequest
	}

	if err := s.repo.SetRole(ctx, id, role); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to set role", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("role_changed", id, "", map[string]string{
		"actor_id": actorID,
		"new_role": role.String(),
	})
	return nil
}

// DeleteUser removes an account entirely (admin only).
func (s *UserService) DeleteUser(ctx context.Context, id, actorID string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete user", slog.String("user_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogAccountAction("user_deleted", id, "", map[string]string{"actor_id": actorID})
	return nil
}
