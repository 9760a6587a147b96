package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/gymverse/gymverse/internal/models"
)

// ProgramRepository defines the interface for program data access
type ProgramRepository interface {
	GetByID(ctx context.Context, id string) (*models.Program, error)
	ListPublished(ctx context.Context, limit, offset int) ([]*models.Program, error)
	ListByTrainer(ctx context.Context, trainerID string) ([]*models.Program, error)
	Create(ctx context.Context, program *models.Program) (*models.Program, error)
	Update(ctx context.Context, id string, program *models.Program) (*models.Program, error)
	Delete(ctx context.Context, id string) error
	AddFavorite(ctx context.Context, userID, programID string) error
	RemoveFavorite(ctx context.Context, userID, programID string) error
	FavoriteIDs(ctx context.Context, userID string) (map[string]bool, error)
}

// ProgramService handles workout program business logic
type ProgramService struct {
	repo   ProgramRepository
	logger *slog.Logger
}

// NewProgramService creates a new ProgramService
func NewProgramService(repo ProgramRepository, logger *slog.Logger) *ProgramService {
	return &ProgramService{
		repo:   repo,
		logger: logger,
	}
}

// ListPrograms returns published programs. When viewer is non-nil each
// program's IsFavorite flag reflects that viewer's favorites; anonymous
// callers get the same list with the flag always false.
func (s *ProgramService) ListPrograms(ctx context.Context, viewer *models.User, limit, offset int) ([]*models.Program, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	programs, err := s.repo.ListPublished(ctx, limit, offset)
	if err != nil {
		s.logger.Error("failed to list programs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if viewer != nil {
		favorites, err := s.repo.FavoriteIDs(ctx, viewer.ID)
		if err != nil {
			s.logger.Error("failed to load favorites",
				slog.String("user_id", viewer.ID), slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		for _, p := range programs {
			p.IsFavorite = favorites[p.ID]
		}
	}

	return programs, nil
}

// GetProgram returns a single program with the viewer's favorite flag.
// Unpublished programs are visible only to their owner and admins.
func (s *ProgramService) GetProgram(ctx context.Context, viewer *models.User, id string) (*models.Program, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get program", slog.String("program_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !program.IsPublished {
		if viewer == nil || (viewer.ID != program.TrainerID && viewer.Role != models.RoleAdmin) {
			// Hidden drafts look like they don't exist.
			return nil, models.ErrNotFound
		}
	}

	if viewer != nil {
		favorites, err := s.repo.FavoriteIDs(ctx, viewer.ID)
		if err == nil {
			program.IsFavorite = favorites[program.ID]
		}
	}

	return program, nil
}

// ListTrainerPrograms returns everything a trainer owns, drafts included.
func (s *ProgramService) ListTrainerPrograms(ctx context.Context, trainerID string) ([]*models.Program, error) {
	programs, err := s.repo.ListByTrainer(ctx, trainerID)
	if err != nil {
		s.logger.Error("failed to list trainer programs", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return programs, nil
}

// ProgramInput carries the editable fields of a program.
type ProgramInput struct {
	Title       string
	Description string
	Category    string
	Difficulty  string
	DurationWks int
	Price       float64
	IsPublished bool
}

// CreateProgram creates a program owned by the given trainer.
func (s *ProgramService) CreateProgram(ctx context.Context, trainerID string, input ProgramInput) (*models.Program, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, models.ErrBadRequest
	}

	program := &models.Program{
		TrainerID:   trainerID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Category:    input.Category,
		Difficulty:  input.Difficulty,
		DurationWks: input.DurationWks,
		Price:       input.Price,
		IsPublished: input.IsPublished,
	}

	created, err := s.repo.Create(ctx, program)
	if err != nil {
		s.logger.Error("failed to create program", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("program created",
		slog.String("program_id", created.ID),
		slog.String("trainer_id", trainerID))
	return created, nil
}

// UpdateProgram edits a program. Ownership is enforced by the route
// middleware; the service only applies the change.
func (s *ProgramService) UpdateProgram(ctx context.Context, id string, input ProgramInput) (*models.Program, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		s.logger.Error("failed to get program", slog.String("program_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		program.Title = title
	}
	program.Description = input.Description
	program.Category = input.Category
	program.Difficulty = input.Difficulty
	program.DurationWks = input.DurationWks
	program.Price = input.Price
	program.IsPublished = input.IsPublished

	updated, err := s.repo.Update(ctx, id, program)
	if err != nil {
		s.logger.Error("failed to update program", slog.String("program_id", id), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return updated, nil
}

// DeleteProgram removes a program.
func (s *ProgramService) DeleteProgram(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to delete program", slog.String("program_id", id), slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// ProgramOwner returns the owning trainer ID, for ownership middleware.
func (s *ProgramService) ProgramOwner(ctx context.Context, id string) (string, error) {
	program, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return program.TrainerID, nil
}

// Favorite marks a program as a favorite of the user.
func (s *ProgramService) Favorite(ctx context.Context, userID, programID string) error {
	if _, err := s.repo.GetByID(ctx, programID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return models.ErrInternalServer
	}

	if err := s.repo.AddFavorite(ctx, userID, programID); err != nil {
		s.logger.Error("failed to add favorite", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}

// Unfavorite removes a program from the user's favorites.
func (s *ProgramService) Unfavorite(ctx context.Context, userID, programID string) error {
	if err := s.repo.RemoveFavorite(ctx, userID, programID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to remove favorite", slog.Any("error", err))
		return models.ErrInternalServer
	}
	return nil
}
