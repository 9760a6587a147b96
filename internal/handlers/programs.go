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

// ProgramServiceInterface defines the interface for program business logic
type ProgramServiceInterface interface {
	ListPrograms(ctx context.Context, viewer *models.User, limit, offset int) ([]*models.Program, error)
	GetProgram(ctx context.Context, viewer *models.User, id string) (*models.Program, error)
	ListTrainerPrograms(ctx context.Context, trainerID string) ([]*models.Program, error)
	CreateProgram(ctx context.Context, trainerID string, input services.ProgramInput) (*models.Program, error)
	UpdateProgram(ctx context.Context, id string, input services.ProgramInput) (*models.Program, error)
	DeleteProgram(ctx context.Context, id string) error
	ProgramOwner(ctx context.Context, id string) (string, error)
	Favorite(ctx context.Context, userID, programID string) error
	Unfavorite(ctx context.Context, userID, programID string) error
}

// ProgramHandler handles workout program HTTP requests
type ProgramHandler struct {
	service ProgramServiceInterface
}

// NewProgramHandler creates a new ProgramHandler
func NewProgramHandler(service ProgramServiceInterface) *ProgramHandler {
	return &ProgramHandler{service: service}
}

// ProgramRequest represents the request body for creating/updating a program
type ProgramRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description" validate:"omitempty,max=5000"`
	Category    string  `json:"category" validate:"required,max=50"`
	Difficulty  string  `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	DurationWks int     `json:"durationWeeks" validate:"gte=1,lte=104"`
	Price       float64 `json:"price" validate:"gte=0"`
	IsPublished bool    `json:"isPublished"`
}

// List returns published programs. Signed-in callers see their favorite
// flags; anonymous callers get the same list without personalization.
func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	viewer := auth.AccountFromContext(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	programs, err := h.service.ListPrograms(r.Context(), viewer, limit, offset)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", programsToResponse(programs))
}

// Get returns one program.
func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	viewer := auth.AccountFromContext(r.Context())
	id := chi.URLParam(r, "id")

	program, err := h.service.GetProgram(r.Context(), viewer, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Program not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", programToResponse(program))
}

// ListMine returns everything the calling trainer owns, drafts included.
func (h *ProgramHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())

	programs, err := h.service.ListTrainerPrograms(r.Context(), account.ID)
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", programsToResponse(programs))
}

// Create adds a program owned by the calling trainer.
func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())

	var req ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	program, err := h.service.CreateProgram(r.Context(), account.ID, services.ProgramInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		DurationWks: req.DurationWks,
		Price:       req.Price,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Invalid program")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteCreated(w, "Program created", programToResponse(program))
}

// Update edits a program. Route middleware has already verified the caller
// owns it or is an admin.
func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req ProgramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	program, err := h.service.UpdateProgram(r.Context(), id, services.ProgramInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Difficulty:  req.Difficulty,
		DurationWks: req.DurationWks,
		Price:       req.Price,
		IsPublished: req.IsPublished,
	})
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Program not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Program updated", programToResponse(program))
}

// Delete removes a program (owner or admin, enforced by route middleware).
func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteProgram(r.Context(), id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Program not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Program deleted", nil)
}

// Favorite marks a program as a favorite of the caller.
func (h *ProgramHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Favorite(r.Context(), account.ID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Program not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Program favorited", nil)
}

// Unfavorite removes a program from the caller's favorites.
func (h *ProgramHandler) Unfavorite(w http.ResponseWriter, r *http.Request) {
	account := auth.AccountFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.service.Unfavorite(r.Context(), account.ID, id); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "Favorite not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Program unfavorited", nil)
}
