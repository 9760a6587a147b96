package handlers

import (
	"time"

	"github.com/gymverse/gymverse/internal/models"
)

// UserResponse mirrors services.UserResponse for handler-level conversions.
type UserResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Bio           string `json:"bio,omitempty"`
	Phone         string `json:"phone,omitempty"`
	IsActive      bool   `json:"isActive"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt"`
}

func userToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role.String(),
		Bio:           user.Bio,
		Phone:         user.Phone,
		IsActive:      user.IsActive,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
}

func usersToResponse(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, userToResponse(u))
	}
	return out
}

// ProgramResponse is the wire shape of a workout program.
type ProgramResponse struct {
	ID          string  `json:"id"`
	TrainerID   string  `json:"trainerId"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category"`
	Difficulty  string  `json:"difficulty"`
	DurationWks int     `json:"durationWeeks"`
	Price       float64 `json:"price"`
	IsPublished bool    `json:"isPublished"`
	IsFavorite  bool    `json:"isFavorite"`
	CreatedAt   string  `json:"createdAt"`
}

func programToResponse(p *models.Program) *ProgramResponse {
	return &ProgramResponse{
		ID:          p.ID,
		TrainerID:   p.TrainerID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Difficulty:  p.Difficulty,
		DurationWks: p.DurationWks,
		Price:       p.Price,
		IsPublished: p.IsPublished,
		IsFavorite:  p.IsFavorite,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
}

func programsToResponse(programs []*models.Program) []*ProgramResponse {
	out := make([]*ProgramResponse, 0, len(programs))
	for _, p := range programs {
		out = append(out, programToResponse(p))
	}
	return out
}

// ReferralResponse is the wire shape of a referral.
type ReferralResponse struct {
	ID          string  `json:"id"`
	Code        string  `json:"code"`
	Status      string  `json:"status"`
	RewardType  string  `json:"rewardType"`
	RewardValue int     `json:"rewardValue"`
	ExpiresAt   string  `json:"expiresAt"`
	CompletedAt *string `json:"completedAt,omitempty"`
	CreatedAt   string  `json:"createdAt"`
}

func referralToResponse(r *models.Referral) *ReferralResponse {
	resp := &ReferralResponse{
		ID:          r.ID,
		Code:        r.Code,
		Status:      r.Status,
		RewardType:  r.RewardType,
		RewardValue: r.RewardValue,
		ExpiresAt:   r.ExpiresAt.Format(time.RFC3339),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
	if r.CompletedAt != nil {
		s := r.CompletedAt.Format(time.RFC3339)
		resp.CompletedAt = &s
	}
	return resp
}

func referralsToResponse(refs []*models.Referral) []*ReferralResponse {
	out := make([]*ReferralResponse, 0, len(refs))
	for _, r := range refs {
		out = append(out, referralToResponse(r))
	}
	return out
}
