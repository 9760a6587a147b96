package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gymverse/gymverse/internal/models"
	"github.com/gymverse/gymverse/internal/services"
	pkghttp "github.com/gymverse/gymverse/pkg/http"
)

// NewsletterServiceInterface defines the interface for newsletter logic
type NewsletterServiceInterface interface {
	Subscribe(ctx context.Context, input services.SubscribeInput) (*models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	Stats(ctx context.Context) (*models.NewsletterStats, error)
	SendCampaign(ctx context.Context, subject, body string) (*models.CampaignResult, error)
}

// NewsletterHandler handles newsletter HTTP requests
type NewsletterHandler struct {
	service NewsletterServiceInterface
}

// NewNewsletterHandler creates a new NewsletterHandler
func NewNewsletterHandler(service NewsletterServiceInterface) *NewsletterHandler {
	return &NewsletterHandler{service: service}
}

// SubscribeRequest represents the request body for subscribing
type SubscribeRequest struct {
	Email      string   `json:"email" validate:"required,email"`
	FirstName  string   `json:"firstName" validate:"omitempty,max=100"`
	LastName   string   `json:"lastName" validate:"omitempty,max=100"`
	Frequency  string   `json:"frequency" validate:"omitempty,oneof=daily weekly monthly"`
	Categories []string `json:"categories" validate:"omitempty,dive,max=50"`
}

// UnsubscribeRequest represents the request body for unsubscribing
type UnsubscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// CampaignRequest represents the request body for an admin campaign send
type CampaignRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Body    string `json:"body" validate:"required,min=1"`
}

// Subscribe adds an address to the newsletter list.
func (h *NewsletterHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	sub, err := h.service.Subscribe(r.Context(), services.SubscribeInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Frequency:  req.Frequency,
		Categories: req.Categories,
	})
	if err != nil {
		switch {
		case errors.Is(err, models.ErrConflict):
			pkghttp.WriteConflict(w, "Email is already subscribed")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid email")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteCreated(w, "Subscribed successfully", map[string]string{
		"email": sub.Email,
	})
}

// Unsubscribe removes an address from circulation.
func (h *NewsletterHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req UnsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.service.Unsubscribe(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteNotFound(w, "Email is not subscribed")
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, "Invalid email")
		default:
			pkghttp.WriteInternalError(w, "Internal server error")
		}
		return
	}

	pkghttp.WriteOK(w, "Unsubscribed successfully", nil)
}

// Stats returns list totals (admin only).
func (h *NewsletterHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "", map[string]int{
		"totalSubscribed":   stats.TotalSubscribed,
		"totalUnsubscribed": stats.TotalUnsubscribed,
		"recentSubscribers": stats.RecentSubscribers,
	})
}

// SendCampaign delivers a campaign to all subscribers (admin only).
func (h *NewsletterHandler) SendCampaign(w http.ResponseWriter, r *http.Request) {
	var req CampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	result, err := h.service.SendCampaign(r.Context(), req.Subject, req.Body)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, "Subject and body are required")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteOK(w, "Campaign sent", map[string]int{
		"recipients": result.Recipients,
		"sent":       result.Sent,
		"failed":     result.Failed,
	})
}
