package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gymverse/gymverse/internal/config"
	"github.com/gymverse/gymverse/internal/models"
	pkglogger "github.com/gymverse/gymverse/pkg/logger"
)

// NewsletterRepository defines the interface for subscriber data access
type NewsletterRepository interface {
	GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	Create(ctx context.Context, sub *models.NewsletterSubscriber) (*models.NewsletterSubscriber, error)
	Resubscribe(ctx context.Context, email, firstName, lastName, frequency string, categories []string) (*models.NewsletterSubscriber, error)
	Unsubscribe(ctx context.Context, email string) error
	ListSubscribed(ctx context.Context) ([]*models.NewsletterSubscriber, error)
	Stats(ctx context.Context) (*models.NewsletterStats, error)
}

// NewsletterService manages the subscriber list and campaign sends.
type NewsletterService struct {
	repo   NewsletterRepository
	email  EmailSender
	cfg    config.NewsletterConfig
	logger *slog.Logger
}

// NewNewsletterService creates a new NewsletterService
func NewNewsletterService(repo NewsletterRepository, email EmailSender, cfg config.NewsletterConfig, logger *slog.Logger) *NewsletterService {
	return &NewsletterService{
		repo:   repo,
		email:  email,
		cfg:    cfg,
		logger: logger,
	}
}

// SubscribeInput carries sign-up fields for the newsletter.
type SubscribeInput struct {
	Email      string
	FirstName  string
	LastName   string
	Frequency  string
	Categories []string
}

// Subscribe adds an address to the list. A previously unsubscribed address
// is reactivated with the new preferences; an already subscribed address is
// a conflict.
func (s *NewsletterService) Subscribe(ctx context.Context, input SubscribeInput) (*models.NewsletterSubscriber, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, models.ErrBadRequest
	}

	frequency := input.Frequency
	if frequency == "" {
		frequency = "weekly"
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to look up subscriber", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if existing != nil {
		if existing.Status == models.SubscriberStatusSubscribed {
			return nil, models.ErrConflict
		}

		sub, err := s.repo.Resubscribe(ctx, email, input.FirstName, input.LastName, frequency, input.Categories)
		if err != nil {
			s.logger.Error("failed to resubscribe", slog.Any("error", err))
			return nil, models.ErrInternalServer
		}
		s.logger.Info("subscriber reactivated",
			slog.String("email", pkglogger.SanitizedEmail(email)))
		s.sendConfirmation(sub.Email, sub.FirstName)
		return sub, nil
	}

	sub, err := s.repo.Create(ctx, &models.NewsletterSubscriber{
		Email:      email,
		FirstName:  strings.TrimSpace(input.FirstName),
		LastName:   strings.TrimSpace(input.LastName),
		Status:     models.SubscriberStatusSubscribed,
		Frequency:  frequency,
		Categories: input.Categories,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create subscriber", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("subscriber added",
		slog.String("email", pkglogger.SanitizedEmail(email)))
	s.sendConfirmation(sub.Email, sub.FirstName)
	return sub, nil
}

// sendConfirmation fires the subscription confirmation without blocking the
// request. Failures are logged only.
func (s *NewsletterService) sendConfirmation(email, firstName string) {
	if s.email == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.email.SendSubscriptionConfirmation(ctx, email, firstName); err != nil {
			s.logger.Warn("failed to send subscription confirmation",
				slog.String("email", pkglogger.SanitizedEmail(email)),
				slog.Any("error", err))
		}
	}()
}

// Unsubscribe removes an address from active circulation. The row is kept
// so stats can count churn and the address can resubscribe later.
func (s *NewsletterService) Unsubscribe(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return models.ErrBadRequest
	}

	if err := s.repo.Unsubscribe(ctx, email); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to unsubscribe", slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.logger.Info("subscriber removed",
		slog.String("email", pkglogger.SanitizedEmail(email)))
	return nil
}

// Stats returns list totals for the admin dashboard.
func (s *NewsletterService) Stats(ctx context.Context) (*models.NewsletterStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		s.logger.Error("failed to get newsletter stats", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	return stats, nil
}

// SendCampaign delivers a campaign to every active subscriber. Recipients
// are processed in batches with a pause between batches so the mail
// provider's rate limits are respected; within a batch sends run
// concurrently. Individual failures are counted, not fatal.
//
// The body may contain a {{firstName}} placeholder which is replaced per
// recipient (falling back to "there" when the name is unknown).
func (s *NewsletterService) SendCampaign(ctx context.Context, subject, body string) (*models.CampaignResult, error) {
	if strings.TrimSpace(subject) == "" || strings.TrimSpace(body) == "" {
		return nil, models.ErrBadRequest
	}
	if s.email == nil {
		s.logger.Error("campaign requested but no email service is configured")
		return nil, models.ErrInternalServer
	}

	subs, err := s.repo.ListSubscribed(ctx)
	if err != nil {
		s.logger.Error("failed to list subscribers", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	batchSize := s.cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 50
	}

	var sent, failed int64

	for start := 0; start < len(subs); start += batchSize {
		end := start + batchSize
		if end > len(subs) {
			end = len(subs)
		}
		batch := subs[start:end]

		var wg sync.WaitGroup
		for _, sub := range batch {
			wg.Add(1)
			go func(sub *models.NewsletterSubscriber) {
				defer wg.Done()

				personalized := personalize(body, sub.FirstName)
				if err := s.email.SendCampaignEmail(ctx, sub.Email, subject, personalized); err != nil {
					atomic.AddInt64(&failed, 1)
					s.logger.Warn("campaign email failed",
						slog.String("email", pkglogger.SanitizedEmail(sub.Email)),
						slog.Any("error", err))
					return
				}
				atomic.AddInt64(&sent, 1)
			}(sub)
		}
		wg.Wait()

		if end < len(subs) && s.cfg.BatchDelay > 0 {
			select {
			case <-time.After(s.cfg.BatchDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	result := &models.CampaignResult{
		Recipients: len(subs),
		Sent:       int(sent),
		Failed:     int(failed),
	}

	s.logger.Info("campaign finished",
		slog.Int("recipients", result.Recipients),
		slog.Int("sent", result.Sent),
		slog.Int("failed", result.Failed))
	return result, nil
}

func personalize(body, firstName string) string {
	name := firstName
	if name == "" {
		name = "there"
	}
	return strings.ReplaceAll(body, "{{firstName}}", name)
}
