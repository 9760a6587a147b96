package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/gymverse/gymverse/internal/models"
	pkgauth "github.com/gymverse/gymverse/pkg/auth"
	pkglogger "github.com/gymverse/gymverse/pkg/logger"
)

// MockUserRepository implements UserRepository for testing
type MockUserRepository struct {
	GetByIDFunc             func(ctx context.Context, id string) (*models.User, error)
	GetByEmailFunc          func(ctx context.Context, email string) (*models.User, error)
	ListFunc                func(ctx context.Context, limit, offset int) ([]*models.User, error)
	CreateFunc              func(ctx context.Context, user *models.User) (*models.User, error)
	UpdateFunc              func(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePasswordFunc      func(ctx context.Context, id, passwordHash string) error
	UpdateLoginAttemptsFunc func(ctx context.Context, id string, attempts int, lockUntil *time.Time) error
	ResetLoginAttemptsFunc  func(ctx context.Context, id string) error
	SetActiveFunc           func(ctx context.Context, id string, active bool) error
	SetRoleFunc             func(ctx context.Context, id string, role models.Role) error
	DeleteFunc              func(ctx context.Context, id string) error
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]*models.User, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return []*models.User{}, nil
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) Update(ctx context.Context, id string, user *models.User) (*models.User, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, user)
	}
	return nil, models.ErrInternalServer
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	if m.UpdatePasswordFunc != nil {
		return m.UpdatePasswordFunc(ctx, id, passwordHash)
	}
	return nil
}

func (m *MockUserRepository) UpdateLoginAttempts(ctx context.Context, id string, attempts int, lockUntil *time.Time) error {
	if m.UpdateLoginAttemptsFunc != nil {
		return m.UpdateLoginAttemptsFunc(ctx, id, attempts, lockUntil)
	}
	return nil
}

func (m *MockUserRepository) ResetLoginAttempts(ctx context.Context, id string) error {
	if m.ResetLoginAttemptsFunc != nil {
		return m.ResetLoginAttemptsFunc(ctx, id)
	}
	return nil
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string, active bool) error {
	if m.SetActiveFunc != nil {
		return m.SetActiveFunc(ctx, id, active)
	}
	return nil
}

func (m *MockUserRepository) SetRole(ctx context.Context, id string, role models.Role) error {
	if m.SetRoleFunc != nil {
		return m.SetRoleFunc(ctx, id, role)
	}
	return nil
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

// MockReferralRepository implements ReferralRepository for testing
type MockReferralRepository struct {
	CreateFunc                 func(ctx context.Context, ref *models.Referral) (*models.Referral, error)
	GetByCodeFunc              func(ctx context.Context, code string) (*models.Referral, error)
	CodeExistsFunc             func(ctx context.Context, code string) (bool, error)
	HasCompletedByReferredFunc func(ctx context.Context, referredID string) (bool, error)
	ListByReferrerFunc         func(ctx context.Context, referrerID string) ([]*models.Referral, error)
	CompleteFunc               func(ctx context.Context, id, referredID string) (*models.Referral, error)
	MarkExpiredFunc            func(ctx context.Context, id string) error
	StatsByReferrerFunc        func(ctx context.Context, referrerID string) (*models.ReferralStats, error)
}

func (m *MockReferralRepository) Create(ctx context.Context, ref *models.Referral) (*models.Referral, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ref)
	}
	ref.ID = "ref_123"
	ref.CreatedAt = time.Now()
	return ref, nil
}

func (m *MockReferralRepository) GetByCode(ctx context.Context, code string) (*models.Referral, error) {
	if m.GetByCodeFunc != nil {
		return m.GetByCodeFunc(ctx, code)
	}
	return nil, models.ErrNotFound
}

func (m *MockReferralRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	if m.CodeExistsFunc != nil {
		return m.CodeExistsFunc(ctx, code)
	}
	return false, nil
}

func (m *MockReferralRepository) HasCompletedByReferred(ctx context.Context, referredID string) (bool, error) {
	if m.HasCompletedByReferredFunc != nil {
		return m.HasCompletedByReferredFunc(ctx, referredID)
	}
	return false, nil
}

func (m *MockReferralRepository) ListByReferrer(ctx context.Context, referrerID string) ([]*models.Referral, error) {
	if m.ListByReferrerFunc != nil {
		return m.ListByReferrerFunc(ctx, referrerID)
	}
	return []*models.Referral{}, nil
}

func (m *MockReferralRepository) Complete(ctx context.Context, id, referredID string) (*models.Referral, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, id, referredID)
	}
	now := time.Now()
	return &models.Referral{
		ID:          id,
		ReferredID:  &referredID,
		Status:      models.ReferralStatusCompleted,
		CompletedAt: &now,
	}, nil
}

func (m *MockReferralRepository) MarkExpired(ctx context.Context, id string) error {
	if m.MarkExpiredFunc != nil {
		return m.MarkExpiredFunc(ctx, id)
	}
	return nil
}

func (m *MockReferralRepository) StatsByReferrer(ctx context.Context, referrerID string) (*models.ReferralStats, error) {
	if m.StatsByReferrerFunc != nil {
		return m.StatsByReferrerFunc(ctx, referrerID)
	}
	return &models.ReferralStats{}, nil
}

// MockNewsletterRepository implements NewsletterRepository for testing
type MockNewsletterRepository struct {
	GetByEmailFunc     func(ctx context.Context, email string) (*models.NewsletterSubscriber, error)
	CreateFunc         func(ctx context.Context, sub *models.NewsletterSubscriber) (*models.NewsletterSubscriber, error)
	ResubscribeFunc    func(ctx context.Context, email, firstName, lastName, frequency string, categories []string) (*models.NewsletterSubscriber, error)
	UnsubscribeFunc    func(ctx context.Context, email string) error
	ListSubscribedFunc func(ctx context.Context) ([]*models.NewsletterSubscriber, error)
	StatsFunc          func(ctx context.Context) (*models.NewsletterStats, error)
}

func (m *MockNewsletterRepository) GetByEmail(ctx context.Context, email string) (*models.NewsletterSubscriber, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockNewsletterRepository) Create(ctx context.Context, sub *models.NewsletterSubscriber) (*models.NewsletterSubscriber, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, sub)
	}
	sub.ID = "sub_123"
	sub.SubscribedAt = time.Now()
	return sub, nil
}

func (m *MockNewsletterRepository) Resubscribe(ctx context.Context, email, firstName, lastName, frequency string, categories []string) (*models.NewsletterSubscriber, error) {
	if m.ResubscribeFunc != nil {
		return m.ResubscribeFunc(ctx, email, firstName, lastName, frequency, categories)
	}
	return &models.NewsletterSubscriber{
		Email:  email,
		Status: models.SubscriberStatusSubscribed,
	}, nil
}

func (m *MockNewsletterRepository) Unsubscribe(ctx context.Context, email string) error {
	if m.UnsubscribeFunc != nil {
		return m.UnsubscribeFunc(ctx, email)
	}
	return nil
}

func (m *MockNewsletterRepository) ListSubscribed(ctx context.Context) ([]*models.NewsletterSubscriber, error) {
	if m.ListSubscribedFunc != nil {
		return m.ListSubscribedFunc(ctx)
	}
	return []*models.NewsletterSubscriber{}, nil
}

func (m *MockNewsletterRepository) Stats(ctx context.Context) (*models.NewsletterStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx)
	}
	return &models.NewsletterStats{}, nil
}

// MockProgramRepository implements ProgramRepository for testing
type MockProgramRepository struct {
	GetByIDFunc        func(ctx context.Context, id string) (*models.Program, error)
	ListPublishedFunc  func(ctx context.Context, limit, offset int) ([]*models.Program, error)
	ListByTrainerFunc  func(ctx context.Context, trainerID string) ([]*models.Program, error)
	CreateFunc         func(ctx context.Context, program *models.Program) (*models.Program, error)
	UpdateFunc         func(ctx context.Context, id string, program *models.Program) (*models.Program, error)
	DeleteFunc         func(ctx context.Context, id string) error
	AddFavoriteFunc    func(ctx context.Context, userID, programID string) error
	RemoveFavoriteFunc func(ctx context.Context, userID, programID string) error
	FavoriteIDsFunc    func(ctx context.Context, userID string) (map[string]bool, error)
}

func (m *MockProgramRepository) GetByID(ctx context.Context, id string) (*models.Program, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProgramRepository) ListPublished(ctx context.Context, limit, offset int) ([]*models.Program, error) {
	if m.ListPublishedFunc != nil {
		return m.ListPublishedFunc(ctx, limit, offset)
	}
	return []*models.Program{}, nil
}

func (m *MockProgramRepository) ListByTrainer(ctx context.Context, trainerID string) ([]*models.Program, error) {
	if m.ListByTrainerFunc != nil {
		return m.ListByTrainerFunc(ctx, trainerID)
	}
	return []*models.Program{}, nil
}

func (m *MockProgramRepository) Create(ctx context.Context, program *models.Program) (*models.Program, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, program)
	}
	program.ID = "prog_123"
	return program, nil
}

func (m *MockProgramRepository) Update(ctx context.Context, id string, program *models.Program) (*models.Program, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, id, program)
	}
	return program, nil
}

func (m *MockProgramRepository) Delete(ctx context.Context, id string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, id)
	}
	return nil
}

func (m *MockProgramRepository) AddFavorite(ctx context.Context, userID, programID string) error {
	if m.AddFavoriteFunc != nil {
		return m.AddFavoriteFunc(ctx, userID, programID)
	}
	return nil
}

func (m *MockProgramRepository) RemoveFavorite(ctx context.Context, userID, programID string) error {
	if m.RemoveFavoriteFunc != nil {
		return m.RemoveFavoriteFunc(ctx, userID, programID)
	}
	return nil
}

func (m *MockProgramRepository) FavoriteIDs(ctx context.Context, userID string) (map[string]bool, error) {
	if m.FavoriteIDsFunc != nil {
		return m.FavoriteIDsFunc(ctx, userID)
	}
	return map[string]bool{}, nil
}

// MockEmailSender implements EmailSender for testing
type MockEmailSender struct {
	SendWelcomeEmailFunc             func(ctx context.Context, email, name string) error
	SendSubscriptionConfirmationFunc func(ctx context.Context, email, firstName string) error
	SendCampaignEmailFunc            func(ctx context.Context, email, subject, body string) error
}

func (m *MockEmailSender) SendWelcomeEmail(ctx context.Context, email, name string) error {
	if m.SendWelcomeEmailFunc != nil {
		return m.SendWelcomeEmailFunc(ctx, email, name)
	}
	return nil
}

func (m *MockEmailSender) SendSubscriptionConfirmation(ctx context.Context, email, firstName string) error {
	if m.SendSubscriptionConfirmationFunc != nil {
		return m.SendSubscriptionConfirmationFunc(ctx, email, firstName)
	}
	return nil
}

func (m *MockEmailSender) SendCampaignEmail(ctx context.Context, email, subject, body string) error {
	if m.SendCampaignEmailFunc != nil {
		return m.SendCampaignEmailFunc(ctx, email, subject, body)
	}
	return nil
}

// testLogger returns a logger that discards output
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testAuditLogger returns an audit logger backed by a discarding logger
func testAuditLogger() *pkglogger.AuditLogger {
	return pkglogger.NewAuditLogger(testLogger())
}

// NewTestUser builds an active member with the given password hashed.
func NewTestUser(id, email, password string) *models.User {
	hash, err := pkgauth.HashPassword(password)
	if err != nil {
		panic(err)
	}
	now := time.Now()
	return &models.User{
		ID:           id,
		Name:         "Test Member",
		Email:        email,
		PasswordHash: hash,
		Role:         models.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
