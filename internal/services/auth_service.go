package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gymverse/gymverse/internal/auth"
	"github.com/gymverse/gymverse/internal/config"
	"github.com/gymverse/gymverse/internal/models"
	pkgauth "github.com/gymverse/gymverse/pkg/auth"
	pkglogger "github.com/gymverse/gymverse/pkg/logger"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, limit, offset int) ([]*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, id string, user *models.User) (*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLoginAttempts(ctx context.Context, id string, attempts int, lockUntil *time.Time) error
	ResetLoginAttempts(ctx context.Context, id string) error
	SetActive(ctx context.Context, id string, active bool) error
	SetRole(ctx context.Context, id string, role models.Role) error
	Delete(ctx context.Context, id string) error
}

// AuthService handles authentication business logic: credential checks, the
// login lockout state machine, and session token issuance.
type AuthService struct {
	repo        UserRepository
	tm          *auth.TokenManager
	cfg         config.AuthConfig
	email       EmailSender
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger

	// now is the clock; injectable so lockout windows are testable.
	now func() time.Time
}

// NewAuthService creates a new AuthService. email may be nil to disable
// welcome emails.
func NewAuthService(repo UserRepository, tm *auth.TokenManager, cfg config.AuthConfig, email EmailSender, logger *slog.Logger, auditLogger *pkglogger.AuditLogger) *AuthService {
	return &AuthService{
		repo:        repo,
		tm:          tm,
		cfg:         cfg,
		email:       email,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	Bio           string `json:"bio,omitempty"`
	Phone         string `json:"phone,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
	CreatedAt     string `json:"createdAt"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// Login authenticates a user and returns a session token.
//
// Failed password attempts increment a per-account counter; once the counter
// reaches the configured threshold the account locks for the configured
// duration. Locks expire lazily: nothing clears them in the background, the
// next login attempt observes the expired timestamp and treats the account
// as unlocked. A stale (expired) lock restarts the counter at 1 on failure
// rather than continuing the old count.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if email = strings.ToLower(strings.TrimSpace(email)); email == "" {
		return nil, models.ErrInvalidCredentials
	}

	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			// Same error as a wrong password so callers cannot probe
			// which emails have accounts.
			s.logger.Info("login failed: invalid credentials")
			s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
				EventType:     "login_failed",
				FailureReason: "unknown_email",
				Success:       false,
			})
			return nil, models.ErrInvalidCredentials
		}
		s.logger.Error("failed to get user by email", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if !user.IsActive {
		s.logger.Info("login blocked: account deactivated", slog.String("user_id", user.ID))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "account_deactivated",
			Success:       false,
		})
		return nil, models.ErrAccountDeactivated
	}

	now := s.now()

	if user.IsLocked(now) {
		s.logger.Info("login blocked: account locked",
			slog.String("user_id", user.ID),
			slog.Time("lock_until", *user.LockUntil))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "account_locked",
			Success:       false,
		})
		return nil, &models.AccountLockedError{Until: *user.LockUntil}
	}

	// A lock timestamp that exists but lies in the past is stale: the
	// previous lock expired without anyone clearing it.
	staleLock := user.LockUntil != nil

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		attempts := user.LoginAttempts + 1
		var lockUntil *time.Time

		if staleLock {
			// Expired lock: this failure starts a fresh count.
			attempts = 1
		} else if attempts >= s.cfg.LockoutThreshold {
			until := now.Add(s.cfg.LockoutDuration)
			lockUntil = &until
		}

		if err := s.repo.UpdateLoginAttempts(ctx, user.ID, attempts, lockUntil); err != nil {
			s.logger.Error("failed to record login attempt",
				slog.String("user_id", user.ID), slog.Any("error", err))
		}

		s.logger.Info("login failed: invalid credentials",
			slog.String("user_id", user.ID),
			slog.Int("attempts", attempts))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_failed",
			UserID:        user.ID,
			FailureReason: "wrong_password",
			Success:       false,
			Metadata:      map[string]string{"attempts": fmt.Sprintf("%d", attempts)},
		})
		return nil, models.ErrInvalidCredentials
	}

	// Successful authentication clears any counter or stale lock.
	if err := s.repo.ResetLoginAttempts(ctx, user.ID); err != nil {
		s.logger.Error("failed to reset login attempts",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}

	token, err := s.tm.Generate(user.ID)
	if err != nil {
		s.logger.Error("failed to generate session token",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		Success:   true,
	})

	return &AuthResponse{
		Token: token,
		User:  userModelToResponse(user),
	}, nil
}

// RegisterInput carries the fields accepted at sign-up.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	Bio      string
	Phone    string
}

// Register creates a new user account and signs it in.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	name := strings.TrimSpace(input.Name)

	if email == "" {
		return nil, fmt.Errorf("email is required: %w", models.ErrBadRequest)
	}
	if name == "" {
		return nil, fmt.Errorf("name is required: %w", models.ErrBadRequest)
	}
	if err := pkgauth.ValidatePassword(input.Password); err != nil {
		return nil, fmt.Errorf("%v: %w", err, models.ErrBadRequest)
	}

	role := models.RoleUser
	if input.Role != "" {
		parsed, err := models.ParseRole(input.Role)
		if err != nil {
			return nil, fmt.Errorf("invalid role: %w", models.ErrBadRequest)
		}
		// Nobody signs up as admin; admins are promoted, not self-declared.
		if parsed == models.RoleAdmin {
			parsed = models.RoleUser
		}
		role = parsed
	}

	_, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		s.logger.Info("registration failed: user already exists")
		return nil, models.ErrConflict
	}
	if !errors.Is(err, models.ErrNotFound) {
		s.logger.Error("failed to check if user exists", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	hashedPassword, err := pkgauth.HashPassword(input.Password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         role,
		Bio:          strings.TrimSpace(input.Bio),
		Phone:        strings.TrimSpace(input.Phone),
		IsActive:     true,
	}

	createdUser, err := s.repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	token, err := s.tm.Generate(createdUser.ID)
	if err != nil {
		s.logger.Error("failed to generate session token",
			slog.String("user_id", createdUser.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user registered",
		slog.String("user_id", createdUser.ID),
		slog.String("email", pkglogger.SanitizedEmail(createdUser.Email)))
	s.auditLogger.LogAccountAction("user_registered", createdUser.ID, "", nil)

	if s.email != nil {
		// Welcome email is best effort and must not block sign-up.
		go func(name, email string) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := s.email.SendWelcomeEmail(ctx, email, name); err != nil {
				s.logger.Warn("failed to send welcome email", slog.Any("error", err))
			}
		}(createdUser.Name, createdUser.Email)
	}

	return &AuthResponse{
		Token: token,
		User:  userModelToResponse(createdUser),
	}, nil
}

// ChangePassword verifies the current password and stores a new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := pkgauth.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("%v: %w", err, models.ErrBadRequest)
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		s.logger.Error("failed to get user", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, currentPassword); err != nil {
		s.auditLogger.LogPasswordChange(userID, "", false)
		return models.ErrInvalidCredentials
	}

	hashedPassword, err := pkgauth.HashPassword(newPassword)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return models.ErrInternalServer
	}

	if err := s.repo.UpdatePassword(ctx, userID, hashedPassword); err != nil {
		s.logger.Error("failed to update password", slog.String("user_id", userID), slog.Any("error", err))
		return models.ErrInternalServer
	}

	s.auditLogger.LogPasswordChange(userID, "", true)
	return nil
}

func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role.String(),
		Bio:           user.Bio,
		Phone:         user.Phone,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt.Format(time.RFC3339),
	}
}
