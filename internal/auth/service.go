package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/config"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/user"
)

const (
	verificationTokenTTL = 24 * time.Hour
	resetTokenTTL        = 1 * time.Hour
)

// Service handles authentication business logic
type Service struct {
	users        UserStore
	sessions     SessionStore
	resets       PasswordResetStore
	emailService EmailSender
	teams        *config.TeamConfig
	logger       *logging.Logger
}

func NewService(
	users UserStore,
	sessions SessionStore,
	resets PasswordResetStore,
	emailService EmailSender,
	teams *config.TeamConfig,
	logger *logging.Logger,
) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		resets:       resets,
		emailService: emailService,
		teams:        teams,
		logger:       logger,
	}
}

// RegisterInput carries the already-validated registration fields.
type RegisterInput struct {
	Name     string
	Email    string
	TeamName string
	Password string
}

// Register creates a new user account together with its team membership.
// Accounts come out email-verified; the verification token flow only runs on
// an explicit resend. The email pre-check here is advisory, the unique
// constraint in the store settles races.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	teamID, ok := s.teams.TeamID(in.TeamName)
	if !ok {
		return nil, ErrUnknownTeam
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		return nil, user.ErrDuplicateEmail
	} else if !errors.Is(err, user.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	passwordHash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	newUser, err := s.users.Create(ctx, in.Name, in.Email, passwordHash, in.TeamName, teamID)
	if err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, user.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return newUser, nil
}

// Login authenticates a user and opens a new session. A missing user and a
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password, ipAddress, userAgent string) (*user.User, *Session, error) {
	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !verifyPassword(existingUser.PasswordHash, password) {
		return nil, nil, ErrInvalidCredentials
	}

	sessionID, err := generateToken()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:           sessionID,
		UserID:       existingUser.ID,
		IPAddress:    optional(ipAddress),
		UserAgent:    optional(userAgent),
		LastActivity: now,
		CreatedAt:    now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("failed to store session: %w", err)
	}

	return existingUser, session, nil
}

// Logout deletes the session record. Logging out with no session, or with a
// session already gone, still succeeds.
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.sessions.Delete(ctx, sessionID)
}

// CheckSession re-validates a session id against the store and refreshes its
// last-activity timestamp. A deleted session never comes back: a miss returns
// ErrSessionNotFound and the caller tears down its context.
func (s *Service) CheckSession(ctx context.Context, sessionID string) (*user.User, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	existingUser, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Orphaned session, owner is gone. Drop it.
			if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil {
				s.logger.Warn("failed to delete orphaned session", "error", delErr.Error())
			}
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if err := s.sessions.Touch(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("failed to touch session: %w", err)
	}

	return existingUser, nil
}

// VerifyEmail verifies a user's email using the verification token
func (s *Service) VerifyEmail(ctx context.Context, token string) error {
	existingUser, err := s.users.GetByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return ErrInvalidVerificationToken
		}
		return fmt.Errorf("failed to find user by token: %w", err)
	}

	if existingUser.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	if existingUser.EmailVerificationExpiresAt == nil ||
		time.Now().After(*existingUser.EmailVerificationExpiresAt) {
		return ErrVerificationTokenExpired
	}

	if err := s.users.MarkEmailAsVerified(ctx, existingUser.ID); err != nil {
		return fmt.Errorf("failed to verify email: %w", err)
	}

	return nil
}

// ResendVerification issues a fresh 24-hour verification token and mails the
// link. Mail dispatch is best-effort; a send failure does not roll the token
// back.
func (s *Service) ResendVerification(ctx context.Context, email string) error {
	existingUser, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return user.ErrNotFound
		}
		return fmt.Errorf("failed to get user: %w", err)
	}

	if existingUser.EmailVerified {
		return ErrEmailAlreadyVerified
	}

	token, err := generateToken()
	if err != nil {
		return fmt.Errorf("failed to generate verification token: %w", err)
	}

	expiresAt := time.Now().Add(verificationTokenTTL)
	if err := s.users.UpdateVerificationToken(ctx, existingUser.ID, token, expiresAt); err != nil {
		return fmt.Errorf("failed to update verification token: %w", err)
	}

	go func() {
		// Fresh context, the request's may be cancelled before the send.
		emailCtx := context.Background()
		if err := s.emailService.SendVerificationEmail(emailCtx, email, token); err != nil {
			s.logger.Warn("failed to send verification email", "email", email, "error", err.Error())
		}
	}()

	return nil
}

// ForgotPassword initiates the password reset process
// Always returns nil to prevent email enumeration attacks
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		// Don't reveal if user exists
		if !errors.Is(err, user.ErrNotFound) {
			s.logger.Warn("failed to get user for password reset", "error", err.Error())
		}
		return nil
	}

	token, err := generateToken()
	if err != nil {
		s.logger.Warn("failed to generate password reset token", "error", err.Error())
		return nil
	}

	expiresAt := time.Now().Add(resetTokenTTL)
	if err := s.resets.Replace(ctx, email, token, expiresAt); err != nil {
		s.logger.Warn("failed to store password reset token", "error", err.Error())
		return nil
	}

	go func() {
		emailCtx := context.Background()
		if err := s.emailService.SendPasswordResetEmail(emailCtx, email, token); err != nil {
			s.logger.Warn("failed to send password reset email", "email", email, "error", err.Error())
		}
	}()

	return nil
}

// ResetPassword sets a new password for the account matched by the token's
// email, then burns the token. Password update and token delete travel in one
// transaction, so a token never survives a successful reset.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	reset, err := s.resets.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return ErrResetTokenNotFound
		}
		return fmt.Errorf("failed to get reset token: %w", err)
	}

	if reset.Expired(time.Now()) {
		return ErrResetTokenExpired
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.resets.Consume(ctx, token, reset.Email, passwordHash); err != nil {
		if errors.Is(err, ErrResetTokenNotFound) {
			return ErrResetTokenNotFound
		}
		return fmt.Errorf("failed to consume reset token: %w", err)
	}

	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
