package auth

import (
	"context"
	"time"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/user"
)

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	Create(ctx context.Context, name, email, passwordHash, teamName string, teamID int64) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	GetByID(ctx context.Context, id int64) (*user.User, error)
	GetByVerificationToken(ctx context.Context, token string) (*user.User, error)
	MarkEmailAsVerified(ctx context.Context, userID int64) error
	UpdateVerificationToken(ctx context.Context, userID int64, token string, expiresAt time.Time) error
}

// SessionStore persists login sessions.
type SessionStore interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, id string) (*Session, error)
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// PasswordResetStore persists password reset tokens.
type PasswordResetStore interface {
	Replace(ctx context.Context, email, token string, expiresAt time.Time) error
	GetByToken(ctx context.Context, token string) (*PasswordReset, error)
	Consume(ctx context.Context, token, email, passwordHash string) error
}

// EmailSender defines the interface for email operations
type EmailSender interface {
	SendVerificationEmail(ctx context.Context, toEmail, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}
