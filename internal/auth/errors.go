package auth

import "errors"

var (
	ErrInvalidCredentials       = errors.New("invalid email or password")
	ErrSessionNotFound          = errors.New("session not found")
	ErrInvalidVerificationToken = errors.New("invalid verification token")
	ErrVerificationTokenExpired = errors.New("verification token has expired")
	ErrEmailAlreadyVerified     = errors.New("email already verified")
	ErrResetTokenNotFound       = errors.New("invalid reset token")
	ErrResetTokenExpired        = errors.New("reset token has expired")
	ErrUnknownTeam              = errors.New("unknown team")
)
