package auth

import "time"

// Session is one authenticated browser context. The id is the opaque
// identifier handed to the client and presented on subsequent requests.
type Session struct {
	ID           string    `json:"session_id"`
	UserID       int64     `json:"-"`
	IPAddress    *string   `json:"-"`
	UserAgent    *string   `json:"-"`
	LastActivity time.Time `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// PasswordReset is a pending password recovery token, keyed by email.
type PasswordReset struct {
	Email     string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the reset token's window has elapsed.
func (p *PasswordReset) Expired(now time.Time) bool {
	return now.After(p.ExpiresAt)
}
