package user

import "time"

// User is the domain model. The password hash and verification token never
// appear in JSON.
type User struct {
	ID                         int64      `json:"id"`
	Name                       string     `json:"name"`
	Email                      string     `json:"email"`
	PasswordHash               string     `json:"-"`
	TeamName                   string     `json:"team_name"`
	EmailVerified              bool       `json:"email_verified"`
	EmailVerificationToken     *string    `json:"-"`
	EmailVerificationExpiresAt *time.Time `json:"-"`
	CreatedAt                  time.Time  `json:"created_at"`
	UpdatedAt                  time.Time  `json:"-"`
}
