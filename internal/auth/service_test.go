package auth

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/config"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/logging"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/user"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]{64}$`)

type fakeUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[string]*user.User // keyed by email
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*user.User)}
}

func (f *fakeUserStore) Create(_ context.Context, name, email, passwordHash, teamName string, _ int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.users[email]; ok {
		return nil, user.ErrDuplicateEmail
	}

	f.nextID++
	u := &user.User{
		ID:            f.nextID,
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		TeamName:      teamName,
		EmailVerified: true,
		CreatedAt:     time.Now(),
	}
	f.users[email] = u
	return u, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[email]
	if !ok {
		return nil, user.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id int64) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserStore) GetByVerificationToken(_ context.Context, token string) (*user.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.EmailVerificationToken != nil && *u.EmailVerificationToken == token {
			copied := *u
			return &copied, nil
		}
	}
	return nil, user.ErrNotFound
}

func (f *fakeUserStore) MarkEmailAsVerified(_ context.Context, userID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID == userID {
			u.EmailVerified = true
			u.EmailVerificationExpiresAt = nil
			return nil
		}
	}
	return user.ErrNotFound
}

func (f *fakeUserStore) UpdateVerificationToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.ID == userID && !u.EmailVerified {
			u.EmailVerificationToken = &token
			u.EmailVerificationExpiresAt = &expiresAt
			return nil
		}
	}
	return user.ErrNotFound
}

func (f *fakeUserStore) setUnverified(email string, token string, expiresAt *time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := f.users[email]
	u.EmailVerified = false
	u.EmailVerificationToken = &token
	u.EmailVerificationExpiresAt = expiresAt
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*Session)}
}

func (f *fakeSessionStore) Create(_ context.Context, session *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeSessionStore) GetByID(_ context.Context, id string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	s, ok := f.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionStore) Touch(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if s, ok := f.sessions[id]; ok {
		s.LastActivity = time.Now()
	}
	return nil
}

func (f *fakeSessionStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions, id)
	return nil
}

// fakeResetStore updates the user store's password hash on Consume, like the
// real store's transaction does.
type fakeResetStore struct {
	mu     sync.Mutex
	tokens map[string]*PasswordReset
	users  *fakeUserStore
}

func newFakeResetStore(users *fakeUserStore) *fakeResetStore {
	return &fakeResetStore{tokens: make(map[string]*PasswordReset), users: users}
}

func (f *fakeResetStore) Replace(_ context.Context, email, token string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for t, reset := range f.tokens {
		if reset.Email == email {
			delete(f.tokens, t)
		}
	}
	f.tokens[token] = &PasswordReset{Email: email, Token: token, ExpiresAt: expiresAt, CreatedAt: time.Now()}
	return nil
}

func (f *fakeResetStore) GetByToken(_ context.Context, token string) (*PasswordReset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	reset, ok := f.tokens[token]
	if !ok {
		return nil, ErrResetTokenNotFound
	}
	copied := *reset
	return &copied, nil
}

func (f *fakeResetStore) Consume(_ context.Context, token, email, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.tokens[token]; !ok {
		return ErrResetTokenNotFound
	}
	delete(f.tokens, token)

	f.users.mu.Lock()
	defer f.users.mu.Unlock()
	if u, ok := f.users.users[email]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

type fakeEmailSender struct {
	verifications chan string
	resets        chan string
}

func newFakeEmailSender() *fakeEmailSender {
	return &fakeEmailSender{
		verifications: make(chan string, 8),
		resets:        make(chan string, 8),
	}
}

func (f *fakeEmailSender) SendVerificationEmail(_ context.Context, toEmail, _ string) error {
	f.verifications <- toEmail
	return nil
}

func (f *fakeEmailSender) SendPasswordResetEmail(_ context.Context, toEmail, _ string) error {
	f.resets <- toEmail
	return nil
}

type testEnv struct {
	service  *Service
	users    *fakeUserStore
	sessions *fakeSessionStore
	resets   *fakeResetStore
	emails   *fakeEmailSender
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := newFakeUserStore()
	sessions := newFakeSessionStore()
	resets := newFakeResetStore(users)
	emails := newFakeEmailSender()
	teams := &config.TeamConfig{Codes: config.DefaultTeamCodes}

	return &testEnv{
		service:  NewService(users, sessions, resets, emails, teams, logging.NewLogger(true)),
		users:    users,
		sessions: sessions,
		resets:   resets,
		emails:   emails,
	}
}

func (e *testEnv) register(t *testing.T) *user.User {
	t.Helper()

	u, err := e.service.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		TeamName: "A",
		Password: "password123",
	})
	require.NoError(t, err)
	return u
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()

	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for email")
		return ""
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	u := env.register(t)
	assert.Equal(t, "Alice", u.Name)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "A", u.TeamName)
	assert.True(t, u.EmailVerified)

	// The stored hash is never the plaintext and round-trips through verify.
	stored, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "password123", stored.PasswordHash)
	assert.True(t, verifyPassword(stored.PasswordHash, "password123"))
	assert.False(t, verifyPassword(stored.PasswordHash, "password124"))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	_, err := env.service.Register(context.Background(), RegisterInput{
		Name:     "Other Alice",
		Email:    "alice@example.com",
		TeamName: "B",
		Password: "differentpass",
	})
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestRegisterUnknownTeam(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.Register(context.Background(), RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		TeamName: "Z",
		Password: "password123",
	})
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	u, session, err := env.service.Login(context.Background(), "alice@example.com", "password123", "10.0.0.1", "test-agent")
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Regexp(t, hexToken, session.ID)
	assert.Equal(t, u.ID, session.UserID)
	require.NotNil(t, session.IPAddress)
	assert.Equal(t, "10.0.0.1", *session.IPAddress)

	// Two logins never share a session id.
	_, second, err := env.service.Login(context.Background(), "alice@example.com", "password123", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, session.ID, second.ID)
	assert.Nil(t, second.IPAddress)
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	// An unknown account and a wrong password fail identically.
	_, _, errUnknown := env.service.Login(context.Background(), "nobody@example.com", "password123", "", "")
	_, _, errWrongPass := env.service.Login(context.Background(), "alice@example.com", "wrongpassword", "", "")

	assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	assert.Equal(t, errUnknown, errWrongPass)
}

func TestCheckSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	_, session, err := env.service.Login(context.Background(), "alice@example.com", "password123", "", "")
	require.NoError(t, err)

	u, err := env.service.CheckSession(context.Background(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	require.NoError(t, env.service.Logout(context.Background(), session.ID))

	// A logged-out session never validates again.
	_, err = env.service.CheckSession(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Logout is idempotent.
	assert.NoError(t, env.service.Logout(context.Background(), session.ID))
	assert.NoError(t, env.service.Logout(context.Background(), ""))
}

func TestCheckSessionUnknown(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.service.CheckSession(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCheckSessionOrphaned(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	_, session, err := env.service.Login(context.Background(), "alice@example.com", "password123", "", "")
	require.NoError(t, err)

	// Account removed out from under the session.
	env.users.mu.Lock()
	delete(env.users.users, "alice@example.com")
	env.users.mu.Unlock()

	_, err = env.service.CheckSession(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// The orphaned session was dropped from the store.
	_, err = env.sessions.GetByID(context.Background(), session.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestVerifyEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	expires := time.Now().Add(24 * time.Hour)
	env.users.setUnverified("alice@example.com", "sometoken", &expires)

	require.NoError(t, env.service.VerifyEmail(context.Background(), "sometoken"))

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.True(t, u.EmailVerified)

	// Replaying the same token reports already-verified, not unknown.
	err = env.service.VerifyEmail(context.Background(), "sometoken")
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestVerifyEmailUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.service.VerifyEmail(context.Background(), "nosuchtoken")
	assert.ErrorIs(t, err, ErrInvalidVerificationToken)
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	expires := time.Now().Add(-time.Minute)
	env.users.setUnverified("alice@example.com", "staletoken", &expires)

	err := env.service.VerifyEmail(context.Background(), "staletoken")
	assert.ErrorIs(t, err, ErrVerificationTokenExpired)

	// The flag stays down after a failed attempt.
	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.False(t, u.EmailVerified)
}

func TestResendVerification(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	env.users.setUnverified("alice@example.com", "oldtoken", nil)

	require.NoError(t, env.service.ResendVerification(context.Background(), "alice@example.com"))
	assert.Equal(t, "alice@example.com", waitFor(t, env.emails.verifications))

	u, err := env.users.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, u.EmailVerificationToken)
	assert.Regexp(t, hexToken, *u.EmailVerificationToken)
	require.NotNil(t, u.EmailVerificationExpiresAt)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), *u.EmailVerificationExpiresAt, time.Minute)
}

func TestResendVerificationErrors(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	err := env.service.ResendVerification(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrNotFound)

	// Registered accounts are already verified.
	err = env.service.ResendVerification(context.Background(), "alice@example.com")
	assert.ErrorIs(t, err, ErrEmailAlreadyVerified)
}

func TestForgotPasswordIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	// Known and unknown addresses both succeed silently.
	assert.NoError(t, env.service.ForgotPassword(context.Background(), "alice@example.com"))
	assert.NoError(t, env.service.ForgotPassword(context.Background(), "nobody@example.com"))

	assert.Equal(t, "alice@example.com", waitFor(t, env.emails.resets))

	// Only the known address got a token.
	env.resets.mu.Lock()
	defer env.resets.mu.Unlock()
	require.Len(t, env.resets.tokens, 1)
	for token, reset := range env.resets.tokens {
		assert.Regexp(t, hexToken, token)
		assert.Equal(t, "alice@example.com", reset.Email)
		assert.WithinDuration(t, time.Now().Add(time.Hour), reset.ExpiresAt, time.Minute)
	}
}

func TestForgotPasswordReplacesPriorToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	require.NoError(t, env.service.ForgotPassword(context.Background(), "alice@example.com"))
	waitFor(t, env.emails.resets)
	first := env.currentResetToken(t)

	require.NoError(t, env.service.ForgotPassword(context.Background(), "alice@example.com"))
	waitFor(t, env.emails.resets)
	second := env.currentResetToken(t)

	assert.NotEqual(t, first, second)

	// The replaced token is dead.
	err := env.service.ResetPassword(context.Background(), first, "newpassword1")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestResetPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	require.NoError(t, env.service.ForgotPassword(context.Background(), "alice@example.com"))
	waitFor(t, env.emails.resets)
	token := env.currentResetToken(t)

	require.NoError(t, env.service.ResetPassword(context.Background(), token, "newpassword1"))

	// Old password out, new password in.
	_, _, err := env.service.Login(context.Background(), "alice@example.com", "password123", "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = env.service.Login(context.Background(), "alice@example.com", "newpassword1", "", "")
	assert.NoError(t, err)

	// Tokens are single-use.
	err = env.service.ResetPassword(context.Background(), token, "anotherpassword")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestResetPasswordUnknownToken(t *testing.T) {
	env := newTestEnv(t)

	err := env.service.ResetPassword(context.Background(), "nosuchtoken", "newpassword1")
	assert.ErrorIs(t, err, ErrResetTokenNotFound)
}

func TestResetPasswordExpiredToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t)

	require.NoError(t, env.resets.Replace(context.Background(), "alice@example.com", "staletoken", time.Now().Add(-time.Minute)))

	err := env.service.ResetPassword(context.Background(), "staletoken", "newpassword1")
	assert.ErrorIs(t, err, ErrResetTokenExpired)

	// The old password still works after a failed reset.
	_, _, err = env.service.Login(context.Background(), "alice@example.com", "password123", "", "")
	assert.NoError(t, err)
}

func (e *testEnv) currentResetToken(t *testing.T) string {
	t.Helper()

	e.resets.mu.Lock()
	defer e.resets.mu.Unlock()
	require.Len(t, e.resets.tokens, 1)
	for token := range e.resets.tokens {
		return token
	}
	return ""
}
