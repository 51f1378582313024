package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/taiki-yokoyama/2025winterHackathonH/internal/httputil"
	"github.com/taiki-yokoyama/2025winterHackathonH/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const sessionContextKey ContextKey = "session"

// SessionContext is the request-scoped authenticated context built by the
// middleware. Handlers read it from the request context; there is no
// process-wide session state.
type SessionContext struct {
	SessionID string
	User      *user.User
}

// Middleware resolves the session presented on a request
type Middleware struct {
	service    *Service
	cookieName string
}

func NewMiddleware(service *Service, cookieName string) *Middleware {
	return &Middleware{service: service, cookieName: cookieName}
}

// WithSession loads the presented session, if any, into the request context.
// It never rejects: routes that tolerate anonymous callers (check-session,
// logout) run behind this alone. A session id that fails validation clears
// the cookie so the browser stops presenting it.
func (m *Middleware) WithSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionID := SessionIDFromRequest(r, m.cookieName)
		if sessionID == "" {
			next.ServeHTTP(w, r)
			return
		}

		sessionUser, err := m.service.CheckSession(r.Context(), sessionID)
		if err != nil {
			if errors.Is(err, ErrSessionNotFound) {
				ClearSessionCookie(w, m.cookieName)
				next.ServeHTTP(w, r)
				return
			}
			httputil.RespondError(w, "failed to validate session", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, &SessionContext{
			SessionID: sessionID,
			User:      sessionUser,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireSession rejects requests that carry no valid session. Runs after
// WithSession.
func (m *Middleware) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionFromContext(r.Context()); !ok {
			httputil.RespondError(w, "authentication required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetSessionFromContext extracts the session context from the request context
func GetSessionFromContext(ctx context.Context) (*SessionContext, bool) {
	sc, ok := ctx.Value(sessionContextKey).(*SessionContext)
	return sc, ok
}
