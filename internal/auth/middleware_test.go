package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loginTestUser(t *testing.T, env *testEnv) *Session {
	t.Helper()

	env.register(t)
	_, session, err := env.service.Login(context.Background(), "alice@example.com", "password123", "", "")
	require.NoError(t, err)
	return session
}

func TestWithSession(t *testing.T) {
	env := newTestEnv(t)
	session := loginTestUser(t, env)
	mw := NewMiddleware(env.service, "session_id")

	var captured *SessionContext
	handler := mw.WithSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = GetSessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("valid session populates context", func(t *testing.T) {
		captured = nil
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+session.ID)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, session.ID, captured.SessionID)
		assert.Equal(t, "alice@example.com", captured.User.Email)
	})

	t.Run("anonymous request passes through", func(t *testing.T) {
		captured = nil
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, captured)
	})

	t.Run("dead session clears cookie and passes through", func(t *testing.T) {
		captured = nil
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: "session_id", Value: "0000000000000000000000000000000000000000000000000000000000000000"})
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, captured)

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Empty(t, cookies[0].Value)
		assert.Negative(t, cookies[0].MaxAge)
	})
}

func TestRequireSession(t *testing.T) {
	env := newTestEnv(t)
	session := loginTestUser(t, env)
	mw := NewMiddleware(env.service, "session_id")

	handler := mw.WithSession(mw.RequireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	t.Run("authenticated", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+session.ID)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"authentication required"}`, rec.Body.String())
	})

	t.Run("logged out session", func(t *testing.T) {
		require.NoError(t, env.service.Logout(context.Background(), session.ID))

		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer "+session.ID)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, r)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}
