package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandp/medstock/pkg/session"
	"github.com/sandp/medstock/pkg/tokens"
)

var secret = []byte("test-jwt-secret")

type stubResolver map[uuid.UUID]session.Session

func (s stubResolver) ResolveSession(_ context.Context, id uuid.UUID) (session.Session, error) {
	sess, ok := s[id]
	if !ok {
		return session.Session{}, errors.New("blocked or missing")
	}
	return sess, nil
}

func run(t *testing.T, mw echo.MiddlewareFunc, cookie string) (*httptest.ResponseRecorder, *session.Session, error) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: tokens.CookieName, Value: cookie})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got *session.Session
	err := mw(func(c echo.Context) error {
		s, ok := session.FromContext(c.Request().Context())
		require.True(t, ok)
		got = &s
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, got, err
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	require.True(t, errors.As(err, &he), "expected echo.HTTPError, got %v", err)
	return he.Code
}

func TestRequireAuth(t *testing.T) {
	userID := uuid.New()
	blockedID := uuid.New()

	// the token says ADMIN but the store says USER: the store wins
	resolver := stubResolver{userID: {UserID: userID, Role: session.RoleUser}}
	m := NewSessionMiddleware(secret, resolver, false)

	staleAdmin, _, err := tokens.SignSession(userID, session.RoleAdmin, secret, time.Now())
	require.NoError(t, err)
	blocked, _, err := tokens.SignSession(blockedID, session.RoleUser, secret, time.Now())
	require.NoError(t, err)

	t.Run("missing cookie", func(t *testing.T) {
		_, _, err := run(t, m.RequireAuth, "")
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("garbage cookie", func(t *testing.T) {
		rec, _, err := run(t, m.RequireAuth, "garbage")
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
		assert.Contains(t, rec.Header().Get("Set-Cookie"), tokens.CookieName+"=;")
	})

	t.Run("blocked user", func(t *testing.T) {
		_, _, err := run(t, m.RequireAuth, blocked)
		assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
	})

	t.Run("role re-derived from store", func(t *testing.T) {
		rec, got, err := run(t, m.RequireAuth, staleAdmin)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, got)
		assert.Equal(t, session.RoleUser, got.Role)
		assert.Equal(t, userID, got.UserID)
	})

	t.Run("admin route refuses re-derived user", func(t *testing.T) {
		_, _, err := run(t, m.RequireAdmin, staleAdmin)
		assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	})
}

func TestRequireAdmin_Allows(t *testing.T) {
	adminID := uuid.New()
	m := NewSessionMiddleware(secret, stubResolver{adminID: {UserID: adminID, Role: session.RoleAdmin}}, false)

	token, _, err := tokens.SignSession(adminID, session.RoleAdmin, secret, time.Now())
	require.NoError(t, err)

	rec, got, err := run(t, m.RequireAdmin, token)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, got.IsAdmin())
}
