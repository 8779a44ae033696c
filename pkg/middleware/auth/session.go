package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
	"github.com/sandp/medstock/pkg/tokens"
)

// Resolver re-reads the caller from the user store so that role changes and
// blocks take effect before the cookie expires.
type Resolver interface {
	ResolveSession(ctx context.Context, userID uuid.UUID) (session.Session, error)
}

type SessionMiddleware struct {
	JWTSecret    []byte
	Resolver     Resolver
	CookieSecure bool
}

func NewSessionMiddleware(secret []byte, resolver Resolver, secure bool) *SessionMiddleware {
	return &SessionMiddleware{
		JWTSecret:    secret,
		Resolver:     resolver,
		CookieSecure: secure,
	}
}

type ValidatorFunc func(s session.Session) error

func (m *SessionMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, nil)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireWithValidator(next, func(s session.Session) error {
		if !s.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *SessionMiddleware) requireWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		l := logging.FromContext(ctx).With("middleware", "session")

		cookie, err := c.Cookie(tokens.CookieName)
		if err != nil || cookie.Value == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized - please login")
		}

		claims, err := tokens.SessionClaimsFromToken(cookie.Value, m.JWTSecret)
		if err != nil {
			l.Warn("session_rejected", "status", 401, "reason", "invalid token", "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.CookieName, "/", m.CookieSecure))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
		}

		s, err := m.Resolver.ResolveSession(ctx, uuid.MustParse(claims.UserID))
		if err != nil {
			l.Warn("session_rejected", "status", 401, "reason", "user not active", "user_id", claims.UserID, "error", err)
			c.SetCookie(tokens.DeleteCookie(tokens.CookieName, "/", m.CookieSecure))
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid session")
		}

		if validator != nil {
			if err := validator(s); err != nil {
				return err
			}
		}

		req := c.Request()
		reqCtx := session.IntoContext(req.Context(), s)
		reqCtx = logging.IntoContext(reqCtx, logging.FromContext(reqCtx).With("user_id", s.UserID.String()))
		c.SetRequest(req.WithContext(reqCtx))
		return next(c)
	}
}
