package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sandp/medstock/internal/service"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
	"github.com/sandp/medstock/pkg/tokens"
)

type UserHTTP struct {
	Svc          *service.UserService
	CookieSecure bool
}

func (h *UserHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	var req transport.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	u, token, exp, err := h.Svc.Login(ctx, req)
	if err != nil {
		return serviceError(l, "login_error", err)
	}

	c.SetCookie(tokens.CreateCookie(tokens.CookieName, token, "/", exp, h.CookieSecure))
	l.Info("login_success", "user_id", u.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"user": map[string]any{
			"id":    u.ID,
			"name":  u.Name,
			"email": u.Email,
			"role":  u.Role,
		},
	})
}

func (h *UserHTTP) Logout(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.CookieName, "/", h.CookieSecure))
	return c.NoContent(http.StatusNoContent)
}

func (h *UserHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.me")
	sess, _ := session.FromContext(ctx)

	u, err := h.Svc.Me(ctx, sess)
	if err != nil {
		return serviceError(l, "me_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"user": u})
}

func (h *UserHTTP) CreateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.create_user")
	sess, _ := session.FromContext(ctx)

	var req transport.CreateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_user_error", "invalid body", err)
	}

	created, err := h.Svc.CreateUser(ctx, sess, req)
	if err != nil {
		return serviceError(l, "create_user_error", err)
	}

	l.Info("create_user_success", "user_id", created.User.ID)
	return c.JSON(http.StatusCreated, created)
}

func (h *UserHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.list_users")
	sess, _ := session.FromContext(ctx)

	users, err := h.Svc.ListUsers(ctx, sess, c.QueryParam("search"))
	if err != nil {
		return serviceError(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"users": users})
}

func (h *UserHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user.update_user")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_user_error", "id is not a uuid", err)
	}
	var req transport.UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_user_error", "invalid body", err)
	}

	u, err := h.Svc.UpdateUser(ctx, sess, id, req)
	if err != nil {
		return serviceError(l, "update_user_error", err)
	}

	l.Info("update_user_success", "user_id", id)
	return c.JSON(http.StatusOK, map[string]any{"user": u})
}
