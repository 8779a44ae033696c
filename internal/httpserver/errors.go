package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sandp/medstock/internal/service"
)

// serviceError logs a failed call once and converts it to the HTTP error the client sees.
func serviceError(l *slog.Logger, event string, err error) error {
	var (
		fe service.FieldErrors
		se *service.StockError
	)
	switch {
	case errors.As(err, &fe):
		l.Warn(event, "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"message": "validation failed",
			"details": fe,
		})
	case errors.As(err, &se):
		l.Warn(event, "status", 400, "reason", "insufficient stock", "product_id", se.ProductID, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, map[string]any{
			"message":   se.Error(),
			"productId": se.ProductID,
			"available": se.Available,
			"requested": se.Requested,
		})
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "validation failed", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "not found", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		l.Warn(event, "status", 401, "reason", "unauthorized", "error", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, service.ErrForbidden):
		l.Warn(event, "status", 403, "reason", "forbidden", "error", err)
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "conflict", "error", err)
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	default:
		l.Error(event, "status", 500, "reason", "internal error", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", 400, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}
