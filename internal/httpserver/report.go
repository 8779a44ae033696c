package httpserver

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sandp/medstock/internal/service"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/internal/util"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
)

type ReportHTTP struct {
	Svc *service.ReportService
}

func (h *ReportHTTP) Expiry(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.expiry")
	sess, _ := session.FromContext(ctx)

	days := util.ParseIntDefault(c.QueryParam("days"), service.DefaultExpiryDays)
	rep, err := h.Svc.ExpiryReport(ctx, sess, days)
	if err != nil {
		return serviceError(l, "expiry_report_error", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *ReportHTTP) LowStock(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.low_stock")
	sess, _ := session.FromContext(ctx)

	rep, err := h.Svc.LowStockReport(ctx, sess)
	if err != nil {
		return serviceError(l, "low_stock_report_error", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *ReportHTTP) Sales(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "report.sales")
	sess, _ := session.FromContext(ctx)

	var f transport.SalesFilter
	if raw := c.QueryParam("startDate"); raw != "" {
		t, err := parseDate(raw, false)
		if err != nil {
			return badRequest(l, "sales_report_error", "startDate must be YYYY-MM-DD or RFC3339", err)
		}
		f.Start = &t
	}
	if raw := c.QueryParam("endDate"); raw != "" {
		t, err := parseDate(raw, true)
		if err != nil {
			return badRequest(l, "sales_report_error", "endDate must be YYYY-MM-DD or RFC3339", err)
		}
		f.End = &t
	}
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(l, "sales_report_error", "userId is not a uuid", err)
		}
		f.UserID = &id
	}

	rep, err := h.Svc.SalesReport(ctx, sess, f)
	if err != nil {
		return serviceError(l, "sales_report_error", err)
	}
	return c.JSON(http.StatusOK, rep)
}

func (h *ReportHTTP) KPIs(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "dashboard.kpis")
	sess, _ := session.FromContext(ctx)

	k, err := h.Svc.KPIs(ctx, sess)
	if err != nil {
		return serviceError(l, "kpis_error", err)
	}
	return c.JSON(http.StatusOK, k)
}

// parseDate accepts a calendar date or an RFC3339 timestamp. A bare end date
// covers the whole day.
func parseDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
