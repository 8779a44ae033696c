package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sandp/medstock/internal/service"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.create_order")
	sess, _ := session.FromContext(ctx)

	var req transport.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_order_error", "invalid body", err)
	}

	summary, err := h.Svc.CreateOrder(ctx, sess, req)
	if err != nil {
		return serviceError(l, "create_order_error", err)
	}

	l.Info("create_order_success", "order_id", summary.ID, "order_number", summary.OrderNumber)
	return c.JSON(http.StatusCreated, map[string]any{"order": summary})
}

func (h *OrderHTTP) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_orders")
	sess, _ := session.FromContext(ctx)

	var userFilter *uuid.UUID
	if raw := c.QueryParam("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return badRequest(l, "list_orders_error", "user is not a uuid", err)
		}
		userFilter = &id
	}

	orders, err := h.Svc.ListOrders(ctx, sess, userFilter)
	if err != nil {
		return serviceError(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"orders": orders})
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get_order")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_order_error", "id is not a uuid", err)
	}
	order, err := h.Svc.GetOrder(ctx, sess, id)
	if err != nil {
		return serviceError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{"order": order})
}

func (h *OrderHTTP) Invoice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.invoice")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "invoice_error", "id is not a uuid", err)
	}
	inv, err := h.Svc.Invoice(ctx, sess, id)
	if err != nil {
		return serviceError(l, "invoice_error", err)
	}
	return c.JSON(http.StatusOK, inv)
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "update_status_error", "id is not a uuid", err)
	}
	var req transport.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, sess, id, req.Status)
	if err != nil {
		return serviceError(l, "update_status_error", err)
	}

	l.Info("update_status_success", "order_id", id, "status", order.Status)
	return c.JSON(http.StatusOK, map[string]any{"order": order})
}
