package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/sandp/medstock/internal/service"
	"github.com/sandp/medstock/internal/transport"
	"github.com/sandp/medstock/internal/util"
	"github.com/sandp/medstock/pkg/logging"
	"github.com/sandp/medstock/pkg/session"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")
	sess, _ := session.FromContext(ctx)

	page, err := h.Svc.ListProducts(ctx, sess, service.ProductQuery{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Page:     util.ParseIntDefault(c.QueryParam("page"), 1),
		Size:     util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	})
	if err != nil {
		return serviceError(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, page)
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "get_product_error", "id is not a uuid", err)
	}

	product, err := h.Svc.GetProduct(ctx, sess, id)
	if err != nil {
		return serviceError(l, "get_product_error", err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create_product")
	sess, _ := session.FromContext(ctx)

	var req transport.CreateProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_product_error", "invalid body", err)
	}

	product, err := h.Svc.CreateProduct(ctx, sess, req)
	if err != nil {
		return serviceError(l, "create_product_error", err)
	}

	l.Info("create_product_success", "product_id", product.ID)
	return c.JSON(http.StatusCreated, product)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch_product")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "patch_product_error", "id is not a uuid", err)
	}
	var req transport.PatchProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "patch_product_error", "invalid body", err)
	}

	product, err := h.Svc.PatchProduct(ctx, sess, id, req)
	if err != nil {
		return serviceError(l, "patch_product_error", err)
	}

	l.Info("patch_product_success", "product_id", id)
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete_product")
	sess, _ := session.FromContext(ctx)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return badRequest(l, "delete_product_error", "id is not a uuid", err)
	}
	if err := h.Svc.DeleteProduct(ctx, sess, id); err != nil {
		return serviceError(l, "delete_product_error", err)
	}

	l.Info("delete_product_success", "product_id", id)
	return c.NoContent(http.StatusNoContent)
}
