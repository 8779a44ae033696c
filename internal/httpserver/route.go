package httpserver

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/sandp/medstock/internal/metrics"
	middleware "github.com/sandp/medstock/pkg/middleware/auth"
	"github.com/sandp/medstock/pkg/middleware/csrf"
	loggingmw "github.com/sandp/medstock/pkg/middleware/logging"
	"github.com/sandp/medstock/pkg/middleware/ratelimit"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	OrderHandler   *OrderHTTP
	ReportHandler  *ReportHTTP
	UserHandler    *UserHTTP

	Session      *middleware.SessionMiddleware
	LoginLimiter *ratelimit.PerIP
	// Ready reports whether the store is reachable.
	Ready func(ctx context.Context) error
}

// NewEcho builds the server with the common middleware chain. A nil csrfCfg
// disables CSRF checks.
func NewEcho(logger *slog.Logger, csrfCfg *csrf.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(metrics.Middleware())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(echomw.BodyLimit("2M"))
	if csrfCfg != nil {
		e.Use(csrf.Middleware(*csrfCfg))
	}
	return e
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if d.Ready != nil {
			if err := d.Ready(c.Request().Context()); err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
			}
		}
		return c.NoContent(http.StatusOK)
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")

	authed, admin := d.Session.RequireAuth, d.Session.RequireAdmin

	auth := api.Group("/auth")
	if d.LoginLimiter != nil {
		auth.POST("/login", d.UserHandler.Login, d.LoginLimiter.Middleware)
	} else {
		auth.POST("/login", d.UserHandler.Login)
	}
	auth.POST("/logout", d.UserHandler.Logout, authed)
	auth.GET("/me", d.UserHandler.Me, authed)

	products := api.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts, authed)
	products.GET("/:id", d.CatalogHandler.GetProduct, authed)
	products.POST("", d.CatalogHandler.CreateProduct, admin)
	products.PUT("/:id", d.CatalogHandler.PatchProduct, admin)
	products.DELETE("/:id", d.CatalogHandler.DeleteProduct, admin)

	orders := api.Group("/orders")
	orders.POST("", d.OrderHandler.CreateOrder, authed)
	orders.GET("", d.OrderHandler.ListOrders, authed)
	orders.GET("/:id", d.OrderHandler.GetOrder, authed)
	orders.GET("/:id/invoice", d.OrderHandler.Invoice, authed)
	orders.PUT("/:id/status", d.OrderHandler.UpdateStatus, admin)

	reports := api.Group("/reports", admin)
	reports.GET("/expiry", d.ReportHandler.Expiry)
	reports.GET("/low-stock", d.ReportHandler.LowStock)
	reports.GET("/sales", d.ReportHandler.Sales)
	api.GET("/dashboard/kpis", d.ReportHandler.KPIs, admin)

	users := api.Group("/users", admin)
	users.POST("", d.UserHandler.CreateUser)
	users.GET("", d.UserHandler.ListUsers)
	users.PUT("/:id", d.UserHandler.UpdateUser)
}
