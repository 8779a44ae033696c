package csrf

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func newServer() *echo.Echo {
	e := echo.New()
	e.Use(Middleware(Config{Secure: false, SkipPaths: []string{"/api/auth/login"}}))
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	e.GET("/api/products", ok)
	e.POST("/api/orders", ok)
	e.POST("/api/auth/login", ok)
	return e
}

func TestCSRF(t *testing.T) {
	e := newServer()

	get := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, get)
	assert.Equal(t, http.StatusOK, rec.Code)
	token := rec.Header().Get("X-CSRF-Token")
	assert.NotEmpty(t, token)

	tests := []struct {
		name   string
		path   string
		origin string
		header string
		want   int
	}{
		{name: "skip path", path: "/api/auth/login", want: http.StatusOK},
		{name: "missing origin", path: "/api/orders", header: token, want: http.StatusForbidden},
		{name: "cross origin", path: "/api/orders", origin: "http://evil.test", header: token, want: http.StatusForbidden},
		{name: "missing header", path: "/api/orders", origin: "http://example.com", want: http.StatusForbidden},
		{name: "wrong header", path: "/api/orders", origin: "http://example.com", header: token + "x", want: http.StatusForbidden},
		{name: "valid", path: "/api/orders", origin: "http://example.com", header: token, want: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, tt.path, nil)
			req.AddCookie(&http.Cookie{Name: "XSRF-TOKEN", Value: token})
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			if tt.header != "" {
				req.Header.Set("X-CSRF-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
