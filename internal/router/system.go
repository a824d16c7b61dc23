package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/shelter/internal/handler"
)

// registerSystemRoutes registers endpoints outside the animal API: the
// health check, the docs UI and the static OpenAPI assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.Static("/static", handler.StaticDir)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
