// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API route groups,
// mapping specific paths to their corresponding handlers.
package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/shelter/internal/handler"
	"github.com/deppfellow/shelter/internal/middleware"
	"github.com/deppfellow/shelter/internal/server"
)

// NewRouter builds the Echo instance with the global middleware stack,
// system routes and the /api/v1 animal routes.
func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// Order matters: tracing and the context logger need the request ID,
	// the request logger needs the context logger, and the limiter logs
	// denials through the context logger.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.RateLimit.Limiter(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h)

	v1 := router.Group("/api/v1")
	registerAnimalRoutes(v1, h.Animal)

	return router
}

func registerAnimalRoutes(g *echo.Group, h *handler.AnimalHandler) {
	animals := g.Group("/animals")

	animals.POST("", handler.Handle(h.Handler, h.CreateAnimal, http.StatusCreated, handler.NewCreateAnimalRequest))
	animals.GET("", handler.Handle(h.Handler, h.ListAnimals, http.StatusOK, handler.NewListAnimalsRequest))
	animals.POST("/search", handler.Handle(h.Handler, h.SearchAnimals, http.StatusOK, handler.NewSearchAnimalsRequest))
	animals.PATCH("", handler.Handle(h.Handler, h.UpdateAnimal, http.StatusOK, handler.NewUpdateAnimalRequest))
	animals.DELETE("", handler.Handle(h.Handler, h.DeleteAnimal, http.StatusOK, handler.NewDeleteAnimalRequest))
	animals.GET("/analytics", handler.Handle(h.Handler, h.Analytics, http.StatusOK, handler.NewAnalyticsRequest))
	animals.GET("/export", handler.HandleFile(h.Handler, h.ExportAnimals, http.StatusOK, handler.NewListAnimalsRequest, "animals.json", echo.MIMEApplicationJSON))
}
