// Package router builds the echo instance: global middleware in order,
// then the system routes and the versioned API groups.
package router

import (
	"github.com/deppfellow/mlm-api/internal/handler"
	"github.com/deppfellow/mlm-api/internal/middleware"
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/labstack/echo/v4"
)

func NewRouter(s *server.Server, h *handler.Handlers) *echo.Echo {
	middlewares := middleware.NewMiddlewares(s)

	router := echo.New()
	router.HideBanner = true
	router.HidePort = true
	router.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	// CORS first so preflight requests never reach the rest of the chain.
	router.Use(
		middlewares.Global.CORS(),
		middlewares.Global.Secure(),
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
	)

	registerSystemRoutes(router, h, s.Upload.UploadPath())

	v1 := router.Group("/api/v1")
	registerProductRoutes(v1, h, middlewares)

	return router
}
