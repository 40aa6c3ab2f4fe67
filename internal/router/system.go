package router

import (
	"strings"

	"github.com/deppfellow/mlm-api/internal/handler"
	"github.com/deppfellow/mlm-api/internal/lib/upload"
	"github.com/labstack/echo/v4"
)

const (
	HealthPath  = "/health"
	DocsPath    = "/api-docs"
	DocsSpecURL = DocsPath + "/openapi.json"
)

// registerSystemRoutes mounts health, API docs and the uploaded files.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers, uploadDir string) {
	r.GET(HealthPath, h.Health.CheckHealth)

	r.GET(DocsPath, h.OpenAPI.ServeOpenAPIUI)
	r.GET(DocsPath+"/", h.OpenAPI.ServeOpenAPIUI)
	r.GET(DocsSpecURL, h.OpenAPI.ServeOpenAPISpec)

	r.Static(strings.TrimSuffix(upload.URLPrefix, "/"), uploadDir)
}
