package handler

import (
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/deppfellow/mlm-api/static"
	"github.com/labstack/echo/v4"
)

// OpenAPIHandler serves the Swagger UI page and the OpenAPI document it loads.
type OpenAPIHandler struct {
	Handler
	assets fs.FS
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		assets:  static.FS,
	}
}

// ServeOpenAPIUI serves the docs page uncached so doc changes show up
// immediately.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := fs.ReadFile(h.assets, static.OpenAPIUI)
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}
	return nil
}

func (h *OpenAPIHandler) ServeOpenAPISpec(c echo.Context) error {
	doc, err := fs.ReadFile(h.assets, static.OpenAPISpec)
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI document: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, doc)
}
