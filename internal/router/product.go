package router

import (
	"net/http"

	"github.com/deppfellow/mlm-api/internal/handler"
	"github.com/deppfellow/mlm-api/internal/middleware"
	"github.com/labstack/echo/v4"
)

// ImageField is the multipart field carrying a product image.
const ImageField = "image"

func registerProductRoutes(r *echo.Group, h *handler.Handlers, m *middleware.Middlewares) {
	images := r.Group("/products/images")
	writeLimit := m.RateLimit.Uploads()

	uploadChain := append([]echo.MiddlewareFunc{writeLimit, m.Auth.RequireAuth}, m.Upload.Single(ImageField)...)

	images.POST("",
		handler.Handle(h.ProductImage.Handler, h.ProductImage.UploadImage, http.StatusCreated, handler.NewImageUploadRequest),
		uploadChain...,
	)

	images.GET("/:filename",
		handler.Handle(h.ProductImage.Handler, h.ProductImage.GetImage, http.StatusOK, handler.NewImageParams),
	)

	images.DELETE("/:filename",
		handler.HandleNoContent(h.ProductImage.Handler, h.ProductImage.DeleteImage, http.StatusNoContent, handler.NewImageParams),
		writeLimit, m.Auth.RequireAuth,
	)
}
