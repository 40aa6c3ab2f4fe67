package handler

import (
	"github.com/deppfellow/mlm-api/internal/middleware"
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/deppfellow/mlm-api/internal/service"
	"github.com/deppfellow/mlm-api/internal/validation"
	"github.com/labstack/echo/v4"
)

// ImageUploadRequest is the multipart form around the "image" file. The
// file itself is handled by the upload middleware.
type ImageUploadRequest struct{}

func (r *ImageUploadRequest) Validate() error { return nil }

// ImageParams identifies a stored image by its generated file name.
type ImageParams struct {
	Filename string `param:"filename" validate:"required,max=255,excludesall=/\\"`
}

func (p *ImageParams) Validate() error {
	return validation.Struct(p)
}

func NewImageUploadRequest() *ImageUploadRequest { return &ImageUploadRequest{} }
func NewImageParams() *ImageParams               { return &ImageParams{} }

type ProductImageHandler struct {
	Handler
	images *service.ProductImageService
}

func NewProductImageHandler(s *server.Server, images *service.ProductImageService) *ProductImageHandler {
	return &ProductImageHandler{
		Handler: NewHandler(s),
		images:  images,
	}
}

// UploadImage answers with the stored file and its public URL.
func (h *ProductImageHandler) UploadImage(c echo.Context, _ *ImageUploadRequest) (*service.UploadedImage, error) {
	return h.images.Describe(middleware.GetUploadedFile(c))
}

func (h *ProductImageHandler) GetImage(c echo.Context, params *ImageParams) (*service.ImageStatus, error) {
	return h.images.Status(params.Filename), nil
}

func (h *ProductImageHandler) DeleteImage(c echo.Context, params *ImageParams) error {
	return h.images.Remove(c.Request().Context(), params.Filename)
}
