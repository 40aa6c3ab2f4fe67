package handler

import (
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/deppfellow/mlm-api/internal/service"
)

// Handlers groups every HTTP handler so the router receives one value.
type Handlers struct {
	Health       *HealthHandler
	OpenAPI      *OpenAPIHandler
	ProductImage *ProductImageHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:       NewHealthHandler(s),
		OpenAPI:      NewOpenAPIHandler(s),
		ProductImage: NewProductImageHandler(s, services.ProductImage),
	}
}
