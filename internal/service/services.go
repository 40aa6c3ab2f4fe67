// Package service contains the business logic between handlers and the
// storage layers.
package service

import (
	"github.com/deppfellow/mlm-api/internal/server"
)

type Services struct {
	ProductImage *ProductImageService
}

func NewServices(s *server.Server) *Services {
	return &Services{
		ProductImage: NewProductImageService(s.Upload),
	}
}
