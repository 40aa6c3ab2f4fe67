package service

import (
	"context"

	"github.com/deppfellow/mlm-api/internal/errs"
	"github.com/deppfellow/mlm-api/internal/lib/upload"
	"github.com/deppfellow/mlm-api/internal/middleware"
)

// ImageStore is the part of upload.Service the image endpoints use.
type ImageStore interface {
	FileURL(name string) string
	Exists(name string) bool
	Delete(name string) error
}

type ProductImageService struct {
	store ImageStore
}

func NewProductImageService(store ImageStore) *ProductImageService {
	return &ProductImageService{store: store}
}

// UploadedImage is returned after a successful upload.
type UploadedImage struct {
	upload.StoredFile
	URL string `json:"url"`
}

// ImageStatus answers whether an image is stored and where it would be served.
type ImageStatus struct {
	Filename string `json:"filename"`
	Exists   bool   `json:"exists"`
	URL      string `json:"url"`
}

// Describe builds the response for a file the upload middleware just stored.
func (s *ProductImageService) Describe(file *upload.StoredFile) (*UploadedImage, error) {
	if file == nil {
		return nil, errs.NewBadRequestError("No image uploaded", true, nil, nil, nil)
	}
	return &UploadedImage{
		StoredFile: *file,
		URL:        s.store.FileURL(file.Filename),
	}, nil
}

func (s *ProductImageService) Status(filename string) *ImageStatus {
	return &ImageStatus{
		Filename: filename,
		Exists:   s.store.Exists(filename),
		URL:      s.store.FileURL(filename),
	}
}

// Remove deletes a stored image; unknown names are a 404.
func (s *ProductImageService) Remove(ctx context.Context, filename string) error {
	logger := middleware.LoggerFromContext(ctx)

	if !s.store.Exists(filename) {
		logger.Warn().Str("filename", filename).Msg("image not found")
		return imageNotFound()
	}

	if err := s.store.Delete(filename); err != nil {
		// Lost a race with another delete.
		if upload.IsNotExist(err) {
			return imageNotFound()
		}
		return err
	}

	return nil
}

func imageNotFound() error {
	code := "IMAGE_NOT_FOUND"
	return errs.NewNotFoundError("Image not found", true, &code)
}
