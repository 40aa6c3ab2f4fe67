package middleware

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/deppfellow/mlm-api/internal/errs"
	"github.com/deppfellow/mlm-api/internal/lib/upload"
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
)

// UploadedFileKey holds the *upload.StoredFile on the echo context.
const UploadedFileKey = "uploaded_file"

// multipartOverhead is the slack allowed on top of the file size limit for
// boundaries, part headers and other form fields.
const multipartOverhead = 1 << 20

type UploadMiddleware struct {
	server *server.Server
}

func NewUploadMiddleware(s *server.Server) *UploadMiddleware {
	return &UploadMiddleware{server: s}
}

// Single accepts one image under field, using the server's upload rules.
// The request body is capped so oversized uploads fail before parsing.
func (um *UploadMiddleware) Single(field string) []echo.MiddlewareFunc {
	cfg := um.server.Upload.Config()
	return []echo.MiddlewareFunc{
		middleware.BodyLimit(fmt.Sprintf("%dB", cfg.Limits.FileSize+multipartOverhead)),
		Upload(field, cfg),
	}
}

// Upload reads the multipart file under field and stores it following cfg:
// Filter, then Limits, then Destination and Filename. A rejected file is
// never written. The stored file is available through GetUploadedFile.
func Upload(field string, cfg upload.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header, err := c.FormFile(field)
			if err != nil {
				return formFileError(field, err)
			}

			info := upload.FileInfo{
				FieldName:    field,
				OriginalName: header.Filename,
				MimeType:     header.Header.Get(echo.HeaderContentType),
				Size:         header.Size,
			}

			if err := cfg.Filter(info); err != nil {
				return errs.NewBadRequestError(err.Error(), true, nil, nil, nil)
			}

			if cfg.Limits.FileSize > 0 && info.Size > cfg.Limits.FileSize {
				return errs.NewPayloadTooLargeError(upload.ErrFileTooLarge.Error(), true)
			}

			destination, err := cfg.Destination()
			if err != nil {
				return err
			}

			filename := cfg.Filename(info)
			path := filepath.Join(destination, filename)

			if err := saveFile(header, path); err != nil {
				return err
			}

			GetLogger(c).Info().
				Str("filename", filename).
				Str("original_name", info.OriginalName).
				Int64("size", info.Size).
				Msg("file uploaded")

			c.Set(UploadedFileKey, &upload.StoredFile{
				FieldName:    field,
				OriginalName: info.OriginalName,
				MimeType:     info.MimeType,
				Size:         info.Size,
				Filename:     filename,
				Destination:  destination,
				Path:         path,
			})

			return next(c)
		}
	}
}

func formFileError(field string, err error) error {
	var maxBytesErr *http.MaxBytesError
	var echoErr *echo.HTTPError

	switch {
	case errors.Is(err, http.ErrMissingFile):
		return errs.NewBadRequestError(fmt.Sprintf("File field %q is required", field), true, nil,
			[]errs.FieldError{{Field: field, Error: "is required"}}, nil)
	case errors.As(err, &maxBytesErr), errors.As(err, &echoErr) && echoErr.Code == http.StatusRequestEntityTooLarge:
		return errs.NewPayloadTooLargeError(upload.ErrFileTooLarge.Error(), true)
	default:
		return errs.NewBadRequestError("Invalid multipart form", false, nil, nil, nil)
	}
}

// saveFile copies the part to path. O_EXCL guarantees an existing file is
// never overwritten; a partial file is removed on failure.
func saveFile(header *multipart.FileHeader, path string) (err error) {
	src, err := header.Open()
	if err != nil {
		return errors.Wrap(err, "failed to open uploaded file")
	}
	defer src.Close()

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}

	defer func() {
		if closeErr := dst.Close(); err == nil && closeErr != nil {
			err = errors.Wrapf(closeErr, "failed to close %s", path)
		}
		if err != nil {
			_ = os.Remove(path)
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// GetUploadedFile returns the file stored by Upload, or nil.
func GetUploadedFile(c echo.Context) *upload.StoredFile {
	if file, ok := c.Get(UploadedFileKey).(*upload.StoredFile); ok {
		return file
	}
	return nil
}
