// Package upload stores product images on local disk.
//
// Service does not handle HTTP itself. Config returns the rules the upload
// middleware applies to every multipart file (filter, size limit,
// destination, generated name); the remaining methods manage files that
// were already stored.
package upload

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/deppfellow/mlm-api/internal/config"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// URLPrefix is where the upload directory is served over HTTP.
const URLPrefix = "/uploads/"

var (
	// ErrNotImage rejects files whose declared MIME type is not a supported image.
	ErrNotImage = errors.New("Only image files are allowed!")

	// ErrFileTooLarge rejects files above Limits.FileSize.
	ErrFileTooLarge = errors.New("File too large")

	// ErrInvalidName rejects names that are not a plain file name.
	ErrInvalidName = errors.New("invalid file name")
)

var imageMimeType = regexp.MustCompile(`/(jpg|jpeg|png|gif|webp)$`)

// FileInfo describes an incoming multipart file before it is written.
type FileInfo struct {
	FieldName    string
	OriginalName string
	MimeType     string
	Size         int64
}

// Limits bounds a single upload.
type Limits struct {
	FileSize int64
}

// Config is consumed by the upload middleware, which runs Filter, checks
// Limits, then asks Destination and Filename where to write.
type Config struct {
	Destination func() (string, error)
	Filename    func(FileInfo) string
	Filter      func(FileInfo) error
	Limits      Limits
}

// StoredFile is a file written by the upload middleware.
type StoredFile struct {
	FieldName    string `json:"-"`
	OriginalName string `json:"originalName"`
	MimeType     string `json:"mimetype"`
	Size         int64  `json:"size"`
	Filename     string `json:"filename"`
	Destination  string `json:"-"`
	Path         string `json:"-"`
}

// Service stores product images under one directory and builds their
// public URLs.
type Service struct {
	dir         string
	baseURL     string
	maxFileSize int64
	logger      *zerolog.Logger
}

// NewService falls back to config.MaxUploadFileSize when cfg has no limit.
func NewService(cfg config.UploadConfig, logger *zerolog.Logger) *Service {
	maxFileSize := cfg.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = config.MaxUploadFileSize
	}

	return &Service{
		dir:         cfg.Dir,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

// Config returns the multipart rules for product images.
func (s *Service) Config() Config {
	return Config{
		Destination: s.destination,
		Filename:    generateFilename,
		Filter:      imageFilter,
		Limits:      Limits{FileSize: s.maxFileSize},
	}
}

// destination creates the upload directory if needed. Safe to call on
// every upload.
func (s *Service) destination() (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "failed to create upload directory %s", s.dir)
	}
	return s.dir, nil
}

// generateFilename discards the original name and keeps only its extension.
func generateFilename(info FileInfo) string {
	return uuid.NewString() + extension(info.OriginalName)
}

// extension treats a leading dot as part of the name, so ".png" has none.
func extension(name string) string {
	base := strings.TrimLeft(filepath.Base(name), ".")
	return filepath.Ext(base)
}

func imageFilter(info FileInfo) error {
	if info.MimeType == "" || !imageMimeType.MatchString(info.MimeType) {
		return ErrNotImage
	}
	return nil
}

// FileURL returns the public URL of a stored file.
func (s *Service) FileURL(name string) string {
	return s.baseURL + URLPrefix + name
}

// Delete removes a stored file. Missing files and names that are not a
// plain file name are errors.
func (s *Service) Delete(name string) error {
	path, err := s.resolve(name)
	if err == nil {
		err = os.Remove(path)
	}

	if err != nil {
		s.logger.Error().
			Err(err).
			Str("filename", name).
			Msg("error deleting file")
		return errors.Wrapf(err, "failed to delete file: %s", name)
	}

	s.logger.Info().
		Str("filename", name).
		Msg("file deleted")
	return nil
}

// Exists reports whether name is a stored regular file. Any failure to
// stat the file counts as absent.
func (s *Service) Exists(name string) bool {
	path, err := s.resolve(name)
	if err != nil {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// UploadPath returns the directory files are written to.
func (s *Service) UploadPath() string {
	return s.dir
}

// resolve maps a file name to its path inside the upload directory.
func (s *Service) resolve(name string) (string, error) {
	if name == "" || name == "." || name == ".." || name != filepath.Base(name) || strings.ContainsRune(name, '\\') {
		return "", errors.Wrap(ErrInvalidName, name)
	}
	return filepath.Join(s.dir, name), nil
}

// IsNotExist reports whether err says the file was not there.
func IsNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
