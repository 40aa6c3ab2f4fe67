package middleware

import (
	"path/filepath"
	"testing"

	"github.com/deppfellow/mlm-api/internal/config"
	"github.com/deppfellow/mlm-api/internal/lib/upload"
	"github.com/deppfellow/mlm-api/internal/logger"
	"github.com/deppfellow/mlm-api/internal/server"
	"github.com/rs/zerolog"
)

const testSecret = "test-secret"

var testOrigins = config.ParseOrigins("https://a.com, https://b.com")

// newTestServer builds a container without a database. New Relic stays
// disabled because no licence key is set.
func newTestServer(t *testing.T, maxFileSize int64) *server.Server {
	t.Helper()

	nop := zerolog.Nop()
	obs := config.DefaultObservabilityConfig()

	cfg := &config.Config{
		Primary: config.Primary{Env: "test"},
		Server: config.ServerConfig{
			Port:               "3000",
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: testOrigins,
		},
		Auth: config.AuthConfig{JWTSecret: testSecret},
		Upload: config.UploadConfig{
			Dir:         filepath.Join(t.TempDir(), "uploads"),
			BaseURL:     "http://localhost:3000",
			MaxFileSize: maxFileSize,
		},
		Observability: obs,
	}

	return &server.Server{
		Config:        cfg,
		Logger:        &nop,
		LoggerService: logger.NewLoggerService(obs),
		Upload:        upload.NewService(cfg.Upload, &nop),
	}
}
