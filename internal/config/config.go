// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file when
// present), loads them into structured Go types, and validates that required
// values are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load the recognised environment variables (optionally from a `.env` file).
//   - Resolve them into a structured Go config (server, database, auth, uploads).
//   - Report missing or invalid values as errors. Deciding to terminate the
//     process is left to the entry point.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: triggers godotenv's autoload feature.
	// If a `.env` file exists, it gets loaded into the process env
	// *before* any of the code below reads env vars.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	`koanf` reads config sources and unmarshals them into structs.

	The env var names used by this service are fixed (DATABASE_URL, PORT, ...)
	and carry no common prefix, so the provider reads the whole environment and
	the key-mapping func keeps only the names listed in recognisedEnv.
	Kept names are lowercased: DATABASE_URL -> database_url.
*/

const (
	// DefaultServerPort is used when neither SERVER_PORT nor PORT is set.
	DefaultServerPort = "3000"

	// DefaultDatabasePort is used for the discrete database form when PORT is unset.
	DefaultDatabasePort = 5432

	// DefaultBaseURL is the public origin used to build uploaded file URLs.
	DefaultBaseURL = "http://localhost:3000"

	// DefaultUploadDir is the directory uploaded files are written to and served from.
	DefaultUploadDir = "uploads"

	// MaxUploadFileSize is the per-file upload limit (10 MiB).
	MaxUploadFileSize int64 = 10 * 1024 * 1024

	// EnvProduction is the NODE_ENV value that marks a production deployment.
	EnvProduction = "production"
)

// DefaultCORSOrigins is the development fallback used when CORS_ORIGIN is unset.
var DefaultCORSOrigins = []string{
	"http://127.0.0.1:5500",
	"http://localhost:3001",
	"http://localhost:3002",
	"http://184.72.82.136:3000",
	"http://localhost:3004",
}

// recognisedEnv lists every variable the service reads.
var recognisedEnv = map[string]struct{}{
	"DATABASE_URL":          {},
	"NODE_ENV":              {},
	"HOST":                  {},
	"USER":                  {},
	"PASSWORD":              {},
	"DATABASE":              {},
	"PORT":                  {},
	"JWT_SECRET":            {},
	"CORS_ORIGIN":           {},
	"SERVER_PORT":           {},
	"BASE_URL":              {},
	"NGINX_BASE_URL":        {},
	"UPLOAD_DIR":            {},
	"LOG_LEVEL":             {},
	"LOG_FORMAT":            {},
	"NEW_RELIC_LICENSE_KEY": {},
}

// Config is the root configuration object for the application.
//
// Unlike the raw environment, every block here is already resolved:
// fallbacks are applied and the database block holds exactly one complete form.
// The `validate` tags are checked by go-playground/validator in Load.
type Config struct {
	Primary       Primary              `validate:"required"`
	Server        ServerConfig         `validate:"required"`
	Database      DatabaseConfig       `validate:"required"`
	Auth          AuthConfig           `validate:"required"`
	Upload        UploadConfig         `validate:"required"`
	Observability *ObservabilityConfig `validate:"required"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `validate:"required"`
}

// IsProduction reports whether NODE_ENV is "production".
func (p Primary) IsProduction() bool {
	return p.Env == EnvProduction
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are in seconds.
type ServerConfig struct {
	Port               string   `validate:"required,numeric"`
	ReadTimeout        int      `validate:"required"`
	WriteTimeout       int      `validate:"required"`
	IdleTimeout        int      `validate:"required"`
	CORSAllowedOrigins []string `validate:"required,min=1,dive,required"`
}

// DatabaseConfig is the Pool Configuration.
//
// It holds either the URL form (URL, RelaxedTLS) or the discrete form
// (Host, Port, User, Password, Name). ResolveDatabase never returns a value
// with neither form complete.
type DatabaseConfig struct {
	URL string `validate:"required_without=Host"`

	// RelaxedTLS forces TLS without certificate verification.
	// Only ever set for the URL form in production.
	RelaxedTLS bool

	Host     string `validate:"required_without=URL"`
	Port     int    `validate:"min=0,max=65535"`
	User     string `validate:"required_without=URL"`
	Password string `validate:"required_without=URL"`
	Name     string `validate:"required_without=URL"`
}

// UsesURL reports whether the connection string form is in effect.
func (d DatabaseConfig) UsesURL() bool {
	return d.URL != ""
}

// AuthConfig stores authentication-related secrets.
type AuthConfig struct {
	JWTSecret string `validate:"required"`
}

// UploadConfig holds the file upload settings.
type UploadConfig struct {
	Dir         string `validate:"required"`
	BaseURL     string `validate:"required,url"`
	MaxFileSize int64  `validate:"required,min=1"`
}

// environment is the raw, unresolved view of the recognised env vars.
type environment struct {
	DatabaseURL        string `koanf:"database_url" env:"DATABASE_URL"`
	NodeEnv            string `koanf:"node_env" env:"NODE_ENV"`
	Host               string `koanf:"host" env:"HOST"`
	User               string `koanf:"user" env:"USER"`
	Password           string `koanf:"password" env:"PASSWORD"`
	Database           string `koanf:"database" env:"DATABASE"`
	Port               string `koanf:"port" env:"PORT"`
	JWTSecret          string `koanf:"jwt_secret" env:"JWT_SECRET"`
	CORSOrigin         string `koanf:"cors_origin" env:"CORS_ORIGIN"`
	ServerPort         string `koanf:"server_port" env:"SERVER_PORT"`
	BaseURL            string `koanf:"base_url" env:"BASE_URL"`
	NginxBaseURL       string `koanf:"nginx_base_url" env:"NGINX_BASE_URL"`
	UploadDir          string `koanf:"upload_dir" env:"UPLOAD_DIR"`
	LogLevel           string `koanf:"log_level" env:"LOG_LEVEL"`
	LogFormat          string `koanf:"log_format" env:"LOG_FORMAT"`
	NewRelicLicenseKey string `koanf:"new_relic_license_key" env:"NEW_RELIC_LICENSE_KEY"`
}

// requiredEnv is the set of variables the application refuses to start without.
type requiredEnv struct {
	JWTSecret   string `env:"JWT_SECRET" validate:"required"`
	DatabaseURL string `env:"DATABASE_URL" validate:"required"`
}

// discreteDatabaseEnv is the fallback database form.
type discreteDatabaseEnv struct {
	Host     string `env:"HOST" validate:"required"`
	User     string `env:"USER" validate:"required"`
	Password string `env:"PASSWORD" validate:"required"`
	Database string `env:"DATABASE" validate:"required"`
}

// readEnvironment loads the recognised env vars through koanf.
func readEnvironment() (*environment, error) {
	k := koanf.New(".")

	// No prefix: read everything, keep only recognised names.
	// Returning "" from the mapping func makes the provider skip the variable.
	err := k.Load(env.Provider("", ".", func(s string) string {
		if _, ok := recognisedEnv[s]; !ok {
			return ""
		}
		return strings.ToLower(s)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load environment variables: %w", err)
	}

	e := &environment{}
	if err := k.Unmarshal("", e); err != nil {
		return nil, fmt.Errorf("could not unmarshal environment: %w", err)
	}

	return e, nil
}

// ValidateEnvironment checks that JWT_SECRET and DATABASE_URL are set.
//
// It returns a *MissingEnvError naming exactly the missing variables.
func ValidateEnvironment() error {
	e, err := readEnvironment()
	if err != nil {
		return err
	}
	return e.validateRequired()
}

func (e *environment) validateRequired() error {
	if missing := missingKeys(requiredEnv{
		JWTSecret:   e.JWTSecret,
		DatabaseURL: e.DatabaseURL,
	}); missing != nil {
		return missing
	}
	return nil
}

// ResolveDatabase builds the Pool Configuration from the environment.
//
// DATABASE_URL wins when set. Otherwise HOST, USER, PASSWORD and DATABASE
// are all required, and the port comes from PORT (default 5432).
func ResolveDatabase() (DatabaseConfig, error) {
	e, err := readEnvironment()
	if err != nil {
		return DatabaseConfig{}, err
	}
	return e.database()
}

func (e *environment) database() (DatabaseConfig, error) {
	if e.DatabaseURL != "" {
		return DatabaseConfig{
			URL:        e.DatabaseURL,
			RelaxedTLS: e.NodeEnv == EnvProduction,
		}, nil
	}

	if missing := missingKeys(discreteDatabaseEnv{
		Host:     e.Host,
		User:     e.User,
		Password: e.Password,
		Database: e.Database,
	}); missing != nil {
		return DatabaseConfig{}, missing
	}

	port := DefaultDatabasePort
	if e.Port != "" {
		p, err := strconv.Atoi(e.Port)
		if err != nil || p < 1 || p > 65535 {
			return DatabaseConfig{}, fmt.Errorf("invalid PORT %q: must be a number between 1 and 65535", e.Port)
		}
		port = p
	}

	return DatabaseConfig{
		Host:     e.Host,
		Port:     port,
		User:     e.User,
		Password: e.Password,
		Name:     e.Database,
	}, nil
}

// Load reads the environment and returns the fully resolved Config.
//
// Behavior summary:
//   - Required variables are checked first (ValidateEnvironment semantics)
//   - The database block is resolved (ResolveDatabase semantics)
//   - Server port, CORS origins, upload settings and observability are resolved
//   - The result is validated with go-playground/validator
//
// Nothing here exits the process; every failure is returned.
func Load() (*Config, error) {
	e, err := readEnvironment()
	if err != nil {
		return nil, err
	}

	if err := e.validateRequired(); err != nil {
		return nil, err
	}

	db, err := e.database()
	if err != nil {
		return nil, err
	}

	nodeEnv := e.NodeEnv
	if nodeEnv == "" {
		nodeEnv = "development"
	}

	cfg := &Config{
		Primary: Primary{Env: nodeEnv},
		Server: ServerConfig{
			Port:               firstNonEmpty(e.ServerPort, e.Port, DefaultServerPort),
			ReadTimeout:        30,
			WriteTimeout:       30,
			IdleTimeout:        60,
			CORSAllowedOrigins: ParseOrigins(e.CORSOrigin),
		},
		Database: db,
		Auth: AuthConfig{
			JWTSecret: e.JWTSecret,
		},
		Upload: UploadConfig{
			Dir:         firstNonEmpty(e.UploadDir, DefaultUploadDir),
			BaseURL:     strings.TrimRight(firstNonEmpty(e.BaseURL, e.NginxBaseURL, DefaultBaseURL), "/"),
			MaxFileSize: MaxUploadFileSize,
		},
		Observability: DefaultObservabilityConfig(),
	}

	// Service name is fixed; environment follows NODE_ENV.
	cfg.Observability.ServiceName = ServiceName
	cfg.Observability.Environment = cfg.Primary.Env
	cfg.Observability.Logging.Level = e.LogLevel
	if e.LogFormat != "" {
		cfg.Observability.Logging.Format = e.LogFormat
	} else if !cfg.Primary.IsProduction() {
		cfg.Observability.Logging.Format = "console"
	}
	cfg.Observability.NewRelic.LicenseKey = e.NewRelicLicenseKey
	cfg.Observability.Logging.Level = cfg.Observability.GetLogLevel()

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := cfg.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return cfg, nil
}

// ParseOrigins splits a comma-separated CORS_ORIGIN value.
//
// Entries are trimmed and empty entries dropped. An empty or blank value
// yields DefaultCORSOrigins.
func ParseOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	if len(origins) == 0 {
		return append([]string(nil), DefaultCORSOrigins...)
	}
	return origins
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
