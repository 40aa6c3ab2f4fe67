package config

import (
	"errors"
	"reflect"
	"testing"
)

// setEnv blanks every recognised variable, then applies vars.
// t.Setenv restores the previous values when the test ends.
func setEnv(t *testing.T, vars map[string]string) {
	t.Helper()
	for key := range recognisedEnv {
		t.Setenv(key, "")
	}
	for key, value := range vars {
		t.Setenv(key, value)
	}
}

func TestValidateEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantMissing []string
	}{
		{
			name: "all present",
			env:  map[string]string{"JWT_SECRET": "s3cret", "DATABASE_URL": "postgres://u:p@db:5432/mlm"},
		},
		{
			name:        "secret missing",
			env:         map[string]string{"DATABASE_URL": "postgres://u:p@db:5432/mlm"},
			wantMissing: []string{"JWT_SECRET"},
		},
		{
			name:        "database url missing",
			env:         map[string]string{"JWT_SECRET": "s3cret"},
			wantMissing: []string{"DATABASE_URL"},
		},
		{
			name:        "both missing",
			env:         map[string]string{},
			wantMissing: []string{"JWT_SECRET", "DATABASE_URL"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, tt.env)

			err := ValidateEnvironment()
			if tt.wantMissing == nil {
				if err != nil {
					t.Fatalf("ValidateEnvironment() unexpected error: %v", err)
				}
				return
			}

			var missing *MissingEnvError
			if !errors.As(err, &missing) {
				t.Fatalf("ValidateEnvironment() error = %v, want *MissingEnvError", err)
			}
			if !reflect.DeepEqual(missing.Keys, tt.wantMissing) {
				t.Fatalf("missing keys = %v, want %v", missing.Keys, tt.wantMissing)
			}
		})
	}
}

func TestMissingEnvErrorMessage(t *testing.T) {
	err := &MissingEnvError{Keys: []string{"JWT_SECRET", "DATABASE_URL"}}
	want := "missing required environment variables: JWT_SECRET, DATABASE_URL"
	if err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestResolveDatabase_URLForm(t *testing.T) {
	tests := []struct {
		name           string
		nodeEnv        string
		wantRelaxedTLS bool
	}{
		{name: "development", nodeEnv: "development", wantRelaxedTLS: false},
		{name: "unset", nodeEnv: "", wantRelaxedTLS: false},
		{name: "production", nodeEnv: "production", wantRelaxedTLS: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setEnv(t, map[string]string{
				"DATABASE_URL": "postgres://u:p@db:5432/mlm",
				"NODE_ENV":     tt.nodeEnv,
				// Discrete values are ignored when the URL is set.
				"HOST": "ignored",
			})

			db, err := ResolveDatabase()
			if err != nil {
				t.Fatalf("ResolveDatabase() unexpected error: %v", err)
			}
			if !db.UsesURL() || db.URL != "postgres://u:p@db:5432/mlm" {
				t.Fatalf("expected URL form, got %+v", db)
			}
			if db.Host != "" {
				t.Fatalf("discrete host should be empty in URL form, got %q", db.Host)
			}
			if db.RelaxedTLS != tt.wantRelaxedTLS {
				t.Fatalf("RelaxedTLS = %v, want %v", db.RelaxedTLS, tt.wantRelaxedTLS)
			}
		})
	}
}

func TestResolveDatabase_DiscreteForm(t *testing.T) {
	setEnv(t, map[string]string{
		"HOST":     "db.internal",
		"USER":     "mlm",
		"PASSWORD": "pa:ss@word",
		"DATABASE": "mlm",
	})

	db, err := ResolveDatabase()
	if err != nil {
		t.Fatalf("ResolveDatabase() unexpected error: %v", err)
	}

	want := DatabaseConfig{Host: "db.internal", Port: 5432, User: "mlm", Password: "pa:ss@word", Name: "mlm"}
	if db != want {
		t.Fatalf("ResolveDatabase() = %+v, want %+v", db, want)
	}
}

func TestResolveDatabase_DiscretePort(t *testing.T) {
	setEnv(t, map[string]string{
		"HOST": "db", "USER": "u", "PASSWORD": "p", "DATABASE": "d", "PORT": "6543",
	})

	db, err := ResolveDatabase()
	if err != nil {
		t.Fatalf("ResolveDatabase() unexpected error: %v", err)
	}
	if db.Port != 6543 {
		t.Fatalf("Port = %d, want 6543", db.Port)
	}

	t.Setenv("PORT", "not-a-port")
	if _, err := ResolveDatabase(); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}

func TestResolveDatabase_MissingCredentials(t *testing.T) {
	full := map[string]string{"HOST": "db", "USER": "u", "PASSWORD": "p", "DATABASE": "d"}

	for _, drop := range []string{"HOST", "USER", "PASSWORD", "DATABASE"} {
		t.Run("without "+drop, func(t *testing.T) {
			vars := map[string]string{}
			for k, v := range full {
				if k != drop {
					vars[k] = v
				}
			}
			setEnv(t, vars)

			_, err := ResolveDatabase()
			var missing *MissingEnvError
			if !errors.As(err, &missing) {
				t.Fatalf("ResolveDatabase() error = %v, want *MissingEnvError", err)
			}
			if !reflect.DeepEqual(missing.Keys, []string{drop}) {
				t.Fatalf("missing keys = %v, want [%s]", missing.Keys, drop)
			}
		})
	}

	t.Run("nothing set", func(t *testing.T) {
		setEnv(t, nil)

		_, err := ResolveDatabase()
		var missing *MissingEnvError
		if !errors.As(err, &missing) {
			t.Fatalf("ResolveDatabase() error = %v, want *MissingEnvError", err)
		}
		want := []string{"HOST", "USER", "PASSWORD", "DATABASE"}
		if !reflect.DeepEqual(missing.Keys, want) {
			t.Fatalf("missing keys = %v, want %v", missing.Keys, want)
		}
	})
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":   "s3cret",
		"DATABASE_URL": "postgres://u:p@db:5432/mlm",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Primary.Env != "development" {
		t.Errorf("Primary.Env = %q, want development", cfg.Primary.Env)
	}
	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, DefaultServerPort)
	}
	if !reflect.DeepEqual(cfg.Server.CORSAllowedOrigins, DefaultCORSOrigins) {
		t.Errorf("CORS origins = %v, want %v", cfg.Server.CORSAllowedOrigins, DefaultCORSOrigins)
	}
	if cfg.Upload.BaseURL != DefaultBaseURL {
		t.Errorf("Upload.BaseURL = %q, want %q", cfg.Upload.BaseURL, DefaultBaseURL)
	}
	if cfg.Upload.Dir != DefaultUploadDir {
		t.Errorf("Upload.Dir = %q, want %q", cfg.Upload.Dir, DefaultUploadDir)
	}
	if cfg.Upload.MaxFileSize != 10*1024*1024 {
		t.Errorf("Upload.MaxFileSize = %d, want 10 MiB", cfg.Upload.MaxFileSize)
	}
	if cfg.Auth.JWTSecret != "s3cret" {
		t.Errorf("Auth.JWTSecret not propagated")
	}
	if cfg.Observability.Logging.Level != "debug" || cfg.Observability.Logging.Format != "console" {
		t.Errorf("development logging = %+v, want debug/console", cfg.Observability.Logging)
	}
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":     "s3cret",
		"DATABASE_URL":   "postgres://u:p@db:5432/mlm",
		"NODE_ENV":       "production",
		"PORT":           "4000",
		"SERVER_PORT":    "8080",
		"NGINX_BASE_URL": "https://cdn.example.com/",
		"CORS_ORIGIN":    "https://a.com,https://b.com",
	})

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("SERVER_PORT should win over PORT, got %q", cfg.Server.Port)
	}
	if cfg.Upload.BaseURL != "https://cdn.example.com" {
		t.Errorf("Upload.BaseURL = %q, want NGINX_BASE_URL without trailing slash", cfg.Upload.BaseURL)
	}
	if !reflect.DeepEqual(cfg.Server.CORSAllowedOrigins, []string{"https://a.com", "https://b.com"}) {
		t.Errorf("CORS origins = %v", cfg.Server.CORSAllowedOrigins)
	}
	if !cfg.Database.RelaxedTLS {
		t.Errorf("production URL form should relax TLS")
	}
	if cfg.Observability.Logging.Level != "info" || cfg.Observability.Logging.Format != "json" {
		t.Errorf("production logging = %+v, want info/json", cfg.Observability.Logging)
	}

	t.Setenv("SERVER_PORT", "")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Server.Port != "4000" {
		t.Errorf("PORT should be used when SERVER_PORT is unset, got %q", cfg.Server.Port)
	}

	t.Setenv("BASE_URL", "https://api.example.com")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() unexpected error: %v", err)
	}
	if cfg.Upload.BaseURL != "https://api.example.com" {
		t.Errorf("BASE_URL should win over NGINX_BASE_URL, got %q", cfg.Upload.BaseURL)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://u:p@db:5432/mlm"})

	_, err := Load()
	var missing *MissingEnvError
	if !errors.As(err, &missing) {
		t.Fatalf("Load() error = %v, want *MissingEnvError", err)
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	setEnv(t, map[string]string{
		"JWT_SECRET":   "s3cret",
		"DATABASE_URL": "postgres://u:p@db:5432/mlm",
		"LOG_LEVEL":    "verbose",
	})

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestParseOrigins(t *testing.T) {
	tests := []struct {
		raw  string
		want []string
	}{
		{"https://a.com,https://b.com", []string{"https://a.com", "https://b.com"}},
		{" https://a.com , https://b.com ,", []string{"https://a.com", "https://b.com"}},
		{"https://only.com", []string{"https://only.com"}},
		{"", DefaultCORSOrigins},
		{" , ", DefaultCORSOrigins},
	}

	for _, tt := range tests {
		if got := ParseOrigins(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseOrigins(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
