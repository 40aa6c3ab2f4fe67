package config

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MissingEnvError reports required environment variables that are unset or empty.
//
// It is returned instead of exiting so callers (tests, the entry point) decide
// what a missing variable means for them.
type MissingEnvError struct {
	// Keys holds the missing variable names, in declaration order.
	Keys []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Keys, ", ")
}

// envValidator reports struct fields by their `env` tag, so a failed
// `required` check on JWTSecret surfaces as "JWT_SECRET".
var envValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("env"); name != "" {
			return name
		}
		return fld.Name
	})
	return v
}()

// missingKeys validates an env-tagged struct and collects the failing names.
// It returns nil when every field is present.
func missingKeys(v any) *MissingEnvError {
	err := envValidator.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &MissingEnvError{Keys: []string{err.Error()}}
	}

	keys := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		keys = append(keys, fe.Field())
	}
	return &MissingEnvError{Keys: keys}
}
