// Package validation binds request data and turns validator failures into
// field-level errors clients can act on.
//
// Request types declare their rules with `validate` struct tags and
// implement Validatable by calling validator.Struct on themselves.
package validation

import "github.com/go-playground/validator/v10"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Struct validates v against its `validate` tags using the shared validator.
func Struct(v any) error {
	return validate.Struct(v)
}
