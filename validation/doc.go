// Package validation provides input validation utilities for resilkit
// configuration and callers.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// used for config profiles; the fluent validator suits hand-built checks.
//
// # Struct Tag Validation
//
//	type Settings struct {
//	    MaxAttempts int     `validate:"min=1"`
//	    Jitter      float64 `validate:"min=0,max=1"`
//	}
//	err := validation.Validate(settings)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("name", name).Ratio("jitter", jitter)
//	if appErr := v.Validate(); appErr != nil { ... }
package validation
