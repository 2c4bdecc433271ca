package middleware

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ValidatorFunc represents a custom validation function for business logic validation.
// Structural rules (required, exclusive, conflictsWith, arity) are enforced by
// the parser; use validators for checks that need runtime state:
// - File system checks (file/directory existence)
// - Value ranges and enumerations
// - Conditional requirements based on business logic
type ValidatorFunc func(ctx Context) error

// NamedValidator associates a human-readable name with a ValidatorFunc for
// clearer error reporting and easier composition.
type NamedValidator struct {
	Name string
	Fn   ValidatorFunc
}

// Validator creates a middleware running the validators registered with
// WithCustomValidators before the callback.
func Validator(options ...MiddlewareOption) Middleware {
	config := DefaultConfig()
	for _, option := range options {
		option(config)
	}
	validators := make([]NamedValidator, 0, len(config.CustomValidators))
	for name, fn := range config.CustomValidators {
		validators = append(validators, NamedValidator{Name: name, Fn: fn})
	}
	return Validate(validators...)
}

// Validate composes a set of NamedValidators into a single Middleware. They
// run in order; the first failure stops the invocation.
//
// Example:
//
//	runner.Use(middleware.Validate(
//	    middleware.Custom("port_range", checkPort),
//	    middleware.File("config"),
//	))
func Validate(validators ...NamedValidator) Middleware {
	return func(next ActionFunc) ActionFunc {
		return func(ctx Context) error {
			for _, v := range validators {
				if v.Fn == nil {
					continue
				}
				if err := v.Fn(ctx); err != nil {
					validationErr := &ValidationError{}
					if errors.As(err, &validationErr) {
						return validationErr
					}
					return &ValidationError{
						Field:   v.Name,
						Message: "validation failed",
						Cause:   err,
					}
				}
			}
			return next(ctx)
		}
	}
}

// Custom wraps an arbitrary ValidatorFunc with a name for reporting.
func Custom(name string, fn ValidatorFunc) NamedValidator {
	return NamedValidator{Name: name, Fn: fn}
}

// File returns a NamedValidator that ensures the given options name existing files.
func File(keys ...string) NamedValidator {
	return NamedValidator{Name: "file_exists", Fn: FileExists(keys...)}
}

// Dir returns a NamedValidator that ensures the given options name existing directories.
func Dir(keys ...string) NamedValidator {
	return NamedValidator{Name: "directory_exists", Fn: DirectoryExists(keys...)}
}

// ConditionalRequired makes keys required when condition returns nil.
func ConditionalRequired(condition ValidatorFunc, keys ...string) ValidatorFunc {
	return func(ctx Context) error {
		if err := condition(ctx); err != nil {
			return nil
		}
		var missing []string
		for _, key := range keys {
			if !isSet(ctx, key) {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			return &ValidationError{
				Field:   strings.Join(missing, ", "),
				Message: fmt.Sprintf("options required when condition is met: %s", strings.Join(missing, ", ")),
			}
		}
		return nil
	}
}

// Range ensures a number option lies within [lo, hi].
func Range(key string, lo, hi float64) ValidatorFunc {
	return func(ctx Context) error {
		n, ok := ctx.Number(key)
		if !ok {
			return nil
		}
		if n < lo || n > hi {
			return &ValidationError{
				Field:   key,
				Value:   n,
				Message: fmt.Sprintf("value of '%s' must be between %g and %g", key, lo, hi),
			}
		}
		return nil
	}
}

// OneOf ensures a string option takes one of the allowed values.
func OneOf(key string, allowed ...string) ValidatorFunc {
	return func(ctx Context) error {
		s, ok := ctx.String(key)
		if !ok {
			return nil
		}
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return &ValidationError{
			Field:   key,
			Value:   s,
			Message: fmt.Sprintf("value of '%s' must be one of: %s", key, strings.Join(allowed, ", ")),
		}
	}
}

// FileExists creates a validator that ensures options point to existing files
func FileExists(keys ...string) ValidatorFunc {
	return func(ctx Context) error {
		for _, key := range keys {
			for _, path := range pathsOf(ctx, key) {
				if err := validateFileExists(path); err != nil {
					return &ValidationError{
						Field:   key,
						Value:   path,
						Message: fmt.Sprintf("file validation failed for '%s'", key),
						Cause:   err,
					}
				}
			}
		}
		return nil
	}
}

// DirectoryExists creates a validator that ensures options point to existing directories
func DirectoryExists(keys ...string) ValidatorFunc {
	return func(ctx Context) error {
		for _, key := range keys {
			for _, path := range pathsOf(ctx, key) {
				if err := validateDirectoryExists(path); err != nil {
					return &ValidationError{
						Field:   key,
						Value:   path,
						Message: fmt.Sprintf("directory validation failed for '%s'", key),
						Cause:   err,
					}
				}
			}
		}
		return nil
	}
}

// Helper functions

// pathsOf returns the non-empty strings held by key, scalar or list.
func pathsOf(ctx Context, key string) []string {
	values, ok := ctx.Strings(key)
	if !ok {
		return nil
	}
	out := values[:0:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// isSet reports whether key holds a non-zero value.
func isSet(ctx Context, key string) bool {
	v, ok := ctx.Lookup(key)
	if !ok {
		return false
	}
	switch x := v.(type) {
	case string:
		return x != ""
	case float64:
		return x != 0
	case bool:
		return x
	case int:
		return x != 0
	case []any:
		return len(x) > 0
	}
	return v != nil
}

func validateFileExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func validateDirectoryExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}

// Convenience constructors

// NoopValidator creates a validator that doesn't perform any validation.
func NoopValidator() Middleware {
	return func(next ActionFunc) ActionFunc {
		return next
	}
}

// FileSystemValidator creates a validator that checks file and directory existence.
func FileSystemValidator(fileKeys, dirKeys []string) Middleware {
	var validators []NamedValidator
	if len(fileKeys) > 0 {
		validators = append(validators, File(fileKeys...))
	}
	if len(dirKeys) > 0 {
		validators = append(validators, Dir(dirKeys...))
	}
	return Validate(validators...)
}

// WithCustomValidators adds custom validators to the middleware config
func WithCustomValidators(validators map[string]ValidatorFunc) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		if config.CustomValidators == nil {
			config.CustomValidators = make(map[string]ValidatorFunc)
		}
		for name, validator := range validators {
			config.CustomValidators[name] = validator
		}
	}
}
