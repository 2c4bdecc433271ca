// Package middleware provides built-in middleware wrapped around archons
// callbacks: Logger, Recovery and Validator.
package middleware

import (
	"context"
	"fmt"
	"time"
)

// This package defines middleware using interfaces to avoid import cycles.
// *archons.Context satisfies Context and *archons.Command satisfies Command.

// Context describes the resolved invocation that middleware can rely on. It
// is implemented by *archons.Context.
type Context interface {
	// Context returns the Go context the invocation runs under.
	Context() context.Context

	// RawArgs returns the original argument vector, untouched.
	RawArgs() []string

	// Keys returns the keys of the resolved values in declaration order.
	Keys() []string

	// Lookup returns the resolved value of key as string, float64, bool, int
	// or []any.
	Lookup(key string) (any, bool)

	// String returns the value of a string option and whether it is present.
	String(key string) (string, bool)

	// Number returns the value of a number option and whether it is present.
	Number(key string) (float64, bool)

	// Bool returns the value of a boolean option or flag and whether it is present.
	Bool(key string) (bool, bool)

	// Count returns the number of occurrences of a count option.
	Count(key string) (int, bool)

	// Strings returns a list value as strings; a scalar yields one element.
	Strings(key string) ([]string, bool)

	// Set stores a key/value pair in the context metadata. Keys should be
	// namespaced to avoid collisions (e.g., "logger.request_id").
	Set(key string, value any)

	// Metadata retrieves a value previously stored via Set, or nil.
	Metadata(key string) any

	// Command returns the terminal command.
	Command() Command
}

// Command interface will be satisfied by *archons.Command
type Command interface {
	Name() string
	About() string
}

// ActionFunc represents the wrapped callback. A non-nil error stops the
// invocation and is mapped to an exit code by the runner.
type ActionFunc func(ctx Context) error

// Middleware defines the middleware function signature
type Middleware func(next ActionFunc) ActionFunc

// MiddlewareChain represents a chain of middleware functions
type MiddlewareChain []Middleware

// Apply applies the middleware chain to an ActionFunc. Middleware are wrapped
// in the order they appear in the chain.
func (chain MiddlewareChain) Apply(action ActionFunc) ActionFunc {
	for i := len(chain) - 1; i >= 0; i-- {
		action = chain[i](action)
	}
	return action
}

// Use returns a new chain with the provided middleware appended.
func (chain MiddlewareChain) Use(middleware ...Middleware) MiddlewareChain {
	return append(chain, middleware...)
}

// Chain creates a new middleware chain from the provided middleware, preserving
// order.
func Chain(middleware ...Middleware) MiddlewareChain {
	return MiddlewareChain(middleware)
}

// Error types for middleware

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Value   any
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Cause }

// RecoveryError represents a panic recovery
type RecoveryError struct {
	Panic   any
	Command string
	Stack   []byte
}

func (e *RecoveryError) Error() string {
	return "command '" + e.Command + "' panicked: " + toString(e.Panic)
}

// Configuration types

// MiddlewareConfig contains configuration for middleware behavior
type MiddlewareConfig struct {
	LogLevel         LogLevel
	LogOutput        LogOutput
	LogFormat        LogFormat
	IncludeArgs      bool
	IncludeValues    bool
	PrintStack       bool
	StackSize        int
	CustomValidators map[string]ValidatorFunc
}

// LogLevel represents logging levels
type LogLevel int

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// LogOutput represents log output destinations
type LogOutput int

const (
	LogOutputStderr LogOutput = iota
	LogOutputStdout
	LogOutputNone
)

// LogFormat represents log formats
type LogFormat int

const (
	LogFormatText LogFormat = iota
	LogFormatJSON
)

// RequestInfo contains information about one callback invocation
type RequestInfo struct {
	Command   string
	Args      []string
	Values    map[string]any
	StartTime time.Time
	Duration  time.Duration
	Error     error
	Metadata  map[string]any
}

// Configuration options

type MiddlewareOption func(config *MiddlewareConfig)

func DefaultConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		LogLevel:         LogLevelInfo,
		LogOutput:        LogOutputStderr,
		LogFormat:        LogFormatText,
		IncludeArgs:      true,
		PrintStack:       true,
		StackSize:        4096,
		CustomValidators: make(map[string]ValidatorFunc),
	}
}

func WithLogLevel(level LogLevel) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.LogLevel = level
	}
}

func WithStackTrace(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.PrintStack = enabled
	}
}

// WithValues includes the resolved values in log entries.
func WithValues(enabled bool) MiddlewareOption {
	return func(config *MiddlewareConfig) {
		config.IncludeValues = enabled
	}
}

// Utility functions

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return "<nil>"
	case string:
		return x
	case error:
		return x.Error()
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprintf("%v", x)
	}
}

func getCommandName(ctx Context) string {
	cmd := ctx.Command()
	if cmd == nil || cmd.Name() == "" {
		return "unknown"
	}
	return cmd.Name()
}
