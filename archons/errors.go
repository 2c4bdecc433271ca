package archons

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dzonerzy/go-archons/internal/fuzzy"
)

// ErrorType represents error categories for parse operations.
// These categories drive suggestion logic and exit-code mapping (via ExitCodeManager).
type ErrorType string

const (
	ErrorTypeCompile            ErrorType = "compile_error"
	ErrorTypeUnknownOption      ErrorType = "unknown_option"
	ErrorTypeTooFewValues       ErrorType = "too_few_values"
	ErrorTypeTooManyValues      ErrorType = "too_many_values"
	ErrorTypeType               ErrorType = "type_error"
	ErrorTypeMissingRequired    ErrorType = "missing_required"
	ErrorTypeMissingSubcommand  ErrorType = "missing_subcommand"
	ErrorTypeExclusiveConflict  ErrorType = "exclusive_conflict"
	ErrorTypeConflictingOptions ErrorType = "conflicting_options"
	ErrorTypeUnexpectedArgument ErrorType = "unexpected_argument"
	ErrorTypeInternal           ErrorType = "internal_error"
)

var (
	// ErrHelpShown is returned by Runner.Execute after help was printed.
	ErrHelpShown = errors.New("help shown")
	// ErrVersionShown is returned by Runner.Execute after the version was printed.
	ErrVersionShown = errors.New("version shown")
)

// ParseError describes why an argument vector was rejected.
type ParseError struct {
	Type    ErrorType
	Message string
	// Option is the display name of the offending option ("--config", "<FILE>").
	Option string
	// Value is the offending raw value, if any.
	Value string
	// Expected describes the expected arity or type.
	Expected string
	// Command is the path of the command being parsed, root first.
	Command     []string
	Suggestions []string

	level      *resolvedCommand
	bin        string
	candidates []string
}

func (e *ParseError) Error() string {
	return e.Message
}

// NewParseError creates a new ParseError with the given type and message
func NewParseError(errType ErrorType, message string) *ParseError {
	return &ParseError{
		Type:    errType,
		Message: message,
	}
}

// CompileError describes one defect of a command tree. Compile reports all
// defects found, aggregated in a *multierror.Error.
type CompileError struct {
	// Command is the space separated path of the command declaring the defect.
	Command string
	// Option is the key of the offending option, if any.
	Option  string
	Message string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	b.WriteString("command '")
	b.WriteString(e.Command)
	b.WriteString("'")
	if e.Option != "" {
		b.WriteString(": option '")
		b.WriteString(e.Option)
		b.WriteString("'")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// ErrorHandler enriches parse errors with fuzzy matching suggestions and
// formats them for the terminal.
type ErrorHandler struct {
	suggest        bool
	maxDistance    int
	customHandlers map[ErrorType]func(*ParseError) *ParseError
}

// NewErrorHandler creates a new error handler with defaults
func NewErrorHandler() *ErrorHandler {
	return &ErrorHandler{
		suggest:        true,
		maxDistance:    2,
		customHandlers: make(map[ErrorType]func(*ParseError) *ParseError),
	}
}

// Suggest enables/disables "did you mean" suggestions
func (eh *ErrorHandler) Suggest(enabled bool) *ErrorHandler {
	eh.suggest = enabled
	return eh
}

// MaxDistance sets the maximum edit distance for suggestions
func (eh *ErrorHandler) MaxDistance(distance int) *ErrorHandler {
	eh.maxDistance = distance
	return eh
}

// Handle registers a custom handler for a specific error type
func (eh *ErrorHandler) Handle(typ ErrorType, handler func(*ParseError) *ParseError) *ErrorHandler {
	eh.customHandlers[typ] = handler
	return eh
}

// Process applies custom handlers and adds suggestions based on the error type.
func (eh *ErrorHandler) Process(err *ParseError) *ParseError {
	if handler, ok := eh.customHandlers[err.Type]; ok {
		err = handler(err)
	}
	if !eh.suggest || len(err.candidates) == 0 {
		return err
	}

	switch err.Type { // exhaustive over ErrorType
	case ErrorTypeUnknownOption:
		input := strings.TrimLeft(err.Option, "-")
		if best := fuzzy.FindBestFlag(input, err.candidates, eh.maxDistance); best != "" {
			err.Suggestions = append(err.Suggestions, fmt.Sprintf("a similar argument exists: '--%s'", best))
		}
	case ErrorTypeUnexpectedArgument:
		if best := fuzzy.FindBestCommand(err.Value, err.candidates, eh.maxDistance); best != "" {
			err.Suggestions = append(err.Suggestions, fmt.Sprintf("a similar subcommand exists: '%s'", best))
		}
	case ErrorTypeCompile, ErrorTypeTooFewValues, ErrorTypeTooManyValues, ErrorTypeType,
		ErrorTypeMissingRequired, ErrorTypeMissingSubcommand, ErrorTypeExclusiveConflict,
		ErrorTypeConflictingOptions, ErrorTypeInternal:
		// No suggestions for these.
	}
	return err
}

// Format renders err the way it is printed on standard error.
func (eh *ErrorHandler) Format(err *ParseError) string {
	var b strings.Builder
	b.WriteString("error: ")
	b.WriteString(err.Message)
	b.WriteString("\n")
	if len(err.Suggestions) > 0 {
		b.WriteString("\n")
		for _, s := range err.Suggestions {
			b.WriteString("  tip: ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}
	if err.level != nil {
		b.WriteString("\nUsage: ")
		b.WriteString(usageLine(err.level, err.bin))
		b.WriteString("\n")
	}
	b.WriteString("\nFor more information, try '--help'.\n")
	return b.String()
}
