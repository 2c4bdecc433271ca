package archons

import (
	"errors"
	"reflect"

	"github.com/dzonerzy/go-archons/middleware"
)

// ExitError is used to request a specific exit code from inside callbacks.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "exit"
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCodeDefaults holds common default codes.
type ExitCodeDefaults struct {
	Success         int // default: 0
	GeneralError    int // default: 1
	MisusageError   int // default: 2
	ValidationError int // default: 3
}

func defaultExitDefaults() ExitCodeDefaults {
	return ExitCodeDefaults{Success: 0, GeneralError: 1, MisusageError: 2, ValidationError: 3}
}

// ExitCodeManager maps errors and categories to process exit codes.
type ExitCodeManager struct {
	codesByType map[reflect.Type]int
	codesByCLI  map[ErrorType]int
	defaults    ExitCodeDefaults
}

func newExitCodeManager() *ExitCodeManager {
	m := &ExitCodeManager{
		codesByType: make(map[reflect.Type]int),
		codesByCLI:  make(map[ErrorType]int),
		defaults:    defaultExitDefaults(),
	}
	m.Default(m.defaults)
	return m
}

// DefineError maps a concrete error value (by its dynamic type) to an exit
// code. A matching type wins over the defaults but loses to an ExitError
// requested by the callback.
func (e *ExitCodeManager) DefineError(err error, code int) *ExitCodeManager {
	if err == nil {
		return e
	}
	e.codesByType[reflect.TypeOf(err)] = code
	return e
}

// DefineCLI overrides the exit code used for a parse error category.
func (e *ExitCodeManager) DefineCLI(typ ErrorType, code int) *ExitCodeManager {
	e.codesByCLI[typ] = code
	return e
}

// Default replaces the default codes and re-derives the category mappings
// from them. Category overrides made with DefineCLI before are lost.
func (e *ExitCodeManager) Default(d ExitCodeDefaults) *ExitCodeManager {
	e.defaults = d
	for _, typ := range []ErrorType{
		ErrorTypeUnknownOption, ErrorTypeTooFewValues, ErrorTypeTooManyValues,
		ErrorTypeType, ErrorTypeMissingRequired, ErrorTypeMissingSubcommand,
		ErrorTypeExclusiveConflict, ErrorTypeConflictingOptions, ErrorTypeUnexpectedArgument,
	} {
		e.codesByCLI[typ] = d.MisusageError
	}
	e.codesByCLI[ErrorTypeCompile] = d.GeneralError
	e.codesByCLI[ErrorTypeInternal] = d.GeneralError
	e.codesByType[reflect.TypeOf(&middleware.ValidationError{})] = d.ValidationError
	e.codesByType[reflect.TypeOf(&middleware.RecoveryError{})] = d.GeneralError
	return e
}

// Resolve converts an error to an exit code.
// Precedence:
//  1. ExitError (requested code)
//  2. help and version sentinels (success)
//  3. ParseError category mapping (DefineCLI)
//  4. CompileError (general error, or the compile_error mapping)
//  5. Concrete error type mapping (DefineError)
//  6. Default codes
func (e *ExitCodeManager) Resolve(err error) int {
	if err == nil {
		return e.defaults.Success
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}

	if errors.Is(err, ErrHelpShown) || errors.Is(err, ErrVersionShown) {
		return e.defaults.Success
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if code, ok := e.codesByCLI[parseErr.Type]; ok {
			return code
		}
		return e.defaults.MisusageError
	}

	var compileErr *CompileError
	if errors.As(err, &compileErr) {
		if code, ok := e.codesByCLI[ErrorTypeCompile]; ok {
			return code
		}
		return e.defaults.GeneralError
	}

	for t, code := range e.codesByType {
		if errors.As(err, reflect.New(t).Interface()) {
			return code
		}
	}

	return e.defaults.GeneralError
}
