package archons

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	archio "github.com/dzonerzy/go-archons/io"
	"github.com/dzonerzy/go-archons/middleware"
)

// LogEnv names the environment variable selecting the runner's log level
// (debug, info, warn, error, off).
const LogEnv = "ARCHONS_LOG"

// Runner compiles a command tree, parses an argument vector against it and
// dispatches the terminal command's callback through the middleware chain.
type Runner struct {
	io           *archio.IOManager
	logger       *archio.Logger
	middleware   []middleware.Middleware
	errorHandler *ErrorHandler
	exitCodes    *ExitCodeManager
	env          func(string) (string, bool)
	exit         func(int)
}

// NewRunner creates a runner writing to the process streams.
func NewRunner() *Runner {
	return &Runner{
		io:           archio.New(),
		errorHandler: NewErrorHandler(),
		exitCodes:    newExitCodeManager(),
		env:          os.LookupEnv,
		exit:         os.Exit,
	}
}

// WithIO replaces the streams help, errors and callbacks write to.
func (r *Runner) WithIO(io *archio.IOManager) *Runner {
	r.io = io
	return r
}

// WithLogger sets the logger used for compile warnings and the parse trace.
// By default the level comes from ARCHONS_LOG and messages go to stderr.
func (r *Runner) WithLogger(l *archio.Logger) *Runner {
	r.logger = l
	return r
}

// WithEnv replaces the environment lookup used for option fallbacks and
// ARCHONS_LOG.
func (r *Runner) WithEnv(lookup func(string) (string, bool)) *Runner {
	r.env = lookup
	return r
}

// Use appends middleware wrapped around every callback.
func (r *Runner) Use(mw ...middleware.Middleware) *Runner {
	r.middleware = append(r.middleware, mw...)
	return r
}

// IO returns the runner's IOManager.
func (r *Runner) IO() *archio.IOManager { return r.io }

// ErrorHandler returns the runner's error handler for configuration
func (r *Runner) ErrorHandler() *ErrorHandler { return r.errorHandler }

// ExitCodes returns the exit-code manager. Use it to override defaults or
// register custom mappings.
func (r *Runner) ExitCodes() *ExitCodeManager { return r.exitCodes }

func (r *Runner) log() *archio.Logger {
	if r.logger != nil {
		return r.logger
	}
	stderr := archio.New().WithOut(r.io.Err()).WithErr(r.io.Err())
	l := archio.NewLogger(stderr).WithLevel(archio.LevelWarning)
	if v, ok := r.env(LogEnv); ok {
		if level, ok := archio.ParseLevel(v); ok {
			l.WithLevel(level)
		}
	}
	r.logger = l
	return l
}

// Execute runs cmd against argv, whose first entry is the program.
// Help and version requests return ErrHelpShown and ErrVersionShown after
// printing to standard output. Parse errors are printed to standard error
// and returned as *ParseError. Compile errors are returned unprinted.
func (r *Runner) Execute(ctx context.Context, cmd *Command, argv []string) error {
	return r.execute(ctx, cmd, argv, 1)
}

func (r *Runner) execute(ctx context.Context, cmd *Command, raw []string, skip int) error {
	log := r.log()

	prog, err := Compile(cmd)
	if err != nil {
		return err
	}
	for _, w := range prog.Warnings() {
		log.Warning("%s", w)
	}
	prog = prog.WithEnv(r.env)

	var bin string
	var args []string
	if len(raw) >= skip {
		bin = filepath.Base(raw[skip-1])
		args = raw[skip:]
	}
	log.Debug("parsing %q as %s", args, bin)

	result, err := prog.ParseAs(bin, args)
	if err != nil {
		var parseErr *ParseError
		if errors.As(err, &parseErr) {
			parseErr = r.errorHandler.Process(parseErr)
			log.Debug("parse failed: %s (%s)", parseErr.Type, strings.Join(parseErr.Command, " "))
			fmt.Fprint(r.io.Err(), r.errorHandler.Format(parseErr))
			return parseErr
		}
		return err
	}
	log.Debug("selected %s", strings.Join(result.Path, " "))

	switch result.Outcome {
	case OutcomeHelp:
		var style *helpStyle
		if r.io.SupportsColor() {
			style = colorStyle()
		}
		fmt.Fprint(r.io.Out(), renderHelp(result.level, result.bin, style))
		return ErrHelpShown
	case OutcomeVersion:
		fmt.Fprintln(r.io.Out(), result.Version())
		return ErrVersionShown
	case OutcomeRun:
	}

	callback := result.level.cmd.Callback
	if callback == nil {
		log.Debug("'%s' has no callback", strings.Join(result.Path, " "))
		return nil
	}

	execCtx := newContext(ctx, result, raw, r.io)
	defer execCtx.cancel()
	for _, key := range execCtx.Keys() {
		v, _ := execCtx.Get(key)
		log.Debug("  %s = %s", key, v)
	}

	action := func(mctx middleware.Context) error {
		c, ok := mctx.(*Context)
		if !ok {
			return NewParseError(ErrorTypeInternal, "invalid middleware context type")
		}
		callback(c)
		if c.exit != nil {
			return c.exit
		}
		return nil
	}
	err = middleware.Chain(r.middleware...).Apply(action)(execCtx)

	if execCtx.exit != nil {
		if execCtx.exit.Err != nil {
			fmt.Fprintf(r.io.Err(), "error: %v\n", execCtx.exit.Err)
		}
		return execCtx.exit
	}
	return err
}

// RunAndGetExitCode executes cmd and returns the mapped exit code. Compile
// errors are reported on standard error.
func (r *Runner) RunAndGetExitCode(cmd *Command, argv []string) int {
	return r.code(r.Execute(context.Background(), cmd, argv))
}

func (r *Runner) code(err error) int {
	if err == nil {
		return r.exitCodes.Resolve(nil)
	}
	var parseErr *ParseError
	var exitErr *ExitError
	if !errors.As(err, &parseErr) && !errors.As(err, &exitErr) &&
		!errors.Is(err, ErrHelpShown) && !errors.Is(err, ErrVersionShown) {
		fmt.Fprintf(r.io.Err(), "error: %v\n", err)
	}
	return r.exitCodes.Resolve(err)
}

// Run executes cmd against argv, whose first entry is the program, and
// terminates the process when the run did not end in a successful callback.
func (r *Runner) Run(cmd *Command, argv []string) {
	r.finish(r.Execute(context.Background(), cmd, argv))
}

func (r *Runner) finish(err error) {
	if err != nil {
		r.exit(r.code(err))
	}
}

// Run parses the process arguments against cmd and invokes the selected
// command's callback. With no args, os.Args is used and its first entry
// skipped. Supplied args follow the interpreter convention: the first two
// entries are skipped.
//
// Help and version requests exit with status 0, parse and compile errors
// with a non-zero status. A successful callback returns normally unless it
// called Context.Exit.
func Run(cmd *Command, args ...string) {
	r := NewRunner()
	if args == nil {
		r.finish(r.execute(context.Background(), cmd, os.Args, 1))
		return
	}
	r.finish(r.execute(context.Background(), cmd, args, 2))
}
