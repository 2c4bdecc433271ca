package archons

import (
	"context"
	stdio "io"
	"math"

	archio "github.com/dzonerzy/go-archons/io"
	"github.com/dzonerzy/go-archons/middleware"
)

// Context is handed to a command's callback. It carries the resolved values
// of the terminal command, the untouched argument vector and the IO streams.
type Context struct {
	ctx      context.Context
	cancel   context.CancelFunc
	result   *ParseResult
	rawArgs  []string
	io       *archio.IOManager
	metadata map[string]any
	exit     *ExitError
}

func newContext(ctx context.Context, result *ParseResult, rawArgs []string, io *archio.IOManager) *Context {
	ctx, cancel := context.WithCancel(ctx)
	return &Context{
		ctx:      ctx,
		cancel:   cancel,
		result:   result,
		rawArgs:  rawArgs,
		io:       io,
		metadata: make(map[string]any),
	}
}

// Context returns the underlying Go context. It is cancelled by Exit.
func (c *Context) Context() context.Context { return c.ctx }

// RawArgs returns the argument vector exactly as it was supplied, program
// entries included.
func (c *Context) RawArgs() []string { return append([]string(nil), c.rawArgs...) }

// Args returns a copy of the resolved values keyed by option key.
func (c *Context) Args() map[string]Value {
	out := make(map[string]Value, len(c.result.Args))
	for k, v := range c.result.Args {
		out[k] = v
	}
	return out
}

// Keys returns the keys present in Args in declaration order: named options
// first (own, then inherited globals), then positionals.
func (c *Context) Keys() []string { return c.result.Keys() }

// Get returns the resolved value of key.
func (c *Context) Get(key string) (Value, bool) {
	v, ok := c.result.Args[key]
	return v, ok
}

// Has reports whether key has a value.
func (c *Context) Has(key string) bool {
	_, ok := c.result.Args[key]
	return ok
}

// Lookup returns the value of key as a plain Go value.
func (c *Context) Lookup(key string) (any, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return nil, false
	}
	return v.Interface(), true
}

// String returns the value of a string option.
func (c *Context) String(key string) (string, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return "", false
	}
	return v.AsString()
}

// Number returns the value of a number option.
func (c *Context) Number(key string) (float64, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return 0, false
	}
	return v.AsNumber()
}

// Int returns a number option holding an integral value, or a count.
func (c *Context) Int(key string) (int, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return 0, false
	}
	if n, ok := v.AsCount(); ok {
		return n, true
	}
	n, ok := v.AsNumber()
	if !ok || n != math.Trunc(n) || n > math.MaxInt || n < math.MinInt {
		return 0, false
	}
	return int(n), true
}

// Bool returns the value of a boolean option or flag.
func (c *Context) Bool(key string) (bool, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return false, false
	}
	return v.AsBool()
}

// Count returns the number of occurrences of a count option.
func (c *Context) Count(key string) (int, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return 0, false
	}
	return v.AsCount()
}

// Strings returns a list value rendered as strings. A scalar yields a single
// element.
func (c *Context) Strings(key string) ([]string, bool) {
	v, ok := c.result.Args[key]
	if !ok {
		return nil, false
	}
	list, isList := v.AsList()
	if !isList {
		return []string{v.String()}, true
	}
	out := make([]string, len(list))
	for i, item := range list {
		out[i] = item.String()
	}
	return out, true
}

// Set stores a key-value pair in the context metadata.
func (c *Context) Set(key string, value any) { c.metadata[key] = value }

// Metadata retrieves a value stored with Set.
func (c *Context) Metadata(key string) any { return c.metadata[key] }

// Command returns the terminal command as seen by middleware. Its name is
// the name it was selected by.
func (c *Context) Command() middleware.Command {
	return selectedCommand{name: c.result.Path[len(c.result.Path)-1], about: c.result.level.meta.About}
}

type selectedCommand struct{ name, about string }

func (s selectedCommand) Name() string  { return s.name }
func (s selectedCommand) About() string { return s.about }

// Spec returns the declared command the callback belongs to.
func (c *Context) Spec() *Command { return c.result.level.cmd }

// CommandPath returns the selected command names, program first.
func (c *Context) CommandPath() []string { return append([]string(nil), c.result.Path...) }

// IO accessors
func (c *Context) IO() *archio.IOManager { return c.io }
func (c *Context) Stdout() stdio.Writer  { return c.io.Out() }
func (c *Context) Stderr() stdio.Writer  { return c.io.Err() }
func (c *Context) Stdin() stdio.Reader   { return c.io.In() }

// Exit requests the process exit code once the callback returns and
// cancels the context.
func (c *Context) Exit(code int) {
	c.exit = &ExitError{Code: code}
	c.cancel()
}

// ExitWithError is like Exit but reports err on standard error.
func (c *Context) ExitWithError(err error, code int) {
	c.exit = &ExitError{Code: code, Err: err}
	c.cancel()
}
