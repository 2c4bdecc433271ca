package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dzonerzy/go-archons/archons"
	"github.com/dzonerzy/go-archons/archons/treefile"
)

// loaded is a tree file turned into a compiled program. Callbacks named in
// the file are bound to no-ops.
type loaded struct {
	doc  *treefile.Document
	cmd  *archons.Command
	prog *archons.Program
}

func load(path string) (*loaded, error) {
	doc, err := treefile.Load(path)
	if err != nil {
		return nil, err
	}
	callbacks := treefile.Callbacks{}
	for _, name := range doc.CallbackNames() {
		callbacks[name] = func(*archons.Context) {}
	}
	cmd, err := doc.Command(callbacks)
	if err != nil {
		return nil, err
	}
	prog, err := archons.Compile(cmd)
	if err != nil {
		return nil, err
	}
	return &loaded{doc: doc, cmd: cmd, prog: prog}, nil
}

func check(ctx *archons.Context) {
	path, _ := ctx.String("file")
	strict, _ := ctx.Bool("strict")

	l, err := load(path)
	if err != nil {
		ctx.ExitWithError(err, 1)
		return
	}
	warnings := l.prog.Warnings()
	for _, w := range warnings {
		fmt.Fprintf(ctx.Stderr(), "warning: %s\n", w)
	}
	if strict && len(warnings) > 0 {
		ctx.ExitWithError(fmt.Errorf("%s: %d warning(s)", path, len(warnings)), 1)
		return
	}

	commands, options := 0, 0
	walk(l.cmd, nil, func(_ []string, cmd *archons.Command) {
		commands++
		if cmd.Options != nil {
			options += cmd.Options.Len()
		}
	})
	fmt.Fprintf(ctx.Stdout(), "ok: %s: %d command(s), %d option(s)\n", path, commands, options)
}

func explain(ctx *archons.Context) {
	path, _ := ctx.String("file")
	l, err := load(path)
	if err != nil {
		ctx.ExitWithError(err, 1)
		return
	}

	var paths [][]string
	if only, ok := ctx.Strings("command"); ok {
		if err := resolvePath(l.cmd, only); err != nil {
			ctx.ExitWithError(err, 2)
			return
		}
		paths = append(paths, only)
	} else {
		walk(l.cmd, nil, func(path []string, _ *archons.Command) {
			paths = append(paths, path)
		})
	}

	for i, p := range paths {
		res, err := l.prog.Parse(append(append([]string{}, p...), "--help"))
		if err != nil {
			reportParseError(ctx, err)
			return
		}
		if i > 0 {
			fmt.Fprintln(ctx.Stdout())
		}
		fmt.Fprintf(ctx.Stdout(), "# %s\n\n", strings.Join(res.Path, " "))
		fmt.Fprint(ctx.Stdout(), res.Help())
	}
}

// report is the JSON form of a parse result.
type report struct {
	Outcome  string                   `json:"outcome"`
	Path     []string                 `json:"path"`
	Callback string                   `json:"callback,omitempty"`
	Args     map[string]archons.Value `json:"args,omitempty"`
	Keys     []string                 `json:"keys,omitempty"`
	Output   string                   `json:"output,omitempty"`
}

func parse(ctx *archons.Context) {
	path, _ := ctx.String("file")
	compact, _ := ctx.Bool("compact")
	args, _ := ctx.Strings("args")
	pairs, _ := ctx.Strings("env")

	env, err := parseEnv(pairs)
	if err != nil {
		ctx.ExitWithError(err, 2)
		return
	}
	l, err := load(path)
	if err != nil {
		ctx.ExitWithError(err, 1)
		return
	}

	res, err := l.prog.WithEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}).Parse(args)
	if err != nil {
		reportParseError(ctx, err)
		return
	}

	out := report{Outcome: res.Outcome.String(), Path: res.Path}
	switch res.Outcome {
	case archons.OutcomeRun:
		out.Args = res.Args
		out.Keys = res.Keys()
		if doc, ok := l.doc.Lookup(res.Path[1:]...); ok {
			out.Callback = doc.Callback
		}
	case archons.OutcomeHelp:
		out.Output = res.Help()
	case archons.OutcomeVersion:
		out.Output = res.Version()
	}

	enc := json.NewEncoder(ctx.Stdout())
	if !compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(out); err != nil {
		ctx.ExitWithError(err, 1)
	}
}

func parseEnv(pairs []string) (map[string]string, error) {
	env := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid environment assignment %q (want KEY=VALUE)", pair)
		}
		env[key] = value
	}
	return env, nil
}

// reportParseError prints a parse error of the loaded tree the way the
// runner prints its own and exits with status 2.
func reportParseError(ctx *archons.Context, err error) {
	var parseErr *archons.ParseError
	if !errors.As(err, &parseErr) {
		ctx.ExitWithError(err, 1)
		return
	}
	h := archons.NewErrorHandler()
	fmt.Fprint(ctx.Stderr(), h.Format(h.Process(parseErr)))
	ctx.Exit(2)
}

// resolvePath checks that path names a subcommand of root.
func resolvePath(root *archons.Command, path []string) error {
	cmd := root
	for i, name := range path {
		var names []string
		var next *archons.Command
		if cmd.Subcommands != nil {
			for pair := cmd.Subcommands.Oldest(); pair != nil; pair = pair.Next() {
				names = append(names, pair.Key)
				if pair.Key == name {
					next = pair.Value
				}
			}
		}
		if next == nil {
			where := strings.Join(append([]string{root.Meta.Name}, path[:i]...), " ")
			return fmt.Errorf("no subcommand '%s' in '%s' (available: %s)", name, where, strings.Join(names, ", "))
		}
		cmd = next
	}
	return nil
}

// walk visits cmd and its subcommands depth first. path excludes the root.
func walk(cmd *archons.Command, path []string, fn func(path []string, cmd *archons.Command)) {
	fn(path, cmd)
	if cmd.Subcommands == nil {
		return
	}
	for pair := cmd.Subcommands.Oldest(); pair != nil; pair = pair.Next() {
		walk(pair.Value, append(append([]string{}, path...), pair.Key), fn)
	}
}
