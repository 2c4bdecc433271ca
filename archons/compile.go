package archons

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hashicorp/go-multierror"
)

// resolvedOption is an Option with every default filled in.
type resolvedOption struct {
	key    string
	opt    *Option
	owner  *resolvedCommand
	kind   Kind
	action Action
	parser ValueParser
	arity  Arity

	long    string
	short   rune
	aliases []string // visible long aliases
	shorts  []rune   // visible short aliases
	// every long and short name the option answers to
	allLongs  []string
	allShorts []rune

	valueName      string
	defaultValue   *Value
	defaultMissing *Value
}

// display returns the name used in messages: "--long", "-s" or "<NAME>".
func (o *resolvedOption) display() string {
	switch {
	case o.kind == KindPositional:
		return "<" + o.valueName + ">"
	case o.long != "":
		return "--" + o.long
	default:
		return "-" + string(o.short)
	}
}

// scalar reports whether the option's value is a single value rather than a list.
func (o *resolvedOption) scalar() bool {
	return o.action == ActionSet && o.arity.Bounded() && o.arity.Max <= 1
}

type resolvedCommand struct {
	name   string
	meta   CommandMeta
	cmd    *Command
	parent *resolvedCommand
	path   []string

	own         []*resolvedOption // declared by this command
	options     []*resolvedOption // named options visible here, own first then inherited globals
	positionals []*resolvedOption
	byKey       map[string]*resolvedOption
	longs       map[string]*resolvedOption
	shorts      map[rune]*resolvedOption

	subcommands []*resolvedCommand
	subByName   map[string]*resolvedCommand
}

func (c *resolvedCommand) hasVersion() bool { return c.meta.Version != "" }

// Program is a compiled command tree. It is immutable and safe for
// concurrent use.
type Program struct {
	root     *resolvedCommand
	warnings []string
	lookup   func(string) (string, bool)
}

// Compile validates cmd and resolves every default, inherited global option
// and name table. All defects found are returned together.
func Compile(cmd *Command) (*Program, error) {
	if cmd == nil {
		return nil, &CompileError{Command: "", Message: "nil command"}
	}
	c := &compiler{visiting: make(map[*Command]bool)}
	root := c.command(cmd, cmd.Meta.Name, nil, nil, nil)
	if err := c.errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return &Program{root: root, warnings: c.warnings, lookup: os.LookupEnv}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(cmd *Command) *Program {
	p, err := Compile(cmd)
	if err != nil {
		panic(err)
	}
	return p
}

// Warnings returns non-fatal remarks collected while compiling.
func (p *Program) Warnings() []string { return append([]string{}, p.warnings...) }

// WithEnv returns a copy of p that reads environment fallbacks through lookup.
func (p *Program) WithEnv(lookup func(string) (string, bool)) *Program {
	cp := *p
	cp.lookup = lookup
	return &cp
}

type compiler struct {
	errs     *multierror.Error
	warnings []string
	visiting map[*Command]bool
}

func (c *compiler) fail(path []string, key, format string, args ...any) {
	c.errs = multierror.Append(c.errs, &CompileError{
		Command: strings.Join(path, " "),
		Option:  key,
		Message: fmt.Sprintf(format, args...),
	})
}

func (c *compiler) command(cmd *Command, name string, path []string, parent *resolvedCommand, inherited []*resolvedOption) *resolvedCommand {
	path = append(append([]string{}, path...), name)
	if c.visiting[cmd] {
		c.fail(path, "", "command tree contains a cycle")
		return nil
	}
	c.visiting[cmd] = true
	defer delete(c.visiting, cmd)

	rc := &resolvedCommand{
		name:      name,
		meta:      cmd.Meta,
		cmd:       cmd,
		parent:    parent,
		path:      path,
		byKey:     make(map[string]*resolvedOption),
		longs:     make(map[string]*resolvedOption),
		shorts:    make(map[rune]*resolvedOption),
		subByName: make(map[string]*resolvedCommand),
	}
	cmd.eachOption(func(key string, opt *Option) {
		if opt == nil {
			c.fail(path, key, "nil option")
			return
		}
		ro := c.option(path, key, opt)
		if ro == nil {
			return
		}
		ro.owner = rc
		rc.own = append(rc.own, ro)
	})

	// Own options first, inherited globals after them.
	for _, ro := range rc.own {
		c.register(rc, ro)
	}
	for _, g := range inherited {
		c.register(rc, g)
	}
	c.checkPositionals(rc)
	for _, ro := range rc.own {
		for _, other := range ro.opt.ConflictsWith {
			if _, ok := rc.byKey[other]; !ok {
				c.fail(path, ro.key, "conflictsWith references unknown option '%s'", other)
			}
		}
	}

	globals := append([]*resolvedOption{}, inherited...)
	for _, ro := range rc.own {
		if ro.kind == KindOption && ro.opt.Global {
			globals = append(globals, ro)
		}
	}

	if len(rc.own) == 1 && rc.own[0].opt.Exclusive && rc.own[0].opt.Global && cmd.subcommandCount() == 0 {
		c.warnings = append(c.warnings, fmt.Sprintf(
			"command '%s': option '%s' is exclusive and global but has nothing to exclude",
			strings.Join(path, " "), rc.own[0].key))
	}

	cmd.eachSubcommand(func(subName string, sub *Command) {
		subPath := append(append([]string{}, path...), subName)
		switch {
		case sub == nil:
			c.fail(subPath, "", "nil subcommand")
			return
		case !validName(subName):
			c.fail(subPath, "", "invalid subcommand name %q", subName)
			return
		case sub.Meta.Name != "" && sub.Meta.Name != subName:
			c.fail(subPath, "", "meta name %q does not match subcommand key %q", sub.Meta.Name, subName)
			return
		}
		if rs := c.command(sub, subName, path, rc, globals); rs != nil {
			rc.subcommands = append(rc.subcommands, rs)
			rc.subByName[subName] = rs
		}
	})
	return rc
}

// option resolves the defaults of one declared option.
func (c *compiler) option(path []string, key string, opt *Option) *resolvedOption {
	if !validName(key) {
		c.fail(path, key, "invalid option key")
		return nil
	}
	ro := &resolvedOption{
		key:       key,
		opt:       opt,
		kind:      opt.Kind,
		action:    opt.Action,
		parser:    opt.Parser,
		valueName: opt.ValueName,
	}
	if ro.valueName == "" {
		ro.valueName = strings.ToUpper(key)
	}
	ok := true
	bad := func(format string, args ...any) {
		c.fail(path, key, format, args...)
		ok = false
	}

	if opt.Kind == KindPositional {
		if opt.Global {
			bad("positional arguments cannot be global")
		}
		if !opt.Action.takesValues() {
			bad("action '%s' is not valid for a positional argument", opt.Action)
		}
		ro.arity = exactly(1)
		if opt.Action == ActionAppend {
			ro.arity = Arity{Min: 1, Max: Unbounded}
		}
	} else {
		c.names(ro, bad)
		ro.arity = exactly(1)
		if !opt.Action.takesValues() {
			ro.arity = exactly(0)
		}
	}

	if opt.NumArgs != "" {
		if !opt.Action.takesValues() {
			bad("numArgs is not allowed with action '%s'", opt.Action)
		} else if a, err := ParseNumArgs(opt.NumArgs); err != nil {
			bad("%v", err)
		} else {
			ro.arity = a
		}
	}

	if opt.Default != "" {
		v, err := coerceDefault(ro, opt.Default)
		if err != nil {
			bad("invalid default: %v", err)
		} else {
			ro.defaultValue = &v
		}
	}
	if opt.DefaultMissing != "" {
		if !opt.Action.takesValues() {
			bad("defaultMissing is not allowed with action '%s'", opt.Action)
		} else if v, err := opt.Parser.Coerce(opt.DefaultMissing); err != nil {
			bad("invalid defaultMissing: %v", err)
		} else {
			ro.defaultMissing = &v
		}
	}
	if opt.Kind == KindOption && opt.Action.takesValues() && ro.arity.Min == 0 &&
		opt.Parser == ParserNumber && ro.defaultMissing == nil {
		bad("number option accepting zero values needs defaultMissing")
	}
	for _, env := range opt.Env {
		if env == "" || strings.ContainsAny(env, "= ") {
			bad("invalid environment variable name %q", env)
		}
	}
	if !ok {
		return nil
	}
	return ro
}

// names fills the long and short names of a named option.
func (c *compiler) names(ro *resolvedOption, bad func(string, ...any)) {
	opt := ro.opt
	ro.long = opt.Long
	if ro.long == "" {
		ro.long = ro.key
	}
	if !validName(ro.long) {
		bad("invalid long name %q", ro.long)
	}
	switch {
	case opt.Short != "":
		ro.short, _ = utf8.DecodeRuneInString(opt.Short)
	case !opt.NoShort:
		ro.short, _ = utf8.DecodeRuneInString(ro.long)
	}
	if ro.short == '-' || ro.short == '=' || unicode.IsSpace(ro.short) {
		bad("invalid short name %q", string(ro.short))
	}

	ro.allLongs = append(ro.allLongs, ro.long)
	for _, a := range opt.Alias {
		if !validName(a) {
			bad("invalid alias %q", a)
		}
		ro.aliases = append(ro.aliases, a)
		ro.allLongs = append(ro.allLongs, a)
	}
	for _, a := range opt.HiddenAlias {
		if !validName(a) {
			bad("invalid alias %q", a)
		}
		ro.allLongs = append(ro.allLongs, a)
	}
	if ro.short != 0 {
		ro.allShorts = append(ro.allShorts, ro.short)
	}
	shortAlias := func(s string, visible bool) {
		r, size := utf8.DecodeRuneInString(s)
		if size == 0 || r == '-' || r == '=' || unicode.IsSpace(r) {
			bad("invalid short alias %q", s)
			return
		}
		if visible {
			ro.shorts = append(ro.shorts, r)
		}
		ro.allShorts = append(ro.allShorts, r)
	}
	for _, s := range opt.ShortAlias {
		shortAlias(s, true)
	}
	for _, s := range opt.HiddenShortAlias {
		shortAlias(s, false)
	}
}

// register adds ro to the name tables of rc, reporting collisions.
func (c *compiler) register(rc *resolvedCommand, ro *resolvedOption) {
	if prev, dup := rc.byKey[ro.key]; dup && prev != ro {
		c.fail(rc.path, ro.key, "duplicate option key")
		return
	}
	rc.byKey[ro.key] = ro
	if ro.kind == KindPositional {
		rc.positionals = append(rc.positionals, ro)
		return
	}
	rc.options = append(rc.options, ro)

	for _, l := range ro.allLongs {
		if l == "help" || (l == "version" && rc.hasVersion()) {
			c.fail(rc.path, ro.key, "long name '--%s' is reserved", l)
			continue
		}
		if prev, dup := rc.longs[l]; dup {
			c.fail(rc.path, ro.key, "long name '--%s' already used by option '%s'", l, prev.key)
			continue
		}
		rc.longs[l] = ro
	}
	for _, s := range ro.allShorts {
		if s == 'h' || (s == 'V' && rc.hasVersion()) {
			c.fail(rc.path, ro.key, "short name '-%c' is reserved", s)
			continue
		}
		if prev, dup := rc.shorts[s]; dup {
			c.fail(rc.path, ro.key, "short name '-%c' already used by option '%s'", s, prev.key)
			continue
		}
		rc.shorts[s] = ro
	}
}

func (c *compiler) checkPositionals(rc *resolvedCommand) {
	for i, p := range rc.positionals {
		if p.arity.Bounded() {
			continue
		}
		if i != len(rc.positionals)-1 {
			c.fail(rc.path, p.key, "only the last positional argument may take unbounded values")
		}
	}
}

// coerceDefault converts a declared default into the shape the option yields.
func coerceDefault(ro *resolvedOption, raw string) (Value, error) {
	switch ro.action {
	case ActionCount:
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return Value{}, fmt.Errorf("invalid count %q", raw)
		}
		return CountValue(n), nil
	case ActionStore, ActionStoreFalse:
		b, err := parseBool(raw)
		if err != nil {
			return Value{}, err
		}
		return BoolValue(b), nil
	}
	v, err := ro.parser.Coerce(raw)
	if err != nil {
		return Value{}, err
	}
	if ro.scalar() {
		return v, nil
	}
	return ListValue(v), nil
}

func validName(s string) bool {
	return s != "" && !strings.HasPrefix(s, "-") && !strings.ContainsAny(s, "= \t\n")
}
