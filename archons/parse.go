package archons

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Outcome tells the caller what a successful parse asks for.
type Outcome int

const (
	// OutcomeRun means the terminal command's callback should run.
	OutcomeRun Outcome = iota
	// OutcomeHelp means help was requested for ParseResult.Path.
	OutcomeHelp
	// OutcomeVersion means the version of ParseResult.Path was requested.
	OutcomeVersion
)

func (o Outcome) String() string {
	switch o {
	case OutcomeRun:
		return "run"
	case OutcomeHelp:
		return "help"
	case OutcomeVersion:
		return "version"
	default:
		return "unknown"
	}
}

// ParseResult is the outcome of parsing one argument vector.
type ParseResult struct {
	Outcome Outcome
	// Path lists the selected commands, root first.
	Path []string
	// Args holds the resolved values of the terminal command, including the
	// global options inherited from its ancestors. Nil unless Outcome is OutcomeRun.
	Args map[string]Value

	level *resolvedCommand
	bin   string
}

// Command returns the command the result refers to: the terminal command, or
// the command whose help or version was requested.
func (r *ParseResult) Command() *Command { return r.level.cmd }

// Help renders the help text of the command the result refers to.
func (r *ParseResult) Help() string { return renderHelp(r.level, r.bin, nil) }

// Version renders the version line of the command the result refers to.
func (r *ParseResult) Version() string { return versionLine(r.level, r.bin) }

// Keys lists the keys of Args in declaration order: named options (own, then
// inherited globals), then positionals.
func (r *ParseResult) Keys() []string {
	out := make([]string, 0, len(r.Args))
	for _, group := range [][]*resolvedOption{r.level.options, r.level.positionals} {
		for _, opt := range group {
			if _, ok := r.Args[opt.key]; ok {
				out = append(out, opt.key)
			}
		}
	}
	return out
}

// Parse parses args, which must not include the program name.
func (p *Program) Parse(args []string) (*ParseResult, error) {
	return p.ParseAs("", args)
}

// ParseAs is like Parse but names the program bin in help and messages when
// the root command has no name.
func (p *Program) ParseAs(bin string, args []string) (*ParseResult, error) {
	if p.root.name != "" || bin == "" {
		bin = p.root.name
	}
	if bin == "" {
		bin = "program"
	}

	buf := tokenPool.Get()
	defer tokenPool.Put(buf)
	*buf = tokenize(args, *buf)

	st := &parseState{
		prog:    p,
		toks:    *buf,
		bin:     bin,
		globals: make(map[string]*slot),
	}
	return st.run()
}

// slot accumulates the occurrences of one option.
type slot struct {
	present bool
	count   int
	values  []Value
}

// level is the parse state of one command of the selected path.
type level struct {
	cmd   *resolvedCommand
	local map[string]*slot
	// next positional to fill
	posIdx int
	// a positional received a value
	assigned bool
}

type parseState struct {
	prog    *Program
	toks    []token
	pos     int
	bin     string
	path    []string
	levels  []*level
	globals map[string]*slot
	env     map[*resolvedOption]Value
	// option whose last occurrence consumed its bounded maximum of values
	saturated *resolvedOption
}

func (st *parseState) run() (*ParseResult, error) {
	cmd := st.prog.root
	for {
		lvl := &level{cmd: cmd, local: make(map[string]*slot)}
		st.levels = append(st.levels, lvl)
		name := cmd.name
		if cmd.parent == nil {
			name = st.bin
		}
		st.path = append(st.path, name)

		next, outcome, err := st.scan(lvl)
		if err != nil {
			return nil, err
		}
		if outcome != OutcomeRun {
			return &ParseResult{Outcome: outcome, Path: st.path, level: cmd, bin: st.bin}, nil
		}
		if next == nil {
			break
		}
		cmd = next
	}

	terminal := st.levels[len(st.levels)-1]
	if terminal.cmd.meta.SubcommandRequired {
		names := make([]string, 0, len(terminal.cmd.subcommands))
		for _, sub := range terminal.cmd.subcommands {
			names = append(names, sub.name)
		}
		return nil, st.errorf(terminal, ErrorTypeMissingSubcommand, nil,
			"'%s' requires a subcommand but one was not provided\n  [subcommands: %s]",
			strings.Join(st.path, " "), strings.Join(names, ", "))
	}
	if err := st.resolveEnv(); err != nil {
		return nil, err
	}
	for _, lvl := range st.levels {
		if err := st.validate(lvl); err != nil {
			return nil, err
		}
	}
	return &ParseResult{
		Outcome: OutcomeRun,
		Path:    st.path,
		Args:    st.collect(terminal),
		level:   terminal.cmd,
		bin:     st.bin,
	}, nil
}

// scan consumes the tokens of one command level. It returns the selected
// subcommand, or nil when the input is exhausted.
func (st *parseState) scan(lvl *level) (*resolvedCommand, Outcome, error) {
	cmd := lvl.cmd
	for st.pos < len(st.toks) {
		start := st.pos
		t := st.toks[st.pos]
		sat := st.saturated
		st.saturated = nil

		switch t.kind {
		case tokenDoubleDash:
			st.pos++

		case tokenLong:
			st.pos++
			if t.name == "help" {
				return nil, OutcomeHelp, nil
			}
			if t.name == "version" && cmd.hasVersion() {
				return nil, OutcomeVersion, nil
			}
			opt := cmd.longs[t.name]
			if opt == nil {
				err := st.errorf(lvl, ErrorTypeUnknownOption, nil, "unexpected argument '--%s' found", t.name)
				err.Option = "--" + t.name
				err.candidates = st.longCandidates(cmd)
				return st.fail(lvl, start, err)
			}
			if err := st.occurrence(lvl, opt, t.inline, t.hasInline); err != nil {
				return st.fail(lvl, start, err)
			}

		case tokenShort:
			if t.negative && !st.knownShort(cmd, t) {
				next, err := st.value(lvl, t, sat)
				if err != nil {
					return st.fail(lvl, start, err)
				}
				if next != nil {
					return next, OutcomeRun, nil
				}
				continue
			}
			st.pos++
			outcome, err := st.cluster(lvl, t)
			if err != nil {
				return st.fail(lvl, start, err)
			}
			if outcome != OutcomeRun {
				return nil, outcome, nil
			}

		case tokenValue:
			next, err := st.value(lvl, t, sat)
			if err != nil {
				return st.fail(lvl, start, err)
			}
			if next != nil {
				return next, OutcomeRun, nil
			}
		}
	}
	return nil, OutcomeRun, nil
}

// fail reports err unless help is requested later on the same level.
func (st *parseState) fail(lvl *level, from int, err *ParseError) (*resolvedCommand, Outcome, error) {
	if st.helpAhead(lvl.cmd, from) {
		return nil, OutcomeHelp, nil
	}
	return nil, OutcomeRun, err
}

// helpAhead reports whether a help flag appears among the tokens of the
// current level, starting at index from.
func (st *parseState) helpAhead(cmd *resolvedCommand, from int) bool {
	for _, t := range st.toks[from:] {
		switch t.kind {
		case tokenDoubleDash:
			return false
		case tokenValue:
			if cmd.subByName[t.raw] != nil {
				return false
			}
		case tokenLong:
			if t.name == "help" {
				return true
			}
		case tokenShort:
			if t.negative {
				continue
			}
			for _, r := range t.name {
				if r == '=' {
					break
				}
				if r == 'h' {
					return true
				}
				if opt := cmd.shorts[r]; opt != nil && opt.arity.Max != 0 {
					break
				}
			}
		}
	}
	return false
}

func (st *parseState) knownShort(cmd *resolvedCommand, t token) bool {
	r, _ := utf8.DecodeRuneInString(t.name)
	return cmd.shorts[r] != nil
}

// cluster handles a token of one or more short names such as "-vvx" or "-ofile".
func (st *parseState) cluster(lvl *level, t token) (Outcome, *ParseError) {
	cmd := lvl.cmd
	for i, r := range t.name {
		if r == 'h' {
			return OutcomeHelp, nil
		}
		if r == 'V' && cmd.hasVersion() {
			return OutcomeVersion, nil
		}
		opt := cmd.shorts[r]
		if opt == nil {
			err := st.errorf(lvl, ErrorTypeUnknownOption, nil, "unexpected argument '-%c' found", r)
			err.Option = "-" + string(r)
			return OutcomeRun, err
		}
		rest := t.name[i+utf8.RuneLen(r):]
		if opt.arity.Max == 0 {
			if strings.HasPrefix(rest, "=") {
				return OutcomeRun, st.occurrence(lvl, opt, rest[1:], true)
			}
			if err := st.occurrence(lvl, opt, "", false); err != nil {
				return OutcomeRun, err
			}
			continue
		}
		if rest != "" {
			return OutcomeRun, st.occurrence(lvl, opt, strings.TrimPrefix(rest, "="), true)
		}
		return OutcomeRun, st.occurrence(lvl, opt, "", false)
	}
	return OutcomeRun, nil
}

// value handles a value token that no option consumed: it either selects a
// subcommand or fills the next positional.
func (st *parseState) value(lvl *level, t token, sat *resolvedOption) (*resolvedCommand, *ParseError) {
	cmd := lvl.cmd
	st.pos++
	for lvl.posIdx < len(cmd.positionals) {
		p := cmd.positionals[lvl.posIdx]
		s := lvl.local[p.key]
		if s == nil || !p.arity.Full(len(s.values)) {
			break
		}
		lvl.posIdx++
	}
	full := lvl.posIdx >= len(cmd.positionals)

	// A subcommand name selects the subcommand unless a positional that
	// already started can still absorb it.
	if !t.literal && (!lvl.assigned || full) {
		if sub := cmd.subByName[t.raw]; sub != nil {
			return sub, nil
		}
	}

	if full {
		if sat != nil {
			err := st.errorf(lvl, ErrorTypeTooManyValues, sat,
				"unexpected value '%s' for '%s' found; no more were expected", t.raw, sat.display())
			err.Value = t.raw
			err.Expected = sat.arity.String()
			return nil, err
		}
		err := st.errorf(lvl, ErrorTypeUnexpectedArgument, nil, "unexpected argument '%s' found", t.raw)
		err.Value = t.raw
		for _, sub := range cmd.subcommands {
			err.candidates = append(err.candidates, sub.name)
		}
		return nil, err
	}

	p := cmd.positionals[lvl.posIdx]
	v, cerr := p.parser.Coerce(t.raw)
	if cerr != nil {
		return nil, st.typeError(lvl, p, t.raw, cerr)
	}
	s := st.slot(lvl, p)
	s.present = true
	s.values = append(s.values, v)
	lvl.assigned = true
	return nil, nil
}

// occurrence applies one occurrence of opt. inline is the value given with
// '=' or glued to a short name.
func (st *parseState) occurrence(lvl *level, opt *resolvedOption, inline string, hasInline bool) *ParseError {
	s := st.slot(lvl, opt)
	s.present = true

	switch opt.action {
	case ActionCount:
		s.count++
		return nil
	case ActionStore, ActionStoreFalse:
		if hasInline {
			err := st.errorf(lvl, ErrorTypeTooManyValues, opt,
				"unexpected value '%s' for '%s' found; no more were expected", inline, opt.display())
			err.Value = inline
			err.Expected = "0"
			return err
		}
		return nil
	case ActionSet, ActionAppend:
	}

	var raws []string
	switch {
	case hasInline:
		if opt.arity.Max == 0 {
			err := st.errorf(lvl, ErrorTypeTooManyValues, opt,
				"unexpected value '%s' for '%s' found; no more were expected", inline, opt.display())
			err.Value = inline
			err.Expected = "0"
			return err
		}
		raws = []string{inline}
	case opt.opt.RequiredEquals:
		if opt.arity.Min > 0 {
			err := st.errorf(lvl, ErrorTypeTooFewValues, opt,
				"equal sign is needed when assigning values to '%s'", opt.display())
			err.Expected = opt.arity.String()
			return err
		}
	default:
		for st.pos < len(st.toks) && !opt.arity.Full(len(raws)) {
			t := st.toks[st.pos]
			if !st.valueLike(lvl.cmd, t) {
				break
			}
			raws = append(raws, t.raw)
			st.pos++
		}
	}
	if len(raws) > 0 && opt.arity.Full(len(raws)) {
		st.saturated = opt
	}

	if len(raws) < opt.arity.Min {
		var err *ParseError
		if len(raws) == 0 {
			err = st.errorf(lvl, ErrorTypeTooFewValues, opt,
				"a value is required for '%s' but none was supplied", opt.display())
		} else {
			err = st.errorf(lvl, ErrorTypeTooFewValues, opt,
				"%d values required by '%s'; only %d were provided", opt.arity.Min, opt.display(), len(raws))
		}
		err.Expected = opt.arity.String()
		return err
	}

	vals := make([]Value, 0, len(raws))
	for _, raw := range raws {
		v, cerr := opt.parser.Coerce(raw)
		if cerr != nil {
			return st.typeError(lvl, opt, raw, cerr)
		}
		vals = append(vals, v)
	}
	if len(vals) == 0 {
		switch {
		case opt.defaultMissing != nil:
			vals = append(vals, *opt.defaultMissing)
		case opt.action == ActionSet:
			vals = append(vals, presenceValue(opt.parser))
		}
	}

	if opt.action == ActionAppend {
		s.values = append(s.values, vals...)
	} else {
		s.values = vals
	}
	return nil
}

// valueLike reports whether t may be consumed as an option value.
func (st *parseState) valueLike(cmd *resolvedCommand, t token) bool {
	switch t.kind {
	case tokenValue:
		return true
	case tokenShort:
		return t.negative && !st.knownShort(cmd, t)
	default:
		return false
	}
}

// presenceValue is the value of a set option given without values and
// without defaultMissing.
func presenceValue(p ValueParser) Value {
	if p == ParserBoolean {
		return BoolValue(true)
	}
	return StringValue("")
}

// slot returns the accumulator of opt. Global options share one accumulator
// across all levels.
func (st *parseState) slot(lvl *level, opt *resolvedOption) *slot {
	m := lvl.local
	if opt.kind == KindOption && opt.opt.Global {
		m = st.globals
	}
	s := m[opt.key]
	if s == nil {
		s = &slot{}
		m[opt.key] = s
	}
	return s
}

func (st *parseState) lookup(lvl *level, opt *resolvedOption) *slot {
	if opt.kind == KindOption && opt.opt.Global {
		return st.globals[opt.key]
	}
	return lvl.local[opt.key]
}

func (st *parseState) present(lvl *level, opt *resolvedOption) bool {
	s := st.lookup(lvl, opt)
	return s != nil && s.present
}

// resolveEnv reads the environment fallbacks of every option absent from
// the command line.
func (st *parseState) resolveEnv() *ParseError {
	st.env = make(map[*resolvedOption]Value)
	for _, lvl := range st.levels {
		for _, opt := range lvl.cmd.options {
			if _, done := st.env[opt]; done || len(opt.opt.Env) == 0 || st.present(lvl, opt) {
				continue
			}
			for _, name := range opt.opt.Env {
				raw, ok := st.prog.lookup(name)
				if !ok || raw == "" {
					continue
				}
				v, err := coerceDefault(opt, raw)
				if err != nil {
					perr := st.typeError(lvl, opt, raw, err)
					perr.Message += fmt.Sprintf(" (from environment variable %s)", name)
					return perr
				}
				st.env[opt] = v
				break
			}
		}
	}
	return nil
}

// validate checks exclusivity, conflicts, positional arity and requiredness
// of one level.
func (st *parseState) validate(lvl *level) *ParseError {
	cmd := lvl.cmd
	visible := make([]*resolvedOption, 0, len(cmd.options)+len(cmd.positionals))
	visible = append(visible, cmd.options...)
	visible = append(visible, cmd.positionals...)

	exclusive := false
	for _, opt := range visible {
		if !opt.opt.Exclusive || !st.present(lvl, opt) {
			continue
		}
		exclusive = true
		for _, other := range visible {
			if other != opt && st.present(lvl, other) {
				return st.errorf(lvl, ErrorTypeExclusiveConflict, opt,
					"the argument '%s' cannot be used with one or more of the other specified arguments", opt.display())
			}
		}
	}

	for _, opt := range visible {
		if len(opt.opt.ConflictsWith) == 0 || !st.present(lvl, opt) {
			continue
		}
		for _, key := range opt.opt.ConflictsWith {
			if other := cmd.byKey[key]; other != nil && other != opt && st.present(lvl, other) {
				return st.errorf(lvl, ErrorTypeConflictingOptions, opt,
					"the argument '%s' cannot be used with '%s'", opt.display(), other.display())
			}
		}
	}

	for _, opt := range cmd.positionals {
		s := lvl.local[opt.key]
		if s == nil || !s.present || len(s.values) >= opt.arity.Min {
			continue
		}
		err := st.errorf(lvl, ErrorTypeTooFewValues, opt,
			"%d values required by '%s'; only %d were provided", opt.arity.Min, opt.display(), len(s.values))
		err.Expected = opt.arity.String()
		return err
	}

	if exclusive {
		return nil
	}
	var missing []string
	var first *resolvedOption
	for _, opt := range cmd.own {
		if !opt.opt.Required || st.present(lvl, opt) || opt.defaultValue != nil {
			continue
		}
		if _, ok := st.env[opt]; ok {
			continue
		}
		if first == nil {
			first = opt
		}
		missing = append(missing, usageName(opt))
	}
	if first != nil {
		return st.errorf(lvl, ErrorTypeMissingRequired, first,
			"the following required arguments were not provided:\n  %s", strings.Join(missing, "\n  "))
	}
	return nil
}

// collect builds the argument map of the terminal level.
func (st *parseState) collect(lvl *level) map[string]Value {
	cmd := lvl.cmd
	args := make(map[string]Value, len(cmd.byKey))
	for _, opt := range cmd.options {
		if v, ok := st.final(lvl, opt); ok {
			args[opt.key] = v
		}
	}
	for _, opt := range cmd.positionals {
		if v, ok := st.final(lvl, opt); ok {
			args[opt.key] = v
		}
	}
	return args
}

// final computes the value of opt: command line, then environment, then
// default, then the implicit value of flags and counters.
func (st *parseState) final(lvl *level, opt *resolvedOption) (Value, bool) {
	if s := st.lookup(lvl, opt); s != nil && s.present {
		switch opt.action {
		case ActionCount:
			return CountValue(s.count), true
		case ActionStore:
			return BoolValue(true), true
		case ActionStoreFalse:
			return BoolValue(false), true
		case ActionAppend:
			return ListValue(s.values...), true
		case ActionSet:
			if opt.scalar() && len(s.values) > 0 {
				return s.values[0], true
			}
			return ListValue(s.values...), true
		}
	}
	if v, ok := st.env[opt]; ok {
		return v, true
	}
	if opt.defaultValue != nil {
		return *opt.defaultValue, true
	}
	switch opt.action {
	case ActionCount:
		return CountValue(0), true
	case ActionStore:
		return BoolValue(false), true
	case ActionStoreFalse:
		return BoolValue(true), true
	case ActionSet, ActionAppend:
	}
	return Value{}, false
}

func (st *parseState) errorf(lvl *level, typ ErrorType, opt *resolvedOption, format string, args ...any) *ParseError {
	err := &ParseError{
		Type:    typ,
		Message: fmt.Sprintf(format, args...),
		Command: append([]string{}, st.path...),
		level:   lvl.cmd,
		bin:     st.bin,
	}
	if opt != nil {
		err.Option = opt.display()
	}
	return err
}

func (st *parseState) typeError(lvl *level, opt *resolvedOption, raw string, cause error) *ParseError {
	err := st.errorf(lvl, ErrorTypeType, opt, "invalid value '%s' for '%s': %v", raw, usageName(opt), cause)
	err.Value = raw
	err.Expected = opt.parser.String()
	return err
}

// longCandidates lists visible long names for suggestions.
func (st *parseState) longCandidates(cmd *resolvedCommand) []string {
	out := make([]string, 0, len(cmd.options)+1)
	for _, opt := range cmd.options {
		if opt.opt.Hidden {
			continue
		}
		out = append(out, opt.long)
		out = append(out, opt.aliases...)
	}
	out = append(out, "help")
	if cmd.hasVersion() {
		out = append(out, "version")
	}
	return out
}
