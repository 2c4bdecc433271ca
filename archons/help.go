package archons

import (
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// helpStyle colors the parts of the help output.
type helpStyle struct {
	header      func(a ...any) string
	literal     func(a ...any) string
	placeholder func(a ...any) string
}

func plainStyle() *helpStyle {
	return &helpStyle{header: sprint, literal: sprint, placeholder: sprint}
}

func sprint(a ...any) string {
	var b strings.Builder
	for _, v := range a {
		if s, ok := v.(string); ok {
			b.WriteString(s)
		}
	}
	return b.String()
}

// colorStyle uses the clap palette: bold green headers, bold cyan literals
// and cyan placeholders.
func colorStyle() *helpStyle {
	header := color.New(color.FgGreen, color.Bold)
	literal := color.New(color.FgCyan, color.Bold)
	placeholder := color.New(color.FgCyan)
	for _, c := range []*color.Color{header, literal, placeholder} {
		c.EnableColor()
	}
	return &helpStyle{
		header:      header.SprintFunc(),
		literal:     literal.SprintFunc(),
		placeholder: placeholder.SprintFunc(),
	}
}

// commandPath returns the names of cmd's path. An unnamed root is named bin.
func commandPath(cmd *resolvedCommand, bin string) string {
	names := append([]string{}, cmd.path...)
	if len(names) > 0 && names[0] == "" {
		names[0] = bin
	}
	return strings.Join(names, " ")
}

func versionLine(cmd *resolvedCommand, bin string) string {
	name := cmd.name
	if cmd.parent == nil && name == "" {
		name = bin
	}
	return name + " " + cmd.meta.Version
}

// usageLine renders "bin sub [OPTIONS] --req <REQ> <POS> [COMMAND]".
func usageLine(cmd *resolvedCommand, bin string) string {
	return styledUsage(cmd, bin, plainStyle())
}

func styledUsage(cmd *resolvedCommand, bin string, st *helpStyle) string {
	parts := []string{st.literal(commandPath(cmd, bin)), st.placeholder("[OPTIONS]")}
	for _, opt := range cmd.options {
		if opt.opt.Required && !opt.opt.Hidden && opt.defaultValue == nil {
			parts = append(parts, st.literal("--"+opt.long)+st.placeholder(valueSuffix(opt)))
		}
	}
	for _, opt := range cmd.positionals {
		if opt.opt.Hidden {
			continue
		}
		parts = append(parts, st.placeholder(positionalUsage(opt)))
	}
	if len(cmd.subcommands) > 0 {
		if cmd.meta.SubcommandRequired {
			parts = append(parts, st.placeholder("<COMMAND>"))
		} else {
			parts = append(parts, st.placeholder("[COMMAND]"))
		}
	}
	return strings.Join(parts, " ")
}

func positionalUsage(opt *resolvedOption) string {
	name := "<" + opt.valueName + ">"
	if !opt.opt.Required {
		name = "[" + opt.valueName + "]"
	}
	if !opt.arity.Bounded() || opt.arity.Max > 1 {
		name += "..."
	}
	return name
}

// valueSuffix renders the value placeholder following an option name.
func valueSuffix(opt *resolvedOption) string {
	if opt.kind == KindPositional || opt.arity.Max == 0 {
		return ""
	}
	ph := "<" + opt.valueName + ">"
	if opt.opt.RequiredEquals {
		if opt.arity.Min == 0 {
			return "[=" + ph + "]"
		}
		return "=" + ph
	}
	var b strings.Builder
	switch {
	case !opt.arity.Bounded():
		for i := 0; i < opt.arity.Min; i++ {
			b.WriteString(" " + ph)
		}
		if opt.arity.Min == 0 {
			b.WriteString(" [" + ph + "]")
		}
		b.WriteString("...")
	case opt.arity.Min == 0:
		b.WriteString(" [" + ph + "]")
		if opt.arity.Max > 1 {
			b.WriteString("...")
		}
	default:
		n := opt.arity.Max
		for i := 0; i < n; i++ {
			b.WriteString(" " + ph)
		}
	}
	return b.String()
}

// usageName is the option as shown in error messages.
func usageName(opt *resolvedOption) string {
	if opt.kind == KindPositional {
		return "<" + opt.valueName + ">"
	}
	return opt.display() + valueSuffix(opt)
}

type helpRow struct {
	left  string
	width int // printable width of left
	right string
}

// renderHelp renders the help text of cmd. A nil style renders plain text,
// otherwise the style applies when the command asks for styled output.
func renderHelp(cmd *resolvedCommand, bin string, style *helpStyle) string {
	st := plainStyle()
	if style != nil && cmd.meta.Styled {
		st = style
	}

	var b strings.Builder
	if cmd.meta.About != "" {
		b.WriteString(cmd.meta.About)
		b.WriteString("\n\n")
	}
	b.WriteString(st.header("Usage:"))
	b.WriteString(" ")
	b.WriteString(styledUsage(cmd, bin, st))
	b.WriteString("\n")

	var commands, arguments, options []helpRow
	for _, sub := range cmd.subcommands {
		commands = append(commands, helpRow{left: st.literal(sub.name), width: utf8.RuneCountInString(sub.name), right: sub.meta.About})
	}
	for _, opt := range cmd.positionals {
		if opt.opt.Hidden {
			continue
		}
		name := positionalUsage(opt)
		arguments = append(arguments, helpRow{left: st.placeholder(name), width: utf8.RuneCountInString(name), right: optionNotes(opt)})
	}
	for _, opt := range cmd.options {
		if opt.opt.Hidden {
			continue
		}
		options = append(options, optionRow(opt, st))
	}
	options = append(options, builtinRow('h', "help", "Print help", st))
	if cmd.hasVersion() {
		options = append(options, builtinRow('V', "version", "Print version", st))
	}

	width := 0
	for _, rows := range [][]helpRow{commands, arguments, options} {
		for _, r := range rows {
			if r.width > width {
				width = r.width
			}
		}
	}
	section := func(title string, rows []helpRow) {
		if len(rows) == 0 {
			return
		}
		b.WriteString("\n")
		b.WriteString(st.header(title))
		b.WriteString("\n")
		for _, r := range rows {
			b.WriteString("  ")
			b.WriteString(r.left)
			if r.right != "" {
				b.WriteString(strings.Repeat(" ", width-r.width+2))
				b.WriteString(r.right)
			}
			b.WriteString("\n")
		}
	}
	section("Commands:", commands)
	section("Arguments:", arguments)
	section("Options:", options)
	return b.String()
}

func optionRow(opt *resolvedOption, st *helpStyle) helpRow {
	var left, plain strings.Builder
	if opt.short != 0 {
		s := "-" + string(opt.short) + ", "
		left.WriteString(st.literal("-" + string(opt.short)))
		left.WriteString(", ")
		plain.WriteString(s)
	} else {
		left.WriteString("    ")
		plain.WriteString("    ")
	}
	long := "--" + opt.long
	left.WriteString(st.literal(long))
	plain.WriteString(long)
	if suffix := valueSuffix(opt); suffix != "" {
		left.WriteString(st.placeholder(suffix))
		plain.WriteString(suffix)
	}
	return helpRow{left: left.String(), width: len([]rune(plain.String())), right: optionNotes(opt)}
}

func builtinRow(short rune, long, help string, st *helpStyle) helpRow {
	plain := "-" + string(short) + ", --" + long
	left := st.literal("-"+string(short)) + ", " + st.literal("--"+long)
	return helpRow{left: left, width: len(plain), right: help}
}

// optionNotes renders the help text followed by defaults, env and aliases.
func optionNotes(opt *resolvedOption) string {
	notes := []string{}
	if opt.opt.Help != "" {
		notes = append(notes, opt.opt.Help)
	}
	if opt.opt.Default != "" && !opt.opt.HideDefaultValue {
		notes = append(notes, "[default: "+opt.opt.Default+"]")
	}
	if len(opt.opt.Env) > 0 {
		notes = append(notes, "[env: "+strings.Join(opt.opt.Env, ", ")+"]")
	}
	if len(opt.aliases) > 0 {
		aliases := make([]string, len(opt.aliases))
		for i, a := range opt.aliases {
			aliases[i] = "--" + a
		}
		notes = append(notes, "[aliases: "+strings.Join(aliases, ", ")+"]")
	}
	if len(opt.shorts) > 0 {
		shorts := make([]string, len(opt.shorts))
		for i, r := range opt.shorts {
			shorts[i] = "-" + string(r)
		}
		notes = append(notes, "[short aliases: "+strings.Join(shorts, ", ")+"]")
	}
	return strings.Join(notes, " ")
}
