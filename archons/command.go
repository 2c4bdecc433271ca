package archons

import (
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Callback is invoked with the resolved Context of the terminal command.
type Callback func(ctx *Context)

// CommandMeta holds descriptive metadata of a command.
type CommandMeta struct {
	// Name of the command. For the root command it is also the program name
	// shown in help; when empty the executable's base name is used.
	Name string
	// Version enables --version/-V for this command when non-empty.
	Version string
	About   string
	// Styled enables colored help output.
	Styled bool
	// SubcommandRequired fails parsing when no subcommand is selected.
	SubcommandRequired bool
}

// OptionMap is an insertion-ordered map of option keys to options.
type OptionMap = orderedmap.OrderedMap[string, *Option]

// CommandMap is an insertion-ordered map of subcommand names to commands.
type CommandMap = orderedmap.OrderedMap[string, *Command]

// Command is a user-authored node of the command tree. The engine only reads
// it; compiling or running a tree never mutates it.
type Command struct {
	Meta        CommandMeta
	Options     *OptionMap
	Subcommands *CommandMap
	Callback    Callback
}

// NewCommand returns a command with empty option and subcommand maps.
func NewCommand(meta CommandMeta) *Command {
	return &Command{
		Meta:        meta,
		Options:     orderedmap.New[string, *Option](),
		Subcommands: orderedmap.New[string, *Command](),
	}
}

// Name returns the command name (implements middleware.Command interface)
func (c *Command) Name() string { return c.Meta.Name }

// About returns the command description (implements middleware.Command interface)
func (c *Command) About() string { return c.Meta.About }

// AddOption declares an option under key. Declaring the same key twice
// replaces the earlier option and keeps its position.
func (c *Command) AddOption(key string, opt Option) *Command {
	if c.Options == nil {
		c.Options = orderedmap.New[string, *Option]()
	}
	o := opt
	c.Options.Set(key, &o)
	return c
}

// AddSubcommand attaches sub under name.
func (c *Command) AddSubcommand(name string, sub *Command) *Command {
	if c.Subcommands == nil {
		c.Subcommands = orderedmap.New[string, *Command]()
	}
	c.Subcommands.Set(name, sub)
	return c
}

// eachOption iterates options in declaration order.
func (c *Command) eachOption(fn func(key string, opt *Option)) {
	if c.Options == nil {
		return
	}
	for pair := c.Options.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

func (c *Command) subcommandCount() int {
	if c.Subcommands == nil {
		return 0
	}
	return c.Subcommands.Len()
}

// eachSubcommand iterates subcommands in declaration order.
func (c *Command) eachSubcommand(fn func(name string, sub *Command)) {
	if c.Subcommands == nil {
		return
	}
	for pair := c.Subcommands.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// CommandBuilder provides a fluent API for building command trees
type CommandBuilder struct {
	command *Command
}

// Define starts a command named name.
//
// Example:
//
//	cmd := archons.Define("greet").
//	    Version("1.0.0").
//	    About("Say hello").
//	    Option("name", archons.Option{Help: "who to greet", Default: "world"}).
//	    Callback(func(ctx *archons.Context) { ... }).
//	    Command()
func Define(name string) *CommandBuilder {
	return &CommandBuilder{command: NewCommand(CommandMeta{Name: name})}
}

// Version sets the version printed by --version.
func (b *CommandBuilder) Version(v string) *CommandBuilder {
	b.command.Meta.Version = v
	return b
}

// About sets the command description.
func (b *CommandBuilder) About(about string) *CommandBuilder {
	b.command.Meta.About = about
	return b
}

// Styled enables colored help output.
func (b *CommandBuilder) Styled() *CommandBuilder {
	b.command.Meta.Styled = true
	return b
}

// RequireSubcommand makes parsing fail unless a subcommand is selected.
func (b *CommandBuilder) RequireSubcommand() *CommandBuilder {
	b.command.Meta.SubcommandRequired = true
	return b
}

// Option declares a named option.
func (b *CommandBuilder) Option(key string, opt Option) *CommandBuilder {
	b.command.AddOption(key, opt)
	return b
}

// Flag declares a boolean flag (store action) with help text.
func (b *CommandBuilder) Flag(key, help string) *CommandBuilder {
	b.command.AddOption(key, Option{Action: ActionStore, Help: help})
	return b
}

// Positional declares a positional argument. Positionals are filled in
// declaration order.
func (b *CommandBuilder) Positional(key string, opt Option) *CommandBuilder {
	opt.Kind = KindPositional
	b.command.AddOption(key, opt)
	return b
}

// Subcommand attaches the command built by sub. Its name is the subcommand name.
func (b *CommandBuilder) Subcommand(sub *CommandBuilder) *CommandBuilder {
	b.command.AddSubcommand(sub.command.Meta.Name, sub.command)
	return b
}

// Callback sets the function invoked when this command is the terminal one.
func (b *CommandBuilder) Callback(fn Callback) *CommandBuilder {
	b.command.Callback = fn
	return b
}

// Command returns the built command.
func (b *CommandBuilder) Command() *Command {
	return b.command
}
