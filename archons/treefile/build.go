package treefile

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/dzonerzy/go-archons/archons"
)

// Callbacks binds the callback names used in a tree file.
type Callbacks map[string]archons.Callback

// Command converts the document into a command tree. Every undefined
// enumeration value and unbound callback name is reported; the tree itself is
// validated later by archons.Compile.
func (d *Document) Command(callbacks Callbacks) (*archons.Command, error) {
	var errs *multierror.Error
	cmd := d.build(d.Name, []string{d.Name}, callbacks, &errs)
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return cmd, nil
}

func (d *Document) build(name string, path []string, callbacks Callbacks, errs **multierror.Error) *archons.Command {
	meta := archons.CommandMeta{
		Name:               d.Name,
		Version:            d.Version,
		About:              d.About,
		Styled:             d.Styled,
		SubcommandRequired: d.SubcommandRequired,
	}
	if meta.Name == "" {
		meta.Name = name
	}
	cmd := archons.NewCommand(meta)

	where := strings.Join(path, " ")
	if d.Callback != "" {
		fn, ok := callbacks[d.Callback]
		if !ok {
			*errs = multierror.Append(*errs, fmt.Errorf("command '%s': unknown callback %q", where, d.Callback))
		}
		cmd.Callback = fn
	}

	for _, entry := range d.Options {
		opt, err := entry.Spec.Option()
		if err != nil {
			*errs = multierror.Append(*errs, fmt.Errorf("command '%s': option '%s': %w", where, entry.Key, err))
			continue
		}
		cmd.AddOption(entry.Key, opt)
	}

	for _, entry := range d.Subcommands {
		sub := entry.Command
		if sub == nil {
			sub = &Document{}
		}
		subPath := append(append([]string{}, path...), entry.Name)
		cmd.AddSubcommand(entry.Name, sub.build(entry.Name, subPath, callbacks, errs))
	}
	return cmd
}

// Option converts s into an archons.Option.
func (s OptionSpec) Option() (archons.Option, error) {
	kind, err := archons.ParseKind(s.Type)
	if err != nil {
		return archons.Option{}, err
	}
	parser, err := archons.ParseValueParser(s.Parser)
	if err != nil {
		return archons.Option{}, err
	}
	action, err := archons.ParseAction(s.Action)
	if err != nil {
		return archons.Option{}, err
	}
	return archons.Option{
		Kind:             kind,
		Parser:           parser,
		Action:           action,
		Short:            s.Short,
		NoShort:          s.NoShort,
		Long:             s.Long,
		Alias:            s.Alias,
		HiddenAlias:      s.HiddenAlias,
		ShortAlias:       s.ShortAlias,
		HiddenShortAlias: s.HiddenShortAlias,
		Help:             s.Help,
		ValueName:        s.ValueName,
		Required:         s.Required,
		Default:          string(s.Default),
		DefaultMissing:   string(s.DefaultMissing),
		NumArgs:          string(s.NumArgs),
		RequiredEquals:   s.RequiredEquals,
		Hidden:           s.Hidden,
		HideDefaultValue: s.HideDefaultValue,
		Global:           s.Global,
		Exclusive:        s.Exclusive,
		ConflictsWith:    s.ConflictsWith,
		Env:              s.Env,
	}, nil
}

// CallbackNames lists the distinct callback names referenced by the tree in
// declaration order.
func (d *Document) CallbackNames() []string {
	var names []string
	seen := map[string]bool{}
	var walk func(*Document)
	walk = func(doc *Document) {
		if doc == nil {
			return
		}
		if doc.Callback != "" && !seen[doc.Callback] {
			seen[doc.Callback] = true
			names = append(names, doc.Callback)
		}
		for _, sub := range doc.Subcommands {
			walk(sub.Command)
		}
	}
	walk(d)
	return names
}

// Lookup returns the document of the subcommand reached by following path
// from d.
func (d *Document) Lookup(path ...string) (*Document, bool) {
	doc := d
	for _, name := range path {
		var next *Document
		for _, sub := range doc.Subcommands {
			if sub.Name == name {
				next = sub.Command
				if next == nil {
					next = &Document{}
				}
				break
			}
		}
		if next == nil {
			return nil, false
		}
		doc = next
	}
	return doc, true
}

// LoadCommand loads the tree file at path and binds its callbacks.
func LoadCommand(path string, callbacks Callbacks) (*archons.Command, error) {
	doc, err := Load(path)
	if err != nil {
		return nil, err
	}
	cmd, err := doc.Command(callbacks)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cmd, nil
}
