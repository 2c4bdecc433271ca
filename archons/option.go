package archons

import (
	"fmt"
	"strings"
)

// Kind tells whether an option is matched by name or by position.
type Kind int

const (
	KindOption Kind = iota
	KindPositional
)

func (k Kind) String() string {
	switch k {
	case KindOption:
		return "option"
	case KindPositional:
		return "positional"
	default:
		return "unknown"
	}
}

// ParseKind converts the textual form used in tree files ("option",
// "positional") into a Kind. An empty string means KindOption.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(s) {
	case "", "option":
		return KindOption, nil
	case "positional":
		return KindPositional, nil
	}
	return KindOption, fmt.Errorf("unknown option type %q", s)
}

// Action controls how the values of an option are merged into the argument map.
type Action int

const (
	// ActionSet keeps the values of the last occurrence.
	ActionSet Action = iota
	// ActionAppend accumulates values across occurrences.
	ActionAppend
	// ActionCount counts occurrences.
	ActionCount
	// ActionStore records true when the flag is present.
	ActionStore
	// ActionStoreFalse records false when the flag is present.
	ActionStoreFalse
)

func (a Action) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionAppend:
		return "append"
	case ActionCount:
		return "count"
	case ActionStore:
		return "store"
	case ActionStoreFalse:
		return "storeFalse"
	default:
		return "unknown"
	}
}

// takesValues reports whether occurrences of the action consume values.
func (a Action) takesValues() bool {
	return a == ActionSet || a == ActionAppend
}

// ParseAction converts "set", "append", "count", "store" or "storeFalse"
// into an Action. An empty string means ActionSet.
func ParseAction(s string) (Action, error) {
	switch strings.ToLower(s) {
	case "", "set":
		return ActionSet, nil
	case "append":
		return ActionAppend, nil
	case "count":
		return ActionCount, nil
	case "store", "store_true", "storetrue":
		return ActionStore, nil
	case "storefalse", "store_false":
		return ActionStoreFalse, nil
	}
	return ActionSet, fmt.Errorf("unknown action %q", s)
}

// ValueParser selects how raw strings are coerced. It only applies to the set
// and append actions; count, store and storeFalse produce counts and booleans.
type ValueParser int

const (
	ParserString ValueParser = iota
	ParserNumber
	ParserBoolean
)

func (p ValueParser) String() string {
	switch p {
	case ParserString:
		return "string"
	case ParserNumber:
		return "number"
	case ParserBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// ParseValueParser converts "string", "number" or "boolean" into a ValueParser.
func ParseValueParser(s string) (ValueParser, error) {
	switch strings.ToLower(s) {
	case "", "string":
		return ParserString, nil
	case "number":
		return ParserNumber, nil
	case "boolean", "bool":
		return ParserBoolean, nil
	}
	return ParserString, fmt.Errorf("unknown value parser %q", s)
}

// Option declares a named option or a positional argument of a command. The
// zero value is a string option taking exactly one value, invoked by its key
// as long name and the key's first character as short name.
type Option struct {
	Kind   Kind
	Parser ValueParser
	Action Action

	// Short overrides the derived short name. Only its first character is used.
	Short string
	// NoShort disables the short name derived from Long.
	NoShort bool
	// Long overrides the long name, which otherwise is the option key.
	Long string

	Alias            []string
	HiddenAlias      []string
	ShortAlias       []string
	HiddenShortAlias []string

	Help string
	// ValueName is the placeholder shown in help. Defaults to the upper-cased key.
	ValueName string

	Required bool
	// Default is used when the option is wholly absent. Empty means no default.
	Default string
	// DefaultMissing is used when the option is present but given zero values.
	DefaultMissing string
	// NumArgs bounds the values one occurrence consumes: "2", "1..3",
	// "1..=3", "..=2", "1..", "..".
	NumArgs string
	// RequiredEquals only accepts values given inline as --name=value.
	RequiredEquals bool

	Hidden           bool
	HideDefaultValue bool
	Global           bool
	Exclusive        bool
	ConflictsWith    []string

	// Env lists environment variables consulted, in order, when the option is
	// absent from the command line. They take precedence over Default.
	Env []string
}
