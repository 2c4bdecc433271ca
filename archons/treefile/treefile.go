// Package treefile loads archons command trees declared in YAML or TOML.
//
// A tree file mirrors archons.Command: a command has metadata, an ordered
// "options" table keyed by option key and an ordered "subcommands" table
// keyed by subcommand name. Declaration order is preserved in both formats.
//
//	name: deploy
//	version: 1.2.0
//	options:
//	  env:
//	    help: Target environment
//	    required: true
//	  replicas:
//	    parser: number
//	    default: 2
//	subcommands:
//	  rollback:
//	    callback: rollback
//
// Callbacks are referenced by name and bound with Callbacks when the tree is
// turned into an archons.Command.
package treefile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is the serialization of a tree file.
type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatOf infers the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	}
	return FormatYAML, fmt.Errorf("%s: unsupported tree file extension (want .yaml, .yml or .toml)", path)
}

// Header holds the metadata of a command.
type Header struct {
	Name               string `yaml:"name" toml:"name"`
	Version            string `yaml:"version" toml:"version"`
	About              string `yaml:"about" toml:"about"`
	Styled             bool   `yaml:"styled" toml:"styled"`
	SubcommandRequired bool   `yaml:"subcommandRequired" toml:"subcommandRequired"`
	// Callback names the entry of Callbacks invoked for this command.
	Callback string `yaml:"callback" toml:"callback"`
}

// Document is a decoded command tree.
type Document struct {
	Header
	Options     []OptionEntry
	Subcommands []CommandEntry
}

// OptionEntry is one option of a command, in declaration order.
type OptionEntry struct {
	Key  string
	Spec OptionSpec
}

// CommandEntry is one subcommand of a command, in declaration order.
type CommandEntry struct {
	Name    string
	Command *Document
}

// OptionSpec is the declarative form of archons.Option. Enumerations are
// given by name: type is "option" or "positional", action one of "set",
// "append", "count", "store", "storeFalse", parser one of "string",
// "number", "boolean".
type OptionSpec struct {
	Type   string `yaml:"type" toml:"type"`
	Parser string `yaml:"parser" toml:"parser"`
	Action string `yaml:"action" toml:"action"`

	Short   string `yaml:"short" toml:"short"`
	NoShort bool   `yaml:"noShort" toml:"noShort"`
	Long    string `yaml:"long" toml:"long"`

	Alias            []string `yaml:"alias" toml:"alias"`
	HiddenAlias      []string `yaml:"hiddenAlias" toml:"hiddenAlias"`
	ShortAlias       []string `yaml:"shortAlias" toml:"shortAlias"`
	HiddenShortAlias []string `yaml:"hiddenShortAlias" toml:"hiddenShortAlias"`

	Help      string `yaml:"help" toml:"help"`
	ValueName string `yaml:"valueName" toml:"valueName"`

	Required       bool   `yaml:"required" toml:"required"`
	Default        Scalar `yaml:"default" toml:"default"`
	DefaultMissing Scalar `yaml:"defaultMissing" toml:"defaultMissing"`
	NumArgs        Scalar `yaml:"numArgs" toml:"numArgs"`
	RequiredEquals bool   `yaml:"requiredEquals" toml:"requiredEquals"`

	Hidden           bool     `yaml:"hidden" toml:"hidden"`
	HideDefaultValue bool     `yaml:"hideDefaultValue" toml:"hideDefaultValue"`
	Global           bool     `yaml:"global" toml:"global"`
	Exclusive        bool     `yaml:"exclusive" toml:"exclusive"`
	ConflictsWith    []string `yaml:"conflictsWith" toml:"conflictsWith"`
	Env              []string `yaml:"env" toml:"env"`
}

// Scalar is a string that may be written as a number or boolean in the
// file, so that `numArgs: 2` and `default: 8080` need no quoting.
type Scalar string

// UnmarshalYAML accepts any scalar node.
func (s *Scalar) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar value", node.Line)
	}
	*s = Scalar(node.Value)
	return nil
}

// UnmarshalTOML accepts strings, integers, floats and booleans.
func (s *Scalar) UnmarshalTOML(v any) error {
	switch v := v.(type) {
	case string:
		*s = Scalar(v)
	case int64:
		*s = Scalar(strconv.FormatInt(v, 10))
	case float64:
		*s = Scalar(strconv.FormatFloat(v, 'g', -1, 64))
	case bool:
		*s = Scalar(strconv.FormatBool(v))
	default:
		return fmt.Errorf("expected a scalar value, got %T", v)
	}
	return nil
}

// Parse decodes a tree file in the given format.
func Parse(data []byte, format Format) (*Document, error) {
	switch format {
	case FormatYAML:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	}
	return nil, fmt.Errorf("unsupported format %s", format)
}

// Load reads and decodes the tree file at path. The format follows the
// file extension.
func Load(path string) (*Document, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
