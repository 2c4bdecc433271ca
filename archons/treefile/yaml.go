package treefile

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

func parseYAML(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// UnmarshalYAML decodes a command keeping the order of its options and
// subcommands.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Header      `yaml:",inline"`
		Options     yaml.Node `yaml:"options"`
		Subcommands yaml.Node `yaml:"subcommands"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	d.Header = raw.Header
	d.Options = nil
	d.Subcommands = nil

	err := eachPair(&raw.Options, func(key string, value *yaml.Node) error {
		var spec OptionSpec
		if value.Kind != 0 && !isNull(value) {
			if err := value.Decode(&spec); err != nil {
				return fmt.Errorf("option %q: %w", key, err)
			}
		}
		d.Options = append(d.Options, OptionEntry{Key: key, Spec: spec})
		return nil
	})
	if err != nil {
		return err
	}

	return eachPair(&raw.Subcommands, func(name string, value *yaml.Node) error {
		sub := &Document{}
		if !isNull(value) {
			if err := value.Decode(sub); err != nil {
				return fmt.Errorf("subcommand %q: %w", name, err)
			}
		}
		d.Subcommands = append(d.Subcommands, CommandEntry{Name: name, Command: sub})
		return nil
	})
}

// eachPair walks a mapping node in document order. An absent or null node
// has no pairs.
func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	if node.Kind == 0 || isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping", node.Line)
	}
	seen := make(map[string]bool, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		if seen[key] {
			return fmt.Errorf("line %d: duplicate key %q", node.Content[i].Line, key)
		}
		seen[key] = true
		if err := fn(key, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

func isNull(node *yaml.Node) bool {
	return node.Kind == yaml.ScalarNode && node.Tag == "!!null"
}
