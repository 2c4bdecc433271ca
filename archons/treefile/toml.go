package treefile

import (
	"fmt"
	"sort"

	"github.com/BurntSushi/toml"
)

type tomlCommand struct {
	Header
	Options     map[string]toml.Primitive `toml:"options"`
	Subcommands map[string]toml.Primitive `toml:"subcommands"`
}

func parseTOML(data []byte) (*Document, error) {
	var raw tomlCommand
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	return fromTOML(md, &raw, nil)
}

func fromTOML(md toml.MetaData, raw *tomlCommand, path toml.Key) (*Document, error) {
	doc := &Document{Header: raw.Header}

	for _, key := range childKeys(md, extend(path, "options"), raw.Options) {
		var spec OptionSpec
		if err := md.PrimitiveDecode(raw.Options[key], &spec); err != nil {
			return nil, fmt.Errorf("option %q: %w", key, err)
		}
		doc.Options = append(doc.Options, OptionEntry{Key: key, Spec: spec})
	}

	for _, name := range childKeys(md, extend(path, "subcommands"), raw.Subcommands) {
		var sub tomlCommand
		if err := md.PrimitiveDecode(raw.Subcommands[name], &sub); err != nil {
			return nil, fmt.Errorf("subcommand %q: %w", name, err)
		}
		child, err := fromTOML(md, &sub, extend(path, "subcommands", name))
		if err != nil {
			return nil, fmt.Errorf("subcommand %q: %w", name, err)
		}
		doc.Subcommands = append(doc.Subcommands, CommandEntry{Name: name, Command: child})
	}
	return doc, nil
}

// childKeys returns the keys of the table at prefix in document order. Keys
// the metadata does not order are appended sorted.
func childKeys[V any](md toml.MetaData, prefix toml.Key, table map[string]V) []string {
	out := make([]string, 0, len(table))
	seen := make(map[string]bool, len(table))
	for _, key := range md.Keys() {
		if len(key) <= len(prefix) || !hasPrefix(key, prefix) {
			continue
		}
		name := key[len(prefix)]
		if _, ok := table[name]; !ok || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}

	var rest []string
	for name := range table {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func hasPrefix(key, prefix toml.Key) bool {
	for i := range prefix {
		if key[i] != prefix[i] {
			return false
		}
	}
	return true
}

func extend(path toml.Key, names ...string) toml.Key {
	out := make(toml.Key, 0, len(path)+len(names))
	out = append(out, path...)
	return append(out, names...)
}
