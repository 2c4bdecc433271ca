package treefile

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/go-multierror"

	"github.com/dzonerzy/go-archons/archons"
	archio "github.com/dzonerzy/go-archons/io"
)

const deployYAML = `
name: deploy
version: 1.2.0
about: Deploy services
options:
  region:
    help: Target region
    global: true
    env: [DEPLOY_REGION]
  replicas:
    parser: number
    noShort: true
    default: 2
  verbose:
    action: count
subcommands:
  push:
    about: Push a release
    callback: push
    options:
      tag:
        type: positional
        required: true
      force:
        action: store
  rollback:
    callback: rollback
`

const deployTOML = `
name = "deploy"
version = "1.2.0"
about = "Deploy services"

[options.region]
help = "Target region"
global = true
env = ["DEPLOY_REGION"]

[options.replicas]
parser = "number"
noShort = true
default = 2

[options.verbose]
action = "count"

[subcommands.push]
about = "Push a release"
callback = "push"

[subcommands.push.options.tag]
type = "positional"
required = true

[subcommands.push.options.force]
action = "store"

[subcommands.rollback]
callback = "rollback"
`

func deployDocument() *Document {
	return &Document{
		Header: Header{Name: "deploy", Version: "1.2.0", About: "Deploy services"},
		Options: []OptionEntry{
			{Key: "region", Spec: OptionSpec{Help: "Target region", Global: true, Env: []string{"DEPLOY_REGION"}}},
			{Key: "replicas", Spec: OptionSpec{Parser: "number", NoShort: true, Default: "2"}},
			{Key: "verbose", Spec: OptionSpec{Action: "count"}},
		},
		Subcommands: []CommandEntry{
			{Name: "push", Command: &Document{
				Header: Header{About: "Push a release", Callback: "push"},
				Options: []OptionEntry{
					{Key: "tag", Spec: OptionSpec{Type: "positional", Required: true}},
					{Key: "force", Spec: OptionSpec{Action: "store"}},
				},
			}},
			{Name: "rollback", Command: &Document{Header: Header{Callback: "rollback"}}},
		},
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		format Format
		data   string
	}{
		{FormatYAML, deployYAML},
		{FormatTOML, deployTOML},
	}
	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			doc, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(deployDocument(), doc); diff != "" {
				t.Errorf("document mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParse_ScalarForms(t *testing.T) {
	yamlDoc := `
options:
  pair:
    numArgs: 2
  ratio:
    parser: number
    default: 0.5
  debug:
    parser: boolean
    default: true
  empty:
`
	doc, err := Parse([]byte(yamlDoc), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]OptionSpec{}
	for _, e := range doc.Options {
		got[e.Key] = e.Spec
	}
	want := map[string]OptionSpec{
		"pair":  {NumArgs: "2"},
		"ratio": {Parser: "number", Default: "0.5"},
		"debug": {Parser: "boolean", Default: "true"},
		"empty": {},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("yaml scalars mismatch (-want +got):\n%s", diff)
	}

	tomlDoc := `
[options.pair]
numArgs = 2

[options.range]
numArgs = "1..=3"

[options.ratio]
default = 0.5
`
	doc, err = Parse([]byte(tomlDoc), FormatTOML)
	if err != nil {
		t.Fatal(err)
	}
	keys := make([]string, len(doc.Options))
	for i, e := range doc.Options {
		keys[i] = e.Key + "=" + string(e.Spec.NumArgs) + string(e.Spec.Default)
	}
	if diff := cmp.Diff([]string{"pair=2", "range=1..=3", "ratio=0.5"}, keys); diff != "" {
		t.Errorf("toml scalars mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		data   string
		want   string
	}{
		{"options not a mapping", FormatYAML, "options: [a, b]", "expected a mapping"},
		{"non scalar default", FormatYAML, "options:\n  x:\n    default: [1]", "expected a scalar"},
		{"bad toml", FormatTOML, "name = ", ""},
		{"toml array default", FormatTOML, "[options.x]\ndefault = [1]", "expected a scalar"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), tt.format)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{"a.yaml": FormatYAML, "b.YML": FormatYAML, "dir/c.toml": FormatTOML}
	for path, want := range tests {
		if got, err := FormatOf(path); err != nil || got != want {
			t.Errorf("FormatOf(%q) = %v, %v", path, got, err)
		}
	}
	if _, err := FormatOf("tree.json"); err == nil {
		t.Error("expected error for .json")
	}
}

func TestCommand_Runs(t *testing.T) {
	var got map[string]any
	callbacks := Callbacks{
		"push": func(ctx *archons.Context) {
			got = map[string]any{}
			for _, key := range ctx.Keys() {
				got[key], _ = ctx.Lookup(key)
			}
		},
		"rollback": func(ctx *archons.Context) {},
	}

	doc, err := Parse([]byte(deployYAML), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	cmd, err := doc.Command(callbacks)
	if err != nil {
		t.Fatalf("Command: %v", err)
	}

	var out, errOut bytes.Buffer
	r := archons.NewRunner().
		WithIO(archio.New().WithOut(&out).WithErr(&errOut).NoColor()).
		WithEnv(func(key string) (string, bool) {
			if key == "DEPLOY_REGION" {
				return "eu-west", true
			}
			return "", false
		})

	if code := r.RunAndGetExitCode(cmd, []string{"deploy", "push", "v1.0", "--force"}); code != 0 {
		t.Fatalf("exit code %d: %s", code, errOut.String())
	}
	want := map[string]any{"force": true, "region": "eu-west", "tag": "v1.0"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("args mismatch (-want +got):\n%s", diff)
	}

	if code := r.RunAndGetExitCode(cmd, []string{"deploy", "push"}); code != 2 {
		t.Errorf("missing positional: exit code %d, want 2", code)
	}
}

func TestCommand_ReportsAllErrors(t *testing.T) {
	doc := &Document{
		Header: Header{Name: "x", Callback: "main"},
		Options: []OptionEntry{
			{Key: "mode", Spec: OptionSpec{Action: "toggle"}},
			{Key: "size", Spec: OptionSpec{Parser: "bytes"}},
		},
	}
	_, err := doc.Command(nil)
	var merr *multierror.Error
	if !errors.As(err, &merr) {
		t.Fatalf("expected *multierror.Error, got %v", err)
	}
	if len(merr.Errors) != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", len(merr.Errors), merr)
	}
	for _, want := range []string{`unknown callback "main"`, `option 'mode': unknown action "toggle"`, `unknown value parser "bytes"`} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err, want)
		}
	}
}

func TestCommand_SubcommandNames(t *testing.T) {
	doc := &Document{
		Header: Header{Name: "x"},
		Subcommands: []CommandEntry{
			{Name: "run"},
			{Name: "exec", Command: &Document{Header: Header{Name: "other"}}},
		},
	}
	cmd, err := doc.Command(nil)
	if err != nil {
		t.Fatal(err)
	}
	run, _ := cmd.Subcommands.Get("run")
	if run.Meta.Name != "run" {
		t.Errorf("subcommand name = %q, want run", run.Meta.Name)
	}
	if _, err := archons.Compile(cmd); err == nil || !strings.Contains(err.Error(), `"other"`) {
		t.Errorf("expected meta name mismatch, got %v", err)
	}
}

func TestLoadCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deploy.toml")
	if err := os.WriteFile(path, []byte(deployTOML), 0o600); err != nil {
		t.Fatal(err)
	}

	cmd, err := LoadCommand(path, Callbacks{"push": func(*archons.Context) {}, "rollback": func(*archons.Context) {}})
	if err != nil {
		t.Fatalf("LoadCommand: %v", err)
	}
	if _, err := archons.Compile(cmd); err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if cmd.Options.Len() != 3 || cmd.Subcommands.Len() != 2 {
		t.Errorf("unexpected tree: %d options, %d subcommands", cmd.Options.Len(), cmd.Subcommands.Len())
	}

	if _, err := LoadCommand(path, nil); err == nil || !strings.HasPrefix(err.Error(), path) {
		t.Errorf("expected error prefixed with path, got %v", err)
	}
	if _, err := Load(filepath.Join(dir, "missing.yaml")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}
