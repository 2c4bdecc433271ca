package archons

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func helpFixture() *Command {
	return Define("tool").
		Version("1.0.0").
		About("Build things").
		Option("config", Option{Help: "Config file", Global: true, Env: []string{"TOOL_CONFIG"}}).
		Option("jobs", Option{Parser: ParserNumber, Default: "4", Help: "Parallel jobs"}).
		Option("verbose", Option{Action: ActionCount, Help: "More output", Alias: []string{"loud"}}).
		Option("secret", Option{Hidden: true}).
		Positional("target", Option{Required: true, Help: "What to build"}).
		Subcommand(Define("clean").About("Remove outputs")).
		Command()
}

func TestRenderHelp(t *testing.T) {
	prog := MustCompile(helpFixture())

	row := func(left, right string) string {
		return fmt.Sprintf("  %-21s  %s\n", left, right)
	}
	want := "Build things\n\n" +
		"Usage: tool [OPTIONS] <TARGET> [COMMAND]\n" +
		"\nCommands:\n" +
		row("clean", "Remove outputs") +
		"\nArguments:\n" +
		row("<TARGET>", "What to build") +
		"\nOptions:\n" +
		row("-c, --config <CONFIG>", "Config file [env: TOOL_CONFIG]") +
		row("-j, --jobs <JOBS>", "Parallel jobs [default: 4]") +
		row("-v, --verbose", "More output [aliases: --loud]") +
		row("-h, --help", "Print help") +
		row("-V, --version", "Print version")

	got := renderHelp(prog.root, "ignored", nil)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("help mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderHelp_Subcommand(t *testing.T) {
	res, err := MustCompile(helpFixture()).Parse([]string{"clean", "--help"})
	if err != nil {
		t.Fatal(err)
	}
	help := res.Help()

	for _, want := range []string{"Remove outputs\n", "Usage: tool clean [OPTIONS]\n", "--config <CONFIG>", "-h, --help"} {
		if !strings.Contains(help, want) {
			t.Errorf("help missing %q:\n%s", want, help)
		}
	}
	for _, unwanted := range []string{"--version", "--jobs", "Commands:"} {
		if strings.Contains(help, unwanted) {
			t.Errorf("help must not contain %q:\n%s", unwanted, help)
		}
	}
}

func TestRenderHelp_RootName(t *testing.T) {
	named := MustCompile(Define("tool").Version("1.0.0").Command())
	if got := renderHelp(named.root, "bin", nil); !strings.HasPrefix(got, "Usage: tool [OPTIONS]\n") {
		t.Errorf("named root help = %q", got)
	}
	if got := versionLine(named.root, "bin"); got != "tool 1.0.0" {
		t.Errorf("named root version = %q", got)
	}

	anonymous := MustCompile(Define("").Version("1.0.0").Subcommand(Define("run")).Command())
	if got := renderHelp(anonymous.root, "bin", nil); !strings.HasPrefix(got, "Usage: bin [OPTIONS] [COMMAND]\n") {
		t.Errorf("anonymous root help = %q", got)
	}
	if got := versionLine(anonymous.root, "bin"); got != "bin 1.0.0" {
		t.Errorf("anonymous root version = %q", got)
	}
	run := anonymous.root.subcommands[0]
	if got := usageLine(run, "bin"); !strings.HasPrefix(got, "bin run ") {
		t.Errorf("subcommand usage = %q", got)
	}
}

func TestRenderHelp_WideNames(t *testing.T) {
	cmd := Define("tool").
		Subcommand(Define("größe").About("Resize")).
		Subcommand(Define("ab").About("Short")).
		Positional("ziel", Option{Required: true, ValueName: "ZIËL", Help: "Target"}).
		Command()
	got := renderHelp(MustCompile(cmd).root, "", nil)

	// the widest left column is "-h, --help" (10 runes)
	for _, want := range []string{
		"  größe       Resize\n",
		"  ab          Short\n",
		"  <ZIËL>      Target\n",
		"  -h, --help  Print help\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("help missing %q:\n%s", want, got)
		}
	}
}

func TestRenderHelp_Styled(t *testing.T) {
	plain := MustCompile(helpFixture())
	if got := renderHelp(plain.root, "", colorStyle()); strings.Contains(got, "\x1b[") {
		t.Errorf("unstyled command rendered with colors:\n%s", got)
	}

	cmd := helpFixture()
	cmd.Meta.Styled = true
	styled := MustCompile(cmd)
	got := renderHelp(styled.root, "", colorStyle())
	if !strings.Contains(got, "\x1b[") {
		t.Errorf("styled help has no colors:\n%s", got)
	}
	if renderHelp(styled.root, "", nil) != renderHelp(plain.root, "", nil) {
		t.Error("plain rendering of a styled command differs")
	}
}

func TestUsageNames(t *testing.T) {
	cmd := Define("x").
		Option("many", Option{NumArgs: "1.."}).
		Option("opt", Option{NumArgs: "0..=1"}).
		Option("pair", Option{NumArgs: "2"}).
		Option("eq", Option{RequiredEquals: true, NumArgs: "0..=1", DefaultMissing: "on"}).
		Option("strict", Option{RequiredEquals: true}).
		Option("flag", Option{Action: ActionStore}).
		Positional("rest", Option{Action: ActionAppend, ValueName: "FILE"}).
		Command()
	prog := MustCompile(cmd)

	tests := map[string]string{
		"many":   "--many <MANY>...",
		"opt":    "--opt [<OPT>]",
		"pair":   "--pair <PAIR> <PAIR>",
		"eq":     "--eq[=<EQ>]",
		"strict": "--strict=<STRICT>",
		"flag":   "--flag",
		"rest":   "<FILE>",
	}
	for key, want := range tests {
		if got := usageName(prog.root.byKey[key]); got != want {
			t.Errorf("usageName(%s) = %q, want %q", key, got, want)
		}
	}

	if got := usageLine(prog.root, ""); got != "x [OPTIONS] [FILE]..." {
		t.Errorf("usageLine = %q", got)
	}
}
