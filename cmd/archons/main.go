// Command archons checks, explains and dry-runs command trees declared in
// YAML or TOML tree files.
//
//	archons check deploy.yaml
//	archons explain deploy.yaml push
//	archons parse -e DEPLOY_REGION=eu deploy.yaml -- push v1.0 --force
package main

import (
	"os"

	"github.com/dzonerzy/go-archons/archons"
)

const version = "0.1.0"

func main() {
	archons.NewRunner().Run(command(), os.Args)
}

func command() *archons.Command {
	file := archons.Option{Required: true, ValueName: "TREE_FILE", Help: "Tree file (.yaml, .yml or .toml)"}

	return archons.Define("archons").
		Version(version).
		About("Check, explain and dry-run command trees declared in YAML or TOML").
		Styled().
		RequireSubcommand().
		Subcommand(archons.Define("check").
			About("Validate a tree file").
			Flag("strict", "Treat warnings as errors").
			Positional("file", file).
			Callback(check)).
		Subcommand(archons.Define("explain").
			About("Print the help of every command in a tree file").
			Positional("file", file).
			Positional("command", archons.Option{
				Action:    archons.ActionAppend,
				ValueName: "NAME",
				Help:      "Only explain the subcommand at this path",
			}).
			Callback(explain)).
		Subcommand(archons.Define("parse").
			About("Parse arguments against a tree file and print the result as JSON").
			Option("env", archons.Option{
				Action:    archons.ActionAppend,
				ValueName: "KEY=VALUE",
				Help:      "Environment variable visible to the parse",
			}).
			Flag("compact", "Print the JSON report on one line").
			Positional("file", file).
			Positional("args", archons.Option{
				Action:    archons.ActionAppend,
				ValueName: "ARG",
				Help:      "Arguments to parse; put them after --",
			}).
			Callback(parse)).
		Command()
}
