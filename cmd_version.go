package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"
)

// versionCmd implements `version` (§6.4); `--version` is also handled
// ahead of subcommand dispatch in main, for tools that expect it as a
// top-level flag rather than a subcommand.
type versionCmd struct{}

func (*versionCmd) Name() string     { return "version" }
func (*versionCmd) Synopsis() string { return "Print the tool version" }
func (*versionCmd) Usage() string    { return "version:\n  Print the tool version.\n" }
func (*versionCmd) SetFlags(f *flag.FlagSet) {}

func (*versionCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	fmt.Println(toolVersion)
	return subcommands.ExitSuccess
}
