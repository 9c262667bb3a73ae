package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"vlbc/disasm"
	"vlbc/ioutilx"
	"vlbc/linker"
	"vlbc/vlbcfile"
)

// linkCmd implements `link` and its `build` alias (§6.4): each input is
// loaded (assembled if `.asm`, decoded if `.vlbc`), then merged by
// linker.Link into a single module with a deduplicated global string pool.
type linkCmd struct {
	name    string
	out     string
	mapPath string
	disPath string
}

func (l *linkCmd) Name() string { return l.name }
func (*linkCmd) Synopsis() string {
	return "Merge assembled/linked VLBC modules into one module"
}
func (*linkCmd) Usage() string {
	return `link <inputs...> [-o out.vlbc] [--map path] [--disasm path]:
  Merge ".asm" and ".vlbc" inputs, deduplicating their string pools, into a
  single VLBC module. "build" is an alias for "link".
`
}

func (cmd *linkCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&cmd.out, "o", "out.vlbc", "output path")
	f.StringVar(&cmd.mapPath, "map", "", "optional path to write the link map (old -> new pool indices)")
	f.StringVar(&cmd.disPath, "disasm", "", "optional path to write a disassembly of the merged module")
}

func (cmd *linkCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	paths := f.Args()
	if len(paths) == 0 {
		fmt.Fprintf(os.Stderr, "💥 %s takes at least one input\n", cmd.name)
		return subcommands.ExitUsageError
	}

	inputs := make([]linker.Input, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to read %s: %v\n", p, err)
			return subcommands.ExitFailure
		}
		in, err := linker.LoadInput(p, data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		inputs = append(inputs, in)
	}

	merged, report, err := linker.Link(inputs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 link: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := ioutilx.WriteAtomic(cmd.out, vlbcfile.Encode(merged)); err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to write output: %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.mapPath != "" {
		if err := ioutilx.WriteAtomic(cmd.mapPath, []byte(report.WriteMapFile("vlbc"))); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write map file: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	if cmd.disPath != "" {
		text, err := disasm.Program(merged.Code, merged.Strings)
		if err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to disassemble merged module: %v\n", err)
			return subcommands.ExitFailure
		}
		if err := ioutilx.WriteAtomic(cmd.disPath, []byte(text)); err != nil {
			fmt.Fprintf(os.Stderr, "💥 failed to write disassembly: %v\n", err)
			return subcommands.ExitFailure
		}
	}

	return subcommands.ExitSuccess
}
