package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

// toolVersion is reported by the version subcommand and --version (§6.4).
const toolVersion = "0.1.0"

func main() {
	// "tool --version" and "tool --help" are accepted ahead of subcommand
	// dispatch (§6.4), mirroring the flag package's own --help handling.
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "--version":
			fmt.Println(toolVersion)
			os.Exit(0)
		case "--help", "-h":
			os.Args[1] = "help"
		}
	}

	commander := subcommands.NewCommander(flag.CommandLine, "vlbc")
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	// VLBC toolchain (in scope): assemble, link, inspect, version.
	commander.Register(&compileCmd{}, "")
	commander.Register(&linkCmd{name: "link"}, "")
	commander.Register(&linkCmd{name: "build"}, "") // alias, §6.4
	commander.Register(&inspectCmd{}, "")
	commander.Register(&versionCmd{}, "")

	// Nilan front end (out of scope per §1, kept as the driver's pluggable
	// pipeline): lex/parse/interpret/compile-to-bytecode entry points.
	commander.Register(&runCmd{}, "nilan")
	commander.Register(&runCompiledCmd{}, "nilan")
	commander.Register(&replCmd{}, "nilan")
	commander.Register(&replCompiledCmd{}, "nilan")
	commander.Register(&emitBytecodeCmd{}, "nilan")

	flag.Parse()
	ctx := context.Background()
	os.Exit(int(commander.Execute(ctx)))
}
