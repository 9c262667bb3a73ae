package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"vlbc/disasm"
	"vlbc/opcode"
	"vlbc/vlbcfile"
)

// inspectCmd implements `inspect` (§6.4): file -> C4 -> C6.
type inspectCmd struct {
	showStrings bool
	showHexdump bool
	interactive bool
}

func (*inspectCmd) Name() string     { return "inspect" }
func (*inspectCmd) Synopsis() string { return "Disassemble and inspect a VLBC module" }
func (*inspectCmd) Usage() string {
	return `inspect <file.vlbc> [--strings] [--hexdump] [--interactive]:
  Load and validate a VLBC module, then render its code as assembly text.
`
}

func (cmd *inspectCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&cmd.showStrings, "strings", false, "also list the string pool")
	f.BoolVar(&cmd.showHexdump, "hexdump", false, "also hex-dump the raw code bytes")
	f.BoolVar(&cmd.interactive, "interactive", false, "step through the module one instruction/pool entry at a time")
}

func (cmd *inspectCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	args := f.Args()
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "💥 inspect takes exactly one input\n")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 failed to read input: %v\n", err)
		return subcommands.ExitFailure
	}
	mod, err := vlbcfile.Load(data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 inspect: %v\n", err)
		return subcommands.ExitFailure
	}

	if cmd.interactive {
		if err := runInteractiveInspect(mod); err != nil {
			fmt.Fprintf(os.Stderr, "💥 %v\n", err)
			return subcommands.ExitFailure
		}
		return subcommands.ExitSuccess
	}

	text, err := disasm.Program(mod.Code, mod.Strings)
	if err != nil {
		fmt.Fprintf(os.Stderr, "💥 disassemble: %v\n", err)
		return subcommands.ExitFailure
	}
	fmt.Print(text)

	if cmd.showStrings {
		fmt.Print(disasm.ListStrings(mod.Strings))
	}
	if cmd.showHexdump {
		if err := disasm.HexDump(mod.Code, 0, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "💥 hexdump: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}

// runInteractiveInspect drives a readline prompt that advances one
// instruction or pool entry per "n", the way cmd_repl.go drives its
// scan-parse-interpret loop one line at a time over stdin.
func runInteractiveInspect(mod *vlbcfile.Module) error {
	rl, err := readline.New("vlbc> ")
	if err != nil {
		return fmt.Errorf("interactive inspect: %w", err)
	}
	defer rl.Close()

	fmt.Printf("loaded module: %d byte(s) of code, %d pool string(s)\n", len(mod.Code), len(mod.Strings))
	fmt.Println("commands: n(ext), s(trings), q(uit)")

	ip := 0
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			return nil
		}
		switch strings.TrimSpace(line) {
		case "n", "next", "":
			if ip >= len(mod.Code) {
				fmt.Println("(end of code)")
				continue
			}
			text, size, err := disasm.One(mod.Code, ip, mod.Strings)
			if err != nil {
				fmt.Printf("💥 %v\n", err)
				ip = len(mod.Code)
				continue
			}
			fmt.Printf("%04d  %s\n", ip, text)
			if op, _, _, decErr := opcode.Decode(mod.Code, ip); decErr == nil {
				if info, infoErr := op.Info(); infoErr == nil && info.Flags.Has(opcode.FlagTerminator) {
					fmt.Println("(halted)")
					ip = len(mod.Code)
					continue
				}
			}
			ip += size
		case "s", "strings":
			fmt.Print(disasm.ListStrings(mod.Strings))
		case "q", "quit", "exit":
			return nil
		default:
			if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				ip = n
				continue
			}
			fmt.Println("unrecognized command")
		}
	}
}
