// Package disasm renders VLBC code sections back to text (§4.6): one
// instruction at a time, a whole program, or a canonical hex+ASCII dump.
// It reads opcode.Info the same way every other package does — no
// per-opcode switch duplicates what the table already says.
package disasm

import (
	"fmt"
	"strings"

	"vlbc/opcode"
)

// One renders the instruction at code[ip] as "mnemonic operand, operand"
// (§4.6). Pool-index operands are followed by the quoted pool string as a
// trailing comment when pool is non-nil and the index is in range; the
// index itself, not the string, is the operand text, so disassembling and
// reassembling a program with a non-empty pool is byte-identical only if
// the comment is stripped back out (round-trip identity holds as-is only
// for programs with an empty pool).
func One(code []byte, ip int, pool []string) (text string, size int, err error) {
	op, operands, size, err := opcode.Decode(code, ip)
	if err != nil {
		return "", 0, err
	}
	info, _ := op.Info()

	var sb strings.Builder
	sb.WriteString(info.Name)
	for i, kind := range info.Operands {
		if i == 0 {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(", ")
		}
		formatOperand(&sb, kind, operands[i], pool)
	}
	return sb.String(), size, nil
}

func formatOperand(sb *strings.Builder, kind opcode.OperandKind, v int64, pool []string) {
	switch kind {
	case opcode.KindF64:
		fmt.Fprintf(sb, "%g", opcode.DecodeFloat(v))
	case opcode.KindRel32:
		fmt.Fprintf(sb, "%+d", v)
	default:
		fmt.Fprintf(sb, "%d", v)
		if kind.IsPoolOperand() && pool != nil && v >= 0 && int(v) < len(pool) {
			fmt.Fprintf(sb, " ; %q", pool[v])
		}
	}
}

// Program renders every instruction in code in order, one per line,
// prefixed with its byte offset, stopping at end-of-code or the first HALT
// (§4.6 "iterates until end-of-code or HALT").
func Program(code []byte, pool []string) (string, error) {
	var sb strings.Builder
	for ip := 0; ip < len(code); {
		text, size, err := One(code, ip, pool)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%6d  %s\n", ip, text)
		op := opcode.Op(code[ip])
		if info, infoErr := op.Info(); infoErr == nil && info.Flags.Has(opcode.FlagTerminator) {
			break
		}
		ip += size
	}
	return sb.String(), nil
}

// ListStrings renders the string pool as "index: quoted string" lines, one
// per entry, for `inspect --strings`.
func ListStrings(pool []string) string {
	var sb strings.Builder
	for i, s := range pool {
		fmt.Fprintf(&sb, "%6d: %q\n", i, s)
	}
	return sb.String()
}
