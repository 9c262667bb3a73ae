package compiler

import (
	"strings"
	"testing"

	"vlbc/assembler"
	"vlbc/lexer"
	"vlbc/parser"
)

func lowerSource(t *testing.T, src string) string {
	t.Helper()
	lex := lexer.New(src)
	tokens, err := lex.Scan()
	if err != nil {
		t.Fatalf("lex: %v", err)
	}
	p := parser.Make(tokens)
	statements, errs := p.Parse()
	if len(errs) > 0 {
		t.Fatalf("parse: %v", errs)
	}
	asm, err := LowerToASM(statements)
	if err != nil {
		t.Fatalf("LowerToASM: %v", err)
	}
	return asm
}

func TestLowerToASMProducesAssemblableText(t *testing.T) {
	asm := lowerSource(t, `print 1 + 2;`)
	if !strings.Contains(asm, "ADD") {
		t.Errorf("asm = %q, want it to contain ADD", asm)
	}
	if _, err := assembler.Assemble(asm); err != nil {
		t.Fatalf("assemble lowered output: %v\nasm:\n%s", err, asm)
	}
}

func TestLowerToASMVariableRoundTrip(t *testing.T) {
	asm := lowerSource(t, `x = 5; print x;`)
	m, err := assembler.Assemble(asm)
	if err != nil {
		t.Fatalf("assemble: %v\nasm:\n%s", err, asm)
	}
	found := false
	for _, s := range m.Strings {
		if s == "x" {
			found = true
		}
	}
	if !found {
		t.Errorf("strings = %v, want it to contain \"x\"", m.Strings)
	}
}

func TestLowerToASMIfElseAssembles(t *testing.T) {
	asm := lowerSource(t, `if (1) { print 1; } else { print 2; }`)
	if _, err := assembler.Assemble(asm); err != nil {
		t.Fatalf("assemble: %v\nasm:\n%s", err, asm)
	}
}

func TestLowerToASMWhileAssembles(t *testing.T) {
	asm := lowerSource(t, `x = 0; while (x) { x = 0; }`)
	if _, err := assembler.Assemble(asm); err != nil {
		t.Fatalf("assemble: %v\nasm:\n%s", err, asm)
	}
}

func TestLowerToASMLogicalOperatorsAssemble(t *testing.T) {
	asm := lowerSource(t, `print 1 and 0 or 1;`)
	if _, err := assembler.Assemble(asm); err != nil {
		t.Fatalf("assemble: %v\nasm:\n%s", err, asm)
	}
}

func TestLowerToASMStringLiteralEscapes(t *testing.T) {
	asm := lowerSource(t, `print "hi\nthere";`)
	if _, err := assembler.Assemble(asm); err != nil {
		t.Fatalf("assemble: %v\nasm:\n%s", err, asm)
	}
}
