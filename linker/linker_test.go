package linker

import (
	"testing"

	"vlbc/assembler"
	"vlbc/opcode"
	"vlbc/vlbcfile"
)

func mustAssemble(t *testing.T, src string) *vlbcfile.Module {
	t.Helper()
	m, err := assembler.Assemble(src)
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return m
}

func TestLinkDedupesSharedStrings(t *testing.T) {
	// spec.md §8 scenario 4: two modules both referencing "hello" must
	// collapse to a single pool entry in argument order.
	a := mustAssemble(t, "PUSHS \"hello\"\nHALT\n")
	b := mustAssemble(t, "PUSHS \"hello\"\nPUSHS \"world\"\nHALT\n")

	merged, report, err := Link([]Input{
		{Name: "a.vlbc", Module: a},
		{Name: "b.vlbc", Module: b},
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if merged.KCount() != 2 {
		t.Fatalf("KCount = %d, want 2: %v", merged.KCount(), merged.Strings)
	}
	if merged.Strings[0] != "hello" || merged.Strings[1] != "world" {
		t.Errorf("strings = %v, want [hello world]", merged.Strings)
	}
	if len(report.Remaps) != 2 {
		t.Fatalf("len(Remaps) = %d, want 2", len(report.Remaps))
	}
	if report.Remaps[0].OldToNew[0] != 0 {
		t.Errorf("a's remap[0] = %d, want 0", report.Remaps[0].OldToNew[0])
	}
	if report.Remaps[1].OldToNew[0] != 0 || report.Remaps[1].OldToNew[1] != 1 {
		t.Errorf("b's remap = %v, want [0 1]", report.Remaps[1].OldToNew)
	}
}

func TestLinkPatchesOperandsToGlobalIndices(t *testing.T) {
	a := mustAssemble(t, "PUSHS \"world\"\nHALT\n")
	b := mustAssemble(t, "PUSHS \"hello\"\nPUSHS \"world\"\nHALT\n")

	merged, _, err := Link([]Input{
		{Name: "a.vlbc", Module: a},
		{Name: "b.vlbc", Module: b},
	})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	// "world" is a's first string -> global index 0. b's second PUSHS also
	// references "world", so its patched operand must also read 0.
	if err := vlbcfile.Validate(merged.Code, merged.KCount()); err != nil {
		t.Fatalf("validate merged code: %v", err)
	}
	if merged.Strings[0] != "world" {
		t.Fatalf("strings[0] = %q, want world", merged.Strings[0])
	}
	// a is PUSHS (5 bytes) + HALT (1 byte), so b's second PUSHS starts at 11.
	_, ops, _, err := opcode.Decode(merged.Code, 11)
	if err != nil || ops[0] != 0 {
		t.Errorf("b's second PUSHS operand = %v (err %v), want 0", ops, err)
	}
}

func TestLinkIsDeterministic(t *testing.T) {
	a := mustAssemble(t, "PUSHS \"x\"\nHALT\n")
	b := mustAssemble(t, "PUSHS \"y\"\nPUSHS \"x\"\nHALT\n")

	m1, _, err := Link([]Input{{Name: "a", Module: a}, {Name: "b", Module: b}})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	m2, _, err := Link([]Input{{Name: "a", Module: a}, {Name: "b", Module: b}})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	if string(vlbcfile.Encode(m1)) != string(vlbcfile.Encode(m2)) {
		t.Error("two links of the same inputs in the same order produced different bytes")
	}
}

func TestLoadInputRejectsUnknownExtension(t *testing.T) {
	_, err := LoadInput("foo.txt", []byte("whatever"))
	if err == nil {
		t.Fatal("expected an error for an unsupported extension")
	}
	lerr, ok := err.(*Error)
	if !ok || lerr.Kind != UnsupportedInputFormat {
		t.Fatalf("err = %v, want UNSUPPORTED_INPUT_FORMAT", err)
	}
}

func TestLoadInputAssemblesAsm(t *testing.T) {
	in, err := LoadInput("prog.asm", []byte("PUSHI 1\nHALT\n"))
	if err != nil {
		t.Fatalf("LoadInput: %v", err)
	}
	if in.Module.KCount() != 0 {
		t.Errorf("KCount = %d, want 0", in.Module.KCount())
	}
}

func TestLoadInputDecodesVlbc(t *testing.T) {
	m := mustAssemble(t, "PUSHI 1\nHALT\n")
	raw := vlbcfile.Encode(m)
	in, err := LoadInput("prog.vlbc", raw)
	if err != nil {
		t.Fatalf("LoadInput: %v", err)
	}
	if len(in.Module.Code) != len(m.Code) {
		t.Errorf("code length = %d, want %d", len(in.Module.Code), len(m.Code))
	}
}

func TestWriteMapFileFormat(t *testing.T) {
	a := mustAssemble(t, "PUSHS \"hello\"\nHALT\n")
	_, report, err := Link([]Input{{Name: "a.vlbc", Module: a}})
	if err != nil {
		t.Fatalf("link: %v", err)
	}
	got := report.WriteMapFile("vlbc")
	want := "# vlbc link map\n[a.vlbc]\n  0 -> 0\n"
	if got != want {
		t.Errorf("map file =\n%q\nwant\n%q", got, want)
	}
}
