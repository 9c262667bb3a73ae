// Package linker implements the VLBC linker (§4.5): it merges N already
// loaded VLBC modules into one by deduplicating their string pools and
// rewriting every instruction operand that references a pool index. The
// patch pass never hard-codes which opcodes carry pool operands — it asks
// opcode.OperandKind.IsPoolOperand, exactly as the design notes (§9) demand.
package linker

import (
	"fmt"
	"path/filepath"
	"strings"

	"vlbc/assembler"
	"vlbc/opcode"
	"vlbc/strpool"
	"vlbc/vlbcfile"
)

// MaxCodeBytes bounds the merged code section (§7 TOO_MUCH_CODE).
const MaxCodeBytes = 1 << 30

// Input is one linker input: an already validated module plus the name it
// was loaded from, kept for map-file diagnostics.
type Input struct {
	Name   string
	Module *vlbcfile.Module
}

// LoadInput dispatches on file extension (§4.5 UNSUPPORTED_INPUT_FORMAT):
// ".asm" is assembled, ".vlbc" is decoded and validated, anything else is
// rejected.
func LoadInput(name string, data []byte) (Input, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".asm":
		m, err := assembler.Assemble(string(data))
		if err != nil {
			return Input{}, err
		}
		return Input{Name: name, Module: m}, nil
	case ".vlbc":
		m, err := vlbcfile.Load(data)
		if err != nil {
			return Input{}, err
		}
		return Input{Name: name, Module: m}, nil
	default:
		return Input{}, &Error{Kind: UnsupportedInputFormat, Input: name, Message: fmt.Sprintf(
			"extension %q is neither .asm nor .vlbc", filepath.Ext(name))}
	}
}

// InputRemap records, for one input, the mapping from its original pool
// index to the linker's global pool index — the map file's raw material
// (§6.5).
type InputRemap struct {
	Name     string
	OldToNew []int
}

// Report carries the optional side outputs of a link (§4.5 step 6).
type Report struct {
	Remaps []InputRemap
}

// WriteMapFile renders the map-file format (§6.5): a header line, then per
// input a "[name]" line followed by "  old -> new" lines.
func (r *Report) WriteMapFile(toolName string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s link map\n", toolName)
	for _, rm := range r.Remaps {
		fmt.Fprintf(&sb, "[%s]\n", rm.Name)
		for old, nw := range rm.OldToNew {
			fmt.Fprintf(&sb, "  %d -> %d\n", old, nw)
		}
	}
	return sb.String()
}

// Link merges inputs in argument order into one VLBC module (§4.5). The
// returned Report is always non-nil on success, even when every input's
// pool was empty.
func Link(inputs []Input) (*vlbcfile.Module, *Report, error) {
	global := strpool.New()
	report := &Report{Remaps: make([]InputRemap, len(inputs))}
	remaps := make([][]int, len(inputs))

	// Step 1: global pool construction, strictly in argument order so that
	// dedup and final indices are deterministic (§4.5.1, §8 determinism).
	for i, in := range inputs {
		strs := in.Module.Strings
		remap := make([]int, len(strs))
		for old, s := range strs {
			idx, err := global.Intern(s)
			if err != nil {
				return nil, nil, &Error{Kind: TooManyStrings, Input: in.Name, Message: err.Error()}
			}
			remap[old] = idx
		}
		remaps[i] = remap
		report.Remaps[i] = InputRemap{Name: in.Name, OldToNew: remap}
	}

	// Step 2: size the merged code section.
	totalCode := 0
	for _, in := range inputs {
		totalCode += len(in.Module.Code)
	}
	if totalCode > MaxCodeBytes {
		return nil, nil, &Error{Kind: TooMuchCode, Message: fmt.Sprintf(
			"merged code section would be %d bytes, exceeds cap of %d", totalCode, MaxCodeBytes)}
	}

	// Step 3: patch and concatenate.
	out := make([]byte, 0, totalCode)
	for i, in := range inputs {
		patched, err := patchCode(in.Module.Code, remaps[i])
		if err != nil {
			return nil, nil, &Error{Kind: err.(*Error).Kind, Input: in.Name, Message: err.(*Error).Message}
		}
		out = append(out, patched...)
	}

	// Step 4: validate before ever serializing (§9 "validator precedes any
	// serialization").
	if err := vlbcfile.Validate(out, global.Len()); err != nil {
		return nil, nil, &Error{Kind: BadBytecode, Message: err.Error()}
	}

	merged := &vlbcfile.Module{Version: vlbcfile.Version1, Strings: global.Strings(), Code: out}
	return merged, report, nil
}

// patchCode rewrites every pool-operand instruction in code using remap,
// re-encoding each instruction through opcode.Encode rather than splicing
// raw bytes, so the same range checks the assembler applies also guard the
// linker's output.
func patchCode(code []byte, remap []int) ([]byte, error) {
	out := make([]byte, 0, len(code))
	for offset := 0; offset < len(code); {
		op, operands, size, err := opcode.Decode(code, offset)
		if err != nil {
			return nil, &Error{Kind: PatchOutOfBounds, Message: fmt.Sprintf("offset %d: %v", offset, err)}
		}
		info, _ := op.Info()
		patched := append([]int64(nil), operands...)
		for idx, kind := range info.Operands {
			if !kind.IsPoolOperand() {
				continue
			}
			old := int(operands[idx])
			if old < 0 || old >= len(remap) {
				return nil, &Error{Kind: PatchOutOfBounds, Message: fmt.Sprintf(
					"offset %d: pool index %d out of range for this input's pool", offset, old)}
			}
			patched[idx] = int64(remap[old])
		}
		instr, err := opcode.Encode(op, patched...)
		if err != nil {
			return nil, &Error{Kind: BadBytecode, Message: fmt.Sprintf("offset %d: %v", offset, err)}
		}
		out = append(out, instr...)
		offset += size
	}
	return out, nil
}
