package vlbcfile

import (
	"fmt"

	"vlbc/opcode"
)

// Validate walks code from start to end (§4.4 "validate_code") and checks:
// every opcode is known; no instruction runs past len(code); every pool
// index operand is < kcount; every branch target lands on an instruction
// boundary within the section. It is a single linear decode pass that also
// records instruction-start offsets, followed by a second pass that checks
// collected branch targets against those offsets.
func Validate(code []byte, kcount int) error {
	boundaries := make(map[int]bool, len(code))
	type pendingBranch struct {
		at     int
		target int
	}
	var branches []pendingBranch

	ip := 0
	for ip < len(code) {
		boundaries[ip] = true
		op, operands, size, err := opcode.Decode(code, ip)
		if err != nil {
			return &Error{Kind: BadBytecode, Message: fmt.Sprintf("at offset %d: %v", ip, err)}
		}
		info, _ := op.Info()
		for i, kind := range info.Operands {
			if kind.IsPoolOperand() {
				idx := int(operands[i])
				if idx < 0 || idx >= kcount {
					return &Error{Kind: BadBytecode, Message: fmt.Sprintf(
						"at offset %d: %s pool index %d out of range [0,%d)", ip, info.Name, idx, kcount)}
				}
			}
		}
		if target, isBranch, err := opcode.BranchTarget(code, ip); err != nil {
			return &Error{Kind: BadBytecode, Message: fmt.Sprintf("at offset %d: %v", ip, err)}
		} else if isBranch {
			branches = append(branches, pendingBranch{at: ip, target: target})
		}
		ip += size
	}

	for _, b := range branches {
		if b.target < 0 || b.target > len(code) || (b.target < len(code) && !boundaries[b.target]) {
			return &Error{Kind: BadBytecode, Message: fmt.Sprintf(
				"branch at offset %d targets %d, which is not an instruction boundary", b.at, b.target)}
		}
	}
	return nil
}
