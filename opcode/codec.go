package opcode

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode writes the canonical little-endian encoding of op applied to
// operands and returns it as a new byte slice. Float operands (kind F64)
// must be passed as their IEEE-754 bit pattern — see EncodeFloat. An
// operand value out of range for its declared kind is reported as
// OperandOutOfRange.
func Encode(op Op, operands ...int64) ([]byte, error) {
	info, err := op.Info()
	if err != nil {
		return nil, err
	}
	if len(operands) != len(info.Operands) {
		return nil, &Error{Kind: OperandOutOfRange, Message: fmt.Sprintf(
			"%s expects %d operand(s), got %d", info.Name, len(info.Operands), len(operands))}
	}

	out := make([]byte, info.Size())
	out[0] = byte(op)
	offset := 1
	for idx, kind := range info.Operands {
		v := operands[idx]
		if err := checkRange(kind, v); err != nil {
			return nil, err
		}
		writeOperand(out[offset:], kind, v)
		offset += kind.Width()
	}
	return out, nil
}

// EncodeFloat converts a float64 into the bit pattern Encode expects for a
// KindF64 operand.
func EncodeFloat(v float64) int64 { return int64(math.Float64bits(v)) }

// DecodeFloat recovers a float64 from the bit pattern Decode returns for a
// KindF64 operand.
func DecodeFloat(bits int64) float64 { return math.Float64frombits(uint64(bits)) }

func checkRange(kind OperandKind, v int64) error {
	switch kind {
	case KindU8:
		if v < 0 || v > 0xFF {
			return &Error{Kind: OperandOutOfRange, Message: fmt.Sprintf("u8 operand %d out of range", v)}
		}
	case KindU16:
		if v < 0 || v > 0xFFFF {
			return &Error{Kind: OperandOutOfRange, Message: fmt.Sprintf("u16 operand %d out of range", v)}
		}
	case KindU32, KindKidx, KindSidx:
		if v < 0 || v > 0xFFFFFFFF {
			return &Error{Kind: OperandOutOfRange, Message: fmt.Sprintf("u32 operand %d out of range", v)}
		}
	case KindI32, KindRel32:
		if v < math.MinInt32 || v > math.MaxInt32 {
			return &Error{Kind: OperandOutOfRange, Message: fmt.Sprintf("i32 operand %d out of range", v)}
		}
	case KindI64, KindF64:
		// full int64 range; no further check.
	}
	return nil
}

func writeOperand(dst []byte, kind OperandKind, v int64) {
	switch kind {
	case KindU8:
		dst[0] = byte(v)
	case KindU16:
		binary.LittleEndian.PutUint16(dst, uint16(v))
	case KindU32, KindKidx, KindSidx:
		binary.LittleEndian.PutUint32(dst, uint32(v))
	case KindI32, KindRel32:
		binary.LittleEndian.PutUint32(dst, uint32(int32(v)))
	case KindI64, KindF64:
		binary.LittleEndian.PutUint64(dst, uint64(v))
	}
}

func readOperand(src []byte, kind OperandKind) int64 {
	switch kind {
	case KindU8:
		return int64(src[0])
	case KindU16:
		return int64(binary.LittleEndian.Uint16(src))
	case KindU32, KindKidx, KindSidx:
		return int64(binary.LittleEndian.Uint32(src))
	case KindI32, KindRel32:
		return int64(int32(binary.LittleEndian.Uint32(src)))
	case KindI64, KindF64:
		return int64(binary.LittleEndian.Uint64(src))
	}
	return 0
}

// Decode reads one instruction from buf starting at i. It returns the
// opcode, its operand values (floats as bit patterns, see DecodeFloat), and
// the number of bytes consumed.
func Decode(buf []byte, i int) (op Op, operands []int64, size int, err error) {
	if i < 0 || i >= len(buf) {
		return 0, nil, 0, &Error{Kind: TruncatedInstruction, Message: "no opcode byte at offset"}
	}
	op = Op(buf[i])
	info, infoErr := op.Info()
	if infoErr != nil {
		return 0, nil, 0, infoErr
	}
	size = info.Size()
	if i+size > len(buf) {
		return 0, nil, 0, &Error{Kind: TruncatedInstruction, Message: fmt.Sprintf(
			"%s at offset %d needs %d bytes, only %d remain", info.Name, i, size, len(buf)-i)}
	}
	operands = make([]int64, len(info.Operands))
	offset := i + 1
	for idx, kind := range info.Operands {
		operands[idx] = readOperand(buf[offset:], kind)
		offset += kind.Width()
	}
	return op, operands, size, nil
}

// BranchTarget returns the absolute byte offset a branch instruction at i
// targets, measured from the byte after the instruction (§3 rel32). It
// reports false if the instruction at i is not branch-flagged.
func BranchTarget(buf []byte, i int) (target int, isBranch bool, err error) {
	op, operands, size, err := Decode(buf, i)
	if err != nil {
		return 0, false, err
	}
	info, _ := op.Info()
	if !info.Flags.Has(FlagBranch) && !info.Flags.Has(FlagCondBranch) {
		return 0, false, nil
	}
	if len(operands) == 0 {
		return 0, false, &Error{Kind: BadOpcode, Message: fmt.Sprintf("%s is branch-flagged but has no rel32 operand", info.Name)}
	}
	rel := operands[0]
	return i + size + int(rel), true, nil
}
