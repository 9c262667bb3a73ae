// Package vlbcfile implements the VLBC container (§6.1): header, string
// pool, code section, bit-exact layout; and the structural validator that
// every assembled or linked module must pass before it is trusted (§4.4).
package vlbcfile

import (
	"encoding/binary"
	"fmt"
)

// Magic is the fixed 4-byte VLBC header tag.
var Magic = [4]byte{'V', 'L', 'B', 'C'}

// Version1 is the only version this package writes and the only one it
// accepts on load, per §6.1 "this spec describes version 1".
const Version1 = 1

// Module is the in-memory representation of a decoded VLBC module (§3).
type Module struct {
	Version byte
	Strings []string
	Code    []byte
}

// KCount returns the number of pool strings.
func (m *Module) KCount() int { return len(m.Strings) }

// Encode serializes m to its bit-exact VLBC byte representation (§6.1). It
// does not validate m; callers assemble/link through Validate first.
func Encode(m *Module) []byte {
	size := 4 + 1 + 4
	for _, s := range m.Strings {
		size += 4 + len(s)
	}
	size += 4 + len(m.Code)

	out := make([]byte, size)
	copy(out[0:4], Magic[:])
	out[4] = m.Version
	binary.LittleEndian.PutUint32(out[5:9], uint32(len(m.Strings)))

	offset := 9
	for _, s := range m.Strings {
		binary.LittleEndian.PutUint32(out[offset:offset+4], uint32(len(s)))
		offset += 4
		copy(out[offset:offset+len(s)], s)
		offset += len(s)
	}
	binary.LittleEndian.PutUint32(out[offset:offset+4], uint32(len(m.Code)))
	offset += 4
	copy(out[offset:offset+len(m.Code)], m.Code)
	return out
}

// Decode parses a raw VLBC byte stream into a Module, validating the
// header and every length prefix, but not the code section's structural
// invariants — call Validate for that (§4.4 "load_from_bytes").
func Decode(buf []byte) (*Module, error) {
	if len(buf) < 9 {
		return nil, &Error{Kind: Truncated, Message: "buffer shorter than the fixed header"}
	}
	if buf[0] != Magic[0] || buf[1] != Magic[1] || buf[2] != Magic[2] || buf[3] != Magic[3] {
		return nil, &Error{Kind: BadMagic, Message: fmt.Sprintf("got %q, want %q", buf[0:4], Magic)}
	}
	version := buf[4]
	if version != Version1 {
		return nil, &Error{Kind: UnsupportedVersion, Message: fmt.Sprintf("version %d is not supported", version)}
	}
	kcount := binary.LittleEndian.Uint32(buf[5:9])

	offset := 9
	strings := make([]string, 0, kcount)
	for i := uint32(0); i < kcount; i++ {
		if offset+4 > len(buf) {
			return nil, &Error{Kind: Truncated, Message: fmt.Sprintf("string %d length prefix runs past end of buffer", i)}
		}
		strLen := binary.LittleEndian.Uint32(buf[offset : offset+4])
		offset += 4
		end := offset + int(strLen)
		if strLen > uint32(len(buf)) || end > len(buf) || end < offset {
			return nil, &Error{Kind: Truncated, Message: fmt.Sprintf("string %d of length %d runs past end of buffer", i, strLen)}
		}
		strings = append(strings, string(buf[offset:end]))
		offset = end
	}

	if offset+4 > len(buf) {
		return nil, &Error{Kind: Truncated, Message: "code_size field runs past end of buffer"}
	}
	codeSize := binary.LittleEndian.Uint32(buf[offset : offset+4])
	offset += 4
	end := offset + int(codeSize)
	if codeSize > uint32(len(buf)) || end > len(buf) || end < offset {
		return nil, &Error{Kind: Truncated, Message: fmt.Sprintf("declared code_size %d runs past end of buffer", codeSize)}
	}
	if end != len(buf) {
		return nil, &Error{Kind: Truncated, Message: fmt.Sprintf(
			"trailing %d byte(s) after the declared code section", len(buf)-end)}
	}

	code := make([]byte, codeSize)
	copy(code, buf[offset:end])
	return &Module{Version: version, Strings: strings, Code: code}, nil
}

// Load parses buf and structurally validates the result in one step — the
// combination of Decode and Validate that the linker and the `inspect`
// command always want together.
func Load(buf []byte) (*Module, error) {
	m, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	if err := Validate(m.Code, m.KCount()); err != nil {
		return nil, err
	}
	return m, nil
}
