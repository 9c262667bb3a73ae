package disasm

import (
	"fmt"
	"io"
)

// HexDump writes a canonical 16-byte-per-line hex+ASCII listing of data to
// out, with each line's left column showing baseOffset+line-start (§4.6).
func HexDump(data []byte, baseOffset int, out io.Writer) error {
	for i := 0; i < len(data); i += 16 {
		end := i + 16
		if end > len(data) {
			end = len(data)
		}
		chunk := data[i:end]

		if _, err := fmt.Fprintf(out, "%08x  ", baseOffset+i); err != nil {
			return err
		}
		for j := 0; j < 16; j++ {
			if j < len(chunk) {
				if _, err := fmt.Fprintf(out, "%02x ", chunk[j]); err != nil {
					return err
				}
			} else {
				if _, err := io.WriteString(out, "   "); err != nil {
					return err
				}
			}
			if j == 7 {
				if _, err := io.WriteString(out, " "); err != nil {
					return err
				}
			}
		}
		if _, err := io.WriteString(out, " |"); err != nil {
			return err
		}
		for _, b := range chunk {
			c := byte('.')
			if b >= 0x20 && b < 0x7f {
				c = b
			}
			if _, err := out.Write([]byte{c}); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(out, "|\n"); err != nil {
			return err
		}
	}
	return nil
}
