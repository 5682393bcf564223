package codec

import (
	"fmt"
	"strings"

	"github.com/komumati1/GAsm/engine/opcode"
)

// base32Alphabet is the standard RFC 4648 base32 alphabet. Unlike
// EncodeASCII (which maps index32+'A' onto whatever printable character
// falls at that offset), EncodeBase32 maps the same dense index onto this
// fixed 32-character alphabet, so the two codecs never agree past 'Z'.
const base32Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"

var base32Reverse [256]int8

func init() {
	for i := range base32Reverse {
		base32Reverse[i] = -1
	}
	for i := 0; i < len(base32Alphabet); i++ {
		base32Reverse[base32Alphabet[i]] = int8(i)
	}
}

// EncodeBase32 renders the raw 5-bit index sequence of bytecode using the
// standard base32 alphabet, one character per instruction (SPEC_FULL.md
// §4.2 item 4). Fails if any byte is not one of the 32 defined opcodes.
func EncodeBase32(bytecode []byte) (string, error) {
	var b strings.Builder
	b.Grow(len(bytecode))
	for i, raw := range bytecode {
		idx := opcode.Index32Of(opcode.Opcode(raw))
		if idx < 0 {
			return "", fmt.Errorf("%w: 0x%02x at offset %d", ErrUndefinedOpcode, raw, i)
		}
		b.WriteByte(base32Alphabet[idx])
	}
	return b.String(), nil
}

// DecodeBase32 is the inverse of EncodeBase32.
func DecodeBase32(s string) ([]byte, error) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		idx := base32Reverse[s[i]]
		if idx < 0 {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidGlyph, s[i], i)
		}
		out[i] = byte(opcode.OpcodeOfIndex32(int(idx)))
	}
	return out, nil
}
