package codec

import (
	"errors"
	"fmt"

	"github.com/komumati1/GAsm/engine/opcode"
)

// ErrUndefinedOpcode is returned when a bytecode byte has no index32 (is not
// one of the 32 defined opcodes) and therefore cannot be represented in the
// ASCII or base32 forms.
var ErrUndefinedOpcode = errors.New("codec: undefined opcode")

// ErrInvalidGlyph is returned by the ASCII/base32 decoders when a character
// falls outside the alphabet produced by the corresponding encoder.
var ErrInvalidGlyph = errors.New("codec: invalid glyph")

// asciiBase is the first glyph of the ASCII alphabet; index32(op)+asciiBase
// gives one printable character per opcode ('A'..'Z' for index 0..25, then
// '[', '\', ']', '^', '_', '`' for index 26..31).
const asciiBase = 'A'

// EncodeASCII renders bytecode as one printable glyph per instruction,
// suitable for embedding bytecode in a JSON string (used by the checkpoint
// format, §6). Fails if any byte is not one of the 32 defined opcodes.
func EncodeASCII(bytecode []byte) (string, error) {
	out := make([]byte, len(bytecode))
	for i, raw := range bytecode {
		idx := opcode.Index32Of(opcode.Opcode(raw))
		if idx < 0 {
			return "", fmt.Errorf("%w: 0x%02x at offset %d", ErrUndefinedOpcode, raw, i)
		}
		out[i] = byte(asciiBase + idx)
	}
	return string(out), nil
}

// DecodeASCII is the inverse of EncodeASCII.
func DecodeASCII(s string) ([]byte, error) {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		idx := int(s[i]) - asciiBase
		if idx < 0 || idx >= opcode.Count {
			return nil, fmt.Errorf("%w: %q at offset %d", ErrInvalidGlyph, s[i], i)
		}
		out[i] = byte(opcode.OpcodeOfIndex32(idx))
	}
	return out, nil
}
