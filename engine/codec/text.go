// Package codec implements the four lossless round-trips between bytecode
// and its persisted/human-facing forms: text assembly, printable ASCII,
// 5-bit bit-packed "zip" words, and base32. See SPEC_FULL.md §4.2.
package codec

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/komumati1/GAsm/engine/opcode"
)

var (
	commaSpacing = regexp.MustCompile(`\s*,\s*`)
	multiSpace   = regexp.MustCompile(`\s+`)
)

// normalizeLine strips a trailing "//" comment, uppercases the remainder,
// and collapses whitespace so that exactly one space follows the mnemonic
// and one space follows any comma between operands (SPEC_FULL.md §4.2 item
// 1). Returns "" for a line that is empty once comments and whitespace are
// removed.
func normalizeLine(line string) string {
	if i := strings.Index(line, "//"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	line = strings.ToUpper(line)
	if len(line) > 3 && line[3] != ' ' && line[3] != '\t' {
		line = line[:3] + " " + line[3:] // every mnemonic is three letters
	}
	line = commaSpacing.ReplaceAllString(line, ", ")
	line = multiSpace.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}

// ParseText compiles mnemonic text into bytecode. Lines are processed
// independently; a "//" comment runs to end of line; blank lines (after
// comment stripping) are skipped. Returns ErrUnknownMnemonic wrapping the
// offending (raw) line on the first unresolvable mnemonic.
func ParseText(text string) ([]byte, error) {
	var out []byte
	for _, raw := range strings.Split(text, "\n") {
		line := normalizeLine(raw)
		if line == "" {
			continue
		}
		op, err := opcode.OpcodeOf(line)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", opcode.ErrUnknownMnemonic, raw)
		}
		out = append(out, byte(op))
	}
	return out, nil
}

// Disassemble renders bytecode back to mnemonic text, one instruction per
// line. Undefined bytes (possible after mutation synthesizes a value
// outside the 32 defined opcodes) are rendered as a raw-byte comment line
// rather than a mnemonic, since they have none.
func Disassemble(bytecode []byte) string {
	var b strings.Builder
	for _, raw := range bytecode {
		op := opcode.Opcode(raw)
		if m := opcode.MnemonicOf(op); m != "" {
			b.WriteString(m)
		} else {
			fmt.Fprintf(&b, "// undefined 0x%02x", raw)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
