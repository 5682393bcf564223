package codec

import (
	"errors"
	"fmt"

	"github.com/komumati1/GAsm/engine/opcode"
)

// ErrLengthMismatch is returned by Unzip when the caller-supplied original
// length cannot be recovered from the zipped words (the zipped form does
// not itself carry the instruction count, per §4.2 item 3).
var ErrLengthMismatch = errors.New("codec: length does not fit in zipped words")

const indexBits = 5

// Zip streams the 5-bit index32 of each instruction MSB-first into a slice
// of u64 lanes. The returned slice has ceil(len(bytecode)*5/64) words; the
// final lane's low-order bits, past the last instruction's index, are zero.
func Zip(bytecode []byte) ([]uint64, error) {
	totalBits := len(bytecode) * indexBits
	lanes := make([]uint64, (totalBits+63)/64)

	bitPos := 0
	for i, raw := range bytecode {
		idx := opcode.Index32Of(opcode.Opcode(raw))
		if idx < 0 {
			return nil, fmt.Errorf("%w: 0x%02x at offset %d", ErrUndefinedOpcode, raw, i)
		}
		writeBits(lanes, bitPos, uint64(idx), indexBits)
		bitPos += indexBits
	}
	return lanes, nil
}

// Unzip is the inverse of Zip. It requires the original bytecode length,
// which is not recoverable from the zipped bytes alone (a lane can hold a
// partial final index worth of padding bits).
func Unzip(lanes []uint64, length int) ([]byte, error) {
	totalBits := length * indexBits
	if (totalBits+63)/64 > len(lanes) {
		return nil, fmt.Errorf("%w: %d instructions need %d lanes, got %d",
			ErrLengthMismatch, length, (totalBits+63)/64, len(lanes))
	}

	out := make([]byte, length)
	bitPos := 0
	for i := 0; i < length; i++ {
		idx := readBits(lanes, bitPos, indexBits)
		out[i] = byte(opcode.OpcodeOfIndex32(int(idx)))
		bitPos += indexBits
	}
	return out, nil
}

// writeBits writes the low `width` bits of value into the MSB-first global
// bit stream backed by lanes, starting at bit offset bitPos.
func writeBits(lanes []uint64, bitPos int, value uint64, width int) {
	for i := 0; i < width; i++ {
		bit := (value >> uint(width-1-i)) & 1
		global := bitPos + i
		lane, offset := global/64, global%64
		shift := uint(63 - offset)
		lanes[lane] |= bit << shift
	}
}

// readBits is the inverse of writeBits.
func readBits(lanes []uint64, bitPos int, width int) uint64 {
	var value uint64
	for i := 0; i < width; i++ {
		global := bitPos + i
		lane, offset := global/64, global%64
		shift := uint(63 - offset)
		bit := (lanes[lane] >> shift) & 1
		value = (value << 1) | bit
	}
	return value
}
