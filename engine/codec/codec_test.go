package codec_test

import (
	"math/rand"
	"testing"

	"github.com/komumati1/GAsm/engine/codec"
	"github.com/komumati1/GAsm/engine/opcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTextScenario(t *testing.T) {
	bc, err := codec.ParseText("MOV A, R\n// comment\nINC")
	require.NoError(t, err)
	assert.Equal(t, []byte{byte(opcode.MOV_A_R), byte(opcode.INC)}, bc)
}

func TestParseTextUnknownMnemonic(t *testing.T) {
	_, err := codec.ParseText("FOO BAR")
	require.ErrorIs(t, err, opcode.ErrUnknownMnemonic)
}

func TestParseTextWhitespaceTolerant(t *testing.T) {
	a, err := codec.ParseText("mov a,r")
	require.NoError(t, err)
	b, err := codec.ParseText("   MOV    A ,    R   // whatever")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func randomDefinedBytecode(n int, rng *rand.Rand) []byte {
	all := opcode.All()
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(all[rng.Intn(len(all))])
	}
	return out
}

func TestTextRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		bc := randomDefinedBytecode(1+rng.Intn(40), rng)
		text := codec.Disassemble(bc)
		got, err := codec.ParseText(text)
		require.NoError(t, err)
		assert.Equal(t, bc, got)
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	for i := 0; i < 200; i++ {
		bc := randomDefinedBytecode(rng.Intn(40), rng)
		s, err := codec.EncodeASCII(bc)
		require.NoError(t, err)
		got, err := codec.DecodeASCII(s)
		require.NoError(t, err)
		assert.Equal(t, bc, got)
	}
}

func TestASCIIRejectsUndefinedOpcode(t *testing.T) {
	_, err := codec.EncodeASCII([]byte{0x06})
	require.ErrorIs(t, err, codec.ErrUndefinedOpcode)
}

func TestBase32RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 200; i++ {
		bc := randomDefinedBytecode(rng.Intn(40), rng)
		s, err := codec.EncodeBase32(bc)
		require.NoError(t, err)
		got, err := codec.DecodeBase32(s)
		require.NoError(t, err)
		assert.Equal(t, bc, got)
	}
}

func TestZipUnzipRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 200; i++ {
		bc := randomDefinedBytecode(rng.Intn(70), rng)
		lanes, err := codec.Zip(bc)
		require.NoError(t, err)
		require.Equal(t, (len(bc)*5+63)/64, len(lanes))

		got, err := codec.Unzip(lanes, len(bc))
		require.NoError(t, err)
		assert.Equal(t, bc, got)
	}
}

func TestZipEmpty(t *testing.T) {
	lanes, err := codec.Zip(nil)
	require.NoError(t, err)
	assert.Empty(t, lanes)

	got, err := codec.Unzip(lanes, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestAsciiAndBase32DivergePastZ(t *testing.T) {
	// index32(LOP_P) == 26, past 'Z' — the two alphabets must diverge there.
	asciiGlyph, _ := codec.EncodeASCII([]byte{byte(opcode.LOP_P)})
	base32Glyph, _ := codec.EncodeBase32([]byte{byte(opcode.LOP_P)})
	assert.NotEqual(t, asciiGlyph, base32Glyph)
}
