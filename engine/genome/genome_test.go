package genome_test

import (
	"testing"

	"github.com/komumati1/GAsm/engine/genome"
	"github.com/komumati1/GAsm/engine/opcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bc(ops ...opcode.Opcode) []byte {
	out := make([]byte, len(ops))
	for i, op := range ops {
		out[i] = byte(op)
	}
	return out
}

// fibonacci mirrors the worked example in SPEC_FULL.md §8.
func fibonacci() []byte {
	return bc(
		opcode.MOV_R_A,
		opcode.INC,
		opcode.MOV_A_P,
		opcode.MOV_R_A,
		opcode.LOP_A,
		opcode.DEC,
		opcode.MOV_A_R,
		opcode.INC,
		opcode.ADD_R,
		opcode.INC,
		opcode.MOV_R_A,
		opcode.MOV_A_P,
		opcode.END,
		opcode.MOV_A_R,
		opcode.MOV_I_A,
	)
}

func TestNewRejectsNonPositiveRegisterLength(t *testing.T) {
	_, err := genome.New(bc(opcode.INC), 0, 1000, false)
	assert.Error(t, err)
}

func TestNewFromTextParsesMnemonics(t *testing.T) {
	ind, err := genome.NewFromText("MOV A, R\n// comment\nINC", 1, 1000, false)
	require.NoError(t, err)
	assert.Equal(t, bc(opcode.MOV_A_R, opcode.INC), ind.Bytecode())
}

func TestNewFromTextRejectsUnknownMnemonic(t *testing.T) {
	_, err := genome.NewFromText("NOT A REAL OP", 1, 1000, false)
	assert.Error(t, err)
}

func TestRunInterpreterFibonacci(t *testing.T) {
	ind, err := genome.New(fibonacci(), 2, 100000, false)
	require.NoError(t, err)

	inputs := []float64{10}
	processTime, err := ind.Run(inputs)
	require.NoError(t, err)
	assert.LessOrEqual(t, processTime, uint64(100001))
}

func TestRunJitCallsCngThroughNativeCode(t *testing.T) {
	// SET compiles natively and crosses back into the supplied cng closure
	// via callback_amd64.s; this checks that path end to end through
	// Individual.Run, not just jit.Program.Run directly. A single register
	// makes ADD_R (at P=1) wrap back to the slot the first draw was stored in.
	program := bc(opcode.SET, opcode.MOV_R_A, opcode.INC, opcode.SET, opcode.ADD_R, opcode.MOV_I_A)
	ind, err := genome.New(program, 1, 1000, true)
	require.NoError(t, err)

	calls := 0
	cngSeq := []float64{1.0, 2.0}
	ind.SetCng(func() float64 {
		v := cngSeq[calls]
		calls++
		return v
	})

	inputs := []float64{0}
	_, err = ind.Run(inputs)
	require.NoError(t, err)
	assert.Equal(t, 3.0, inputs[0])
}

func TestRunJitMatchesInterpreterForSupportedProgram(t *testing.T) {
	program := fibonacci()

	interpInd, err := genome.New(program, 2, 100000, false)
	require.NoError(t, err)
	jitInd, err := genome.New(program, 2, 100000, true)
	require.NoError(t, err)

	interpInputs := []float64{10}
	jitInputs := []float64{10}

	interpTime, err := interpInd.Run(interpInputs)
	require.NoError(t, err)
	jitTime, err := jitInd.Run(jitInputs)
	require.NoError(t, err)

	assert.Equal(t, interpTime, jitTime)
	assert.Equal(t, interpInputs, jitInputs)
}

func TestSetBytecodeInvalidatesCompiledArtifact(t *testing.T) {
	ind, err := genome.New(fibonacci(), 2, 100000, true)
	require.NoError(t, err)

	_, err = ind.Run([]float64{10})
	require.NoError(t, err)

	ind.SetBytecode(bc(opcode.SET)) // must recompile for the new program, not reuse fibonacci's code
	_, err = ind.Run([]float64{0})
	require.NoError(t, err)
}

func TestCloneProducesIndependentIndividual(t *testing.T) {
	ind, err := genome.New(fibonacci(), 2, 100000, false)
	require.NoError(t, err)

	clone := ind.Clone()
	clone.SetBytecode(bc(opcode.INC))

	assert.NotEqual(t, ind.Bytecode(), clone.Bytecode())
	assert.Equal(t, fibonacci(), ind.Bytecode())
}

func TestStringDisassemblesCurrentProgram(t *testing.T) {
	ind, err := genome.New(bc(opcode.INC, opcode.DEC), 1, 1000, false)
	require.NoError(t, err)
	assert.Contains(t, ind.String(), "INC")
	assert.Contains(t, ind.String(), "DEC")
}

func TestRunRejectsEmptyInputsViaInterp(t *testing.T) {
	ind, err := genome.New(bc(opcode.INC), 1, 1000, false)
	require.NoError(t, err)
	_, err = ind.Run(nil)
	assert.Error(t, err)
}
