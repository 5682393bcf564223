// Package genetic implements the pluggable genetic operators of
// SPEC_FULL.md §4.6: Grow, Selection, Crossover, and Mutation strategies.
//
// Grounded on the teacher's visitor-style polymorphism (lang/ast/visitor.go):
// small single-method interfaces, several concrete implementations, no
// shared mutable state. Here that translates to a Clone method on every
// strategy instead of a Visit method, since engine/evolve's workers each
// take an independent copy; randomness comes from the *rand.Rand each
// worker passes into every call, never from the strategy (SPEC_FULL.md §5:
// "the strategy objects are cloned once per worker so the driver may
// change the configured strategy without racing workers").
package genetic

import (
	"math/rand"

	"github.com/komumati1/GAsm/engine/opcode"
)

// epsilon keeps Roulette weights away from division by exactly zero
// fitness.
const epsilon = 1e-9

func isStructuralOpener(op opcode.Opcode) bool {
	switch op {
	case opcode.FOR, opcode.LOP_A, opcode.LOP_P, opcode.JMP_I, opcode.JMP_R, opcode.JMP_P:
		return true
	default:
		return false
	}
}

var structuralOpeners = []opcode.Opcode{
	opcode.FOR, opcode.LOP_A, opcode.LOP_P,
	opcode.JMP_I, opcode.JMP_R, opcode.JMP_P,
}

// randomOpcode returns one of the 32 defined opcodes uniformly at random.
func randomOpcode(rng *rand.Rand) opcode.Opcode {
	return opcode.OpcodeOfIndex32(rng.Intn(opcode.Count))
}

// randomLeafOpcode returns a uniformly random opcode that is neither a
// structural opener nor END — a "normal opcode" in TreeGrow's terms.
func randomLeafOpcode(rng *rand.Rand) opcode.Opcode {
	for {
		op := randomOpcode(rng)
		if op == opcode.END || isStructuralOpener(op) {
			continue
		}
		return op
	}
}

func randomStructuralOpener(rng *rand.Rand) opcode.Opcode {
	return structuralOpeners[rng.Intn(len(structuralOpeners))]
}

// weightedSample picks an index into weights proportional to their value.
// Falls back to a uniform pick if every weight is non-positive.
func weightedSample(weights []float64, rng *rand.Rand) int {
	var total float64
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return rng.Intn(len(weights))
	}
	target := rng.Float64() * total
	var acc float64
	for i, w := range weights {
		if w > 0 {
			acc += w
		}
		if acc >= target {
			return i
		}
	}
	return len(weights) - 1
}
