package genetic

import (
	"math/rand"

	"github.com/komumati1/GAsm/engine/opcode"
)

// Mutator replaces bytes of a bytecode program with probability
// mutationProbability, returning a new slice (the input is left untouched).
type Mutator interface {
	Mutate(bytecode []byte, mutationProbability float64, rng *rand.Rand) []byte
	Clone() Mutator
}

// Hard replaces a mutated byte with a uniformly-random valid opcode,
// without regard to instruction class.
type Hard struct{}

func (Hard) Mutate(bytecode []byte, mutationProbability float64, rng *rand.Rand) []byte {
	out := make([]byte, len(bytecode))
	copy(out, bytecode)
	for i := range out {
		if rng.Float64() < mutationProbability {
			out[i] = byte(randomOpcode(rng))
		}
	}
	return out
}

func (Hard) Clone() Mutator { return Hard{} }

// Soft replaces a mutated byte with a random opcode from the same Group,
// preserving instruction class while mutating the variant. A byte whose
// value is undefined (no group) falls back to Hard's unrestricted pick,
// since it has no group of peers to draw from.
type Soft struct{}

func (Soft) Mutate(bytecode []byte, mutationProbability float64, rng *rand.Rand) []byte {
	out := make([]byte, len(bytecode))
	copy(out, bytecode)
	for i, b := range out {
		if rng.Float64() >= mutationProbability {
			continue
		}
		op := opcode.Opcode(b)
		group := opcode.GroupOf(op)
		if group == opcode.GroupUnknown {
			out[i] = byte(randomOpcode(rng))
			continue
		}
		peers := opcode.InGroup(group)
		out[i] = byte(peers[rng.Intn(len(peers))])
	}
	return out
}

func (Soft) Clone() Mutator { return Soft{} }
