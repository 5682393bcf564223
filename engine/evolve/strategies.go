package evolve

import (
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/komumati1/GAsm/engine/genetic"
	"github.com/komumati1/GAsm/engine/gerr"
)

// Strategy name registries let a CLI flag refer to a genetic operator by
// string instead of constructing it in code (checkpoints do not store
// strategies). param is
// interpreted per-strategy (tournament size, truncation fraction,
// Boltzmann temperature, tree depth, fixed grow size); strategies that
// don't take a parameter ignore it.
//
// golang.org/x/exp/maps and golang.org/x/exp/slices back the name lookups
// here — the same sub-packages SPEC_FULL.md §2 calls for in "population
// bookkeeping," reusing the module the teacher already depends on (there
// for x/exp/ebnf in a grammar test) for a different concern.
var growerRegistry = map[string]func(param float64) genetic.Grower{
	"full": func(float64) genetic.Grower { return genetic.FullGrow{} },
	"size": func(param float64) genetic.Grower { return genetic.SizeGrow{K: int(param)} },
	"tree": func(param float64) genetic.Grower { return genetic.TreeGrow{Depth: int(param)} },
}

var selectorRegistry = map[string]func(param float64) genetic.Selector{
	"tournament": func(param float64) genetic.Selector { return genetic.Tournament{K: int(param)} },
	"roulette":   func(float64) genetic.Selector { return genetic.Roulette{} },
	"rank":       func(float64) genetic.Selector { return genetic.Rank{} },
	"truncation": func(param float64) genetic.Selector { return genetic.Truncation{P: param} },
	"boltzmann":  func(param float64) genetic.Selector { return genetic.Boltzmann{T: param} },
}

var crossoverRegistry = map[string]func() genetic.Crossover{
	"one-point":      func() genetic.Crossover { return genetic.OnePoint{} },
	"two-point":      func() genetic.Crossover { return genetic.TwoPoint{} },
	"two-point-size": func() genetic.Crossover { return genetic.TwoPointSize{} },
	"uniform":        func() genetic.Crossover { return genetic.Uniform{} },
}

var mutatorRegistry = map[string]func() genetic.Mutator{
	"hard": func() genetic.Mutator { return genetic.Hard{} },
	"soft": func() genetic.Mutator { return genetic.Soft{} },
}

func sortedKeys[V any](m map[string]V) []string {
	names := maps.Keys(m)
	slices.Sort(names)
	return names
}

// GrowerNames lists the valid Grow strategy names, sorted.
func GrowerNames() []string { return sortedKeys(growerRegistry) }

// SelectorNames lists the valid Selection strategy names, sorted.
func SelectorNames() []string { return sortedKeys(selectorRegistry) }

// CrossoverNames lists the valid Crossover strategy names, sorted.
func CrossoverNames() []string { return sortedKeys(crossoverRegistry) }

// MutatorNames lists the valid Mutation strategy names, sorted.
func MutatorNames() []string { return sortedKeys(mutatorRegistry) }

// NewGrower constructs the named Grow strategy.
func NewGrower(name string, param float64) (genetic.Grower, error) {
	ctor, ok := growerRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown grow strategy %q (valid: %v)", gerr.ErrInvalidArgument, name, GrowerNames())
	}
	return ctor(param), nil
}

// NewSelector constructs the named Selection strategy.
func NewSelector(name string, param float64) (genetic.Selector, error) {
	ctor, ok := selectorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown selection strategy %q (valid: %v)", gerr.ErrInvalidArgument, name, SelectorNames())
	}
	return ctor(param), nil
}

// NewCrossover constructs the named Crossover strategy.
func NewCrossover(name string) (genetic.Crossover, error) {
	ctor, ok := crossoverRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown crossover strategy %q (valid: %v)", gerr.ErrInvalidArgument, name, CrossoverNames())
	}
	return ctor(), nil
}

// NewMutator constructs the named Mutation strategy.
func NewMutator(name string) (genetic.Mutator, error) {
	ctor, ok := mutatorRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown mutation strategy %q (valid: %v)", gerr.ErrInvalidArgument, name, MutatorNames())
	}
	return ctor(), nil
}
