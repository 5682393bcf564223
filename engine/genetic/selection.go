package genetic

import (
	"math"
	"math/rand"
	"sort"
)

// Selector picks an index into a population's fitness vector. selectMinimal
// toggles direction: true prefers low-fitness individuals, false prefers
// high-fitness ones, so the same strategy serves both "pick the worst slot
// to replace" and "pick a fit parent" roles in engine/evolve's generation
// step.
type Selector interface {
	Select(fitness []float64, rng *rand.Rand, selectMinimal bool) int
	Clone() Selector
}

// Tournament samples K indices uniformly (with replacement) and returns
// whichever has the best fitness in the requested direction.
type Tournament struct {
	K int
}

func (t Tournament) Select(fitness []float64, rng *rand.Rand, selectMinimal bool) int {
	k := t.K
	if k < 1 {
		k = 1
	}
	best := rng.Intn(len(fitness))
	for i := 1; i < k; i++ {
		cand := rng.Intn(len(fitness))
		if better(fitness[cand], fitness[best], selectMinimal) {
			best = cand
		}
	}
	return best
}

func (t Tournament) Clone() Selector { return Tournament{K: t.K} }

func better(a, b float64, selectMinimal bool) bool {
	if selectMinimal {
		return a < b
	}
	return a > b
}

// Roulette samples proportionally to 1/(fitness+ε) when selectMinimal, or
// fitness+ε otherwise.
type Roulette struct{}

func (Roulette) Select(fitness []float64, rng *rand.Rand, selectMinimal bool) int {
	weights := make([]float64, len(fitness))
	for i, f := range fitness {
		if selectMinimal {
			weights[i] = 1 / (f + epsilon)
		} else {
			weights[i] = f + epsilon
		}
	}
	return weightedSample(weights, rng)
}

func (Roulette) Clone() Selector { return Roulette{} }

// Rank samples proportionally to linear position in fitness order (best
// gets the highest weight).
type Rank struct{}

func (Rank) Select(fitness []float64, rng *rand.Rand, selectMinimal bool) int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return better(fitness[order[i]], fitness[order[j]], selectMinimal)
	})
	weights := make([]float64, len(fitness))
	n := len(fitness)
	for pos, idx := range order {
		weights[idx] = float64(n - pos)
	}
	return weightedSample(weights, rng)
}

func (Rank) Clone() Selector { return Rank{} }

// Truncation samples uniformly among the top max(1, ⌈P·N⌉) individuals in
// the requested direction.
type Truncation struct {
	P float64
}

func (t Truncation) Select(fitness []float64, rng *rand.Rand, selectMinimal bool) int {
	order := make([]int, len(fitness))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		return better(fitness[order[i]], fitness[order[j]], selectMinimal)
	})
	n := int(math.Ceil(t.P * float64(len(fitness))))
	if n < 1 {
		n = 1
	}
	if n > len(order) {
		n = len(order)
	}
	return order[rng.Intn(n)]
}

func (t Truncation) Clone() Selector { return Truncation{P: t.P} }

// Boltzmann samples proportionally to exp(-fitness/T) when selectMinimal,
// or exp(fitness/T) otherwise.
type Boltzmann struct {
	T float64
}

func (b Boltzmann) Select(fitness []float64, rng *rand.Rand, selectMinimal bool) int {
	temp := b.T
	if temp == 0 {
		temp = 1
	}
	weights := make([]float64, len(fitness))
	for i, f := range fitness {
		if selectMinimal {
			weights[i] = math.Exp(-f / temp)
		} else {
			weights[i] = math.Exp(f / temp)
		}
	}
	return weightedSample(weights, rng)
}

func (b Boltzmann) Clone() Selector { return Boltzmann{T: b.T} }
