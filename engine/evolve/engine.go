package evolve

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"github.com/komumati1/GAsm/engine/genetic"
	"github.com/komumati1/GAsm/engine/genome"
	"github.com/komumati1/GAsm/engine/gerr"
)

// FitnessFunc evaluates one candidate bytecode body, using runner as a
// scratch Individual bound to this worker (so the call never contends for
// another worker's compiled artifact). It returns (fitness, rank); rank is
// a secondary, tie-breaking score, typically mean execution time.
//
// This is the "(engine_view, &mut individual_runner, &bytecode) →
// (fitness, rank)" callback of SPEC_FULL.md §6: engine is the read-only
// view of inputs/targets/config, runner is the mutable per-worker
// Individual, bytecode is the candidate under evaluation.
type FitnessFunc func(engine *Engine, runner *genome.Individual, bytecode []byte) (fitness, rank float64)

// DefaultFitness runs runner against every (input, target) pair, summing
// squared error and substituting engine.Config.NanPenalty for any
// non-finite difference (SPEC_FULL.md §6's "Fitness callback" policy). Rank
// is the mean processTime across all pairs.
func DefaultFitness(engine *Engine, runner *genome.Individual, bytecode []byte) (float64, float64) {
	runner.SetBytecode(bytecode)

	var totalErr float64
	var totalTime uint64
	for i, input := range engine.Inputs {
		buf := make([]float64, len(input))
		copy(buf, input)

		pt, err := runner.Run(buf)
		if err != nil {
			return engine.Config.NanPenalty, 0
		}
		totalTime += pt

		target := engine.Targets[i]
		for j := range target {
			d := buf[j] - target[j]
			if math.IsNaN(d) || math.IsInf(d, 0) {
				totalErr += engine.Config.NanPenalty
			} else {
				totalErr += d * d
			}
		}
	}
	rank := float64(totalTime) / float64(len(engine.Inputs))
	return totalErr, rank
}

// Engine is the evolution driver (component G, SPEC_FULL.md §4.7): it owns
// the population and dispatches generation steps to a worker pool, one
// goroutine chunk per hardware thread by default.
type Engine struct {
	Config  EngineConfig
	Inputs  [][]float64
	Targets [][]float64
	Fitness FitnessFunc

	Grow   genetic.Grower
	Select genetic.Selector
	Cross  genetic.Crossover
	Mutate genetic.Mutator

	slots        []slot
	history      History
	generation   int
	bestBytecode []byte
	bestFitness  float64
	haveBest     bool
	initialized  bool // true once InitializePopulation has run, or the engine was restored from a checkpoint
}

// NewEngine validates cfg and constructs an Engine ready for
// InitializePopulation. inputs and targets must have matching lengths.
func NewEngine(cfg EngineConfig, inputs, targets [][]float64, fitness FitnessFunc,
	grow genetic.Grower, sel genetic.Selector, cross genetic.Crossover, mutate genetic.Mutator) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(inputs) == 0 || len(inputs) != len(targets) {
		return nil, fmt.Errorf("%w: inputs and targets must be non-empty and equal length", gerr.ErrInvalidArgument)
	}
	if fitness == nil {
		fitness = DefaultFitness
	}
	return &Engine{
		Config:  cfg,
		Inputs:  inputs,
		Targets: targets,
		Fitness: fitness,
		Grow:    grow,
		Select:  sel,
		Cross:   cross,
		Mutate:  mutate,
		slots:   make([]slot, cfg.PopulationSize),
	}, nil
}

// workerCount returns the number of worker chunks to split population work
// across: one per hardware thread, per SPEC_FULL.md §5's scheduling model.
func (e *Engine) workerCount() int {
	n := runtime.GOMAXPROCS(0)
	if n < 1 {
		n = 1
	}
	if n > len(e.slots) {
		n = len(e.slots)
	}
	return n
}

// chunkBounds splits [0, n) into `workers` contiguous, near-equal ranges.
func chunkBounds(n, workers int) [][2]int {
	bounds := make([][2]int, 0, workers)
	base, rem := n/workers, n%workers
	start := 0
	for w := 0; w < workers; w++ {
		size := base
		if w < rem {
			size++
		}
		bounds = append(bounds, [2]int{start, start + size})
		start += size
	}
	return bounds
}

// workerSeed returns a nondeterministic per-worker seed (SPEC_FULL.md §5:
// "each worker seeds from a nondeterministic source").
func workerSeed(worker int) int64 {
	return time.Now().UnixNano() ^ int64(worker)<<32
}

// newWorkerRunner builds the scratch Individual a single worker goroutine
// reuses across every slot in its chunk, with cng/rng bound to that
// worker's own *rand.Rand (thread-local, never shared across goroutines).
func newWorkerRunner(cfg EngineConfig, rng *rand.Rand) *genome.Individual {
	ind, _ := genome.New(nil, cfg.RegisterLength, cfg.MaxProcessTime, true)
	ind.SetCng(rng.NormFloat64)
	ind.SetRng(rng.Float64)
	return ind
}

// InitializePopulation grows and evaluates every slot in parallel worker
// chunks, then records generation-0 stats.
func (e *Engine) InitializePopulation() Stats {
	workers := e.workerCount()
	bounds := chunkBounds(len(e.slots), workers)

	var wg sync.WaitGroup
	for w, b := range bounds {
		wg.Add(1)
		go func(worker int, lo, hi int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(workerSeed(worker)))
			grow := e.Grow.Clone()
			runner := newWorkerRunner(e.Config, rng)
			defer runner.Close()

			for i := lo; i < hi; i++ {
				bc := grow.Grow(e.Config.IndividualMaxSize, rng)
				fitness, rank := e.Fitness(e, runner, bc)
				e.slots[i].commit(bc, fitness, rank)
			}
		}(w, b[0], b[1])
	}
	wg.Wait()

	e.initialized = true
	return e.recordGeneration()
}

// Step runs one generation: for every slot (distributed across worker
// chunks), select a worst index, produce a child by crossover or mutation,
// evaluate it, and commit it into that slot. See SPEC_FULL.md §4.7.
func (e *Engine) Step() Stats {
	workers := e.workerCount()
	bounds := chunkBounds(len(e.slots), workers)

	fitness := e.fitnessSnapshot()

	var wg sync.WaitGroup
	for w, b := range bounds {
		wg.Add(1)
		go func(worker int, lo, hi int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(workerSeed(worker)))
			sel := e.Select.Clone()
			cross := e.Cross.Clone()
			mutate := e.Mutate.Clone()
			runner := newWorkerRunner(e.Config, rng)
			defer runner.Close()

			for i := lo; i < hi; i++ {
				worstIdx := sel.Select(fitness, rng, !e.Config.Minimize)

				var child []byte
				if rng.Float64() < e.Config.CrossoverProbability {
					p1 := sel.Select(fitness, rng, e.Config.Minimize)
					p2 := sel.Select(fitness, rng, e.Config.Minimize)
					child = cross.Cross(e.slots[p1].bytecodeCopy(), e.slots[p2].bytecodeCopy(), e.Config.IndividualMaxSize, rng)
				} else {
					p := sel.Select(fitness, rng, e.Config.Minimize)
					child = mutate.Mutate(e.slots[p].bytecodeCopy(), e.Config.MutationProbability, rng)
				}

				childFitness, childRank := e.Fitness(e, runner, child)
				e.slots[worstIdx].commit(child, childFitness, childRank)
			}
		}(w, b[0], b[1])
	}
	wg.Wait()

	return e.recordGeneration()
}

// fitnessSnapshot reads every slot's fitness lock-free (SPEC_FULL.md §9:
// "a reader may observe any committed ... update ... use atomic-word reads
// for fitness[i] and rank[i]").
func (e *Engine) fitnessSnapshot() []float64 {
	out := make([]float64, len(e.slots))
	for i := range e.slots {
		out[i] = e.slots[i].fitness()
	}
	return out
}

func (e *Engine) recordGeneration() Stats {
	fitness := e.fitnessSnapshot()
	var sum, best, worst float64
	var sizeSum int
	bestIdx := 0
	for i, f := range fitness {
		sum += f
		if i == 0 || better(f, best, e.Config.Minimize) {
			best = f
			bestIdx = i
		}
		if i == 0 || better(f, worst, !e.Config.Minimize) {
			worst = f
		}
		sizeSum += len(e.slots[i].bytecodeCopy())
	}
	n := float64(len(e.slots))
	stats := Stats{
		Generation:   e.generation,
		BestFitness:  best,
		AvgFitness:   sum / n,
		AvgSize:      float64(sizeSum) / n,
		WorstFitness: worst,
	}

	bestBytecode := e.slots[bestIdx].bytecodeCopy()
	if !e.haveBest || better(best, e.bestFitness, e.Config.Minimize) {
		e.bestFitness = best
		e.bestBytecode = slices.Clone(bestBytecode)
		e.haveBest = true
	}

	e.history.append(HistoryEntry{
		Generation:   e.generation,
		BestFitness:  best,
		AvgFitness:   stats.AvgFitness,
		AvgSize:      stats.AvgSize,
		BestBytecode: bestBytecode,
	})
	e.generation++
	return stats
}

func better(a, b float64, minimize bool) bool {
	if minimize {
		return a < b
	}
	return a > b
}

// GoalReached reports whether the best fitness recorded so far has crossed
// Config.GoalFitness in the configured optimization direction.
func (e *Engine) GoalReached() bool {
	if !e.haveBest {
		return false
	}
	if e.Config.Minimize {
		return e.bestFitness <= e.Config.GoalFitness
	}
	return e.bestFitness >= e.Config.GoalFitness
}

// currentStats summarizes the population's present state without mutating
// generation or history, for Run's return value when resuming an already-
// initialized Engine straight into the Step loop.
func (e *Engine) currentStats() Stats {
	fitness := e.fitnessSnapshot()
	var sum, best, worst float64
	var sizeSum int
	for i, f := range fitness {
		sum += f
		if i == 0 || better(f, best, e.Config.Minimize) {
			best = f
		}
		if i == 0 || better(f, worst, !e.Config.Minimize) {
			worst = f
		}
		sizeSum += len(e.slots[i].bytecodeCopy())
	}
	n := float64(len(fitness))
	return Stats{
		Generation:   e.generation,
		BestFitness:  best,
		AvgFitness:   sum / n,
		AvgSize:      float64(sizeSum) / n,
		WorstFitness: worst,
	}
}

// Run drives generations until maxGenerations is reached, GoalReached
// becomes true, or ctx is cancelled (mirroring lang/machine.Thread.
// RunProgram's context-cancellation contract: a cancelled ctx stops the
// loop after the in-flight generation finishes, rather than mid-step).
// checkpoint is called, if non-nil, every CheckPointInterval generations.
// An Engine restored via RestoreEngine is already initialized, so Run
// skips straight to the Step loop instead of growing a fresh population
// over it.
func (e *Engine) Run(ctx context.Context, checkpoint func(*Engine) error) (Stats, error) {
	stats := e.currentStats()

	if !e.initialized {
		stats = e.InitializePopulation()
		if err := e.maybeCheckpoint(checkpoint); err != nil {
			return stats, err
		}
		if e.GoalReached() {
			return stats, nil
		}
	}

	for e.generation < e.Config.MaxGenerations {
		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		stats = e.Step()
		if err := e.maybeCheckpoint(checkpoint); err != nil {
			return stats, err
		}
		if e.GoalReached() {
			break
		}
	}
	return stats, nil
}

func (e *Engine) maybeCheckpoint(checkpoint func(*Engine) error) error {
	if checkpoint == nil || e.Config.CheckPointInterval <= 0 {
		return nil
	}
	if e.generation%e.Config.CheckPointInterval != 0 {
		return nil
	}
	return checkpoint(e)
}

// Generation returns the number of completed generations.
func (e *Engine) Generation() int { return e.generation }

// BestBytecode returns a copy of the best bytecode found so far.
func (e *Engine) BestBytecode() []byte { return slices.Clone(e.bestBytecode) }

// BestFitness returns the fitness of BestBytecode.
func (e *Engine) BestFitness() float64 { return e.bestFitness }

// History returns a copy of every recorded generation summary.
func (e *Engine) History() History { return slices.Clone(e.history) }

// Population returns a copy of every slot's current bytecode, in slot
// order.
func (e *Engine) Population() [][]byte {
	out := make([][]byte, len(e.slots))
	for i := range e.slots {
		out[i] = e.slots[i].bytecodeCopy()
	}
	return out
}

// Fitnesses returns a snapshot of every slot's fitness, in slot order.
func (e *Engine) Fitnesses() []float64 { return e.fitnessSnapshot() }

// Ranks returns a snapshot of every slot's rank, in slot order.
func (e *Engine) Ranks() []float64 {
	out := make([]float64, len(e.slots))
	for i := range e.slots {
		out[i] = e.slots[i].rank()
	}
	return out
}
