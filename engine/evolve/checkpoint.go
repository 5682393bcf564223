package evolve

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/komumati1/GAsm/engine/codec"
	"github.com/komumati1/GAsm/engine/genetic"
	"github.com/komumati1/GAsm/engine/gerr"
)

// checkpointHistoryEntry mirrors one entry of the "history" array in
// SPEC_FULL.md §6's checkpoint schema.
type checkpointHistoryEntry struct {
	Generation     int     `json:"generation"`
	BestFitness    float64 `json:"bestFitness"`
	AvgFitness     float64 `json:"avgFitness"`
	AvgSize        float64 `json:"avgSize"`
	BestIndividual string  `json:"bestIndividual"`
}

// Checkpoint is the on-disk JSON representation of a run, field-for-field
// matching the key set fixed by SPEC_FULL.md §6: the run configuration
// (so a resumed run reuses the exact same knobs), the training data, and
// the full population state (best individual, every population member,
// per-slot fitness/rank, and generation history).
type Checkpoint struct {
	PopulationSize       int         `json:"populationSize"`
	IndividualMaxSize    int         `json:"individualMaxSize"`
	MutationProbability  float64     `json:"mutationProbability"`
	CrossoverProbability float64     `json:"crossoverProbability"`
	MaxGenerations       int         `json:"maxGenerations"`
	GoalFitness          float64     `json:"goalFitness"`
	OutputFolder         string      `json:"outputFolder"`
	CheckPointInterval   int         `json:"checkPointInterval"`
	MaxProcessTime       uint64      `json:"maxProcessTime"`
	RegisterLength       int         `json:"registerLength"`
	Inputs               [][]float64 `json:"inputs"`
	Targets              [][]float64 `json:"targets"`

	BestIndividual string    `json:"bestIndividual"`
	Population     []string  `json:"population"`
	Fitness        []float64 `json:"fitness"`
	Rank           []float64 `json:"rank"`

	History []checkpointHistoryEntry `json:"history"`
}

// BuildCheckpoint snapshots e's current state into a Checkpoint ready for
// Save. Every bytecode body is rendered through codec.EncodeASCII; a body
// containing an undefined opcode byte (population, best, or a history
// entry's bestIndividual) fails the whole snapshot with ErrJsonFormat.
// Grow and the genetic operators only ever emit defined opcodes, so this
// does not arise for bodies they produced.
func (e *Engine) BuildCheckpoint() (Checkpoint, error) {
	best, err := codec.EncodeASCII(e.BestBytecode())
	if err != nil {
		return Checkpoint{}, fmt.Errorf("%w: encoding best individual: %v", gerr.ErrJsonFormat, err)
	}

	pop := e.Population()
	popASCII := make([]string, len(pop))
	for i, bc := range pop {
		s, err := codec.EncodeASCII(bc)
		if err != nil {
			return Checkpoint{}, fmt.Errorf("%w: encoding population[%d]: %v", gerr.ErrJsonFormat, i, err)
		}
		popASCII[i] = s
	}

	hist := e.History()
	histOut := make([]checkpointHistoryEntry, len(hist))
	for i, h := range hist {
		s, err := codec.EncodeASCII(h.BestBytecode)
		if err != nil {
			return Checkpoint{}, fmt.Errorf("%w: encoding history[%d].bestIndividual: %v", gerr.ErrJsonFormat, i, err)
		}
		histOut[i] = checkpointHistoryEntry{
			Generation:     h.Generation,
			BestFitness:    h.BestFitness,
			AvgFitness:     h.AvgFitness,
			AvgSize:        h.AvgSize,
			BestIndividual: s,
		}
	}

	return Checkpoint{
		PopulationSize:       e.Config.PopulationSize,
		IndividualMaxSize:    e.Config.IndividualMaxSize,
		MutationProbability:  e.Config.MutationProbability,
		CrossoverProbability: e.Config.CrossoverProbability,
		MaxGenerations:       e.Config.MaxGenerations,
		GoalFitness:          e.Config.GoalFitness,
		OutputFolder:         e.Config.OutputFolder,
		CheckPointInterval:   e.Config.CheckPointInterval,
		MaxProcessTime:       e.Config.MaxProcessTime,
		RegisterLength:       e.Config.RegisterLength,
		Inputs:               e.Inputs,
		Targets:              e.Targets,
		BestIndividual:       best,
		Population:           popASCII,
		Fitness:              e.Fitnesses(),
		Rank:                 e.Ranks(),
		History:              histOut,
	}, nil
}

// Save writes cp to path as indented JSON, creating any missing parent
// directories of path first.
func (cp Checkpoint) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("%w: creating checkpoint directory: %v", gerr.ErrIoError, err)
	}
	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshaling checkpoint: %v", gerr.ErrJsonFormat, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("%w: writing checkpoint file: %v", gerr.ErrIoError, err)
	}
	return nil
}

// LoadCheckpoint reads and parses a checkpoint file written by Save.
func LoadCheckpoint(path string) (Checkpoint, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Checkpoint{}, fmt.Errorf("%w: reading checkpoint file: %v", gerr.ErrIoError, err)
	}
	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return Checkpoint{}, fmt.Errorf("%w: parsing checkpoint json: %v", gerr.ErrJsonFormat, err)
	}
	return cp, nil
}

// RestoreEngine rebuilds an Engine from cp, decoding every ASCII bytecode
// body back to raw opcode bytes and re-seeding each slot's committed
// fitness/rank so a resumed run picks up exactly where Save left off. The
// strategies, nanPenalty, and minimize are not part of the checkpoint
// schema (SPEC_FULL.md §6 fixes only the config/data/population keys), so
// the caller supplies the same ones the original run used — typically the
// same EngineConfig.NanPenalty/Minimize (or GASM_NAN_PENALTY/GASM_MINIMIZE
// environment values) the original run was launched with, alongside
// strategies resolved by name against whatever the CLI kept next to the
// checkpoint. Passing a different minimize direction or penalty than the
// original run inverts optimization semantics from here on, so callers
// that don't track the original value should prefer re-reading it from
// the same configuration source the original run used, not guessing.
func RestoreEngine(cp Checkpoint, fitness FitnessFunc,
	grow genetic.Grower, sel genetic.Selector, cross genetic.Crossover, mutate genetic.Mutator,
	nanPenalty float64, minimize bool) (*Engine, error) {
	cfg := EngineConfig{
		PopulationSize:       cp.PopulationSize,
		IndividualMaxSize:    cp.IndividualMaxSize,
		MutationProbability:  cp.MutationProbability,
		CrossoverProbability: cp.CrossoverProbability,
		MaxGenerations:       cp.MaxGenerations,
		GoalFitness:          cp.GoalFitness,
		OutputFolder:         cp.OutputFolder,
		CheckPointInterval:   cp.CheckPointInterval,
		MaxProcessTime:       cp.MaxProcessTime,
		RegisterLength:       cp.RegisterLength,
		NanPenalty:           nanPenalty,
		Minimize:             minimize,
	}

	e, err := NewEngine(cfg, cp.Inputs, cp.Targets, fitness, grow, sel, cross, mutate)
	if err != nil {
		return nil, err
	}
	if len(cp.Population) != len(e.slots) {
		return nil, fmt.Errorf("%w: checkpoint population size %d does not match populationSize %d",
			gerr.ErrJsonFormat, len(cp.Population), len(e.slots))
	}
	if len(cp.Fitness) != len(e.slots) || len(cp.Rank) != len(e.slots) {
		return nil, fmt.Errorf("%w: checkpoint fitness/rank arrays must match populationSize", gerr.ErrJsonFormat)
	}

	for i, asciiBody := range cp.Population {
		bc, err := codec.DecodeASCII(asciiBody)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding population[%d]: %v", gerr.ErrJsonFormat, i, err)
		}
		e.slots[i].commit(bc, cp.Fitness[i], cp.Rank[i])
	}

	best, err := codec.DecodeASCII(cp.BestIndividual)
	if err != nil {
		return nil, fmt.Errorf("%w: decoding bestIndividual: %v", gerr.ErrJsonFormat, err)
	}
	e.bestBytecode = best
	e.haveBest = true
	// bestFitness is recomputed, not trusted from the (possibly hand-edited)
	// checkpoint: it is the best slot fitness in the configured direction.
	for i := range e.slots {
		f := e.slots[i].fitness()
		if i == 0 || better(f, e.bestFitness, cfg.Minimize) {
			e.bestFitness = f
		}
	}

	for _, h := range cp.History {
		bc, err := codec.DecodeASCII(h.BestIndividual)
		if err != nil {
			return nil, fmt.Errorf("%w: decoding history bestIndividual: %v", gerr.ErrJsonFormat, err)
		}
		e.history.append(HistoryEntry{
			Generation:   h.Generation,
			BestFitness:  h.BestFitness,
			AvgFitness:   h.AvgFitness,
			AvgSize:      h.AvgSize,
			BestBytecode: bc,
		})
	}
	if len(cp.History) > 0 {
		e.generation = cp.History[len(cp.History)-1].Generation + 1
	}
	e.initialized = true

	return e, nil
}
