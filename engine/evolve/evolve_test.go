package evolve_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/komumati1/GAsm/engine/evolve"
	"github.com/komumati1/GAsm/engine/genetic"
	"github.com/komumati1/GAsm/engine/genome"
	"github.com/komumati1/GAsm/engine/opcode"
)

func baseConfig() evolve.EngineConfig {
	return evolve.EngineConfig{
		PopulationSize:       20,
		IndividualMaxSize:    16,
		MutationProbability:  0.1,
		CrossoverProbability: 0.5,
		MaxGenerations:       5,
		GoalFitness:          0,
		OutputFolder:         "./checkpoints",
		CheckPointInterval:   2,
		MaxProcessTime:       1000,
		RegisterLength:       4,
		NanPenalty:           1e9,
		Minimize:             true,
	}
}

func identityTrainingData() ([][]float64, [][]float64) {
	inputs := [][]float64{{1, 2}, {3, 4}}
	targets := [][]float64{{1, 2}, {3, 4}}
	return inputs, targets
}

func TestConfigValidateRejectsBadFields(t *testing.T) {
	cfg := baseConfig()
	cfg.PopulationSize = 0
	assert.Error(t, cfg.Validate())

	cfg = baseConfig()
	cfg.MutationProbability = 1.5
	assert.Error(t, cfg.Validate())

	cfg = baseConfig()
	assert.NoError(t, cfg.Validate())
}

func TestNewEngineRejectsMismatchedInputsAndTargets(t *testing.T) {
	cfg := baseConfig()
	_, err := evolve.NewEngine(cfg, [][]float64{{1}}, [][]float64{{1}, {2}}, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{})
	assert.Error(t, err)
}

func TestInitializePopulationProducesFullSizedBytecode(t *testing.T) {
	cfg := baseConfig()
	inputs, targets := identityTrainingData()
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{})
	require.NoError(t, err)

	e.InitializePopulation()

	pop := e.Population()
	require.Len(t, pop, cfg.PopulationSize)
	for _, bc := range pop {
		assert.Equal(t, cfg.IndividualMaxSize, len(bc))
	}

	fitness := e.Fitnesses()
	require.Len(t, fitness, cfg.PopulationSize)
	for _, f := range fitness {
		assert.GreaterOrEqual(t, f, 0.0)
	}
}

func TestStepPreservesPopulationSize(t *testing.T) {
	cfg := baseConfig()
	inputs, targets := identityTrainingData()
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.SizeGrow{K: 8}, genetic.Tournament{K: 3}, genetic.TwoPoint{}, genetic.Soft{})
	require.NoError(t, err)

	e.InitializePopulation()
	for i := 0; i < 3; i++ {
		stats := e.Step()
		assert.Equal(t, i+1, stats.Generation)
	}

	assert.Equal(t, cfg.PopulationSize, len(e.Population()))
	assert.Equal(t, 4, e.Generation())
}

func TestRunStopsAtMaxGenerationsWithoutGoal(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 3
	cfg.GoalFitness = -1 // unreachable for a minimizing sum-of-squares fitness
	inputs, targets := identityTrainingData()
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.FullGrow{}, genetic.Roulette{}, genetic.Uniform{}, genetic.Hard{})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, cfg.MaxGenerations, e.Generation())
	assert.False(t, e.GoalReached())
}

func TestRunInvokesCheckpointOnInterval(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 4
	cfg.CheckPointInterval = 2
	cfg.GoalFitness = -1
	inputs, targets := identityTrainingData()
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{})
	require.NoError(t, err)

	var calls []int
	_, err = e.Run(context.Background(), func(eng *evolve.Engine) error {
		calls = append(calls, eng.Generation())
		return nil
	})
	require.NoError(t, err)
	// InitializePopulation completes generation 0 but checkpoints are keyed
	// off completed-generation counts, so the first save lands once 2
	// generations have completed; the last lands at MaxGenerations.
	assert.Equal(t, []int{2, 4}, calls)
}

func TestDefaultFitnessIsZeroForIdentityProgramOnMatchingTarget(t *testing.T) {
	cfg := baseConfig()
	inputs := [][]float64{{5, 5}}
	targets := [][]float64{{5, 5}}
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{})
	require.NoError(t, err)

	runner, err := newTestRunner(cfg)
	require.NoError(t, err)
	defer runner.Close()

	fitness, rank := evolve.DefaultFitness(e, runner, []byte{byte(opcode.END)})
	assert.Equal(t, 0.0, fitness)
	assert.GreaterOrEqual(t, rank, 0.0)
}

func TestDefaultFitnessStopsCleanlyWhenFuelIsExhausted(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxProcessTime = 1
	inputs, targets := identityTrainingData()
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{})
	require.NoError(t, err)

	runner, err := newTestRunner(cfg)
	require.NoError(t, err)
	defer runner.Close()

	// Running out of fuel mid-loop halts execution but is not itself an
	// error (SPEC_FULL.md §7): DefaultFitness must still score whatever
	// partial result came out, not substitute NanPenalty.
	body := []byte{byte(opcode.FOR), byte(opcode.INC), byte(opcode.END)}
	fitness, rank := evolve.DefaultFitness(e, runner, body)
	assert.NotEqual(t, cfg.NanPenalty, fitness)
	assert.GreaterOrEqual(t, rank, 0.0)
}

func TestCheckpointRoundTrip(t *testing.T) {
	cfg := baseConfig()
	cfg.MaxGenerations = 2
	cfg.GoalFitness = -1
	inputs, targets := identityTrainingData()
	e, err := evolve.NewEngine(cfg, inputs, targets, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{})
	require.NoError(t, err)

	_, err = e.Run(context.Background(), nil)
	require.NoError(t, err)

	cp, err := e.BuildCheckpoint()
	require.NoError(t, err)
	assert.Equal(t, cfg.PopulationSize, len(cp.Population))
	assert.Equal(t, cfg.PopulationSize, len(cp.Fitness))
	assert.NotEmpty(t, cp.History)

	dir := t.TempDir()
	path := filepath.Join(dir, "checkpoint.json")
	require.NoError(t, cp.Save(path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	loaded, err := evolve.LoadCheckpoint(path)
	require.NoError(t, err)
	assert.Equal(t, cp.BestIndividual, loaded.BestIndividual)
	assert.Equal(t, cp.Population, loaded.Population)

	restored, err := evolve.RestoreEngine(loaded, nil,
		genetic.FullGrow{}, genetic.Tournament{K: 3}, genetic.OnePoint{}, genetic.Hard{},
		cfg.NanPenalty, cfg.Minimize)
	require.NoError(t, err)
	assert.Equal(t, e.Generation(), restored.Generation())
	assert.Equal(t, e.BestFitness(), restored.BestFitness())
	assert.Equal(t, cfg.PopulationSize, len(restored.Population()))
}

func TestRestoreEngineRejectsPopulationSizeMismatch(t *testing.T) {
	cp := evolve.Checkpoint{
		PopulationSize:    3,
		IndividualMaxSize: 8,
		RegisterLength:    2,
		MaxProcessTime:    10,
		Inputs:            [][]float64{{1}},
		Targets:           [][]float64{{1}},
		Population:        []string{"A", "A"},
		Fitness:           []float64{0, 0},
		Rank:              []float64{0, 0},
		BestIndividual:    "A",
	}
	_, err := evolve.RestoreEngine(cp, nil, genetic.FullGrow{}, genetic.Tournament{K: 1}, genetic.OnePoint{}, genetic.Hard{},
		1e9, true)
	assert.Error(t, err)
}

// newTestRunner builds a scratch Individual the way Engine's internal
// workers do, for tests that call DefaultFitness directly.
func newTestRunner(cfg evolve.EngineConfig) (*genome.Individual, error) {
	return genome.New(nil, cfg.RegisterLength, cfg.MaxProcessTime, true)
}
