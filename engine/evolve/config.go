// Package evolve implements the evolution driver (component G of
// SPEC_FULL.md §4.7): population storage, per-generation step with
// parallel worker dispatch, history tracking, and checkpoint persistence.
package evolve

import (
	"fmt"

	"github.com/caarlos0/env/v6"

	"github.com/komumati1/GAsm/engine/gerr"
)

// EngineConfig holds every tunable of a run. It loads from environment
// variables via caarlos0/env/v6 struct tags — the same library the teacher
// repo already pulls in transitively through mna/mainer, promoted here to
// a direct, visibly-used dependency instead of an inert indirect one.
type EngineConfig struct {
	PopulationSize        int     `env:"GASM_POPULATION_SIZE" envDefault:"200"`
	IndividualMaxSize     int     `env:"GASM_INDIVIDUAL_MAX_SIZE" envDefault:"64"`
	MutationProbability   float64 `env:"GASM_MUTATION_PROBABILITY" envDefault:"0.05"`
	CrossoverProbability  float64 `env:"GASM_CROSSOVER_PROBABILITY" envDefault:"0.7"`
	MaxGenerations        int     `env:"GASM_MAX_GENERATIONS" envDefault:"1000"`
	GoalFitness           float64 `env:"GASM_GOAL_FITNESS" envDefault:"0"`
	OutputFolder          string  `env:"GASM_OUTPUT_FOLDER" envDefault:"./checkpoints"`
	CheckPointInterval    int     `env:"GASM_CHECKPOINT_INTERVAL" envDefault:"10"`
	MaxProcessTime        uint64  `env:"GASM_MAX_PROCESS_TIME" envDefault:"100000"`
	RegisterLength        int     `env:"GASM_REGISTER_LENGTH" envDefault:"4"`

	// NanPenalty and Minimize are explicit configuration, not hard-coded
	// constants, matching GAsm.cpp's constructor parameters (SPEC_FULL.md §3).
	NanPenalty float64 `env:"GASM_NAN_PENALTY" envDefault:"1e9"`
	Minimize   bool    `env:"GASM_MINIMIZE" envDefault:"true"`
}

// LoadConfig reads an EngineConfig from the process environment, applying
// the envDefault tags for anything unset.
func LoadConfig() (EngineConfig, error) {
	var cfg EngineConfig
	if err := env.Parse(&cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("%w: %v", gerr.ErrInvalidArgument, err)
	}
	return cfg, nil
}

// Validate checks that cfg's numeric fields are in usable ranges.
func (cfg EngineConfig) Validate() error {
	switch {
	case cfg.PopulationSize <= 0:
		return fmt.Errorf("%w: populationSize must be positive", gerr.ErrInvalidArgument)
	case cfg.IndividualMaxSize <= 0:
		return fmt.Errorf("%w: individualMaxSize must be positive", gerr.ErrInvalidArgument)
	case cfg.RegisterLength <= 0:
		return fmt.Errorf("%w: registerLength must be positive", gerr.ErrInvalidArgument)
	case cfg.MaxProcessTime == 0:
		return fmt.Errorf("%w: maxProcessTime must be positive", gerr.ErrInvalidArgument)
	case cfg.MutationProbability < 0 || cfg.MutationProbability > 1:
		return fmt.Errorf("%w: mutationProbability must be in [0,1]", gerr.ErrInvalidArgument)
	case cfg.CrossoverProbability < 0 || cfg.CrossoverProbability > 1:
		return fmt.Errorf("%w: crossoverProbability must be in [0,1]", gerr.ErrInvalidArgument)
	}
	return nil
}
