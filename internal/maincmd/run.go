package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"

	"github.com/komumati1/GAsm/engine/evolve"
	"github.com/komumati1/GAsm/engine/genetic"
)

// Run starts a fresh evolution from environment-sourced EngineConfig (see
// evolve.EngineConfig's GASM_* variables) and the --data training file,
// saving a checkpoint to args[0] every CheckPointInterval generations.
func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	checkpointPath := args[0]

	cfg, err := evolve.LoadConfig()
	if err != nil {
		return printError(stdio, err)
	}

	td, err := loadTrainingData(c.DataPath)
	if err != nil {
		return printError(stdio, err)
	}

	grow, sel, cross, mutate, err := c.resolveStrategies()
	if err != nil {
		return printError(stdio, err)
	}

	e, err := evolve.NewEngine(cfg, td.Inputs, td.Targets, nil, grow, sel, cross, mutate)
	if err != nil {
		return printError(stdio, err)
	}

	return runAndReport(ctx, stdio, e, checkpointPath)
}

// resolveStrategies constructs the four genetic operators named by c's
// --grow/--select/--cross/--mutate flags (defaulted in Validate), sharing
// --param across whichever of them takes a parameter.
func (c *Cmd) resolveStrategies() (genetic.Grower, genetic.Selector, genetic.Crossover, genetic.Mutator, error) {
	grow, err := evolve.NewGrower(c.Grow, c.Param)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	sel, err := evolve.NewSelector(c.Select, c.Param)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	cross, err := evolve.NewCrossover(c.Cross)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	mutate, err := evolve.NewMutator(c.Mutate)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return grow, sel, cross, mutate, nil
}

func runAndReport(ctx context.Context, stdio mainer.Stdio, e *evolve.Engine, checkpointPath string) error {
	checkpoint := func(eng *evolve.Engine) error {
		cp, err := eng.BuildCheckpoint()
		if err != nil {
			return err
		}
		return cp.Save(checkpointPath)
	}

	stats, err := e.Run(ctx, checkpoint)
	if err != nil {
		return printError(stdio, err)
	}

	fmt.Fprintf(stdio.Stdout, "generation %d: best=%g avg=%g avgSize=%g\n",
		stats.Generation, stats.BestFitness, stats.AvgFitness, stats.AvgSize)
	return nil
}
