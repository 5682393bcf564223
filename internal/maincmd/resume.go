package maincmd

import (
	"context"

	"github.com/mna/mainer"

	"github.com/komumati1/GAsm/engine/evolve"
)

// Resume continues a run from an existing checkpoint file, rebuilding the
// population and history exactly as Save left them, then saving back to
// the same path as the run progresses.
func (c *Cmd) Resume(ctx context.Context, stdio mainer.Stdio, args []string) error {
	checkpointPath := args[0]

	cp, err := evolve.LoadCheckpoint(checkpointPath)
	if err != nil {
		return printError(stdio, err)
	}

	// NanPenalty and Minimize aren't part of the checkpoint schema (same as
	// the strategies below), so resuming re-reads them from the same
	// GASM_NAN_PENALTY/GASM_MINIMIZE environment source the original run
	// used, rather than assuming a default that could invert optimization
	// direction partway through a run.
	envCfg, err := evolve.LoadConfig()
	if err != nil {
		return printError(stdio, err)
	}

	grow, sel, cross, mutate, err := c.resolveStrategies()
	if err != nil {
		return printError(stdio, err)
	}

	e, err := evolve.RestoreEngine(cp, nil, grow, sel, cross, mutate, envCfg.NanPenalty, envCfg.Minimize)
	if err != nil {
		return printError(stdio, err)
	}

	return runAndReport(ctx, stdio, e, checkpointPath)
}
