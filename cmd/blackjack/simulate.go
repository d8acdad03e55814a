package main

import (
	"os"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd plays rounds with a built-in strategy and prints statistics
type SimulateCmd struct {
	Rounds   int    `short:"n" default:"10000" help:"Number of rounds to play"`
	Workers  int    `short:"w" default:"4" help:"Number of parallel games"`
	Strategy string `short:"s" default:"basic" help:"Strategy to play (${strategies})"`
	Unit     int    `default:"100" help:"Flat bet per round"`
	Seed     int64  `help:"Seed for reproducible runs (overrides table.seed, 0 is random)"`
	Output   string `short:"o" type:"path" help:"Also write the results as JSON to this file"`
}

func (c *SimulateCmd) Run(cli *CLI, cfg *config.Config) error {
	logger := newLogger(cli, cfg, nil)

	seed := c.Seed
	if seed == 0 {
		seed = cfg.Table.Seed
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	sim := simulator.New(simulator.Config{
		Rounds:          c.Rounds,
		Workers:         c.Workers,
		Strategy:        c.Strategy,
		BetUnit:         c.Unit,
		StartingBalance: cfg.Table.StartingBalance,
		Seed:            seed,
		Logger:          logger,
	})

	report, err := sim.Run(ctx)
	if err != nil {
		return err
	}

	simulator.PrintSummary(os.Stdout, report)
	if c.Output != "" {
		if err := simulator.SaveReport(c.Output, report); err != nil {
			return err
		}
		logger.Info("Wrote results", "file", c.Output)
	}
	return nil
}
