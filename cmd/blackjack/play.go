package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/tui"
)

// PlayCmd runs the interactive terminal table
type PlayCmd struct {
	Balance int    `help:"Starting balance (overrides table.starting_balance)"`
	Seed    int64  `help:"Shoe seed for a reproducible session (overrides table.seed)"`
	LogFile string `help:"Debug log file (overrides log.file)"`
	NoColor bool   `help:"Disable colors"`
}

func (c *PlayCmd) Run(cli *CLI, cfg *config.Config) error {
	if c.Balance > 0 {
		cfg.Table.StartingBalance = c.Balance
	}
	if c.Seed != 0 {
		cfg.Table.Seed = c.Seed
	}
	if c.LogFile != "" {
		cfg.Log.File = c.LogFile
	}
	if c.NoColor {
		tui.DisableColor()
	}

	// The table owns the terminal, so logs go to a file
	logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer func() {
		_ = logFile.Close()
	}()

	logger := newLogger(cli, cfg, logFile)
	logger.Info("Starting table", "balance", cfg.Table.StartingBalance, "delay", cfg.StepDelay())

	g := game.New(gameOptions(cfg, logger)...)
	model := tui.NewTUIModel(g, logger, tui.Options{Chips: cfg.Table.Chips})

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run table: %w", err)
	}

	logger.Info("Table closed", "balance", g.State().Balance)
	return nil
}
