package main

import (
	"fmt"

	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/server"
)

// ServeCmd serves one single-player table per websocket connection
type ServeCmd struct {
	Addr string `help:"Listen address (overrides server.address and server.port)"`
}

func (c *ServeCmd) Run(cli *CLI, cfg *config.Config) error {
	logger := newLogger(cli, cfg, nil)

	addr := c.Addr
	if addr == "" {
		addr = cfg.ServerAddress()
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	s := server.NewServer(addr, logger, gameOptions(cfg, logger)...)
	logger.Info("Serving blackjack",
		"addr", addr,
		"starting_balance", cfg.Table.StartingBalance,
		"dealer_step_delay", cfg.StepDelay(),
	)
	if err := s.Start(ctx); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}
