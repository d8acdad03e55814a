package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/game"
)

// version is set by ldflags during build
var version = "dev"

type CLI struct {
	Config      string           `short:"c" default:"blackjack.hcl" type:"path" help:"HCL configuration file (defaults are used when it does not exist)"`
	Debug       bool             `help:"Enable debug logging"`
	VersionFlag kong.VersionFlag `name:"version" short:"v" help:"Show version"`

	Play     PlayCmd     `cmd:"" default:"1" help:"Play at the terminal table"`
	Simulate SimulateCmd `cmd:"" help:"Play many rounds with a built-in strategy and report the results"`
	Serve    ServeCmd    `cmd:"" help:"Serve single-player tables over websockets"`
	Version  VersionCmd  `cmd:"" help:"Print the version"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Single-player blackjack against a house dealer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version":    version,
			"strategies": strings.Join(bot.Names(), ", "),
		},
	)

	cfg, err := loadConfig(cli.Config)
	ctx.FatalIfErrorf(err)

	err = ctx.Run(&cli, cfg)
	ctx.FatalIfErrorf(err)
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the root logger. A nil writer logs to stderr.
func newLogger(cli *CLI, cfg *config.Config, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	level := cfg.LogLevel()
	if cli.Debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
	})
}

// gameOptions translates table settings into engine options
func gameOptions(cfg *config.Config, logger *log.Logger) []game.Option {
	opts := []game.Option{
		game.WithLogger(logger),
		game.WithStartingBalance(cfg.Table.StartingBalance),
		game.WithStepDelay(cfg.StepDelay()),
	}
	if cfg.Table.Seed != 0 {
		logger.Info("Using deterministic seed", "seed", cfg.Table.Seed)
		opts = append(opts, game.WithSeed(cfg.Table.Seed))
	}
	return opts
}

// signalContext is cancelled on interrupt or SIGTERM
func signalContext(logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

type VersionCmd struct{}

func (v *VersionCmd) Run() error {
	fmt.Println(version)
	return nil
}
