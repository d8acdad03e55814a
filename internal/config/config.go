// Package config loads table, logging and server settings from HCL files and
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Environment variables that override file settings
const (
	// EnvSeed seeds the shoe for reproducible sessions (0 means random)
	EnvSeed = "BLACKJACK_SEED"

	// EnvLogLevel overrides log.level
	EnvLogLevel = "BLACKJACK_LOG_LEVEL"
)

// Defaults
const (
	DefaultStartingBalance = 2500
	DefaultStepDelay       = "500ms"
	DefaultLogLevel        = "info"
	DefaultLogFile         = "blackjack.log"
	DefaultAddress         = "localhost"
	DefaultPort            = 8021
)

// DefaultChips are the chip denominations offered by the table
var DefaultChips = []int{25, 50, 100, 500}

// Config represents the complete configuration
type Config struct {
	Table  *TableSettings  `hcl:"table,block"`
	Log    *LogSettings    `hcl:"log,block"`
	Server *ServerSettings `hcl:"server,block"`
}

// TableSettings controls the game itself
type TableSettings struct {
	StartingBalance int    `hcl:"starting_balance,optional"`
	Chips           []int  `hcl:"chips,optional"`
	DealerStepDelay string `hcl:"dealer_step_delay,optional"`
	Seed            int64  `hcl:"seed,optional"`
}

// LogSettings controls the root logger
type LogSettings struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// ServerSettings controls the websocket play server
type ServerSettings struct {
	Address string `hcl:"address,optional"`
	Port    int    `hcl:"port,optional"`
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Table: &TableSettings{
			StartingBalance: DefaultStartingBalance,
			Chips:           append([]int(nil), DefaultChips...),
			DealerStepDelay: DefaultStepDelay,
		},
		Log: &LogSettings{
			Level: DefaultLogLevel,
			File:  DefaultLogFile,
		},
		Server: &ServerSettings{
			Address: DefaultAddress,
			Port:    DefaultPort,
		},
	}
}

// Load reads configuration from an HCL file. A missing file yields the
// defaults; omitted blocks and attributes are filled with defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var cfg Config
	diags = gohcl.DecodeBody(file.Body, nil, &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := Default()
	if c.Table == nil {
		c.Table = defaults.Table
	}
	if c.Log == nil {
		c.Log = defaults.Log
	}
	if c.Server == nil {
		c.Server = defaults.Server
	}

	if c.Table.StartingBalance == 0 {
		c.Table.StartingBalance = DefaultStartingBalance
	}
	if len(c.Table.Chips) == 0 {
		c.Table.Chips = defaults.Table.Chips
	}
	if c.Table.DealerStepDelay == "" {
		c.Table.DealerStepDelay = DefaultStepDelay
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}
}

// ApplyEnv overrides settings from BLACKJACK_* environment variables
func (c *Config) ApplyEnv() error {
	if seedStr := os.Getenv(EnvSeed); seedStr != "" {
		seed, err := strconv.ParseInt(seedStr, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvSeed, err)
		}
		c.Table.Seed = seed
	}

	if level := os.Getenv(EnvLogLevel); level != "" {
		if _, err := log.ParseLevel(level); err != nil {
			return fmt.Errorf("invalid %s value: %w", EnvLogLevel, err)
		}
		c.Log.Level = level
	}

	return nil
}

// Validate checks the configuration for values the game cannot run with
func (c *Config) Validate() error {
	if c.Table.StartingBalance <= 0 {
		return fmt.Errorf("table: starting balance must be positive, got %d", c.Table.StartingBalance)
	}
	for _, chip := range c.Table.Chips {
		if chip <= 0 {
			return fmt.Errorf("table: chip values must be positive, got %d", chip)
		}
	}
	if d, err := time.ParseDuration(c.Table.DealerStepDelay); err != nil {
		return fmt.Errorf("table: invalid dealer_step_delay: %w", err)
	} else if d < 0 {
		return fmt.Errorf("table: dealer_step_delay must not be negative")
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port: %d", c.Server.Port)
	}
	return nil
}

// StepDelay returns the parsed dealer step delay, or zero if it is invalid
func (c *Config) StepDelay() time.Duration {
	d, err := time.ParseDuration(c.Table.DealerStepDelay)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// LogLevel returns the parsed log level, falling back to info
func (c *Config) LogLevel() log.Level {
	level, err := log.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil {
		return log.InfoLevel
	}
	return level
}

// ServerAddress returns the listen address for the play server
func (c *Config) ServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IsChip reports whether amount is one of the configured chip values
func (c *Config) IsChip(amount int) bool {
	for _, chip := range c.Table.Chips {
		if chip == amount {
			return true
		}
	}
	return false
}
