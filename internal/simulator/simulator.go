// Package simulator plays many blackjack rounds with an automated strategy and
// reports the aggregated results.
package simulator

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/fileutil"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/shoe"
	"github.com/lox/blackjack/internal/statistics"
)

// Config holds configuration for running simulations
type Config struct {
	Rounds          int
	Workers         int
	Strategy        string
	BetUnit         int
	StartingBalance int
	Seed            int64 // 0 picks a random seed
	Logger          *log.Logger
}

// Report is the outcome of a simulation run
type Report struct {
	Strategy string
	Seed     int64
	Workers  int
	Duration time.Duration
	Stats    *statistics.Statistics
}

// Simulator runs blackjack simulations
type Simulator struct {
	config Config
}

// New creates a new simulator with the given configuration, filling in
// defaults for zero values
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Workers > config.Rounds && config.Rounds > 0 {
		config.Workers = config.Rounds
	}
	if config.StartingBalance <= 0 {
		config.StartingBalance = game.DefaultStartingBalance
	}
	if config.BetUnit <= 0 {
		config.BetUnit = 100
	}
	if config.Strategy == "" {
		config.Strategy = "basic"
	}
	if config.Seed == 0 {
		config.Seed = rand.Int64()
	}
	if config.Logger == nil {
		config.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Simulator{config: config}
}

// Run plays the configured number of rounds split across workers. Each worker
// owns its own game and seeded shoe, so results depend only on the seed and
// worker count. Cancelling ctx stops workers between rounds.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	if s.config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", s.config.Rounds)
	}
	if _, err := bot.ByName(s.config.Strategy, s.config.BetUnit, nil, s.config.Logger); err != nil {
		return nil, err
	}

	start := time.Now()
	workers := s.config.Workers
	perWorker := s.config.Rounds / workers
	remainder := s.config.Rounds % workers
	results := make([]*statistics.Statistics, workers)

	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		rounds := perWorker
		if w < remainder {
			rounds++ // Distribute remainder rounds
		}

		g.Go(func() error {
			stats, err := s.runWorker(ctx, w, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			results[w] = stats
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := &statistics.Statistics{}
	for _, stats := range results {
		total.Merge(stats)
	}
	if err := total.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	return &Report{
		Strategy: s.config.Strategy,
		Seed:     s.config.Seed,
		Workers:  workers,
		Duration: time.Since(start),
		Stats:    total,
	}, nil
}

func (s *Simulator) runWorker(ctx context.Context, worker, rounds int) (*statistics.Statistics, error) {
	seed := s.config.Seed + int64(worker)
	logger := s.config.Logger.With("worker", worker)

	strategy, err := bot.ByName(s.config.Strategy, s.config.BetUnit, shoe.NewRand(^seed), logger)
	if err != nil {
		return nil, err
	}

	g := game.New(
		game.WithSeed(seed),
		game.WithStartingBalance(s.config.StartingBalance),
		game.WithLogger(logger),
	)
	tracker := statistics.NewTracker()
	defer tracker.Attach(g.Events())()

	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		switch state := g.State(); state.Phase {
		case game.PhaseGameOver:
			logger.Debug("Bankrupt, resetting", "round", i)
			if err := g.ResetGame(); err != nil {
				return nil, err
			}
		case game.PhaseRoundOver:
			if err := g.NewHand(); err != nil {
				return nil, err
			}
		}

		if _, err := bot.PlayRound(g, strategy); err != nil {
			return nil, fmt.Errorf("round %d: %w", i, err)
		}
	}

	stats := tracker.Snapshot()
	logger.Info("Worker finished", "rounds", stats.Rounds, "net", stats.SumNet)
	return &stats, nil
}

// RunSimulation is a convenience function for running a simulation with basic parameters
func RunSimulation(ctx context.Context, rounds int, strategy string, seed int64, logger *log.Logger) (*Report, error) {
	return New(Config{
		Rounds:   rounds,
		Workers:  1,
		Strategy: strategy,
		Seed:     seed,
		Logger:   logger,
	}).Run(ctx)
}

// PrintSummary writes a summary of simulation results
func PrintSummary(w io.Writer, report *Report) {
	stats := report.Stats
	low, high := stats.ConfidenceInterval95()

	fmt.Fprintf(w, "\n=== FINAL RESULTS: %s strategy ===\n", report.Strategy)
	fmt.Fprintf(w, "Rounds played: %d (%d workers, seed %d, %s)\n",
		stats.Rounds, report.Workers, report.Seed, report.Duration.Round(time.Millisecond))

	fmt.Fprintf(w, "\n=== OUTCOMES ===\n")
	fmt.Fprintf(w, "Wins: %d (%.1f%%)\n", stats.Wins, pct(stats.Wins, stats.Rounds))
	fmt.Fprintf(w, "Losses: %d (%.1f%%)\n", stats.Losses, pct(stats.Losses, stats.Rounds))
	fmt.Fprintf(w, "Ties: %d (%.1f%%)\n", stats.Ties, pct(stats.Ties, stats.Rounds))
	fmt.Fprintf(w, "Player busts: %d, dealer busts: %d\n", stats.PlayerBusts, stats.DealerBusts)
	fmt.Fprintf(w, "Twenty-ones: %d (%d naturals)\n", stats.TwentyOnes, stats.Naturals)
	fmt.Fprintf(w, "Bankruptcies: %d\n", stats.Bankruptcies)

	fmt.Fprintf(w, "\n=== STATISTICAL RESULTS ===\n")
	fmt.Fprintf(w, "Net: %+.0f chips on %d wagered (%.2f%% return)\n", stats.SumNet, stats.TotalWagered, stats.ReturnOnWager()*100)
	fmt.Fprintf(w, "Mean: %.4f chips/round\n", stats.Mean())
	fmt.Fprintf(w, "Median: %.4f chips/round\n", stats.Median())
	fmt.Fprintf(w, "Std Dev: %.4f chips\n", stats.StdDev())
	fmt.Fprintf(w, "Std Error: %.4f chips\n", stats.StdError())
	fmt.Fprintf(w, "95%% CI: [%.4f, %.4f] chips/round\n", low, high)
	fmt.Fprintf(w, "Max drawdown: %.0f chips\n", stats.MaxDrawdown)
}

// ReportSummary is the machine-readable form of a Report
type ReportSummary struct {
	Strategy     string     `json:"strategy"`
	Seed         int64      `json:"seed"`
	Workers      int        `json:"workers"`
	DurationMs   int64      `json:"duration_ms"`
	Rounds       int        `json:"rounds"`
	Wins         int        `json:"wins"`
	Losses       int        `json:"losses"`
	Ties         int        `json:"ties"`
	PlayerBusts  int        `json:"player_busts"`
	DealerBusts  int        `json:"dealer_busts"`
	TwentyOnes   int        `json:"twenty_ones"`
	Naturals     int        `json:"naturals"`
	Bankruptcies int        `json:"bankruptcies"`
	TotalWagered int        `json:"total_wagered"`
	Net          float64    `json:"net"`
	Mean         float64    `json:"mean"`
	Median       float64    `json:"median"`
	StdDev       float64    `json:"std_dev"`
	CI95         [2]float64 `json:"ci95"`
	MaxDrawdown  float64    `json:"max_drawdown"`
}

// Summary flattens the report for JSON output
func (r *Report) Summary() ReportSummary {
	stats := r.Stats
	low, high := stats.ConfidenceInterval95()
	return ReportSummary{
		Strategy:     r.Strategy,
		Seed:         r.Seed,
		Workers:      r.Workers,
		DurationMs:   r.Duration.Milliseconds(),
		Rounds:       stats.Rounds,
		Wins:         stats.Wins,
		Losses:       stats.Losses,
		Ties:         stats.Ties,
		PlayerBusts:  stats.PlayerBusts,
		DealerBusts:  stats.DealerBusts,
		TwentyOnes:   stats.TwentyOnes,
		Naturals:     stats.Naturals,
		Bankruptcies: stats.Bankruptcies,
		TotalWagered: stats.TotalWagered,
		Net:          stats.SumNet,
		Mean:         stats.Mean(),
		Median:       stats.Median(),
		StdDev:       stats.StdDev(),
		CI95:         [2]float64{low, high},
		MaxDrawdown:  stats.MaxDrawdown,
	}
}

// SaveReport writes the report summary to filename as JSON
func SaveReport(filename string, report *Report) error {
	return fileutil.WriteJSONAtomic(filename, report.Summary())
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
