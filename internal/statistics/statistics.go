// Package statistics accumulates per-session blackjack results.
package statistics

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult represents the outcome of a single round from the player's side
type RoundResult struct {
	Outcome     game.Outcome
	Bet         int
	Net         int // chips won or lost this round
	PlayerTotal int
	DealerTotal int
	PlayerCards int
	Balance     int // balance after settlement
	GameOver    bool
}

// ResultFromEvent converts a RoundEndEvent into a RoundResult
func ResultFromEvent(e game.RoundEndEvent) RoundResult {
	return RoundResult{
		Outcome:     e.Outcome,
		Bet:         e.Bet,
		Net:         e.Payout,
		PlayerTotal: e.PlayerTotal.Optimal,
		DealerTotal: e.DealerTotal.Optimal,
		PlayerCards: len(e.PlayerHand),
		Balance:     e.Balance,
		GameOver:    e.GameOver,
	}
}

// Statistics tracks session results
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // per-round net, for median/percentile

	Wins   int
	Losses int
	Ties   int

	WinNet  float64 // net from rounds won
	LossNet float64 // net from rounds lost

	PlayerBusts int
	DealerBusts int
	TwentyOnes  int // player reached exactly 21
	Naturals    int // 21 on the first two cards

	TotalWagered int
	Bankruptcies int

	// drawdown is tracked on the running net, starting from zero
	peak        float64
	MaxDrawdown float64
}

// Mean returns the mean net chips per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of per-round net
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	v := (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
	return math.Max(v, 0)
}

// StdDev returns the sample standard deviation of per-round net
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// WinRate returns the fraction of rounds won
func (s *Statistics) WinRate() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return float64(s.Wins) / float64(s.Rounds)
}

// ReturnOnWager returns net chips divided by total chips wagered
func (s *Statistics) ReturnOnWager() float64 {
	if s.TotalWagered == 0 {
		return 0
	}
	return s.SumNet / float64(s.TotalWagered)
}

// Add incorporates a round result into the statistics
func (s *Statistics) Add(r RoundResult) {
	net := float64(r.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.TotalWagered += r.Bet

	switch r.Outcome {
	case game.OutcomePlayerWins:
		s.Wins++
		s.WinNet += net
	case game.OutcomeDealerWins:
		s.Losses++
		s.LossNet += net
	case game.OutcomeTie:
		s.Ties++
	}

	if r.PlayerTotal > 21 {
		s.PlayerBusts++
	} else if r.DealerTotal > 21 {
		s.DealerBusts++
	}
	if r.PlayerTotal == 21 {
		s.TwentyOnes++
		if r.PlayerCards == 2 {
			s.Naturals++
		}
	}
	if r.GameOver {
		s.Bankruptcies++
	}

	s.peak = math.Max(s.peak, s.SumNet)
	s.MaxDrawdown = math.Max(s.MaxDrawdown, s.peak-s.SumNet)
}

// Merge folds another session's statistics into s. Drawdown is taken as the
// worst of the two sessions.
func (s *Statistics) Merge(o *Statistics) {
	s.Rounds += o.Rounds
	s.SumNet += o.SumNet
	s.SumNet2 += o.SumNet2
	s.Values = append(s.Values, o.Values...)
	s.Wins += o.Wins
	s.Losses += o.Losses
	s.Ties += o.Ties
	s.WinNet += o.WinNet
	s.LossNet += o.LossNet
	s.PlayerBusts += o.PlayerBusts
	s.DealerBusts += o.DealerBusts
	s.TwentyOnes += o.TwentyOnes
	s.Naturals += o.Naturals
	s.TotalWagered += o.TotalWagered
	s.Bankruptcies += o.Bankruptcies
	s.MaxDrawdown = math.Max(s.MaxDrawdown, o.MaxDrawdown)
	s.peak = math.Max(s.peak, s.SumNet)
}

// Median returns the median per-round net
func (s *Statistics) Median() float64 {
	return s.Percentile(0.5)
}

// Percentile returns the per-round net at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// IsLedgerBalanced checks that wins and losses account for the whole net.
// Ties never move chips.
func (s *Statistics) IsLedgerBalanced() bool {
	return math.Abs(s.SumNet-s.WinNet-s.LossNet) <= 1e-6
}

// Validate performs consistency checks on the accumulated data
func (s *Statistics) Validate() error {
	if !s.IsLedgerBalanced() {
		return fmt.Errorf("ledger mismatch: net=%.2f, won=%.2f, lost=%.2f", s.SumNet, s.WinNet, s.LossNet)
	}
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid rounds count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match rounds count (%d)", len(s.Values), s.Rounds)
	}
	if s.Wins+s.Losses+s.Ties != s.Rounds {
		return fmt.Errorf("outcomes (%d wins, %d losses, %d ties) do not add up to %d rounds",
			s.Wins, s.Losses, s.Ties, s.Rounds)
	}
	if s.Naturals > s.TwentyOnes {
		return fmt.Errorf("naturals (%d) exceed twenty-ones (%d)", s.Naturals, s.TwentyOnes)
	}
	return nil
}

// Tracker collects statistics from a game's event bus. It is safe for
// concurrent use.
type Tracker struct {
	mu    sync.Mutex
	stats Statistics
}

// NewTracker creates a tracker
func NewTracker() *Tracker {
	return &Tracker{}
}

// Attach subscribes the tracker to bus and returns the unsubscribe function
func (t *Tracker) Attach(bus game.EventBus) func() {
	return bus.Subscribe(t)
}

// OnEvent implements game.EventSubscriber
func (t *Tracker) OnEvent(event game.GameEvent) {
	if e, ok := event.(game.RoundEndEvent); ok {
		t.mu.Lock()
		t.stats.Add(ResultFromEvent(e))
		t.mu.Unlock()
	}
}

// Snapshot returns a copy of the statistics gathered so far
func (t *Tracker) Snapshot() Statistics {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.stats
	s.Values = append([]float64(nil), t.stats.Values...)
	return s
}

// Reset clears the tracker
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats = Statistics{}
}
