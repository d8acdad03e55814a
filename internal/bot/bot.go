// Package bot provides automated blackjack players used by the simulator and
// for hints in the terminal UI.
package bot

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// Action is a player decision during PlayerTurn
type Action int

const (
	Stand Action = iota
	Hit
)

func (a Action) String() string {
	switch a {
	case Hit:
		return "hit"
	case Stand:
		return "stand"
	default:
		return "unknown"
	}
}

// Decision is an action together with a short explanation
type Decision struct {
	Action    Action
	Reasoning string
}

// Strategy decides how much to bet and whether to hit or stand
type Strategy interface {
	Name() string
	Bet(state game.State) int
	Decide(state game.State) Decision
}

// base stakes the same unit each round, or whatever is left of the balance
type base struct {
	unit   int
	logger *log.Logger
}

func (b base) Bet(state game.State) int {
	return max(0, min(b.unit, state.Balance))
}

func (b base) decided(state game.State, action Action, reasoning string) Decision {
	if b.logger != nil {
		b.logger.Debug("Decision", "round", state.RoundID, "hand", game.FormatCards(state.PlayerHand), "action", action, "reasoning", reasoning)
	}
	return Decision{Action: action, Reasoning: reasoning}
}

var strategies = map[string]func(unit int, rng *rand.Rand, logger *log.Logger) Strategy{
	"dealer":   func(unit int, _ *rand.Rand, logger *log.Logger) Strategy { return NewDealerBot(unit, logger) },
	"cautious": func(unit int, _ *rand.Rand, logger *log.Logger) Strategy { return NewCautiousBot(unit, logger) },
	"basic":    func(unit int, _ *rand.Rand, logger *log.Logger) Strategy { return NewBasicBot(unit, logger) },
	"random":   func(unit int, rng *rand.Rand, logger *log.Logger) Strategy { return NewRandBot(unit, rng, logger) },
}

// Names lists the registered strategy names
func Names() []string {
	names := make([]string, 0, len(strategies))
	for name := range strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ByName creates the named strategy betting unit chips per round. rng is only
// used by the random strategy.
func ByName(name string, unit int, rng *rand.Rand, logger *log.Logger) (Strategy, error) {
	factory, ok := strategies[name]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q (available: %v)", name, Names())
	}
	if unit <= 0 {
		return nil, fmt.Errorf("bet unit must be positive, got %d", unit)
	}
	return factory(unit, rng, logger.WithPrefix("bot").With("strategy", name)), nil
}

// PlayRound plays one complete round of g with s: bet, deal, then hit or
// stand until the round is settled. The game must be in the betting phase.
func PlayRound(g *game.Game, s Strategy) (game.State, error) {
	state := g.State()
	bet := s.Bet(state)
	if bet <= 0 {
		return state, fmt.Errorf("%s: no chips to bet with balance %d", s.Name(), state.Balance)
	}
	if err := g.PlaceBet(bet); err != nil {
		return state, err
	}
	if err := g.Deal(); err != nil {
		return g.State(), err
	}

	for state = g.State(); state.CanAct(); state = g.State() {
		decision := s.Decide(state)
		if decision.Action == Hit {
			err := g.Hit()
			if err == nil {
				continue
			}
			if !errors.Is(err, game.ErrShoeExhausted) {
				return g.State(), err
			}
		}
		if err := g.Stand(); err != nil {
			return g.State(), err
		}
	}
	return state, nil
}
