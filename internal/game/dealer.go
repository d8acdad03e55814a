package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
	"github.com/lox/blackjack/internal/shoe"
)

const (
	// DealerStandsOn is the total at which the dealer stops drawing
	DealerStandsOn = 17

	// MaxDealerDraws bounds a single dealer turn
	MaxDealerDraws = 10
)

// DealerState is the terminal state of a dealer turn
type DealerState int

const (
	DealerStanding DealerState = iota
	DealerBust
)

func (s DealerState) String() string {
	if s == DealerBust {
		return "bust"
	}
	return "standing"
}

// DealerResult describes how a dealer turn ended
type DealerResult struct {
	Hand      []deck.Card
	Total     evaluator.Total
	Draws     int
	State     DealerState
	Exhausted bool // stopped because the shoe ran out
	Capped    bool // stopped after MaxDealerDraws
}

// DealerHooks lets the caller observe and pace a dealer turn. Both fields are
// optional.
type DealerHooks struct {
	// OnDraw runs after each card is added to the dealer hand
	OnDraw func(card deck.Card, total evaluator.Total)
	// Pause runs between successive draws
	Pause func()
}

// DealerShouldStand reports whether the dealer stops drawing on this total.
// The dealer stands on 17 or more, except a 17 made with any ace in the hand.
func DealerShouldStand(total evaluator.Total) bool {
	if total.Optimal < DealerStandsOn {
		return false
	}
	return !(total.Optimal == DealerStandsOn && total.IsSoft())
}

// PlayDealer draws cards for the dealer until the hand stands or busts. Every
// drawn card is added to used. The hand passed in is not modified; the final
// hand is returned in the result.
func PlayDealer(hand []deck.Card, used *shoe.Used, drawer shoe.Drawer, hooks DealerHooks) DealerResult {
	current := make([]deck.Card, len(hand), len(hand)+MaxDealerDraws)
	copy(current, hand)

	result := DealerResult{State: DealerStanding}
	total := evaluator.Evaluate(current)

	for {
		if total.IsBust() {
			result.State = DealerBust
			break
		}
		if DealerShouldStand(total) {
			break
		}
		if result.Draws == MaxDealerDraws {
			result.Capped = true
			break
		}
		if result.Draws > 0 && hooks.Pause != nil {
			hooks.Pause()
		}

		card, ok := drawer.Draw(used)
		if !ok {
			result.Exhausted = true
			break
		}
		used.Add(card)
		current = append(current, card)
		result.Draws++
		total = evaluator.Evaluate(current)

		if hooks.OnDraw != nil {
			hooks.OnDraw(card, total)
		}
	}

	result.Hand = current
	result.Total = total
	return result
}
