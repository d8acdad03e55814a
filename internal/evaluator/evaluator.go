// Package evaluator scores blackjack hands.
//
// Aces are worth 1 or 11. Evaluate reports both extremes (every ace low, every
// ace high) alongside the optimal total the game logic uses.
package evaluator

import (
	"fmt"
	"strconv"

	"github.com/lox/blackjack/internal/deck"
)

// Blackjack is the best possible total
const Blackjack = 21

// Total is the evaluation of a hand
type Total struct {
	Hard    int    // every ace counted as 1
	Soft    int    // every ace counted as 11
	Optimal int    // best total, used for all win/loss logic
	Aces    int    // number of aces in the hand
	Display string // "hard | soft" when the hand holds aces, otherwise the optimal total
}

// Evaluate scores a hand. Card order does not matter.
func Evaluate(cards []deck.Card) Total {
	base := 0
	aces := 0
	for _, c := range cards {
		if c.IsAce() {
			aces++
			continue
		}
		base += c.Value()
	}

	// At most one ace can ever count as 11 without busting, so start with
	// every ace low and promote one when it fits.
	optimal := base + aces
	if aces > 0 && optimal+10 <= Blackjack {
		optimal += 10
	}

	t := Total{
		Hard:    base + aces,
		Soft:    base + aces*11,
		Optimal: optimal,
		Aces:    aces,
	}
	if aces > 0 {
		t.Display = fmt.Sprintf("%d | %d", t.Hard, t.Soft)
	} else {
		t.Display = strconv.Itoa(optimal)
	}
	return t
}

// HasAces reports whether the hand holds at least one ace
func (t Total) HasAces() bool {
	return t.Aces > 0
}

// IsSoft reports whether the hand counts as soft. Any ace makes a hand soft,
// whether or not it is currently valued at 11.
func (t Total) IsSoft() bool {
	return t.HasAces()
}

// IsBust reports whether the optimal total is over 21
func (t Total) IsBust() bool {
	return t.Optimal > Blackjack
}

// IsTwentyOne reports whether the optimal total is exactly 21
func (t Total) IsTwentyOne() bool {
	return t.Optimal == Blackjack
}

func (t Total) String() string {
	return t.Display
}
