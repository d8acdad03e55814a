package bot

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// DealerBot plays the house policy: hit below 17 and on any 17 holding an ace
type DealerBot struct {
	base
}

// NewDealerBot creates a new DealerBot instance
func NewDealerBot(unit int, logger *log.Logger) *DealerBot {
	return &DealerBot{base: base{unit: unit, logger: logger}}
}

func (d *DealerBot) Name() string { return "dealer" }

func (d *DealerBot) Decide(state game.State) Decision {
	total := state.PlayerTotal()
	if game.DealerShouldStand(total) {
		return d.decided(state, Stand, fmt.Sprintf("dealer stands on %d", total.Optimal))
	}
	return d.decided(state, Hit, fmt.Sprintf("dealer hits %d", total.Optimal))
}

// CautiousBot never risks a bust: it stands on any total of 12 or more
type CautiousBot struct {
	base
}

// NewCautiousBot creates a new CautiousBot instance
func NewCautiousBot(unit int, logger *log.Logger) *CautiousBot {
	return &CautiousBot{base: base{unit: unit, logger: logger}}
}

func (c *CautiousBot) Name() string { return "cautious" }

func (c *CautiousBot) Decide(state game.State) Decision {
	total := state.PlayerTotal()
	if total.Optimal >= 12 {
		return c.decided(state, Stand, fmt.Sprintf("%d could bust", total.Optimal))
	}
	return c.decided(state, Hit, fmt.Sprintf("%d cannot bust", total.Optimal))
}

// BasicBot follows hit/stand basic strategy against the dealer's up card.
// There is no doubling or splitting at this table.
type BasicBot struct {
	base
}

// NewBasicBot creates a new BasicBot instance
func NewBasicBot(unit int, logger *log.Logger) *BasicBot {
	return &BasicBot{base: base{unit: unit, logger: logger}}
}

func (b *BasicBot) Name() string { return "basic" }

func (b *BasicBot) Decide(state game.State) Decision {
	total := state.PlayerTotal()
	up := upCardValue(state)

	// soft hands: an ace is still counted as 11
	if total.HasAces() && total.Optimal != total.Hard {
		if total.Optimal >= 19 || (total.Optimal == 18 && up <= 8) {
			return b.decided(state, Stand, fmt.Sprintf("soft %d against %d", total.Optimal, up))
		}
		return b.decided(state, Hit, fmt.Sprintf("soft %d against %d", total.Optimal, up))
	}

	switch {
	case total.Optimal >= 17:
		return b.decided(state, Stand, fmt.Sprintf("hard %d", total.Optimal))
	case total.Optimal >= 13 && up <= 6:
		return b.decided(state, Stand, fmt.Sprintf("hard %d against dealer %d", total.Optimal, up))
	case total.Optimal == 12 && up >= 4 && up <= 6:
		return b.decided(state, Stand, fmt.Sprintf("hard 12 against dealer %d", up))
	default:
		return b.decided(state, Hit, fmt.Sprintf("hard %d against dealer %d", total.Optimal, up))
	}
}

// upCardValue returns the dealer's face-up card with an ace counted as 11.
// Without a visible card it assumes the worst case, a ten.
func upCardValue(state game.State) int {
	visible := state.VisibleDealerHand()
	if len(visible) == 0 {
		return 10
	}
	if visible[0].Rank == deck.Ace {
		return 11
	}
	return visible[0].Value()
}

// RandBot hits or stands on a coin flip
type RandBot struct {
	base
	rng *rand.Rand
}

// NewRandBot creates a new RandBot instance. A nil rng uses a random seed.
func NewRandBot(unit int, rng *rand.Rand, logger *log.Logger) *RandBot {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &RandBot{base: base{unit: unit, logger: logger}, rng: rng}
}

func (r *RandBot) Name() string { return "random" }

func (r *RandBot) Decide(state game.State) Decision {
	if r.rng.IntN(2) == 0 {
		return r.decided(state, Stand, "rand-bot random action")
	}
	return r.decided(state, Hit, "rand-bot random action")
}
