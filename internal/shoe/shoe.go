// Package shoe draws cards from a single 52 card deck without replacement.
//
// The shoe itself holds no cards. Every draw is computed from the full deck
// minus the set of codes the caller has already dealt, so the caller's Used set
// is the only record of what has left the shoe.
package shoe

import (
	rand "math/rand/v2"

	"github.com/lox/blackjack/internal/deck"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// NewRand returns a *rand.Rand seeded deterministically from seed so that a
// whole session can be replayed.
func NewRand(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// NewRandomRand returns a generator seeded from the runtime's entropy source
func NewRandomRand() *rand.Rand {
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}

// Drawer produces one fresh card given the cards already dealt. It reports
// false when every card has been dealt.
type Drawer interface {
	Draw(used *Used) (deck.Card, bool)
}

// Shoe draws uniformly at random from the undealt cards
type Shoe struct {
	rng *rand.Rand
}

// New creates a shoe backed by rng. A nil rng gets a randomly seeded generator.
func New(rng *rand.Rand) *Shoe {
	if rng == nil {
		rng = NewRandomRand()
	}
	return &Shoe{rng: rng}
}

// Draw returns a card that is not in used, chosen uniformly from the rest of
// the deck. The caller is responsible for adding the card to used.
func (s *Shoe) Draw(used *Used) (deck.Card, bool) {
	available := Remaining(used)
	if len(available) == 0 {
		return deck.Card{}, false
	}
	return available[s.rng.IntN(len(available))], true
}

// Remaining returns the cards not yet dealt, in deck order
func Remaining(used *Used) []deck.Card {
	all := deck.AllCards()
	available := all[:0]
	for _, c := range all {
		if !used.Contains(c) {
			available = append(available, c)
		}
	}
	return available
}
