package shoe

import "github.com/lox/blackjack/internal/deck"

// Stacked deals a predetermined sequence of cards, used to replay a known
// round. Cards that have already been dealt are skipped. Once the sequence
// runs out, Stacked falls back to the next Drawer if one is set, otherwise it
// reports an empty shoe.
type Stacked struct {
	cards    []deck.Card
	next     int
	fallback Drawer
}

// NewStacked creates a drawer that deals cards in the given order
func NewStacked(cards ...deck.Card) *Stacked {
	return &Stacked{cards: cards}
}

// Then sets the drawer used once the stacked cards are exhausted
func (s *Stacked) Then(d Drawer) *Stacked {
	s.fallback = d
	return s
}

// Push appends more cards to the end of the sequence
func (s *Stacked) Push(cards ...deck.Card) {
	s.cards = append(s.cards, cards...)
}

// Draw deals the next stacked card not present in used
func (s *Stacked) Draw(used *Used) (deck.Card, bool) {
	for s.next < len(s.cards) {
		c := s.cards[s.next]
		s.next++
		if !used.Contains(c) {
			return c, true
		}
	}
	if s.fallback != nil {
		return s.fallback.Draw(used)
	}
	return deck.Card{}, false
}
