package shoe

import (
	"sort"

	"github.com/lox/blackjack/internal/deck"
)

// Used is the set of card codes already dealt in the current round.
// The zero value is an empty set ready to use.
type Used struct {
	codes map[string]struct{}
}

// NewUsed creates a set holding the given cards
func NewUsed(cards ...deck.Card) *Used {
	u := &Used{}
	for _, c := range cards {
		u.Add(c)
	}
	return u
}

// Add marks a card as dealt
func (u *Used) Add(c deck.Card) {
	if u.codes == nil {
		u.codes = make(map[string]struct{}, deck.Size)
	}
	u.codes[c.Code()] = struct{}{}
}

// Contains reports whether the card has already been dealt
func (u *Used) Contains(c deck.Card) bool {
	if u == nil {
		return false
	}
	_, ok := u.codes[c.Code()]
	return ok
}

// Len returns the number of dealt cards
func (u *Used) Len() int {
	if u == nil {
		return 0
	}
	return len(u.codes)
}

// Codes returns the dealt codes in sorted order
func (u *Used) Codes() []string {
	if u == nil {
		return nil
	}
	codes := make([]string, 0, len(u.codes))
	for code := range u.codes {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Reset empties the set for a new round
func (u *Used) Reset() {
	clear(u.codes)
}
