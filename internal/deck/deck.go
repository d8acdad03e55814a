package deck

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Size is the number of cards in a standard deck
const Size = 52

// AllCards returns the full 52 card universe in a fixed order: suits clubs,
// diamonds, hearts, spades and ranks A through K within each suit. A fresh slice
// is returned on every call.
func AllCards() []Card {
	cards := make([]Card, 0, Size)
	for _, suit := range Suits {
		for _, rank := range Ranks {
			cards = append(cards, Card{Rank: rank, Suit: suit})
		}
	}
	return cards
}

// ParseCode parses a card code such as "AS", "0D" or "10d" into a Card
func ParseCode(code string) (Card, error) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if strings.HasPrefix(s, "10") {
		s = "0" + s[2:]
	}
	if len(s) != 2 {
		return Card{}, fmt.Errorf("invalid card code: %q", code)
	}

	var rank Rank
	switch s[0] {
	case 'A':
		rank = Ace
	case '0', 'T':
		rank = Ten
	case 'J':
		rank = Jack
	case 'Q':
		rank = Queen
	case 'K':
		rank = King
	default:
		if s[0] < '2' || s[0] > '9' {
			return Card{}, fmt.Errorf("invalid rank in card code %q", code)
		}
		rank = Rank(s[0] - '0')
	}

	var suit Suit
	switch s[1] {
	case 'C':
		suit = Clubs
	case 'D':
		suit = Diamonds
	case 'H':
		suit = Hearts
	case 'S':
		suit = Spades
	default:
		return Card{}, fmt.Errorf("invalid suit in card code %q", code)
	}

	return Card{Rank: rank, Suit: suit}, nil
}

// ParseCodes parses a space separated list of card codes
func ParseCodes(codes string) ([]Card, error) {
	fields := strings.Fields(codes)
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCode(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCodes is like ParseCodes but panics on error. Intended for fixtures.
func MustParseCodes(codes string) []Card {
	cards, err := ParseCodes(codes)
	if err != nil {
		panic(err)
	}
	return cards
}

type cardJSON struct {
	Rank  string `json:"rank"`
	Suit  string `json:"suit"`
	Color string `json:"color"`
	Code  string `json:"code"`
	Image string `json:"image"`
}

// MarshalJSON exposes every observable attribute of the card
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{
		Rank:  c.Rank.String(),
		Suit:  c.Suit.Name(),
		Color: c.Color().String(),
		Code:  c.Code(),
		Image: c.Image(),
	})
}

// UnmarshalJSON accepts the object form produced by MarshalJSON, keyed on code
func (c *Card) UnmarshalJSON(data []byte) error {
	var v cardJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseCode(v.Code)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
