package deck

import (
	"fmt"
	"strings"
)

// Suit represents a card suit
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists every suit in deck order
var Suits = [...]Suit{Clubs, Diamonds, Hearts, Spades}

// String returns the suit symbol
func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the lower-case suit name ("clubs", "hearts", ...)
func (s Suit) Name() string {
	switch s {
	case Clubs:
		return "clubs"
	case Diamonds:
		return "diamonds"
	case Hearts:
		return "hearts"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// letter is the upper-case initial used in card codes
func (s Suit) letter() byte {
	return strings.ToUpper(s.Name())[0]
}

// Color returns the color of the suit
func (s Suit) Color() Color {
	if s == Diamonds || s == Hearts {
		return Red
	}
	return Black
}

// Color is the printed color of a card
type Color int

const (
	Black Color = iota
	Red
)

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}

// Rank represents a card rank
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// Ranks lists every rank in deck order
var Ranks = [...]Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the rank label as printed on the card
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r >= Two && r <= Ten {
		return fmt.Sprintf("%d", int(r))
	}
	return "?"
}

// codeLetter is the single character used for the rank in a card code.
// Ten is written as "0" so every code is two characters long.
func (r Rank) codeLetter() byte {
	if r == Ten {
		return '0'
	}
	return r.String()[0]
}

// Value returns the blackjack pip value with aces counted as 1
func (r Rank) Value() int {
	if r >= Ten {
		return 10
	}
	return int(r)
}

// Card represents a playing card
type Card struct {
	Rank Rank
	Suit Suit
}

// NewCard creates a new card
func NewCard(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String returns the string representation of a card (e.g., "A♠")
func (c Card) String() string {
	return c.Rank.String() + c.Suit.String()
}

// Code returns the two character identity of the card, e.g. "AS", "0D", "KH"
func (c Card) Code() string {
	return string([]byte{c.Rank.codeLetter(), c.Suit.letter()})
}

// Color returns the card color
func (c Card) Color() Color {
	return c.Suit.Color()
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Color() == Red
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// IsFaceCard returns true if the card is a face card (J, Q, K)
func (c Card) IsFaceCard() bool {
	return c.Rank >= Jack && c.Rank <= King
}

// Value returns the blackjack pip value of the card (aces as 1)
func (c Card) Value() int {
	return c.Rank.Value()
}

// ImageBaseURL is where card faces are served from
const ImageBaseURL = "https://deckofcardsapi.com/static/img/"

// Image returns the opaque image reference for the card face
func (c Card) Image() string {
	return ImageBaseURL + c.Code() + ".png"
}

// IsValid reports whether the card has a known rank and suit
func (c Card) IsValid() bool {
	return c.Rank >= Ace && c.Rank <= King && c.Suit >= Clubs && c.Suit <= Spades
}
