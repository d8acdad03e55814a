package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
)

// State is a read-only snapshot of the round. Hands are copies, so holding a
// State never aliases the engine's own data.
type State struct {
	RoundID        string      `json:"round_id"`
	Phase          Phase       `json:"phase"`
	PlayerHand     []deck.Card `json:"player_hand"`
	DealerHand     []deck.Card `json:"dealer_hand"`
	Balance        int         `json:"balance"`
	Bet            int         `json:"bet"`
	Outcome        Outcome     `json:"outcome"`
	DealerRevealed bool        `json:"dealer_revealed"`
	CardsDealt     bool        `json:"cards_dealt"`
	GameOver       bool        `json:"game_over"`
	CardsUsed      int         `json:"cards_used"`
}

// PlayerTotal evaluates the player's hand
func (s State) PlayerTotal() evaluator.Total {
	return evaluator.Evaluate(s.PlayerHand)
}

// DealerTotal evaluates the dealer's full hand, including the hole card
func (s State) DealerTotal() evaluator.Total {
	return evaluator.Evaluate(s.DealerHand)
}

// VisibleDealerHand returns the dealer cards the player is allowed to see.
// Until the dealer reveals, the second card is the face-down hole card.
func (s State) VisibleDealerHand() []deck.Card {
	if s.DealerRevealed || len(s.DealerHand) < 2 {
		return s.DealerHand
	}
	visible := make([]deck.Card, 0, len(s.DealerHand)-1)
	visible = append(visible, s.DealerHand[0])
	return append(visible, s.DealerHand[2:]...)
}

// VisibleDealerTotal evaluates only the face-up dealer cards
func (s State) VisibleDealerTotal() evaluator.Total {
	return evaluator.Evaluate(s.VisibleDealerHand())
}

// Available is the part of the balance not yet committed to the bet
func (s State) Available() int {
	return s.Balance - s.Bet
}

// CanBet reports whether chips may be placed or removed
func (s State) CanBet() bool {
	return s.Phase == PhaseBetting
}

// CanDeal reports whether Deal would be accepted
func (s State) CanDeal() bool {
	return s.Phase == PhaseBetting && s.Bet > 0
}

// CanAct reports whether Hit and Stand would be accepted
func (s State) CanAct() bool {
	return s.Phase == PhasePlayerTurn
}

// CanStartNewHand reports whether NewHand would be accepted
func (s State) CanStartNewHand() bool {
	return s.Phase == PhaseRoundOver && s.Balance > 0
}
