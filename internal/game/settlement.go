package game

import (
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
)

// Settle compares two final hands and decides the round
func Settle(player, dealer []deck.Card) Outcome {
	return SettleTotals(evaluator.Evaluate(player).Optimal, evaluator.Evaluate(dealer).Optimal)
}

// SettleTotals decides the round from optimal totals. Rules are checked in
// order and the first match wins, so a player bust loses even when the dealer
// also busts.
func SettleTotals(player, dealer int) Outcome {
	const bj = evaluator.Blackjack

	switch {
	case player > bj:
		return OutcomeDealerWins
	case dealer > bj:
		return OutcomePlayerWins
	case player == bj && dealer == bj:
		return OutcomeTie
	case player == bj:
		return OutcomePlayerWins
	case dealer == bj:
		return OutcomeDealerWins
	case player > dealer:
		return OutcomePlayerWins
	case dealer > player:
		return OutcomeDealerWins
	default:
		return OutcomeTie
	}
}

// Payout returns the balance change for an outcome. Bets are never debited
// when placed, so a win credits the stake plus equal winnings and a loss
// debits the stake.
func Payout(outcome Outcome, bet int) int {
	switch outcome {
	case OutcomePlayerWins:
		return bet * 2
	case OutcomeDealerWins:
		return -bet
	default:
		return 0
	}
}
