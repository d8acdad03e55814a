package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// FormattingOptions controls how events are formatted for different contexts
type FormattingOptions struct {
	RevealHoleCard bool // print the dealer's hole card when it is dealt
	ShowRoundIDs   bool // prefix round boundaries with the round id
}

// EventFormatter provides centralized formatting for all game events
type EventFormatter struct {
	opts FormattingOptions
}

// NewEventFormatter creates a new event formatter with the given options
func NewEventFormatter(opts FormattingOptions) *EventFormatter {
	return &EventFormatter{opts: opts}
}

// Format renders any game event as a single log line. Unknown events render
// as an empty string.
func (ef *EventFormatter) Format(event GameEvent) string {
	switch e := event.(type) {
	case BetChangeEvent:
		return ef.FormatBetChange(e)
	case RoundStartEvent:
		return ef.FormatRoundStart(e)
	case CardDealtEvent:
		return ef.FormatCardDealt(e)
	case DealerDecisionEvent:
		return ef.FormatDealerDecision(e)
	case RoundEndEvent:
		return ef.FormatRoundEnd(e)
	case GameResetEvent:
		return fmt.Sprintf("Game reset, balance restored to $%d", e.Balance)
	default:
		return ""
	}
}

// FormatBetChange formats chips being added to or removed from the bet
func (ef *EventFormatter) FormatBetChange(e BetChangeEvent) string {
	if e.Delta >= 0 {
		return fmt.Sprintf("You: bet $%d (total bet $%d, balance $%d)", e.Delta, e.Bet, e.Balance)
	}
	return fmt.Sprintf("You: take back $%d (total bet $%d, balance $%d)", -e.Delta, e.Bet, e.Balance)
}

// FormatRoundStart formats the start of a round
func (ef *EventFormatter) FormatRoundStart(e RoundStartEvent) string {
	if ef.opts.ShowRoundIDs && e.RoundID != "" {
		return fmt.Sprintf("*** ROUND %s *** bet $%d", shortID(e.RoundID), e.Bet)
	}
	return fmt.Sprintf("*** NEW ROUND *** bet $%d", e.Bet)
}

// FormatCardDealt formats a card leaving the shoe
func (ef *EventFormatter) FormatCardDealt(e CardDealtEvent) string {
	who := "You"
	if e.Role == RoleDealer {
		who = "Dealer"
	}
	if e.Hidden && !ef.opts.RevealHoleCard {
		return fmt.Sprintf("%s: dealt a face-down card", who)
	}
	return fmt.Sprintf("%s: dealt %s (%s)", who, e.Card, e.Total.Display)
}

// FormatDealerDecision formats a step of the dealer's turn
func (ef *EventFormatter) FormatDealerDecision(e DealerDecisionEvent) string {
	switch e.Action {
	case DealerReveals:
		return fmt.Sprintf("Dealer: reveals %s (%s)", FormatCards(e.Hand), e.Total.Display)
	case DealerHits:
		return fmt.Sprintf("Dealer: hits on %d", e.Total.Optimal)
	case DealerStands:
		return fmt.Sprintf("Dealer: stands on %d", e.Total.Optimal)
	case DealerBusts:
		return fmt.Sprintf("Dealer: busts with %d", e.Total.Optimal)
	default:
		return fmt.Sprintf("Dealer: %s", e.Action)
	}
}

// FormatRoundEnd formats the settlement of a round
func (ef *EventFormatter) FormatRoundEnd(e RoundEndEvent) string {
	var b strings.Builder
	b.WriteString("*** RESULT *** ")
	switch e.Outcome {
	case OutcomePlayerWins:
		fmt.Fprintf(&b, "You win $%d", e.Payout)
	case OutcomeDealerWins:
		fmt.Fprintf(&b, "Dealer wins, you lose $%d", -e.Payout)
	case OutcomeTie:
		b.WriteString("Push, bet returned")
	default:
		b.WriteString(e.Outcome.String())
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, " (%s)", e.Reason)
	}
	fmt.Fprintf(&b, ", you %d vs dealer %d, balance $%d", e.PlayerTotal.Optimal, e.DealerTotal.Optimal, e.Balance)
	if e.GameOver {
		b.WriteString(". GAME OVER")
	}
	return b.String()
}

// FormatCards renders cards separated by spaces
func FormatCards(cards []deck.Card) string {
	parts := make([]string, len(cards))
	for i, c := range cards {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
