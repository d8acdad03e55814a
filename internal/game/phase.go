package game

import "fmt"

// Phase is the stage of the round state machine
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhasePlayerTurn
	PhaseDealerTurn
	PhaseRoundOver
	PhaseGameOver
)

var phaseNames = [...]string{
	PhaseBetting:    "betting",
	PhaseDealing:    "dealing",
	PhasePlayerTurn: "player_turn",
	PhaseDealerTurn: "dealer_turn",
	PhaseRoundOver:  "round_over",
	PhaseGameOver:   "game_over",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return "unknown"
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Outcome is the result of a round
type Outcome int

const (
	OutcomeUnresolved Outcome = iota
	OutcomePlayerWins
	OutcomeDealerWins
	OutcomeTie
)

var outcomeNames = [...]string{
	OutcomeUnresolved: "unresolved",
	OutcomePlayerWins: "playerWins",
	OutcomeDealerWins: "dealerWins",
	OutcomeTie:        "tie",
}

func (o Outcome) String() string {
	if o < 0 || int(o) >= len(outcomeNames) {
		return "unknown"
	}
	return outcomeNames[o]
}

// MarshalText implements encoding.TextMarshaler
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (o *Outcome) UnmarshalText(text []byte) error {
	for i, name := range outcomeNames {
		if name == string(text) {
			*o = Outcome(i)
			return nil
		}
	}
	return fmt.Errorf("unknown outcome %q", text)
}

// Role identifies whose hand a card belongs to
type Role string

const (
	RolePlayer Role = "player"
	RoleDealer Role = "dealer"
)

// Command names a state machine command
type Command string

const (
	CommandPlaceBet  Command = "place_bet"
	CommandRemoveBet Command = "remove_bet"
	CommandDeal      Command = "deal"
	CommandHit       Command = "hit"
	CommandStand     Command = "stand"
	CommandNewHand   Command = "new_hand"
	CommandResetGame Command = "reset_game"
)
