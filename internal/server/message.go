package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

// MessageType identifies the payload carried by a Message
type MessageType string

const (
	// Client → Server
	MessageTypeCommand MessageType = "command"

	// Server → Client
	MessageTypeState MessageType = "state"
	MessageTypeEvent MessageType = "event"
	MessageTypeError MessageType = "error"
)

func (t MessageType) String() string {
	return string(t)
}

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// CommandData is a player command. Amount is used by bet and unbet.
type CommandData struct {
	Command string `json:"command"`
	Amount  int    `json:"amount,omitempty"`
}

// StateData is the player's view of the table. The dealer's hole card is
// left out until it has been revealed.
type StateData struct {
	RoundID         string       `json:"roundId"`
	Phase           game.Phase   `json:"phase"`
	Balance         int          `json:"balance"`
	Bet             int          `json:"bet"`
	StartingBalance int          `json:"startingBalance"`
	Outcome         game.Outcome `json:"outcome"`
	PlayerHand      []deck.Card  `json:"playerHand"`
	PlayerTotal     TotalData    `json:"playerTotal"`
	DealerHand      []deck.Card  `json:"dealerHand"`
	DealerTotal     TotalData    `json:"dealerTotal"`
	DealerHidden    int          `json:"dealerHidden"` // face-down cards not included in DealerHand
	DealerRevealed  bool         `json:"dealerRevealed"`
	CardsDealt      bool         `json:"cardsDealt"`
	CardsUsed       int          `json:"cardsUsed"`
	GameOver        bool         `json:"gameOver"`
	Actions         []string     `json:"actions"`
}

// TotalData is a hand total as shown to the player
type TotalData struct {
	Optimal int    `json:"optimal"`
	Display string `json:"display"`
}

// EventData is a formatted engine event
type EventData struct {
	Event   game.EventType `json:"event"`
	Message string         `json:"message"`
}

// ErrorData reports a rejected or malformed request
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// StateDataFromGame projects a game snapshot into the player's view
func StateDataFromGame(s game.State, startingBalance int) StateData {
	visible := s.VisibleDealerHand()
	playerTotal := s.PlayerTotal()
	dealerTotal := s.VisibleDealerTotal()

	return StateData{
		RoundID:         s.RoundID,
		Phase:           s.Phase,
		Balance:         s.Balance,
		Bet:             s.Bet,
		StartingBalance: startingBalance,
		Outcome:         s.Outcome,
		PlayerHand:      nonNil(s.PlayerHand),
		PlayerTotal:     TotalData{Optimal: playerTotal.Optimal, Display: playerTotal.Display},
		DealerHand:      nonNil(visible),
		DealerTotal:     TotalData{Optimal: dealerTotal.Optimal, Display: dealerTotal.Display},
		DealerHidden:    len(s.DealerHand) - len(visible),
		DealerRevealed:  s.DealerRevealed,
		CardsDealt:      s.CardsDealt,
		CardsUsed:       s.CardsUsed,
		GameOver:        s.GameOver,
		Actions:         availableActions(s),
	}
}

func availableActions(s game.State) []string {
	actions := []string{}
	if s.CanBet() {
		actions = append(actions, "bet")
		if s.Bet > 0 {
			actions = append(actions, "unbet")
		}
	}
	if s.CanDeal() {
		actions = append(actions, "deal")
	}
	if s.CanAct() {
		actions = append(actions, "hit", "stand")
	}
	if s.CanStartNewHand() {
		actions = append(actions, "new_hand")
	}
	if s.Phase != game.PhaseDealerTurn {
		actions = append(actions, "reset")
	}
	return actions
}

func nonNil(cards []deck.Card) []deck.Card {
	if cards == nil {
		return []deck.Card{}
	}
	return cards
}
