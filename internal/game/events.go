package game

import (
	"sync"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events
const (
	EventTypeBetChange      EventType = "bet_change"
	EventTypeRoundStart     EventType = "round_start"
	EventTypeCardDealt      EventType = "card_dealt"
	EventTypeDealerDecision EventType = "dealer_decision"
	EventTypeRoundEnd       EventType = "round_end"
	EventTypeGameReset      EventType = "game_reset"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a round
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// BetChangeEvent is published when chips are added to or taken off the bet
type BetChangeEvent struct {
	RoundID   string
	Delta     int
	Bet       int
	Balance   int
	timestamp time.Time
}

func (e BetChangeEvent) EventType() EventType { return EventTypeBetChange }
func (e BetChangeEvent) Timestamp() time.Time { return e.timestamp }

// RoundStartEvent is published as dealing begins
type RoundStartEvent struct {
	RoundID   string
	Bet       int
	Balance   int
	timestamp time.Time
}

func (e RoundStartEvent) EventType() EventType { return EventTypeRoundStart }
func (e RoundStartEvent) Timestamp() time.Time { return e.timestamp }

// CardDealtEvent is published for every card that leaves the shoe
type CardDealtEvent struct {
	RoundID   string
	Role      Role
	Card      deck.Card
	Hidden    bool            // the dealer's hole card
	Total     evaluator.Total // hand total including this card
	Remaining int             // undealt cards left in the shoe
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// DealerAction is a step of the dealer's turn
type DealerAction string

const (
	DealerReveals DealerAction = "reveal"
	DealerHits    DealerAction = "hit"
	DealerStands  DealerAction = "stand"
	DealerBusts   DealerAction = "bust"
)

// DealerDecisionEvent is published as the dealer plays out the hand
type DealerDecisionEvent struct {
	RoundID   string
	Action    DealerAction
	Hand      []deck.Card
	Total     evaluator.Total
	timestamp time.Time
}

func (e DealerDecisionEvent) EventType() EventType { return EventTypeDealerDecision }
func (e DealerDecisionEvent) Timestamp() time.Time { return e.timestamp }

// RoundEndEvent is published when the round is settled
type RoundEndEvent struct {
	RoundID     string
	Outcome     Outcome
	Reason      string
	PlayerHand  []deck.Card
	DealerHand  []deck.Card
	PlayerTotal evaluator.Total
	DealerTotal evaluator.Total
	Bet         int
	Payout      int
	Balance     int
	GameOver    bool
	timestamp   time.Time
}

func (e RoundEndEvent) EventType() EventType { return EventTypeRoundEnd }
func (e RoundEndEvent) Timestamp() time.Time { return e.timestamp }

// GameResetEvent is published when the balance is restored to the starting stake
type GameResetEvent struct {
	Balance   int
	timestamp time.Time
}

func (e GameResetEvent) EventType() EventType { return EventTypeGameReset }
func (e GameResetEvent) Timestamp() time.Time { return e.timestamp }

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// SubscriberFunc adapts a plain function to EventSubscriber
type SubscriberFunc func(event GameEvent)

// OnEvent calls f(event)
func (f SubscriberFunc) OnEvent(event GameEvent) { f(event) }

// EventBus manages event publishing and subscription
type EventBus interface {
	// Subscribe registers a subscriber and returns a function that removes it
	Subscribe(subscriber EventSubscriber) (unsubscribe func())
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus. Delivery is synchronous and
// in subscription order.
type SimpleEventBus struct {
	mu          sync.RWMutex
	nextID      int
	subscribers []subscription
}

type subscription struct {
	id         int
	subscriber EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() *SimpleEventBus {
	return &SimpleEventBus{}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) func() {
	bus.mu.Lock()
	defer bus.mu.Unlock()

	bus.nextID++
	id := bus.nextID
	bus.subscribers = append(bus.subscribers, subscription{id: id, subscriber: subscriber})

	return func() {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		for i, sub := range bus.subscribers {
			if sub.id == id {
				bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
				break
			}
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subs := make([]subscription, len(bus.subscribers))
	copy(subs, bus.subscribers)
	bus.mu.RUnlock()

	for _, sub := range subs {
		sub.subscriber.OnEvent(event)
	}
}
