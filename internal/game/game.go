package game

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/evaluator"
	"github.com/lox/blackjack/internal/shoe"
)

// Game is a single-player blackjack table. It is safe for concurrent use:
// commands are serialized, and commands issued while the dealer is drawing are
// rejected with ErrDealerTurnInProgress.
type Game struct {
	mu sync.Mutex

	drawer          shoe.Drawer
	logger          *log.Logger
	bus             EventBus
	clock           quartz.Clock
	stepDelay       time.Duration
	startingBalance int
	nextRoundID     func() string

	roundID        string
	phase          Phase
	player         []deck.Card
	dealer         []deck.Card
	used           shoe.Used
	balance        int
	bet            int
	outcome        Outcome
	dealerRevealed bool
	cardsDealt     bool

	// events queued while the lock is held, published on unlock
	pending []GameEvent
}

// New creates a game in the betting phase holding the starting balance
func New(opts ...Option) *Game {
	g := defaultGame()
	for _, opt := range opts {
		opt(g)
	}
	if g.startingBalance <= 0 {
		g.startingBalance = DefaultStartingBalance
	}
	g.balance = g.startingBalance
	g.startRound()
	return g
}

// Events returns the bus the game publishes to
func (g *Game) Events() EventBus {
	return g.bus
}

// StartingBalance returns the stake restored by ResetGame
func (g *Game) StartingBalance() int {
	return g.startingBalance
}

// State returns a snapshot of the round
func (g *Game) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshot()
}

func (g *Game) snapshot() State {
	return State{
		RoundID:        g.roundID,
		Phase:          g.phase,
		PlayerHand:     slices.Clone(g.player),
		DealerHand:     slices.Clone(g.dealer),
		Balance:        g.balance,
		Bet:            g.bet,
		Outcome:        g.outcome,
		DealerRevealed: g.dealerRevealed,
		CardsDealt:     g.cardsDealt,
		GameOver:       g.phase == PhaseGameOver,
		CardsUsed:      g.used.Len(),
	}
}

// PlaceBet adds chips to the bet. The balance is not touched until the round
// is settled, but the bet may never exceed it.
func (g *Game) PlaceBet(amount int) error {
	g.lock()
	defer g.unlock()

	if err := g.requirePhase(CommandPlaceBet, PhaseBetting); err != nil {
		return err
	}
	if amount <= 0 {
		return reject(CommandPlaceBet, g.phase, "amount must be positive, got %d", amount)
	}
	if available := g.balance - g.bet; amount > available {
		return reject(CommandPlaceBet, g.phase, "$%d exceeds available balance $%d", amount, available)
	}

	g.bet += amount
	g.logger.Debug("Bet placed", "round", g.roundID, "amount", amount, "bet", g.bet, "balance", g.balance)
	g.emit(BetChangeEvent{RoundID: g.roundID, Delta: amount, Bet: g.bet, Balance: g.balance, timestamp: g.now()})
	return nil
}

// RemoveBet takes chips back off the bet, never going below zero
func (g *Game) RemoveBet(amount int) error {
	g.lock()
	defer g.unlock()

	if err := g.requirePhase(CommandRemoveBet, PhaseBetting); err != nil {
		return err
	}
	if amount <= 0 {
		return reject(CommandRemoveBet, g.phase, "amount must be positive, got %d", amount)
	}

	removed := min(amount, g.bet)
	if removed == 0 {
		return nil
	}
	g.bet -= removed
	g.logger.Debug("Bet removed", "round", g.roundID, "amount", removed, "bet", g.bet)
	g.emit(BetChangeEvent{RoundID: g.roundID, Delta: -removed, Bet: g.bet, Balance: g.balance, timestamp: g.now()})
	return nil
}

// Deal deals two cards to the player then two to the dealer and hands the
// action to the player. A natural 21 settles the round immediately.
func (g *Game) Deal() error {
	g.lock()
	defer g.unlock()

	if err := g.requirePhase(CommandDeal, PhaseBetting); err != nil {
		return err
	}
	if g.bet <= 0 {
		return reject(CommandDeal, g.phase, "place a bet first")
	}

	g.phase = PhaseDealing
	g.logger.Info("Dealing", "round", g.roundID, "bet", g.bet, "balance", g.balance)
	g.emit(RoundStartEvent{RoundID: g.roundID, Bet: g.bet, Balance: g.balance, timestamp: g.now()})

	for _, role := range [...]Role{RolePlayer, RolePlayer, RoleDealer, RoleDealer} {
		if err := g.dealTo(role); err != nil {
			g.logger.Warn("Shoe exhausted while dealing, round aborted", "round", g.roundID, "used", g.used.Len())
			g.clearHands()
			g.phase = PhaseBetting
			return fmt.Errorf("deal: %w", err)
		}
	}

	g.cardsDealt = true
	g.phase = PhasePlayerTurn
	g.checkPlayerHand()
	return nil
}

// Hit deals one more card to the player
func (g *Game) Hit() error {
	g.lock()
	defer g.unlock()

	if err := g.requirePhase(CommandHit, PhasePlayerTurn); err != nil {
		return err
	}
	if err := g.dealTo(RolePlayer); err != nil {
		g.logger.Warn("Shoe exhausted on hit", "round", g.roundID)
		return fmt.Errorf("hit: %w", err)
	}
	g.checkPlayerHand()
	return nil
}

// Stand ends the player's turn. The dealer reveals the hole card and draws to
// completion, then the round is settled. Stand returns once the round is over.
func (g *Game) Stand() error {
	g.lock()
	defer g.unlock()

	if err := g.requirePhase(CommandStand, PhasePlayerTurn); err != nil {
		return err
	}

	g.phase = PhaseDealerTurn
	g.dealerRevealed = true
	g.emit(DealerDecisionEvent{
		RoundID:   g.roundID,
		Action:    DealerReveals,
		Hand:      slices.Clone(g.dealer),
		Total:     evaluator.Evaluate(g.dealer),
		timestamp: g.now(),
	})

	result := PlayDealer(g.dealer, &g.used, g.drawer, DealerHooks{
		OnDraw: g.onDealerDraw,
		Pause:  g.pause,
	})
	g.dealer = result.Hand

	switch {
	case result.Exhausted:
		g.logger.Warn("Shoe exhausted during dealer turn, dealer stands", "round", g.roundID, "total", result.Total.Optimal)
	case result.Capped:
		g.logger.Warn("Dealer draw limit reached", "round", g.roundID, "draws", result.Draws)
	}

	action := DealerStands
	reason := ""
	if result.State == DealerBust {
		action = DealerBusts
		reason = "dealer busts"
	}
	g.logger.Debug("Dealer finished", "round", g.roundID, "state", result.State, "total", result.Total.Optimal, "draws", result.Draws)
	g.emit(DealerDecisionEvent{
		RoundID:   g.roundID,
		Action:    action,
		Hand:      slices.Clone(g.dealer),
		Total:     result.Total,
		timestamp: g.now(),
	})

	g.finishRound(Settle(g.player, g.dealer), reason)
	return nil
}

// NewHand clears the table for the next round, carrying the balance over
func (g *Game) NewHand() error {
	g.lock()
	defer g.unlock()

	if g.phase == PhaseGameOver {
		return reject(CommandNewHand, g.phase, "no balance left, reset the game")
	}
	if err := g.requirePhase(CommandNewHand, PhaseRoundOver); err != nil {
		return err
	}
	if g.balance <= 0 {
		return reject(CommandNewHand, g.phase, "no balance left, reset the game")
	}

	g.startRound()
	g.logger.Debug("New hand", "round", g.roundID, "balance", g.balance)
	return nil
}

// ResetGame restores the starting balance and clears everything else. It is
// the only way out of PhaseGameOver.
func (g *Game) ResetGame() error {
	g.lock()
	defer g.unlock()

	if g.phase == PhaseDealerTurn {
		return &CommandError{Command: CommandResetGame, Phase: g.phase, Reason: "dealer is still drawing", Err: ErrDealerTurnInProgress}
	}

	g.balance = g.startingBalance
	g.startRound()
	g.logger.Info("Game reset", "balance", g.balance)
	g.emit(GameResetEvent{Balance: g.balance, timestamp: g.now()})
	return nil
}

func (g *Game) lock() {
	g.mu.Lock()
}

// unlock releases the lock and then publishes queued events, so subscribers
// may safely call back into the game.
func (g *Game) unlock() {
	events := g.pending
	g.pending = nil
	g.mu.Unlock()

	for _, e := range events {
		g.bus.Publish(e)
	}
}

func (g *Game) emit(e GameEvent) {
	g.pending = append(g.pending, e)
}

func (g *Game) now() time.Time {
	return g.clock.Now()
}

func (g *Game) requirePhase(cmd Command, want Phase) error {
	if g.phase == PhaseDealerTurn {
		return &CommandError{Command: cmd, Phase: g.phase, Reason: "dealer is still drawing", Err: ErrDealerTurnInProgress}
	}
	if g.phase != want {
		return reject(cmd, g.phase, "only allowed during %s", want)
	}
	return nil
}

// pause waits one step delay between dealer draws. The lock is released while
// waiting so the state can be observed; every command is still rejected
// because the phase stays PhaseDealerTurn.
func (g *Game) pause() {
	if g.stepDelay <= 0 {
		return
	}
	g.unlock()
	timer := g.clock.NewTimer(g.stepDelay, "dealer", "step")
	<-timer.C
	g.lock()
}

func (g *Game) dealTo(role Role) error {
	card, ok := g.drawer.Draw(&g.used)
	if !ok {
		return ErrShoeExhausted
	}
	g.used.Add(card)

	var (
		total  evaluator.Total
		hidden bool
	)
	if role == RolePlayer {
		g.player = append(g.player, card)
		total = evaluator.Evaluate(g.player)
	} else {
		g.dealer = append(g.dealer, card)
		total = evaluator.Evaluate(g.dealer)
		hidden = len(g.dealer) == 2 && !g.dealerRevealed
	}

	g.logger.Debug("Card dealt", "round", g.roundID, "role", role, "card", card.Code(), "total", total.Optimal, "used", g.used.Len())
	g.emit(CardDealtEvent{
		RoundID:   g.roundID,
		Role:      role,
		Card:      card,
		Hidden:    hidden,
		Total:     total,
		Remaining: deck.Size - g.used.Len(),
		timestamp: g.now(),
	})
	return nil
}

func (g *Game) onDealerDraw(card deck.Card, total evaluator.Total) {
	g.emit(DealerDecisionEvent{
		RoundID:   g.roundID,
		Action:    DealerHits,
		Hand:      slices.Clone(g.dealer),
		Total:     evaluator.Evaluate(g.dealer),
		timestamp: g.now(),
	})
	g.dealer = append(g.dealer, card)
	g.logger.Debug("Dealer draws", "round", g.roundID, "card", card.Code(), "total", total.Optimal)
	g.emit(CardDealtEvent{
		RoundID:   g.roundID,
		Role:      RoleDealer,
		Card:      card,
		Total:     total,
		Remaining: deck.Size - g.used.Len(),
		timestamp: g.now(),
	})
}

// checkPlayerHand settles the round as soon as the player reaches 21 or busts
func (g *Game) checkPlayerHand() {
	total := evaluator.Evaluate(g.player)
	switch {
	case total.IsTwentyOne():
		reason := "21"
		if len(g.player) == 2 {
			reason = "natural 21"
		}
		g.finishRound(OutcomePlayerWins, reason)
	case total.IsBust():
		g.finishRound(OutcomeDealerWins, "player busts")
	}
}

func (g *Game) finishRound(outcome Outcome, reason string) {
	payout := Payout(outcome, g.bet)
	g.outcome = outcome
	g.balance += payout
	g.dealerRevealed = true
	g.phase = PhaseRoundOver
	if g.balance <= 0 {
		g.phase = PhaseGameOver
	}

	playerTotal := evaluator.Evaluate(g.player)
	dealerTotal := evaluator.Evaluate(g.dealer)
	g.logger.Info("Round settled",
		"round", g.roundID,
		"outcome", outcome,
		"reason", reason,
		"player", playerTotal.Optimal,
		"dealer", dealerTotal.Optimal,
		"payout", payout,
		"balance", g.balance)

	g.emit(RoundEndEvent{
		RoundID:     g.roundID,
		Outcome:     outcome,
		Reason:      reason,
		PlayerHand:  slices.Clone(g.player),
		DealerHand:  slices.Clone(g.dealer),
		PlayerTotal: playerTotal,
		DealerTotal: dealerTotal,
		Bet:         g.bet,
		Payout:      payout,
		Balance:     g.balance,
		GameOver:    g.phase == PhaseGameOver,
		timestamp:   g.now(),
	})
}

func (g *Game) clearHands() {
	g.player = nil
	g.dealer = nil
	g.used.Reset()
	g.cardsDealt = false
	g.dealerRevealed = false
}

func (g *Game) startRound() {
	g.clearHands()
	g.bet = 0
	g.outcome = OutcomeUnresolved
	g.phase = PhaseBetting
	g.roundID = g.nextRoundID()
}
