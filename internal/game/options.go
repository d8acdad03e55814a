package game

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/blackjack/internal/shoe"
)

// DefaultStartingBalance is the stake a new or reset game begins with
const DefaultStartingBalance = 2500

// Option configures a Game during creation.
type Option func(*Game)

// WithDrawer sets the card source. Use shoe.NewStacked to script a round.
func WithDrawer(d shoe.Drawer) Option {
	return func(g *Game) {
		g.drawer = d
	}
}

// WithSeed uses a shoe seeded for reproducible sessions
func WithSeed(seed int64) Option {
	return func(g *Game) {
		g.drawer = shoe.New(shoe.NewRand(seed))
	}
}

// WithLogger sets the logger; the game logs under the "game" prefix
func WithLogger(logger *log.Logger) Option {
	return func(g *Game) {
		g.logger = logger.WithPrefix("game")
	}
}

// WithEventBus publishes game events to bus instead of a private bus
func WithEventBus(bus EventBus) Option {
	return func(g *Game) {
		g.bus = bus
	}
}

// WithClock sets the clock used for event timestamps and dealer pacing
func WithClock(clock quartz.Clock) Option {
	return func(g *Game) {
		g.clock = clock
	}
}

// WithStepDelay pauses between successive dealer draws. Zero disables pacing.
func WithStepDelay(d time.Duration) Option {
	return func(g *Game) {
		g.stepDelay = d
	}
}

// WithStartingBalance sets the stake for new and reset games
func WithStartingBalance(balance int) Option {
	return func(g *Game) {
		g.startingBalance = balance
	}
}

// WithRoundIDs overrides how round ids are generated
func WithRoundIDs(next func() string) Option {
	return func(g *Game) {
		g.nextRoundID = next
	}
}

func defaultGame() *Game {
	return &Game{
		drawer:          shoe.New(nil),
		logger:          log.NewWithOptions(io.Discard, log.Options{}),
		bus:             NewEventBus(),
		clock:           quartz.NewReal(),
		startingBalance: DefaultStartingBalance,
		nextRoundID:     uuid.NewString,
	}
}
