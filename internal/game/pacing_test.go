package game

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/shoe"
)

// player 18, dealer 12 draws 2, 2 then 5 to reach 21
const pacedRound = "0S 8H 0D 2C 2H 2S 5D"

func TestDealerPacing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const delay = 500 * time.Millisecond
	mockClock := quartz.NewMock(t)
	g := stackedGame(t, pacedRound,
		WithClock(mockClock),
		WithStepDelay(delay),
		WithRoundIDs(func() string { return "paced" }))

	require.NoError(t, g.PlaceBet(100))
	require.NoError(t, g.Deal())

	done := make(chan error, 1)
	go func() { done <- g.Stand() }()

	// State blocks while the dealer holds the lock and returns once the first
	// pause releases it.
	var s State
	for {
		s = g.State()
		if s.Phase == PhaseDealerTurn {
			break
		}
		time.Sleep(time.Millisecond)
	}
	assert.True(t, s.DealerRevealed)
	assert.Len(t, s.DealerHand, 3)

	for _, err := range []error{g.Hit(), g.Stand(), g.PlaceBet(10), g.RemoveBet(10), g.Deal(), g.NewHand(), g.ResetGame()} {
		assert.ErrorIs(t, err, ErrDealerTurnInProgress)
		assert.ErrorIs(t, err, ErrInvalidCommand)
	}

	steps := 0
	for {
		select {
		case err := <-done:
			require.NoError(t, err)
			paced := g.State()
			assert.Equal(t, PhaseRoundOver, paced.Phase)
			assert.Equal(t, OutcomeDealerWins, paced.Outcome)
			assert.Len(t, paced.DealerHand, 5)
			assert.GreaterOrEqual(t, steps, 2, "two pauses between three draws")

			instant := stackedGame(t, pacedRound, WithRoundIDs(func() string { return "paced" }))
			require.NoError(t, instant.PlaceBet(100))
			require.NoError(t, instant.Deal())
			require.NoError(t, instant.Stand())
			assert.Equal(t, instant.State(), paced)
			return
		case <-ctx.Done():
			t.Fatal("dealer turn did not finish")
		default:
		}

		mockClock.Advance(delay).MustWait(ctx)
		steps++
		time.Sleep(time.Millisecond)
	}
}

func TestNoPacingWithoutDelay(t *testing.T) {
	mockClock := quartz.NewMock(t)
	g := New(
		WithLogger(quietLogger()),
		WithClock(mockClock),
		WithDrawer(shoe.NewStacked(deck.MustParseCodes(pacedRound)...)),
	)

	require.NoError(t, g.PlaceBet(100))
	require.NoError(t, g.Deal())
	require.NoError(t, g.Stand(), "stand completes without the clock advancing")
	assert.Equal(t, PhaseRoundOver, g.State().Phase)
}
