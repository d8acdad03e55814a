package bot

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/shoe"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// playerTurn builds a PlayerTurn state with the dealer's hole card hidden
func playerTurn(player, dealer string) game.State {
	return game.State{
		Phase:      game.PhasePlayerTurn,
		PlayerHand: deck.MustParseCodes(player),
		DealerHand: deck.MustParseCodes(dealer),
		Balance:    1000,
		Bet:        100,
		CardsDealt: true,
	}
}

func TestStrategyDecisions(t *testing.T) {
	logger := quietLogger()
	dealerBot := NewDealerBot(10, logger)
	cautious := NewCautiousBot(10, logger)
	basic := NewBasicBot(10, logger)

	tests := []struct {
		name     string
		strategy Strategy
		player   string
		dealer   string
		want     Action
	}{
		{"dealer hits 16", dealerBot, "0S 6H", "9D 7C", Hit},
		{"dealer stands hard 17", dealerBot, "0S 7H", "9D 7C", Stand},
		{"dealer hits soft 17", dealerBot, "AS 6H", "9D 7C", Hit},
		{"cautious hits 11", cautious, "5S 6H", "9D 7C", Hit},
		{"cautious stands 12", cautious, "0S 2H", "9D 7C", Stand},
		{"cautious stands soft 13", cautious, "AS 2H", "9D 7C", Stand},
		{"basic stands 13 against 6", basic, "0S 3H", "6D KC", Stand},
		{"basic hits 16 against 10", basic, "0S 6H", "KD 7C", Hit},
		{"basic stands 12 against 5", basic, "0S 2H", "5D KC", Stand},
		{"basic hits 12 against 3", basic, "0S 2H", "3D KC", Hit},
		{"basic stands hard 17", basic, "0S 7H", "AD KC", Stand},
		{"basic hits soft 17", basic, "AS 6H", "7D KC", Hit},
		{"basic stands soft 18 against 7", basic, "AS 7H", "7D KC", Stand},
		{"basic hits soft 18 against 9", basic, "AS 7H", "9D KC", Hit},
		{"basic hits soft 18 against ace", basic, "AS 7H", "AD KC", Hit},
		{"basic stands soft 19", basic, "AS 8H", "AD KC", Stand},
		{"basic treats forced-low ace as hard", basic, "AS 6H 0D", "KD 2C", Stand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := tt.strategy.Decide(playerTurn(tt.player, tt.dealer))
			assert.Equal(t, tt.want, decision.Action, decision.Reasoning)
			assert.NotEmpty(t, decision.Reasoning)
		})
	}
}

func TestBasicBotOnlySeesUpCard(t *testing.T) {
	basic := NewBasicBot(10, quietLogger())
	// the hole card is a 10 but only the 6 is visible
	hidden := basic.Decide(playerTurn("0S 4H", "6D KC"))
	assert.Equal(t, Stand, hidden.Action)
	assert.Equal(t, 6, upCardValue(playerTurn("0S 4H", "6D KC")))
	assert.Equal(t, 11, upCardValue(playerTurn("0S 4H", "AD KC")))
	assert.Equal(t, 10, upCardValue(game.State{}))
}

func TestFlatBet(t *testing.T) {
	b := NewCautiousBot(100, quietLogger())
	assert.Equal(t, 100, b.Bet(game.State{Balance: 2500}))
	assert.Equal(t, 40, b.Bet(game.State{Balance: 40}))
	assert.Equal(t, 0, b.Bet(game.State{Balance: 0}))
}

func TestRandBotIsReproducible(t *testing.T) {
	a := NewRandBot(10, shoe.NewRand(3), quietLogger())
	b := NewRandBot(10, shoe.NewRand(3), quietLogger())
	state := playerTurn("0S 6H", "9D 7C")

	hits := 0
	for i := 0; i < 200; i++ {
		da, db := a.Decide(state), b.Decide(state)
		require.Equal(t, da, db)
		if da.Action == Hit {
			hits++
		}
	}
	assert.Greater(t, hits, 50)
	assert.Less(t, hits, 150)
}

func TestByName(t *testing.T) {
	assert.Equal(t, []string{"basic", "cautious", "dealer", "random"}, Names())

	for _, name := range Names() {
		s, err := ByName(name, 25, shoe.NewRand(1), quietLogger())
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Name())
		assert.Equal(t, 25, s.Bet(game.State{Balance: 100}))
	}

	_, err := ByName("counter", 25, nil, quietLogger())
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = ByName("dealer", 0, nil, quietLogger())
	assert.ErrorContains(t, err, "bet unit must be positive")
}

func TestPlayRound(t *testing.T) {
	t.Run("hits until the strategy stands", func(t *testing.T) {
		g := game.New(
			game.WithLogger(quietLogger()),
			game.WithDrawer(shoe.NewStacked(deck.MustParseCodes("2S 3H 0D 7C 4D 5C 6S")...)),
		)
		// 5 -> 9 -> 14 -> 20, dealer holds 17
		state, err := PlayRound(g, NewDealerBot(100, quietLogger()))
		require.NoError(t, err)
		assert.Equal(t, game.PhaseRoundOver, state.Phase)
		assert.Len(t, state.PlayerHand, 5)
		assert.Equal(t, game.OutcomePlayerWins, state.Outcome)
		assert.Equal(t, 2700, state.Balance)
	})

	t.Run("stands when the shoe runs dry", func(t *testing.T) {
		g := game.New(
			game.WithLogger(quietLogger()),
			game.WithDrawer(shoe.NewStacked(deck.MustParseCodes("2S 3H 0D 7C")...)),
		)
		state, err := PlayRound(g, NewDealerBot(100, quietLogger()))
		require.NoError(t, err)
		assert.Equal(t, game.OutcomeDealerWins, state.Outcome)
		assert.Len(t, state.PlayerHand, 2)
	})

	t.Run("refuses to play without chips", func(t *testing.T) {
		g := game.New(game.WithLogger(quietLogger()), game.WithStartingBalance(10))
		_, err := PlayRound(g, &CautiousBot{base: base{unit: 0}})
		assert.ErrorContains(t, err, "no chips to bet")
	})

	t.Run("propagates rejected commands", func(t *testing.T) {
		g := game.New(
			game.WithLogger(quietLogger()),
			game.WithDrawer(shoe.NewStacked(deck.MustParseCodes("AS KH 9D 7C")...)),
		)
		_, err := PlayRound(g, NewCautiousBot(10, quietLogger()))
		require.NoError(t, err)

		_, err = PlayRound(g, NewCautiousBot(10, quietLogger()))
		assert.ErrorIs(t, err, game.ErrInvalidCommand, "round over, NewHand not called")
	})
}
