package tui

import (
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/shoe"
)

func init() {
	DisableColor()
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel}) // Quiet logger for tests
}

func newTestTUI(t *testing.T, codes string, opts ...game.Option) *TUIModel {
	t.Helper()
	logger := quietLogger()
	opts = append([]game.Option{
		game.WithLogger(logger),
		game.WithDrawer(shoe.NewStacked(deck.MustParseCodes(codes)...)),
	}, opts...)
	return NewTUIModel(game.New(opts...), logger, Options{TestMode: true})
}

// submit types a line into the input and presses enter. A returned stand
// command is run to completion and its result fed back in.
func submit(t *testing.T, m *TUIModel, input string) {
	t.Helper()
	m.actionInput.SetValue(input)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		return
	}
	if msg, ok := cmd().(standDoneMsg); ok {
		m.Update(msg)
	}
}

func logText(m *TUIModel) string {
	return strings.Join(m.GetCapturedLog(), "\n")
}

func TestTUITestMode(t *testing.T) {
	logger := quietLogger()

	t.Run("test mode captures log entries", func(t *testing.T) {
		m := NewTUIModel(game.New(game.WithLogger(logger)), logger, Options{TestMode: true})

		assert.True(t, m.IsTestMode())
		captured := m.GetCapturedLog()
		require.Len(t, captured, 1)
		assert.Contains(t, captured[0], "You have $2500")

		m.AddLogEntry("first")
		m.AddLogEntry("second")
		captured = m.GetCapturedLog()
		require.Len(t, captured, 3)
		assert.Equal(t, "first", captured[1])
		assert.Equal(t, "second", captured[2])
	})

	t.Run("production mode does not capture logs", func(t *testing.T) {
		m := NewTUIModel(game.New(game.WithLogger(logger)), logger, Options{})

		assert.False(t, m.IsTestMode())
		m.AddLogEntry("Some log entry")
		assert.Nil(t, m.GetCapturedLog())
	})
}

func TestPlayRound(t *testing.T) {
	m := newTestTUI(t, "0S 6H 9D 7C 2H")

	submit(t, m, "bet 100")
	assert.Equal(t, 100, m.State().Bet)

	submit(t, m, "deal")
	s := m.State()
	require.Equal(t, game.PhasePlayerTurn, s.Phase)
	assert.Contains(t, logText(m), "*** NEW ROUND *** bet $100")
	assert.Contains(t, logText(m), "Dealer: dealt a face-down card")
	assert.NotContains(t, logText(m), "7♣", "hole card stays hidden")

	submit(t, m, "h")
	assert.Equal(t, 18, m.State().PlayerTotal().Optimal)

	submit(t, m, "stand")
	s = m.State()
	assert.Equal(t, game.PhaseRoundOver, s.Phase)
	assert.Equal(t, game.OutcomePlayerWins, s.Outcome)
	assert.Equal(t, 2700, s.Balance)
	assert.False(t, m.dealerBusy)
	assert.Contains(t, logText(m), "Dealer: reveals")
	assert.Contains(t, logText(m), "*** RESULT *** You win $200")

	stats := m.stats.Snapshot()
	assert.Equal(t, 1, stats.Rounds)
	assert.Equal(t, 1, stats.Wins)

	// enter on its own starts the next hand
	submit(t, m, "")
	assert.Equal(t, game.PhaseBetting, m.State().Phase)
	assert.Zero(t, m.State().Bet)
}

func TestCommands(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		wantBet   int
		wantPhase game.Phase
		wantError string
	}{
		{"chip", []string{"chip 25", "c 50"}, 75, game.PhaseBetting, ""},
		{"chip not configured", []string{"chip 30"}, 0, game.PhaseBetting, "no $30 chip"},
		{"unbet", []string{"bet 100", "unbet 40"}, 60, game.PhaseBetting, ""},
		{"dollar amount", []string{"b $200"}, 200, game.PhaseBetting, ""},
		{"bet over balance", []string{"bet 5000"}, 0, game.PhaseBetting, "exceeds"},
		{"missing amount", []string{"bet"}, 0, game.PhaseBetting, "usage: bet <amount>"},
		{"bad amount", []string{"bet lots"}, 0, game.PhaseBetting, `invalid amount "lots"`},
		{"deal without bet", []string{"deal"}, 0, game.PhaseBetting, ""},
		{"hit while betting", []string{"hit"}, 0, game.PhaseBetting, "only allowed during player_turn"},
		{"stand while betting", []string{"stand"}, 0, game.PhaseBetting, "only allowed during player_turn"},
		{"unknown", []string{"double"}, 0, game.PhaseBetting, `unknown command "double"`},
		{"new during betting", []string{"new"}, 0, game.PhaseBetting, "only allowed during round_over"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestTUI(t, "0S 6H 9D 7C 2H")
			for _, input := range tt.inputs {
				submit(t, m, input)
			}
			assert.Equal(t, tt.wantBet, m.State().Bet)
			assert.Equal(t, tt.wantPhase, m.State().Phase)
			if tt.wantError != "" {
				assert.Contains(t, m.lastError, tt.wantError)
				assert.Contains(t, logText(m), tt.wantError)
			}
		})
	}
}

func TestRejectedCommandLeavesErrorInActionPane(t *testing.T) {
	m := newTestTUI(t, "0S 6H 9D 7C 2H")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	submit(t, m, "hit")
	require.NotEmpty(t, m.lastError)
	assert.Contains(t, m.View(), m.lastError)

	// the next accepted command clears it
	submit(t, m, "bet 100")
	assert.Empty(t, m.lastError)
	assert.Contains(t, m.View(), "[deal]")
}

func TestHint(t *testing.T) {
	m := newTestTUI(t, "0S 6H 9D 7C 2H")

	submit(t, m, "hint")
	assert.Contains(t, m.lastError, "only available on your turn")

	submit(t, m, "bet 100")
	submit(t, m, "deal")
	submit(t, m, "hint")
	assert.Contains(t, logText(m), "Hint: hit", "16 against a 9 hits")
	assert.Equal(t, game.PhasePlayerTurn, m.State().Phase, "hints do not act")
}

func TestGameOverAndReset(t *testing.T) {
	m := newTestTUI(t, "0S 6H 0D 9C KD", game.WithStartingBalance(100))
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	submit(t, m, "bet 100")
	submit(t, m, "deal")
	submit(t, m, "hit")

	s := m.State()
	require.True(t, s.GameOver)
	assert.Zero(t, s.Balance)
	assert.Contains(t, logText(m), "GAME OVER")
	assert.Contains(t, m.View(), "GAME OVER")

	submit(t, m, "new")
	assert.NotEmpty(t, m.lastError)

	submit(t, m, "reset")
	s = m.State()
	assert.Equal(t, game.PhaseBetting, s.Phase)
	assert.Equal(t, 100, s.Balance)
	assert.False(t, s.GameOver)
	assert.Contains(t, logText(m), "Game reset, balance restored to $100")
}

func TestView(t *testing.T) {
	m := newTestTUI(t, "0S 6H 9D 7C 2H")
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	view := m.View()
	assert.Contains(t, view, "Balance: $2500")
	assert.Contains(t, view, "Phase: place your bet")
	assert.Contains(t, view, "[bet N]")
	assert.NotContains(t, view, "[deal]")

	submit(t, m, "bet 100")
	submit(t, m, "deal")
	view = m.View()
	assert.Contains(t, view, "[9♦ ??]")
	assert.Contains(t, view, "[10♠ 6♥]")
	assert.Contains(t, view, "[hit]")
	assert.NotContains(t, view, "7♣")

	submit(t, m, "stand")
	view = m.View()
	assert.Contains(t, view, "[9♦ 7♣]")
	assert.Contains(t, view, "W/L/T: 1/0/0")
	assert.Contains(t, view, "[new]")
}

func TestDealerBusyRendering(t *testing.T) {
	m := newTestTUI(t, "0S 6H 9D 7C 2H")
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	submit(t, m, "bet 100")
	submit(t, m, "deal")

	m.actionInput.SetValue("stand")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.True(t, m.dealerBusy)
	assert.Contains(t, m.View(), "dealer is drawing")

	m.Update(cmd())
	assert.False(t, m.dealerBusy)
	assert.Equal(t, game.PhaseRoundOver, m.State().Phase)
}

func TestFocusAndQuit(t *testing.T) {
	m := newTestTUI(t, "0S 6H 9D 7C 2H")

	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 0, m.focusedPane)
	m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, 1, m.focusedPane)

	m.actionInput.SetValue("quit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Empty(t, m.View())
}
