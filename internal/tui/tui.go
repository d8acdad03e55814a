// Package tui is the interactive terminal front end for a blackjack game.
package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/bot"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/statistics"
)

// Options configures the TUI model
type Options struct {
	Chips    []int // chip denominations accepted by the chip command
	TestMode bool  // capture log entries instead of rendering them
}

// TUIModel represents the Bubble Tea model for a blackjack table
type TUIModel struct {
	game      *game.Game
	stats     *statistics.Tracker
	formatter *game.EventFormatter
	advisor   bot.Strategy
	chips     []int
	logger    *log.Logger

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	state       game.State
	gameLog     []string
	events      chan game.GameEvent
	unsubscribe func()
	lastError   string
	dealerBusy  bool
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Dimensions
	width       int
	height      int
	initialized bool // Track if viewport has been properly sized

	// Test mode
	testMode    bool
	capturedLog []string
}

// eventMsg carries an engine event into the Bubble Tea loop
type eventMsg struct {
	event game.GameEvent
}

// standDoneMsg reports that the dealer has finished playing
type standDoneMsg struct {
	err error
}

// NewTUIModel creates a new TUI model driving g
func NewTUIModel(g *game.Game, logger *log.Logger, opts Options) *TUIModel {
	// Will be properly sized when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "bet 100, chip 25, deal, hit, stand, new, reset, hint, quit"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	chips := opts.Chips
	if len(chips) == 0 {
		chips = []int{25, 50, 100, 500}
	}

	logger = logger.WithPrefix("tui")
	m := &TUIModel{
		game:        g,
		stats:       statistics.NewTracker(),
		formatter:   game.NewEventFormatter(game.FormattingOptions{}),
		advisor:     bot.NewBasicBot(chips[0], logger),
		chips:       chips,
		logger:      logger,
		logViewport: vp,
		actionInput: ti,
		state:       g.State(),
		events:      make(chan game.GameEvent, 256),
		focusedPane: 1,
		testMode:    opts.TestMode,
	}

	detachStats := m.stats.Attach(g.Events())
	detachEvents := g.Events().Subscribe(game.SubscriberFunc(m.queueEvent))
	m.unsubscribe = func() {
		detachEvents()
		detachStats()
	}
	m.AddLogEntry(fmt.Sprintf("Welcome to blackjack. You have $%d. Place a bet to start.", m.state.Balance))
	return m
}

// queueEvent runs on whichever goroutine issued the command, so events are
// handed to the Bubble Tea loop through a channel
func (m *TUIModel) queueEvent(event game.GameEvent) {
	select {
	case m.events <- event:
	default:
		m.logger.Warn("Event buffer full, dropping event", "type", event.EventType())
	}
}

// waitForEvent returns a command that delivers the next engine event
func (m *TUIModel) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		return eventMsg{event: <-m.events}
	}
}

// drainEvents logs every queued event without waiting
func (m *TUIModel) drainEvents() {
	for {
		select {
		case e := <-m.events:
			m.logEvent(e)
		default:
			return
		}
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForEvent())
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.testMode {
		m.drainEvents()
	}

	switch msg := msg.(type) {
	case eventMsg:
		m.logEvent(msg.event)
		m.state = m.game.State()
		return m, m.waitForEvent()

	case standDoneMsg:
		m.dealerBusy = false
		if msg.err != nil {
			m.showError(msg.err)
		}
		m.refresh()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, m.quit()
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.actionInput.Focus()
			} else {
				m.focusedPane = 0
				m.actionInput.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				input := strings.TrimSpace(m.actionInput.Value())
				m.actionInput.SetValue("")
				if cmd := m.processAction(input); cmd != nil {
					return m, cmd
				}
				return m, nil
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "pgup", "b":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageUp()
			}
		case "pgdown", "f":
			if m.focusedPane == 0 {
				m.logViewport.HalfPageDown()
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.actionInput, cmd = m.actionInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// processAction runs one line of user input. It returns a command when the
// action has to finish asynchronously.
func (m *TUIModel) processAction(input string) tea.Cmd {
	parts := strings.Fields(strings.ToLower(input))
	m.lastError = ""

	if len(parts) == 0 {
		// Enter on its own moves on to the next hand
		if m.state.CanStartNewHand() {
			m.run(m.game.NewHand)
		}
		return nil
	}

	action, args := parts[0], parts[1:]
	switch action {
	case "bet", "b":
		if amount, ok := m.amountArg(action, args); ok {
			m.run(func() error { return m.game.PlaceBet(amount) })
		}
	case "unbet", "remove", "u":
		if amount, ok := m.amountArg(action, args); ok {
			m.run(func() error { return m.game.RemoveBet(amount) })
		}
	case "chip", "c":
		amount, ok := m.amountArg(action, args)
		if !ok {
			break
		}
		if !m.isChip(amount) {
			m.showError(fmt.Errorf("no $%d chip, chips are %s", amount, m.chipList()))
			break
		}
		m.run(func() error { return m.game.PlaceBet(amount) })
	case "deal", "d":
		m.run(m.game.Deal)
	case "hit", "h":
		m.run(m.game.Hit)
	case "stand", "s":
		return m.stand()
	case "new", "n":
		m.run(m.game.NewHand)
	case "reset":
		m.run(m.game.ResetGame)
	case "hint", "?":
		m.hint()
	case "help":
		m.AddLogEntry("Commands: bet N, unbet N, chip N (" + m.chipList() + "), deal, hit, stand, new, reset, hint, quit")
	case "quit", "q", "exit":
		return m.quit()
	default:
		m.showError(fmt.Errorf("unknown command %q, type help", action))
	}
	return nil
}

func (m *TUIModel) amountArg(action string, args []string) (int, bool) {
	if len(args) != 1 {
		m.showError(fmt.Errorf("usage: %s <amount>", action))
		return 0, false
	}
	amount, err := strconv.Atoi(strings.TrimPrefix(args[0], "$"))
	if err != nil {
		m.showError(fmt.Errorf("invalid amount %q", args[0]))
		return 0, false
	}
	return amount, true
}

// run executes a synchronous game command and refreshes the view
func (m *TUIModel) run(command func() error) {
	if err := command(); err != nil {
		m.showError(err)
	}
	m.refresh()
}

// stand hands the dealer turn to a command so pacing never blocks rendering
func (m *TUIModel) stand() tea.Cmd {
	if !m.state.CanAct() {
		m.run(m.game.Stand) // rejected without blocking
		return nil
	}
	m.dealerBusy = true
	g := m.game
	return func() tea.Msg {
		return standDoneMsg{err: g.Stand()}
	}
}

func (m *TUIModel) hint() {
	if !m.state.CanAct() {
		m.showError(errors.New("hints are only available on your turn"))
		return
	}
	d := m.advisor.Decide(m.state)
	m.AddLogEntry(InfoStyle.Render(fmt.Sprintf("Hint: %s (%s)", d.Action, d.Reasoning)))
}

func (m *TUIModel) quit() tea.Cmd {
	m.quitting = true
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
	return tea.Sequence(tea.ClearScreen, tea.Quit)
}

func (m *TUIModel) refresh() {
	if m.testMode {
		m.drainEvents()
	}
	m.state = m.game.State()
}

func (m *TUIModel) showError(err error) {
	var cmdErr *game.CommandError
	if errors.As(err, &cmdErr) {
		m.lastError = cmdErr.Reason
	} else {
		m.lastError = err.Error()
	}
	m.logger.Debug("Command failed", "error", err)
	m.AddLogEntry(ErrorStyle.Render("! " + m.lastError))
}

func (m *TUIModel) logEvent(event game.GameEvent) {
	text := m.formatter.Format(event)
	if text == "" {
		return
	}
	switch e := event.(type) {
	case game.RoundStartEvent:
		m.AddLogEntry("")
		m.AddLogEntry(HeaderStyle.Render(text))
	case game.RoundEndEvent:
		style := WarningStyle
		switch e.Outcome {
		case game.OutcomePlayerWins:
			style = SuccessStyle
		case game.OutcomeDealerWins:
			style = ErrorStyle
		}
		m.AddLogEntry(style.Render(text))
	default:
		m.AddLogEntry(text)
	}
}

func (m *TUIModel) isChip(amount int) bool {
	for _, chip := range m.chips {
		if chip == amount {
			return true
		}
	}
	return false
}

func (m *TUIModel) chipList() string {
	parts := make([]string, len(m.chips))
	for i, chip := range m.chips {
		parts[i] = fmt.Sprintf("$%d", chip)
	}
	return strings.Join(parts, ", ")
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}

	// Don't render until we have valid dimensions
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Height(max(actionHeight, 1))
	if m.focusedPane == 0 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#626262"))
	}
	actionPane := actionStyle.Render(actionContent)

	sidebarContent := m.renderSidebarPane()
	sidebarWidth := max(lipgloss.Width(sidebarContent), 28)
	paneHeight := max(m.height-actionHeight-4, 1) // borders and the action pane

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	m.logViewport.SetContent(m.renderLogPane())
	m.logViewport.Width = max(m.width-sidebarWidth-4, 1)
	m.logViewport.Height = paneHeight

	// On first proper sizing, follow the newest entries
	if !m.initialized && m.logViewport.Width > 1 && m.logViewport.Height > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(m.logViewport.Width).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	logPane := logStyle.Render(m.logViewport.View())

	topRow := lipgloss.JoinHorizontal(lipgloss.Top, logPane, sidebarPane)
	return lipgloss.JoinVertical(lipgloss.Top, topRow, actionPane)
}

// renderLogPane renders the game log pane content
func (m *TUIModel) renderLogPane() string {
	return strings.Join(m.gameLog, "\n")
}

// renderSidebarPane creates the sidebar content
func (m *TUIModel) renderSidebarPane() string {
	var content strings.Builder
	s := m.state

	content.WriteString(WarningStyle.Render(fmt.Sprintf("Balance: $%d", s.Balance)))
	content.WriteString("\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Bet: $%d", s.Bet)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render("Phase: " + m.phaseLabel()))
	content.WriteString("\n\n")

	content.WriteString(HandInfoStyle.Render("Dealer"))
	content.WriteString("\n  ")
	content.WriteString(m.renderDealerHand())
	content.WriteString("\n\n")

	content.WriteString(HandInfoStyle.Render("You"))
	content.WriteString("\n  ")
	if len(s.PlayerHand) > 0 {
		content.WriteString(fmt.Sprintf("%s  %s", m.formatCards(s.PlayerHand), s.PlayerTotal().Display))
	} else {
		content.WriteString(InfoStyle.Render("no cards"))
	}
	content.WriteString("\n\n")

	stats := m.stats.Snapshot()
	content.WriteString(InfoStyle.Render("Session"))
	content.WriteString("\n")
	content.WriteString(fmt.Sprintf("  Rounds: %d\n", stats.Rounds))
	content.WriteString(fmt.Sprintf("  W/L/T: %d/%d/%d\n", stats.Wins, stats.Losses, stats.Ties))
	content.WriteString(fmt.Sprintf("  Net: %+.0f\n", stats.SumNet))

	if s.GameOver {
		content.WriteString("\n")
		content.WriteString(GameOverStyle.Render("GAME OVER"))
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("type reset to play again"))
	}

	return content.String()
}

func (m *TUIModel) phaseLabel() string {
	switch m.state.Phase {
	case game.PhaseBetting:
		return "place your bet"
	case game.PhasePlayerTurn:
		return "your turn"
	case game.PhaseDealerTurn:
		return "dealer drawing"
	case game.PhaseRoundOver:
		return "round over"
	case game.PhaseGameOver:
		return "game over"
	default:
		return m.state.Phase.String()
	}
}

func (m *TUIModel) renderDealerHand() string {
	s := m.state
	if len(s.DealerHand) == 0 {
		return InfoStyle.Render("no cards")
	}
	visible := s.VisibleDealerHand()
	hand := m.formatCards(visible)
	if hidden := len(s.DealerHand) - len(visible); hidden > 0 {
		hand = strings.TrimSuffix(hand, "]") + " " + HiddenCardStyle.Render("??") + "]"
	}
	return fmt.Sprintf("%s  %s", hand, s.VisibleDealerTotal().Display)
}

// renderActionPane renders the action input pane
func (m *TUIModel) renderActionPane() string {
	var content strings.Builder

	if m.lastError != "" {
		content.WriteString(ErrorStyle.Render(m.lastError))
	} else {
		content.WriteString(ActionsStyle.Render("Actions: " + strings.Join(m.availableActions(), " ")))
	}
	content.WriteString("\n")

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	help := "Tab to scroll log • Enter to submit • Ctrl+C to quit"
	if m.focusedPane == 0 {
		help = "Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"
	}
	content.WriteString(InfoStyle.Render(help))

	return content.String()
}

func (m *TUIModel) availableActions() []string {
	s := m.state
	var actions []string
	switch {
	case m.dealerBusy || s.Phase == game.PhaseDealerTurn:
		return []string{"[dealer is drawing...]"}
	case s.CanAct():
		actions = append(actions, "[hit]", "[stand]", "[hint]")
	case s.CanBet():
		actions = append(actions, "[bet N]", "[chip "+m.chipList()+"]")
		if s.Bet > 0 {
			actions = append(actions, "[unbet N]")
		}
		if s.CanDeal() {
			actions = append(actions, "[deal]")
		}
	case s.CanStartNewHand():
		actions = append(actions, "[new]")
	}
	return append(actions, "[reset]", "[quit]")
}

// formatCards formats cards with colors
func (m *TUIModel) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return ""
	}

	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		if card.IsRed() {
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		} else {
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}

	return "[" + strings.Join(formatted, " ") + "]"
}

// AddLogEntry adds an entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)

	// In test mode, also capture the log entry
	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// State returns the last game snapshot the view rendered from
func (m *TUIModel) State() game.State {
	return m.state
}

// GetCapturedLog returns the captured log entries (test mode only)
func (m *TUIModel) GetCapturedLog() []string {
	if !m.testMode {
		return nil
	}
	result := make([]string, len(m.capturedLog))
	copy(result, m.capturedLog)
	return result
}

// IsTestMode returns whether the TUI is in test mode
func (m *TUIModel) IsTestMode() bool {
	return m.testMode
}
