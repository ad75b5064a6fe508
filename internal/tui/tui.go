// Package tui is the terminal front-end for the Caribbean Poker client. It
// renders the table and round mirrors and turns typed commands into
// controller calls; all game state lives in the client.
package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/caribbeanpoker/internal/client"
	"github.com/lox/caribbeanpoker/internal/deck"
	"github.com/lox/caribbeanpoker/internal/game"
	"github.com/lox/caribbeanpoker/internal/protocol"
	"github.com/lox/caribbeanpoker/internal/table"
)

const (
	defaultFeedback   = 3 * time.Second
	defaultBet        = 5
	defaultPlayerName = "player"
)

// Options configures a TUIModel.
type Options struct {
	PlayerName       string
	DefaultBet       int
	FeedbackDuration time.Duration
	// AutoJoinSeat claims a one-based seat once welcomed; zero spectates.
	AutoJoinSeat     int
	TestMode         bool
}

// TUIModel represents the Bubble Tea model for the poker client
type TUIModel struct {
	ctrl   Controller
	logger *log.Logger
	opts   Options

	// UI components
	logViewport viewport.Model
	actionInput textinput.Model

	// State
	gameLog     []string
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	// Last observed mirror state, for logging transitions
	lastStatus    table.Status
	lastPhase     string
	lastHost      string
	lastMySeat    int
	lastRollbacks int
	lastFeedback  string
	disconnected  bool

	// Dimensions
	width       int
	height      int
	initialized bool

	// Test mode
	testMode    bool
	capturedLog []string
}

// QuitMsg is a custom message to signal quit
type QuitMsg struct{}

type updateMsg struct {
	Type protocol.MessageType
}

type disconnectedMsg struct{}

type clearFeedbackMsg struct {
	text string
}

// NewTUIModel creates a model driving ctrl.
func NewTUIModel(ctrl Controller, logger *log.Logger, opts Options) *TUIModel {
	if opts.PlayerName == "" {
		opts.PlayerName = defaultPlayerName
	}
	if opts.DefaultBet <= 0 {
		opts.DefaultBet = defaultBet
	}
	if opts.FeedbackDuration <= 0 {
		opts.FeedbackDuration = defaultFeedback
	}

	// Sized properly when WindowSizeMsg arrives
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = "join 1, bet 10, call, fold, start, help"
	ti.Focus()
	ti.CharLimit = 100
	ti.Width = 100
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.TextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA"))
	ti.Prompt = "> "

	return &TUIModel{
		ctrl:        ctrl,
		logger:      logger.WithPrefix("tui"),
		opts:        opts,
		logViewport: vp,
		actionInput: ti,
		gameLog:     []string{},
		focusedPane: 1,
		lastMySeat:  -1,
		testMode:    opts.TestMode,
		capturedLog: []string{},
	}
}

// Init initializes the TUI model
func (m *TUIModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForUpdate())
}

// waitForUpdate blocks on the next client update.
func (m *TUIModel) waitForUpdate() tea.Cmd {
	updates := m.ctrl.Updates()
	return func() tea.Msg {
		typ, ok := <-updates
		if !ok {
			return disconnectedMsg{}
		}
		return updateMsg{Type: typ}
	}
}

// Update handles messages in the TUI
func (m *TUIModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case QuitMsg:
		m.quitting = true
		return m, tea.Sequence(tea.ClearScreen, tea.Quit)

	case updateMsg:
		cmds = append(cmds, m.observe(msg.Type), m.waitForUpdate())
		if msg.Type == protocol.TypeWelcome && m.opts.AutoJoinSeat > 0 {
			cmds = append(cmds, m.processInput(fmt.Sprintf("join %d", m.opts.AutoJoinSeat)))
		}
		return m, tea.Batch(cmds...)

	case disconnectedMsg:
		if !m.disconnected {
			m.disconnected = true
			m.logf(ErrorStyle, "Disconnected from server")
		}
		return m, nil

	case clearFeedbackMsg:
		if m.ctrl.Feedback() == msg.text {
			m.ctrl.SetFeedback("")
			m.lastFeedback = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.logger.Debug("Updating dimensions", "width", m.width, "height", m.height)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Sequence(tea.ClearScreen, tea.Quit)
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
				if cmd := m.processInput(input); cmd != nil {
					cmds = append(cmds, cmd)
				}
				if m.quitting {
					return m, tea.Batch(cmds...)
				}
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

// processInput runs one typed command against the controller.
func (m *TUIModel) processInput(input string) tea.Cmd {
	cmd, err := ParseCommand(input, m.opts.DefaultBet)
	if err != nil {
		return m.feedback(err.Error())
	}

	switch cmd.Kind {
	case CmdNone:
		return nil
	case CmdQuit:
		m.quitting = true
		return tea.Sequence(tea.ClearScreen, tea.Quit)
	case CmdHelp:
		m.logf(InfoStyle, "%s", HelpText)
		return nil
	case CmdJoin:
		err = m.ctrl.JoinSeat(cmd.Seat)
	case CmdLeave:
		err = m.ctrl.LeaveSeat()
	case CmdStart:
		err = m.ctrl.RequestStart()
	case CmdSync:
		err = m.ctrl.RequestSync()
	case CmdAction:
		err = m.ctrl.SendAction(string(cmd.Action), cmd.Amount)
	}
	if err != nil {
		m.logger.Debug("Command refused", "input", input, "error", err)
		return m.feedback(describeError(cmd, err))
	}

	// Seat intents are predicted locally, so the view has already moved.
	return m.observe("")
}

func describeError(cmd Command, err error) string {
	switch {
	case errors.Is(err, client.ErrSeatUnavailable):
		return fmt.Sprintf("Seat %d is not available", cmd.Seat+1)
	case errors.Is(err, client.ErrNotSeated):
		return "You are not seated"
	case errors.Is(err, client.ErrCannotStart):
		return "Only the host can start, once every seat is taken"
	case errors.Is(err, client.ErrNotConnected):
		return "Not connected"
	}
	return err.Error()
}

// feedback shows a local message in the feedback line.
func (m *TUIModel) feedback(msg string) tea.Cmd {
	m.ctrl.SetFeedback(msg)
	return m.syncFeedback()
}

// syncFeedback logs new feedback and schedules it to clear.
func (m *TUIModel) syncFeedback() tea.Cmd {
	fb := m.ctrl.Feedback()
	if fb == m.lastFeedback {
		return nil
	}
	m.lastFeedback = fb
	if fb == "" {
		return nil
	}
	m.logf(InfoStyle, "» %s", fb)
	return tea.Tick(m.opts.FeedbackDuration, func(time.Time) tea.Msg {
		return clearFeedbackMsg{text: fb}
	})
}

// observe logs what changed in the mirrors since the last update.
func (m *TUIModel) observe(typ protocol.MessageType) tea.Cmd {
	view := m.ctrl.TableView()
	round := m.ctrl.RoundState()

	if typ == protocol.TypeWelcome {
		m.logf(SuccessStyle, "Connected as %s", shortID(view.PlayerID))
	}
	if view.HostID != m.lastHost {
		m.lastHost = view.HostID
		switch {
		case view.HostID == "":
		case view.IsHost:
			m.logf(SuccessStyle, "You are the host")
		default:
			m.logf(PlayerInfoStyle, "Host is %s", shortID(view.HostID))
		}
	}
	if view.Rollbacks > m.lastRollbacks {
		m.lastRollbacks = view.Rollbacks
		m.logf(WarningStyle, "Server corrected the table")
	}
	if view.MySeat != m.lastMySeat {
		if view.MySeat >= 0 {
			m.logf(PlayerInfoStyle, "You are in seat %d", view.MySeat+1)
		} else {
			m.logf(PlayerInfoStyle, "You left seat %d", m.lastMySeat+1)
		}
		m.lastMySeat = view.MySeat
	}
	if view.Status != m.lastStatus {
		m.lastStatus = view.Status
		m.logf(InfoStyle, "Table is %s", strings.ReplaceAll(string(view.Status), "_", " "))
	}
	if round.Phase != m.lastPhase {
		m.lastPhase = round.Phase
		m.logPhase(view, round)
	}

	return m.syncFeedback()
}

func (m *TUIModel) logPhase(view client.TableView, round protocol.PokerState) {
	if round.Phase == string(game.PhaseWaiting) {
		return
	}
	m.logf(HeaderStyle, "*** %s ***", strings.ToUpper(strings.ReplaceAll(round.Phase, "_", " ")))

	switch game.Phase(round.Phase) {
	case game.PhaseDealPlayer:
		if hand, ok := round.Community.PlayerHands[view.PlayerID]; ok {
			m.logf(HandInfoStyle, "Your hand: %s", m.formatCards(hand.Cards))
		}
	case game.PhaseReveal:
		m.logf(HandInfoStyle, "Dealer shows: %s", m.formatCards(round.Community.DealerHand))
	case game.PhasePayout:
		switch {
		case len(round.WinningPlayerIDs) == 0:
			m.logf(WarningStyle, "Dealer wins $%d", round.PotTotal)
		case slices.Contains(round.WinningPlayerIDs, view.PlayerID):
			m.logf(SuccessStyle, "You win! Pot $%d", round.PotTotal)
		default:
			ids := make([]string, len(round.WinningPlayerIDs))
			for i, id := range round.WinningPlayerIDs {
				ids[i] = shortID(id)
			}
			m.logf(PlayerInfoStyle, "Winners: %s", strings.Join(ids, ", "))
		}
	}
}

// View renders the TUI
func (m *TUIModel) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	view := m.ctrl.TableView()
	round := m.ctrl.RoundState()

	// Action pane (bottom, full width)
	actionContent := m.renderActionPane(view, round)
	actionHeight := lipgloss.Height(actionContent)
	actionStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(max(1, m.width-2)).
		Height(max(1, actionHeight-2))
	if m.focusedPane == 1 {
		actionStyle = actionStyle.BorderForeground(lipgloss.Color("#04B575"))
	}
	actionPane := actionStyle.Render(actionContent)

	// Sidebar pane (right of the log, same height)
	sidebarContent := m.renderSidebarPane(view, round)
	sidebarWidth := max(25, lipgloss.Width(sidebarContent))
	paneHeight := max(1, m.height-actionHeight-4)

	sidebarPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(sidebarContent)

	// Log pane (top, fills what is left)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	m.logViewport.Width = max(1, m.width-sidebarWidth-4)
	m.logViewport.Height = paneHeight
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

// renderSidebarPane shows the seats and the round summary.
func (m *TUIModel) renderSidebarPane(view client.TableView, round protocol.PokerState) string {
	var content strings.Builder

	content.WriteString(HeaderStyle.Render(" Caribbean Poker "))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Table: %s", view.Status)))
	content.WriteString("\n")
	content.WriteString(InfoStyle.Render(fmt.Sprintf("Phase: %s", round.Phase)))
	content.WriteString("\n")
	content.WriteString(WarningStyle.Render(fmt.Sprintf("Pot: $%d", round.PotTotal)))
	content.WriteString("\n\n")

	content.WriteString(InfoStyle.Render("Seats:"))
	content.WriteString("\n")
	for _, seat := range view.Seats {
		content.WriteString(fmt.Sprintf("  %d. %s\n", seat.Index+1, m.seatLabel(view, round, seat)))
	}

	if len(round.Community.DealerHand) > 0 {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render("Dealer:"))
		content.WriteString(" ")
		content.WriteString(m.formatCards(round.Community.DealerHand))
		content.WriteString("\n")
	}

	if view.Pending > 0 {
		content.WriteString("\n")
		content.WriteString(InfoStyle.Render(fmt.Sprintf("Pending: %d (frame %d)", view.Pending, view.LocalFrame)))
		content.WriteString("\n")
	}

	return content.String()
}

func (m *TUIModel) seatLabel(view client.TableView, round protocol.PokerState, seat table.Seat) string {
	if !seat.Occupied() {
		return InfoStyle.Render("(empty)")
	}

	label := PlayerInfoStyle.Render(shortID(seat.PlayerID))
	if seat.PlayerID == view.PlayerID {
		label = YouStyle.Render(m.opts.PlayerName)
	}
	if seat.PlayerID == view.HostID {
		label += " ★"
	}
	if bet, ok := round.PlayerBets[seat.PlayerID]; ok {
		if bet.HasFolded {
			label += InfoStyle.Render(" folded")
		} else if total := bet.Ante + bet.Bet; total > 0 {
			label += WarningStyle.Render(fmt.Sprintf(" $%d", total))
		}
	}
	return label
}

// renderActionPane renders the hand, feedback and input
func (m *TUIModel) renderActionPane(view client.TableView, round protocol.PokerState) string {
	var content strings.Builder

	switch {
	case m.disconnected:
		content.WriteString(ErrorStyle.Render("Disconnected"))
	case view.MySeat < 0:
		content.WriteString(HandInfoStyle.Render("Spectating. Type 'join <seat>' to sit down."))
	case view.Status == table.StatusOpen:
		if view.CanStart() {
			content.WriteString(HandInfoStyle.Render("Every seat is taken. Type 'start' to begin."))
		} else {
			content.WriteString(HandInfoStyle.Render("Waiting for players..."))
		}
	default:
		content.WriteString(m.renderHandInfo(view, round))
	}
	content.WriteString("\n")

	if view.MySeat >= 0 && round.Phase == string(game.PhaseBetting) {
		content.WriteString(m.renderAvailableActions())
		content.WriteString("\n")
	}

	if fb := m.ctrl.Feedback(); fb != "" {
		content.WriteString(WarningStyle.Render(fb))
		content.WriteString("\n")
	}

	content.WriteString(m.actionInput.View())
	content.WriteString("\n")

	if m.focusedPane == 0 {
		content.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, PgUp/PgDn half page, Home/End, Tab to input"))
	} else {
		content.WriteString(InfoStyle.Render("Tab to scroll log • 'help' for commands • Ctrl+C to quit"))
	}

	return content.String()
}

// renderHandInfo renders the local player's cards and wagers
func (m *TUIModel) renderHandInfo(view client.TableView, round protocol.PokerState) string {
	hand := round.Community.PlayerHands[view.PlayerID]
	bet := round.PlayerBets[view.PlayerID]

	info := fmt.Sprintf("Hand: %s  Ante: $%d  Bet: $%d", m.formatCards(hand.Cards), bet.Ante, bet.Bet)
	if bet.Insurance > 0 {
		info += fmt.Sprintf("  Insurance: $%d", bet.Insurance)
	}
	if bet.HasFolded {
		info += "  (folded)"
	}
	return HandInfoStyle.Render(info)
}

func (m *TUIModel) renderAvailableActions() string {
	actions := []string{
		WarningStyle.Render(fmt.Sprintf("[bet %d]", m.opts.DefaultBet)),
		WarningStyle.Render(fmt.Sprintf("[raise %d]", m.opts.DefaultBet)),
		SuccessStyle.Render("[call]"),
		ErrorStyle.Render("[fold]"),
		InfoStyle.Render("[insurance n]"),
	}
	return ActionsStyle.Render("Actions: " + strings.Join(actions, " "))
}

// formatCards formats cards with colors
func (m *TUIModel) formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return "[]"
	}

	formatted := make([]string, 0, len(cards))
	for _, card := range cards {
		switch {
		case card.IsHidden():
			formatted = append(formatted, HiddenCardStyle.Render(card.String()))
		case card.Suit.IsRed():
			formatted = append(formatted, RedCardStyle.Render(card.String()))
		default:
			formatted = append(formatted, BlackCardStyle.Render(card.String()))
		}
	}
	return "[" + strings.Join(formatted, " ") + "]"
}

// logf adds a styled entry to the game log.
func (m *TUIModel) logf(style lipgloss.Style, format string, args ...any) {
	entry := fmt.Sprintf(format, args...)
	m.gameLog = append(m.gameLog, style.Render(entry))

	if m.testMode {
		m.capturedLog = append(m.capturedLog, entry)
		return
	}

	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// AddLogEntry adds a plain entry to the game log
func (m *TUIModel) AddLogEntry(entry string) {
	m.logf(PlayerInfoStyle, "%s", entry)
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

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
