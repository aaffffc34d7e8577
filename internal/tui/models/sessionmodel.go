package models

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/allbin/serialterm/internal/session"
	"github.com/allbin/serialterm/internal/tui/components"
	"github.com/allbin/serialterm/internal/tui/keys"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// UsagePollInterval is how often the status bar refreshes the buffer size
const UsagePollInterval = time.Second

// InputMode represents the current input mode (vim-like)
type InputMode int

const (
	InputModeNormal InputMode = iota
	InputModeInsert
	InputModeSave
	InputModeSearch
	InputModeResults
)

func (m InputMode) String() string {
	switch m {
	case InputModeInsert:
		return "INSERT"
	case InputModeSave:
		return "SAVE"
	case InputModeSearch:
		return "SEARCH"
	case InputModeResults:
		return "RESULTS"
	default:
		return "NORMAL"
	}
}

// Commands is the command surface the session UI drives
type Commands interface {
	Open(ctx context.Context, portName string, baudRate uint, sink session.Sink) error
	Close() error
	Write(payload string) error
	Usage() (uint32, error)
	Save(path string, binaryMode, dumpAfter bool) (uint8, error)
	Clear()
	Search(pattern string) ([]session.Match, error)
	Active() (session.Session, bool)
}

// SessionEndedMsg reports that Open returned
type SessionEndedMsg struct {
	Err error
}

type usageTickMsg time.Time

type SessionModel struct {
	cmds     Commands
	portPath string
	baudRate uint
	ctx      context.Context
	cancel   context.CancelFunc
	send     func(tea.Msg)
	now      func() time.Time

	terminal  *components.Terminal
	statusBar *components.StatusBar
	input     *components.Input
	prompt    *components.Prompt
	results   *components.Results
	help      help.Model
	keys      keys.SessionKeys

	inputMode   InputMode
	showResults bool
	dumpAfter   bool
	lastPattern string
	ready       bool
	width       int
	height      int
}

func NewSessionModel(cmds Commands, portPath string, baudRate uint) *SessionModel {
	ctx, cancel := context.WithCancel(context.Background())

	return &SessionModel{
		cmds:      cmds,
		portPath:  portPath,
		baudRate:  baudRate,
		ctx:       ctx,
		cancel:    cancel,
		now:       time.Now,
		terminal:  components.NewTerminal(0, 0), // sized by the first WindowSizeMsg
		statusBar: components.NewStatusBar(portPath),
		input:     components.NewInput("Type message and press Enter to send..."),
		prompt:    components.NewPrompt(),
		results:   components.NewResults(0, 0),
		help:      help.New(),
		keys:      keys.NewSessionKeys(),
	}
}

// SetSender routes chunks from the session loop into the program, usually tea.Program.Send.
// It must be called before the program starts.
func (m *SessionModel) SetSender(send func(tea.Msg)) {
	m.send = send
}

func (m *SessionModel) Init() tea.Cmd {
	return tea.Batch(m.openSession(), m.pollUsage(100*time.Millisecond))
}

func (m *SessionModel) sink() session.Sink {
	return session.SinkFunc(func(chunk []byte) error {
		if m.send != nil {
			m.send(components.DataReceivedMsg{Timestamp: time.Now(), Data: chunk})
		}
		return nil
	})
}

// openSession runs the session for as long as it lasts and reports how it ended
func (m *SessionModel) openSession() tea.Cmd {
	m.statusBar.SetOpening()
	ctx, portPath, baudRate, sink := m.ctx, m.portPath, m.baudRate, m.sink()
	return func() tea.Msg {
		return SessionEndedMsg{Err: m.cmds.Open(ctx, portPath, baudRate, sink)}
	}
}

func (m *SessionModel) pollUsage(after time.Duration) tea.Cmd {
	return tea.Tick(after, func(t time.Time) tea.Msg {
		return usageTickMsg(t)
	})
}

// Shutdown stops the session, if one is running, and cancels outstanding work
func (m *SessionModel) Shutdown() {
	_ = m.cmds.Close()
	m.cancel()
}

func (m *SessionModel) Mode() InputMode {
	return m.inputMode
}

func (m *SessionModel) ResultsVisible() bool {
	return m.showResults
}

func (m *SessionModel) notice(text string, isError bool) {
	m.terminal.AddNotice(components.NoticeMsg{Timestamp: m.now(), Text: text, IsError: isError})
}

func (m *SessionModel) layout() {
	if !m.ready {
		return
	}
	// content border (1) + input box (3) + status bar (1)
	reserved := 5
	if m.help.ShowAll {
		reserved += lipgloss.Height(m.help.View(m.keys))
	}
	contentHeight := m.height - reserved
	if contentHeight < 1 {
		contentHeight = 1
	}

	m.terminal.SetSize(m.width, contentHeight)
	m.results.SetSize(m.width, contentHeight)
	m.input.SetWidth(m.width)
	m.prompt.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.help.Width = m.width
}

func (m *SessionModel) refreshUsage() {
	if usage, err := m.cmds.Usage(); err == nil {
		m.statusBar.SetUsage(usage)
	}
	if active, ok := m.cmds.Active(); ok && m.statusBar.Status() != styles.StatusRunning {
		m.statusBar.SetRunning(components.SessionInfo{
			ID:       active.ID.String(),
			BaudRate: active.BaudRate,
			Started:  active.Started,
		})
		m.notice(fmt.Sprintf("session %s opened at %d baud", active.ID, active.BaudRate), false)
	}
}

func (m *SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.ready = true
		m.layout()
		_, cmd := m.terminal.Update(msg)
		cmds = append(cmds, cmd)

	case components.DataReceivedMsg:
		m.terminal.AddMessage(msg)

	case SessionEndedMsg:
		m.statusBar.SetStopped(msg.Err)
		if msg.Err != nil {
			m.notice(fmt.Sprintf("session ended: %v", msg.Err), true)
		} else {
			m.notice("session closed", false)
		}
		m.refreshUsage()

	case usageTickMsg:
		m.refreshUsage()
		cmds = append(cmds, m.pollUsage(UsagePollInterval))

	case tea.KeyMsg:
		switch m.inputMode {
		case InputModeInsert:
			cmds = append(cmds, m.updateInsert(msg))
		case InputModeSave, InputModeSearch:
			cmds = append(cmds, m.updatePrompt(msg))
		case InputModeResults:
			cmds = append(cmds, m.updateResults(msg))
		default:
			cmds = append(cmds, m.updateNormal(msg))
		}
	}

	return m, tea.Batch(cmds...)
}

func (m *SessionModel) updateNormal(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return tea.Quit

	case key.Matches(msg, m.keys.InsertMode):
		m.inputMode = InputModeInsert
		m.input.Focus()

	case key.Matches(msg, m.keys.Clear):
		m.cmds.Clear()
		m.terminal.Clear()
		m.statusBar.SetUsage(0)

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()

	case key.Matches(msg, m.keys.ToggleHex):
		m.terminal.ToggleHex()

	case key.Matches(msg, m.keys.ToggleASCII):
		m.terminal.ToggleASCII()

	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()

	case key.Matches(msg, m.keys.Up):
		m.terminal.ScrollUp()

	case key.Matches(msg, m.keys.Down):
		m.terminal.ScrollDown()

	case key.Matches(msg, m.keys.GotoTop):
		m.terminal.GotoTop()

	case key.Matches(msg, m.keys.GotoBottom):
		m.terminal.GotoBottom()

	case key.Matches(msg, m.keys.Save):
		m.inputMode = InputModeSave
		m.prompt.Ask("save to", fmt.Sprintf("capture-%s.txt", m.now().Format("20060102-150405")))
		m.prompt.SetWidth(m.width)

	case key.Matches(msg, m.keys.ToggleDump):
		m.dumpAfter = !m.dumpAfter
		m.statusBar.SetDump(m.dumpAfter)

	case key.Matches(msg, m.keys.Search):
		m.inputMode = InputModeSearch
		m.prompt.Ask("search", m.lastPattern)
		m.prompt.SetWidth(m.width)

	case key.Matches(msg, m.keys.Results):
		m.showResults = true
		m.inputMode = InputModeResults
		m.results.Focus(true)

	case key.Matches(msg, m.keys.CloseSession):
		if err := m.cmds.Close(); err != nil {
			m.notice(err.Error(), true)
		} else {
			m.notice("closing session", false)
		}

	case key.Matches(msg, m.keys.OpenSession):
		if _, running := m.cmds.Active(); running || m.statusBar.Status() == styles.StatusOpening {
			m.notice("session already running", true)
			return nil
		}
		return m.openSession()
	}
	return nil
}

func (m *SessionModel) updateInsert(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.inputMode = InputModeNormal
		m.input.Blur()
		return nil
	case key.Matches(msg, m.keys.Enter):
		m.sendInput()
		return nil
	case key.Matches(msg, m.keys.ToggleSendMode):
		m.input.ToggleSendingMode()
		return nil
	case msg.Type == tea.KeyUp:
		m.input.NavigateHistoryUp()
		return nil
	case msg.Type == tea.KeyDown:
		m.input.NavigateHistoryDown()
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return cmd
}

func (m *SessionModel) sendInput() {
	value := m.input.Value()
	if value == "" {
		return
	}

	payload, err := m.input.Payload()
	if err != nil {
		m.notice(err.Error(), true)
		return
	}

	display := payload
	if m.input.GetSendingMode() == components.SendingModeASCII {
		display = []byte(value)
	}

	status := components.TxQueued
	if err := m.cmds.Write(string(payload)); err != nil {
		status = components.TxRejected
		m.notice(err.Error(), true)
	}
	m.terminal.AddMessage(components.DataReceivedMsg{
		Timestamp: m.now(),
		Data:      display,
		IsTX:      true,
		Status:    status,
	})

	m.input.AddToHistory(value)
	m.input.SetValue("")
}

func (m *SessionModel) updatePrompt(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.prompt.Dismiss()
		m.inputMode = InputModeNormal
		return nil
	case key.Matches(msg, m.keys.Enter):
		value := strings.TrimSpace(m.prompt.Value())
		mode := m.inputMode
		m.prompt.Dismiss()
		m.inputMode = InputModeNormal
		if mode == InputModeSave {
			m.save(value)
		} else {
			m.search(value)
		}
		return nil
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return cmd
}

func (m *SessionModel) save(path string) {
	if path == "" {
		m.notice("save: no file name given", true)
		return
	}

	usage, _ := m.cmds.Usage()
	binary := strings.EqualFold(filepath.Ext(path), ".bin")
	if _, err := m.cmds.Save(path, binary, m.dumpAfter); err != nil {
		m.notice(err.Error(), true)
		return
	}

	if m.dumpAfter {
		m.terminal.Clear()
		m.notice(fmt.Sprintf("saved %s to %s and cleared the buffer", components.FormatBytes(usage), path), false)
	} else {
		m.notice(fmt.Sprintf("saved %s to %s", components.FormatBytes(usage), path), false)
	}
	m.refreshUsage()
}

func (m *SessionModel) search(pattern string) {
	m.lastPattern = pattern

	matches, err := m.cmds.Search(pattern)
	if err != nil {
		m.notice(err.Error(), true)
		return
	}

	m.results.SetMatches(pattern, matches)
	m.notice(fmt.Sprintf("%d matches for /%s/", m.results.Count(), pattern), false)
	m.showResults = true
	m.inputMode = InputModeResults
	m.results.Focus(true)
}

func (m *SessionModel) updateResults(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Results):
		m.showResults = false
		m.inputMode = InputModeNormal
		m.results.Focus(false)
		return nil
	case key.Matches(msg, m.keys.Quit):
		m.Shutdown()
		return tea.Quit
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return cmd
}

func (m *SessionModel) View() string {
	content := "Initializing..."
	if m.ready {
		if m.showResults {
			content = m.results.View()
		} else {
			content = m.terminal.View()
		}
	}

	var bottom string
	switch m.inputMode {
	case InputModeSave, InputModeSearch:
		bottom = m.prompt.View()
	default:
		bottom = m.input.ViewWithMode(m.inputMode == InputModeInsert)
	}

	statusBar := m.statusBar.View(m.inputMode.String(), m.input.GetSendingMode().String(), m.now())

	parts := []string{styles.ContentBorderStyle.Render(content), bottom, statusBar}
	if m.help.ShowAll {
		parts = append(parts, m.help.View(m.keys))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
