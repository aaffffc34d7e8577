package models

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/allbin/serialterm/internal/session"
	"github.com/allbin/serialterm/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type saveCall struct {
	path       string
	binaryMode bool
	dumpAfter  bool
}

// fakeCommands records what the model asks of the command surface
type fakeCommands struct {
	mu       sync.Mutex
	writes   []string
	saves    []saveCall
	searches []string
	cleared  int
	closed   int
	running  bool
	usage    uint32
	matches  []session.Match
	writeErr error
	closeErr error
}

func (f *fakeCommands) Open(ctx context.Context, _ string, _ uint, _ session.Sink) error {
	<-ctx.Done()
	return nil
}

func (f *fakeCommands) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return f.closeErr
}

func (f *fakeCommands) Write(payload string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writes = append(f.writes, payload)
	return f.writeErr
}

func (f *fakeCommands) Usage() (uint32, error) { return f.usage, nil }

func (f *fakeCommands) Save(path string, binaryMode, dumpAfter bool) (uint8, error) {
	f.saves = append(f.saves, saveCall{path, binaryMode, dumpAfter})
	return 1, nil
}

func (f *fakeCommands) Clear() { f.cleared++ }

func (f *fakeCommands) Search(pattern string) ([]session.Match, error) {
	f.searches = append(f.searches, pattern)
	if pattern == "(" {
		return nil, errors.New("InvalidPattern")
	}
	return f.matches, nil
}

func (f *fakeCommands) Active() (session.Session, bool) {
	if !f.running {
		return session.Session{}, false
	}
	return session.Session{ID: uuid.New(), Port: "/dev/ttyUSB0", BaudRate: 9600, Started: time.Now()}, true
}

func newModel(t *testing.T) (*SessionModel, *fakeCommands) {
	t.Helper()
	cmds := &fakeCommands{}
	m := NewSessionModel(cmds, "/dev/ttyUSB0", 9600)
	m.now = func() time.Time { return time.Date(2025, 3, 1, 12, 30, 0, 0, time.UTC) }
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	t.Cleanup(m.cancel)
	return m, cmds
}

func press(m *SessionModel, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "ctrl+u":
			msg = tea.KeyMsg{Type: tea.KeyCtrlU}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

// quits reports whether msg, or any message batched inside it, is tea.QuitMsg
func quits(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, cmd := range msg {
			if cmd != nil && quits(cmd()) {
				return true
			}
		}
	}
	return false
}

func TestInputModeString(t *testing.T) {
	tests := []struct {
		mode InputMode
		want string
	}{
		{InputModeNormal, "NORMAL"},
		{InputModeInsert, "INSERT"},
		{InputModeSave, "SAVE"},
		{InputModeSearch, "SEARCH"},
		{InputModeResults, "RESULTS"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.mode.String())
	}
}

func TestSendASCII(t *testing.T) {
	m, cmds := newModel(t)

	press(m, "i")
	require.Equal(t, InputModeInsert, m.Mode())

	press(m, "AT", "enter")
	assert.Equal(t, []string{"AT\n"}, cmds.writes)
	assert.Empty(t, m.input.Value())

	press(m, "esc")
	assert.Equal(t, InputModeNormal, m.Mode())
}

func TestSendHex(t *testing.T) {
	m, cmds := newModel(t)

	press(m, "i", "tab", "41 42", "enter")
	assert.Equal(t, []string{"AB"}, cmds.writes)

	// invalid hex is not sent
	press(m, "4", "enter")
	assert.Len(t, cmds.writes, 1)
}

func TestSendRejectedWhenNotRunning(t *testing.T) {
	m, cmds := newModel(t)
	cmds.writeErr = errors.New("NotRunning")
	before := m.terminal.Lines()

	press(m, "i", "x", "enter")
	// one notice and one rejected TX line
	assert.Equal(t, before+2, m.terminal.Lines())
}

func TestClear(t *testing.T) {
	m, cmds := newModel(t)
	m.Update(components.DataReceivedMsg{Timestamp: time.Now(), Data: []byte("data")})
	require.Equal(t, 1, m.terminal.Lines())

	press(m, "c")
	assert.Equal(t, 1, cmds.cleared)
	assert.Zero(t, m.terminal.Lines())
}

func TestSaveFlow(t *testing.T) {
	m, cmds := newModel(t)

	press(m, "s")
	require.Equal(t, InputModeSave, m.Mode())
	assert.Equal(t, "capture-20250301-123000.txt", m.prompt.Value())

	press(m, "enter")
	assert.Equal(t, InputModeNormal, m.Mode())
	require.Len(t, cmds.saves, 1)
	assert.Equal(t, saveCall{"capture-20250301-123000.txt", false, false}, cmds.saves[0])

	press(m, "d", "s", "ctrl+u", "dump.bin", "enter")
	require.Len(t, cmds.saves, 2)
	assert.Equal(t, saveCall{"dump.bin", true, true}, cmds.saves[1])
}

func TestSaveCancelled(t *testing.T) {
	m, cmds := newModel(t)

	press(m, "s", "esc")
	assert.Equal(t, InputModeNormal, m.Mode())
	assert.Empty(t, cmds.saves)
}

func TestSearchFlow(t *testing.T) {
	m, cmds := newModel(t)
	cmds.matches = []session.Match{{Start: 2, End: 4, Text: "12"}, {Start: 6, End: 8, Text: "34"}}

	press(m, "/", `\d+`, "enter")
	assert.Equal(t, []string{`\d+`}, cmds.searches)
	assert.Equal(t, InputModeResults, m.Mode())
	assert.True(t, m.ResultsVisible())
	assert.Equal(t, 2, m.results.Count())

	selected, ok := m.results.Selected()
	require.True(t, ok)
	assert.Equal(t, "12", selected.Text)

	press(m, "esc")
	assert.Equal(t, InputModeNormal, m.Mode())
	assert.False(t, m.ResultsVisible())

	// the prompt remembers the last pattern
	press(m, "/")
	assert.Equal(t, `\d+`, m.prompt.Value())
}

func TestSearchInvalidPattern(t *testing.T) {
	m, _ := newModel(t)

	press(m, "/", "(", "enter")
	assert.Equal(t, InputModeNormal, m.Mode())
	assert.False(t, m.ResultsVisible())
}

func TestCloseSession(t *testing.T) {
	m, cmds := newModel(t)

	press(m, "x")
	assert.Equal(t, 1, cmds.closed)
}

func TestSessionLifecycleMessages(t *testing.T) {
	m, cmds := newModel(t)
	cmds.running = true
	cmds.usage = 2048

	m.Update(usageTickMsg(time.Now()))
	assert.Contains(t, m.View(), "2.0 KiB")

	cmds.running = false
	m.Update(SessionEndedMsg{Err: errors.New("SinkFailed")})
	assert.Contains(t, m.View(), "SinkFailed")
}

func TestQuitClosesSession(t *testing.T) {
	m, cmds := newModel(t)

	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.True(t, quits(cmd()))
	assert.Equal(t, 1, cmds.closed)
	assert.Error(t, m.ctx.Err())
}
