package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxTerminalLines bounds the scrollback. The session buffer keeps everything.
const MaxTerminalLines = 2000

type entry struct {
	data   DataReceivedMsg
	notice *NoticeMsg
}

type Terminal struct {
	viewport  viewport.Model
	formatter *DataFormatter
	entries   []entry
	lines     []string
	follow    bool
}

func NewTerminal(width, height int) *Terminal {
	return &Terminal{
		viewport:  viewport.New(width, height),
		formatter: NewDataFormatter(true, true),
		follow:    true,
	}
}

func (t *Terminal) SetSize(width, height int) {
	t.viewport.Width = width
	t.viewport.Height = height
}

func (t *Terminal) Width() int {
	return t.viewport.Width
}

func (t *Terminal) AddMessage(msg DataReceivedMsg) {
	t.append(entry{data: msg}, t.formatter.FormatMessage(msg))
}

func (t *Terminal) AddNotice(msg NoticeMsg) {
	t.append(entry{notice: &msg}, t.formatter.FormatNotice(msg))
}

func (t *Terminal) append(e entry, line string) {
	t.entries = append(t.entries, e)
	t.lines = append(t.lines, line)
	if over := len(t.entries) - MaxTerminalLines; over > 0 {
		t.entries = t.entries[over:]
		t.lines = t.lines[over:]
	}
	t.render()
}

// Lines returns the number of entries in the scrollback
func (t *Terminal) Lines() int {
	return len(t.entries)
}

func (t *Terminal) Clear() {
	t.entries = nil
	t.lines = nil
	t.viewport.SetContent("")
	t.follow = true
}

func (t *Terminal) ToggleHex() {
	t.formatter.ToggleHex()
	t.reformat()
}

func (t *Terminal) ToggleASCII() {
	t.formatter.ToggleASCII()
	t.reformat()
}

func (t *Terminal) GetDisplayMode() DisplayMode {
	return t.formatter.GetDisplayMode()
}

func (t *Terminal) ScrollUp() {
	t.viewport.LineUp(1)
	t.follow = t.viewport.AtBottom()
}

func (t *Terminal) ScrollDown() {
	t.viewport.LineDown(1)
	t.follow = t.viewport.AtBottom()
}

func (t *Terminal) GotoTop() {
	t.viewport.GotoTop()
	t.follow = t.viewport.AtBottom()
}

func (t *Terminal) GotoBottom() {
	t.viewport.GotoBottom()
	t.follow = true
}

func (t *Terminal) reformat() {
	for i, e := range t.entries {
		if e.notice != nil {
			t.lines[i] = t.formatter.FormatNotice(*e.notice)
		} else {
			t.lines[i] = t.formatter.FormatMessage(e.data)
		}
	}
	t.render()
}

func (t *Terminal) render() {
	t.viewport.SetContent(strings.Join(t.lines, "\n"))
	if t.follow {
		t.viewport.GotoBottom()
	}
}

func (t *Terminal) Update(msg tea.Msg) (viewport.Model, tea.Cmd) {
	// Only resize reaches the viewport so it cannot consume our key bindings
	switch msg.(type) {
	case tea.WindowSizeMsg:
		return t.viewport.Update(msg)
	default:
		return t.viewport, nil
	}
}

func (t *Terminal) View() string {
	return t.viewport.View()
}
