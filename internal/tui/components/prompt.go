package components

import (
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Prompt is a one-line labelled question, used for save paths and search patterns
type Prompt struct {
	label         string
	textInput     textinput.Model
	terminalWidth int
}

func NewPrompt() *Prompt {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 512
	return &Prompt{textInput: ti}
}

// Ask shows the prompt with an initial value and focuses it
func (p *Prompt) Ask(label, initial string) {
	p.label = label
	p.textInput.SetValue(initial)
	p.textInput.CursorEnd()
	p.textInput.Focus()
}

func (p *Prompt) Dismiss() {
	p.textInput.Blur()
	p.textInput.SetValue("")
}

func (p *Prompt) Value() string {
	return p.textInput.Value()
}

func (p *Prompt) SetWidth(width int) {
	p.terminalWidth = width
	usable := width - 8 - lipgloss.Width(p.label)
	if usable < 20 {
		usable = 20
	}
	p.textInput.Width = usable
}

func (p *Prompt) Update(msg tea.Msg) (*Prompt, tea.Cmd) {
	var cmd tea.Cmd
	p.textInput, cmd = p.textInput.Update(msg)
	return p, cmd
}

func (p *Prompt) View() string {
	content := lipgloss.JoinHorizontal(lipgloss.Left,
		styles.PromptLabelStyle.Render(p.label),
		" ",
		p.textInput.View(),
	)
	return styles.InputStyle.
		Width(boxWidth(p.terminalWidth)).
		BorderForeground(colors.Peach).
		Render(content)
}
