package styles

import (
	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Mauve).
			Background(colors.Surface0).
			Padding(0, 1)

	// Session status styles
	StatusRunningStyle = lipgloss.NewStyle().
				Foreground(colors.Green).
				Bold(true)

	StatusStoppedStyle = lipgloss.NewStyle().
				Foreground(colors.Red).
				Bold(true)

	StatusOpeningStyle = lipgloss.NewStyle().
				Foreground(colors.Yellow).
				Bold(true)

	ContentBorderStyle = lipgloss.NewStyle().
				BorderTop(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(colors.Surface1)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colors.Surface2).
			Padding(0, 1)

	PromptLabelStyle = lipgloss.NewStyle().
				Foreground(colors.Peach).
				Bold(true)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(colors.Teal)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colors.Red)

	// Search results table
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colors.Text)

	TableHighlightStyle = lipgloss.NewStyle().
				Foreground(colors.Text).
				Background(colors.Surface1)

	TableBaseStyle = lipgloss.NewStyle().
			Foreground(colors.Subtext1).
			BorderForeground(colors.Surface2).
			Align(lipgloss.Left)
)

type StatusType int

const (
	StatusRunning StatusType = iota
	StatusStopped
	StatusOpening
	StatusError
)

func GetStatusStyle(status StatusType) lipgloss.Style {
	switch status {
	case StatusRunning:
		return StatusRunningStyle
	case StatusOpening:
		return StatusOpeningStyle
	default:
		return StatusStoppedStyle
	}
}
