package components

import (
	"fmt"
	"time"

	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// SessionInfo is what the status bar shows about the running session
type SessionInfo struct {
	ID       string
	BaudRate int
	Started  time.Time
}

type StatusBar struct {
	portPath string
	status   styles.StatusType
	err      error
	width    int
	info     *SessionInfo
	usage    uint32
	dump     bool
}

func NewStatusBar(portPath string) *StatusBar {
	return &StatusBar{
		portPath: portPath,
		status:   styles.StatusOpening,
	}
}

func (sb *StatusBar) SetWidth(width int) {
	sb.width = width
}

func (sb *StatusBar) SetOpening() {
	sb.status = styles.StatusOpening
	sb.err = nil
}

func (sb *StatusBar) SetRunning(info SessionInfo) {
	sb.status = styles.StatusRunning
	sb.err = nil
	sb.info = &info
}

// SetStopped marks the session ended, with the error that ended it if any
func (sb *StatusBar) SetStopped(err error) {
	sb.info = nil
	sb.err = err
	if err != nil {
		sb.status = styles.StatusError
	} else {
		sb.status = styles.StatusStopped
	}
}

func (sb *StatusBar) Status() styles.StatusType {
	return sb.status
}

func (sb *StatusBar) SetUsage(usage uint32) {
	sb.usage = usage
}

func (sb *StatusBar) SetDump(dump bool) {
	sb.dump = dump
}

// FormatBytes renders a byte count with a binary unit
func FormatBytes(n uint32) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := uint64(n) / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMG"[exp])
}

// View renders the bottom bar: mode, port and state on the left, buffer and session details on the right
func (sb *StatusBar) View(inputMode, sendingMode string, now time.Time) string {
	terminalWidth := sb.width
	if terminalWidth <= 0 {
		terminalWidth = 80
	}

	modeBackground := colors.Blue
	switch inputMode {
	case "INSERT":
		modeBackground = colors.Green
	case "SAVE", "SEARCH":
		modeBackground = colors.Peach
	case "RESULTS":
		modeBackground = colors.Mauve
	}
	mode := lipgloss.NewStyle().
		Foreground(colors.Base).
		Background(modeBackground).
		Bold(true).
		Padding(0, 1).
		Render(inputMode)

	port := lipgloss.NewStyle().
		Foreground(colors.Mauve).
		Bold(true).
		Padding(0, 1).
		Render(sb.portPath)

	var indicator string
	switch sb.status {
	case styles.StatusRunning:
		indicator = "●"
	case styles.StatusError:
		indicator = "✗"
	default:
		indicator = "○"
	}
	connectionIndicator := styles.GetStatusStyle(sb.status).Render(indicator)

	divider := lipgloss.NewStyle().
		Foreground(colors.Surface2).
		Padding(0, 1).
		Render("│")

	left := []string{mode, port, connectionIndicator}
	if inputMode == "INSERT" {
		left = append(left, lipgloss.NewStyle().
			Foreground(colors.Peach).
			Bold(true).
			Padding(0, 1).
			Render(fmt.Sprintf("[%s] Tab to toggle", sendingMode)))
	}
	if sb.err != nil {
		left = append(left, styles.ErrorStyle.Padding(0, 1).Render(sb.err.Error()))
	}
	left = append(left, divider)
	leftSide := lipgloss.JoinHorizontal(lipgloss.Left, left...)

	details := "⚡ stopped"
	if sb.info != nil {
		details = fmt.Sprintf("⚡ %d baud up %s", sb.info.BaudRate, now.Sub(sb.info.Started).Truncate(time.Second))
	}
	dump := "keep"
	if sb.dump {
		dump = "dump"
	}
	buffer := fmt.Sprintf("▤ %s (%s)", FormatBytes(sb.usage), dump)

	infoStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Padding(0, 1)
	timeStyle := lipgloss.NewStyle().
		Foreground(colors.Subtext1).
		Padding(0, 1)

	rightSide := lipgloss.JoinHorizontal(lipgloss.Left,
		infoStyle.Render(buffer),
		divider,
		infoStyle.Render(details),
		divider,
		timeStyle.Render(now.Format("15:04:05")),
	)

	spacerWidth := terminalWidth - lipgloss.Width(leftSide) - lipgloss.Width(rightSide)
	if spacerWidth < 1 {
		spacerWidth = 1
	}
	spacer := lipgloss.NewStyle().Width(spacerWidth).Render("")

	return lipgloss.NewStyle().
		Foreground(colors.Text).
		Background(colors.Surface0).
		Width(terminalWidth).
		Render(lipgloss.JoinHorizontal(lipgloss.Left, leftSide, spacer, rightSide))
}
