package components

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/allbin/serialterm/internal/tui/colors"
	"github.com/allbin/serialterm/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// TxStatus is the outcome of handing a payload to the session's write queue
type TxStatus int

const (
	TxNone TxStatus = iota
	TxQueued
	TxRejected
)

// DataReceivedMsg is one chunk shown in the terminal: read from the port, or typed by the user
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
	IsTX      bool
	Status    TxStatus
}

// NoticeMsg is a line of feedback about a command, shown inline with the data
type NoticeMsg struct {
	Timestamp time.Time
	Text      string
	IsError   bool
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	var indicator string
	if msg.IsTX {
		var txColor lipgloss.Color
		var statusText string

		switch msg.Status {
		case TxQueued:
			txColor = colors.Green
			statusText = "TX ✓"
		case TxRejected:
			txColor = colors.Red
			statusText = "TX ✗"
		default:
			txColor = colors.Peach
			statusText = "TX"
		}

		indicator = lipgloss.NewStyle().
			Foreground(txColor).
			Bold(true).
			Render("↗ " + statusText)
	} else {
		indicator = lipgloss.NewStyle().
			Foreground(colors.Sky).
			Bold(true).
			Render("↙ RX")
	}

	var parts []string
	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}
	if df.mode.ShowASCII {
		parts = append(parts, "ASCII: "+PrintableASCII(msg.Data))
	}
	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	return fmt.Sprintf("%s %s: %s", formatTimestamp(msg.Timestamp), indicator, strings.Join(parts, "  "))
}

func (df *DataFormatter) FormatNotice(msg NoticeMsg) string {
	style := styles.NoticeStyle
	if msg.IsError {
		style = styles.ErrorStyle
	}
	return fmt.Sprintf("%s %s", formatTimestamp(msg.Timestamp), style.Render("• "+msg.Text))
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}

func formatTimestamp(ts time.Time) string {
	return lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", ts.Format("15:04:05.000")))
}

// PrintableASCII replaces every byte outside printable ASCII with a dot
func PrintableASCII(data []byte) string {
	var b strings.Builder
	b.Grow(len(data))
	for _, c := range data {
		if c >= 32 && c <= 126 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	return b.String()
}

// PrintableText replaces control runes so decoded text cannot drive the terminal
func PrintableText(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return '.'
		}
		return r
	}, s)
}
