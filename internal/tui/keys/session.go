package keys

import "github.com/charmbracelet/bubbles/key"

// SessionKeys adds sending and buffer commands to the terminal keys
type SessionKeys struct {
	TerminalKeys
	Enter          key.Binding
	ToggleSendMode key.Binding
	Save           key.Binding
	ToggleDump     key.Binding
	Search         key.Binding
	Results        key.Binding
	CloseSession   key.Binding
	OpenSession    key.Binding
}

func NewSessionKeys() SessionKeys {
	return SessionKeys{
		TerminalKeys: NewTerminalKeys(),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "send/confirm"),
		),
		ToggleSendMode: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "toggle send mode"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save buffer"),
		),
		ToggleDump: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "toggle dump after save"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search buffer"),
		),
		Results: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "toggle results"),
		),
		CloseSession: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "close session"),
		),
		OpenSession: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "reopen session"),
		),
	}
}

func (k SessionKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.InsertMode, k.Save, k.Search, k.Quit}
}

func (k SessionKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.InsertMode, k.Escape, k.Enter, k.ToggleSendMode},
		{k.Save, k.ToggleDump, k.Search, k.Results, k.Clear},
		{k.ToggleHex, k.ToggleASCII, k.GotoTop, k.GotoBottom, k.Up, k.Down},
		{k.CloseSession, k.OpenSession, k.Help, k.Quit},
	}
}
