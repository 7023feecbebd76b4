package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings shown in the help bar
type keyMap struct {
	Next      key.Binding
	Prev      key.Binding
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	FastLeft  key.Binding
	FastRight key.Binding
	FastUp    key.Binding
	FastDown  key.Binding
	Select    key.Binding
	Calculate key.Binding
	Help      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Next:      key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		Prev:      key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev field")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "north")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "south")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "west / less")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "east / more")),
		FastLeft:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("shift+←", "big step")),
		FastRight: key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("shift+→", "big step")),
		FastUp:    key.NewBinding(key.WithKeys("shift+up", "K")),
		FastDown:  key.NewBinding(key.WithKeys("shift+down", "J")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Calculate: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "calculate")),
		Help:      key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more keys")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Select, k.Calculate, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right},
		{k.FastLeft, k.FastRight, k.Select},
		{k.Next, k.Prev, k.Calculate},
		{k.Help, k.Quit},
	}
}
