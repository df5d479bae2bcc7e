package portfolio

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit     key.Binding
	Menu     key.Binding
	Close    key.Binding
	Audio    key.Binding
	Up       key.Binding
	Down     key.Binding
	Select   key.Binding
	NextCard key.Binding
	PrevCard key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Menu: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "menu"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Audio: key.NewBinding(
			key.WithKeys("a", "ctrl+s"),
			key.WithHelp("a", "audio"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "go"),
		),
		NextCard: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "projects"),
		),
		PrevCard: key.NewBinding(
			key.WithKeys("shift+tab"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Menu, k.Audio, k.NextCard, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Close, k.Select}}
}
