package session

import "github.com/charmbracelet/bubbles/key"

// KeyMap binds keys to controller actions.
type KeyMap struct {
	Quit       key.Binding
	Confirm    key.Binding
	Backspace  key.Binding
	Clear      key.Binding
	Left       key.Binding
	Right      key.Binding
	Up         key.Binding
	Down       key.Binding
	NextRow    key.Binding
	PrevRow    key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	First      key.Binding
	Last       key.Binding
	TogglePane key.Binding
	Select     key.Binding
	Copy       key.Binding
	Dismiss    key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Confirm:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "fetch/apply")),
		Backspace:  key.NewBinding(key.WithKeys("backspace"), key.WithHelp("bksp", "delete")),
		Clear:      key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "clear field")),
		Left:       key.NewBinding(key.WithKeys("left", "tab"), key.WithHelp("←/tab", "prev field")),
		Right:      key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next field")),
		Up:         key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "field above")),
		Down:       key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "field below")),
		NextRow:    key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "next row")),
		PrevRow:    key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "prev row")),
		PageUp:     key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "page down")),
		First:      key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first row")),
		Last:       key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last row")),
		TogglePane: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "switch pane")),
		Select:     key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "select asset")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "copy link")),
		Dismiss:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "dismiss")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Left, k.Right, k.NextRow, k.PrevRow, k.TogglePane, k.Select, k.Copy, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Confirm, k.Backspace, k.Clear, k.Dismiss},
		{k.Left, k.Right, k.Up, k.Down},
		{k.NextRow, k.PrevRow, k.PageUp, k.PageDown, k.First, k.Last},
		{k.TogglePane, k.Select, k.Copy, k.Quit},
	}
}
