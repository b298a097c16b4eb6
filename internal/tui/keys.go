package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Add      key.Binding
	Up       key.Binding
	Down     key.Binding
	Pane     key.Binding
	Toggle   key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Clear    key.Binding
	Theme    key.Binding
	Reload   key.Binding
	Help     key.Binding
	Quit     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	Blur     key.Binding
	Yes      key.Binding
	No       key.Binding
	ForceEnd key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Add:      key.NewBinding(key.WithKeys("a", "i"), key.WithHelp("a", "add")),
		Up:       key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "down")),
		Pane:     key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "active/completed")),
		Toggle:   key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "toggle")),
		Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
		Delete:   key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "delete")),
		Clear:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "clear completed")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Submit:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc", "ctrl+g"), key.WithHelp("esc", "cancel")),
		Blur:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "save")),
		Yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
		No:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		ForceEnd: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// ShortHelp and FullHelp make keyMap a help.KeyMap for the footer.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Add, k.Toggle, k.Edit, k.Delete, k.Pane, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Add, k.Up, k.Down, k.Pane},
		{k.Toggle, k.Edit, k.Delete, k.Clear},
		{k.Theme, k.Reload, k.Help, k.Quit},
	}
}
