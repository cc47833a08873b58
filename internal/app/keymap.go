package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines global and pane-specific bindings.
type KeyMap struct {
	Quit          key.Binding
	Help          key.Binding
	ToggleFocus   key.Binding
	FocusSidebar  key.Binding
	FocusDiff     key.Binding
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	Left          key.Binding
	Right         key.Binding
	LineStart     key.Binding
	Open          key.Binding
	NextFile      key.Binding
	PrevFile      key.Binding
	NextHunk      key.Binding
	PrevHunk      key.Binding
	Search        key.Binding
	NextMatch     key.Binding
	PrevMatch     key.Binding
	Clear         key.Binding
	Viewed        key.Binding
	ToggleSidebar key.Binding
	Fullscreen    key.Binding
	Refresh       key.Binding
	CopyPath      key.Binding
}

func defaultKeyMap() KeyMap {
	return KeyMap{
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		ToggleFocus:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "switch focus")),
		FocusSidebar:  key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "focus files")),
		FocusDiff:     key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "focus diff")),
		Up:            key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/up", "move up")),
		Down:          key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/down", "move down")),
		PageUp:        key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "half page up")),
		PageDown:      key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "half page down")),
		Top:           key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("gg", "top")),
		Bottom:        key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Left:          key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h/l", "scroll sideways")),
		Right:         key.NewBinding(key.WithKeys("l", "right")),
		LineStart:     key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "line start")),
		Open:          key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open diff")),
		NextFile:      key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "next file")),
		PrevFile:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "previous file")),
		NextHunk:      key.NewBinding(key.WithKeys("}"), key.WithHelp("}", "next hunk")),
		PrevHunk:      key.NewBinding(key.WithKeys("{"), key.WithHelp("{", "previous hunk")),
		Search:        key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		NextMatch:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next match")),
		PrevMatch:     key.NewBinding(key.WithKeys("N"), key.WithHelp("N", "previous match")),
		Clear:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "clear search")),
		Viewed:        key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "toggle viewed")),
		ToggleSidebar: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "toggle files")),
		Fullscreen:    key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "cycle fullscreen")),
		Refresh:       key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		CopyPath:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy path")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.PageDown, k.PageUp, k.Top, k.Bottom, k.Left, k.LineStart},
		{k.NextFile, k.PrevFile, k.NextHunk, k.PrevHunk, k.Open, k.Viewed},
		{k.Search, k.NextMatch, k.PrevMatch, k.Clear},
		{k.ToggleFocus, k.FocusSidebar, k.FocusDiff, k.ToggleSidebar, k.Fullscreen},
		{k.Refresh, k.CopyPath, k.Help, k.Quit},
	}
}
