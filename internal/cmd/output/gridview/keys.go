package gridview

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up             key.Binding
	Down           key.Binding
	Top            key.Binding
	Bottom         key.Binding
	Left           key.Binding
	Right          key.Binding
	Select         key.Binding
	RangeUp        key.Binding
	RangeDown      key.Binding
	RangeToAnchor  key.Binding
	ToggleAll      key.Binding
	SelectMatching key.Binding
	Clear          key.Binding
	Expand         key.Binding
	Search         key.Binding
	Sort           key.Binding
	SortMulti      key.Binding
	Hide           key.Binding
	ShowAll        key.Binding
	Narrow         key.Binding
	Widen          key.Binding
	NextPage       key.Binding
	PrevPage       key.Binding
	ClearFilters   key.Binding
	Virtual        key.Binding
	Copy           key.Binding
	Theme          key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:             key.NewBinding(key.WithKeys("up", "k", "ctrl+p"), key.WithHelp("↑/k", "up")),
		Down:           key.NewBinding(key.WithKeys("down", "j", "ctrl+n"), key.WithHelp("↓/j", "down")),
		Top:            key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Left:           key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev column")),
		Right:          key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next column")),
		Select:         key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
		RangeUp:        key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("shift+↑", "extend up")),
		RangeDown:      key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("shift+↓", "extend down")),
		RangeToAnchor:  key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "range to cursor")),
		ToggleAll:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "toggle page")),
		SelectMatching: key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "select all matching")),
		Clear:          key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear selection")),
		Expand:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Search:         key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Sort:           key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		SortMulti:      key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "add sort")),
		Hide:           key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "hide column")),
		ShowAll:        key.NewBinding(key.WithKeys("+"), key.WithHelp("+", "show all")),
		Narrow:         key.NewBinding(key.WithKeys("["), key.WithHelp("[", "narrow")),
		Widen:          key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "widen")),
		NextPage:       key.NewBinding(key.WithKeys("n", "pgdown"), key.WithHelp("n", "next page")),
		PrevPage:       key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p", "prev page")),
		ClearFilters:   key.NewBinding(key.WithKeys("F"), key.WithHelp("F", "clear filters")),
		Virtual:        key.NewBinding(key.WithKeys("V"), key.WithHelp("V", "virtual scroll")),
		Copy:           key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy ids")),
		Theme:          key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Help:           key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:           key.NewBinding(key.WithKeys("q", "Q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Select, k.Expand, k.Search, k.Sort, k.Hide, k.NextPage, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.Left, k.Right},
		{k.Select, k.RangeUp, k.RangeDown, k.RangeToAnchor, k.ToggleAll, k.SelectMatching, k.Clear},
		{k.Expand, k.Search, k.Sort, k.SortMulti, k.ClearFilters, k.NextPage, k.PrevPage},
		{k.Hide, k.ShowAll, k.Narrow, k.Widen, k.Virtual, k.Copy, k.Theme, k.Quit},
	}
}
