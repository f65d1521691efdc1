package ui

import (
	"github.com/Alisser2001/sentinel/model"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Command is a keyboard action understood by the Controller.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdSort
	CmdSortNext
	CmdSortPrev
	CmdReverse
	CmdPromptUser
	CmdPromptField
	CmdClearFilter
	CmdLineUp
	CmdLineDown
	CmdPageUp
	CmdPageDown
	CmdHome
	CmdEnd
	CmdHelp
)

type sortBinding struct {
	key.Binding
	field model.FieldID
}

// KeyMap lists the bindings of the idle screen.
type KeyMap struct {
	Quit        key.Binding
	Sort        []sortBinding
	SortNext    key.Binding
	SortPrev    key.Binding
	Reverse     key.Binding
	FilterUser  key.Binding
	ClearFilter key.Binding
	ToggleField key.Binding
	Up          key.Binding
	Down        key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Help        key.Binding
}

func DefaultKeyMap() KeyMap {
	sortKey := func(k string, id model.FieldID) sortBinding {
		return sortBinding{
			Binding: key.NewBinding(key.WithKeys(k), key.WithHelp(k, "sort by "+model.Fields[id].Heading)),
			field:   id,
		}
	}
	return KeyMap{
		Quit: key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Sort: []sortBinding{
			sortKey("c", model.FieldCPU),
			sortKey("m", model.FieldMem),
			sortKey("p", model.FieldPID),
			sortKey("u", model.FieldUser),
			sortKey("t", model.FieldTime),
			sortKey("v", model.FieldVirt),
			sortKey("r", model.FieldRes),
			sortKey("n", model.FieldNice),
		},
		SortNext:    key.NewBinding(key.WithKeys(">"), key.WithHelp(">", "sort by next column")),
		SortPrev:    key.NewBinding(key.WithKeys("<"), key.WithHelp("<", "sort by previous column")),
		Reverse:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reverse sort order")),
		FilterUser:  key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "show one user's processes")),
		ClearFilter: key.NewBinding(key.WithKeys("="), key.WithHelp("=", "show all users")),
		ToggleField: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "show/hide a column")),
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
		PageUp:      key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "page up")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", " "), key.WithHelp("pgdn/space", "page down")),
		Home:        key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "first row")),
		End:         key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "last row")),
		Help:        key.NewBinding(key.WithKeys("?", "h"), key.WithHelp("?/h", "toggle this help")),
	}
}

// Resolve maps a key press to a command. CmdSort carries the column.
func (k KeyMap) Resolve(msg tea.KeyMsg) (Command, model.FieldID) {
	for _, s := range k.Sort {
		if key.Matches(msg, s.Binding) {
			return CmdSort, s.field
		}
	}
	plain := []struct {
		b   key.Binding
		cmd Command
	}{
		{k.Quit, CmdQuit},
		{k.SortNext, CmdSortNext},
		{k.SortPrev, CmdSortPrev},
		{k.Reverse, CmdReverse},
		{k.FilterUser, CmdPromptUser},
		{k.ClearFilter, CmdClearFilter},
		{k.ToggleField, CmdPromptField},
		{k.Up, CmdLineUp},
		{k.Down, CmdLineDown},
		{k.PageUp, CmdPageUp},
		{k.PageDown, CmdPageDown},
		{k.Home, CmdHome},
		{k.End, CmdEnd},
		{k.Help, CmdHelp},
	}
	for _, p := range plain {
		if key.Matches(msg, p.b) {
			return p.cmd, 0
		}
	}
	return CmdNone, 0
}

// HelpLines renders the bindings as "keys  description" lines.
func (k KeyMap) HelpLines() []string {
	bindings := []key.Binding{}
	for _, s := range k.Sort {
		bindings = append(bindings, s.Binding)
	}
	bindings = append(bindings,
		k.SortPrev, k.SortNext, k.Reverse,
		k.FilterUser, k.ClearFilter, k.ToggleField,
		k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End,
		k.Help, k.Quit,
	)
	lines := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		lines = append(lines, model.Fit(h.Key, 12, true)+h.Desc)
	}
	return lines
}
