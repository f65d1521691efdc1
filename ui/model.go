package ui

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

// SizeFunc queries the terminal size.
type SizeFunc func() (width, height int, err error)

// Model is the bubbletea model of the monitor. All sampling, ranking and
// rendering happen inside Update.
type Model struct {
	ctrl      *Controller
	screen    *Screen
	keys      KeyMap
	input     textinput.Model
	signals   SignalSource
	querySize SizeFunc

	interval time.Duration
	tickSeq  int

	err error
}

func NewModel(ctrl *Controller, screen *Screen, signals SignalSource, querySize SizeFunc, interval time.Duration) Model {
	ti := textinput.New()
	ti.Prompt = ""
	ti.CharLimit = 32

	if interval <= 0 {
		interval = time.Second
	}
	ctrl.SetInterval(interval)

	return Model{
		ctrl:      ctrl,
		screen:    screen,
		keys:      DefaultKeyMap(),
		input:     ti,
		signals:   signals,
		querySize: querySize,
		interval:  interval,
	}
}

// Init asks for an immediate first refresh.
func (m Model) Init() tea.Cmd {
	seq := m.tickSeq
	return func() tea.Msg { return tickMsg{seq: seq} }
}

func (m Model) tickCmd() tea.Cmd {
	seq := m.tickSeq
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

// Err is the reason the program stopped, nil after a plain quit.
func (m Model) Err() error {
	return m.err
}

func (m Model) Controller() *Controller {
	return m.ctrl
}
