package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.ctrl.State() == Terminating {
		return m, tea.Quit
	}

	switch msg := msg.(type) {
	case tickMsg:
		// Ticks armed before an interval change are dropped.
		if msg.seq != m.tickSeq {
			return m, nil
		}
		if err := m.ctrl.Refresh(); err != nil {
			return m.fail(err)
		}
		return m.render(m.tickCmd())

	case SignalMsg:
		return m.handleSignal()

	case tea.WindowSizeMsg:
		m.screen.Resize(msg.Width, msg.Height)
		m.ctrl.Resize(msg.Width, msg.Height)
		return m.render(nil)

	case ReloadMsg:
		m.ctrl.Reload(msg)
		if msg.Interval > 0 && msg.Interval != m.interval {
			m.interval = msg.Interval
			m.tickSeq++
			return m.render(m.tickCmd())
		}
		return m.render(nil)

	case tea.KeyMsg:
		if m.ctrl.Prompt() != PromptNone {
			return m.handlePrompt(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, field := m.keys.Resolve(msg)
	if cmd == CmdNone {
		return m, nil
	}
	if !m.ctrl.Dispatch(cmd, field) {
		return m, tea.Quit
	}
	if m.ctrl.Prompt() != PromptNone {
		m.input.Reset()
		m.input.Focus()
	}
	return m.render(nil)
}

func (m Model) handlePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		m.input.Blur()
		m.ctrl.Terminate()
		return m, tea.Quit
	case tea.KeyEsc:
		m.input.Blur()
		m.ctrl.CancelPrompt()
		return m.render(nil)
	case tea.KeyEnter:
		value := m.input.Value()
		m.input.Blur()
		m.ctrl.SubmitPrompt(value)
		return m.render(nil)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetPromptInput(m.input.Value())
	return m.render(cmd)
}

func (m Model) handleSignal() (tea.Model, tea.Cmd) {
	if m.signals == nil {
		return m, nil
	}
	sig := m.signals.Drain()
	switch sig {
	case 0:
		return m, nil
	case unix.SIGWINCH:
		w, h, err := m.querySize()
		if err != nil {
			return m.fail(fmt.Errorf("query terminal size: %w", err))
		}
		m.screen.Resize(w, h)
		m.ctrl.Resize(w, h)
		return m.render(nil)
	}

	m.err = fmt.Errorf("%w: %s", ErrTerminated, unix.SignalName(sig))
	logrus.WithField("signal", unix.SignalName(sig)).Info("terminating")
	m.ctrl.Terminate()
	return m, tea.Quit
}

func (m Model) render(next tea.Cmd) (tea.Model, tea.Cmd) {
	if err := m.ctrl.Render(m.screen); err != nil {
		return m.fail(err)
	}
	return m, next
}

func (m Model) fail(err error) (tea.Model, tea.Cmd) {
	logrus.WithError(err).Error("monitor stopped")
	m.err = err
	m.ctrl.Terminate()
	return m, tea.Quit
}
