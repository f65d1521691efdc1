package ui

import (
	"errors"
	"syscall"
	"testing"
	"time"

	"github.com/Alisser2001/sentinel/model"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

type fakeSignals struct {
	pending syscall.Signal
}

func (f *fakeSignals) Drain() syscall.Signal {
	s := f.pending
	f.pending = 0
	return s
}

func newTestModel(t *testing.T, sig SignalSource, size SizeFunc) Model {
	t.Helper()
	c, _ := newTestController(t, []model.ProcessRecord{
		rec(1, 1000, "alice", 10), rec(2, 1001, "bob", 20), rec(3, 1000, "alice", 30),
	})
	if size == nil {
		size = func() (int, int, error) { return 160, 30, nil }
	}
	return NewModel(c, NewScreen(160, 30), sig, size, time.Second)
}

func step(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	out, ok := next.(Model)
	require.True(t, ok)
	return out, cmd
}

func keys(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestInitRefreshesImmediately(t *testing.T) {
	m := newTestModel(t, nil, nil)

	msg := m.Init()()
	require.IsType(t, tickMsg{}, msg)

	m, cmd := step(t, m, msg)
	assert.NotNil(t, cmd, "next tick is armed")
	assert.Contains(t, m.View(), "COMMAND")
	assert.Len(t, m.Controller().Rows(), 3)
	assert.NoError(t, m.Err())
}

func TestStaleTickIsIgnored(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m, _ = step(t, m, m.Init()())

	m, cmd := step(t, m, ReloadMsg{Interval: 3 * time.Second})
	assert.NotNil(t, cmd)

	_, cmd = step(t, m, tickMsg{seq: 0})
	assert.Nil(t, cmd)
	_, cmd = step(t, m, tickMsg{seq: 1})
	assert.NotNil(t, cmd)
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m, _ = step(t, m, m.Init()())

	m, cmd := step(t, m, keys("q"))
	assert.True(t, isQuit(cmd))
	assert.NoError(t, m.Err())
	assert.Empty(t, m.View())
}

func TestSortKeyRerenders(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m, _ = step(t, m, m.Init()())

	m, _ = step(t, m, keys("p"))
	assert.Equal(t, model.FieldPID, m.Controller().Display().Column)
	assert.Equal(t, []int{3, 2, 1}, pids(m.Controller().Rows()))
	assert.Contains(t, m.View(), "Sorted by PID descending")
}

func TestUserPromptThroughKeys(t *testing.T) {
	c, _ := newTestController(t,
		[]model.ProcessRecord{rec(1, 1000, "alice", 10), rec(2, 1001, "bob", 20), rec(3, 1000, "alice", 30)},
		[]model.ProcessRecord{rec(1, 1000, "alice", 15), rec(2, 1001, "bob", 20), rec(3, 1000, "alice", 90)},
	)
	m := NewModel(c, NewScreen(160, 30), nil, func() (int, int, error) { return 160, 30, nil }, time.Second)
	m, _ = step(t, m, m.Init()())

	m, _ = step(t, m, keys("U"))
	require.Equal(t, Prompting, m.Controller().State())

	for _, r := range "alice" {
		m, _ = step(t, m, keys(string(r)))
	}
	assert.Contains(t, m.View(), "Which user (blank for all): alice")

	// A tick while prompting keeps the prompt open.
	m, _ = step(t, m, tickMsg{seq: 0})
	assert.Equal(t, Prompting, m.Controller().State())

	m, _ = step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, IdleWait, m.Controller().State())
	rows := m.Controller().Rows()
	assert.Equal(t, []int{3, 1}, pids(rows), "pid 3 used 60 ticks since the first pass, pid 1 used 5")
	assert.InDelta(t, 60, rows[0].CPU, 1e-9)
}

func TestPromptEscapeCancels(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m, _ = step(t, m, m.Init()())

	m, _ = step(t, m, keys("f"))
	m, _ = step(t, m, keys("q"))
	m, cmd := step(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, isQuit(cmd), "q inside a prompt is text")
	assert.Equal(t, IdleWait, m.Controller().State())
	assert.Equal(t, model.AllFields, m.Controller().Display().Mask)
}

func TestResizeSignalRequeriesSize(t *testing.T) {
	sig := &fakeSignals{}
	m := newTestModel(t, sig, func() (int, int, error) { return 100, 12, nil })
	m, _ = step(t, m, m.Init()())

	sig.pending = unix.SIGWINCH
	m, cmd := step(t, m, SignalMsg{})
	assert.False(t, isQuit(cmd))
	w, h := m.screen.Size()
	assert.Equal(t, 100, w)
	assert.Equal(t, 12, h)
	assert.NoError(t, m.Err())
}

func TestResizeQueryFailureIsFatal(t *testing.T) {
	sig := &fakeSignals{}
	m := newTestModel(t, sig, func() (int, int, error) { return 0, 0, errors.New("not a tty") })
	m, _ = step(t, m, m.Init()())

	sig.pending = unix.SIGWINCH
	m, cmd := step(t, m, SignalMsg{})
	assert.True(t, isQuit(cmd))
	assert.ErrorContains(t, m.Err(), "not a tty")
}

func TestTerminatingSignal(t *testing.T) {
	for _, s := range []syscall.Signal{unix.SIGTERM, unix.SIGINT, unix.SIGHUP, unix.SIGQUIT} {
		sig := &fakeSignals{pending: s}
		m := newTestModel(t, sig, nil)
		m, _ = step(t, m, m.Init()())

		m, cmd := step(t, m, SignalMsg{})
		assert.True(t, isQuit(cmd), unix.SignalName(s))
		assert.ErrorIs(t, m.Err(), ErrTerminated)
		assert.Equal(t, Terminating, m.Controller().State())
	}
}

func TestSamplerFailureStopsProgram(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.ctrl.sampler.(*fakeSampler).err = errors.New("no /proc")

	m, cmd := step(t, m, m.Init()())
	assert.True(t, isQuit(cmd))
	assert.ErrorContains(t, m.Err(), "no /proc")
}

func TestRenderFailureStopsProgram(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m.screen.Close()

	m, cmd := step(t, m, m.Init()())
	assert.True(t, isQuit(cmd))
	assert.ErrorIs(t, m.Err(), ErrSurfaceClosed)
}

func TestWindowSizeMsg(t *testing.T) {
	m := newTestModel(t, nil, nil)
	m, _ = step(t, m, m.Init()())

	m, _ = step(t, m, tea.WindowSizeMsg{Width: 90, Height: 10})
	w, h := m.screen.Size()
	assert.Equal(t, 90, w)
	assert.Equal(t, 10, h)
	assert.Len(t, m.screen.Lines(), 10)
}

func TestKeyMapResolve(t *testing.T) {
	km := DefaultKeyMap()
	cmd, field := km.Resolve(keys("m"))
	assert.Equal(t, CmdSort, cmd)
	assert.Equal(t, model.FieldMem, field)

	for k, want := range map[string]Command{
		"q": CmdQuit, ">": CmdSortNext, "<": CmdSortPrev,
		"R": CmdReverse, "U": CmdPromptUser, "=": CmdClearFilter, "f": CmdPromptField,
		"k": CmdLineUp, "G": CmdEnd, "?": CmdHelp,
		"x": CmdNone,
	} {
		got, _ := km.Resolve(keys(k))
		assert.Equal(t, want, got, k)
	}

	for _, tc := range []struct {
		msg  tea.KeyMsg
		want Command
	}{
		{tea.KeyMsg{Type: tea.KeyCtrlC}, CmdQuit},
		{tea.KeyMsg{Type: tea.KeyDown}, CmdLineDown},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, CmdPageDown},
		{tea.KeyMsg{Type: tea.KeyPgUp}, CmdPageUp},
		{tea.KeyMsg{Type: tea.KeyHome}, CmdHome},
	} {
		got, _ := km.Resolve(tc.msg)
		assert.Equal(t, tc.want, got, tc.msg.String())
	}
}
