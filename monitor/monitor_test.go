package monitor

import (
	"testing"

	"github.com/Alisser2001/sentinel/config"
	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/Alisser2001/sentinel/proc/proctest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestCollectorSample(t *testing.T) {
	fx := proctest.New(t)
	fx.AddProcess(proctest.Process{Pid: 1, Comm: "init", UTime: 10, RSSPages: 100})
	fx.AddProcess(proctest.Process{Pid: 50, Comm: "worker", State: 'R', Cmdline: []string{"worker", "-v"}})
	fx.AddProcess(proctest.Process{Pid: 60, Comm: "broken"})
	fx.WriteFile("60/stat", "garbage")
	fx.WriteFile("self", "not a pid")

	c, err := NewCollector(fx.Root)
	require.NoError(t, err)

	records, err := c.Sample()
	require.NoError(t, err)
	got := make(map[int]model.ProcessRecord)
	for _, r := range records {
		got[r.Pid] = r
	}
	assert.Len(t, got, 2, "malformed records are skipped")
	assert.Equal(t, "init", got[1].Comm)
	assert.Equal(t, "worker -v", got[50].Cmd)

	fx.RemoveProcess(50)
	records, err = c.Sample()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNewCollectorMissingRoot(t *testing.T) {
	_, err := NewCollector(t.TempDir() + "/missing")
	assert.Error(t, err)
}

func TestSignalWatcherKeepsMostUrgent(t *testing.T) {
	w := &SignalWatcher{}
	assert.Zero(t, w.Drain())

	w.Record(unix.SIGWINCH)
	w.Record(unix.SIGTERM)
	w.Record(unix.SIGWINCH)
	assert.Equal(t, unix.SIGTERM, w.Drain())
	assert.Zero(t, w.Drain(), "drain clears the flag")

	w.Record(unix.SIGWINCH)
	assert.Equal(t, unix.SIGWINCH, w.Drain())
}

func TestSignalWatcherDelivers(t *testing.T) {
	w := NewSignalWatcher()
	defer w.Stop()

	woke := make(chan struct{}, 1)
	w.Start(func() { woke <- struct{}{} })

	require.NoError(t, unix.Kill(unix.Getpid(), unix.SIGWINCH))
	<-woke
	assert.Equal(t, unix.SIGWINCH, w.Drain())
}

func TestDisplayFromConfig(t *testing.T) {
	cfg := config.Default("/tmp/x")
	cfg.SortField = "pid"
	cfg.SortAscending = true
	cfg.HiddenFields = []string{"tty"}
	cfg.FilterUser = "alice"

	lookup := func(name string) (int, error) {
		if name == "alice" {
			return 1000, nil
		}
		return 0, proc.ErrUnknownUser
	}

	d, err := DisplayFromConfig(cfg, lookup)
	require.NoError(t, err)
	assert.Equal(t, model.FieldPID, d.Column)
	assert.True(t, d.Ascending)
	assert.False(t, d.Mask.Has(model.FieldTTY))
	assert.Equal(t, 1000, d.FilterUID)
	assert.Equal(t, "alice", d.FilterName)

	cfg.FilterUser = "mallory"
	_, err = DisplayFromConfig(cfg, lookup)
	assert.ErrorIs(t, err, proc.ErrUnknownUser)
}

func TestReloadFromConfig(t *testing.T) {
	cfg := config.Default("/tmp/x")
	cfg.HiddenFields = []string{"start"}
	cfg.CPUThreshold = 12

	msg := ReloadFromConfig(cfg)
	assert.Equal(t, cfg.Interval, msg.Interval)
	assert.False(t, msg.Mask.Has(model.FieldStart))
	assert.InDelta(t, 12, msg.CPUThreshold, 1e-9)
}
