package proc

import (
	"errors"
	"os"
	"os/user"
	"testing"
	"time"

	"github.com/Alisser2001/sentinel/proc/proctest"
	"github.com/prometheus/procfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubUsers(t *testing.T, byID map[string]string) {
	t.Helper()
	resetUserCache()
	t.Cleanup(func() {
		lookupID = user.LookupId
		lookupName = user.Lookup
		resetUserCache()
	})
	lookupID = func(uid string) (*user.User, error) {
		if name, ok := byID[uid]; ok {
			return &user.User{Uid: uid, Username: name}, nil
		}
		return nil, user.UnknownUserIdError(0)
	}
	lookupName = func(name string) (*user.User, error) {
		for uid, n := range byID {
			if n == name {
				return &user.User{Uid: uid, Username: n}, nil
			}
		}
		return nil, user.UnknownUserError(name)
	}
}

func TestReadProcess(t *testing.T) {
	stubUsers(t, map[string]string{"1000": "alice"})
	fx := proctest.New(t)
	fx.AddProcess(proctest.Process{
		Pid: 42, PPid: 1, Pgrp: 42, Session: 40, Uid: 1000,
		Comm: "my prog", Cmdline: []string{"/usr/bin/prog", "--flag"},
		State: 'R', TTY: 136<<8 | 2, UTime: 150, STime: 50,
		Priority: 20, Nice: -5, StartTime: 9000,
		VSize: 10 << 20, RSSPages: 256, RssFileKB: 300, RssShmemKB: 100,
	})

	fs, err := procfs.NewFS(fx.Root)
	require.NoError(t, err)
	p, err := fs.Proc(42)
	require.NoError(t, err)

	rec, err := ReadProcess(p)
	require.NoError(t, err)

	assert.Equal(t, 42, rec.Pid)
	assert.Equal(t, uint32(1000), rec.Uid)
	assert.Equal(t, "alice", rec.User)
	assert.Equal(t, "my prog", rec.Comm)
	assert.Equal(t, "/usr/bin/prog --flag", rec.Cmd)
	assert.Equal(t, byte('R'), rec.State)
	assert.Equal(t, 1, rec.PPid)
	assert.Equal(t, 42, rec.Pgrp)
	assert.Equal(t, 40, rec.Session)
	assert.Equal(t, 136<<8|2, rec.TTY)
	assert.Equal(t, uint64(200), rec.TotalTime())
	assert.Equal(t, int64(20), rec.Priority)
	assert.Equal(t, int64(-5), rec.Nice)
	assert.Equal(t, uint64(9000), rec.StartTime)
	assert.Equal(t, int64(10<<10), rec.VSizeKB)
	assert.Equal(t, 256*int64(os.Getpagesize()/1024), rec.RSSKB)
	assert.Equal(t, int64(400), rec.SharedKB)
}

func TestReadProcessKernelThreadHasNoCmdline(t *testing.T) {
	stubUsers(t, map[string]string{"0": "root"})
	fx := proctest.New(t)
	fx.AddProcess(proctest.Process{Pid: 2, Comm: "kthreadd"})

	fs, err := procfs.NewFS(fx.Root)
	require.NoError(t, err)
	p, err := fs.Proc(2)
	require.NoError(t, err)

	rec, err := ReadProcess(p)
	require.NoError(t, err)
	assert.Empty(t, rec.Cmd)
	assert.Equal(t, "[kthreadd]", rec.CommandLabel())
	assert.Equal(t, "root", rec.User)
}

func TestReadProcessVanished(t *testing.T) {
	fx := proctest.New(t)
	fx.AddProcess(proctest.Process{Pid: 77})
	fs, err := procfs.NewFS(fx.Root)
	require.NoError(t, err)
	p, err := fs.Proc(77)
	require.NoError(t, err)

	fx.RemoveProcess(77)
	_, err = ReadProcess(p)
	assert.Error(t, err)
}

func TestReadProcessMalformedStat(t *testing.T) {
	fx := proctest.New(t)
	fx.AddProcess(proctest.Process{Pid: 78})
	fx.WriteFile("78/stat", "78 (broken\n")
	fs, err := procfs.NewFS(fx.Root)
	require.NoError(t, err)
	p, err := fs.Proc(78)
	require.NoError(t, err)

	_, err = ReadProcess(p)
	assert.Error(t, err)
}

func TestUIDToNameCachesAndTruncates(t *testing.T) {
	calls := 0
	stubUsers(t, nil)
	lookupID = func(uid string) (*user.User, error) {
		calls++
		if uid == "5" {
			return &user.User{Uid: uid, Username: "a-very-long-user-name-indeed"}, nil
		}
		return nil, errors.New("no such user")
	}

	assert.Equal(t, "a-very-long-user", UIDToName(5))
	assert.Equal(t, "a-very-long-user", UIDToName(5))
	assert.Empty(t, UIDToName(6))
	assert.Empty(t, UIDToName(6))
	assert.Equal(t, 2, calls)
}

func TestLookupUID(t *testing.T) {
	stubUsers(t, map[string]string{"1000": "alice"})

	uid, err := LookupUID("alice")
	require.NoError(t, err)
	assert.Equal(t, 1000, uid)

	uid, err = LookupUID(" 33 ")
	require.NoError(t, err)
	assert.Equal(t, 33, uid)

	_, err = LookupUID("mallory")
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = LookupUID("")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestReadSummary(t *testing.T) {
	fx := proctest.New(t)
	fs, err := procfs.NewFS(fx.Root)
	require.NoError(t, err)

	r := NewSystemReader(fs)
	r.uptime = func() (time.Duration, error) { return 90 * time.Minute, nil }
	r.users = func() (int, error) { return 0, errors.New("no utmp") }

	first, times := r.ReadSummary(CPUTimes{})
	assert.True(t, first.UptimeOK)
	assert.Equal(t, 90*time.Minute, first.Uptime)
	assert.False(t, first.UsersOK)
	require.True(t, first.LoadOK)
	assert.Equal(t, [3]float64{0.10, 0.20, 0.30}, first.Load)
	require.True(t, first.MemOK)
	assert.Equal(t, int64(16000000), first.Mem.TotalKB)
	assert.Equal(t, int64(4000000), first.Mem.BuffCacheKB)
	assert.Equal(t, int64(8000000), first.Mem.UsedKB())
	assert.Equal(t, int64(500000), first.Mem.SwapUsedKB())
	assert.Equal(t, time.Unix(1760860800, 0), first.BootTime)
	require.True(t, first.CPUOK)
	assert.InDelta(t, 100*1000.0/9530.0, first.CPU.User, 1e-6)

	// 100 more ticks: 40 user, 10 system, 50 idle.
	fx.SetCPU(1040, 10, 510, 8050, 20)
	second, _ := r.ReadSummary(times)
	assert.InDelta(t, 40, second.CPU.User, 1e-6)
	assert.InDelta(t, 10, second.CPU.System, 1e-6)
	assert.InDelta(t, 50, second.CPU.Idle, 1e-6)
	assert.InDelta(t, 0, second.CPU.IOWait, 1e-6)
}

func TestReadSummaryDegradesPerField(t *testing.T) {
	fx := proctest.New(t)
	require.NoError(t, os.Remove(fx.Root+"/loadavg"))
	require.NoError(t, os.Remove(fx.Root+"/meminfo"))
	fs, err := procfs.NewFS(fx.Root)
	require.NoError(t, err)

	r := NewSystemReader(fs)
	r.uptime = func() (time.Duration, error) { return 0, errors.New("boom") }
	r.users = func() (int, error) { return 3, nil }

	s, _ := r.ReadSummary(CPUTimes{})
	assert.False(t, s.LoadOK)
	assert.False(t, s.MemOK)
	assert.False(t, s.UptimeOK)
	assert.True(t, s.UsersOK)
	assert.Equal(t, 3, s.Users)
	assert.True(t, s.CPUOK)
}

func TestPercentWithoutElapsedTimeIsIdle(t *testing.T) {
	times := CPUTimes{User: 5, Idle: 5}
	assert.Equal(t, CPUPercent{Idle: 100}, Percent(times, times))
}
