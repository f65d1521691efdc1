// Package proctest writes fake procfs trees for tests.
package proctest

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// Process describes the files written for one fake pid.
type Process struct {
	Pid, PPid, Pgrp, Session int
	Uid                      uint32
	Comm                     string
	Cmdline                  []string
	State                    byte
	TTY                      int
	UTime, STime             uint64
	Priority, Nice           int
	StartTime                uint64
	VSize                    uint64 // bytes
	RSSPages                 int64
	RssFileKB, RssShmemKB    uint64
}

// Fixture is a procfs root under a test temp dir.
type Fixture struct {
	Root string
	t    testing.TB
}

// New creates a root holding stat, meminfo and loadavg.
func New(t testing.TB) *Fixture {
	t.Helper()
	f := &Fixture{Root: t.TempDir(), t: t}
	f.SetCPU(1000, 10, 500, 8000, 20)
	f.WriteFile("meminfo", strings.Join([]string{
		"MemTotal:       16000000 kB",
		"MemFree:         4000000 kB",
		"MemAvailable:    9000000 kB",
		"Buffers:          500000 kB",
		"Cached:          3000000 kB",
		"SReclaimable:     500000 kB",
		"SwapTotal:       2000000 kB",
		"SwapFree:        1500000 kB",
	}, "\n")+"\n")
	f.WriteFile("loadavg", "0.10 0.20 0.30 1/200 12345\n")
	return f
}

// SetCPU rewrites the aggregate cpu line of /proc/stat (values in ticks).
func (f *Fixture) SetCPU(user, nice, system, idle, iowait uint64) {
	f.t.Helper()
	f.WriteFile("stat", fmt.Sprintf(
		"cpu  %d %d %d %d %d 0 0 0 0 0\ncpu0 %d %d %d %d %d 0 0 0 0 0\nctxt 100\nbtime 1760860800\nprocesses 100\nprocs_running 1\nprocs_blocked 0\n",
		user, nice, system, idle, iowait, user, nice, system, idle, iowait))
}

// AddProcess writes stat, status and cmdline for p, replacing any previous
// files of the same pid.
func (f *Fixture) AddProcess(p Process) {
	f.t.Helper()
	if p.State == 0 {
		p.State = 'S'
	}
	if p.Comm == "" {
		p.Comm = "proc" + strconv.Itoa(p.Pid)
	}
	if p.Priority == 0 {
		p.Priority = 20
	}
	dir := strconv.Itoa(p.Pid)

	stat := fmt.Sprintf("%d (%s) %c %d %d %d %d -1 4194560 100 0 0 0 %d %d 0 0 %d %d 1 0 %d %d %d 18446744073709551615 "+
		"1 1 0 0 0 0 0 4096 1260 0 0 0 17 0 0 0 0 0 0 0 0 0 0 0 0 0 0\n",
		p.Pid, p.Comm, p.State, p.PPid, p.Pgrp, p.Session, p.TTY,
		p.UTime, p.STime, p.Priority, p.Nice, p.StartTime, p.VSize, p.RSSPages)
	f.WriteFile(filepath.Join(dir, "stat"), stat)

	uid := strconv.FormatUint(uint64(p.Uid), 10)
	status := strings.Join([]string{
		"Name:\t" + p.Comm,
		"Umask:\t0022",
		"State:\t" + string(p.State),
		"Tgid:\t" + strconv.Itoa(p.Pid),
		"Pid:\t" + strconv.Itoa(p.Pid),
		"PPid:\t" + strconv.Itoa(p.PPid),
		"Uid:\t" + uid + "\t" + uid + "\t" + uid + "\t" + uid,
		"Gid:\t0\t0\t0\t0",
		fmt.Sprintf("VmRSS:\t%8d kB", uint64(p.RSSPages)*4),
		fmt.Sprintf("RssFile:\t%8d kB", p.RssFileKB),
		fmt.Sprintf("RssShmem:\t%8d kB", p.RssShmemKB),
		"Threads:\t1",
	}, "\n") + "\n"
	f.WriteFile(filepath.Join(dir, "status"), status)

	var cmdline string
	for _, arg := range p.Cmdline {
		cmdline += arg + "\x00"
	}
	f.WriteFile(filepath.Join(dir, "cmdline"), cmdline)
}

// RemoveProcess deletes the pid directory, as if the process exited.
func (f *Fixture) RemoveProcess(pid int) {
	f.t.Helper()
	if err := os.RemoveAll(filepath.Join(f.Root, strconv.Itoa(pid))); err != nil {
		f.t.Fatalf("remove pid %d: %v", pid, err)
	}
}

// WriteFile writes content to a path relative to the root.
func (f *Fixture) WriteFile(rel, content string) {
	f.t.Helper()
	path := filepath.Join(f.Root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		f.t.Fatalf("mkdir for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatalf("write %s: %v", rel, err)
	}
}
