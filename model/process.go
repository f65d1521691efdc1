package model

import "strconv"

// NoFilter is the FilterUID value that lets every process through.
const NoFilter = -1

// ProcessRecord is one reading of a process taken by a single sampling pass.
// Records are never carried over to the next pass; only CPU and PMem are
// filled in after the read.
type ProcessRecord struct {
	Pid     int
	Uid     uint32
	User    string // resolved name, empty when the uid has no passwd entry
	Comm    string // program name from /proc/<pid>/stat
	Cmd     string // full command line
	State   byte
	PPid    int
	Pgrp    int
	Session int
	TTY     int

	UTime     uint64 // ticks
	STime     uint64 // ticks
	Priority  int64
	Nice      int64
	StartTime uint64 // ticks since boot

	VSizeKB  int64
	RSSKB    int64
	SharedKB int64

	CPU  float64
	PMem float64
}

// TotalTime is the CPU time consumed in user and kernel mode, in ticks.
func (r *ProcessRecord) TotalTime() uint64 {
	return r.UTime + r.STime
}

// UserLabel is what the USER column shows and sorts by.
func (r *ProcessRecord) UserLabel() string {
	if r.User != "" {
		return r.User
	}
	return strconv.FormatUint(uint64(r.Uid), 10)
}

// CommandLabel returns the command line, or [comm] for processes without
// one (kernel threads, zombies).
func (r *ProcessRecord) CommandLabel() string {
	if r.Cmd != "" {
		return r.Cmd
	}
	return "[" + r.Comm + "]"
}

// CPUHistory maps a pid to the total CPU ticks it had at the previous pass.
type CPUHistory map[int]uint64
