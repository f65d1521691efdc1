package proc

import (
	"fmt"
	"os"
	"strings"

	"github.com/Alisser2001/sentinel/model"
	"github.com/prometheus/procfs"
)

var pageKB = int64(os.Getpagesize() / 1024)

// ReadProcess builds a record from /proc/<pid>/stat, status and cmdline.
// An error means the process is gone or its files could not be parsed; the
// caller skips it. A missing command line is not an error.
func ReadProcess(p procfs.Proc) (model.ProcessRecord, error) {
	stat, err := p.Stat()
	if err != nil {
		return model.ProcessRecord{}, fmt.Errorf("read stat of %d: %w", p.PID, err)
	}
	if stat.State == "" {
		return model.ProcessRecord{}, fmt.Errorf("read stat of %d: empty state", p.PID)
	}

	status, err := p.NewStatus()
	if err != nil {
		return model.ProcessRecord{}, fmt.Errorf("read status of %d: %w", p.PID, err)
	}

	rec := model.ProcessRecord{
		Pid:       stat.PID,
		Uid:       uint32(status.UIDs[1]),
		Comm:      stat.Comm,
		State:     stat.State[0],
		PPid:      stat.PPID,
		Pgrp:      stat.PGRP,
		Session:   stat.Session,
		TTY:       stat.TTY,
		UTime:     uint64(stat.UTime),
		STime:     uint64(stat.STime),
		Priority:  int64(stat.Priority),
		Nice:      int64(stat.Nice),
		StartTime: stat.Starttime,
		VSizeKB:   int64(stat.VSize / 1024),
		RSSKB:     int64(stat.RSS) * pageKB,
		SharedKB:  int64((status.RssFile + status.RssShmem) / 1024),
	}
	rec.User = UIDToName(rec.Uid)

	if cmdline, err := p.CmdLine(); err == nil && len(cmdline) > 0 {
		rec.Cmd = strings.Join(cmdline, " ")
	}

	return rec, nil
}
