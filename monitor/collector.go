package monitor

import (
	"fmt"

	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"
)

const DefaultProcRoot = procfs.DefaultMountPoint

// Collector takes snapshots of the process table.
type Collector struct {
	fs procfs.FS
}

func NewCollector(root string) (*Collector, error) {
	if root == "" {
		root = DefaultProcRoot
	}
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, fmt.Errorf("open procfs at %s: %w", root, err)
	}
	return &Collector{fs: fs}, nil
}

// FS exposes the procfs handle for the system summary readers.
func (c *Collector) FS() procfs.FS {
	return c.fs
}

// Sample reads every visible process. Processes that exit during the scan
// or whose files do not parse are left out. The only error is failing to
// list the process table itself.
func (c *Collector) Sample() ([]model.ProcessRecord, error) {
	procs, err := c.fs.AllProcs()
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	records := make([]model.ProcessRecord, 0, len(procs))
	for _, p := range procs {
		rec, err := proc.ReadProcess(p)
		if err != nil {
			logrus.WithField("pid", p.PID).WithError(err).Debug("skipping process")
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
