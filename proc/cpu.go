package proc

import (
	"github.com/prometheus/procfs"
	"github.com/tklauser/go-sysconf"
)

// CPUTimes are the aggregate CPU-state counters from /proc/stat, in seconds.
type CPUTimes struct {
	User, Nice, System, Idle, IOWait, IRQ, SoftIRQ, Steal float64
}

func (t CPUTimes) Total() float64 {
	return t.User + t.Nice + t.System + t.Idle + t.IOWait + t.IRQ + t.SoftIRQ + t.Steal
}

// CPUPercent is the share of each CPU state over a sampling window.
type CPUPercent struct {
	User, System, Nice, Idle, IOWait, IRQ, SoftIRQ, Steal float64
}

// ReadCPUTimes returns the aggregate counters and the boot time.
func ReadCPUTimes(fs procfs.FS) (CPUTimes, uint64, error) {
	st, err := fs.Stat()
	if err != nil {
		return CPUTimes{}, 0, err
	}
	c := st.CPUTotal
	return CPUTimes{
		User:    c.User,
		Nice:    c.Nice,
		System:  c.System,
		Idle:    c.Idle,
		IOWait:  c.Iowait,
		IRQ:     c.IRQ,
		SoftIRQ: c.SoftIRQ,
		Steal:   c.Steal,
	}, st.BootTime, nil
}

// Percent splits the time elapsed between prev and cur across CPU states.
// With a zero prev the split covers everything since boot.
func Percent(prev, cur CPUTimes) CPUPercent {
	total := cur.Total() - prev.Total()
	if total <= 0 {
		return CPUPercent{Idle: 100}
	}
	pct := func(c, p float64) float64 {
		d := c - p
		if d < 0 {
			d = 0
		}
		return 100 * d / total
	}
	return CPUPercent{
		User:    pct(cur.User, prev.User),
		System:  pct(cur.System, prev.System),
		Nice:    pct(cur.Nice, prev.Nice),
		Idle:    pct(cur.Idle, prev.Idle),
		IOWait:  pct(cur.IOWait, prev.IOWait),
		IRQ:     pct(cur.IRQ, prev.IRQ),
		SoftIRQ: pct(cur.SoftIRQ, prev.SoftIRQ),
		Steal:   pct(cur.Steal, prev.Steal),
	}
}

// DetectHZ returns the kernel clock tick rate (CLK_TCK), falling back to 100.
func DetectHZ() uint64 {
	hz, err := sysconf.Sysconf(sysconf.SC_CLK_TCK)
	if err != nil || hz <= 0 {
		return 100
	}
	return uint64(hz)
}
