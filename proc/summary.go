package proc

import (
	"time"

	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"
)

// Summary is the system-wide header of one refresh. Every field is read
// from its own source; a failed read leaves the field's OK flag false so
// the display can print a placeholder instead.
type Summary struct {
	Time time.Time

	Uptime   time.Duration
	UptimeOK bool

	Users   int
	UsersOK bool

	Load   [3]float64
	LoadOK bool

	CPU   CPUPercent
	CPUOK bool

	Mem   MemInfo
	MemOK bool

	BootTime time.Time
}

// SystemReader reads the summary sources.
type SystemReader struct {
	fs procfs.FS

	uptime func() (time.Duration, error)
	users  func() (int, error)
	now    func() time.Time
}

func NewSystemReader(fs procfs.FS) *SystemReader {
	return &SystemReader{
		fs:     fs,
		uptime: ReadUptime,
		users:  ReadUserCount,
		now:    time.Now,
	}
}

// ReadSummary reads every summary source once. prev are the CPU counters
// returned by the previous call (zero on the first); the returned counters
// feed the next call.
func (r *SystemReader) ReadSummary(prev CPUTimes) (Summary, CPUTimes) {
	s := Summary{Time: r.now()}
	log := logrus.WithField("component", "summary")

	if up, err := r.uptime(); err == nil {
		s.Uptime, s.UptimeOK = up, true
	} else {
		log.WithError(err).Warn("uptime unavailable")
	}

	if n, err := r.users(); err == nil {
		s.Users, s.UsersOK = n, true
	} else {
		log.WithError(err).Debug("user sessions unavailable")
	}

	if load, err := ReadLoadavg(r.fs); err == nil {
		s.Load, s.LoadOK = load, true
	} else {
		log.WithError(err).Warn("load average unavailable")
	}

	cur := prev
	if times, boot, err := ReadCPUTimes(r.fs); err == nil {
		s.CPU, s.CPUOK = Percent(prev, times), true
		if boot > 0 {
			s.BootTime = time.Unix(int64(boot), 0)
		}
		cur = times
	} else {
		log.WithError(err).Warn("cpu counters unavailable")
	}

	if mem, err := ReadMemory(r.fs); err == nil {
		s.Mem, s.MemOK = mem, true
	} else {
		log.WithError(err).Warn("meminfo unavailable")
	}

	return s, cur
}
