package ui

import (
	"fmt"
	"time"

	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/dustin/go-humanize"
)

const unknown = "?"

// FormatUptime renders an uptime the way top does: "3 days,  4:05",
// "4:05" or "17 min".
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d / (24 * time.Hour))
	hours := int(d/time.Hour) % 24
	mins := int(d/time.Minute) % 60

	out := ""
	if days > 0 {
		out = fmt.Sprintf("%d %s, ", days, plural(days, "day", "days"))
	}
	if hours > 0 {
		return out + fmt.Sprintf("%2d:%02d", hours, mins)
	}
	return out + fmt.Sprintf("%d min", mins)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func summaryClockLine(s proc.Summary) string {
	clock := s.Time.Format("15:04:05")
	if s.Time.IsZero() {
		clock = unknown
	}
	up := unknown
	if s.UptimeOK {
		up = FormatUptime(s.Uptime)
	}
	users := unknown + " users"
	if s.UsersOK {
		users = fmt.Sprintf("%d %s", s.Users, plural(s.Users, "user", "users"))
	}
	load := unknown
	if s.LoadOK {
		load = fmt.Sprintf("%.2f, %.2f, %.2f", s.Load[0], s.Load[1], s.Load[2])
	}
	return fmt.Sprintf("sentinel - %s up %s, %s, load average: %s", clock, up, users, load)
}

func summaryTasksLine(t model.TaskCounts) string {
	return fmt.Sprintf("Tasks: %d total, %d running, %d sleeping, %d stopped, %d zombie",
		t.Total, t.Running, t.Sleeping, t.Stopped, t.Zombie)
}

func summaryCPULine(s proc.Summary) string {
	if !s.CPUOK {
		return "%Cpu(s): " + unknown
	}
	c := s.CPU
	return fmt.Sprintf("%%Cpu(s): %5.1f us, %5.1f sy, %5.1f ni, %5.1f id, %5.1f wa, %5.1f hi, %5.1f si, %5.1f st",
		c.User, c.System, c.Nice, c.Idle, c.IOWait, c.IRQ, c.SoftIRQ, c.Steal)
}

func summaryMemLines(s proc.Summary) (string, string) {
	if !s.MemOK {
		return "Mem:  " + unknown, "Swap: " + unknown
	}
	m := s.Mem
	mem := fmt.Sprintf("Mem:  %s total, %s free, %s used, %s buff/cache",
		sizeKB(m.TotalKB), sizeKB(m.FreeKB), sizeKB(m.UsedKB()), sizeKB(m.BuffCacheKB))
	swap := fmt.Sprintf("Swap: %s total, %s free, %s used, %s avail Mem",
		sizeKB(m.SwapTotalKB), sizeKB(m.SwapFreeKB), sizeKB(m.SwapUsedKB()), sizeKB(m.AvailableKB))
	return mem, swap
}

func sizeKB(kb int64) string {
	if kb < 0 {
		kb = 0
	}
	return humanize.IBytes(uint64(kb) * 1024)
}
