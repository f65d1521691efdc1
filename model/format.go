package model

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"golang.org/x/sys/unix"
)

// DefaultHZ is used when the tick rate cannot be queried.
const DefaultHZ = 100

// FormatContext carries the per-pass values some columns need to render.
type FormatContext struct {
	HZ       uint64
	BootTime time.Time
	Now      time.Time
}

func (c FormatContext) hz() uint64 {
	if c.HZ == 0 {
		return DefaultHZ
	}
	return c.HZ
}

// FormatTimeTicks renders a tick count as mm:ss.cc, or XhYYmZZs past an hour.
func FormatTimeTicks(ticks, hz uint64) string {
	if hz == 0 {
		hz = DefaultHZ
	}
	totalCS := (ticks * 100) / hz

	h := totalCS / 360000
	m := (totalCS % 360000) / 6000
	s := (totalCS % 6000) / 100
	cs := totalCS % 100

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d.%02d", m, s, cs)
}

// FormatKB renders a KiB amount compactly ("512", "1.2 MiB").
func FormatKB(kb int64) string {
	if kb < 0 {
		kb = 0
	}
	if kb < 1024 {
		return fmt.Sprintf("%d", kb)
	}
	return humanize.IBytes(uint64(kb) * 1024)
}

// FormatTTY decodes a tty_nr device number into a terminal name.
func FormatTTY(tty int) string {
	if tty <= 0 {
		return "?"
	}
	dev := uint64(tty)
	major, minor := unix.Major(dev), unix.Minor(dev)
	switch {
	case major == 4 && minor < 64:
		return fmt.Sprintf("tty%d", minor)
	case major == 4:
		return fmt.Sprintf("ttyS%d", minor-64)
	case major >= 136 && major <= 143:
		return fmt.Sprintf("pts/%d", minor+(major-136)*256)
	}
	return fmt.Sprintf("%d:%d", major, minor)
}

// FormatStart renders a process start time, given in ticks since boot, as a
// clock time for processes started today and as a date otherwise.
func FormatStart(startTicks uint64, ctx FormatContext) string {
	if ctx.BootTime.IsZero() {
		return "?"
	}
	hz := ctx.hz()
	sinceBoot := time.Duration(startTicks/hz)*time.Second +
		time.Duration(startTicks%hz)*time.Second/time.Duration(hz)
	started := ctx.BootTime.Add(sinceBoot)
	now := ctx.Now
	if now.IsZero() {
		now = time.Now()
	}
	if started.Year() == now.Year() && started.YearDay() == now.YearDay() {
		return started.Format("15:04")
	}
	return started.Format("Jan02")
}

// Fit pads or truncates s to exactly width terminal cells. Wide runes count
// as two cells.
func Fit(s string, width int, left bool) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) > width {
		tail := ""
		if width > 1 && !left {
			tail = "+"
		}
		s = runewidth.Truncate(s, width, tail)
	}
	if left {
		return runewidth.FillRight(s, width)
	}
	return runewidth.FillLeft(s, width)
}
