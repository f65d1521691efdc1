package daemon

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

const (
	FormatTable = "table"
	FormatCSV   = "csv"

	alertCooldown = 60 * time.Second
)

var ErrFormat = errors.New("unknown output format")

var csvHeader = []string{
	"timestamp_ms", "pid", "user", "comm", "cpu_pct", "mem_pct",
	"vsize_kb", "rss_kb", "state", "time_plus", "cmdline",
}

type Sampler interface {
	Sample() ([]model.ProcessRecord, error)
}

type SummaryReader interface {
	ReadSummary(prev proc.CPUTimes) (proc.Summary, proc.CPUTimes)
}

// Options configures a batch run.
type Options struct {
	Iterations int // 0 runs until the context ends
	Interval   time.Duration
	Format     string
	Limit      int // rows per iteration, 0 for all
	HZ         uint64
	Display    model.DisplayState

	CPUThreshold float64
	MemThreshold float64
}

// Daemon runs the sampling pipeline without a terminal and writes each
// ranked snapshot to an io.Writer.
type Daemon struct {
	sampler Sampler
	summary SummaryReader
	opts    Options
	log     *logrus.Entry

	history    model.CPUHistory
	cpuPrev    proc.CPUTimes
	lastSample time.Time
	lastAlerts map[int]time.Time
	wroteCSV   bool
	now        func() time.Time
}

func New(sampler Sampler, summary SummaryReader, opts Options) (*Daemon, error) {
	switch opts.Format {
	case "":
		opts.Format = FormatTable
	case FormatTable, FormatCSV:
	default:
		return nil, fmt.Errorf("%w: %q", ErrFormat, opts.Format)
	}
	if opts.HZ == 0 {
		opts.HZ = model.DefaultHZ
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.Display.Mask == 0 {
		opts.Display = model.NewDisplayState()
	}
	return &Daemon{
		sampler:    sampler,
		summary:    summary,
		opts:       opts,
		log:        logrus.WithField("component", "batch"),
		history:    model.CPUHistory{},
		lastAlerts: make(map[int]time.Time),
		now:        time.Now,
	}, nil
}

// Run writes one snapshot per interval until the iteration count is reached
// or ctx is cancelled.
func (d *Daemon) Run(ctx context.Context, w io.Writer) error {
	ticker := time.NewTicker(d.opts.Interval)
	defer ticker.Stop()

	for i := 0; d.opts.Iterations == 0 || i < d.opts.Iterations; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}
		if err := d.Step(w); err != nil {
			return err
		}
	}
	return nil
}

// Step samples once and writes the ranked snapshot.
func (d *Daemon) Step(w io.Writer) error {
	raw, err := d.sampler.Sample()
	if err != nil {
		return fmt.Errorf("sample processes: %w", err)
	}
	now := d.now()
	elapsed := d.opts.Interval.Seconds()
	if !d.lastSample.IsZero() {
		elapsed = now.Sub(d.lastSample).Seconds()
	}
	d.lastSample = now

	prev := d.history
	var records []model.ProcessRecord
	records, d.history = model.Annotate(raw, prev, elapsed, d.opts.HZ)
	rows := d.opts.Display.Rank(records)

	// A first observation charges the whole lifetime to one interval.
	for i := range rows {
		if ticks, seen := prev[rows[i].Pid]; seen && rows[i].TotalTime() >= ticks {
			d.checkAlerts(&rows[i], now)
		}
	}
	if d.opts.Limit > 0 && len(rows) > d.opts.Limit {
		rows = rows[:d.opts.Limit]
	}

	var sum proc.Summary
	if d.summary != nil {
		sum, d.cpuPrev = d.summary.ReadSummary(d.cpuPrev)
	}

	if d.opts.Format == FormatCSV {
		return d.writeCSV(w, now, rows)
	}
	return d.writeTable(w, now, sum, model.CountTasks(records), rows)
}

func (d *Daemon) checkAlerts(r *model.ProcessRecord, now time.Time) {
	if t, ok := d.lastAlerts[r.Pid]; ok && now.Sub(t) < alertCooldown {
		return
	}
	entry := d.log.WithFields(logrus.Fields{"pid": r.Pid, "command": r.CommandLabel()})
	alerted := false
	if d.opts.CPUThreshold > 0 && r.CPU >= d.opts.CPUThreshold {
		entry.WithField("cpu", fmt.Sprintf("%.1f", r.CPU)).Warn("high CPU")
		alerted = true
	}
	if d.opts.MemThreshold > 0 && r.PMem >= d.opts.MemThreshold {
		entry.WithField("mem", fmt.Sprintf("%.1f", r.PMem)).Warn("high memory")
		alerted = true
	}
	if alerted {
		d.lastAlerts[r.Pid] = now
	}
}

func (d *Daemon) writeTable(w io.Writer, now time.Time, sum proc.Summary, tasks model.TaskCounts, rows []model.ProcessRecord) error {
	load := "?"
	if sum.LoadOK {
		load = fmt.Sprintf("%.2f, %.2f, %.2f", sum.Load[0], sum.Load[1], sum.Load[2])
	}
	mem := "?"
	if sum.MemOK {
		mem = fmt.Sprintf("%s used of %s",
			humanize.IBytes(uint64(sum.Mem.UsedKB())*1024), humanize.IBytes(uint64(sum.Mem.TotalKB)*1024))
	}
	fmt.Fprintf(w, "%s  tasks: %d total, %d running  load average: %s  mem: %s\n",
		now.Format("15:04:05"), tasks.Total, tasks.Running, load, mem)

	ctx := model.FormatContext{HZ: d.opts.HZ, BootTime: sum.BootTime, Now: now}
	fields := d.opts.Display.Mask.Visible()

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	headings := make([]string, len(fields))
	for i, f := range fields {
		headings[i] = f.Heading
	}
	fmt.Fprintln(tw, strings.Join(headings, "\t")+"\t")
	for i := range rows {
		cells := make([]string, len(fields))
		for j, f := range fields {
			cells[j] = f.Format(&rows[i], ctx)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t")+"\t")
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w)
	return err
}

func (d *Daemon) writeCSV(w io.Writer, now time.Time, rows []model.ProcessRecord) error {
	cw := csv.NewWriter(w)
	if !d.wroteCSV {
		if err := cw.Write(csvHeader); err != nil {
			return err
		}
		d.wroteCSV = true
	}
	ts := strconv.FormatInt(now.UnixMilli(), 10)
	for _, r := range rows {
		rec := []string{
			ts,
			strconv.Itoa(r.Pid),
			r.UserLabel(),
			r.Comm,
			strconv.FormatFloat(r.CPU, 'f', 1, 64),
			strconv.FormatFloat(r.PMem, 'f', 1, 64),
			strconv.FormatInt(r.VSizeKB, 10),
			strconv.FormatInt(r.RSSKB, 10),
			string(r.State),
			model.FormatTimeTicks(r.TotalTime(), d.opts.HZ),
			r.CommandLabel(),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
