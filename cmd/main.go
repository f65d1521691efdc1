package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/Alisser2001/sentinel/config"
	"github.com/Alisser2001/sentinel/daemon"
	"github.com/Alisser2001/sentinel/monitor"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprint(w, `
Sentinel commands:
  sentinel [tui] [flags]   start the interactive monitor (default)
  sentinel batch [flags]   print snapshots to stdout
  sentinel help            show this help

Common flags:
  -config DIR       configuration directory (default ~/.sentinel)
  -interval D       refresh interval, e.g. 2s
  -user NAME        only show processes of NAME
  -sort KEY         initial sort column, e.g. %mem

Batch flags:
  -n N              number of snapshots, 0 for unlimited (default 1)
  -format F         table or csv (default table)
  -limit N          rows per snapshot, 0 for all
`)
}

type options struct {
	configDir string
	interval  time.Duration
	user      string
	sort      string

	iterations int
	format     string
	limit      int
}

func newFlagSet(name string, o *options, batch bool) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&o.configDir, "config", config.Dir(), "configuration directory")
	fs.DurationVar(&o.interval, "interval", 0, "refresh interval")
	fs.StringVar(&o.user, "user", "", "only show processes of this user")
	fs.StringVar(&o.sort, "sort", "", "initial sort column")
	if batch {
		fs.IntVar(&o.iterations, "n", 1, "number of snapshots")
		fs.StringVar(&o.format, "format", daemon.FormatTable, "output format")
		fs.IntVar(&o.limit, "limit", 0, "rows per snapshot")
	}
	return fs
}

func run(args []string, stdout, stderr io.Writer) int {
	cmd := "tui"
	if len(args) > 0 && len(args[0]) > 0 && args[0][0] != '-' {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "tui":
		err = runTUI(args, stderr)
	case "batch":
		err = runBatch(args, stdout, stderr)
	case "help":
		usage(stdout)
		return 0
	default:
		fmt.Fprintln(stderr, "unknown command:", cmd)
		usage(stderr)
		return 1
	}

	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, "sentinel:", err)
		return 1
	}
	return 0
}

func loadConfig(fs afero.Fs, o options) (config.Config, error) {
	cfg, err := config.Load(fs, o.configDir)
	if err != nil {
		return cfg, err
	}
	if o.interval > 0 {
		cfg.Interval = o.interval
	}
	if o.user != "" {
		cfg.FilterUser = o.user
	}
	if o.sort != "" {
		cfg.SortField = o.sort
	}
	return cfg, cfg.Validate()
}

func runTUI(args []string, stderr io.Writer) error {
	var o options
	flags := newFlagSet("tui", &o, false)
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("stdout is not a terminal; use 'sentinel batch'")
	}

	fs := afero.NewOsFs()
	cfg, err := loadConfig(fs, o)
	if err != nil {
		return err
	}

	// The display owns the terminal, so log records go to a file.
	logFile, err := openLog(cfg.LogFile)
	if err != nil {
		return err
	}
	defer logFile.Close()
	setupLogging(logFile, cfg.Level())

	return monitor.NewEngine(cfg, fs, o.configDir).Run(context.Background())
}

func runBatch(args []string, stdout, stderr io.Writer) error {
	var o options
	flags := newFlagSet("batch", &o, true)
	flags.SetOutput(stderr)
	if err := flags.Parse(args); err != nil {
		return err
	}

	setupLogging(stderr, logrus.InfoLevel)
	fs := afero.NewOsFs()
	cfg, err := loadConfig(fs, o)
	if err != nil {
		return err
	}
	logrus.SetLevel(cfg.Level())

	collector, err := monitor.NewCollector(cfg.ProcRoot)
	if err != nil {
		return err
	}
	display, err := monitor.DisplayFromConfig(cfg, proc.LookupUID)
	if err != nil {
		return err
	}
	d, err := daemon.New(collector, proc.NewSystemReader(collector.FS()), daemon.Options{
		Iterations:   o.iterations,
		Interval:     cfg.Interval,
		Format:       o.format,
		Limit:        o.limit,
		HZ:           proc.DetectHZ(),
		Display:      display,
		CPUThreshold: cfg.CPUThreshold,
		MemThreshold: cfg.MemThreshold,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), unix.SIGINT, unix.SIGTERM, unix.SIGHUP)
	defer stop()
	return d.Run(ctx, stdout)
}

func openLog(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func setupLogging(w io.Writer, level logrus.Level) {
	logrus.SetOutput(w)
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
}
