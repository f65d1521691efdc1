package monitor

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/Alisser2001/sentinel/config"
	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/Alisser2001/sentinel/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/term"
)

// Engine runs the interactive monitor.
type Engine struct {
	cfg       config.Config
	fs        afero.Fs
	configDir string
	hz        uint64
	querySize ui.SizeFunc
}

func NewEngine(cfg config.Config, fs afero.Fs, configDir string) *Engine {
	return &Engine{
		cfg:       cfg,
		fs:        fs,
		configDir: configDir,
		hz:        proc.DetectHZ(),
		querySize: TermSize,
	}
}

// TermSize reports the size of the terminal on stdout.
func TermSize() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// DisplayFromConfig builds the initial display state. lookup resolves the
// configured filter user.
func DisplayFromConfig(cfg config.Config, lookup func(string) (int, error)) (model.DisplayState, error) {
	d := model.NewDisplayState()
	s, err := cfg.Sorter()
	if err != nil {
		return d, err
	}
	d.Sorter = s
	if d.Mask, err = cfg.Mask(); err != nil {
		return d, err
	}
	if cfg.FilterUser != "" {
		uid, err := lookup(cfg.FilterUser)
		if err != nil {
			return d, fmt.Errorf("filter user %q: %w", cfg.FilterUser, err)
		}
		d.SetFilter(uid, cfg.FilterUser)
	}
	return d, nil
}

// ReloadFromConfig is the subset of cfg the running program picks up.
func ReloadFromConfig(cfg config.Config) ui.ReloadMsg {
	mask, err := cfg.Mask()
	if err != nil {
		mask = 0
	}
	return ui.ReloadMsg{
		Interval:     cfg.Interval,
		Mask:         mask,
		CPUThreshold: cfg.CPUThreshold,
		MemThreshold: cfg.MemThreshold,
	}
}

// Run blocks until the user quits, a terminating signal arrives or the
// display fails. The terminal is restored before Run returns.
func (e *Engine) Run(ctx context.Context) error {
	collector, err := NewCollector(e.cfg.ProcRoot)
	if err != nil {
		return err
	}
	display, err := DisplayFromConfig(e.cfg, proc.LookupUID)
	if err != nil {
		return err
	}
	width, height, err := e.querySize()
	if err != nil {
		return fmt.Errorf("query terminal size: %w", err)
	}

	// Subscribe before the program starts so no signal is lost.
	signals := NewSignalWatcher()
	defer signals.Stop()

	ctrl := ui.NewController(ui.Options{
		Sampler:      collector,
		Summary:      proc.NewSystemReader(collector.FS()),
		HZ:           e.hz,
		Interval:     e.cfg.Interval,
		Display:      display,
		CPUThreshold: e.cfg.CPUThreshold,
		MemThreshold: e.cfg.MemThreshold,
	})
	screen := ui.NewScreen(width, height)
	defer screen.Close()

	program := tea.NewProgram(
		ui.NewModel(ctrl, screen, signals, e.querySize, e.cfg.Interval),
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
		tea.WithContext(ctx),
	)
	signals.Start(func() { program.Send(ui.SignalMsg{}) })

	if e.configDir != "" {
		watcher, err := config.NewWatcher(config.Path(e.configDir), config.DefaultWatchDebounce,
			func() { e.reload(program) },
			func(err error) { logrus.WithError(err).Warn("config watch error") },
		)
		if err != nil {
			logrus.WithError(err).Warn("config hot reload disabled")
		} else {
			defer watcher.Close()
		}
	}

	logrus.WithFields(logrus.Fields{
		"interval": e.cfg.Interval,
		"hz":       e.hz,
		"size":     fmt.Sprintf("%dx%d", width, height),
	}).Info("monitor started")

	final, err := program.Run()
	if err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("run terminal program: %w", err)
	}
	if m, ok := final.(ui.Model); ok {
		return m.Err()
	}
	return nil
}

func (e *Engine) reload(program *tea.Program) {
	cfg, err := config.Load(e.fs, e.configDir)
	if err != nil {
		logrus.WithError(err).Warn("ignoring config change")
		return
	}
	logrus.WithField("interval", cfg.Interval).Info("config reloaded")
	program.Send(ReloadFromConfig(cfg))
}
