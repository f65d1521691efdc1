package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
	"github.com/sirupsen/logrus"
)

// Options configures a Controller.
type Options struct {
	Sampler  Sampler
	Summary  SummaryReader
	HZ       uint64
	Interval time.Duration
	Display  model.DisplayState

	CPUThreshold float64
	MemThreshold float64
}

// Controller owns the display state and the latest snapshot. It is driven
// from a single goroutine.
type Controller struct {
	sampler Sampler
	summary SummaryReader
	hz      uint64

	interval   time.Duration
	lastSample time.Time
	now        func() time.Time

	display  model.DisplayState
	fileMask model.FieldMask // mask from the config file, for reload diffs
	snapshot []model.ProcessRecord
	rows     []model.ProcessRecord
	history  model.CPUHistory
	tasks    model.TaskCounts

	sys     proc.Summary
	cpuPrev proc.CPUTimes

	cpuThreshold float64
	memThreshold float64

	state       State
	prompt      PromptKind
	promptInput string
	status      string
	statusErr   bool
	statusShown bool
	help        bool
	keys        KeyMap

	width, height int

	resolveUser func(string) (int, error)
}

func NewController(opts Options) *Controller {
	hz := opts.HZ
	if hz == 0 {
		hz = model.DefaultHZ
	}
	display := opts.Display
	if display.Mask == 0 {
		display = model.NewDisplayState()
	}
	return &Controller{
		sampler:      opts.Sampler,
		summary:      opts.Summary,
		hz:           hz,
		interval:     opts.Interval,
		now:          time.Now,
		display:      display,
		fileMask:     display.Mask,
		history:      model.CPUHistory{},
		cpuThreshold: opts.CPUThreshold,
		memThreshold: opts.MemThreshold,
		keys:         DefaultKeyMap(),
		resolveUser:  proc.LookupUID,
	}
}

func (c *Controller) State() State { return c.state }
func (c *Controller) Display() model.DisplayState { return c.display }
func (c *Controller) Rows() []model.ProcessRecord { return c.rows }
func (c *Controller) Prompt() PromptKind { return c.prompt }
func (c *Controller) Status() (string, bool) { return c.status, c.statusErr }
func (c *Controller) SetPromptInput(text string) { c.promptInput = text }
func (c *Controller) SetInterval(d time.Duration) { c.interval = d }
func (c *Controller) Summary() proc.Summary { return c.sys }
func (c *Controller) Tasks() model.TaskCounts { return c.tasks }
func (c *Controller) Snapshot() []model.ProcessRecord { return c.snapshot }

// Resize records the terminal size used for paging.
func (c *Controller) Resize(width, height int) {
	c.width, c.height = width, height
	c.display.Clamp(len(c.rows), c.windowHeight())
}

// Reload applies settings changed on disk. Columns toggled interactively
// survive unless the file's hidden fields changed.
func (c *Controller) Reload(msg ReloadMsg) {
	if msg.Interval > 0 {
		c.interval = msg.Interval
	}
	if msg.Mask != 0 && msg.Mask != c.fileMask {
		c.display.Mask = msg.Mask
		c.fileMask = msg.Mask
	}
	c.cpuThreshold = msg.CPUThreshold
	c.memThreshold = msg.MemThreshold
}

// windowHeight is the number of data rows the table region can show.
func (c *Controller) windowHeight() int {
	h := c.height - tableTop - 1
	if h < 0 {
		return 0
	}
	return h
}

// Refresh takes a new snapshot, derives the metrics and re-ranks. Failing
// to list the process table is the only error.
func (c *Controller) Refresh() error {
	prevState := c.state
	c.state = Refreshing
	defer func() {
		if c.state == Refreshing {
			c.state = prevState
		}
	}()

	raw, err := c.sampler.Sample()
	if err != nil {
		return fmt.Errorf("sample processes: %w", err)
	}

	now := c.now()
	elapsed := c.interval.Seconds()
	if !c.lastSample.IsZero() {
		elapsed = now.Sub(c.lastSample).Seconds()
	}
	c.lastSample = now

	c.snapshot, c.history = model.Annotate(raw, c.history, elapsed, c.hz)
	c.tasks = model.CountTasks(c.snapshot)
	if c.summary != nil {
		c.sys, c.cpuPrev = c.summary.ReadSummary(c.cpuPrev)
	}
	c.rerank()

	logrus.WithFields(logrus.Fields{
		"processes": len(c.snapshot),
		"shown":     len(c.rows),
		"elapsed":   elapsed,
	}).Debug("refreshed")
	return nil
}

func (c *Controller) rerank() {
	c.rows = c.display.Rank(c.snapshot)
	c.display.Clamp(len(c.rows), c.windowHeight())
}

// Dispatch applies one command. It reports false when the program should
// stop.
func (c *Controller) Dispatch(cmd Command, field model.FieldID) bool {
	if c.state == Terminating {
		return false
	}
	c.state = Dispatch
	defer func() {
		if c.state == Dispatch {
			c.state = IdleWait
		}
	}()

	page := c.windowHeight()
	switch cmd {
	case CmdQuit:
		c.state = Terminating
		return false
	case CmdSort:
		if err := c.display.Toggle(field); err != nil {
			c.setError(err.Error())
			return true
		}
		c.setStatus("Sorted by " + c.sortLabel())
	case CmdSortNext:
		c.display.Next()
		c.setStatus("Sorted by " + c.sortLabel())
	case CmdSortPrev:
		c.display.Prev()
		c.setStatus("Sorted by " + c.sortLabel())
	case CmdReverse:
		c.display.Reverse()
		c.setStatus("Sorted by " + c.sortLabel())
	case CmdPromptUser:
		c.beginPrompt(PromptUser)
		return true
	case CmdPromptField:
		c.beginPrompt(PromptField)
		return true
	case CmdClearFilter:
		c.display.ClearFilter()
		c.setStatus("Showing all users")
	case CmdLineUp:
		c.display.Scroll(-1, len(c.rows), page)
		return true
	case CmdLineDown:
		c.display.Scroll(1, len(c.rows), page)
		return true
	case CmdPageUp:
		c.display.Scroll(-page, len(c.rows), page)
		return true
	case CmdPageDown:
		c.display.Scroll(page, len(c.rows), page)
		return true
	case CmdHome:
		c.display.ScrollTo(0, len(c.rows), page)
		return true
	case CmdEnd:
		c.display.ScrollTo(len(c.rows), len(c.rows), page)
		return true
	case CmdHelp:
		c.help = !c.help
		return true
	default:
		return true
	}
	c.rerank()
	return true
}

func (c *Controller) sortLabel() string {
	dir := "descending"
	if c.display.Ascending {
		dir = "ascending"
	}
	return c.display.ColumnName() + " " + dir
}

func (c *Controller) beginPrompt(kind PromptKind) {
	c.prompt = kind
	c.promptInput = ""
	c.state = Prompting
}

// CancelPrompt leaves the prompt without changing anything.
func (c *Controller) CancelPrompt() {
	c.prompt = PromptNone
	c.promptInput = ""
	c.state = IdleWait
}

// SubmitPrompt answers the open prompt.
func (c *Controller) SubmitPrompt(text string) {
	kind := c.prompt
	c.CancelPrompt()
	text = strings.TrimSpace(text)

	switch kind {
	case PromptUser:
		if text == "" {
			c.display.ClearFilter()
			c.setStatus("Showing all users")
			break
		}
		uid, err := c.resolveUser(text)
		if err != nil {
			c.setError(fmt.Sprintf("Invalid user: %s", text))
			return
		}
		c.display.SetFilter(uid, text)
		c.setStatus("Showing processes of " + text)
	case PromptField:
		if text == "" {
			return
		}
		if err := c.display.ToggleField(text); err != nil {
			c.setError(err.Error())
			return
		}
	default:
		return
	}
	c.rerank()
}

func (c *Controller) setStatus(text string) {
	c.status, c.statusErr, c.statusShown = text, false, false
}

func (c *Controller) setError(text string) {
	c.status, c.statusErr, c.statusShown = text, true, false
}

// Terminate moves the controller to its final state.
func (c *Controller) Terminate() {
	c.state = Terminating
}

// Render paints the whole screen and flushes it.
func (c *Controller) Render(s Surface) error {
	w, h := s.Size()
	if w != c.width || h != c.height {
		c.Resize(w, h)
	}
	if c.statusShown && c.prompt == PromptNone {
		c.status, c.statusErr, c.statusShown = "", false, false
	}

	c.renderSummary(s.Region(0, summaryLines))
	c.renderMessage(s.Region(messageLine, 1))
	table := s.Region(tableTop, h-tableTop)
	if c.help {
		c.renderHelp(table)
	} else {
		c.renderTable(table)
	}

	if err := s.Flush(); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	if c.status != "" {
		c.statusShown = true
	}
	return nil
}
