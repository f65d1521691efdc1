package ui

import (
	"errors"
	"syscall"
	"time"

	"github.com/Alisser2001/sentinel/model"
	"github.com/Alisser2001/sentinel/proc"
)

// ErrTerminated is returned by the program when a signal ended it.
var ErrTerminated = errors.New("terminated by signal")

// Messages

type tickMsg struct {
	seq int
}

// SignalMsg wakes the program after a signal was recorded.
type SignalMsg struct{}

// ReloadMsg carries settings changed while the program runs.
type ReloadMsg struct {
	Interval     time.Duration
	Mask         model.FieldMask
	CPUThreshold float64
	MemThreshold float64
}

// State is the phase of the event loop.
type State int

const (
	IdleWait State = iota
	Refreshing
	Dispatch
	Prompting
	Terminating
)

func (s State) String() string {
	switch s {
	case IdleWait:
		return "idle"
	case Refreshing:
		return "refreshing"
	case Dispatch:
		return "dispatch"
	case Prompting:
		return "prompting"
	case Terminating:
		return "terminating"
	}
	return "unknown"
}

// PromptKind is the question asked on the message line.
type PromptKind int

const (
	PromptNone PromptKind = iota
	PromptUser
	PromptField
)

func (p PromptKind) label() string {
	switch p {
	case PromptUser:
		return "Which user (blank for all): "
	case PromptField:
		return "Toggle which field (e.g. ppid): "
	}
	return ""
}

// Sampler returns a raw snapshot of the process table.
type Sampler interface {
	Sample() ([]model.ProcessRecord, error)
}

// SummaryReader reads the system-wide header values.
type SummaryReader interface {
	ReadSummary(prev proc.CPUTimes) (proc.Summary, proc.CPUTimes)
}

// SignalSource hands out the pending signal, 0 when there is none.
type SignalSource interface {
	Drain() syscall.Signal
}
