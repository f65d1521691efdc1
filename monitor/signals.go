package monitor

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"golang.org/x/sys/unix"
)

// WatchedSignals are the lifecycle signals the monitor reacts to.
var WatchedSignals = []os.Signal{unix.SIGINT, unix.SIGHUP, unix.SIGTERM, unix.SIGQUIT, unix.SIGWINCH}

// SignalWatcher records the most urgent pending signal. Delivery only
// stores the signal number and calls wake; the event loop picks it up with
// Drain. A terminating signal is never overwritten by a resize.
type SignalWatcher struct {
	pending atomic.Int32
	ch      chan os.Signal
	done    chan struct{}
	once    sync.Once
}

// NewSignalWatcher subscribes to WatchedSignals right away, so signals that
// arrive before Start are kept in the channel buffer rather than lost.
func NewSignalWatcher() *SignalWatcher {
	w := &SignalWatcher{
		ch:   make(chan os.Signal, len(WatchedSignals)),
		done: make(chan struct{}),
	}
	signal.Notify(w.ch, WatchedSignals...)
	return w
}

// Start begins forwarding. wake is called after each store and must not
// block for long.
func (w *SignalWatcher) Start(wake func()) {
	go func() {
		for {
			select {
			case <-w.done:
				return
			case sig := <-w.ch:
				if s, ok := sig.(syscall.Signal); ok {
					w.Record(s)
				}
				if wake != nil {
					wake()
				}
			}
		}
	}()
}

// Record stores sig unless a more urgent signal is already pending.
func (w *SignalWatcher) Record(sig syscall.Signal) {
	for {
		cur := w.pending.Load()
		if cur != 0 && urgency(syscall.Signal(cur)) > urgency(sig) {
			return
		}
		if w.pending.CompareAndSwap(cur, int32(sig)) {
			return
		}
	}
}

// Drain returns and clears the pending signal, 0 if there is none.
func (w *SignalWatcher) Drain() syscall.Signal {
	return syscall.Signal(w.pending.Swap(0))
}

func (w *SignalWatcher) Stop() {
	w.once.Do(func() {
		signal.Stop(w.ch)
		close(w.done)
	})
}

func urgency(sig syscall.Signal) int {
	if sig == unix.SIGWINCH {
		return 1
	}
	return 2
}
