package usecase

import (
	"strings"
	"sync"
	"time"
)

// DefaultDebounceWindow is how long input must stay unchanged before it is committed
const DefaultDebounceWindow = 500 * time.Millisecond

// DebounceState is the state of a Debouncer
type DebounceState int

const (
	DebounceIdle DebounceState = iota
	DebouncePending
	DebounceCommitted
)

func (s DebounceState) String() string {
	switch s {
	case DebouncePending:
		return "pending"
	case DebounceCommitted:
		return "committed"
	default:
		return "idle"
	}
}

// CommitFunc receives a committed text with its generation. Generations grow with
// every input, commit and stop, so a receiver can drop a commit that arrives after
// one with a higher generation.
type CommitFunc func(text string, gen uint64)

// Debouncer turns raw keystrokes into committed search terms. Each Input restarts
// the window; only the most recently scheduled timer may commit. Empty input and
// CommitNow commit immediately.
type Debouncer struct {
	mu       sync.Mutex
	window   time.Duration
	onCommit CommitFunc
	timer    *time.Timer
	gen      uint64
	state    DebounceState
	raw      string
}

// NewDebouncer creates a Debouncer that calls onCommit with every committed text.
// onCommit runs on the timer goroutine or the caller's goroutine, outside the
// Debouncer's lock, and must not call back into the Debouncer.
func NewDebouncer(window time.Duration, onCommit CommitFunc) *Debouncer {
	if window <= 0 {
		window = DefaultDebounceWindow
	}
	if onCommit == nil {
		onCommit = func(string, uint64) {}
	}
	return &Debouncer{
		window:   window,
		onCommit: onCommit,
	}
}

// Input records a change of the raw text
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	d.raw = text
	d.cancelLocked()

	if strings.TrimSpace(text) == "" {
		d.state = DebounceCommitted
		gen := d.gen
		d.mu.Unlock()
		d.onCommit("", gen)
		return
	}

	d.state = DebouncePending
	gen := d.gen
	d.timer = time.AfterFunc(d.window, func() { d.fire(gen) })
	d.mu.Unlock()
}

// CommitNow commits the current raw text without waiting for the window
func (d *Debouncer) CommitNow() string {
	d.mu.Lock()
	d.cancelLocked()
	d.state = DebounceCommitted
	text, gen := strings.TrimSpace(d.raw), d.gen
	d.mu.Unlock()

	d.onCommit(text, gen)
	return text
}

// Stop cancels any pending commit and returns the generation that supersedes it
func (d *Debouncer) Stop() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.cancelLocked()
	if d.state == DebouncePending {
		d.state = DebounceIdle
	}
	return d.gen
}

// State returns the current state
func (d *Debouncer) State() DebounceState {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Raw returns the last input text
func (d *Debouncer) Raw() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.raw
}

// cancelLocked invalidates the scheduled timer. The generation bump covers a timer
// that already fired and is waiting for the lock.
func (d *Debouncer) cancelLocked() {
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen || d.state != DebouncePending {
		d.mu.Unlock()
		return
	}
	d.state = DebounceCommitted
	d.timer = nil
	text := strings.TrimSpace(d.raw)
	d.mu.Unlock()

	d.onCommit(text, gen)
}
