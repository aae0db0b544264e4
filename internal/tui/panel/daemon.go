package panel

import (
	"context"
	"errors"
	"sync"
	"time"

	"dashctl/pkg/logging"
)

// IdleWait is the longest a daemon panel sleeps before checking again
// whether it's halted, paused or due for an update.
const IdleWait = 200 * time.Millisecond

// ErrUnchanged is returned by an Updater that found nothing new. The update
// counts as successful but the panel isn't redrawn for it.
var ErrUnchanged = errors.New("nothing changed")

// Updater refreshes a daemon panel's data.
type Updater interface {
	Update(ctx context.Context) error
}

// UpdaterFunc adapts a function to the Updater interface.
type UpdaterFunc func(ctx context.Context) error

// Update calls f(ctx).
func (f UpdaterFunc) Update(ctx context.Context) error {
	return f(ctx)
}

// PauseQuery reports whether the application is paused. Daemon panels don't
// update while it is.
type PauseQuery func() bool

// ErrorPolicy is what a daemon panel does when an update fails.
type ErrorPolicy int

const (
	// ContinueOnError logs the failure and keeps polling at the usual rate.
	ContinueOnError ErrorPolicy = iota
	// HaltOnError stops the panel. The error is available from Err.
	HaltOnError
)

func (p ErrorPolicy) String() string {
	switch p {
	case ContinueOnError:
		return "continue"
	case HaltOnError:
		return "halt"
	default:
		return "unknown"
	}
}

// Daemon is what the controller needs to drive a panel with a background
// update loop. Panels embedding *DaemonPanel satisfy it, and may override
// Run to adjust how the loop is started.
type Daemon interface {
	Interface
	Run(ctx context.Context, paused PauseQuery)
	Stop()
	Done() <-chan struct{}
	SetUpdateHook(fn func())
}

// Pausable panels are told when the application is paused or resumed.
type Pausable interface {
	SetPaused(paused bool, since time.Time)
}

// DaemonPanel is a panel that calls its Updater on a background goroutine,
// at most once per interval. Run drives the loop and Stop ends it.
type DaemonPanel struct {
	*Panel

	updater  Updater
	interval time.Duration
	policy   ErrorPolicy

	mu       sync.Mutex
	halted   bool
	started  bool
	halt     chan struct{}
	done     chan struct{}
	err      error
	failures int
	lastRan  time.Time
	onUpdate func()
}

// NewDaemon creates a daemon panel that updates every interval once Run is
// called.
func NewDaemon(name string, display Display, drawer Drawer, updater Updater, interval time.Duration) *DaemonPanel {
	return &DaemonPanel{
		Panel:    New(name, display, drawer),
		updater:  updater,
		interval: interval,
		halt:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Interval is the minimum time between updates.
func (d *DaemonPanel) Interval() time.Duration {
	return d.interval
}

// SetErrorPolicy changes how update failures are handled. Call before Run.
func (d *DaemonPanel) SetErrorPolicy(policy ErrorPolicy) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.policy = policy
}

// SetUpdateHook registers a function called after every successful update,
// on the daemon's goroutine. The controller uses it to schedule a redraw.
func (d *DaemonPanel) SetUpdateHook(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onUpdate = fn
}

// Run performs updates until the panel is stopped or ctx is cancelled. It
// blocks, so owners start it on its own goroutine. Only the first call runs
// the loop; later calls return immediately.
func (d *DaemonPanel) Run(ctx context.Context, paused PauseQuery) {
	d.mu.Lock()
	if d.started {
		d.mu.Unlock()
		return
	}
	d.started = true
	d.mu.Unlock()

	defer close(d.done)
	logging.Debug(d.Name(), "Polling every %s", d.interval)

	var lastRan time.Time // zero until the first update

	for !d.Halted() {
		if ctx.Err() != nil {
			return
		}

		if paused != nil && paused() {
			d.wait(ctx, IdleWait)
			continue
		}
		if remaining := d.interval - time.Since(lastRan); !lastRan.IsZero() && remaining > 0 {
			d.wait(ctx, min(remaining, IdleWait))
			continue
		}

		if d.Halted() {
			return
		}

		err := d.updater.Update(ctx)
		lastRan = time.Now()

		if !d.finishUpdate(lastRan, err) {
			return
		}
	}
}

// wait blocks until the panel is stopped, ctx is done or the timeout passes.
func (d *DaemonPanel) wait(ctx context.Context, timeout time.Duration) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-d.halt:
	case <-ctx.Done():
	case <-timer.C:
	}
}

// finishUpdate records the outcome of an update and reports whether the loop
// should keep going.
func (d *DaemonPanel) finishUpdate(ranAt time.Time, err error) bool {
	d.mu.Lock()
	d.lastRan = ranAt
	hook := d.onUpdate

	if errors.Is(err, ErrUnchanged) {
		d.mu.Unlock()
		return true
	}
	if err != nil {
		d.err = err
		d.failures++
		policy := d.policy
		d.mu.Unlock()

		if policy == HaltOnError {
			logging.Error(d.Name(), err, "Update failed, halting")
			d.Stop()
			return false
		}
		logging.Error(d.Name(), err, "Update failed")
		return true
	}
	d.mu.Unlock()

	if hook != nil {
		hook()
	}
	return true
}

// Stop halts further updates, waking the loop if it's waiting. It doesn't
// wait for an update already in progress, use Done for that. Safe to call
// any number of times, from any goroutine, before or after Run.
func (d *DaemonPanel) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.halted {
		return
	}
	d.halted = true
	close(d.halt)
}

// Halted reports whether Stop has been called.
func (d *DaemonPanel) Halted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.halted
}

// Done is closed when Run returns. It never closes if Run isn't called.
func (d *DaemonPanel) Done() <-chan struct{} {
	return d.done
}

// Err is the most recent update failure, or nil.
func (d *DaemonPanel) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Failures counts the updates that returned an error.
func (d *DaemonPanel) Failures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.failures
}

// LastRan is when the last update finished. Zero if it never ran.
func (d *DaemonPanel) LastRan() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastRan
}
