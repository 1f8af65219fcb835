// ABOUTME: Loading, error and event bookkeeping shared by every store type
// ABOUTME: Converts failures into Outcomes and reports events through a hook

package resource

import (
	"log/slog"
	"sync"

	"github.com/2389/bookdesk/internal/transport"
)

// Op names a store operation in events.
type Op string

const (
	OpFetch  Op = "fetch"
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Event reports a completed operation. Err is nil on success.
type Event struct {
	Store string
	Op    Op
	ID    int64
	Err   error
}

// Options configures a store.
type Options struct {
	Logger *slog.Logger
	// Hook receives an Event per operation. Defaults to logging them.
	Hook func(Event)
}

type tracker struct {
	name   string
	logger *slog.Logger
	hook   func(Event)

	mu      sync.RWMutex
	loading bool
	err     string
}

func newTracker(name string, opts Options) *tracker {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := &tracker{
		name:   name,
		logger: logger.With("component", "resource", "store", name),
		hook:   opts.Hook,
	}
	if t.hook == nil {
		t.hook = t.logEvent
	}
	return t
}

// Loading reports whether an operation is in progress.
func (t *tracker) Loading() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.loading
}

// Err returns the message of the last failed operation, or "".
func (t *tracker) Err() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// ResetError clears Err.
func (t *tracker) ResetError() {
	t.mu.Lock()
	t.err = ""
	t.mu.Unlock()
}

// track marks the store loading with a clean error and returns the release func.
func (t *tracker) track() func() {
	t.mu.Lock()
	t.loading = true
	t.err = ""
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		t.loading = false
		t.mu.Unlock()
	}
}

// fail records a failed operation and converts it to an Outcome.
func fail[R any](t *tracker, op Op, id int64, err error, fallback string) transport.Outcome[R] {
	out := transport.Fail[R](err, fallback)

	t.mu.Lock()
	t.err = out.Error
	t.mu.Unlock()

	t.emit(Event{Op: op, ID: id, Err: err})
	return out
}

func (t *tracker) emit(ev Event) {
	ev.Store = t.name
	t.hook(ev)
}

func (t *tracker) logEvent(ev Event) {
	if ev.Err != nil {
		t.logger.Error("store operation failed", "op", string(ev.Op), "id", ev.ID, "error", ev.Err)
		return
	}
	t.logger.Debug("store operation", "op", string(ev.Op), "id", ev.ID)
}
