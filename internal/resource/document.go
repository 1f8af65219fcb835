// ABOUTME: Store for single-record resources such as profiles and weekly hours
// ABOUTME: Same loading, error and event semantics as the collection Store

package resource

import (
	"context"
	"net/http"
	"sync"

	"github.com/2389/bookdesk/internal/transport"
)

// DocumentMessages are the fallback texts of a Document.
type DocumentMessages struct {
	Fetch  string
	Update string
}

// Document caches one record served at a fixed path.
type Document[T any] struct {
	*tracker

	api      *transport.Client
	path     string
	messages DocumentMessages

	mu    sync.RWMutex
	value *T
}

// NewDocument creates a Document named name for the record at path.
func NewDocument[T any](api *transport.Client, name, path string, messages DocumentMessages, opts Options) *Document[T] {
	return &Document[T]{
		tracker:  newTracker(name, opts),
		api:      api,
		path:     path,
		messages: messages,
	}
}

// Client returns the transport the document sends requests with.
func (d *Document[T]) Client() *transport.Client {
	return d.api
}

// Path returns the record's path.
func (d *Document[T]) Path() string {
	return d.path
}

// Fetch loads the record.
func (d *Document[T]) Fetch(ctx context.Context) transport.Outcome[T] {
	return d.Do(ctx, OpFetch, d.messages.Fetch, func(ctx context.Context) (T, error) {
		var v T
		err := d.api.GetJSON(ctx, d.path, nil, &v)
		return v, err
	})
}

// Send writes in with method (PUT or PATCH) and caches the server's reply.
func (d *Document[T]) Send(ctx context.Context, method string, in any) transport.Outcome[T] {
	if err := validate(in); err != nil {
		defer d.track()()
		return fail[T](d.tracker, OpUpdate, 0, err, err.Error())
	}

	return d.Do(ctx, OpUpdate, d.messages.Update, func(ctx context.Context) (T, error) {
		var v T
		err := d.api.SendJSON(ctx, method, d.path, in, &v)
		return v, err
	})
}

// Put replaces the record with in.
func (d *Document[T]) Put(ctx context.Context, in any) transport.Outcome[T] {
	return d.Send(ctx, http.MethodPut, in)
}

// Patch partially updates the record with in.
func (d *Document[T]) Patch(ctx context.Context, in any) transport.Outcome[T] {
	return d.Send(ctx, http.MethodPatch, in)
}

// Do runs call as operation op and caches its result.
func (d *Document[T]) Do(ctx context.Context, op Op, fallback string, call func(ctx context.Context) (T, error)) transport.Outcome[T] {
	defer d.track()()

	v, err := call(ctx)
	if err != nil {
		return fail[T](d.tracker, op, 0, err, fallback)
	}

	d.Set(v)
	d.emit(Event{Op: op})
	return transport.Succeed(v)
}

// Value returns the cached record.
func (d *Document[T]) Value() (T, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.value == nil {
		var zero T
		return zero, false
	}
	return *d.value, true
}

// Set replaces the cached record.
func (d *Document[T]) Set(v T) {
	d.mu.Lock()
	d.value = &v
	d.mu.Unlock()
}

// Clear drops the cached record and the error.
func (d *Document[T]) Clear() {
	d.mu.Lock()
	d.value = nil
	d.mu.Unlock()
	d.ResetError()
}
