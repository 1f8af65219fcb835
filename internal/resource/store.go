// ABOUTME: Generic cached CRUD store over the authenticated transport
// ABOUTME: Tracks loading and error state and converts every failure into an Outcome

package resource

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/2389/bookdesk/internal/transport"
)

// Entity is a record with a numeric id.
type Entity interface {
	GetID() int64
}

// Validator is implemented by inputs that can be checked before sending.
type Validator interface {
	Validate() error
}

// Filter is a checked set of query parameters for FetchWhere.
type Filter interface {
	Validator
	Query() url.Values
}

// Messages are the fallback texts shown when the server gives no reason.
type Messages struct {
	Fetch    string
	Create   string
	Update   string
	Delete   string
	NotFound string
}

// DefaultMessages builds fallback texts from the entity's singular and plural nouns,
// e.g. ("service", "services").
func DefaultMessages(singular, plural string) Messages {
	return Messages{
		Fetch:    "Failed to fetch " + plural,
		Create:   "Failed to create " + singular,
		Update:   "Failed to update " + singular,
		Delete:   "Failed to delete " + singular,
		NotFound: capitalize(singular) + " not found",
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Endpoint describes the collection a Store manages.
type Endpoint struct {
	Name     string
	Path     string
	Messages Messages
}

// Store caches the collection at one Endpoint. C is the create input and U the update
// input.
type Store[T Entity, C any, U any] struct {
	*tracker

	api      *transport.Client
	endpoint Endpoint

	mu    sync.RWMutex
	items []T
}

// New creates a Store for endpoint.
func New[T Entity, C any, U any](api *transport.Client, endpoint Endpoint, opts Options) *Store[T, C, U] {
	return &Store[T, C, U]{
		tracker:  newTracker(endpoint.Name, opts),
		api:      api,
		endpoint: endpoint,
		items:    []T{},
	}
}

// Client returns the transport the store sends requests with.
func (s *Store[T, C, U]) Client() *transport.Client {
	return s.api
}

// Endpoint returns the store's endpoint.
func (s *Store[T, C, U]) Endpoint() Endpoint {
	return s.endpoint
}

// ItemPath returns the path of the record with id, optionally followed by sub-paths.
func (s *Store[T, C, U]) ItemPath(id int64, sub ...string) string {
	parts := append([]string{s.endpoint.Path, strconv.FormatInt(id, 10)}, sub...)
	return strings.Join(parts, "/")
}

// FetchAll replaces the cache with the server's collection.
func (s *Store[T, C, U]) FetchAll(ctx context.Context, query url.Values) transport.Outcome[[]T] {
	defer s.track()()

	var items []T
	if err := s.api.GetJSON(ctx, s.endpoint.Path, query, &items); err != nil {
		return fail[[]T](s.tracker, OpFetch, 0, err, s.endpoint.Messages.Fetch)
	}
	if items == nil {
		items = []T{}
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()

	s.emit(Event{Op: OpFetch})
	return transport.Succeed(slices.Clone(items))
}

// FetchWhere validates f and replaces the cache with the records matching it. An
// invalid filter fails without a request and leaves the cache unchanged.
func (s *Store[T, C, U]) FetchWhere(ctx context.Context, f Filter) transport.Outcome[[]T] {
	if err := f.Validate(); err != nil {
		defer s.track()()
		return fail[[]T](s.tracker, OpFetch, 0, err, err.Error())
	}
	return s.FetchAll(ctx, f.Query())
}

// Create sends in and appends the created record.
func (s *Store[T, C, U]) Create(ctx context.Context, in C) transport.Outcome[T] {
	defer s.track()()

	if err := validate(in); err != nil {
		return fail[T](s.tracker, OpCreate, 0, err, err.Error())
	}

	var created T
	if err := s.api.SendJSON(ctx, http.MethodPost, s.endpoint.Path, in, &created); err != nil {
		return fail[T](s.tracker, OpCreate, 0, err, s.endpoint.Messages.Create)
	}

	s.mu.Lock()
	s.items = append(s.items, created)
	s.mu.Unlock()

	s.emit(Event{Op: OpCreate, ID: created.GetID()})
	return transport.Succeed(created)
}

// Update patches the cached record with id. Ids not in the cache fail without a request.
func (s *Store[T, C, U]) Update(ctx context.Context, id int64, in U) transport.Outcome[T] {
	if err := validate(in); err != nil {
		defer s.track()()
		return fail[T](s.tracker, OpUpdate, id, err, err.Error())
	}

	return s.Mutate(ctx, OpUpdate, id, s.endpoint.Messages.Update, func(ctx context.Context) (T, error) {
		var updated T
		err := s.api.SendJSON(ctx, http.MethodPatch, s.ItemPath(id), in, &updated)
		return updated, err
	})
}

// Mutate runs call for the cached record with id and replaces that record with the
// result. It fails with the not-found message, without calling call, when id is not
// cached.
func (s *Store[T, C, U]) Mutate(ctx context.Context, op Op, id int64, fallback string, call func(ctx context.Context) (T, error)) transport.Outcome[T] {
	defer s.track()()

	if _, ok := s.Find(id); !ok {
		return fail[T](s.tracker, op, id, fmt.Errorf("%s %d not in cache", s.endpoint.Name, id), s.endpoint.Messages.NotFound)
	}

	updated, err := call(ctx)
	if err != nil {
		return fail[T](s.tracker, op, id, err, fallback)
	}

	s.Replace(id, updated)
	s.emit(Event{Op: op, ID: id})
	return transport.Succeed(updated)
}

// Delete removes the record with id on the server and from the cache.
func (s *Store[T, C, U]) Delete(ctx context.Context, id int64) transport.Outcome[struct{}] {
	defer s.track()()

	if err := s.api.SendJSON(ctx, http.MethodDelete, s.ItemPath(id), nil, nil); err != nil {
		return fail[struct{}](s.tracker, OpDelete, id, err, s.endpoint.Messages.Delete)
	}

	s.mu.Lock()
	s.items = slices.DeleteFunc(s.items, func(item T) bool { return item.GetID() == id })
	s.mu.Unlock()

	s.emit(Event{Op: OpDelete, ID: id})
	return transport.Succeed(struct{}{})
}

// Items returns a copy of the cached collection.
func (s *Store[T, C, U]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.items)
}

// Find returns the cached record with id.
func (s *Store[T, C, U]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.GetID() == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

// Replace swaps the cached record with id for item. It is a no-op when id is not cached.
func (s *Store[T, C, U]) Replace(id int64, item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.IndexFunc(s.items, func(it T) bool { return it.GetID() == id }); i >= 0 {
		s.items[i] = item
	}
}

// Set replaces the whole cache.
func (s *Store[T, C, U]) Set(items []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = slices.Clone(items)
	if s.items == nil {
		s.items = []T{}
	}
}

func validate(in any) error {
	if v, ok := in.(Validator); ok {
		return v.Validate()
	}
	return nil
}
