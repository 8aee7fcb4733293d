package content

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"portfolio-backend/internal/notify"
	"portfolio-backend/internal/remote"
	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/serial"
	"portfolio-backend/internal/shared/telemetry"
)

// Input is a full record payload for Add.
type Input interface {
	Validate() error
	Fields() remote.Fields
}

// Patch is a partial update for records of type T.
type Patch[T any] interface {
	Validate() error
	Fields() remote.Fields
	ApplyTo(rec T) T
}

// recordValidator is implemented by patches whose validity depends on the
// record they apply to.
type recordValidator[T any] interface {
	ValidateAgainst(rec T) error
}

// ChangeHook is called after a mutation is committed remotely.
type ChangeHook func(ctx context.Context, op, id string)

// Kind names a collection and phrases its notifications.
type Kind[T any] struct {
	// Name is the collection name used for metrics and change events.
	Name string
	// Entity is the capitalised singular, e.g. "Project".
	Entity string
	// Order is the query FetchAll reads with.
	Order   remote.Query
	ID      func(T) string
	Added   func(T) string
	Deleted func(T) string
}

func (k Kind[T]) noun() string {
	return lowerFirst(k.Entity)
}

// Collection caches one remote record collection. Mutations touch the cache
// only after the remote call succeeds.
type Collection[T any, I Input, P Patch[T]] struct {
	kind     Kind[T]
	table    remote.Table[T]
	notifier notify.Notifier
	queue    *serial.Queue
	onChange ChangeHook

	mu     sync.RWMutex
	items  []T
	loaded bool
}

// Option configures a Collection.
type Option func(*options)

type options struct {
	queue    *serial.Queue
	onChange ChangeHook
}

// WithQueue shares a serialization queue between collections.
func WithQueue(q *serial.Queue) Option {
	return func(o *options) { o.queue = q }
}

// WithChangeHook registers fn to run after each committed mutation.
func WithChangeHook(fn ChangeHook) Option {
	return func(o *options) { o.onChange = fn }
}

// NewCollection constructs an empty collection over table.
func NewCollection[T any, I Input, P Patch[T]](kind Kind[T], table remote.Table[T], notifier notify.Notifier, opts ...Option) *Collection[T, I, P] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.queue == nil {
		o.queue = serial.New()
	}
	if notifier == nil {
		notifier = notify.Discard
	}
	return &Collection[T, I, P]{
		kind:     kind,
		table:    table,
		notifier: notifier,
		queue:    o.queue,
		onChange: o.onChange,
		items:    []T{},
	}
}

// Name returns the collection name.
func (c *Collection[T, I, P]) Name() string { return c.kind.Name }

// All returns a snapshot of the cached records.
func (c *Collection[T, I, P]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]T, len(c.items))
	copy(out, c.items)
	return out
}

// Len reports the number of cached records.
func (c *Collection[T, I, P]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loaded reports whether a FetchAll has succeeded at least once.
func (c *Collection[T, I, P]) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// Get looks id up in the cache.
func (c *Collection[T, I, P]) Get(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if i := c.indexOf(id); i >= 0 {
		return c.items[i], true
	}
	var zero T
	return zero, false
}

// FetchAll replaces the cache with the remote collection. On failure the
// previous cache is kept.
func (c *Collection[T, I, P]) FetchAll(ctx context.Context) error {
	items, err := c.table.Select(ctx, c.kind.Order)
	c.record("fetch", err)
	if err != nil {
		telemetry.FromContext(ctx).Warn("content.fetch_failed",
			zap.String("collection", c.kind.Name), zap.Error(err))
		c.notifier.Notify(ctx, notify.Failure("Error", fmt.Sprintf("Failed to load %s data.", c.kind.Name)))
		return fmt.Errorf("fetch %s: %w", c.kind.Name, err)
	}
	if items == nil {
		items = []T{}
	}

	c.mu.Lock()
	c.items = items
	c.loaded = true
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.kind.Name).Set(float64(len(items)))
	return nil
}

// Add inserts a record and appends the server's copy to the cache.
func (c *Collection[T, I, P]) Add(ctx context.Context, in I) (T, error) {
	var zero T
	if err := in.Validate(); err != nil {
		c.record("add", err)
		c.notifier.Notify(ctx, notify.Failure("Error", errorMessage(err)))
		return zero, err
	}

	rec, err := c.table.Insert(ctx, in.Fields())
	c.record("add", err)
	if err != nil {
		c.notifier.Notify(ctx, notify.Failure("Error", notify.Describe(err, fmt.Sprintf("Failed to add %s.", c.kind.noun()))))
		return zero, fmt.Errorf("add %s: %w", c.kind.noun(), err)
	}

	c.mu.Lock()
	c.items = append(c.items, rec)
	n := len(c.items)
	c.mu.Unlock()
	metrics.CacheSize.WithLabelValues(c.kind.Name).Set(float64(n))

	c.notifier.Notify(ctx, notify.Success(c.kind.Entity+" added", c.kind.Added(rec)))
	c.changed(ctx, "add", c.kind.ID(rec))
	return rec, nil
}

// Update sends the fields present in patch and refreshes the cached record.
// Updates and deletes of the same id apply in issue order.
func (c *Collection[T, I, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var out T
	err := c.queue.Do(ctx, c.key(id), func() error {
		current, ok := c.Get(id)
		if !ok {
			c.notFound(ctx)
			return ErrNotFound
		}
		if err := patch.Validate(); err != nil {
			c.notifier.Notify(ctx, notify.Failure("Error", errorMessage(err)))
			return err
		}
		if v, ok := any(patch).(recordValidator[T]); ok {
			if err := v.ValidateAgainst(current); err != nil {
				c.notifier.Notify(ctx, notify.Failure("Error", errorMessage(err)))
				return err
			}
		}

		if err := c.table.Update(ctx, id, patch.Fields()); err != nil {
			c.notifier.Notify(ctx, notify.Failure("Error", notify.Describe(err, fmt.Sprintf("Failed to update %s.", c.kind.noun()))))
			return fmt.Errorf("update %s %s: %w", c.kind.noun(), id, err)
		}

		fresh, err := c.table.Get(ctx, id)
		if err != nil {
			telemetry.FromContext(ctx).Warn("content.refetch_failed",
				zap.String("collection", c.kind.Name), zap.String("id", id), zap.Error(err))
			fresh = patch.ApplyTo(current)
		}

		c.mu.Lock()
		if i := c.indexOf(id); i >= 0 {
			c.items[i] = fresh
		}
		c.mu.Unlock()
		out = fresh

		c.notifier.Notify(ctx, notify.Success(c.kind.Entity+" updated",
			fmt.Sprintf("Your %s has been updated successfully.", c.kind.noun())))
		c.changed(ctx, "update", id)
		return nil
	})
	c.record("update", err)
	if err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

// Delete removes id remotely, then from the cache.
func (c *Collection[T, I, P]) Delete(ctx context.Context, id string) error {
	err := c.queue.Do(ctx, c.key(id), func() error {
		rec, ok := c.Get(id)
		if !ok {
			c.notFound(ctx)
			return ErrNotFound
		}

		if err := c.table.Delete(ctx, id); err != nil {
			c.notifier.Notify(ctx, notify.Failure("Error", notify.Describe(err, fmt.Sprintf("Failed to delete %s.", c.kind.noun()))))
			return fmt.Errorf("delete %s %s: %w", c.kind.noun(), id, err)
		}

		c.mu.Lock()
		if i := c.indexOf(id); i >= 0 {
			c.items = append(c.items[:i:i], c.items[i+1:]...)
		}
		n := len(c.items)
		c.mu.Unlock()
		metrics.CacheSize.WithLabelValues(c.kind.Name).Set(float64(n))

		c.notifier.Notify(ctx, notify.Success(c.kind.Entity+" deleted", c.kind.Deleted(rec)))
		c.changed(ctx, "delete", id)
		return nil
	})
	c.record("delete", err)
	return err
}

func (c *Collection[T, I, P]) notFound(ctx context.Context) {
	c.notifier.Notify(ctx, notify.Failure("Error", c.kind.Entity+" not found."))
}

func (c *Collection[T, I, P]) changed(ctx context.Context, op, id string) {
	if c.onChange != nil {
		c.onChange(ctx, op, id)
	}
}

func (c *Collection[T, I, P]) record(op string, err error) {
	metrics.RegistryOperations.WithLabelValues(c.kind.Name, op, metrics.Result(err, isNotFound)).Inc()
}

func (c *Collection[T, I, P]) key(id string) string {
	return c.kind.Name + "/" + id
}

// indexOf must be called with mu held.
func (c *Collection[T, I, P]) indexOf(id string) int {
	for i := range c.items {
		if c.kind.ID(c.items[i]) == id {
			return i
		}
	}
	return -1
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// errorMessage strips the package prefix from validation errors.
func errorMessage(err error) string {
	msg := err.Error()
	prefix := ErrInvalidInput.Error() + ": "
	if len(msg) > len(prefix) && msg[:len(prefix)] == prefix {
		return msg[len(prefix):]
	}
	return msg
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
