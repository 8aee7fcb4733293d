package notify

import (
	"context"
	"sync"
)

type collectorKey struct{}

// Collector accumulates the notifications raised while serving one request.
type Collector struct {
	mu    sync.Mutex
	items []Notification
}

// WithCollector returns a context carrying a fresh Collector.
func WithCollector(ctx context.Context) (context.Context, *Collector) {
	c := &Collector{}
	return context.WithValue(ctx, collectorKey{}, c), c
}

// CollectorFrom returns the Collector on ctx, if any.
func CollectorFrom(ctx context.Context) (*Collector, bool) {
	if ctx == nil {
		return nil, false
	}
	c, ok := ctx.Value(collectorKey{}).(*Collector)
	return c, ok && c != nil
}

// Add appends n.
func (c *Collector) Add(n Notification) {
	c.mu.Lock()
	c.items = append(c.items, n)
	c.mu.Unlock()
}

// Items returns a copy of the collected notifications.
func (c *Collector) Items() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, len(c.items))
	copy(out, c.items)
	return out
}

// Collected returns the notifications gathered on ctx, never nil.
func Collected(ctx context.Context) []Notification {
	if c, ok := CollectorFrom(ctx); ok {
		return c.Items()
	}
	return []Notification{}
}

// RequestSink forwards notifications to the Collector on the caller's
// context. Calls without a collector are dropped.
type RequestSink struct{}

// Notify implements Notifier.
func (RequestSink) Notify(ctx context.Context, n Notification) {
	if c, ok := CollectorFrom(ctx); ok {
		c.Add(n)
	}
}
