// Package cachesync keeps the registry caches of several instances coherent.
// Committed mutations are announced on NATS and every other instance
// re-fetches the announced collection. A cron schedule re-derives all caches
// as a fallback for missed events.
package cachesync

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"portfolio-backend/internal/shared/metrics"
	"portfolio-backend/internal/shared/telemetry"
)

// SubjectPrefix prefixes the per-collection change subjects.
const SubjectPrefix = "portfolio.changes."

const refetchTimeout = 30 * time.Second

// Event announces a committed mutation.
type Event struct {
	Origin     string    `json:"origin"`
	Collection string    `json:"collection"`
	Op         string    `json:"op"`
	ID         string    `json:"id"`
	At         time.Time `json:"at"`
}

// Fetcher re-derives one collection's cache from the remote store.
type Fetcher func(ctx context.Context, collection string) error

// Bus publishes and consumes change events for one instance.
type Bus struct {
	conn   *nats.Conn
	origin string
}

// NewBus constructs a Bus. Each process gets its own origin id so it can
// skip its own events.
func NewBus(conn *nats.Conn) *Bus {
	return &Bus{conn: conn, origin: uuid.NewString()}
}

// Origin identifies this instance on the bus.
func (b *Bus) Origin() string { return b.origin }

// Subject returns the change subject for collection.
func Subject(collection string) string {
	return SubjectPrefix + collection
}

// Hook returns a change hook that announces mutations of collection.
func (b *Bus) Hook(collection string) func(ctx context.Context, op, id string) {
	return func(ctx context.Context, op, id string) {
		b.Publish(ctx, Event{Collection: collection, Op: op, ID: id})
	}
}

// Publish announces ev. Failures are logged; the local cache is already
// correct and the scheduled resync covers peers.
func (b *Bus) Publish(ctx context.Context, ev Event) {
	ev.Origin = b.origin
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		telemetry.FromContext(ctx).Error("cachesync.marshal", zap.Error(err))
		return
	}
	if err := b.conn.Publish(Subject(ev.Collection), data); err != nil {
		telemetry.FromContext(ctx).Warn("cachesync.publish",
			zap.String("collection", ev.Collection),
			zap.Error(err),
		)
	}
}

// Listen re-fetches collections announced by other instances until the
// returned subscription is drained or ctx is cancelled.
func (b *Bus) Listen(ctx context.Context, fetch Fetcher) (*nats.Subscription, error) {
	sub, err := b.conn.Subscribe(SubjectPrefix+">", func(msg *nats.Msg) {
		var ev Event
		if err := json.Unmarshal(msg.Data, &ev); err != nil {
			telemetry.L().Warn("cachesync.decode", zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if ev.Origin == b.origin {
			return
		}
		if ev.Collection == "" {
			ev.Collection = strings.TrimPrefix(msg.Subject, SubjectPrefix)
		}

		fetchCtx, cancel := context.WithTimeout(ctx, refetchTimeout)
		defer cancel()
		err := fetch(fetchCtx, ev.Collection)
		metrics.CacheResyncs.WithLabelValues(ev.Collection, "event", metrics.Result(err, nil)).Inc()
		if err != nil {
			telemetry.L().Warn("cachesync.refetch_failed",
				zap.String("collection", ev.Collection),
				zap.String("origin", ev.Origin),
				zap.Error(err),
			)
			return
		}
		telemetry.L().Debug("cachesync.refetched",
			zap.String("collection", ev.Collection),
			zap.String("op", ev.Op),
			zap.String("id", ev.ID),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe %s: %w", SubjectPrefix+">", err)
	}
	go func() {
		<-ctx.Done()
		_ = sub.Unsubscribe()
	}()
	return sub, nil
}
