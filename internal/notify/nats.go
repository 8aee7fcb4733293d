package notify

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"portfolio-backend/internal/shared/telemetry"
)

// DefaultSubject is where notifications are published.
const DefaultSubject = "portfolio.notifications"

// Publisher publishes notifications to NATS so other consumers (an admin
// activity feed, other instances) see them.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher constructs a Publisher. An empty subject selects DefaultSubject.
func NewPublisher(conn *nats.Conn, subject string) *Publisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &Publisher{conn: conn, subject: subject}
}

// Notify implements Notifier. Publish failures are logged and dropped.
func (p *Publisher) Notify(ctx context.Context, n Notification) {
	data, err := json.Marshal(n)
	if err != nil {
		telemetry.FromContext(ctx).Error("notify.publish.marshal", zap.Error(err))
		return
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		telemetry.FromContext(ctx).Warn("notify.publish", zap.String("subject", p.subject), zap.Error(err))
	}
}
