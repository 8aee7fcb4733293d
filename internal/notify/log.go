package notify

import (
	"context"

	"go.uber.org/zap"

	"portfolio-backend/internal/shared/telemetry"
)

// LogSink writes every notification as a structured log entry.
type LogSink struct {
	// Logger overrides the request-scoped logger when set.
	Logger *zap.Logger
}

// Notify implements Notifier.
func (s LogSink) Notify(ctx context.Context, n Notification) {
	l := s.Logger
	if l == nil {
		l = telemetry.FromContext(ctx)
	}
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("description", n.Description),
		zap.String("severity", string(n.Severity)),
	}
	if n.Severity == SeverityError {
		l.Warn("notify", fields...)
		return
	}
	l.Info("notify", fields...)
}
