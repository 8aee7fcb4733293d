// Package notify is the notification surface the registries report outcomes
// through. A Notification carries only a title, a human-readable description
// and a severity; no structured error codes reach the UI.
package notify

import (
	"context"
	"time"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// Notification is one user-facing message.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Severity    Severity  `json:"severity"`
	At          time.Time `json:"at"`
}

// Notifier delivers notifications. Implementations must not block on slow sinks
// for longer than the caller's context allows.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Func adapts a function to Notifier.
type Func func(ctx context.Context, n Notification)

// Notify implements Notifier.
func (f Func) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// Discard drops every notification.
var Discard Notifier = Func(func(context.Context, Notification) {})

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, n Notification) {
	if n.At.IsZero() {
		n.At = time.Now().UTC()
	}
	for _, target := range m {
		if target != nil {
			target.Notify(ctx, n)
		}
	}
}

// Success builds a success notification.
func Success(title, description string) Notification {
	return Notification{Title: title, Description: description, Severity: SeveritySuccess}
}

// Failure builds an error notification.
func Failure(title, description string) Notification {
	return Notification{Title: title, Description: description, Severity: SeverityError}
}

// Info builds an informational notification.
func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Severity: SeverityInfo}
}

// Describe returns err's message, or fallback when err is nil or has none.
// It mirrors how failures are phrased to the user: the store's message when
// there is one, a generic sentence otherwise.
func Describe(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
