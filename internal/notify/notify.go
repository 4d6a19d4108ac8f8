// Package notify provides cross-platform desktop notification support.
// It uses native notification mechanisms on macOS (osascript) and Linux (notify-send).
package notify

import (
	"context"
	"time"
)

// DefaultTimeout bounds a single notification command.
const DefaultTimeout = 5 * time.Second

// AppTitle is the title of every grilltimer notification.
const AppTitle = "Grill Timer"

// Alert is one desktop notification.
type Alert struct {
	Title string
	Body  string
	// Sticky asks the desktop to keep the notification until it is clicked.
	Sticky bool
}

// Completed is the notification for an expired timer.
func Completed(timerName string) Alert {
	return Alert{Title: AppTitle, Body: timerName + " timer is complete.", Sticky: true}
}

// Notifier defines the interface for sending desktop notifications.
type Notifier interface {
	// Send shows a notification.
	Send(ctx context.Context, a Alert) error

	// IsSupported returns true if notifications are supported on this platform.
	IsSupported() bool
}

type noopNotifier struct{}

func (n *noopNotifier) Send(ctx context.Context, a Alert) error {
	return nil
}

func (n *noopNotifier) IsSupported() bool {
	return false
}

// New creates a platform-specific notifier.
// Returns a no-op notifier if the platform doesn't support notifications.
func New() Notifier {
	n := newPlatformNotifier()
	if n == nil || !n.IsSupported() {
		return &noopNotifier{}
	}
	return n
}

// Noop returns a notifier that does nothing.
func Noop() Notifier {
	return &noopNotifier{}
}

func withDefaultTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, DefaultTimeout)
}
