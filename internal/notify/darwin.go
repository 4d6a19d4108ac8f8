//go:build darwin

// Package notify provides desktop notification support.
// This file implements macOS notifications using osascript.
package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// darwinNotifier implements notifications for macOS using osascript.
type darwinNotifier struct{}

// newPlatformNotifier creates the macOS notifier.
func newPlatformNotifier() Notifier {
	return &darwinNotifier{}
}

// Send shows a notification. The alert sound is played by the app itself,
// so the notification is silent. Notification Center decides how long a
// banner stays; Sticky has no effect here.
func (n *darwinNotifier) Send(ctx context.Context, a Alert) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	script := fmt.Sprintf(`display notification "%s" with title "%s"`,
		escapeAppleScript(a.Body), escapeAppleScript(a.Title))

	cmd := exec.CommandContext(ctx, "osascript", "-e", script)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("osascript failed: %w", err)
	}

	return nil
}

// IsSupported returns true if osascript is available.
func (n *darwinNotifier) IsSupported() bool {
	_, err := exec.LookPath("osascript")
	return err == nil
}
