//go:build linux

// Package notify provides desktop notification support.
// This file implements Linux notifications using notify-send.
package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// linuxNotifier implements notifications for Linux using notify-send.
type linuxNotifier struct{}

// newPlatformNotifier creates the Linux notifier.
func newPlatformNotifier() Notifier {
	return &linuxNotifier{}
}

// Send shows a notification. Sticky alerts use critical urgency, which
// notification daemons keep on screen until dismissed.
func (n *linuxNotifier) Send(ctx context.Context, a Alert) error {
	ctx, cancel := withDefaultTimeout(ctx)
	defer cancel()

	cmd := exec.CommandContext(ctx, "notify-send", notifySendArgs(a)...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("notify-send failed: %w", err)
	}

	return nil
}

// IsSupported returns true if notify-send is available.
func (n *linuxNotifier) IsSupported() bool {
	_, err := exec.LookPath("notify-send")
	return err == nil
}

func notifySendArgs(a Alert) []string {
	urgency := "normal"
	if a.Sticky {
		urgency = "critical"
	}
	return []string{
		"--app-name=grilltimer",
		"--urgency=" + urgency,
		"--icon=appointment-soon",
		a.Title,
		a.Body,
	}
}
