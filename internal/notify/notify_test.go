package notify

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	n := New()
	if n == nil {
		t.Error("New() returned nil")
	}
}

func TestIsSupported(t *testing.T) {
	n := New()

	switch runtime.GOOS {
	case "darwin":
		if !n.IsSupported() {
			t.Log("Warning: osascript not available on macOS")
		}
	case "linux":
		t.Logf("Linux notification support: %v", n.IsSupported())
	default:
		if n.IsSupported() {
			t.Errorf("IsSupported() should be false on %s", runtime.GOOS)
		}
	}
}

func TestNoop(t *testing.T) {
	n := Noop()
	if n.IsSupported() {
		t.Error("Noop().IsSupported() = true, want false")
	}
	if err := n.Send(context.Background(), Completed("Flip")); err != nil {
		t.Errorf("Noop().Send() error = %v", err)
	}
}

func TestWithDefaultTimeout(t *testing.T) {
	ctx, cancel := withDefaultTimeout(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatal("expected a deadline")
	}
	if time.Until(deadline) > DefaultTimeout {
		t.Errorf("deadline too far: %v", time.Until(deadline))
	}

	parent, cancelParent := context.WithTimeout(context.Background(), time.Minute)
	defer cancelParent()
	ctx2, cancel2 := withDefaultTimeout(parent)
	defer cancel2()
	d2, _ := ctx2.Deadline()
	pd, _ := parent.Deadline()
	if !d2.Equal(pd) {
		t.Errorf("caller deadline should be kept: got %v want %v", d2, pd)
	}
}

// TestSend actually shows a notification.
func TestSend(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping notification test in short mode")
	}
	if os.Getenv("RUN_NOTIFY_TESTS") != "1" {
		t.Skip("Skipping manual notification test (set RUN_NOTIFY_TESTS=1 to enable)")
	}

	n := New()
	if !n.IsSupported() {
		t.Skip("Notifications not supported on this platform")
	}

	if err := n.Send(context.Background(), Alert{Title: "grilltimer test", Body: "This is a test notification"}); err != nil {
		t.Errorf("Send() error: %v", err)
	}
}

func TestCompleted(t *testing.T) {
	a := Completed("Flip")
	if a.Title != AppTitle {
		t.Errorf("Title = %q, want %q", a.Title, AppTitle)
	}
	if a.Body != "Flip timer is complete." {
		t.Errorf("Body = %q", a.Body)
	}
	if !a.Sticky {
		t.Error("completion alerts should be sticky")
	}
}

func TestEscapeAppleScript(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello", "Hello"},
		{`Flip "steak"`, `Flip \"steak\"`},
		{`Path\to\file`, `Path\\to\\file`},
	}

	for _, tc := range tests {
		if result := escapeAppleScript(tc.input); result != tc.expected {
			t.Errorf("escapeAppleScript(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}
