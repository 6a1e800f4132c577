package tui

import (
	"strings"
	"testing"
	"time"
)

func TestToast_ShowDisplaysMessage(t *testing.T) {
	toast := NewToast()

	cmd := toast.Show("Saved letrabox-mockup.png")

	if !toast.IsVisible() {
		t.Error("expected toast to be visible after Show()")
	}
	if toast.GetMessage() != "Saved letrabox-mockup.png" {
		t.Errorf("unexpected message %q", toast.GetMessage())
	}
	if cmd == nil {
		t.Error("expected Show() to return a command for dismissal")
	}
}

func TestToast_ViewReturnsEmptyWhenNotVisible(t *testing.T) {
	toast := NewToast()
	if view := toast.View(80, 24); view != "" {
		t.Errorf("expected empty view when not visible, got %q", view)
	}
}

func TestToast_ViewRendersMessageWhenVisible(t *testing.T) {
	toast := NewToast()
	toast.ShowError("write failed")

	view := toast.View(80, 24)
	if !strings.Contains(view, "write failed") {
		t.Errorf("expected view to contain message, got %q", view)
	}
	if lines := strings.Count(view, "\n"); lines != 22 {
		t.Errorf("expected toast on row 22, got %d newlines", lines)
	}
}

func TestToast_DismissAfterExpiry(t *testing.T) {
	toast := NewToast()
	toast.Show("hello")

	// An early timer from an older toast keeps the current one visible.
	if cmd := toast.Update(ToastDismissMsg{}); cmd == nil {
		t.Error("expected early dismissal to reschedule")
	}
	if !toast.IsVisible() {
		t.Fatal("toast dismissed too early")
	}

	toast.dismissAt = time.Now().Add(-time.Millisecond)
	if cmd := toast.Update(ToastDismissMsg{}); cmd != nil {
		t.Error("expected no command after dismissal")
	}
	if toast.IsVisible() || toast.GetMessage() != "" {
		t.Error("expected toast to be hidden")
	}
}
