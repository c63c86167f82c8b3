package engine

import (
	"testing"
	"time"
)

var cleanupNow = time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)

func TestCleanup_RemovesStaleCompleted(t *testing.T) {
	content := "# Queue\n- [x] task ✅ 2024-01-01\n- [ ] open task"
	got, removed := Cleanup(content, cleanupNow)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	want := "# Queue\n- [ ] open task"
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestCleanup_KeepsCompletedToday(t *testing.T) {
	content := "- [x] task ✅ 2024-01-02"
	got, removed := Cleanup(content, cleanupNow)
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	if got != content {
		t.Errorf("content changed: %q", got)
	}
}

func TestCleanup_NeverTouchesIncompleteOrProse(t *testing.T) {
	content := "# Heading\nsome notes ✅ 2020-01-01\n- [ ] open ✅ 2020-01-01\n- [x] done ✅ 2020-01-01"
	got, removed := Cleanup(content, cleanupNow)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	want := "# Heading\nsome notes ✅ 2020-01-01\n- [ ] open ✅ 2020-01-01"
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestCleanup_CompletedWithoutDateToken(t *testing.T) {
	// A complete line with no ✅ token at all is past its grace window.
	_, removed := Cleanup("- [x] no date", cleanupNow)
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}

func TestCleanup_UnchangedSignalsNoWrite(t *testing.T) {
	content := "plain text\nno checklist here"
	got, removed := Cleanup(content, cleanupNow)
	if removed != 0 || got != content {
		t.Errorf("expected no change, got %q (%d removed)", got, removed)
	}
}
