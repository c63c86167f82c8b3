package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

var mergeNow = time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

func entry(link, title string, published time.Time) models.Entry {
	return models.Entry{Link: link, Title: title, Published: published, Domain: "example.com"}
}

func TestMerge_AppendsWellFormedLine(t *testing.T) {
	e := entry("https://example.com/a", "First Post", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	got, n := Merge("# Reading\n", []models.Entry{e}, mergeNow)
	if n != 1 {
		t.Fatalf("inserted = %d, want 1", n)
	}
	want := "# Reading\n- [ ] [First Post](https://example.com/a) [site:: example.com] ➕ 2024-01-02"
	if got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
}

func TestMerge_TrimsTrailingWhitespace(t *testing.T) {
	e := entry("https://example.com/a", "A", mergeNow)
	got, _ := Merge("# Reading\n\n\n", []models.Entry{e}, mergeNow)
	if strings.Contains(got, "\n\n") {
		t.Errorf("blank lines left between old and new text: %q", got)
	}
}

func TestMerge_DedupByLink(t *testing.T) {
	content := "notes with (https://a.com/x) inline"
	got, n := Merge(content, []models.Entry{entry("https://a.com/x", "Dup", mergeNow)}, mergeNow)
	if n != 0 {
		t.Fatalf("inserted = %d, want 0", n)
	}
	if got != content {
		t.Errorf("content changed: %q", got)
	}
}

func TestMerge_Idempotent(t *testing.T) {
	entries := []models.Entry{
		entry("https://a.com/1", "One", mergeNow.Add(-2*time.Hour)),
		entry("https://a.com/2", "Two", mergeNow.Add(-time.Hour)),
	}
	once, n1 := Merge("# Queue", entries, mergeNow)
	if n1 != 2 {
		t.Fatalf("first merge inserted %d, want 2", n1)
	}
	twice, n2 := Merge(once, entries, mergeNow)
	if n2 != 0 {
		t.Errorf("second merge inserted %d, want 0", n2)
	}
	if twice != once {
		t.Errorf("second merge changed content")
	}
}

func TestMerge_ChronologicalOrder(t *testing.T) {
	// Feed-native order is newest first; inserted lines must read oldest first.
	entries := []models.Entry{
		entry("https://a.com/new", "New", mergeNow),
		entry("https://a.com/old", "Old", mergeNow.Add(-48*time.Hour)),
	}
	got, _ := Merge("", entries, mergeNow)
	oldIdx := strings.Index(got, "https://a.com/old")
	newIdx := strings.Index(got, "https://a.com/new")
	if oldIdx < 0 || newIdx < 0 || oldIdx > newIdx {
		t.Errorf("entries not chronological:\n%s", got)
	}
}

func TestMerge_EmptyTitleFallsBackToDate(t *testing.T) {
	e := entry("https://a.com/x", "", time.Date(2023, 12, 24, 8, 0, 0, 0, time.UTC))
	got, _ := Merge("", []models.Entry{e}, mergeNow)
	if !strings.Contains(got, "[2023-12-24](https://a.com/x)") {
		t.Errorf("missing date-title fallback: %q", got)
	}
}

func TestMerge_DuplicateWithinBatch(t *testing.T) {
	entries := []models.Entry{
		entry("https://a.com/x", "A", mergeNow),
		entry("https://a.com/x", "A again", mergeNow),
	}
	got, n := Merge("", entries, mergeNow)
	if n != 1 {
		t.Errorf("inserted = %d, want 1", n)
	}
	if strings.Count(got, "https://a.com/x") != 1 {
		t.Errorf("duplicate link inserted:\n%s", got)
	}
}

func TestMerge_NoEntries(t *testing.T) {
	got, n := Merge("unchanged", nil, mergeNow)
	if n != 0 || got != "unchanged" {
		t.Errorf("got %q, %d", got, n)
	}
}
