package engine

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/models"
)

func watermarkOf(t *testing.T, data []byte) time.Time {
	t.Helper()
	meta, _, err := frontmatter.Parse(data)
	if err != nil {
		t.Fatalf("parse frontmatter: %v", err)
	}
	if meta.Synced == nil {
		t.Fatal("no watermark set")
	}
	return *meta.Synced
}

type fakeRecorder struct {
	records []models.CycleSummary
}

func (r *fakeRecorder) Record(sum models.CycleSummary) error {
	r.records = append(r.records, sum)
	return nil
}

func TestRunner_TriggerQueueDepthOne(t *testing.T) {
	r := NewRunner(nil, nil, slog.New(slog.DiscardHandler), time.Minute, nil)
	if !r.Trigger() {
		t.Fatal("first trigger should queue")
	}
	if r.Trigger() {
		t.Error("second trigger should be dropped while one is pending")
	}
}

func TestRunner_CycleRecordsSummary(t *testing.T) {
	vault := newFakeVault("read later")
	vault.files[docPath] = docWithFeeds("https://example.com/rss")
	orch := testOrchestrator(vault, newFakeFetcher(), &noticeSink{})

	rec := &fakeRecorder{}
	r := NewRunner(orch, rec, slog.New(slog.DiscardHandler), time.Minute, nil)

	r.cycle(context.Background())

	if len(rec.records) != 1 {
		t.Fatalf("journal records = %d, want 1", len(rec.records))
	}
	sum := r.LastSummary()
	if sum == nil || sum.Documents != 1 {
		t.Errorf("LastSummary = %+v", sum)
	}
	if sum.FinishedAt.Before(sum.StartedAt) {
		t.Errorf("finished %v before started %v", sum.FinishedAt, sum.StartedAt)
	}
	if r.Running() {
		t.Error("runner still marked running after cycle")
	}
}

func TestRunner_UnreadySkipsCycle(t *testing.T) {
	vault := newFakeVault("read later")
	vault.files[docPath] = docWithFeeds("https://example.com/rss")
	orch := testOrchestrator(vault, newFakeFetcher(), &noticeSink{})

	rec := &fakeRecorder{}
	r := NewRunner(orch, rec, slog.New(slog.DiscardHandler), time.Minute, func() bool { return false })

	r.cycle(context.Background())

	if len(rec.records) != 0 {
		t.Errorf("unready cycle should be skipped silently, recorded %d", len(rec.records))
	}
	if r.LastSummary() != nil {
		t.Error("skipped cycle must not produce a summary")
	}
}

func TestRunner_WatermarkMonotonic(t *testing.T) {
	vault := newFakeVault("read later")
	vault.files[docPath] = docWithFeeds("https://example.com/rss")
	orch := testOrchestrator(vault, newFakeFetcher(), &noticeSink{})
	r := NewRunner(orch, nil, slog.New(slog.DiscardHandler), time.Minute, nil)

	r.cycle(context.Background())
	first := watermarkOf(t, vault.files[docPath])
	r.cycle(context.Background())
	second := watermarkOf(t, vault.files[docPath])

	if second.Before(first) {
		t.Errorf("watermark went backwards: %v then %v", first, second)
	}
}
