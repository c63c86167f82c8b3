package engine

import (
	"testing"
	"time"

	"github.com/starford/raido/internal/models"
)

func TestFilter_WatermarkCutoff(t *testing.T) {
	watermark := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entries := []models.Entry{
		entry("https://a.com/old", "Old", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)),
		entry("https://a.com/new", "New", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)),
	}
	got := Filter(entries, watermark, Blacklist{})
	if len(got) != 1 || got[0].Link != "https://a.com/new" {
		t.Errorf("got %v, want only the 2024-01-02 entry", got)
	}
}

func TestFilter_WatermarkInclusive(t *testing.T) {
	watermark := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	got := Filter([]models.Entry{entry("https://a.com/x", "X", watermark)}, watermark, Blacklist{})
	if len(got) != 1 {
		t.Errorf("entry published exactly at watermark should pass, got %v", got)
	}
}

func TestFilter_URLBlacklist(t *testing.T) {
	entries := []models.Entry{
		entry("https://tracker.ads.com/x", "Fine", time.Now()),
		entry("https://a.com/x", "Fine", time.Now()),
	}
	got := Filter(entries, time.Time{}, Blacklist{URLs: []string{"ads.com"}})
	if len(got) != 1 || got[0].Link != "https://a.com/x" {
		t.Errorf("got %v", got)
	}
}

func TestFilter_TitleBlacklistCaseInsensitive(t *testing.T) {
	entries := []models.Entry{
		entry("https://a.com/1", "SPONSORED: buy now", time.Now()),
		entry("https://a.com/2", "Real article", time.Now()),
	}
	got := Filter(entries, time.Time{}, Blacklist{Titles: []string{"sponsored"}})
	if len(got) != 1 || got[0].Link != "https://a.com/2" {
		t.Errorf("got %v", got)
	}
}

func TestFilter_PreservesOrder(t *testing.T) {
	entries := []models.Entry{
		entry("https://a.com/1", "A", time.Now()),
		entry("https://a.com/2", "B", time.Now()),
		entry("https://a.com/3", "C", time.Now()),
	}
	got := Filter(entries, time.Time{}, Blacklist{})
	for i := range got {
		if got[i].Link != entries[i].Link {
			t.Fatalf("order changed at %d: %v", i, got)
		}
	}
}
