package engine

import (
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// Blacklist holds substring filters applied to candidate entries. URL
// substrings match the link verbatim; title substrings match
// case-insensitively.
type Blacklist struct {
	URLs   []string
	Titles []string
}

// Filter returns the entries at or past the watermark that clear the
// blacklist. Order is preserved. Pure function.
func Filter(entries []models.Entry, watermark time.Time, bl Blacklist) []models.Entry {
	out := make([]models.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Published.Before(watermark) {
			continue
		}
		if containsAny(e.Link, bl.URLs) {
			continue
		}
		if containsAnyFold(e.Title, bl.Titles) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func containsAnyFold(s string, subs []string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if sub != "" && strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
