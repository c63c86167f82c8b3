package engine

import (
	"strings"
	"time"
)

// Cleanup removes completed checklist lines whose ✅ date token is not the
// current date. This is a same-day grace window: an item checked off today
// survives until the date rolls over, after which it is pruned. Incomplete
// items and non-checklist lines are never touched.
//
// Returns the pruned content and the number of lines removed; zero removed
// means content is returned unchanged so the caller can skip the write.
func Cleanup(content string, now time.Time) (string, int) {
	today := doneToken + " " + now.Format(dateLayout)

	lines := strings.Split(content, "\n")
	kept := make([]string, 0, len(lines))
	removed := 0
	for _, line := range lines {
		if strings.HasPrefix(line, completeMarker) && !strings.Contains(line, today) {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return content, 0
	}
	return strings.Join(kept, "\n"), removed
}
