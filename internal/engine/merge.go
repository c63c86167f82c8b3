package engine

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/starford/raido/internal/models"
)

// Checklist line markers and date tokens. These are a wire format shared
// with the vault UI and must be reproduced byte-for-byte.
const (
	incompleteMarker = "- [ ]"
	completeMarker   = "- [x]"
	addedToken       = "➕"
	doneToken        = "✅"
)

const dateLayout = "2006-01-02"

// FormatLine renders the checklist line for one entry:
//
//	- [ ] [<title>](<link>) [site:: <domain>] ➕ <YYYY-MM-DD>
//
// An empty title falls back to the entry's published date.
func FormatLine(e models.Entry, now time.Time) string {
	title := e.Title
	if title == "" {
		title = e.Published.Format(dateLayout)
	}
	return fmt.Sprintf("%s [%s](%s) [site:: %s] %s %s",
		incompleteMarker, title, e.Link, e.Domain, addedToken, now.Format(dateLayout))
}

// Merge appends a checklist line for every entry whose link does not
// already occur in content. The containment check is a plain substring
// match over the whole document, which is what makes the operation
// idempotent: re-running with the same entries inserts nothing.
//
// Entries are appended oldest first so the checklist reads chronologically
// regardless of each feed's native order. Existing content is preserved
// verbatim apart from trailing whitespace, which is trimmed before the
// first appended line. Returns the new content and the insert count.
func Merge(content string, entries []models.Entry, now time.Time) (string, int) {
	if len(entries) == 0 {
		return content, 0
	}

	sorted := make([]models.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Published.Before(sorted[j].Published)
	})

	out := strings.TrimRight(content, " \t\r\n")
	inserted := 0
	for _, e := range sorted {
		if e.Link == "" || strings.Contains(out, e.Link) {
			continue
		}
		if out != "" {
			out += "\n"
		}
		out += FormatLine(e, now)
		inserted++
	}
	if inserted == 0 {
		return content, 0
	}
	return out, inserted
}
