package engine

import "time"

// Due reports whether a document is due for a refresh: the watermark is at
// least interval old. Pure predicate; documents whose watermark defaulted
// to the lookback are always due.
func Due(now, watermark time.Time, interval time.Duration) bool {
	return !now.Before(watermark.Add(interval))
}
