// Package models defines the domain types for Raido.
package models

import "time"

// Entry is one normalized feed item. Link is the dedup key and is treated
// as an opaque string, compared byte-for-byte.
type Entry struct {
	Link      string    `json:"link"`
	Title     string    `json:"title"`
	Published time.Time `json:"published"`
	Domain    string    `json:"domain"`
}

// CycleSummary aggregates the outcome of one sync cycle.
type CycleSummary struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Documents  int       `json:"documents"` // documents examined
	Synced     int       `json:"synced"`    // documents that were due and refreshed
	Inserted   int       `json:"inserted"`  // checklist lines added
	Removed    int       `json:"removed"`   // completed lines pruned
	Errors     []string  `json:"errors,omitempty"`
}
