// Package engine implements the feed-sync core: scheduling, filtering,
// merging, cleanup, and the per-cycle orchestration over the target folder.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/checksum"
	"github.com/starford/raido/internal/frontmatter"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/notify"
	"github.com/starford/raido/internal/storage"
)

// Fetcher retrieves and normalizes one feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]models.Entry, error)
}

// Options configure an Orchestrator.
type Options struct {
	// Folder is the vault subdirectory holding the target documents.
	Folder string
	// Interval is the minimum watermark age before a document is due.
	Interval time.Duration
	// Lookback is the default watermark distance for never-synced documents.
	Lookback time.Duration
	// MaxParallelFetches bounds concurrent feed fetches within a document.
	MaxParallelFetches int
	Blacklist          Blacklist
}

// Orchestrator drives one full sync cycle over the target folder.
// It holds no state across cycles; the only persisted state is each
// document's frontmatter watermark.
type Orchestrator struct {
	store    storage.Provider
	fetcher  Fetcher
	notifier notify.Notifier
	logger   *slog.Logger
	opts     Options
}

// NewOrchestrator creates an Orchestrator. Zero option fields get defaults.
func NewOrchestrator(store storage.Provider, fetcher Fetcher, notifier notify.Notifier, logger *slog.Logger, opts Options) *Orchestrator {
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Lookback <= 0 {
		opts.Lookback = 365 * 24 * time.Hour
	}
	if opts.MaxParallelFetches <= 0 {
		opts.MaxParallelFetches = 4
	}
	return &Orchestrator{
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// RunCycle processes every document in the target folder once and returns
// the cycle summary. A missing target folder aborts the cycle (reported,
// retried on the next tick); every other failure is contained to a single
// feed or document.
func (o *Orchestrator) RunCycle(ctx context.Context, now time.Time) (models.CycleSummary, error) {
	sum := models.CycleSummary{StartedAt: now}

	paths, err := o.store.ListFolder(o.opts.Folder)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingFolder) {
			o.notifier.Notify(notify.Notice{
				Level:   notify.LevelWarning,
				Message: fmt.Sprintf("Sync folder %q not found in vault", o.opts.Folder),
			})
		}
		return sum, err
	}
	sum.Documents = len(paths)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return sum, ctx.Err()
		default:
		}
		o.syncDocument(ctx, path, now, &sum)
	}

	if sum.Inserted > 0 {
		o.notifier.Notify(notify.Notice{
			Level:    notify.LevelInfo,
			Message:  fmt.Sprintf("Added %d new feed items", sum.Inserted),
			Duration: 5 * time.Second,
		})
	}
	return sum, nil
}

func (o *Orchestrator) syncDocument(ctx context.Context, path string, now time.Time, sum *models.CycleSummary) {
	data, err := o.store.Read(path)
	if err != nil {
		o.recordError(sum, path, err)
		return
	}

	meta, _, err := frontmatter.Parse(data)
	if err != nil {
		// Without a readable header there are no feeds to fetch and no
		// watermark to advance; surface it and move on.
		o.recordError(sum, path, err)
		o.notifier.Notify(notify.Notice{
			Level:   notify.LevelError,
			Message: fmt.Sprintf("Cannot parse frontmatter of %s", path),
		})
		return
	}
	if len(meta.Feeds) == 0 {
		return
	}

	watermark := now.Add(-o.opts.Lookback)
	if meta.Synced != nil {
		watermark = *meta.Synced
	}
	if !Due(now, watermark, o.opts.Interval) {
		return
	}
	sum.Synced++

	eligible := o.fetchAll(ctx, path, meta.Feeds, watermark, sum)

	content := string(data)
	merged, inserted := Merge(content, eligible, now)
	cleaned, removed := Cleanup(merged, now)
	sum.Inserted += inserted
	sum.Removed += removed

	// Advance the watermark after all fetch attempts completed, even when
	// every feed failed: a permanently dead feed must not be refetched on
	// every tick. The trade-off (a transient outage can skip entries) is
	// deliberate.
	final, err := frontmatter.SetSynced([]byte(cleaned), now)
	if err != nil {
		// Keep the merged content; only the watermark update is lost.
		if cleaned != content {
			if werr := o.store.Write(path, []byte(cleaned)); werr != nil {
				o.recordError(sum, path, werr)
				return
			}
		}
		o.recordError(sum, path, err)
		o.notifier.Notify(notify.Notice{
			Level:   notify.LevelError,
			Message: fmt.Sprintf("Cannot update sync timestamp of %s", path),
		})
		return
	}

	if checksum.Sum(final) == checksum.Sum(data) {
		return
	}
	if err := o.store.Write(path, final); err != nil {
		o.recordError(sum, path, err)
		return
	}
	o.logger.Debug("engine: document synced",
		slog.String("path", path),
		slog.Int("inserted", inserted),
		slog.Int("removed", removed))
}

// fetchAll runs the normalizer and filter for every feed of a document,
// bounded-parallel. A failing feed is recorded and skipped; it never aborts
// sibling feeds or the document.
func (o *Orchestrator) fetchAll(ctx context.Context, path string, feeds []string, watermark time.Time, sum *models.CycleSummary) []models.Entry {
	results := make([][]models.Entry, len(feeds))
	fetchErrs := make([]error, len(feeds))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxParallelFetches)
	for i, feedURL := range feeds {
		g.Go(func() error {
			entries, err := o.fetcher.Fetch(gctx, feedURL)
			if err != nil {
				fetchErrs[i] = err
				return nil
			}
			results[i] = Filter(entries, watermark, o.opts.Blacklist)
			return nil
		})
	}
	_ = g.Wait()

	var eligible []models.Entry
	for i, entries := range results {
		if err := fetchErrs[i]; err != nil {
			o.recordError(sum, path, err)
			o.notifier.Notify(notify.Notice{
				Level:   notify.LevelWarning,
				Message: fmt.Sprintf("Feed failed for %s: %v", path, err),
			})
			continue
		}
		eligible = append(eligible, entries...)
	}
	return eligible
}

func (o *Orchestrator) recordError(sum *models.CycleSummary, path string, err error) {
	sum.Errors = append(sum.Errors, err.Error())
	o.logger.Warn("engine: document error",
		slog.String("path", path),
		slog.String("error", err.Error()))
}
